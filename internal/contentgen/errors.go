package contentgen

import (
	"fmt"

	"github.com/mizuki/toeflsim/internal/content"
)

// GenerationError reports a failed generation attempt. It is user-visible:
// the screen layer offers retry or cancel.
type GenerationError struct {
	Type content.Type
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s content: %v", e.Type, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
