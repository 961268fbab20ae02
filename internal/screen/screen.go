package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/mizuki/toeflsim/internal/contentgen"
	"github.com/mizuki/toeflsim/internal/grading"
	"github.com/mizuki/toeflsim/internal/history"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/speech"
	"github.com/mizuki/toeflsim/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// SectionBadgeProvider is an optional interface for screens that belong
// to one test section; the badge is shown in the header.
type SectionBadgeProvider interface {
	SectionBadge() string
}

// Services bundles the collaborators screens depend on. Speech handles
// are shared so an exiting screen can release playback for the whole
// app.
type Services struct {
	Gen     *contentgen.Service
	Grader  *grading.LLMGrader
	History *history.Store
	Log     *report.Log
	Reports *report.Reports
	Synth   speech.Synthesizer
	Recog   speech.Recognizer
}
