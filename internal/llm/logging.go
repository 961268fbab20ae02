package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mizuki/toeflsim/internal/storage"
)

// RequestSink receives a record of every LLM round trip.
// *storage.RequestLog satisfies it.
type RequestSink interface {
	Append(ctx context.Context, e storage.RequestLogEntry) error
}

// LoggingProvider is a decorator that records every LLM request.
type LoggingProvider struct {
	inner Provider
	sink  RequestSink
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, sink RequestSink) Provider {
	return &LoggingProvider{inner: p, sink: sink}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	entry := storage.RequestLogEntry{
		Timestamp:   start,
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		entry.InputTokens = resp.Usage.InputTokens
		entry.OutputTokens = resp.Usage.OutputTokens
		entry.Model = resp.Model
		entry.ResponseBody = string(resp.Content)
	}

	if err != nil {
		entry.ErrorMessage = err.Error()
	}

	// Log the record but don't fail the request if logging fails.
	if logErr := l.sink.Append(ctx, entry); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request: %v\n", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
