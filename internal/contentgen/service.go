// Package contentgen orchestrates LLM generation of test material with
// duplicate avoidance and topic steering.
package contentgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/fingerprint"
	"github.com/mizuki/toeflsim/internal/history"
	"github.com/mizuki/toeflsim/internal/llm"
)

// Service generates test content through an LLM provider, consulting the
// history store to avoid repeats and steer topic variety.
type Service struct {
	provider llm.Provider
	history  *history.Store
	config   Config
	warn     io.Writer

	randFloat func() float64
	randIntN  func(n int) int
}

// New creates a generation service.
func New(provider llm.Provider, hist *history.Store, cfg Config) *Service {
	return &Service{
		provider:  provider,
		history:   hist,
		config:    cfg,
		warn:      os.Stderr,
		randFloat: rand.Float64,
		randIntN:  rand.IntN,
	}
}

// ReadingParams selects the reading variant to generate.
type ReadingParams struct {
	// Topic forces a subject; empty means steered random selection.
	Topic string
	// Intensive requests a short passage drilling WeakCategory.
	Intensive    bool
	WeakCategory string
}

// GenerateReading produces a reading passage with its question set.
func (s *Service) GenerateReading(ctx context.Context, params ReadingParams) (*content.Passage, error) {
	topic := params.Topic
	if topic == "" && !params.Intensive {
		topic = s.pickTopic(content.TypeReading)
	}

	req := llm.Request{
		System:    readingSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: readingUserPrompt(topic, params.Intensive, params.WeakCategory)}},
		Schema:    ReadingSchema,
		MaxTokens: s.config.MaxTokens,
	}

	item, err := s.attemptLoop(llm.WithPurpose(ctx, "reading_passage"), content.TypeReading, req,
		func(raw json.RawMessage) (any, string, string, error) {
			p, err := content.NormalizePassage(raw)
			if err != nil {
				return nil, "", "", err
			}
			return p, p.Topic(), p.FingerprintText(), nil
		})
	if err != nil {
		return nil, err
	}
	return item.(*content.Passage), nil
}

// GenerateListening produces a listening set, randomly a lecture (60%) or
// a campus conversation (40%).
func (s *Service) GenerateListening(ctx context.Context) (*content.ListeningSet, error) {
	lecture := s.randFloat() < 0.6
	var topic string
	if lecture {
		topic = s.pickTopic(content.TypeListening)
	} else {
		topic = conversationSettings[s.randIntN(len(conversationSettings))]
	}

	req := llm.Request{
		System:    listeningSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: listeningUserPrompt(lecture, topic)}},
		Schema:    ListeningSchema,
		MaxTokens: s.config.MaxTokens,
	}

	item, err := s.attemptLoop(llm.WithPurpose(ctx, "listening_set"), content.TypeListening, req,
		func(raw json.RawMessage) (any, string, string, error) {
			set, err := content.NormalizeListening(raw)
			if err != nil {
				return nil, "", "", err
			}
			return set, set.Topic(), set.FingerprintText(), nil
		})
	if err != nil {
		return nil, err
	}
	return item.(*content.ListeningSet), nil
}

// GenerateSpeaking produces one of the four ETS speaking task formats,
// chosen uniformly.
func (s *Service) GenerateSpeaking(ctx context.Context) (*content.SpeakingTask, error) {
	prompt := speakingUserPrompts[s.randIntN(len(speakingUserPrompts))]

	req := llm.Request{
		System:    speakingSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:    SpeakingSchema,
		MaxTokens: s.config.MaxTokens,
	}

	item, err := s.attemptLoop(llm.WithPurpose(ctx, "speaking_task"), content.TypeSpeaking, req,
		func(raw json.RawMessage) (any, string, string, error) {
			task, err := content.NormalizeSpeaking(raw)
			if err != nil {
				return nil, "", "", err
			}
			return task, task.Topic(), task.FingerprintText(), nil
		})
	if err != nil {
		return nil, err
	}
	return item.(*content.SpeakingTask), nil
}

// GenerateWriting produces an integrated (50%) or academic discussion
// writing task.
func (s *Service) GenerateWriting(ctx context.Context) (*content.WritingTask, error) {
	integrated := s.randFloat() < 0.5
	var topic string
	if integrated {
		topic = s.pickTopic(content.TypeWriting)
	}

	req := llm.Request{
		System:    writingSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: writingUserPrompt(integrated, topic)}},
		Schema:    WritingSchema,
		MaxTokens: s.config.MaxTokens,
	}

	item, err := s.attemptLoop(llm.WithPurpose(ctx, "writing_task"), content.TypeWriting, req,
		func(raw json.RawMessage) (any, string, string, error) {
			task, err := content.NormalizeWriting(raw)
			if err != nil {
				return nil, "", "", err
			}
			return task, task.Topic(), task.FingerprintText(), nil
		})
	if err != nil {
		return nil, err
	}
	return item.(*content.WritingTask), nil
}

// GenerateVocabLesson produces a vocabulary drill in the reading format.
// Vocab drills reuse words by design, so no duplicate check applies.
func (s *Service) GenerateVocabLesson(ctx context.Context) (*content.Passage, error) {
	req := llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: vocabUserPrompt}},
		Schema:    ReadingSchema,
		MaxTokens: s.config.MaxTokens,
	}
	req.Temperature = s.config.BaseTemperature

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "vocab_lesson"), req)
	if err != nil {
		return nil, &GenerationError{Type: content.TypeReading, Err: err}
	}
	p, err := content.NormalizePassage(resp.Content)
	if err != nil {
		return nil, &GenerationError{Type: content.TypeReading, Err: err}
	}
	return p, nil
}

// attemptLoop runs the duplicate-retry policy: generate, fingerprint,
// accept if novel, otherwise retry with raised temperature. After the last
// attempt the result is accepted anyway with a warning. The accepted
// fingerprint is persisted best-effort.
func (s *Service) attemptLoop(
	ctx context.Context,
	typ content.Type,
	req llm.Request,
	decode func(json.RawMessage) (any, string, string, error),
) (any, error) {
	s.maybeCleanup()

	var lastItem any
	var lastFP fingerprint.Fingerprint

	for attempt := range s.config.MaxAttempts {
		req.Temperature = s.config.BaseTemperature + float64(attempt)*s.config.TemperatureStep

		resp, err := s.provider.Generate(ctx, req)
		if err != nil {
			return nil, &GenerationError{Type: typ, Err: err}
		}

		item, topic, text, err := decode(resp.Content)
		if err != nil {
			return nil, &GenerationError{Type: typ, Err: err}
		}

		fp := fingerprint.New(typ, topic, text)
		lastItem, lastFP = item, fp

		if !s.history.IsDuplicate(fp, s.config.DuplicateThreshold) {
			s.record(fp)
			return item, nil
		}
	}

	fmt.Fprintf(s.warn, "warning: accepting repeated %s content after %d attempts (topic: %s)\n",
		typ, s.config.MaxAttempts, lastFP.Topic)
	s.record(lastFP)
	return lastItem, nil
}

// pickTopic chooses a topic from the section's pool, uniformly among
// underused candidates when any exist.
func (s *Service) pickTopic(typ content.Type) string {
	pool := topicPools[typ]
	if len(pool) == 0 {
		return ""
	}
	if underused := s.history.UnderusedTopics(typ, pool); len(underused) > 0 {
		return underused[s.randIntN(len(underused))]
	}
	return pool[s.randIntN(len(pool))]
}

func (s *Service) maybeCleanup() {
	if !s.history.NeedsCleanup() {
		return
	}
	if err := s.history.Cleanup(); err != nil {
		fmt.Fprintf(s.warn, "warning: history cleanup failed: %v\n", err)
	}
}

func (s *Service) record(fp fingerprint.Fingerprint) {
	if err := s.history.Append(fp); err != nil {
		fmt.Fprintf(s.warn, "warning: failed to record fingerprint: %v\n", err)
	}
}
