package exam

import (
	"strings"

	"github.com/mizuki/toeflsim/internal/content"
)

// minSubmittableWords guards against accidental empty submissions. The
// per-kind minimum word counts are advisory targets, not gates.
const minSubmittableWords = 10

// WritingPhase is a writing session state.
type WritingPhase int

const (
	WritingReading WritingPhase = iota
	WritingListening
	WritingComposing
)

// WritingSession runs the writing task flow. Integrated tasks present
// the reading and lecture first; discussion tasks start composing
// immediately. The total countdown only runs while composing, and
// expiry raises TimeUp without force-submitting the draft.
type WritingSession struct {
	Task *content.WritingTask

	phase  WritingPhase
	total  *Timer
	essay  string
	timeUp bool
}

// NewWritingSession starts a session in the task's first phase.
func NewWritingSession(task *content.WritingTask) *WritingSession {
	s := &WritingSession{
		Task:  task,
		total: NewPhaseTimer(task.TimeLimitSeconds()),
	}
	if task.Kind != content.IntegratedWriting {
		s.phase = WritingComposing
	}
	return s
}

// Phase returns the current state.
func (s *WritingSession) Phase() WritingPhase { return s.phase }

// FinishReading moves from the reading to the lecture.
func (s *WritingSession) FinishReading() {
	if s.phase == WritingReading {
		s.phase = WritingListening
	}
}

// FinishListening moves from the lecture to composing.
func (s *WritingSession) FinishListening() {
	if s.phase == WritingListening {
		s.phase = WritingComposing
	}
}

// SetEssay replaces the draft text.
func (s *WritingSession) SetEssay(text string) { s.essay = text }

// Essay returns the draft text.
func (s *WritingSession) Essay() string { return s.essay }

// WordCount returns the whitespace-delimited word count of the draft.
func (s *WritingSession) WordCount() int {
	return len(strings.Fields(s.essay))
}

// RemainingWords returns how many words are still needed to reach the
// task's minimum, zero once met.
func (s *WritingSession) RemainingWords() int {
	if r := s.Task.MinWords() - s.WordCount(); r > 0 {
		return r
	}
	return 0
}

// CanSubmit reports whether the draft is long enough to grade.
func (s *WritingSession) CanSubmit() bool {
	return s.WordCount() >= minSubmittableWords
}

// Tick advances the total countdown while composing and reports whether
// time ran out on this tick.
func (s *WritingSession) Tick() (expired bool) {
	if s.phase != WritingComposing || s.timeUp {
		return false
	}
	if s.total.Tick() {
		s.timeUp = true
		return true
	}
	return false
}

// Remaining returns seconds left to compose.
func (s *WritingSession) Remaining() int { return s.total.Remaining() }

// TimeUp reports whether the countdown has expired. The draft stays
// editable and submittable; the flag is informational.
func (s *WritingSession) TimeUp() bool { return s.timeUp }
