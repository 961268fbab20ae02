package exam

import "github.com/mizuki/toeflsim/internal/content"

// ExamDifficulty selects playback speed and transcript visibility for
// the audio-driven sections.
type ExamDifficulty string

const (
	Beginner     ExamDifficulty = "BEGINNER"
	Intermediate ExamDifficulty = "INTERMEDIATE"
	Advanced     ExamDifficulty = "ADVANCED"
)

// SpeechRate returns the playback speed multiplier.
func (d ExamDifficulty) SpeechRate() float64 {
	switch d {
	case Beginner:
		return 0.8
	case Advanced:
		return 1.2
	default:
		return 1.0
	}
}

// ShowTranscript reports whether the English transcript is displayed
// during playback.
func (d ExamDifficulty) ShowTranscript() bool {
	return d == Beginner || d == Intermediate
}

// ShowTranslation reports whether the translated transcript is also
// displayed.
func (d ExamDifficulty) ShowTranslation() bool {
	return d == Beginner
}

// ListeningPhase is a listening session state.
type ListeningPhase int

const (
	ListeningSetup ListeningPhase = iota
	ListeningPlayback
	ListeningQuestions
)

// ListeningSession runs Setup, Playback, then a forward-only question
// cursor. Playback completion (or a manual skip) advances to questions;
// there is no going back to replay.
type ListeningSession struct {
	Set *content.ListeningSet

	phase      ListeningPhase
	difficulty ExamDifficulty
	cursor     int
	answers    map[string][]string
}

// NewListeningSession starts a session in the setup phase.
func NewListeningSession(set *content.ListeningSet) *ListeningSession {
	return &ListeningSession{
		Set:        set,
		difficulty: Intermediate,
		answers:    make(map[string][]string),
	}
}

// Phase returns the current state.
func (s *ListeningSession) Phase() ListeningPhase { return s.phase }

// Difficulty returns the selected difficulty.
func (s *ListeningSession) Difficulty() ExamDifficulty { return s.difficulty }

// Start records the chosen difficulty and moves to playback.
func (s *ListeningSession) Start(d ExamDifficulty) {
	if s.phase != ListeningSetup {
		return
	}
	s.difficulty = d
	s.phase = ListeningPlayback
}

// PlaybackDone moves from playback to the questions. It serves both the
// synthesizer completion callback and the manual skip.
func (s *ListeningSession) PlaybackDone() {
	if s.phase == ListeningPlayback {
		s.phase = ListeningQuestions
	}
}

// Current returns the question under the cursor.
func (s *ListeningSession) Current() content.Question {
	return s.Set.Questions[s.cursor]
}

// Index returns the zero-based cursor position.
func (s *ListeningSession) Index() int { return s.cursor }

// Count returns the number of questions.
func (s *ListeningSession) Count() int { return len(s.Set.Questions) }

// Answer records a single-option selection for the current question.
func (s *ListeningSession) Answer(optionID string) {
	s.answers[s.Current().ID] = []string{optionID}
}

// Selected returns the current question's recorded selection.
func (s *ListeningSession) Selected() []string {
	return s.answers[s.Current().ID]
}

// Next advances the forward-only cursor and reports true on the last
// question, meaning the session is complete.
func (s *ListeningSession) Next() (done bool) {
	if s.cursor >= len(s.Set.Questions)-1 {
		return true
	}
	s.cursor++
	return false
}

// Answers returns the recorded answer map keyed by question id.
func (s *ListeningSession) Answers() map[string][]string { return s.answers }

// Score grades the recorded answers.
func (s *ListeningSession) Score() SectionScore {
	return ScoreQuestions(s.Set.Questions, s.answers)
}
