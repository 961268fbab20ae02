package exam

import "github.com/mizuki/toeflsim/internal/content"

// DefaultReadingSeconds is the reading section time limit.
const DefaultReadingSeconds = 1080

// ReadingSession is the reading test state: a cursor over the question
// list with free back-and-forth movement, an answer map, and two
// countdowns. The per-question timer is advisory; only the total timer
// matters for overtime display.
type ReadingSession struct {
	Passage *content.Passage

	cursor   int
	answers  map[string][]string
	question *Timer
	total    *Timer

	perQuestion int
}

// NewReadingSession starts a session over the passage. totalSeconds <= 0
// selects the standard limit.
func NewReadingSession(p *content.Passage, totalSeconds int) *ReadingSession {
	if totalSeconds <= 0 {
		totalSeconds = DefaultReadingSeconds
	}
	perQuestion := totalSeconds
	if n := len(p.Questions); n > 0 {
		perQuestion = totalSeconds / n
	}
	return &ReadingSession{
		Passage:     p,
		answers:     make(map[string][]string),
		question:    NewPhaseTimer(perQuestion),
		total:       NewTotalTimer(totalSeconds),
		perQuestion: perQuestion,
	}
}

// Current returns the question under the cursor.
func (s *ReadingSession) Current() content.Question {
	return s.Passage.Questions[s.cursor]
}

// Index returns the zero-based cursor position.
func (s *ReadingSession) Index() int { return s.cursor }

// Count returns the number of questions.
func (s *ReadingSession) Count() int { return len(s.Passage.Questions) }

// Answer records the selection for the current question, replacing any
// previous selection.
func (s *ReadingSession) Answer(selected []string) {
	s.answers[s.Current().ID] = selected
}

// Selected returns the current question's recorded selection.
func (s *ReadingSession) Selected() []string {
	return s.answers[s.Current().ID]
}

// Next advances the cursor and reports true when called on the last
// question, meaning the session is complete.
func (s *ReadingSession) Next() (done bool) {
	if s.cursor >= len(s.Passage.Questions)-1 {
		return true
	}
	s.cursor++
	s.question.Reset(s.perQuestion)
	return false
}

// Prev moves the cursor back one question. Revisiting carries no penalty.
func (s *ReadingSession) Prev() {
	if s.cursor > 0 {
		s.cursor--
		s.question.Reset(s.perQuestion)
	}
}

// Tick advances both countdowns one second and reports whether the total
// limit expired on this tick.
func (s *ReadingSession) Tick() (totalExpired bool) {
	s.question.Tick()
	return s.total.Tick()
}

// QuestionRemaining returns seconds left on the current question.
func (s *ReadingSession) QuestionRemaining() int { return s.question.Remaining() }

// TotalRemaining returns seconds left overall, negative in overtime.
func (s *ReadingSession) TotalRemaining() int { return s.total.Remaining() }

// Answers returns the recorded answer map keyed by question id.
func (s *ReadingSession) Answers() map[string][]string { return s.answers }

// Score grades the recorded answers.
func (s *ReadingSession) Score() SectionScore {
	return ScoreQuestions(s.Passage.Questions, s.answers)
}
