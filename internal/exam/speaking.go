package exam

import (
	"strings"

	"github.com/mizuki/toeflsim/internal/content"
)

// speakingReadingSeconds is the fixed reading window for integrated
// tasks that include a passage.
const speakingReadingSeconds = 45

// SpeakingPhase is a speaking session state.
type SpeakingPhase int

const (
	SpeakingSetup SpeakingPhase = iota
	SpeakingReading
	SpeakingListening
	SpeakingPreparation
	SpeakingRecording
	SpeakingGrading
)

// SpeakingSession runs the speaking task flow. Integrated tasks pass
// through reading and listening presentation phases first; independent
// tasks go straight to preparation. Timed phases auto-advance on expiry,
// and recording expiry ends transcript capture.
type SpeakingSession struct {
	Task *content.SpeakingTask

	phase      SpeakingPhase
	difficulty ExamDifficulty
	timer      *Timer
	transcript []string
}

// NewSpeakingSession starts a session in the setup phase.
func NewSpeakingSession(task *content.SpeakingTask) *SpeakingSession {
	return &SpeakingSession{
		Task:       task,
		difficulty: Intermediate,
		timer:      NewPhaseTimer(0),
	}
}

// Phase returns the current state.
func (s *SpeakingSession) Phase() SpeakingPhase { return s.phase }

// Difficulty returns the selected difficulty.
func (s *SpeakingSession) Difficulty() ExamDifficulty { return s.difficulty }

// Remaining returns seconds left in the current timed phase.
func (s *SpeakingSession) Remaining() int { return s.timer.Remaining() }

// Start records the difficulty and enters the first phase the task
// calls for.
func (s *SpeakingSession) Start(d ExamDifficulty) {
	if s.phase != SpeakingSetup {
		return
	}
	s.difficulty = d

	switch {
	case s.Task.Kind == content.Integrated && s.Task.Reading != "":
		s.phase = SpeakingReading
		s.timer.Reset(speakingReadingSeconds)
	case s.Task.Kind == content.Integrated && s.Task.ListeningTranscript != "":
		s.phase = SpeakingListening
	default:
		s.startPreparation()
	}
}

// FinishReading ends the reading window early.
func (s *SpeakingSession) FinishReading() {
	if s.phase == SpeakingReading {
		s.advanceFromReading()
	}
}

// PlaybackDone ends the listening phase when the synthesizer completes
// (or the user skips).
func (s *SpeakingSession) PlaybackDone() {
	if s.phase == SpeakingListening {
		s.startPreparation()
	}
}

// AppendTranscript accumulates recognized (or typed) speech during the
// recording window. Input outside the window is ignored.
func (s *SpeakingSession) AppendTranscript(text string) {
	if s.phase != SpeakingRecording {
		return
	}
	text = strings.TrimSpace(text)
	if text != "" {
		s.transcript = append(s.transcript, text)
	}
}

// Transcript returns the accumulated response text. An empty capture
// reads as a fixed placeholder so grading still has input.
func (s *SpeakingSession) Transcript() string {
	if len(s.transcript) == 0 {
		return "No speech detected."
	}
	return strings.Join(s.transcript, " ")
}

// Tick advances the current phase timer and reports whether the session
// just entered the grading phase, meaning the recording is over and the
// transcript is ready for submission.
func (s *SpeakingSession) Tick() (recordingDone bool) {
	if !s.timer.Tick() {
		return false
	}
	switch s.phase {
	case SpeakingReading:
		s.advanceFromReading()
	case SpeakingPreparation:
		s.phase = SpeakingRecording
		s.timer.Reset(s.Task.RecordingSeconds)
	case SpeakingRecording:
		s.phase = SpeakingGrading
		return true
	}
	return false
}

func (s *SpeakingSession) advanceFromReading() {
	if s.Task.ListeningTranscript != "" {
		s.phase = SpeakingListening
		return
	}
	s.startPreparation()
}

func (s *SpeakingSession) startPreparation() {
	s.phase = SpeakingPreparation
	s.timer.Reset(s.Task.PreparationSeconds)
}
