// Package speech abstracts text-to-speech playback and speech recognition
// behind interfaces the session screens depend on. Both degrade gracefully
// when no backend is available on the host.
package speech

import (
	"os/exec"
	"strconv"
	"sync"
)

// Synthesizer plays text aloud. Speak returns immediately; onDone fires
// once playback finishes or is stopped. Stop is safe to call anytime,
// including when nothing is playing.
type Synthesizer interface {
	Speak(text string, rate float64, onDone func()) error
	Stop()
}

// Recognizer captures spoken input as incremental transcript text.
// Available reports whether a backend exists; when false, callers fall
// back to typed transcripts and must not treat it as an error.
type Recognizer interface {
	Available() bool
	Start(onTranscript func(text string)) error
	Stop()
}

// baseWPM is the nominal speech rate; rate 1.0 maps to it.
const baseWPM = 175

func wordsPerMinute(rate float64) int {
	if rate <= 0 {
		rate = 1.0
	}
	return int(float64(baseWPM) * rate)
}

// CommandSynthesizer shells out to a local TTS binary (say on macOS,
// espeak elsewhere).
type CommandSynthesizer struct {
	binary string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewSynthesizer returns a command-backed synthesizer when a known TTS
// binary is on PATH, otherwise a NullSynthesizer.
func NewSynthesizer() Synthesizer {
	for _, bin := range []string{"say", "espeak"} {
		if _, err := exec.LookPath(bin); err == nil {
			return &CommandSynthesizer{binary: bin}
		}
	}
	return &NullSynthesizer{}
}

func (s *CommandSynthesizer) Speak(text string, rate float64, onDone func()) error {
	s.Stop()

	wpm := strconv.Itoa(wordsPerMinute(rate))
	var cmd *exec.Cmd
	switch s.binary {
	case "say":
		cmd = exec.Command("say", "-r", wpm, text)
	default:
		cmd = exec.Command(s.binary, "-s", wpm, text)
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	go func() {
		cmd.Wait()
		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd = nil
		}
		s.mu.Unlock()
		if onDone != nil {
			onDone()
		}
	}()
	return nil
}

func (s *CommandSynthesizer) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
}

// NullSynthesizer is the silent fallback: it completes playback
// immediately so session flows still advance.
type NullSynthesizer struct{}

func (n *NullSynthesizer) Speak(_ string, _ float64, onDone func()) error {
	if onDone != nil {
		go onDone()
	}
	return nil
}

func (n *NullSynthesizer) Stop() {}

// NullRecognizer reports no recognition backend. Screens seeing
// Available() == false capture a typed transcript instead.
type NullRecognizer struct{}

// NewRecognizer returns the host's recognizer. No portable terminal
// speech-capture backend exists, so this is always the null fallback.
func NewRecognizer() Recognizer {
	return &NullRecognizer{}
}

func (n *NullRecognizer) Available() bool               { return false }
func (n *NullRecognizer) Start(func(text string)) error { return nil }
func (n *NullRecognizer) Stop()                         {}
