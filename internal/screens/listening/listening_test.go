package listening

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/exam"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/speech"
	"github.com/mizuki/toeflsim/internal/storage"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func enterKey() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

func testSet() *content.ListeningSet {
	return &content.ListeningSet{
		ID:         "l1",
		Kind:       content.Lecture,
		Title:      "Bird Migration",
		Transcript: "Today we will discuss how birds navigate across continents.",
		Questions: []content.Question{
			{
				ID:     "q1",
				Kind:   content.SingleChoice,
				Prompt: "What is the lecture mainly about?",
				Options: []content.Option{
					{ID: "a", Text: "Bird navigation"},
					{ID: "b", Text: "Ocean currents"},
				},
				CorrectAnswers: []string{"a"},
				CategoryLabel:  "Gist Content",
			},
			{
				ID:     "q2",
				Kind:   content.SingleChoice,
				Prompt: "What does the professor imply?",
				Options: []content.Option{
					{ID: "a", Text: "Routes are learned"},
					{ID: "b", Text: "Routes are innate"},
				},
				CorrectAnswers: []string{"b"},
				CategoryLabel:  "Inference",
			},
		},
	}
}

func testServices() *screen.Services {
	return &screen.Services{
		Log:   report.NewLog(storage.NewMemoryKV()),
		Synth: &speech.NullSynthesizer{},
	}
}

func loadedScreen(services *screen.Services, done func(report.SectionReport) tea.Cmd) *ListeningScreen {
	l := New(services, done)
	updated, _ := l.Update(setReadyMsg{Set: testSet()})
	return updated.(*ListeningScreen)
}

func TestSetupThenPlaybackThenQuestions(t *testing.T) {
	l := loadedScreen(testServices(), nil)

	if l.session.Phase() != exam.ListeningSetup {
		t.Fatal("expected setup phase after generation")
	}

	// Select ADVANCED and start.
	l.Update(keyPress('j'))
	l.Update(keyPress('j'))
	l.Update(enterKey())

	if l.session.Phase() != exam.ListeningPlayback {
		t.Fatalf("phase = %v, want playback", l.session.Phase())
	}
	if l.session.Difficulty() != exam.Advanced {
		t.Errorf("difficulty = %v, want advanced", l.session.Difficulty())
	}

	l.Update(playbackDoneMsg{})
	if l.session.Phase() != exam.ListeningQuestions {
		t.Fatalf("phase = %v, want questions", l.session.Phase())
	}
}

func TestNextRequiresAnswer(t *testing.T) {
	l := loadedScreen(testServices(), nil)
	l.session.Start(exam.Intermediate)
	l.Update(playbackDoneMsg{})

	l.Update(enterKey())
	if l.notice == "" {
		t.Error("expected a notice when advancing without an answer")
	}
	if l.session.Index() != 0 {
		t.Errorf("cursor = %d, want 0", l.session.Index())
	}
}

func TestCompleteSessionRecordsAndFinishes(t *testing.T) {
	services := testServices()
	var got report.SectionReport
	done := func(rep report.SectionReport) tea.Cmd {
		got = rep
		return nil
	}
	l := loadedScreen(services, done)
	l.session.Start(exam.Intermediate)
	l.Update(playbackDoneMsg{})

	l.Update(keyPress('1')) // correct for q1
	l.Update(enterKey())
	l.Update(keyPress('1')) // wrong for q2
	l.Update(enterKey())

	if got.RawScore != 1 || got.MaxScore != 2 {
		t.Errorf("report raw = %d/%d, want 1/2", got.RawScore, got.MaxScore)
	}
	if len(services.Log.All()) != 2 {
		t.Errorf("performance records = %d, want 2", len(services.Log.All()))
	}
}

func TestStandaloneFinishReplacesWithResult(t *testing.T) {
	l := loadedScreen(testServices(), nil)
	l.session.Start(exam.Intermediate)
	l.Update(playbackDoneMsg{})

	l.Update(keyPress('1'))
	l.Update(enterKey())
	l.Update(keyPress('2'))
	_, cmd := l.Update(enterKey())

	if cmd == nil {
		t.Fatal("expected replace command")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg to the result screen")
	}
}

func TestSpeakErrorSkipsToQuestions(t *testing.T) {
	l := loadedScreen(testServices(), nil)
	l.session.Start(exam.Intermediate)

	updated, _ := l.Update(speakErrMsg{Err: fakeErr("no audio device")})
	l = updated.(*ListeningScreen)

	if l.session.Phase() != exam.ListeningQuestions {
		t.Fatal("expected questions phase after playback failure")
	}
	if l.notice == "" {
		t.Error("expected an audio-unavailable notice")
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
