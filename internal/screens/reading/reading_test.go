package reading

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/contentgen"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/storage"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func testPassage() *content.Passage {
	return &content.Passage{
		ID:    "p1",
		Title: "Coral Reefs",
		Paragraphs: []string{
			"Coral reefs are built by colonies of tiny animals.",
			"They are among the most diverse ecosystems on Earth.",
		},
		Questions: []content.Question{
			{
				ID:     "q1",
				Kind:   content.SingleChoice,
				Prompt: "What builds coral reefs?",
				Options: []content.Option{
					{ID: "a", Text: "Plants"},
					{ID: "b", Text: "Tiny animals"},
					{ID: "c", Text: "Currents"},
				},
				CorrectAnswers: []string{"b"},
				CategoryLabel:  "Factual Information",
				ParagraphRef:   1,
			},
			{
				ID:     "q2",
				Kind:   content.SingleChoice,
				Prompt: "Reefs are notable for their what?",
				Options: []content.Option{
					{ID: "a", Text: "Diversity"},
					{ID: "b", Text: "Depth"},
				},
				CorrectAnswers: []string{"a"},
				CategoryLabel:  "Factual Information",
				ParagraphRef:   2,
			},
		},
	}
}

func testServices() *screen.Services {
	return &screen.Services{Log: report.NewLog(storage.NewMemoryKV())}
}

func loadedScreen(services *screen.Services, done func(report.SectionReport) tea.Cmd) *ReadingScreen {
	s := New(services, contentgen.ReadingParams{}, done)
	updated, _ := s.Update(passageReadyMsg{Passage: testPassage()})
	return updated.(*ReadingScreen)
}

func TestPassageReadyStartsSession(t *testing.T) {
	s := loadedScreen(testServices(), nil)

	if s.session == nil {
		t.Fatal("expected session to start")
	}
	if got := s.session.Count(); got != 2 {
		t.Errorf("question count = %d, want 2", got)
	}
	if s.session.Index() != 0 {
		t.Errorf("cursor = %d, want 0", s.session.Index())
	}
}

func TestGenerationFailureShowsError(t *testing.T) {
	s := New(testServices(), contentgen.ReadingParams{}, nil)
	updated, _ := s.Update(passageReadyMsg{Err: errFake})
	s = updated.(*ReadingScreen)

	if s.errMsg == "" {
		t.Fatal("expected error message")
	}

	// Any key returns to the previous screen.
	_, cmd := s.Update(keyPress('x'))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestAnswerAndSubmitReplacesWithResult(t *testing.T) {
	services := testServices()
	s := loadedScreen(services, nil)

	// Pick option 2 on q1, advance, pick option 1 on q2, submit.
	s.Update(keyPress('2'))
	s.Update(keyPress('n'))
	s.Update(keyPress('1'))
	_, cmd := s.Update(keyPress('s'))

	if cmd == nil {
		t.Fatal("expected replace command")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatal("expected ReplaceScreenMsg to the result screen")
	}

	records := services.Log.All()
	if len(records) != 2 {
		t.Fatalf("performance records = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.Correct != 1 {
			t.Errorf("record %s correct = %d, want 1", r.Category, r.Correct)
		}
	}
}

func TestDoneCallbackReceivesSectionReport(t *testing.T) {
	var got report.SectionReport
	done := func(rep report.SectionReport) tea.Cmd {
		got = rep
		return nil
	}
	s := loadedScreen(testServices(), done)

	s.Update(keyPress('2')) // correct for q1
	s.Update(keyPress('n'))
	s.Update(keyPress('2')) // wrong for q2
	s.Update(keyPress('s'))

	if got.RawScore != 1 || got.MaxScore != 2 {
		t.Errorf("report raw = %d/%d, want 1/2", got.RawScore, got.MaxScore)
	}
	if got.TotalQuestions != 2 {
		t.Errorf("total questions = %d, want 2", got.TotalQuestions)
	}
}

func TestPrevPreservesAnswer(t *testing.T) {
	s := loadedScreen(testServices(), nil)

	s.Update(keyPress('2'))
	s.Update(keyPress('n'))
	s.Update(keyPress('p'))

	if got := s.options.Selected(); len(got) != 1 || got[0] != "b" {
		t.Errorf("restored selection = %v, want [b]", got)
	}
}

func TestEscConfirmThenExit(t *testing.T) {
	s := loadedScreen(testServices(), nil)

	key := tea.KeyPressMsg{Code: tea.KeyEscape}
	s.Update(key)
	if !s.confirm {
		t.Fatal("expected confirm prompt after esc")
	}

	// N keeps the session going.
	s.Update(keyPress('n'))
	if s.confirm {
		t.Fatal("expected confirm dismissed")
	}

	s.Update(key)
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

var errFake = fakeErr("generation failed")
