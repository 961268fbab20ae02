// Package reading runs the reading section: passage generation, the
// question cursor, and submission into the result screen.
package reading

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/contentgen"
	"github.com/mizuki/toeflsim/internal/exam"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/screens/result"
	"github.com/mizuki/toeflsim/internal/ui/components"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

type passageReadyMsg struct {
	Passage *content.Passage
	Err     error
}

type tickMsg time.Time

// ReadingScreen implements screen.Screen for a reading session.
type ReadingScreen struct {
	services *screen.Services
	params   contentgen.ReadingParams
	vocab    bool
	// done is set when this session is one full-test section; it
	// receives the section report instead of the result screen.
	done func(report.SectionReport) tea.Cmd

	session *exam.ReadingSession
	options components.OptionList
	confirm bool
	errMsg  string
}

var _ screen.Screen = (*ReadingScreen)(nil)
var _ screen.KeyHintProvider = (*ReadingScreen)(nil)
var _ screen.SectionBadgeProvider = (*ReadingScreen)(nil)

// New creates a reading session screen. done is nil outside a full test.
func New(services *screen.Services, params contentgen.ReadingParams, done func(report.SectionReport) tea.Cmd) *ReadingScreen {
	return &ReadingScreen{services: services, params: params, done: done}
}

// NewVocab creates a vocabulary drill screen; it reuses the reading
// flow over vocab lesson content.
func NewVocab(services *screen.Services) *ReadingScreen {
	return &ReadingScreen{services: services, vocab: true}
}

func (s *ReadingScreen) Init() tea.Cmd {
	return s.generate()
}

func (s *ReadingScreen) generate() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var p *content.Passage
		var err error
		if s.vocab {
			p, err = s.services.Gen.GenerateVocabLesson(ctx)
		} else {
			p, err = s.services.Gen.GenerateReading(ctx, s.params)
		}
		return passageReadyMsg{Passage: p, Err: err}
	}
}

func (s *ReadingScreen) Title() string {
	if s.vocab {
		return "Vocab Drill"
	}
	if s.params.Intensive {
		return "Intensive Reading"
	}
	return "Reading"
}

func (s *ReadingScreen) SectionBadge() string { return "Reading" }

func (s *ReadingScreen) KeyHints() []layout.KeyHint {
	if s.confirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Exit test"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.session == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Select"},
		{Key: "N/P", Description: "Next/Prev"},
		{Key: "S", Description: "Submit"},
		{Key: "Esc", Description: "Exit"},
	}
}

func (s *ReadingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case passageReadyMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.session = exam.NewReadingSession(msg.Passage, 0)
		s.options = components.NewOptionList(s.session.Current())
		return s, tickCmd()

	case tickMsg:
		if s.session == nil {
			return s, nil
		}
		s.session.Tick()
		return s, tickCmd()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ReadingScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.confirm {
		switch key {
		case "y", "Y":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirm = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirm = true
		return s, nil
	}

	if s.session == nil {
		return s, nil
	}

	switch key {
	case "n", "right":
		s.session.Answer(s.options.Selected())
		if s.session.Next() {
			return s.finish()
		}
		s.reloadOptions()
		return s, nil
	case "p", "left":
		s.session.Answer(s.options.Selected())
		s.session.Prev()
		s.reloadOptions()
		return s, nil
	case "s":
		s.session.Answer(s.options.Selected())
		return s.finish()
	}

	var cmd tea.Cmd
	s.options, cmd = s.options.Update(msg)
	return s, cmd
}

func (s *ReadingScreen) reloadOptions() {
	s.options = components.NewOptionList(s.session.Current())
	s.options.SetSelected(s.session.Selected())
}

func (s *ReadingScreen) finish() (screen.Screen, tea.Cmd) {
	score := s.session.Score()
	s.recordPerformance()

	if s.done != nil {
		return s, s.done(report.SectionReport{
			RawScore:       score.Correct,
			MaxScore:       score.Total,
			CorrectAnswers: score.Correct,
			TotalQuestions: score.Total,
		})
	}

	res := result.New(s.services, s.session.Passage, s.session.Answers(), score)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: res} }
}

// recordPerformance appends one performance record per question, keyed
// by the question's category label.
func (s *ReadingScreen) recordPerformance() {
	if s.services.Log == nil || s.vocab {
		return
	}
	answers := s.session.Answers()
	var records []report.PerformanceRecord
	for _, q := range s.session.Passage.Questions {
		correct := 0
		if exam.ScoreQuestions([]content.Question{q}, answers).Correct == 1 {
			correct = 1
		}
		records = append(records, report.PerformanceRecord{
			Date:     time.Now(),
			Category: q.CategoryLabel,
			Correct:  correct,
			Total:    1,
		})
	}
	if err := s.services.Log.Append(records...); err != nil {
		s.errMsg = err.Error()
	}
}

func (s *ReadingScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.confirm {
		return renderConfirm(width)
	}
	if s.session == nil {
		label := "Generating passage..."
		if s.vocab {
			label = "Preparing vocabulary drill..."
		}
		return renderLoading(width, label)
	}

	var b strings.Builder
	q := s.session.Current()

	info := fmt.Sprintf("  Question %d/%d", s.session.Index()+1, s.session.Count())
	clock := fmt.Sprintf("Q %s   Total %s",
		layout.FormatClock(s.session.QuestionRemaining()),
		layout.FormatClock(s.session.TotalRemaining()))
	b.WriteString(infoLine(info, clock, width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	// Passage panel: the paragraph the question references, or the title
	// and opening paragraph.
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render("  " + s.session.Passage.Title))
	b.WriteString("\n\n")
	b.WriteString(renderParagraph(s.session.Passage, q, width))
	b.WriteString("\n\n")

	prompt := lipgloss.NewStyle().
		Width(width - 4).
		Foreground(theme.Text).
		Bold(true).
		Render("  " + q.Prompt)
	b.WriteString(prompt)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Left, "  "+strings.ReplaceAll(s.options.View(), "\n", "\n  ")))

	return b.String()
}

func renderParagraph(p *content.Passage, q content.Question, width int) string {
	idx := 0
	if q.ParagraphRef > 0 && q.ParagraphRef <= len(p.Paragraphs) {
		idx = q.ParagraphRef - 1
	}
	text := ""
	if idx < len(p.Paragraphs) {
		text = p.Paragraphs[idx]
	}
	return lipgloss.NewStyle().
		Width(width - 8).
		Foreground(theme.Text).
		PaddingLeft(4).
		Render(text)
}

func infoLine(left, right string, width int) string {
	l := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(left)
	r := lipgloss.NewStyle().Foreground(theme.TextDim).Render(right)
	pad := width - lipgloss.Width(l) - lipgloss.Width(r) - 4
	if pad < 1 {
		pad = 1
	}
	return l + strings.Repeat(" ", pad) + r
}

func renderLoading(width int, label string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + label)
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Generation failed: %s\n\n  Press any key to go back.", errMsg))
}

func renderConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).Bold(true).
		Render("Exit this test?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render("Your answers will be discarded."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Error).
		Render("[Y] Yes, exit"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Primary).
		Render("[N] No, keep going"))
	return b.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
