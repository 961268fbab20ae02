// Package listening runs the listening section: difficulty setup, audio
// playback through the synthesizer, then a forward-only question flow.
package listening

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/exam"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/screens/result"
	"github.com/mizuki/toeflsim/internal/ui/components"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

type setReadyMsg struct {
	Set *content.ListeningSet
	Err error
}

type playbackDoneMsg struct{}

type speakErrMsg struct{ Err error }

// ListeningScreen implements screen.Screen for a listening session.
type ListeningScreen struct {
	services *screen.Services
	done     func(report.SectionReport) tea.Cmd

	session *exam.ListeningSession
	menu    components.Menu
	options components.OptionList
	confirm bool
	notice  string
	errMsg  string
}

var _ screen.Screen = (*ListeningScreen)(nil)
var _ screen.KeyHintProvider = (*ListeningScreen)(nil)
var _ screen.SectionBadgeProvider = (*ListeningScreen)(nil)

// New creates a listening session screen. done is nil outside a full test.
func New(services *screen.Services, done func(report.SectionReport) tea.Cmd) *ListeningScreen {
	l := &ListeningScreen{services: services, done: done}
	l.menu = components.NewMenu([]components.MenuItem{
		{Label: "BEGINNER      0.8x speed, EN + JP subtitles", Action: func() tea.Cmd { return l.start(exam.Beginner) }},
		{Label: "INTERMEDIATE  1.0x speed, EN subtitles", Action: func() tea.Cmd { return l.start(exam.Intermediate) }},
		{Label: "ADVANCED      1.2x speed, no subtitles", Action: func() tea.Cmd { return l.start(exam.Advanced) }},
	})
	return l
}

func (l *ListeningScreen) Init() tea.Cmd {
	return l.generate()
}

func (l *ListeningScreen) generate() tea.Cmd {
	return func() tea.Msg {
		set, err := l.services.Gen.GenerateListening(context.Background())
		return setReadyMsg{Set: set, Err: err}
	}
}

// start begins playback at the chosen difficulty. The returned command
// blocks until the synthesizer finishes (or Stop kills it).
func (l *ListeningScreen) start(d exam.ExamDifficulty) tea.Cmd {
	l.session.Start(d)
	return l.play(l.session.Set.Transcript, d.SpeechRate())
}

func (l *ListeningScreen) play(text string, rate float64) tea.Cmd {
	finished := make(chan struct{})
	if err := l.services.Synth.Speak(text, rate, func() { close(finished) }); err != nil {
		return func() tea.Msg { return speakErrMsg{Err: err} }
	}
	return func() tea.Msg {
		<-finished
		return playbackDoneMsg{}
	}
}

func (l *ListeningScreen) Title() string { return "Listening" }

func (l *ListeningScreen) SectionBadge() string { return "Listening" }

func (l *ListeningScreen) KeyHints() []layout.KeyHint {
	if l.confirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Exit test"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if l.session == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	switch l.session.Phase() {
	case exam.ListeningSetup:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Difficulty"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Exit"},
		}
	case exam.ListeningPlayback:
		return []layout.KeyHint{
			{Key: "S", Description: "Skip audio"},
			{Key: "Esc", Description: "Exit"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Select"},
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Exit"},
		}
	}
}

func (l *ListeningScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case setReadyMsg:
		if msg.Err != nil {
			l.errMsg = msg.Err.Error()
			return l, nil
		}
		l.session = exam.NewListeningSession(msg.Set)
		return l, nil

	case playbackDoneMsg:
		l.session.PlaybackDone()
		l.options = components.NewOptionList(l.session.Current())
		return l, nil

	case speakErrMsg:
		// Playback failure skips straight to the questions.
		l.notice = "Audio unavailable: " + msg.Err.Error()
		l.session.PlaybackDone()
		l.options = components.NewOptionList(l.session.Current())
		return l, nil

	case tea.KeyMsg:
		return l.handleKey(msg)
	}
	return l, nil
}

func (l *ListeningScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if l.errMsg != "" {
		return l, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if l.confirm {
		switch key {
		case "y", "Y":
			l.services.Synth.Stop()
			return l, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			l.confirm = false
		}
		return l, nil
	}

	if key == "esc" {
		l.confirm = true
		return l, nil
	}

	if l.session == nil {
		return l, nil
	}

	switch l.session.Phase() {
	case exam.ListeningSetup:
		var cmd tea.Cmd
		l.menu, cmd = l.menu.Update(msg)
		return l, cmd

	case exam.ListeningPlayback:
		if key == "s" || key == "enter" {
			// Stop triggers onDone, which delivers playbackDoneMsg.
			l.services.Synth.Stop()
		}
		return l, nil

	default:
		return l.handleQuestionKey(msg)
	}
}

func (l *ListeningScreen) handleQuestionKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "enter" {
		selected := l.options.Selected()
		if len(selected) == 0 {
			l.notice = "Select an answer to continue."
			return l, nil
		}
		l.notice = ""
		l.session.Answer(selected[0])
		if l.session.Next() {
			return l.finish()
		}
		l.options = components.NewOptionList(l.session.Current())
		return l, nil
	}

	var cmd tea.Cmd
	l.options, cmd = l.options.Update(msg)
	return l, cmd
}

func (l *ListeningScreen) finish() (screen.Screen, tea.Cmd) {
	score := l.session.Score()
	l.recordPerformance()

	if l.done != nil {
		return l, l.done(report.SectionReport{
			RawScore:       score.Correct,
			MaxScore:       score.Total,
			CorrectAnswers: score.Correct,
			TotalQuestions: score.Total,
		})
	}

	res := result.NewForListening(l.services, l.session.Set, l.session.Answers(), score)
	return l, func() tea.Msg { return router.ReplaceScreenMsg{Screen: res} }
}

func (l *ListeningScreen) recordPerformance() {
	if l.services.Log == nil {
		return
	}
	answers := l.session.Answers()
	var records []report.PerformanceRecord
	for _, q := range l.session.Set.Questions {
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
	if err := l.services.Log.Append(records...); err != nil {
		l.errMsg = err.Error()
	}
}

func (l *ListeningScreen) View(width, height int) string {
	if l.errMsg != "" {
		return renderError(width, l.errMsg)
	}
	if l.confirm {
		return renderConfirm(width)
	}
	if l.session == nil {
		return renderLoading(width, "Generating audio material...")
	}

	switch l.session.Phase() {
	case exam.ListeningSetup:
		return l.viewSetup(width)
	case exam.ListeningPlayback:
		return l.viewPlayback(width)
	default:
		return l.viewQuestion(width)
	}
}

func (l *ListeningScreen) viewSetup(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(l.session.Set.Title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(string(l.session.Set.Kind)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).
		Render("Choose a difficulty"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, l.menu.View()))
	return b.String()
}

func (l *ListeningScreen) viewPlayback(width int) string {
	var b strings.Builder
	set := l.session.Set
	d := l.session.Difficulty()

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(set.Title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render(fmt.Sprintf("♪ Playing at %.1fx ...", d.SpeechRate())))
	b.WriteString("\n\n")

	if set.ImageDescription != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.TextDim).Italic(true).
			Render("[" + set.ImageDescription + "]"))
		b.WriteString("\n\n")
	}

	if d.ShowTranscript() {
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).
			Render(set.Transcript))
		b.WriteString("\n")
	}
	if d.ShowTranslation() && set.TranslatedTranscript != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.TextDim).
			Render(set.TranslatedTranscript))
		b.WriteString("\n")
	}

	return b.String()
}

func (l *ListeningScreen) viewQuestion(width int) string {
	var b strings.Builder
	q := l.session.Current()

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Question %d/%d", l.session.Index()+1, l.session.Count())))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width - 4).Foreground(theme.Text).Bold(true).
		Render("  " + q.Prompt))
	b.WriteString("\n\n")
	b.WriteString("  " + strings.ReplaceAll(l.options.View(), "\n", "\n  "))

	if l.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Foreground(theme.Warning).Render(l.notice))
	}
	return b.String()
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
