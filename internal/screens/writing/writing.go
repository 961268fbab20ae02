// Package writing runs the writing section: source presentation for
// integrated tasks, the timed essay editor, then LLM grading.
package writing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/exam"
	"github.com/mizuki/toeflsim/internal/grading"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/screens/feedback"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

type taskReadyMsg struct {
	Task *content.WritingTask
	Err  error
}

type playbackDoneMsg struct{}

type gradeMsg struct {
	Grade grading.Grade
	Err   error
}

type tickMsg time.Time

// WritingScreen implements screen.Screen for a writing session.
type WritingScreen struct {
	services *screen.Services
	done     func(report.SectionReport) tea.Cmd

	session *exam.WritingSession
	editor  textarea.Model
	grading bool
	confirm bool
	notice  string
	errMsg  string
}

var _ screen.Screen = (*WritingScreen)(nil)
var _ screen.KeyHintProvider = (*WritingScreen)(nil)
var _ screen.SectionBadgeProvider = (*WritingScreen)(nil)

// New creates a writing session screen. done is nil outside a full test.
func New(services *screen.Services, done func(report.SectionReport) tea.Cmd) *WritingScreen {
	ta := textarea.New()
	ta.Placeholder = "Write your response here..."
	ta.Focus()
	return &WritingScreen{services: services, done: done, editor: ta}
}

func (w *WritingScreen) Init() tea.Cmd {
	return func() tea.Msg {
		task, err := w.services.Gen.GenerateWriting(context.Background())
		return taskReadyMsg{Task: task, Err: err}
	}
}

func (w *WritingScreen) play() tea.Cmd {
	finished := make(chan struct{})
	err := w.services.Synth.Speak(w.session.Task.ListeningTranscript, 1.0, func() { close(finished) })
	if err != nil {
		return func() tea.Msg { return playbackDoneMsg{} }
	}
	return func() tea.Msg {
		<-finished
		return playbackDoneMsg{}
	}
}

func (w *WritingScreen) Title() string { return "Writing" }

func (w *WritingScreen) SectionBadge() string { return "Writing" }

func (w *WritingScreen) KeyHints() []layout.KeyHint {
	if w.confirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Exit test"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if w.session == nil || w.grading {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	switch w.session.Phase() {
	case exam.WritingReading:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue to lecture"},
			{Key: "Esc", Description: "Exit"},
		}
	case exam.WritingListening:
		return []layout.KeyHint{
			{Key: "S", Description: "Skip audio"},
			{Key: "Esc", Description: "Exit"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Esc", Description: "Exit"},
		}
	}
}

func (w *WritingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case taskReadyMsg:
		if msg.Err != nil {
			w.errMsg = msg.Err.Error()
			return w, nil
		}
		w.session = exam.NewWritingSession(msg.Task)
		return w, tickCmd()

	case playbackDoneMsg:
		w.session.FinishListening()
		return w, nil

	case tickMsg:
		if w.session == nil || w.grading {
			return w, nil
		}
		if w.session.Tick() {
			w.notice = "Time is up. You can still review and submit."
		}
		return w, tickCmd()

	case gradeMsg:
		return w.handleGrade(msg)

	case tea.KeyMsg:
		return w.handleKey(msg)
	}
	return w, nil
}

func (w *WritingScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if w.errMsg != "" {
		return w, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if w.confirm {
		switch key {
		case "y", "Y":
			w.services.Synth.Stop()
			return w, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			w.confirm = false
		}
		return w, nil
	}

	if key == "esc" {
		w.confirm = true
		return w, nil
	}

	if w.session == nil || w.grading {
		return w, nil
	}

	switch w.session.Phase() {
	case exam.WritingReading:
		if key == "enter" || key == "s" {
			w.session.FinishReading()
			return w, w.play()
		}
		return w, nil

	case exam.WritingListening:
		if key == "s" || key == "enter" {
			w.services.Synth.Stop()
		}
		return w, nil

	default:
		if key == "ctrl+s" {
			if !w.session.CanSubmit() {
				w.notice = "Write at least a few sentences before submitting."
				return w, nil
			}
			w.grading = true
			return w, w.grade()
		}
		var cmd tea.Cmd
		w.editor, cmd = w.editor.Update(msg)
		w.session.SetEssay(w.editor.Value())
		return w, cmd
	}
}

func (w *WritingScreen) grade() tea.Cmd {
	task := w.session.Task
	essay := w.session.Essay()
	return func() tea.Msg {
		g, err := w.services.Grader.GradeWriting(context.Background(), task, essay)
		return gradeMsg{Grade: g, Err: err}
	}
}

// handleGrade resolves the session. A grading failure ends it without a
// score; the essay is not retried.
func (w *WritingScreen) handleGrade(msg gradeMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		w.errMsg = msg.Err.Error()
		return w, nil
	}

	w.recordPerformance(msg.Grade)

	if w.done != nil {
		return w, w.done(report.SectionReport{
			RawScore: msg.Grade.Score,
			MaxScore: msg.Grade.MaxScore,
		})
	}

	fb := feedback.New("Writing", msg.Grade, w.session.Essay())
	return w, func() tea.Msg { return router.ReplaceScreenMsg{Screen: fb} }
}

func (w *WritingScreen) recordPerformance(g grading.Grade) {
	if w.services.Log == nil {
		return
	}
	err := w.services.Log.Append(report.PerformanceRecord{
		Date:     time.Now(),
		Category: "Writing",
		Correct:  g.Score,
		Total:    g.MaxScore,
		TaskKind: string(w.session.Task.Kind),
	})
	if err != nil {
		w.notice = err.Error()
	}
}

func (w *WritingScreen) View(width, height int) string {
	if w.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", w.errMsg))
	}
	if w.confirm {
		return renderConfirm(width)
	}
	if w.session == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n\n  Generating writing task...")
	}
	if w.grading {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n\n  AI rater is scoring your essay...")
	}

	switch w.session.Phase() {
	case exam.WritingReading:
		return w.viewSource(width, "Reading", w.session.Task.Reading)
	case exam.WritingListening:
		return w.viewSource(width, "♪ Lecture", w.session.Task.ListeningTranscript)
	default:
		return w.viewCompose(width, height)
	}
}

func (w *WritingScreen) viewSource(width int, label, text string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(w.session.Task.Title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("  " + label))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).
		Render(text))
	return b.String()
}

func (w *WritingScreen) viewCompose(width, height int) string {
	var b strings.Builder
	task := w.session.Task

	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  %d words (min %d)", w.session.WordCount(), task.MinWords()))
	clockStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if w.session.TimeUp() {
		clockStyle = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	}
	right := clockStyle.Render(layout.FormatClock(w.session.Remaining()))
	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad < 1 {
		pad = 1
	}
	b.WriteString(left + strings.Repeat(" ", pad) + right)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width - 8).PaddingLeft(4).Foreground(theme.Text).Bold(true).
		Render(task.Question))
	b.WriteString("\n")

	for _, post := range task.StudentPosts {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width-8).PaddingLeft(4).Foreground(theme.TextDim).
			Render(post.Name + ": " + post.Text))
	}
	b.WriteString("\n\n")

	w.editor.SetWidth(min(width-8, 90))
	w.editor.SetHeight(max(height-lipgloss.Height(b.String())-2, 3))
	b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Render(w.editor.View()))

	if w.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Foreground(theme.Warning).Render(w.notice))
	}
	return b.String()
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
		Render("Your essay will be discarded."))
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
