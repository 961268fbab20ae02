// Package speaking runs the speaking section: source presentation,
// preparation and recording countdowns, then LLM grading of the
// transcript.
package speaking

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/exam"
	"github.com/mizuki/toeflsim/internal/grading"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/screens/feedback"
	"github.com/mizuki/toeflsim/internal/ui/components"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

type taskReadyMsg struct {
	Task *content.SpeakingTask
	Err  error
}

type playbackDoneMsg struct{}

type gradeMsg struct {
	Grade grading.Grade
	Err   error
}

type tickMsg time.Time

// SpeakingScreen implements screen.Screen for a speaking session.
type SpeakingScreen struct {
	services *screen.Services
	done     func(report.SectionReport) tea.Cmd

	session *exam.SpeakingSession
	menu    components.Menu
	input   components.TextInput
	confirm bool
	notice  string
	errMsg  string
}

var _ screen.Screen = (*SpeakingScreen)(nil)
var _ screen.KeyHintProvider = (*SpeakingScreen)(nil)
var _ screen.SectionBadgeProvider = (*SpeakingScreen)(nil)

// New creates a speaking session screen. done is nil outside a full test.
func New(services *screen.Services, done func(report.SectionReport) tea.Cmd) *SpeakingScreen {
	s := &SpeakingScreen{services: services, done: done}
	s.input = components.NewTextInput("Speak here, one sentence at a time...", 0)
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "BEGINNER      0.8x speed, EN + JP subtitles", Action: func() tea.Cmd { return s.start(exam.Beginner) }},
		{Label: "INTERMEDIATE  1.0x speed, EN subtitles", Action: func() tea.Cmd { return s.start(exam.Intermediate) }},
		{Label: "ADVANCED      1.2x speed, no subtitles", Action: func() tea.Cmd { return s.start(exam.Advanced) }},
	})
	return s
}

func (s *SpeakingScreen) Init() tea.Cmd {
	return func() tea.Msg {
		task, err := s.services.Gen.GenerateSpeaking(context.Background())
		return taskReadyMsg{Task: task, Err: err}
	}
}

func (s *SpeakingScreen) start(d exam.ExamDifficulty) tea.Cmd {
	s.session.Start(d)
	cmds := []tea.Cmd{tickCmd()}
	if s.session.Phase() == exam.SpeakingListening {
		cmds = append(cmds, s.play())
	}
	return tea.Batch(cmds...)
}

func (s *SpeakingScreen) play() tea.Cmd {
	finished := make(chan struct{})
	err := s.services.Synth.Speak(
		s.session.Task.ListeningTranscript,
		s.session.Difficulty().SpeechRate(),
		func() { close(finished) },
	)
	if err != nil {
		return func() tea.Msg { return playbackDoneMsg{} }
	}
	return func() tea.Msg {
		<-finished
		return playbackDoneMsg{}
	}
}

func (s *SpeakingScreen) Title() string { return "Speaking" }

func (s *SpeakingScreen) SectionBadge() string { return "Speaking" }

func (s *SpeakingScreen) KeyHints() []layout.KeyHint {
	if s.confirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Exit test"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.session == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	switch s.session.Phase() {
	case exam.SpeakingSetup:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Difficulty"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Exit"},
		}
	case exam.SpeakingReading:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Finish reading"},
			{Key: "Esc", Description: "Exit"},
		}
	case exam.SpeakingListening:
		return []layout.KeyHint{
			{Key: "S", Description: "Skip audio"},
			{Key: "Esc", Description: "Exit"},
		}
	case exam.SpeakingRecording:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Add sentence"},
			{Key: "Esc", Description: "Exit"},
		}
	default:
		return []layout.KeyHint{{Key: "Esc", Description: "Exit"}}
	}
}

func (s *SpeakingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case taskReadyMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.session = exam.NewSpeakingSession(msg.Task)
		return s, nil

	case playbackDoneMsg:
		s.session.PlaybackDone()
		return s, nil

	case tickMsg:
		if s.session == nil || s.session.Phase() == exam.SpeakingGrading {
			return s, nil
		}
		before := s.session.Phase()
		recordingDone := s.session.Tick()
		if recordingDone {
			return s, s.grade()
		}
		cmds := []tea.Cmd{tickCmd()}
		if before == exam.SpeakingReading && s.session.Phase() == exam.SpeakingListening {
			cmds = append(cmds, s.play())
		}
		return s, tea.Batch(cmds...)

	case gradeMsg:
		return s.handleGrade(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SpeakingScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.confirm {
		switch key {
		case "y", "Y":
			s.services.Synth.Stop()
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

	switch s.session.Phase() {
	case exam.SpeakingSetup:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd

	case exam.SpeakingReading:
		if key == "enter" || key == "s" {
			s.session.FinishReading()
			if s.session.Phase() == exam.SpeakingListening {
				return s, s.play()
			}
		}
		return s, nil

	case exam.SpeakingListening:
		if key == "s" || key == "enter" {
			s.services.Synth.Stop()
		}
		return s, nil

	case exam.SpeakingRecording:
		if key == "enter" {
			s.session.AppendTranscript(s.input.Value())
			s.input.Reset()
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SpeakingScreen) grade() tea.Cmd {
	// Whatever is still in the input box counts toward the response.
	s.session.AppendTranscript(s.input.Value())
	task := s.session.Task
	transcript := s.session.Transcript()
	return func() tea.Msg {
		g, err := s.services.Grader.GradeSpeaking(context.Background(), task, transcript)
		return gradeMsg{Grade: g, Err: err}
	}
}

// handleGrade resolves the session. A grading failure ends it without a
// score; the submission is not retried.
func (s *SpeakingScreen) handleGrade(msg gradeMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	s.recordPerformance(msg.Grade)

	if s.done != nil {
		return s, s.done(report.SectionReport{
			RawScore: msg.Grade.Score,
			MaxScore: msg.Grade.MaxScore,
		})
	}

	fb := feedback.New("Speaking", msg.Grade, s.session.Transcript())
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: fb} }
}

func (s *SpeakingScreen) recordPerformance(g grading.Grade) {
	if s.services.Log == nil {
		return
	}
	err := s.services.Log.Append(report.PerformanceRecord{
		Date:     time.Now(),
		Category: "Speaking",
		Correct:  g.Score,
		Total:    g.MaxScore,
		TaskKind: string(s.session.Task.Kind),
	})
	if err != nil {
		s.notice = err.Error()
	}
}

func (s *SpeakingScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", s.errMsg))
	}
	if s.confirm {
		return renderConfirm(width)
	}
	if s.session == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n\n  Generating speaking task...")
	}

	switch s.session.Phase() {
	case exam.SpeakingSetup:
		return s.viewSetup(width)
	case exam.SpeakingReading:
		return s.viewReading(width)
	case exam.SpeakingListening:
		return s.viewListening(width)
	case exam.SpeakingPreparation:
		return s.viewCountdown(width, "Preparation", "Organize your answer. Recording starts automatically.")
	case exam.SpeakingRecording:
		return s.viewRecording(width)
	default:
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n\n  AI rater is scoring your response...")
	}
}

func (s *SpeakingScreen) viewSetup(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Speaking Task"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(string(s.session.Task.Kind)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))
	return b.String()
}

func (s *SpeakingScreen) viewReading(width int) string {
	var b strings.Builder
	b.WriteString(s.header(width, "Reading"))
	b.WriteString(lipgloss.NewStyle().
		Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).
		Render(s.session.Task.Reading))
	return b.String()
}

func (s *SpeakingScreen) viewListening(width int) string {
	var b strings.Builder
	d := s.session.Difficulty()
	task := s.session.Task

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render(fmt.Sprintf("♪ Playing at %.1fx ...", d.SpeechRate())))
	b.WriteString("\n\n")
	if d.ShowTranscript() {
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).
			Render(task.ListeningTranscript))
		b.WriteString("\n")
	}
	if d.ShowTranslation() && task.TranslatedListening != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.TextDim).
			Render(task.TranslatedListening))
	}
	return b.String()
}

func (s *SpeakingScreen) viewCountdown(width int, label, hint string) string {
	var b strings.Builder
	b.WriteString(s.header(width, label))
	b.WriteString(lipgloss.NewStyle().
		Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).Bold(true).
		Render(s.session.Task.Prompt))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render(hint))
	return b.String()
}

func (s *SpeakingScreen) viewRecording(width int) string {
	var b strings.Builder
	b.WriteString(s.header(width, "● Recording"))
	b.WriteString(lipgloss.NewStyle().
		Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).Bold(true).
		Render(s.session.Task.Prompt))
	b.WriteString("\n\n")

	if t := s.session.Transcript(); t != "No speech detected." {
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.TextDim).
			Render(t))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.NewStyle().PaddingLeft(4).
		Render(s.input.View()))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Foreground(theme.TextDim).
		Render("No microphone backend; type your answer one sentence at a time."))

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Foreground(theme.Warning).Render(s.notice))
	}
	return b.String()
}

func (s *SpeakingScreen) header(width int, label string) string {
	left := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("  " + label)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(layout.FormatClock(s.session.Remaining()))
	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad < 1 {
		pad = 1
	}
	return "\n" + left + strings.Repeat(" ", pad) + right + "\n" +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))) + "\n\n"
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
		Render("Your response will be discarded."))
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
