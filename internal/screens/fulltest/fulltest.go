// Package fulltest chains the four sections into one scored test run.
package fulltest

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/contentgen"
	"github.com/mizuki/toeflsim/internal/exam"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/screens/listening"
	"github.com/mizuki/toeflsim/internal/screens/reading"
	"github.com/mizuki/toeflsim/internal/screens/speaking"
	"github.com/mizuki/toeflsim/internal/screens/writing"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

// FullTestScreen shows the interstitial between sections and the final
// score report. The sections themselves run as pushed screens that
// report back through a completion callback.
type FullTestScreen struct {
	services *screen.Services
	test     *exam.FullTest

	finished bool
	final    report.ScoreReport
	saveErr  string
}

var _ screen.Screen = (*FullTestScreen)(nil)
var _ screen.KeyHintProvider = (*FullTestScreen)(nil)

// New starts a full test at the reading section.
func New(services *screen.Services) *FullTestScreen {
	return &FullTestScreen{
		services: services,
		test:     exam.NewFullTest(),
	}
}

func (f *FullTestScreen) Init() tea.Cmd { return nil }

func (f *FullTestScreen) Title() string {
	if f.finished {
		return "Score Report"
	}
	return "Full Test"
}

func (f *FullTestScreen) KeyHints() []layout.KeyHint {
	if f.finished {
		return []layout.KeyHint{{Key: "Esc", Description: "Done"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Begin section"},
		{Key: "Esc", Description: "Abandon test"},
	}
}

func (f *FullTestScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	switch key.String() {
	case "esc":
		return f, func() tea.Msg { return router.PopScreenMsg{} }
	case "enter":
		if f.finished || f.test.Done() {
			return f, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return f, func() tea.Msg {
			return router.PushScreenMsg{Screen: f.sectionScreen()}
		}
	}
	return f, nil
}

// sectionScreen builds the screen for the section in progress, wired to
// report back here when it completes.
func (f *FullTestScreen) sectionScreen() screen.Screen {
	switch f.test.Current() {
	case content.TypeReading:
		return reading.New(f.services, contentgen.ReadingParams{}, f.sectionDone)
	case content.TypeListening:
		return listening.New(f.services, f.sectionDone)
	case content.TypeSpeaking:
		return speaking.New(f.services, f.sectionDone)
	default:
		return writing.New(f.services, f.sectionDone)
	}
}

// sectionDone runs inside the finishing section's update loop. It
// records the section synchronously, then pops back to the interstitial.
// After the writing section the report is sealed and persisted.
func (f *FullTestScreen) sectionDone(rep report.SectionReport) tea.Cmd {
	f.test.CompleteSection(rep)
	if f.test.Done() {
		f.finished = true
		f.final = f.test.Report()
		if err := f.services.Reports.Append(f.final); err != nil {
			f.saveErr = err.Error()
		}
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (f *FullTestScreen) View(width, height int) string {
	if f.finished {
		return f.viewReport(width)
	}
	return f.viewInterstitial(width)
}

func (f *FullTestScreen) viewInterstitial(width int) string {
	var b strings.Builder
	typ := f.test.Current()

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("TOEFL iBT Full Test"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(
		fmt.Sprintf("Section %d of %d", f.test.Index()+1, len(content.Types))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).
		Foreground(theme.SectionColor(string(typ))).Bold(true).
		Render(fmt.Sprintf("%s  ·  about %d minutes", typ, exam.SectionMinutes(typ))))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
		Render(sectionInstructions(typ)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Primary).
		Render("Press Enter when you are ready."))
	return b.String()
}

func (f *FullTestScreen) viewReport(width int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Score Report"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(f.final.Date.Format("2006-01-02 15:04")))
	b.WriteString("\n\n")

	rows := []struct {
		name string
		rep  report.SectionReport
	}{
		{"Reading", f.final.Reading},
		{"Listening", f.final.Listening},
		{"Speaking", f.final.Speaking},
		{"Writing", f.final.Writing},
	}
	for _, row := range rows {
		line := fmt.Sprintf("%-10s %3d / 30    raw %d/%d    %s",
			row.name, row.rep.Score, row.rep.RawScore, row.rep.MaxScore,
			layout.FormatClock(row.rep.TimeSpentSeconds))
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).
			Foreground(theme.SectionColor(row.name)).
			Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Primary).Bold(true).
		Render(fmt.Sprintf("TOTAL  %d / 120", f.final.Total)))

	if f.saveErr != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("Could not save report: " + f.saveErr))
	}
	return b.String()
}

func sectionInstructions(typ content.Type) string {
	switch typ {
	case content.TypeReading:
		return "Read an academic passage and answer all questions.\nYou can move back and forth between questions."
	case content.TypeListening:
		return "Listen to a conversation or lecture, then answer questions.\nThe audio plays once; questions are forward-only."
	case content.TypeSpeaking:
		return "Prepare and deliver a spoken response.\nTimed preparation and recording windows advance automatically."
	default:
		return "Write an essay responding to the prompt.\nThe countdown runs while you compose."
	}
}
