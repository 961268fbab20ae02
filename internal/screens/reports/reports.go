// Package reports lists past full-test score reports.
package reports

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

// ReportsScreen browses saved score reports, newest first.
type ReportsScreen struct {
	reports []report.ScoreReport
	cursor  int
}

var _ screen.Screen = (*ReportsScreen)(nil)
var _ screen.KeyHintProvider = (*ReportsScreen)(nil)

// New loads all saved reports.
func New(services *screen.Services) *ReportsScreen {
	all := services.Reports.All()
	// Newest first.
	reversed := make([]report.ScoreReport, len(all))
	for i, r := range all {
		reversed[len(all)-1-i] = r
	}
	return &ReportsScreen{reports: reversed}
}

func (s *ReportsScreen) Init() tea.Cmd { return nil }

func (s *ReportsScreen) Title() string { return "Score Reports" }

func (s *ReportsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Browse"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReportsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.reports)-1 {
				s.cursor++
			}
		}
	}
	return s, nil
}

func (s *ReportsScreen) View(width, height int) string {
	if len(s.reports) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n\n  No score reports yet.\n\n  Complete a full test to get your first one.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, r := range s.reports {
		line := fmt.Sprintf("%s   R %2d  L %2d  S %2d  W %2d   Total %3d",
			r.Date.Format("2006-01-02 15:04"),
			r.Reading.Score, r.Listening.Score, r.Speaking.Score, r.Writing.Score,
			r.Total)
		style := theme.Unselected
		if i == s.cursor {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.viewDetail(width))
	return b.String()
}

func (s *ReportsScreen) viewDetail(width int) string {
	r := s.reports[s.cursor]
	var b strings.Builder

	rows := []struct {
		name string
		rep  report.SectionReport
	}{
		{"Reading", r.Reading},
		{"Listening", r.Listening},
		{"Speaking", r.Speaking},
		{"Writing", r.Writing},
	}
	for _, row := range rows {
		detail := fmt.Sprintf("%-10s %3d / 30", row.name, row.rep.Score)
		if row.rep.TotalQuestions > 0 {
			detail += fmt.Sprintf("    %d/%d correct", row.rep.CorrectAnswers, row.rep.TotalQuestions)
		} else {
			detail += fmt.Sprintf("    raw %d/%d", row.rep.RawScore, row.rep.MaxScore)
		}
		detail += "    " + layout.FormatClock(row.rep.TimeSpentSeconds)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.SectionColor(row.name)).Render(detail)))
		b.WriteString("\n")
	}
	return b.String()
}
