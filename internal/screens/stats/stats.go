// Package stats shows generation history, topic diversity, and category
// accuracy, with an on-demand AI performance report.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/grading"
	"github.com/mizuki/toeflsim/internal/report"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/ui/components"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

type analysisMsg struct {
	Text string
	Err  error
}

// StatsScreen browses per-section generation and performance statistics.
type StatsScreen struct {
	services *screen.Services
	tab      int

	analyzing bool
	analysis  string
	errMsg    string
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates the stats screen.
func New(services *screen.Services) *StatsScreen {
	return &StatsScreen{services: services}
}

func (s *StatsScreen) Init() tea.Cmd { return nil }

func (s *StatsScreen) Title() string { return "Stats & Analysis" }

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Section"},
		{Key: "A", Description: "AI report"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisMsg:
		s.analyzing = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.analysis = msg.Text
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "left", "h":
			if s.tab > 0 {
				s.tab--
			}
		case "right", "l":
			if s.tab < len(content.Types)-1 {
				s.tab++
			}
		case "a", "A":
			if !s.analyzing {
				s.analyzing = true
				s.errMsg = ""
				return s, s.analyze()
			}
		}
	}
	return s, nil
}

func (s *StatsScreen) analyze() tea.Cmd {
	sections := aggregate(s.services.Log.All())
	return func() tea.Msg {
		text, err := s.services.Grader.AnalyzeHistory(context.Background(), sections)
		return analysisMsg{Text: text, Err: err}
	}
}

// aggregate buckets performance records for the AI report. Objective
// records group by question category; speaking and writing records group
// by their task kind.
func aggregate(records []report.PerformanceRecord) map[string]map[string]grading.CategoryTotal {
	sections := make(map[string]map[string]grading.CategoryTotal)
	add := func(section, key string, r report.PerformanceRecord) {
		if sections[section] == nil {
			sections[section] = make(map[string]grading.CategoryTotal)
		}
		t := sections[section][key]
		t.Correct += r.Correct
		t.Total += r.Total
		sections[section][key] = t
	}

	for _, r := range records {
		switch r.Category {
		case "Speaking", "Writing":
			add(r.Category, r.TaskKind, r)
		default:
			add("Reading/Listening", r.Category, r)
		}
	}
	return sections
}

func (s *StatsScreen) View(width, height int) string {
	var b strings.Builder
	typ := content.Types[s.tab]

	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.viewTabs()))
	b.WriteString("\n\n")

	hist := s.services.History
	count := hist.Count(typ)
	if count == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("Nothing generated for this section yet."))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Text).
			Render(fmt.Sprintf("%d items generated", count)))
		b.WriteString("\n")

		divBar := components.NewProgressBar("Topic diversity", hist.DiversityScore(typ), true, min(width-8, 50))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divBar.View()))
		b.WriteString("\n\n")

		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  Top topics"))
		b.WriteString("\n")
		for i, tc := range hist.TopicStatistics(typ) {
			if i >= 8 {
				break
			}
			b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Foreground(theme.Text).
				Render(fmt.Sprintf("%-40s ×%d", truncate(tc.Topic, 40), tc.Count)))
			b.WriteString("\n")
		}

		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  Recently generated"))
		b.WriteString("\n")
		for _, fp := range hist.Recent(5, typ) {
			b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Foreground(theme.TextDim).
				Render(fp.Generated.Format("2006-01-02") + "  " + truncate(fp.Topic, 50)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(s.viewAccuracy(typ, width))

	b.WriteString("\n")
	switch {
	case s.analyzing:
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("AI is preparing your performance report..."))
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("Analysis failed: " + s.errMsg))
	case s.analysis != "":
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).
			Render(s.analysis))
	}
	return b.String()
}

func (s *StatsScreen) viewTabs() string {
	var tabs []string
	for i, typ := range content.Types {
		style := theme.Unselected
		if i == s.tab {
			style = lipgloss.NewStyle().
				Foreground(theme.SectionColor(string(typ))).Bold(true).Underline(true)
		}
		tabs = append(tabs, style.Render(string(typ)))
	}
	return strings.Join(tabs, "   ")
}

// viewAccuracy renders the category accuracy table for the selected
// section out of the performance log.
func (s *StatsScreen) viewAccuracy(typ content.Type, width int) string {
	var section string
	switch typ {
	case content.TypeSpeaking:
		section = "Speaking"
	case content.TypeWriting:
		section = "Writing"
	default:
		section = "Reading/Listening"
	}

	totals := aggregate(s.services.Log.All())[section]
	if len(totals) == 0 {
		return ""
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  Accuracy by category"))
	b.WriteString("\n")
	for _, key := range keys {
		t := totals[key]
		if t.Total == 0 {
			continue
		}
		rate := float64(t.Correct) / float64(t.Total)
		style := lipgloss.NewStyle().PaddingLeft(4).Foreground(theme.Success)
		if rate < 0.6 {
			style = style.Foreground(theme.Error)
		}
		b.WriteString(style.Render(fmt.Sprintf("%-30s %d/%d (%.0f%%)", truncate(key, 30), t.Correct, t.Total, rate*100)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
