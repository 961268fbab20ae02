// Package home is the main menu screen.
package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/contentgen"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/screens/fulltest"
	"github.com/mizuki/toeflsim/internal/screens/listening"
	"github.com/mizuki/toeflsim/internal/screens/reading"
	"github.com/mizuki/toeflsim/internal/screens/reports"
	"github.com/mizuki/toeflsim/internal/screens/speaking"
	"github.com/mizuki/toeflsim/internal/screens/stats"
	"github.com/mizuki/toeflsim/internal/screens/writing"
	"github.com/mizuki/toeflsim/internal/ui/components"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	services *screen.Services
	menu     components.Menu

	generatedCount int
	diversity      float64
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen wired to the app services.
func New(services *screen.Services) *HomeScreen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: build()}
			}
		}
	}

	items := []components.MenuItem{
		{Label: "READING PRACTICE", Action: push(func() screen.Screen {
			return reading.New(services, contentgen.ReadingParams{}, nil)
		})},
		{Label: "INTENSIVE READING", Action: push(func() screen.Screen {
			return reading.New(services, contentgen.ReadingParams{Intensive: true, WeakCategory: weakestCategory(services)}, nil)
		})},
		{Label: "VOCAB DRILL", Action: push(func() screen.Screen {
			return reading.NewVocab(services)
		})},
		{Label: "LISTENING PRACTICE", Action: push(func() screen.Screen {
			return listening.New(services, nil)
		})},
		{Label: "SPEAKING PRACTICE", Action: push(func() screen.Screen {
			return speaking.New(services, nil)
		})},
		{Label: "WRITING PRACTICE", Action: push(func() screen.Screen {
			return writing.New(services, nil)
		})},
		{Label: "FULL TEST", Action: push(func() screen.Screen {
			return fulltest.New(services)
		})},
		{Label: "SCORE REPORTS", Action: push(func() screen.Screen {
			return reports.New(services)
		})},
		{Label: "STATS & ANALYSIS", Action: push(func() screen.Screen {
			return stats.New(services)
		})},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	h := &HomeScreen{
		services: services,
		menu:     components.NewMenu(items),
	}
	h.refreshStats()
	return h
}

func (h *HomeScreen) refreshStats() {
	if h.services.History == nil {
		return
	}
	h.generatedCount = h.services.History.Count("")
	h.diversity = h.services.History.DiversityScore("")
}

// weakestCategory finds the reading category with the lowest accuracy in
// the performance log, empty when there is not enough data.
func weakestCategory(services *screen.Services) string {
	if services.Log == nil {
		return ""
	}
	type agg struct{ correct, total int }
	byCategory := make(map[string]*agg)
	var order []string
	for _, r := range services.Log.All() {
		if r.TaskKind != "" {
			continue
		}
		a, ok := byCategory[r.Category]
		if !ok {
			a = &agg{}
			byCategory[r.Category] = a
			order = append(order, r.Category)
		}
		a.correct += r.Correct
		a.total += r.Total
	}

	worst := ""
	worstRate := 1.0
	for _, cat := range order {
		a := byCategory[cat]
		if a.total < 3 {
			continue
		}
		rate := float64(a.correct) / float64(a.total)
		if rate < worstRate {
			worst, worstRate = cat, rate
		}
	}
	return worst
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder

	title := theme.Title.Width(width).Render("TOEFL Simulator")
	subtitle := theme.Subtitle.Width(width).Render("AI-generated practice for all four sections")
	b.WriteString("\n" + title + "\n" + subtitle + "\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))
	b.WriteString("\n")

	if h.generatedCount > 0 {
		statLine := fmt.Sprintf("%d items generated   topic diversity %.0f%%",
			h.generatedCount, h.diversity*100)
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(statLine))
	}

	return b.String()
}

func (h *HomeScreen) Title() string {
	return "Home"
}
