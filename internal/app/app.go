package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/screens/home"
	"github.com/mizuki/toeflsim/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	services *screen.Services
	width    int
	height   int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(services *screen.Services) AppModel {
	return AppModel{
		router:   router.New(home.New(services)),
		services: services,
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// Never leave TTS running past the program.
			if m.services.Synth != nil {
				m.services.Synth.Stop()
			}
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	badge := ""
	if active != nil {
		title = active.Title()
		if bp, ok := active.(screen.SectionBadgeProvider); ok {
			badge = bp.SectionBadge()
		}
	}

	header := layout.RenderHeader(title, badge, m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); hints != nil {
			footerHints = hints
		}
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(services *screen.Services) error {
	p := tea.NewProgram(newAppModel(services))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
