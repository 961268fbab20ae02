package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

// OptionList is an answer-option selector for objective questions. It
// supports single-select (one choice replaces the previous) and
// multi-select for prose summary questions (space toggles, up to Limit
// options chosen at once).
type OptionList struct {
	Options []content.Option
	Multi   bool
	// Limit caps concurrent selections in multi mode. 0 means no cap.
	Limit int

	cursor int
	chosen map[string]bool
}

// NewOptionList creates a selector over the question's options.
func NewOptionList(q content.Question) OptionList {
	multi := q.Kind == content.ProseSummary
	limit := 0
	if multi {
		limit = len(q.CorrectAnswers)
	}
	return OptionList{
		Options: q.Options,
		Multi:   multi,
		Limit:   limit,
		chosen:  make(map[string]bool),
	}
}

// SetSelected restores a previous selection, as when the user navigates
// back to an answered question.
func (o *OptionList) SetSelected(ids []string) {
	o.chosen = make(map[string]bool)
	for _, id := range ids {
		o.chosen[id] = true
	}
}

// Selected returns the chosen option ids in option order.
func (o OptionList) Selected() []string {
	var ids []string
	for _, opt := range o.Options {
		if o.chosen[opt.ID] {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// Update handles navigation and selection keys.
func (o OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return o, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if o.cursor > 0 {
			o.cursor--
		}
	case "down", "j":
		if o.cursor < len(o.Options)-1 {
			o.cursor++
		}
	case " ", "enter":
		o.toggle(o.cursor)
	default:
		// Direct pick by number.
		if n := numberKey(kmsg.String()); n > 0 && n <= len(o.Options) {
			o.cursor = n - 1
			o.toggle(o.cursor)
		}
	}
	return o, nil
}

func (o *OptionList) toggle(i int) {
	id := o.Options[i].ID
	if !o.Multi {
		o.chosen = map[string]bool{id: true}
		return
	}
	if o.chosen[id] {
		delete(o.chosen, id)
		return
	}
	if o.Limit > 0 && len(o.chosen) >= o.Limit {
		return
	}
	o.chosen[id] = true
}

// View renders the option list.
func (o OptionList) View() string {
	var s string
	for i, opt := range o.Options {
		mark := "( )"
		if o.Multi {
			mark = "[ ]"
		}
		if o.chosen[opt.ID] {
			if o.Multi {
				mark = "[x]"
			} else {
				mark = "(o)"
			}
		}

		prefix := "  "
		if i == o.cursor {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s %d) %s", prefix, mark, i+1, opt.Text)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == o.cursor {
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		} else if o.chosen[opt.ID] {
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		s += style.Render(line) + "\n"
	}
	return s
}

// ReviewView renders the options with correct/incorrect coloring for a
// finished question.
func ReviewView(q content.Question, selected []string) string {
	correct := make(map[string]bool, len(q.CorrectAnswers))
	for _, id := range q.CorrectAnswers {
		correct[id] = true
	}
	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}

	var s string
	for i, opt := range q.Options {
		line := fmt.Sprintf("  %d) %s", i+1, opt.Text)
		switch {
		case correct[opt.ID]:
			s += theme.Correct.Render(line+"  ✓") + "\n"
		case chosen[opt.ID]:
			s += theme.Incorrect.Render(line+"  ✗") + "\n"
		default:
			s += lipgloss.NewStyle().Foreground(theme.TextDim).Render(line) + "\n"
		}
	}
	return s
}

func numberKey(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0')
	}
	return 0
}
