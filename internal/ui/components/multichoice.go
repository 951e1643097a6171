package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizforge/internal/ui/theme"
)

var optionLabels = []string{"A", "B", "C", "D", "E", "F"}

// OptionList renders the options of one question. Cursor is the highlighted
// row and Chosen the recorded answer (-1 for none). When Reveal is set the
// correct option is marked instead of the cursor.
type OptionList struct {
	Options []string
	Cursor  int
	Chosen  int
	Correct int
	Reveal  bool
}

// NewOptionList creates an option list with the cursor on the chosen
// option, or on the first one.
func NewOptionList(options []string, chosen int) OptionList {
	return OptionList{
		Options: options,
		Cursor:  max(chosen, 0),
		Chosen:  chosen,
		Correct: -1,
	}
}

// Update moves the cursor. Choosing is left to the caller.
func (o OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || o.Reveal {
		return o, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if o.Cursor > 0 {
			o.Cursor--
		}
	case "down", "j":
		if o.Cursor < len(o.Options)-1 {
			o.Cursor++
		}
	}
	return o, nil
}

// IndexForKey maps "1".."4" and "a".."d" to an option index.
func (o OptionList) IndexForKey(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var i int
	switch {
	case c >= '1' && c <= '9':
		i = int(c - '1')
	case c >= 'a' && c <= 'f':
		i = int(c - 'a')
	default:
		return 0, false
	}
	return i, i < len(o.Options)
}

// View renders the options one per line.
func (o OptionList) View() string {
	var b strings.Builder
	for i, opt := range o.Options {
		label := fmt.Sprint(i + 1)
		if i < len(optionLabels) {
			label = optionLabels[i]
		}
		prefix := "  "
		if i == o.Cursor && !o.Reveal {
			prefix = "▸ "
		}
		mark := " "
		if i == o.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s) %s", prefix, mark, label, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case o.Reveal && i == o.Correct:
			style = theme.Correct
		case o.Reveal && i == o.Chosen:
			style = theme.Incorrect
		case o.Reveal:
			style = style.Foreground(theme.TextDim)
		case i == o.Cursor:
			style = theme.Selected
		case i == o.Chosen:
			style = style.Foreground(theme.Secondary)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
