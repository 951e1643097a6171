package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/quizforge/internal/ui/theme"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestOptionList_CursorClamps(t *testing.T) {
	o := NewOptionList([]string{"A", "B", "C", "D"}, -1)
	assert.Equal(t, 0, o.Cursor)

	o, _ = o.Update(key("up"))
	assert.Equal(t, 0, o.Cursor)
	for range 5 {
		o, _ = o.Update(key("down"))
	}
	assert.Equal(t, 3, o.Cursor)
}

func TestOptionList_StartsOnChosen(t *testing.T) {
	o := NewOptionList([]string{"A", "B", "C", "D"}, 2)
	assert.Equal(t, 2, o.Cursor)
	assert.Contains(t, o.View(), "● C) C")
}

func TestOptionList_IndexForKey(t *testing.T) {
	o := NewOptionList([]string{"w", "x", "y", "z"}, -1)
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"1", 0, true},
		{"4", 3, true},
		{"5", 4, false},
		{"b", 1, true},
		{"enter", 0, false},
		{"?", 0, false},
	}
	for _, tt := range tests {
		got, ok := o.IndexForKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		if ok {
			assert.Equal(t, tt.want, got, tt.key)
		}
	}
}

func TestOptionList_RevealFreezesCursor(t *testing.T) {
	o := NewOptionList([]string{"A", "B", "C", "D"}, 1)
	o.Correct = 2
	o.Reveal = true
	o, _ = o.Update(key("down"))
	assert.Equal(t, 1, o.Cursor)
	assert.False(t, strings.Contains(o.View(), "▸"))
}

func TestMenu_SkipsDisabled(t *testing.T) {
	chosen := ""
	pick := func(label string) func() tea.Cmd {
		return func() tea.Cmd {
			chosen = label
			return nil
		}
	}
	m := NewMenu([]MenuItem{
		{Label: "Easy", Action: pick("Easy")},
		{Label: "Medium", Disabled: true},
		{Label: "Hard", Action: pick("Hard")},
	})
	m, _ = m.Update(key("down"))
	assert.Equal(t, 2, m.Selected)
	m.Update(key("enter"))
	assert.Equal(t, "Hard", chosen)
}

func TestTextInput_NumericOnly(t *testing.T) {
	in := NewTextInput("10", true, 2)
	in, _ = in.Update(key("x"))
	in, _ = in.Update(key("1"))
	in, _ = in.Update(key("2"))
	assert.Equal(t, "12", in.Value())
	n, err := in.NumericValue()
	assert.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestTextInput_ErrClearsOnKey(t *testing.T) {
	in := NewTextInput("10", true, 2)
	in.Err = "choose between 1 and 24 questions"
	assert.Contains(t, in.View(), "choose between 1 and 24 questions")

	in, _ = in.Update(key("5"))
	assert.Empty(t, in.Err)
	assert.NotContains(t, in.View(), "choose between")
}

func TestProgressBar(t *testing.T) {
	bar := NewProgressBar("Score", 1.7, true, 40)
	assert.Equal(t, 1.0, bar.Percent)
	assert.Contains(t, bar.View(), "100%")

	assert.Equal(t, 0.0, NewProgressBar("", -1, false, 10).Percent)
	assert.Equal(t, theme.Success, ScoreColor(80))
	assert.Equal(t, theme.Warning, ScoreColor(50))
	assert.Equal(t, theme.Error, ScoreColor(49))
}
