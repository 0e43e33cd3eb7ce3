package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/ui/theme"
)

// ChoiceItem is one selectable value. An empty Value means "any".
type ChoiceItem struct {
	Value string
	Label string
}

// Choice is a single-line selector cycled with left and right.
type Choice struct {
	Label    string
	Items    []ChoiceItem
	Selected int
	focused  bool
}

// NewChoice creates a selector. When anyLabel is non-empty an "any" item
// with an empty value is placed first.
func NewChoice(label, anyLabel string, items []ChoiceItem) Choice {
	c := Choice{Label: label}
	c.SetItems(anyLabel, items)
	return c
}

// SetItems replaces the items and resets the selection.
func (c *Choice) SetItems(anyLabel string, items []ChoiceItem) {
	c.Items = nil
	if anyLabel != "" {
		c.Items = append(c.Items, ChoiceItem{Label: anyLabel})
	}
	c.Items = append(c.Items, items...)
	c.Selected = 0
}

// Select moves the selection to value and reports whether it exists.
func (c *Choice) Select(value string) bool {
	for i, it := range c.Items {
		if it.Value == value {
			c.Selected = i
			return true
		}
	}
	return false
}

// Value returns the selected value, "" when nothing is selectable.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Items) {
		return ""
	}
	return c.Items[c.Selected].Value
}

// Update cycles the selection and reports whether it changed.
func (c Choice) Update(msg tea.Msg) (Choice, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Items) == 0 {
		return c, false
	}
	prev := c.Selected
	switch kmsg.String() {
	case "left", "h":
		c.Selected = (c.Selected - 1 + len(c.Items)) % len(c.Items)
	case "right", "l":
		c.Selected = (c.Selected + 1) % len(c.Items)
	}
	return c, c.Selected != prev
}

func (c *Choice) Focus() { c.focused = true }
func (c *Choice) Blur() { c.focused = false }
func (c Choice) Focused() bool { return c.focused }

// View renders "Label  ‹ value ›".
func (c Choice) View() string {
	label := theme.Label.Render(c.Label)
	value := "-"
	if c.Selected >= 0 && c.Selected < len(c.Items) {
		value = c.Items[c.Selected].Label
	}
	if !c.focused {
		return label + lipgloss.NewStyle().Foreground(theme.Text).Render(value)
	}
	return theme.FocusedLabel.Render(c.Label) + theme.Selected.Render("‹ "+value+" ›")
}
