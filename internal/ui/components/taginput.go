package components

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/tags"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// maxSuggestions bounds the suggestion line.
const maxSuggestions = 5

// TagInput edits a tag set. Typing a comma or pressing Enter commits the
// typed text; Backspace on an empty input removes the last tag; Tab
// accepts the first suggestion.
type TagInput struct {
	Label string

	input textinput.Model
	set   *tags.Set
	index *tags.Index
}

// NewTagInput creates a tag editor holding initial. index may be nil.
func NewTagInput(label string, initial []string, index *tags.Index) TagInput {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type a tag, comma to add"
	return TagInput{Label: label, input: ti, set: tags.NewSet(initial), index: index}
}

// SetIndex replaces the suggestion source.
func (t *TagInput) SetIndex(index *tags.Index) {
	t.index = index
}

// Values returns the committed tags plus any uncommitted text.
func (t TagInput) Values() []string {
	out := t.set.Values()
	if pending := strings.TrimSpace(t.input.Value()); pending != "" {
		out = tags.Normalize(append(out, pending))
	}
	return out
}

// Suggestions lists indexed tags matching the typed text, excluding tags
// already present.
func (t TagInput) Suggestions() []string {
	if t.index == nil || strings.TrimSpace(t.input.Value()) == "" {
		return nil
	}
	out := t.index.Suggest(t.input.Value(), t.set.Values())
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// Update handles editing keys.
func (t TagInput) Update(msg tea.Msg) (TagInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if slices.Contains(tags.Delimiters, key) {
			t.set.Commit(t.input.Value())
			t.input.Reset()
			return t, nil
		}
		switch key {
		case "tab":
			if s := t.Suggestions(); len(s) > 0 {
				t.set.Commit(s[0])
				t.input.Reset()
			}
			return t, nil
		case "backspace":
			if t.input.Value() == "" {
				if vals := t.set.Values(); len(vals) > 0 {
					t.set.Remove(vals[len(vals)-1])
				}
				return t, nil
			}
		}
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TagInput) Focus() tea.Cmd { return t.input.Focus() }
func (t *TagInput) Blur() { t.input.Blur() }
func (t TagInput) Focused() bool { return t.input.Focused() }

// View renders the label, the committed tags as chips and the input.
func (t TagInput) View() string {
	label := theme.Label.Render(t.Label)
	if t.input.Focused() {
		label = theme.FocusedLabel.Render(t.Label)
	}
	var b strings.Builder
	b.WriteString(label)
	for _, v := range t.set.Values() {
		b.WriteString(theme.Tag.Render(v))
		b.WriteString(" ")
	}
	b.WriteString(t.input.View())
	if s := t.Suggestions(); len(s) > 0 && t.input.Focused() {
		b.WriteString("\n")
		b.WriteString(theme.Label.Render(""))
		b.WriteString(theme.Hint.Render("tab: " + strings.Join(s, ", ")))
	}
	return b.String()
}
