// Package detail shows one question in full: options with the correct
// one marked, passage parts, explanation, tags and classification.
package detail

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/screens/editor"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// Screen is the read-only question view.
type Screen struct {
	deps   screen.Deps
	q      question.Question
	offset int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New shows q.
func New(deps screen.Deps, q question.Question) *Screen {
	return &Screen{deps: deps, q: q}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Question" }

func (s *Screen) KeyHints() []layout.KeyHint {
	label := "Add to paper"
	if s.deps.Paper.Has(s.q.ID) {
		label = "Remove from paper"
	}
	return []layout.KeyHint{
		{Key: "Space", Description: label},
		{Key: "e", Description: "Edit"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc":
		return s, router.Pop()
	case "space", " ", "a":
		if s.deps.Paper.Has(s.q.ID) {
			s.deps.Paper.Remove(s.q.ID)
			return s, screen.Notify("Removed from paper")
		}
		s.deps.Paper.Add(s.q)
		return s, screen.Notify(fmt.Sprintf("Added to paper (%d marks)", s.q.TotalMarks()))
	case "e":
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: editor.New(s.deps, s.q, nil)}
		}
	case "up", "k":
		s.offset = max(s.offset-1, 0)
	case "down", "j":
		s.offset++
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	lines := strings.Split(Format(s.q, width-4), "\n")
	s.offset = min(s.offset, max(len(lines)-height, 0))
	end := min(s.offset+height, len(lines))
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines[s.offset:end], "\n"))
}

// Format renders q for reading on a terminal of the given width.
func Format(q question.Question, width int) string {
	body := lipgloss.NewStyle().Width(max(width, 20))
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", theme.Title.Render(q.Kind.Label()),
		theme.Subtitle.Render(fmt.Sprintf("%d marks · id %s", q.TotalMarks(), q.ID)))
	b.WriteString(body.Render(q.Body))
	b.WriteString("\n")
	writeOptions(&b, q.Options, "  ")

	for i, c := range q.Children {
		fmt.Fprintf(&b, "\n%s %s\n", theme.Selected.Render(fmt.Sprintf("(%d)", i+1)),
			theme.Subtitle.Render(fmt.Sprintf("%s · %d marks", c.Kind.Label(), c.Marks)))
		b.WriteString(body.Render("    " + c.Body))
		b.WriteString("\n")
		writeOptions(&b, c.Options, "      ")
		if c.Explanation != "" {
			b.WriteString(theme.Hint.Render("      " + c.Explanation))
			b.WriteString("\n")
		}
	}

	if q.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Explanation: " + q.Explanation))
		b.WriteString("\n")
	}
	if len(q.Tags) > 0 {
		b.WriteString("\n")
		for _, t := range q.Tags {
			b.WriteString(theme.Tag.Render(t) + " ")
		}
		b.WriteString("\n")
	}
	if c := q.Classification; !c.IsEmpty() {
		fmt.Fprintf(&b, "\n%s\n", theme.Subtitle.Render(
			fmt.Sprintf("segment %s · group %s · subject %s", dash(c.SegmentID), dash(c.GroupID), dash(c.SubjectID))))
	}
	return b.String()
}

func writeOptions(b *strings.Builder, opts question.Options, indent string) {
	for i, o := range opts {
		line := fmt.Sprintf("%s(%s) %s", indent, question.Letter(i), o.Text)
		if o.IsCorrect {
			b.WriteString(theme.Correct.Render(line + "  ✓"))
		} else {
			b.WriteString(theme.Body.Render(line))
		}
		b.WriteString("\n")
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
