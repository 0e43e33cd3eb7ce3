package compose

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	meta := s.viewMeta(width)
	total := theme.Subtitle.Render(fmt.Sprintf(" %d questions · total %d marks", s.paper.Len(), s.paper.TotalMarks()))
	if s.saving {
		total += theme.Hint.Render("  saving…")
	}
	if s.mode == modeConfirmReset {
		total += "  " + theme.ErrorText.Render("Clear the whole paper? y/n")
	}
	listH := max(height-lipgloss.Height(meta)-2, 1)
	return lipgloss.JoinVertical(lipgloss.Left, meta, total, s.viewList(width, listH))
}

func (s *Screen) viewMeta(width int) string {
	if s.mode == modeMeta {
		fieldW := max(width-20, 20)
		rows := make([]string, len(s.meta))
		for i := range s.meta {
			s.meta[i].SetWidth(fieldW)
			rows[i] = s.meta[i].View()
		}
		return theme.FocusedCard.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	m := s.paper.Meta()
	title := m.Title
	if strings.TrimSpace(title) == "" {
		title = theme.Hint.Render(composer.DefaultTitle + " (press m)")
	}
	lines := []string{theme.Label.Render("Title") + title}
	if m.InstituteLabel != "" {
		lines = append(lines, theme.Label.Render("Institute")+m.InstituteLabel)
	}
	if m.Duration != "" {
		lines = append(lines, theme.Label.Render("Duration")+m.Duration)
	}
	if m.Instructions != "" {
		lines = append(lines, theme.Label.Render("Instructions")+ansi.Truncate(oneLine(m.Instructions), max(width-20, 10), "…"))
	}
	return theme.Card.Width(width).Render(strings.Join(lines, "\n"))
}

func (s *Screen) viewList(width, height int) string {
	entries := s.paper.Entries()
	if len(entries) == 0 {
		return theme.Hint.Render("\n  No questions selected. Add some from the question browser.")
	}

	// Keep the cursor row visible.
	start := 0
	if s.cursor >= height {
		start = s.cursor - height + 1
	}
	var b strings.Builder
	for i := start; i < len(entries) && i < start+height; i++ {
		b.WriteString(s.viewRow(i, entries[i], width))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) viewRow(i int, e composer.Entry, width int) string {
	cursor := "  "
	style := theme.Unselected
	if i == s.cursor {
		cursor = "▸ "
		style = theme.Selected
	}

	marks := fmt.Sprintf("[%d]", e.Marks)
	if i == s.cursor && s.mode == modeMarks {
		s.marks.SetWidth(6)
		marks = s.marks.View()
	}
	num := fmt.Sprintf("%2d. ", i+1)
	kind := fmt.Sprintf("%-11s", e.Question.Kind.Label())
	bodyW := max(width-lipgloss.Width(marks)-lipgloss.Width(kind)-12, 10)
	body := ansi.Truncate(oneLine(e.Question.Body), bodyW, "…")
	pad := strings.Repeat(" ", max(bodyW-ansi.StringWidth(body), 0))

	return style.Render(cursor+num+body+pad+"  "+kind) + " " + theme.Marked.Render(marks)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
