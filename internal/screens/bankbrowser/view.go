package bankbrowser

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/qbank/internal/browser"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	filters := s.viewFilters(width)
	status := s.viewStatus()
	listH := height - lipgloss.Height(filters) - 3
	list := s.viewList(width, max(listH, 1))

	return lipgloss.JoinVertical(lipgloss.Left, filters, status, list)
}

func (s *Screen) viewFilters(width int) string {
	colW := max((width-6)/2, 20)
	col := lipgloss.NewStyle().Width(colW)

	left := lipgloss.JoinVertical(lipgloss.Left,
		s.search.View(),
		s.segment.View(),
		s.group.View(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		s.tag.View(),
		s.subject.View(),
		s.kind.View(),
	)

	style := theme.Card
	if s.focus != focusList {
		style = theme.FocusedCard
	}
	return style.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, col.Render(left), col.Render(right)))
}

func (s *Screen) viewStatus() string {
	var parts []string
	switch s.b.Status() {
	case browser.Loading:
		parts = append(parts, theme.Hint.Render("loading…"))
	case browser.Failed:
		parts = append(parts, theme.ErrorText.Render("last query failed; showing previous results"))
	}
	parts = append(parts, theme.Subtitle.Render(fmt.Sprintf("%d questions · page %d of %d",
		s.b.Total(), s.b.Page()+1, s.b.PageCount())))
	if s.confirmDelete != "" {
		parts = append(parts, theme.ErrorText.Render("Delete this question? y/n"))
	}
	return " " + strings.Join(parts, "  ")
}

func (s *Screen) viewList(width, height int) string {
	rows := s.b.Rows()
	if len(rows) == 0 {
		msg := "No questions match these filters."
		if s.b.Status() == browser.Loading || s.b.Status() == browser.Idle {
			msg = ""
		}
		return theme.Hint.Render("  " + msg)
	}

	var b strings.Builder
	for i, q := range rows {
		if i >= height {
			break
		}
		b.WriteString(s.viewRow(i, q, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) viewRow(i int, q question.Question, width int) string {
	mark := "  "
	if s.deps.Paper.Has(q.ID) {
		mark = theme.Marked.Render("● ")
	}
	cursor := "  "
	style := theme.Unselected
	if i == s.cursor && s.focus == focusList {
		cursor = "▸ "
		style = theme.Selected
	}

	meta := fmt.Sprintf("%-11s %3d", q.Kind.Label(), q.TotalMarks())
	if q.Kind == question.KindPassage {
		meta += fmt.Sprintf(" (%d parts)", len(q.Children))
	}
	bodyW := max(width-lipgloss.Width(meta)-10, 10)
	body := ansi.Truncate(oneLine(q.Body), bodyW, "…")

	pad := strings.Repeat(" ", max(bodyW-ansi.StringWidth(body), 0))
	line := cursor + body + pad + "  " + meta
	return mark + style.Render(line)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
