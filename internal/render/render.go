// Package render lays out a saved exam paper as fixed-width printable text.
package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/question"
)

// Defaults used when Layout leaves a field zero.
const (
	DefaultWidth      = 80
	DefaultPageHeight = 60

	minWidth      = 40
	minPageHeight = 10
)

// EndOfPaper closes the last question.
const EndOfPaper = "*** End of Paper ***"

// Layout is the page geometry in character cells.
type Layout struct {
	Width      int
	PageHeight int
}

func (l Layout) normalized() Layout {
	if l.Width <= 0 {
		l.Width = DefaultWidth
	}
	if l.PageHeight <= 0 {
		l.PageHeight = DefaultPageHeight
	}
	l.Width = max(l.Width, minWidth)
	l.PageHeight = max(l.PageHeight, minPageHeight)
	return l
}

// Render returns the paper as plain text. Pages are separated by a form
// feed and each page ends with a centred "Page i of N" line. The output
// depends only on p and l.
func Render(p composer.Paper, l Layout) string {
	l = l.normalized()
	r := renderer{width: l.Width}

	blocks := [][]string{r.header(p)}
	if ins := strings.TrimSpace(p.Meta.Instructions); ins != "" {
		blocks = append(blocks, r.instructions(ins))
	}

	numW := len(fmt.Sprintf("%d. ", len(p.Entries)))
	for i, e := range p.Entries {
		blocks = append(blocks, r.entry(i+1, numW, e))
	}
	blocks = append(blocks, []string{"", r.center(EndOfPaper)})

	return paginate(blocks, l)
}

type renderer struct {
	width int
}

func (r renderer) header(p composer.Paper) []string {
	var lines []string
	if label := strings.TrimSpace(p.Meta.InstituteLabel); label != "" {
		lines = append(lines, r.center(label))
	}
	lines = append(lines, r.center(strings.TrimSpace(p.Meta.Title)))

	rule := strings.Repeat("=", r.width)
	left := "Duration: " + strings.TrimSpace(p.Meta.Duration)
	if strings.TrimSpace(p.Meta.Duration) == "" {
		left = "Duration: -"
	}
	right := fmt.Sprintf("Total Marks: %d", p.TotalMarks)

	lines = append(lines, rule, spread(r.width, left, right), rule)
	return lines
}

func (r renderer) instructions(text string) []string {
	lines := []string{"", "Instructions:"}
	for _, line := range wrap(text, r.width-2) {
		lines = append(lines, indent(2, line))
	}
	return lines
}

// entry lays out one numbered question. The first body line carries the
// marks flush right.
func (r renderer) entry(n, numW int, e composer.Entry) []string {
	q := e.Question
	prefix := fmt.Sprintf("%-*s", numW, fmt.Sprintf("%d.", n))
	lines := append([]string{""}, r.item(r.width, prefix, q.Body, e.Marks)...)

	switch q.Kind {
	case question.KindMCQ:
		lines = append(lines, r.options(numW, q.Options)...)
	case question.KindPassage:
		lines = append(lines, r.children(numW, q.Children)...)
	}
	return lines
}

func (r renderer) children(ind int, children []question.Child) []string {
	labelW := 0
	for i := range children {
		labelW = max(labelW, len(roman(i+1))+3)
	}

	var lines []string
	for i, c := range children {
		label := fmt.Sprintf("%-*s", labelW, "("+roman(i+1)+")")
		item := r.item(r.width-ind, label, c.Body, c.Marks)
		for _, line := range item {
			lines = append(lines, indent(ind, line))
		}
		if c.Kind == question.KindMCQ {
			lines = append(lines, r.options(ind+labelW, c.Options)...)
		}
	}
	return lines
}

// item wraps body beside label and places "[marks]" at the right edge of
// the first line. Continuation lines hang under the body.
func (r renderer) item(width int, label, body string, marks int) []string {
	tag := fmt.Sprintf("[%d]", marks)
	bodyW := width - len(label) - len(tag) - 1
	wrapped := wrap(body, bodyW)
	if len(wrapped) == 0 {
		wrapped = []string{""}
	}

	lines := make([]string, 0, len(wrapped))
	lines = append(lines, spread(width, label+wrapped[0], tag))
	for _, line := range wrapped[1:] {
		lines = append(lines, indent(len(label), line))
	}
	return lines
}

// options lays out MCQ options in two columns, row-major, so (a) and (b)
// share the first row.
func (r renderer) options(ind int, opts question.Options) []string {
	if len(opts) == 0 {
		return nil
	}
	cellW := (r.width - ind) / 2
	cell := lipgloss.NewStyle().Width(cellW)

	var lines []string
	for i := 0; i < len(opts); i += 2 {
		cells := []string{cell.Render(r.option(i, opts[i].Text, cellW))}
		if i+1 < len(opts) {
			cells = append(cells, cell.Render(r.option(i+1, opts[i+1].Text, cellW)))
		}
		row := ansi.Strip(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		for _, line := range strings.Split(row, "\n") {
			lines = append(lines, indent(ind, line))
		}
	}
	return lines
}

func (r renderer) option(i int, text string, cellW int) string {
	label := "(" + question.Letter(i) + ") "
	wrapped := wrap(text, cellW-len(label)-1)
	if len(wrapped) == 0 {
		return label
	}
	out := []string{label + wrapped[0]}
	for _, line := range wrapped[1:] {
		out = append(out, indent(len(label), line))
	}
	return strings.Join(out, "\n")
}

func (r renderer) center(s string) string {
	if ansi.StringWidth(s) >= r.width {
		return s
	}
	return strings.TrimRight(lipgloss.PlaceHorizontal(r.width, lipgloss.Center, s), " ")
}

// spread puts left and right at opposite edges of width, separated by at
// least one space.
func spread(width int, left, right string) string {
	gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
	return left + strings.Repeat(" ", max(gap, 1)) + right
}

// wrap breaks text into lines of at most width cells, keeping explicit
// newlines and breaking words longer than a line.
func wrap(text string, width int) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}
	width = max(width, 1)
	var out []string
	for _, line := range strings.Split(ansi.Wrap(text, width, ""), "\n") {
		out = append(out, strings.TrimRight(line, " "))
	}
	return out
}

func indent(n int, s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return strings.TrimRight(strings.Repeat(" ", n)+s, " ")
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// roman returns n in lower-case roman numerals; n must be positive.
func roman(n int) string {
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
