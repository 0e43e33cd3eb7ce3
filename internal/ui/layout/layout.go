// Package layout draws the frame around every screen: a header with the
// app name, screen title and paper status, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/abhisek/qbank/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"qbank needs at least %d x %d\n\nThis terminal is %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

var (
	brandStyle  = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(theme.Text)
	statusStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	keyStyle    = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(theme.TextDim)
	barStyle    = lipgloss.NewStyle().
			Background(theme.BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border)
)

// RenderHeader centres title between the app name and status. A title
// that does not fit is truncated.
func RenderHeader(title, status string, width int) string {
	inner := max(width-4, 0)
	left := brandStyle.Render("  qbank")
	right := statusStyle.Render(status)

	room := inner - lipgloss.Width(left) - lipgloss.Width(right) - 2
	center := titleStyle.Render(ansi.Truncate(title, max(room, 0), "…"))

	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	line := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
	return barStyle.Width(width).Render(line)
}

// RenderFooter lists hints left to right. When they do not fit, the
// descriptions are dropped and only keys are shown.
func RenderFooter(hints []KeyHint, width int) string {
	full := joinHints(hints, true)
	if lipgloss.Width(full) > max(width-4, 0) {
		full = joinHints(hints, false)
	}
	return barStyle.Width(width).Render(full)
}

func joinHints(hints []KeyHint, withDesc bool) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		p := keyStyle.Render(h.Key)
		if withDesc {
			p += " " + descStyle.Render(h.Description)
		}
		parts = append(parts, p)
	}
	return "  " + strings.Join(parts, "   ")
}

// RenderFrame stacks header, content and footer, sizing content to fill
// the remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(h).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
