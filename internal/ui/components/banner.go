package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/ui/theme"
)

// BannerKind selects the banner style and how it is dismissed.
type BannerKind int

const (
	// BannerError blocks input until dismissed with Enter or Esc.
	BannerError BannerKind = iota
	// BannerSuccess is dismissed by any key or after a timeout.
	BannerSuccess
)

// Banner is a one-line message shown above the active screen.
type Banner struct {
	Kind BannerKind
	Text string
	// ID distinguishes successive banners so a stale timeout does not
	// dismiss a newer one.
	ID int
}

// Blocking reports whether the banner swallows keys until dismissed.
func (b Banner) Blocking() bool {
	return b.Kind == BannerError
}

// View renders the banner across width.
func (b Banner) View(width int) string {
	style := theme.BannerSuccess
	text := "✓ " + b.Text
	if b.Kind == BannerError {
		style = theme.BannerError
		text = "✗ " + b.Text + "   [Enter/Esc to dismiss]"
	}
	return style.Width(width).Render(lipgloss.NewStyle().Render(text))
}
