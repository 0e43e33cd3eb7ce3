// Package preview shows a paper exactly as the renderer prints it, one
// page at a time.
package preview

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/render"
	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// Screen pages through a rendered paper.
type Screen struct {
	title  string
	pages  [][]string
	page   int
	offset int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New renders p with deps.Layout.
func New(deps screen.Deps, p composer.Paper) *Screen {
	out := render.Render(p, deps.Layout)
	var pages [][]string
	for _, pg := range strings.Split(out, render.FormFeed) {
		pages = append(pages, strings.Split(strings.TrimRight(pg, "\n"), "\n"))
	}
	title := "Preview"
	if p.Meta.Title != "" {
		title = "Preview · " + p.Meta.Title
	}
	return &Screen{title: title, pages: pages}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return s.title }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "←→", Description: "Page"},
		{Key: "Esc", Description: "Back"},
	}
}

// Page returns the zero-based page on screen.
func (s *Screen) Page() int { return s.page }

// PageCount returns the number of rendered pages.
func (s *Screen) PageCount() int { return len(s.pages) }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc", "q":
		return s, router.Pop()
	case "up", "k":
		s.offset = max(s.offset-1, 0)
	case "down", "j":
		s.offset++
	case "right", "pgdown", "n", "space":
		if s.page < len(s.pages)-1 {
			s.page++
			s.offset = 0
		}
	case "left", "pgup", "p":
		if s.page > 0 {
			s.page--
			s.offset = 0
		}
	case "home", "g":
		s.page, s.offset = 0, 0
	case "end", "G":
		s.page, s.offset = len(s.pages)-1, 0
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	lines := s.pages[s.page]
	status := theme.Subtitle.Render(fmt.Sprintf("page %d of %d", s.page+1, len(s.pages)))
	bodyH := max(height-4, 1)
	s.offset = min(s.offset, max(len(lines)-bodyH, 0))
	end := min(s.offset+bodyH, len(lines))

	paper := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		Foreground(theme.Text).
		Padding(0, 1).
		Render(strings.Join(lines[s.offset:end], "\n"))
	return lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.PlaceHorizontal(width, lipgloss.Center, paper),
		lipgloss.PlaceHorizontal(width, lipgloss.Center, status),
	)
}
