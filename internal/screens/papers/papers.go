// Package papers lists saved exam papers and opens them in the preview.
package papers

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/screens/preview"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/ui/layout"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// listLimit bounds how many papers are listed, newest first.
const listLimit = 50

type papersLoadedMsg struct {
	papers []store.PaperSummary
	err    error
}

type paperLoadedMsg struct {
	paper *composer.Paper
	err   error
}

// Screen displays saved papers.
type Screen struct {
	deps     screen.Deps
	papers   []store.PaperSummary
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the saved papers screen.
func New(deps screen.Deps) *Screen {
	return &Screen{deps: deps}
}

func (s *Screen) Init() tea.Cmd {
	repo := s.deps.Papers
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		papers, err := repo.List(ctx, listLimit)
		return papersLoadedMsg{papers: papers, err: err}
	}
}

func (s *Screen) Title() string {
	return "Saved Papers"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Preview"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case papersLoadedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		} else {
			s.papers = msg.papers
		}
		s.loaded = true
		return s, nil

	case paperLoadedMsg:
		if msg.err != nil {
			return s, screen.Fail(fmt.Errorf("opening paper: %w", msg.err))
		}
		return s, router.Push(preview.New(s.deps, *msg.paper))

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.papers)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected < len(s.papers) {
				return s, s.open(s.papers[s.selected].ID)
			}
		}
	}
	return s, nil
}

func (s *Screen) open(id string) tea.Cmd {
	repo := s.deps.Papers
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		p, err := repo.Get(ctx, id)
		return paperLoadedMsg{paper: p, err: err}
	}
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading papers...")
	}
	if len(s.papers) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No saved papers yet. Compose one and press s to save.")
	}

	var b strings.Builder
	b.WriteString("\n")

	start := max(s.selected-height+3, 0)
	for i := start; i < len(s.papers) && i-start < height-2; i++ {
		p := s.papers[i]
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s  %-30s  %2d questions  %3d marks",
			prefix, p.CreatedAt.Local().Format("Jan 02, 2006 15:04"), truncate(p.Title, 30), p.Questions, p.TotalMarks)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
