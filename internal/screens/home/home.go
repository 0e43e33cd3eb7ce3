package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/screens/bankbrowser"
	"github.com/abhisek/qbank/internal/screens/compose"
	"github.com/abhisek/qbank/internal/screens/papers"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/theme"
)

// HomeScreen is the entry menu.
type HomeScreen struct {
	deps screen.Deps
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	items := []components.MenuItem{
		{Key: "b", Label: "Browse questions", Hint: "filter, search, add to paper", Action: func() tea.Cmd {
			return router.Push(bankbrowser.New(deps))
		}},
		{Key: "c", Label: "Compose paper", Hint: "marks, order, header, save", Action: func() tea.Cmd {
			return router.Push(compose.New(deps))
		}},
		{Key: "p", Label: "Saved papers", Hint: "view and print", Action: func() tea.Cmd {
			return router.Push(papers.New(deps))
		}},
		{Key: "q", Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	return &HomeScreen{deps: deps, menu: components.NewMenu(items)}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Question Bank"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Build exam papers from your question bank"))
	b.WriteString("\n\n")

	if p := h.deps.Paper; p != nil && p.Len() > 0 {
		meta := p.Meta()
		title := meta.Title
		if title == "" {
			title = "untitled paper"
		}
		b.WriteString(theme.Marked.Render(fmt.Sprintf("Working on %s: %d questions, %d marks",
			title, p.Len(), p.TotalMarks())))
		b.WriteString("\n\n")
	}

	b.WriteString(h.menu.View())

	box := theme.Card.Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
