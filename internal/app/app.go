package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/screens/bankbrowser"
	"github.com/abhisek/qbank/internal/screens/home"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
)

// NoticeTimeout is how long a success banner stays up.
const NoticeTimeout = 3 * time.Second

// bannerExpiredMsg dismisses banner id if it is still showing.
type bannerExpiredMsg struct {
	id int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	deps   screen.Deps
	width  int
	height int

	banner   *components.Banner
	bannerID int

	initCmd tea.Cmd
}

// Options select the first screen.
type Options struct {
	// Browse opens the question browser above the home menu.
	Browse bool
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(deps screen.Deps, opts Options) AppModel {
	if deps.Log == nil {
		deps.Log = slog.New(slog.DiscardHandler)
	}
	m := AppModel{router: router.New(home.New(deps)), deps: deps}
	if opts.Browse {
		m.initCmd = m.router.Push(bankbrowser.New(deps))
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return m.initCmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.ErrorMsg:
		m.deps.Log.Error("screen error", "screen", m.activeTitle(), "err", msg.Err)
		m.bannerID++
		m.banner = &components.Banner{Kind: components.BannerError, Text: msg.Err.Error(), ID: m.bannerID}
		return m, nil

	case screen.NoticeMsg:
		m.bannerID++
		id := m.bannerID
		m.banner = &components.Banner{Kind: components.BannerSuccess, Text: msg.Text, ID: id}
		return m, tea.Tick(NoticeTimeout, func(time.Time) tea.Msg { return bannerExpiredMsg{id: id} })

	case bannerExpiredMsg:
		if m.banner != nil && m.banner.ID == msg.id && !m.banner.Blocking() {
			m.banner = nil
		}
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		if m.banner != nil {
			if m.banner.Blocking() {
				if key == "enter" || key == "esc" {
					m.banner = nil
				}
				return m, nil
			}
			m.banner = nil
		}

		if key == "esc" && !m.capturing() {
			if m.router.Depth() > 1 {
				return m, router.Pop()
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// capturing reports whether the active screen wants Esc for itself.
func (m AppModel) capturing() bool {
	c, ok := m.router.Active().(screen.InputCapturer)
	return ok && c.CapturesInput()
}

func (m AppModel) activeTitle() string {
	if active := m.router.Active(); active != nil {
		return active.Title()
	}
	return ""
}

// status summarises the working paper for the header.
func (m AppModel) status() string {
	p := m.deps.Paper
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d questions · %d marks  ", p.Len(), p.TotalMarks())
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.frame())
	v.AltScreen = true
	return v
}

// frame renders header, active screen, banner and footer.
func (m AppModel) frame() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	header := layout.RenderHeader(m.activeTitle(), m.status(), m.width)

	var footerHints []layout.KeyHint
	if hp, ok := m.router.Active().(screen.KeyHintProvider); ok {
		footerHints = append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)
	if m.banner != nil {
		footer = lipgloss.JoinVertical(lipgloss.Left, m.banner.View(m.width), footer)
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(deps screen.Deps, opts Options) error {
	p := tea.NewProgram(newAppModel(deps, opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
