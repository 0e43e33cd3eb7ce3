package screen

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/browser"
	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/render"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/taxonomy"
	"github.com/abhisek/qbank/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens that are editing text, so the
// app does not treat Esc as "back" while a field has focus.
type InputCapturer interface {
	CapturesInput() bool
}

// Deps are shared by every screen. Paper is the working selection; it
// lives for the whole TUI session.
type Deps struct {
	Bank     *bank.Service
	Taxonomy *taxonomy.Index
	Papers   store.PaperRepo
	Paper    *composer.Composer
	Browser  browser.Config
	Layout   render.Layout
	Log      *slog.Logger
}

// Timeout bounds every store call made from a tea.Cmd.
const Timeout = 10 * time.Second

// Ctx returns a context for one store call and its cancel func.
func Ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), Timeout)
}

// ErrorMsg shows a blocking error banner. The user dismisses it with
// Enter or Esc.
type ErrorMsg struct {
	Err error
}

// NoticeMsg shows a transient success banner.
type NoticeMsg struct {
	Text string
}

// BankChangedMsg tells the active screen that questions were created,
// updated or deleted.
type BankChangedMsg struct{}

// Fail returns a command reporting err in the error banner.
func Fail(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

// Notify returns a command showing text in the success banner.
func Notify(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text} }
}
