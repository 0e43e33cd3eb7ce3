// Package screentest builds screen dependencies on an in-memory store for
// screen tests.
package screentest

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/browser"
	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/render"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/taxonomy"
)

// Tree is the taxonomy loaded into every test store.
const Tree = `
segments:
  - id: k12
    name: School
    groups:
      - id: g10
        name: Grade 10
        subjects:
          - {id: phy, name: Physics}
          - {id: chem, name: Chemistry}
  - id: ug
    name: Undergraduate
`

var seq atomic.Int64

// Deps opens a fresh store named after the test and wires screen deps on
// it. The store is closed when the test ends.
func Deps(t *testing.T) screen.Deps {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:screen_%s_%d?mode=memory&cache=shared", name, seq.Add(1)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tree, err := taxonomy.ParseTree(strings.NewReader(Tree))
	require.NoError(t, err)
	require.NoError(t, s.TaxonomyRepo().LoadTree(context.Background(), tree))

	idx := taxonomy.NewIndex(s.TaxonomyRepo())
	return screen.Deps{
		Bank:     bank.New(s.QuestionRepo(), idx, nil),
		Taxonomy: idx,
		Papers:   s.PaperRepo(),
		Paper:    composer.New(),
		Browser:  browser.Config{PageSize: 5, Debounce: time.Millisecond},
		Layout:   render.Layout{Width: 60, PageHeight: 30},
	}
}

// Key returns the key press for a single rune.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special returns a key press without text, such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Ctrl returns ctrl+r.
func Ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

var cmdType = reflect.TypeOf(tea.Cmd(nil))

// Drain runs cmd and returns the messages it produces, expanding batches
// and sequences in order. Commands that sleep, such as cursor blinks, make
// Drain sleep too, so callers pass only the commands they care about.
func Drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	// Batch and Sequence both produce a slice of commands.
	if v := reflect.ValueOf(msg); v.Kind() == reflect.Slice && v.Type().Elem() == cmdType {
		var out []tea.Msg
		for i := range v.Len() {
			out = append(out, Drain(v.Index(i).Interface().(tea.Cmd))...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// Find returns the first message of type T in msgs.
func Find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
