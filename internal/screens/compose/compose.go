// Package compose is the exam composer screen: the working selection with
// per-entry marks, ordering, paper metadata, preview and save.
package compose

import (
	"fmt"
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/screens/preview"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
)

type mode int

const (
	modeList mode = iota
	modeMarks
	modeMeta
	modeConfirmReset
)

// Meta form fields.
const (
	metaTitle = iota
	metaInstitute
	metaDuration
	metaInstructions
	metaFields
)

type savedMsg struct {
	paper *composer.Paper
	err   error
}

// Screen edits deps.Paper in place.
type Screen struct {
	deps   screen.Deps
	paper  *composer.Composer
	cursor int
	mode   mode

	marks     components.TextInput
	meta      [metaFields]components.TextInput
	metaFocus int

	saving bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.InputCapturer = (*Screen)(nil)

// New creates the composer screen over deps.Paper.
func New(deps screen.Deps) *Screen {
	return &Screen{
		deps:  deps,
		paper: deps.Paper,
		marks: components.NewTextInput("Marks", "whole number", false, 8),
		meta: [metaFields]components.TextInput{
			components.NewTextInput("Title", composer.DefaultTitle, false, 200),
			components.NewTextInput("Institute", "optional", false, 200),
			components.NewTextInput("Duration", "e.g. 2 hours", false, 50),
			components.NewTextInput("Instructions", "optional", false, 2000),
		},
	}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Compose Paper" }

// CapturesInput is true while a form or prompt is open.
func (s *Screen) CapturesInput() bool { return s.mode != modeList }

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeMarks:
		return []layout.KeyHint{{Key: "Enter", Description: "Apply"}, {Key: "Esc", Description: "Cancel"}}
	case modeMeta:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeConfirmReset:
		return []layout.KeyHint{{Key: "y", Description: "Clear paper"}, {Key: "any", Description: "Keep"}}
	}
	return []layout.KeyHint{
		{Key: "+/-", Description: "Marks"},
		{Key: "e", Description: "Set marks"},
		{Key: "J/K", Description: "Move"},
		{Key: "x", Description: "Remove"},
		{Key: "m", Description: "Details"},
		{Key: "p", Description: "Preview"},
		{Key: "s", Description: "Save"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		s.saving = false
		if msg.err != nil {
			return s, screen.Fail(msg.err)
		}
		return s, screen.Notify(fmt.Sprintf("Paper saved as %s (%d marks)", msg.paper.ID, msg.paper.TotalMarks))

	case tea.KeyMsg:
		switch s.mode {
		case modeMarks:
			return s.marksKey(msg)
		case modeMeta:
			return s.metaKey(msg)
		case modeConfirmReset:
			s.mode = modeList
			if msg.String() == "y" {
				s.paper.Reset()
				s.cursor = 0
				return s, screen.Notify("Paper cleared")
			}
			return s, nil
		}
		return s.listKey(msg.String())
	}
	return s, nil
}

func (s *Screen) listKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "esc":
		return s, router.Pop()
	case "m":
		return s, s.openMeta()
	case "p":
		return s, router.Push(preview.New(s.deps, s.paper.Snapshot()))
	case "s":
		if s.saving {
			return s, nil
		}
		s.saving = true
		return s, s.save()
	case "n":
		if s.paper.Len() > 0 || s.paper.Meta() != (composer.Meta{}) {
			s.mode = modeConfirmReset
		}
		return s, nil
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
		return s, nil
	case "down", "j":
		s.cursor = min(s.cursor+1, max(s.paper.Len()-1, 0))
		return s, nil
	}

	e, ok := s.selected()
	if !ok {
		return s, nil
	}
	id := e.Question.ID
	switch key {
	case "+", "=":
		s.paper.SetMarks(id, e.Marks+1)
	case "-", "_":
		s.paper.SetMarks(id, e.Marks-1)
	case "e", "enter":
		s.mode = modeMarks
		s.marks.SetValue(strconv.Itoa(e.Marks))
		return s, s.marks.Focus()
	case "K", "shift+up":
		if s.paper.Move(id, -1) {
			s.cursor--
		}
	case "J", "shift+down":
		if s.paper.Move(id, 1) {
			s.cursor++
		}
	case "x", "delete":
		s.paper.Remove(id)
		s.cursor = min(s.cursor, max(s.paper.Len()-1, 0))
	}
	return s, nil
}

func (s *Screen) marksKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = modeList
		s.marks.Blur()
		return s, nil
	case "enter":
		if e, ok := s.selected(); ok {
			s.paper.SetMarksInput(e.Question.ID, s.marks.Value())
		}
		s.mode = modeList
		s.marks.Blur()
		return s, nil
	}
	var cmd tea.Cmd
	s.marks, cmd = s.marks.Update(msg)
	return s, cmd
}

func (s *Screen) openMeta() tea.Cmd {
	m := s.paper.Meta()
	s.meta[metaTitle].SetValue(m.Title)
	s.meta[metaInstitute].SetValue(m.InstituteLabel)
	s.meta[metaDuration].SetValue(m.Duration)
	s.meta[metaInstructions].SetValue(m.Instructions)
	s.mode = modeMeta
	return s.focusMeta(metaTitle)
}

func (s *Screen) focusMeta(i int) tea.Cmd {
	s.metaFocus = i
	for j := range s.meta {
		s.meta[j].Blur()
	}
	return s.meta[i].Focus()
}

func (s *Screen) metaKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = modeList
		for j := range s.meta {
			s.meta[j].Blur()
		}
		return s, nil
	case "tab", "down":
		return s, s.focusMeta((s.metaFocus + 1) % metaFields)
	case "shift+tab", "up":
		return s, s.focusMeta((s.metaFocus + metaFields - 1) % metaFields)
	case "enter":
		s.paper.SetMeta(composer.Meta{
			Title:          s.meta[metaTitle].Value(),
			InstituteLabel: s.meta[metaInstitute].Value(),
			Duration:       s.meta[metaDuration].Value(),
			Instructions:   s.meta[metaInstructions].Value(),
		})
		s.mode = modeList
		for j := range s.meta {
			s.meta[j].Blur()
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.meta[s.metaFocus], cmd = s.meta[s.metaFocus].Update(msg)
	return s, cmd
}

// save persists a copy of the selection so later edits on the update loop
// cannot race the store call.
func (s *Screen) save() tea.Cmd {
	paper, papers := s.paper.Clone(), s.deps.Papers
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		p, err := paper.Save(ctx, papers)
		return savedMsg{paper: p, err: err}
	}
}

func (s *Screen) selected() (composer.Entry, bool) {
	entries := s.paper.Entries()
	if s.cursor < 0 || s.cursor >= len(entries) {
		return composer.Entry{}, false
	}
	return entries[s.cursor], true
}
