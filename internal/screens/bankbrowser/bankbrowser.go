// Package bankbrowser is the question browser screen: taxonomy filters,
// tag filter, debounced search and paged results that feed the working
// paper.
package bankbrowser

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/browser"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/screens/detail"
	"github.com/abhisek/qbank/internal/screens/editor"
	"github.com/abhisek/qbank/internal/tags"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
)

type focus int

const (
	focusList focus = iota
	focusSearch
	focusSegment
	focusGroup
	focusSubject
	focusKind
	focusTag
	focusCount
)

const anyLabel = "(any)"

// Screen browses the bank.
type Screen struct {
	deps screen.Deps
	b    *browser.Browser

	focus   focus
	search  components.TextInput
	tag     components.TextInput
	segment components.Choice
	group   components.Choice
	subject components.Choice
	kind    components.Choice

	tagIndex      *tags.Index
	cursor        int
	confirmDelete string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.InputCapturer = (*Screen)(nil)

// New creates the browser screen.
func New(deps screen.Deps) *Screen {
	kinds := make([]components.ChoiceItem, 0, 3)
	for _, k := range question.AllKinds() {
		kinds = append(kinds, components.ChoiceItem{Value: string(k), Label: k.Label()})
	}
	return &Screen{
		deps:    deps,
		b:       browser.New(deps.Browser),
		search:  components.NewTextInput("Search", "text in question body", false, 200),
		tag:     components.NewTextInput("Tag", "enter to apply", false, 100),
		segment: components.NewChoice("Segment", anyLabel, nil),
		group:   components.NewChoice("Group", anyLabel, nil),
		subject: components.NewChoice("Subject", anyLabel, nil),
		kind:    components.NewChoice("Type", anyLabel, kinds),
	}
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.run(s.b.Start()), s.loadSegments(), s.loadTags())
}

func (s *Screen) Title() string {
	return "Question Bank"
}

// CapturesInput is true while a filter control has focus; Esc then
// returns to the list instead of leaving the screen.
func (s *Screen) CapturesInput() bool {
	return s.focus != focusList || s.confirmDelete != ""
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.focus != focusList {
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next filter"},
			{Key: "←→", Description: "Change"},
			{Key: "Esc", Description: "Results"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Add/remove"},
		{Key: "Enter", Description: "Details"},
		{Key: "←→", Description: "Page"},
		{Key: "Tab", Description: "Filters"},
		{Key: "c/e/d", Description: "New/Edit/Delete"},
		{Key: "x", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		if !s.b.Resolve(msg.seq, msg.res, msg.err) {
			return s, nil
		}
		if msg.err != nil {
			return s, screen.Fail(fmt.Errorf("loading questions: %w", msg.err))
		}
		s.cursor = min(s.cursor, max(len(s.b.Rows())-1, 0))
		return s, nil

	case segmentsMsg:
		if msg.err != nil {
			return s, screen.Fail(msg.err)
		}
		items := make([]components.ChoiceItem, len(msg.segments))
		for i, seg := range msg.segments {
			items[i] = components.ChoiceItem{Value: seg.ID, Label: seg.Name}
		}
		s.segment.SetItems(anyLabel, items)
		s.segment.Select(s.b.Filter().Classification.SegmentID)
		return s, nil

	case groupsMsg:
		if msg.err != nil {
			return s, screen.Fail(msg.err)
		}
		if s.b.SetGroupOptions(msg.segmentID, msg.groups) {
			items := make([]components.ChoiceItem, len(msg.groups))
			for i, g := range msg.groups {
				items[i] = components.ChoiceItem{Value: g.ID, Label: g.Name}
			}
			s.group.SetItems(anyLabel, items)
		}
		return s, nil

	case subjectsMsg:
		if msg.err != nil {
			return s, screen.Fail(msg.err)
		}
		if s.b.SetSubjectOptions(msg.groupID, msg.subjects) {
			items := make([]components.ChoiceItem, len(msg.subjects))
			for i, sub := range msg.subjects {
				items[i] = components.ChoiceItem{Value: sub.ID, Label: sub.Name}
			}
			s.subject.SetItems(anyLabel, items)
		}
		return s, nil

	case tagsMsg:
		if msg.err == nil {
			s.tagIndex = msg.index
			s.tag.Model.SetSuggestions(msg.index.All())
			s.tag.Model.ShowSuggestions = true
			s.tag.Model.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
		}
		return s, nil

	case searchSettledMsg:
		return s, s.run(s.b.SearchSettled(msg.token))

	case deletedMsg:
		if msg.err != nil {
			return s, screen.Fail(msg.err)
		}
		s.deps.Paper.Remove(msg.id)
		return s, tea.Batch(s.run(s.b.Refresh()), s.loadTags(), screen.Notify("Question deleted"))

	case screen.BankChangedMsg:
		return s, tea.Batch(s.run(s.b.Refresh()), s.loadTags())

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmDelete != "" {
		id := s.confirmDelete
		s.confirmDelete = ""
		if key == "y" {
			return s, s.deleteQuestion(id)
		}
		return s, nil
	}

	switch key {
	case "tab":
		return s, s.setFocus((s.focus + 1) % focusCount)
	case "shift+tab":
		return s, s.setFocus((s.focus + focusCount - 1) % focusCount)
	case "esc":
		if s.focus != focusList {
			return s, s.setFocus(focusList)
		}
		return s, router.Pop()
	}

	switch s.focus {
	case focusSearch:
		before := s.search.Value()
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		if s.search.Value() == before {
			return s, cmd
		}
		token := s.b.SetSearch(s.search.Value())
		return s, tea.Batch(cmd, s.settleAfter(token))

	case focusTag:
		if key == "enter" {
			return s, s.run(s.b.SetTag(s.tag.Value()))
		}
		var cmd tea.Cmd
		s.tag, cmd = s.tag.Update(msg)
		return s, cmd

	case focusSegment:
		var changed bool
		if s.segment, changed = s.segment.Update(msg); !changed {
			return s, nil
		}
		s.group.SetItems(anyLabel, nil)
		s.subject.SetItems(anyLabel, nil)
		id := s.segment.Value()
		return s, tea.Batch(s.run(s.b.SetSegment(id)), s.loadGroups(id))

	case focusGroup:
		var changed bool
		if s.group, changed = s.group.Update(msg); !changed {
			return s, nil
		}
		s.subject.SetItems(anyLabel, nil)
		id := s.group.Value()
		return s, tea.Batch(s.run(s.b.SetGroup(id)), s.loadSubjects(id))

	case focusSubject:
		var changed bool
		if s.subject, changed = s.subject.Update(msg); !changed {
			return s, nil
		}
		return s, s.run(s.b.SetSubject(s.subject.Value()))

	case focusKind:
		var changed bool
		if s.kind, changed = s.kind.Update(msg); !changed {
			return s, nil
		}
		return s, s.run(s.b.SetKind(question.Kind(s.kind.Value())))
	}

	return s.listKey(key)
}

func (s *Screen) listKey(key string) (screen.Screen, tea.Cmd) {
	rows := s.b.Rows()
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(rows)-1 {
			s.cursor++
		}
	case "right", "pgdown":
		if q := s.b.NextPage(); q != nil {
			s.cursor = 0
			return s, s.run(q)
		}
	case "left", "pgup":
		if q := s.b.PrevPage(); q != nil {
			s.cursor = 0
			return s, s.run(q)
		}
	case "r":
		return s, s.run(s.b.Refresh())
	case "x":
		s.resetControls()
		return s, s.run(s.b.ClearFilters())
	case "c":
		draft := question.Question{Kind: question.KindMCQ, Classification: s.b.Filter().Classification}
		return s, router.Push(editor.New(s.deps, draft, s.tagIndex))
	}

	q, ok := s.selected()
	if !ok {
		return s, nil
	}
	switch key {
	case "space", " ", "a":
		s.toggle(q)
	case "enter":
		return s, router.Push(detail.New(s.deps, q))
	case "e":
		return s, router.Push(editor.New(s.deps, q, s.tagIndex))
	case "d":
		s.confirmDelete = q.ID
	}
	return s, nil
}

// toggle adds q to the working paper, or removes it when already there.
func (s *Screen) toggle(q question.Question) {
	if s.deps.Paper.Has(q.ID) {
		s.deps.Paper.Remove(q.ID)
		return
	}
	s.deps.Paper.Add(q)
}

func (s *Screen) selected() (question.Question, bool) {
	rows := s.b.Rows()
	if s.cursor < 0 || s.cursor >= len(rows) {
		return question.Question{}, false
	}
	return rows[s.cursor], true
}

func (s *Screen) setFocus(f focus) tea.Cmd {
	s.focus = f
	s.search.Blur()
	s.tag.Blur()
	s.segment.Blur()
	s.group.Blur()
	s.subject.Blur()
	s.kind.Blur()

	switch f {
	case focusSearch:
		return s.search.Focus()
	case focusTag:
		return s.tag.Focus()
	case focusSegment:
		s.segment.Focus()
	case focusGroup:
		s.group.Focus()
	case focusSubject:
		s.subject.Focus()
	case focusKind:
		s.kind.Focus()
	}
	return nil
}

func (s *Screen) resetControls() {
	s.search.SetValue("")
	s.tag.SetValue("")
	s.segment.Selected = 0
	s.group.SetItems(anyLabel, nil)
	s.subject.SetItems(anyLabel, nil)
	s.kind.Selected = 0
}
