// Package editor is the create/edit form for one question, including the
// parts of a passage.
package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/tags"
	"github.com/abhisek/qbank/internal/taxonomy"
	"github.com/abhisek/qbank/internal/ui/components"
	"github.com/abhisek/qbank/internal/ui/layout"
)

// Top-level fields in focus order. Child fields follow them, childFields
// per part.
const (
	fieldKind = iota
	fieldBody
	fieldMarks
	fieldOptions
	fieldExplanation
	fieldTags
	fieldSegment
	fieldGroup
	fieldSubject
	topFields
)

const (
	childKind = iota
	childBody
	childMarks
	childOptions
	childFields
)

const noneLabel = "(none)"

const optionsHint = "Paris*; Lyon; Nice  (* marks the correct one)"

// part is the form row of one passage sub-question.
type part struct {
	kind    components.Choice
	body    components.TextInput
	marks   components.TextInput
	options components.TextInput
}

// Screen edits a draft. An empty draft ID means the draft is new.
type Screen struct {
	deps  screen.Deps
	draft question.Question

	focus       int
	kind        components.Choice
	body        textarea.Model
	marks       components.TextInput
	options     components.TextInput
	explanation components.TextInput
	tags        components.TagInput
	segment     components.Choice
	group       components.Choice
	subject     components.Choice
	parts       []part

	// class is the chosen classification. It is set before the option
	// lists arrive and corrected when an id is not among them.
	class taxonomy.Classification

	needTags bool
	errs     []bank.FieldError
	saving   bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.InputCapturer = (*Screen)(nil)

// New opens draft for editing. idx feeds tag suggestions and may be nil.
func New(deps screen.Deps, draft question.Question, idx *tags.Index) *Screen {
	draft = draft.Clone()
	if draft.Kind == "" {
		draft.Kind = question.KindMCQ
	}

	body := textarea.New()
	body.Placeholder = "Question text"
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.SetHeight(4)
	body.SetValue(draft.Body)

	s := &Screen{
		deps:        deps,
		draft:       draft,
		kind:        kindChoice("Type", question.AllKinds()),
		body:        body,
		marks:       components.NewTextInput("Marks", "0", true, 4),
		options:     components.NewTextInput("Options", optionsHint, false, 1000),
		explanation: components.NewTextInput("Explanation", "optional", false, 1000),
		tags:        components.NewTagInput("Tags", draft.Tags, idx),
		segment:     components.NewChoice("Segment", noneLabel, nil),
		group:       components.NewChoice("Group", noneLabel, nil),
		subject:     components.NewChoice("Subject", noneLabel, nil),
		class:       draft.Classification,
		needTags:    idx == nil,
	}
	s.kind.Select(string(draft.Kind))
	if draft.Marks > 0 {
		s.marks.SetValue(strconv.Itoa(draft.Marks))
	}
	s.options.SetValue(question.FormatOptionList(draft.Options))
	s.explanation.SetValue(draft.Explanation)
	for _, c := range draft.Children {
		s.parts = append(s.parts, newPart(c))
	}
	s.setFocus(fieldBody)
	return s
}

func newPart(c question.Child) part {
	p := part{
		kind:    kindChoice("  Type", []question.Kind{question.KindMCQ, question.KindDescriptive}),
		body:    components.NewTextInput("  Text", "sub-question text", false, 2000),
		marks:   components.NewTextInput("  Marks", "0", true, 4),
		options: components.NewTextInput("  Options", optionsHint, false, 1000),
	}
	if c.Kind != "" {
		p.kind.Select(string(c.Kind))
	}
	p.body.SetValue(c.Body)
	if c.Marks > 0 {
		p.marks.SetValue(strconv.Itoa(c.Marks))
	}
	p.options.SetValue(question.FormatOptionList(c.Options))
	return p
}

func kindChoice(label string, kinds []question.Kind) components.Choice {
	items := make([]components.ChoiceItem, len(kinds))
	for i, k := range kinds {
		items[i] = components.ChoiceItem{Value: string(k), Label: k.Label()}
	}
	return components.NewChoice(label, "", items)
}

func (s *Screen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.loadSegments(), textarea.Blink}
	if s.needTags {
		cmds = append(cmds, s.loadTags())
	}
	return tea.Batch(cmds...)
}

func (s *Screen) Title() string {
	if s.draft.ID == "" {
		return "New Question"
	}
	return "Edit Question"
}

// CapturesInput is always true: every field takes keys.
func (s *Screen) CapturesInput() bool { return true }

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+S", Description: "Save"},
	}
	if s.currentKind() == question.KindPassage {
		hints = append(hints,
			layout.KeyHint{Key: "Ctrl+N", Description: "Add part"},
			layout.KeyHint{Key: "Ctrl+X", Description: "Remove part"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Cancel"})
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case segmentsMsg:
		if msg.err != nil {
			return s, screen.Fail(msg.err)
		}
		items := make([]components.ChoiceItem, len(msg.segments))
		for i, seg := range msg.segments {
			items[i] = components.ChoiceItem{Value: seg.ID, Label: seg.Name}
		}
		s.segment.SetItems(noneLabel, items)
		if !s.segment.Select(s.class.SegmentID) {
			s.class = taxonomy.Classification{}
		}
		return s, s.loadGroups(s.class.SegmentID)

	case groupsMsg:
		if msg.err != nil {
			return s, screen.Fail(msg.err)
		}
		if msg.segmentID != s.segment.Value() {
			return s, nil
		}
		items := make([]components.ChoiceItem, len(msg.groups))
		for i, g := range msg.groups {
			items[i] = components.ChoiceItem{Value: g.ID, Label: g.Name}
		}
		s.group.SetItems(noneLabel, items)
		if !s.group.Select(s.class.GroupID) {
			s.class.GroupID, s.class.SubjectID = "", ""
		}
		return s, s.loadSubjects(s.class.GroupID)

	case subjectsMsg:
		if msg.err != nil {
			return s, screen.Fail(msg.err)
		}
		if msg.groupID != s.group.Value() {
			return s, nil
		}
		items := make([]components.ChoiceItem, len(msg.subjects))
		for i, sub := range msg.subjects {
			items[i] = components.ChoiceItem{Value: sub.ID, Label: sub.Name}
		}
		s.subject.SetItems(noneLabel, items)
		if !s.subject.Select(s.class.SubjectID) {
			s.class.SubjectID = ""
		}
		return s, nil

	case tagsMsg:
		if msg.err == nil {
			s.needTags = false
			s.tags.SetIndex(msg.index)
		}
		return s, nil

	case savedMsg:
		s.saving = false
		if msg.err != nil {
			var ve *bank.ValidationError
			if errors.As(msg.err, &ve) {
				s.errs = ve.Fields
				return s, nil
			}
			return s, screen.Fail(msg.err)
		}
		s.errs = nil
		text := "Question saved"
		if s.draft.ID == "" {
			text = "Question created"
		}
		return s, tea.Sequence(
			router.Pop(),
			func() tea.Msg { return screen.BankChangedMsg{} },
			screen.Notify(text),
		)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.focus == fieldBody {
		var cmd tea.Cmd
		s.body, cmd = s.body.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, router.Pop()
	case "ctrl+s":
		if s.saving {
			return s, nil
		}
		s.saving = true
		return s, s.save(s.Draft())
	case "tab", "down":
		if msg.String() == "down" && s.focus == fieldBody {
			break
		}
		if msg.String() == "tab" && s.focus == fieldTags && len(s.tags.Suggestions()) > 0 {
			break
		}
		return s, s.setFocus((s.focus + 1) % s.fieldCount())
	case "shift+tab", "up":
		if msg.String() == "up" && s.focus == fieldBody {
			break
		}
		return s, s.setFocus((s.focus + s.fieldCount() - 1) % s.fieldCount())
	case "ctrl+n":
		if s.currentKind() != question.KindPassage {
			return s, nil
		}
		s.parts = append(s.parts, newPart(question.Child{Kind: question.KindDescriptive}))
		return s, s.setFocus(topFields + (len(s.parts)-1)*childFields + childBody)
	case "ctrl+x":
		if i := s.focusedPart(); i >= 0 {
			s.parts = append(s.parts[:i], s.parts[i+1:]...)
			return s, s.setFocus(min(s.focus, s.fieldCount()-1))
		}
		return s, nil
	}
	return s.updateField(msg)
}

func (s *Screen) updateField(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch s.focus {
	case fieldKind:
		s.kind, _ = s.kind.Update(msg)
	case fieldBody:
		s.body, cmd = s.body.Update(msg)
	case fieldMarks:
		s.marks, cmd = s.marks.Update(msg)
	case fieldOptions:
		s.options, cmd = s.options.Update(msg)
	case fieldExplanation:
		s.explanation, cmd = s.explanation.Update(msg)
	case fieldTags:
		s.tags, cmd = s.tags.Update(msg)
	case fieldSegment:
		var changed bool
		if s.segment, changed = s.segment.Update(msg); changed {
			s.class = taxonomy.Classification{SegmentID: s.segment.Value()}
			s.group.SetItems(noneLabel, nil)
			s.subject.SetItems(noneLabel, nil)
			cmd = s.loadGroups(s.segment.Value())
		}
	case fieldGroup:
		var changed bool
		if s.group, changed = s.group.Update(msg); changed {
			s.class.GroupID = s.group.Value()
			s.class.SubjectID = ""
			s.subject.SetItems(noneLabel, nil)
			cmd = s.loadSubjects(s.group.Value())
		}
	case fieldSubject:
		s.subject, _ = s.subject.Update(msg)
		s.class.SubjectID = s.subject.Value()
	default:
		i, f := s.partField()
		p := &s.parts[i]
		switch f {
		case childKind:
			p.kind, _ = p.kind.Update(msg)
		case childBody:
			p.body, cmd = p.body.Update(msg)
		case childMarks:
			p.marks, cmd = p.marks.Update(msg)
		case childOptions:
			p.options, cmd = p.options.Update(msg)
		}
	}
	return s, cmd
}

// Draft builds the question the form currently describes. Fields that do
// not apply to the selected type are dropped.
func (s *Screen) Draft() question.Question {
	q := s.draft.Clone()
	q.Kind = s.currentKind()
	q.Body = strings.TrimSpace(s.body.Value())
	q.Marks = atoi(s.marks.Value())
	q.Explanation = strings.TrimSpace(s.explanation.Value())
	q.Tags = s.tags.Values()
	q.Classification = s.class
	q.Options = nil
	q.Children = nil

	switch q.Kind {
	case question.KindMCQ:
		q.Options = question.ParseOptionList(s.options.Value())
	case question.KindPassage:
		q.Marks = 0
		for _, p := range s.parts {
			c := question.Child{
				Kind:  question.Kind(p.kind.Value()),
				Body:  strings.TrimSpace(p.body.Value()),
				Marks: atoi(p.marks.Value()),
			}
			if c.Kind == question.KindMCQ {
				c.Options = question.ParseOptionList(p.options.Value())
			}
			q.Children = append(q.Children, c)
		}
	}
	return q
}

// Errors returns the field errors of the last rejected save.
func (s *Screen) Errors() []bank.FieldError {
	return s.errs
}

func (s *Screen) currentKind() question.Kind {
	return question.Kind(s.kind.Value())
}

func (s *Screen) fieldCount() int {
	if s.currentKind() != question.KindPassage {
		return topFields
	}
	return topFields + len(s.parts)*childFields
}

// partField splits a child focus index into part and field.
func (s *Screen) partField() (int, int) {
	n := s.focus - topFields
	return n / childFields, n % childFields
}

func (s *Screen) focusedPart() int {
	if s.focus < topFields {
		return -1
	}
	i, _ := s.partField()
	return i
}

func (s *Screen) setFocus(f int) tea.Cmd {
	s.focus = f
	s.kind.Blur()
	s.body.Blur()
	s.marks.Blur()
	s.options.Blur()
	s.explanation.Blur()
	s.tags.Blur()
	s.segment.Blur()
	s.group.Blur()
	s.subject.Blur()
	for i := range s.parts {
		s.parts[i].kind.Blur()
		s.parts[i].body.Blur()
		s.parts[i].marks.Blur()
		s.parts[i].options.Blur()
	}

	switch f {
	case fieldKind:
		s.kind.Focus()
	case fieldBody:
		return s.body.Focus()
	case fieldMarks:
		return s.marks.Focus()
	case fieldOptions:
		return s.options.Focus()
	case fieldExplanation:
		return s.explanation.Focus()
	case fieldTags:
		return s.tags.Focus()
	case fieldSegment:
		s.segment.Focus()
	case fieldGroup:
		s.group.Focus()
	case fieldSubject:
		s.subject.Focus()
	default:
		i, pf := s.partField()
		p := &s.parts[i]
		switch pf {
		case childKind:
			p.kind.Focus()
		case childBody:
			return p.body.Focus()
		case childMarks:
			return p.marks.Focus()
		case childOptions:
			return p.options.Focus()
		}
	}
	return nil
}

func atoi(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

func partTitle(i int, p part) string {
	return fmt.Sprintf("Part %d · %s", i+1, p.kind.Items[p.kind.Selected].Label)
}
