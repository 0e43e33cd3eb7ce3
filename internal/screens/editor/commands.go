package editor

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/tags"
	"github.com/abhisek/qbank/internal/taxonomy"
)

type segmentsMsg struct {
	segments []taxonomy.Segment
	err      error
}

type groupsMsg struct {
	segmentID string
	groups    []taxonomy.Group
	err       error
}

type subjectsMsg struct {
	groupID  string
	subjects []taxonomy.Subject
	err      error
}

type tagsMsg struct {
	index *tags.Index
	err   error
}

// savedMsg reports the outcome of Create or Update.
type savedMsg struct {
	id  string
	err error
}

func (s *Screen) save(q question.Question) tea.Cmd {
	svc := s.deps.Bank
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		if q.ID == "" {
			id, err := svc.Create(ctx, q)
			return savedMsg{id: id, err: err}
		}
		return savedMsg{id: q.ID, err: svc.Update(ctx, q.ID, q)}
	}
}

func (s *Screen) loadSegments() tea.Cmd {
	tax := s.deps.Taxonomy
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		segs, err := tax.ListSegments(ctx)
		return segmentsMsg{segments: segs, err: err}
	}
}

func (s *Screen) loadGroups(segmentID string) tea.Cmd {
	if segmentID == "" {
		return nil
	}
	tax := s.deps.Taxonomy
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		groups, err := tax.ListGroups(ctx, segmentID)
		return groupsMsg{segmentID: segmentID, groups: groups, err: err}
	}
}

func (s *Screen) loadSubjects(groupID string) tea.Cmd {
	if groupID == "" {
		return nil
	}
	tax := s.deps.Taxonomy
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		subjects, err := tax.ListSubjects(ctx, groupID)
		return subjectsMsg{groupID: groupID, subjects: subjects, err: err}
	}
}

func (s *Screen) loadTags() tea.Cmd {
	svc := s.deps.Bank
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		idx, err := svc.Tags(ctx)
		return tagsMsg{index: idx, err: err}
	}
}
