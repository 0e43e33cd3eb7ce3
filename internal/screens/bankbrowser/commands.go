package bankbrowser

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/qbank/internal/browser"
	"github.com/abhisek/qbank/internal/screen"
)

// run executes q off the update loop. A nil query needs no work.
func (s *Screen) run(q *browser.Query) tea.Cmd {
	if q == nil {
		return nil
	}
	svc := s.deps.Bank
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		res, err := svc.Find(ctx, q.Filter, q.Page)
		return resultMsg{seq: q.Seq, res: res, err: err}
	}
}

func (s *Screen) settleAfter(token uint64) tea.Cmd {
	return tea.Tick(s.b.Debounce(), func(time.Time) tea.Msg {
		return searchSettledMsg{token: token}
	})
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

func (s *Screen) deleteQuestion(id string) tea.Cmd {
	svc := s.deps.Bank
	return func() tea.Msg {
		ctx, cancel := screen.Ctx()
		defer cancel()
		return deletedMsg{id: id, err: svc.Delete(ctx, id)}
	}
}
