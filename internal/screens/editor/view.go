package editor

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	inner := max(width-4, 30)
	fieldWidth := max(inner-14, 16)
	s.body.SetWidth(fieldWidth)
	s.marks.SetWidth(6)
	s.options.SetWidth(fieldWidth)
	s.explanation.SetWidth(fieldWidth)
	for i := range s.parts {
		s.parts[i].body.SetWidth(fieldWidth)
		s.parts[i].marks.SetWidth(6)
		s.parts[i].options.SetWidth(fieldWidth)
	}

	var blocks []string
	focusBlock := 0
	add := func(field int, view string) {
		if field == s.focus {
			focusBlock = len(blocks)
		}
		blocks = append(blocks, view)
	}

	kind := s.currentKind()
	add(fieldKind, s.kind.View())
	add(fieldBody, s.bodyView())
	if kind != question.KindPassage {
		add(fieldMarks, s.marks.View())
	} else {
		add(fieldMarks, theme.Label.Render("Marks")+theme.Hint.Render("sum of the parts"))
	}
	if kind == question.KindMCQ {
		add(fieldOptions, s.options.View())
	} else {
		add(fieldOptions, theme.Label.Render("Options")+theme.Hint.Render("MCQ only"))
	}
	add(fieldExplanation, s.explanation.View())
	add(fieldTags, s.tags.View())
	add(fieldSegment, s.segment.View())
	add(fieldGroup, s.group.View())
	add(fieldSubject, s.subject.View())

	if kind == question.KindPassage {
		if len(s.parts) == 0 {
			blocks = append(blocks, "", theme.Hint.Render("No parts yet. Ctrl+N adds one."))
		}
		for i, p := range s.parts {
			blocks = append(blocks, "", theme.Subtitle.Render(partTitle(i, p)))
			base := topFields + i*childFields
			add(base+childKind, p.kind.View())
			add(base+childBody, p.body.View())
			add(base+childMarks, p.marks.View())
			if question.Kind(p.kind.Value()) == question.KindMCQ {
				add(base+childOptions, p.options.View())
			} else {
				add(base+childOptions, theme.Label.Render("  Options")+theme.Hint.Render("MCQ only"))
			}
		}
	}

	if len(s.errs) > 0 {
		blocks = append(blocks, "", theme.ErrorText.Render("Cannot save:"))
		for _, fe := range s.errs {
			blocks = append(blocks, theme.ErrorText.Render("  "+fe.Field+": "+fe.Error))
		}
	}
	if s.saving {
		blocks = append(blocks, "", theme.Hint.Render("Saving..."))
	}

	// Scroll so the focused field stays in view.
	var lines []string
	focusLine := 0
	for i, b := range blocks {
		if i == focusBlock {
			focusLine = len(lines)
		}
		lines = append(lines, strings.Split(b, "\n")...)
	}
	start := 0
	if len(lines) > height {
		start = min(max(focusLine-height/3, 0), len(lines)-height)
	}
	end := min(start+height, len(lines))
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines[start:end], "\n"))
}

func (s *Screen) bodyView() string {
	label := theme.Label.Render("Text")
	if s.body.Focused() {
		label = theme.FocusedLabel.Render("Text")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, s.body.View())
}
