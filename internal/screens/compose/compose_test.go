package compose

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/router"
	"github.com/abhisek/qbank/internal/screen"
	"github.com/abhisek/qbank/internal/screen/screentest"
	"github.com/abhisek/qbank/internal/screens/preview"
)

var enter = screentest.Special(tea.KeyEnter)

func newScreen(t *testing.T) (*Screen, screen.Deps) {
	t.Helper()
	deps := screentest.Deps(t)
	deps.Paper.Add(question.Question{ID: "q1", Kind: question.KindMCQ, Body: "Capital of France?", Marks: 2,
		Options: question.Options{{Text: "Paris", IsCorrect: true}, {Text: "Lyon"}}})
	deps.Paper.Add(question.Question{ID: "q2", Kind: question.KindDescriptive, Body: "Explain refraction.", Marks: 5})
	return New(deps), deps
}

func press(s *Screen, keys ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = s.Update(k)
	}
	return cmd
}

func typeText(s *Screen, text string) {
	for _, r := range text {
		s.Update(screentest.Key(r))
	}
}

func order(p *composer.Composer) []string {
	var out []string
	for _, e := range p.Entries() {
		out = append(out, e.Question.ID)
	}
	return out
}

func TestCompose_AdjustMarks(t *testing.T) {
	s, deps := newScreen(t)

	press(s, screentest.Key('+'), screentest.Key('+'))
	assert.Equal(t, 9, deps.Paper.TotalMarks())

	press(s, screentest.Key('-'), screentest.Key('-'), screentest.Key('-'), screentest.Key('-'), screentest.Key('-'))
	m, _ := deps.Paper.Marks("q1")
	assert.Zero(t, m, "marks never go negative")
	assert.Contains(t, s.View(100, 20), "total 5 marks")
}

func TestCompose_EditMarksInput(t *testing.T) {
	s, deps := newScreen(t)

	press(s, screentest.Key('j'), screentest.Key('e'))
	assert.True(t, s.CapturesInput())
	press(s, screentest.Special(tea.KeyBackspace))
	typeText(s, "7.9")
	press(s, enter)

	assert.False(t, s.CapturesInput())
	m, _ := deps.Paper.Marks("q2")
	assert.Equal(t, 7, m, "decimals are truncated")
}

func TestCompose_EditMarksCancel(t *testing.T) {
	s, deps := newScreen(t)
	press(s, screentest.Key('e'))
	typeText(s, "0")
	press(s, screentest.Special(tea.KeyEscape))

	m, _ := deps.Paper.Marks("q1")
	assert.Equal(t, 2, m)
	assert.False(t, s.CapturesInput())
}

func TestCompose_MoveAndRemove(t *testing.T) {
	s, deps := newScreen(t)

	press(s, screentest.Key('J'))
	assert.Equal(t, []string{"q2", "q1"}, order(deps.Paper))
	assert.Equal(t, 1, s.cursor, "cursor follows the moved entry")

	press(s, screentest.Key('J'))
	assert.Equal(t, []string{"q2", "q1"}, order(deps.Paper), "clamped at the end")

	press(s, screentest.Key('K'))
	assert.Equal(t, []string{"q1", "q2"}, order(deps.Paper))

	press(s, screentest.Key('x'))
	assert.Equal(t, []string{"q2"}, order(deps.Paper))
	assert.Equal(t, 5, deps.Paper.TotalMarks())
}

func TestCompose_MetaForm(t *testing.T) {
	s, deps := newScreen(t)

	press(s, screentest.Key('m'))
	assert.True(t, s.CapturesInput())
	typeText(s, "Unit Test 1")
	press(s, screentest.Special(tea.KeyTab))
	typeText(s, "Springfield High")
	press(s, enter)

	meta := deps.Paper.Meta()
	assert.Equal(t, "Unit Test 1", meta.Title)
	assert.Equal(t, "Springfield High", meta.InstituteLabel)
	assert.Contains(t, s.View(100, 20), "Springfield High")
}

func TestCompose_SaveWithoutTitle(t *testing.T) {
	s, deps := newScreen(t)
	assert.Contains(t, s.View(100, 20), composer.DefaultTitle)

	msgs := screentest.Drain(press(s, screentest.Key('s')))
	require.Len(t, msgs, 1)
	_, cmd := s.Update(msgs[0])

	_, ok := screentest.Find[screen.NoticeMsg](screentest.Drain(cmd))
	require.True(t, ok)
	list, err := deps.Papers.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, composer.DefaultTitle, list[0].Title)
	assert.Empty(t, deps.Paper.Meta().Title)
}

func TestCompose_Save(t *testing.T) {
	s, deps := newScreen(t)
	deps.Paper.SetMeta(composer.Meta{Title: "Midterm"})

	msgs := screentest.Drain(press(s, screentest.Key('s')))
	require.Len(t, msgs, 1)
	_, cmd := s.Update(msgs[0])

	notice, ok := screentest.Find[screen.NoticeMsg](screentest.Drain(cmd))
	require.True(t, ok)
	assert.Contains(t, notice.Text, "7 marks")

	list, err := deps.Papers.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Midterm", list[0].Title)
	assert.Equal(t, 2, deps.Paper.Len(), "the selection survives saving")
}

func TestCompose_Preview(t *testing.T) {
	s, deps := newScreen(t)
	deps.Paper.SetMeta(composer.Meta{Title: "Quiz"})

	push, ok := screentest.Find[router.PushScreenMsg](screentest.Drain(press(s, screentest.Key('p'))))
	require.True(t, ok)
	_, isPreview := push.Screen.(*preview.Screen)
	assert.True(t, isPreview)
}

func TestCompose_ResetNeedsConfirmation(t *testing.T) {
	s, deps := newScreen(t)

	press(s, screentest.Key('n'), screentest.Key('q'))
	assert.Equal(t, 2, deps.Paper.Len())

	press(s, screentest.Key('n'), screentest.Key('y'))
	assert.Zero(t, deps.Paper.Len())
	assert.Contains(t, s.View(100, 20), "No questions selected")
}
