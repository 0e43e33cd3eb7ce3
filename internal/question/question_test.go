package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_MarkCorrectIsExclusive(t *testing.T) {
	opts := Options{{Text: "Paris"}, {Text: "Lyon"}}

	require.True(t, opts.MarkCorrect(1))
	require.True(t, opts.MarkCorrect(0))

	assert.Equal(t, 1, opts.CorrectCount())
	assert.Equal(t, 0, opts.CorrectIndex())
	assert.True(t, opts[0].IsCorrect)
	assert.False(t, opts[1].IsCorrect)
}

func TestOptions_MarkCorrectOutOfRange(t *testing.T) {
	opts := Options{{Text: "a", IsCorrect: true}}
	assert.False(t, opts.MarkCorrect(3))
	assert.Equal(t, 0, opts.CorrectIndex())

	opts.ClearCorrect()
	assert.Equal(t, -1, opts.CorrectIndex())
}

func TestTotalMarks(t *testing.T) {
	mcq := Question{Kind: KindMCQ, Marks: 2}
	assert.Equal(t, 2, mcq.TotalMarks())

	passage := Question{
		Kind:  KindPassage,
		Marks: 5,
		Children: []Child{
			{Kind: KindMCQ, Marks: 1},
			{Kind: KindDescriptive, Marks: 4},
		},
	}
	assert.Equal(t, 5, passage.TotalMarks(), "own marks ignored, children summed")
}

func TestNormalize(t *testing.T) {
	q := Question{
		Kind:     KindPassage,
		Marks:    5,
		Options:  Options{{Text: "stray"}},
		Children: []Child{{Kind: KindDescriptive, Marks: 3, Options: Options{{Text: "x"}}}},
	}
	q.Normalize()
	assert.Zero(t, q.Marks)
	assert.Nil(t, q.Options)
	assert.Nil(t, q.Children[0].Options)

	d := Question{Kind: KindDescriptive, Options: Options{{Text: "x"}}, Children: []Child{{}}}
	d.Normalize()
	assert.Nil(t, d.Options)
	assert.Nil(t, d.Children)
}

func TestClone_IsDeep(t *testing.T) {
	q := Question{
		Kind:     KindPassage,
		Tags:     []string{"optics"},
		Children: []Child{{Kind: KindMCQ, Options: Options{{Text: "a"}}}},
	}
	c := q.Clone()
	c.Tags[0] = "changed"
	c.Children[0].Options[0].Text = "changed"
	c.Children[0].Marks = 9

	assert.Equal(t, "optics", q.Tags[0])
	assert.Equal(t, "a", q.Children[0].Options[0].Text)
	assert.Zero(t, q.Children[0].Marks)
}

func TestLetter(t *testing.T) {
	assert.Equal(t, "a", Letter(0))
	assert.Equal(t, "d", Letter(3))
	assert.Equal(t, "z", Letter(25))
	assert.Equal(t, "aa", Letter(26))
	assert.Equal(t, "", Letter(-1))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("passage")
	require.NoError(t, err)
	assert.Equal(t, KindPassage, k)

	_, err = ParseKind("essay")
	assert.Error(t, err)
}

func TestParseOptionList(t *testing.T) {
	opts := ParseOptionList(" Paris* ;Lyon;; Nice ;")
	assert.Equal(t, Options{
		{Text: "Paris", IsCorrect: true},
		{Text: "Lyon"},
		{Text: "Nice"},
	}, opts)
	assert.Equal(t, "Paris*; Lyon; Nice", FormatOptionList(opts))

	assert.Empty(t, ParseOptionList("  ;  "))
	assert.Equal(t, Option{Text: "5 * 3", IsCorrect: true}, ParseOption("5 * 3 *"))
}
