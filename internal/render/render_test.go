package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/question"
)

func samplePaper() composer.Paper {
	mcq := question.Question{
		ID:   "q1",
		Kind: question.KindMCQ,
		Body: "Capital of France?",
		Options: question.Options{
			{Text: "Paris", IsCorrect: true},
			{Text: "Lyon"},
			{Text: "Nice"},
		},
	}
	passage := question.Question{
		ID:   "q2",
		Kind: question.KindPassage,
		Body: "Read the passage about light.",
		Children: []question.Child{
			{Kind: question.KindDescriptive, Body: "Define refraction.", Marks: 2},
			{Kind: question.KindMCQ, Body: "Speed of light?", Marks: 1, Options: question.Options{{Text: "3e8 m/s"}, {Text: "3e6 m/s"}}},
		},
	}
	return composer.Paper{
		ID: "p1",
		Meta: composer.Meta{
			Title:          "Physics Mid-Term",
			InstituteLabel: "Springfield High",
			Duration:       "3 hours",
			Instructions:   "Answer all questions.",
		},
		Entries:    []composer.Entry{{Question: mcq, Marks: 2}, {Question: passage, Marks: 3}},
		TotalMarks: 5,
	}
}

func pagesOf(out string) []string {
	return strings.Split(out, FormFeed)
}

func lineWith(t *testing.T, out, substr string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	t.Fatalf("no line contains %q", substr)
	return ""
}

func TestRender_Header(t *testing.T) {
	out := Render(samplePaper(), Layout{})

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Springfield High", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[0], "   "), "label is centred")
	assert.Equal(t, "Physics Mid-Term", strings.TrimSpace(lines[1]))
	assert.Equal(t, strings.Repeat("=", DefaultWidth), lines[2])

	meta := lines[3]
	assert.True(t, strings.HasPrefix(meta, "Duration: 3 hours"))
	assert.True(t, strings.HasSuffix(meta, "Total Marks: 5"))
	assert.Equal(t, DefaultWidth, len(meta))
	assert.Equal(t, strings.Repeat("=", DefaultWidth), lines[4])

	assert.Contains(t, out, "Instructions:")
	assert.Contains(t, out, "  Answer all questions.")
}

func TestRender_NoInstructionsBlockWhenEmpty(t *testing.T) {
	p := samplePaper()
	p.Meta.Instructions = "   "
	assert.NotContains(t, Render(p, Layout{}), "Instructions:")
}

func TestRender_QuestionsNumberedWithMarks(t *testing.T) {
	out := Render(samplePaper(), Layout{})

	first := lineWith(t, out, "Capital of France?")
	assert.True(t, strings.HasPrefix(first, "1. Capital of France?"))
	assert.True(t, strings.HasSuffix(first, "[2]"))
	assert.Equal(t, DefaultWidth, len(first))

	second := lineWith(t, out, "Read the passage")
	assert.True(t, strings.HasPrefix(second, "2. "))
	assert.True(t, strings.HasSuffix(second, "[3]"))
}

func TestRender_PassageChildren(t *testing.T) {
	out := Render(samplePaper(), Layout{})

	i := lineWith(t, out, "Define refraction.")
	assert.Contains(t, i, "(i)")
	assert.True(t, strings.HasSuffix(i, "[2]"))

	ii := lineWith(t, out, "Speed of light?")
	assert.Contains(t, ii, "(ii)")
	assert.True(t, strings.HasSuffix(ii, "[1]"))
	assert.Contains(t, out, "(a) 3e8 m/s")
}

func TestRender_OptionGridIsRowMajor(t *testing.T) {
	out := Render(samplePaper(), Layout{})

	row := lineWith(t, out, "(a) Paris")
	assert.Contains(t, row, "(b) Lyon")
	assert.Greater(t, strings.Index(row, "(b)"), strings.Index(row, "(a)"))

	next := lineWith(t, out, "(c) Nice")
	assert.NotContains(t, next, "(a)")
	assert.Equal(t, strings.Index(row, "(a)"), strings.Index(next, "(c)"), "columns line up")
}

func TestRender_PlainText(t *testing.T) {
	out := Render(samplePaper(), Layout{})
	assert.NotContains(t, out, "\x1b")
	assert.Equal(t, ansi.Strip(out), out)
}

func TestRender_FooterAndSinglePage(t *testing.T) {
	out := Render(samplePaper(), Layout{})
	pages := pagesOf(out)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], EndOfPaper)

	lines := strings.Split(strings.TrimSuffix(pages[0], "\n"), "\n")
	assert.Len(t, lines, DefaultPageHeight)
	assert.Equal(t, "Page 1 of 1", strings.TrimSpace(lines[len(lines)-1]))
}

func TestRender_Pagination(t *testing.T) {
	p := samplePaper()
	p.Entries = nil
	for i := range 30 {
		p.Entries = append(p.Entries, composer.Entry{
			Question: question.Question{Kind: question.KindDescriptive, Body: fmt.Sprintf("Question number %d.", i+1)},
			Marks:    1,
		})
	}
	p.TotalMarks = 30

	out := Render(p, Layout{Width: 60, PageHeight: 20})
	pages := pagesOf(out)
	require.Greater(t, len(pages), 1)

	for i, page := range pages {
		lines := strings.Split(strings.TrimSuffix(page, "\n"), "\n")
		assert.Len(t, lines, 20, "page %d", i+1)
		assert.Equal(t, fmt.Sprintf("Page %d of %d", i+1, len(pages)), strings.TrimSpace(lines[len(lines)-1]))
		assert.NotEqual(t, "", lines[0], "page %d starts with content", i+1)
		for _, line := range lines {
			assert.LessOrEqual(t, ansi.StringWidth(line), 60)
		}
	}
	assert.Contains(t, pages[len(pages)-1], EndOfPaper)
	assert.Contains(t, out, "30. Question number 30.")
}

func TestRender_WrapsLongBodies(t *testing.T) {
	p := samplePaper()
	p.Entries[0].Question.Body = strings.Repeat("refraction ", 20) + strings.Repeat("x", 120)

	out := Render(p, Layout{Width: 50})
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 50, "line %q", line)
	}
	assert.True(t, strings.HasSuffix(lineWith(t, out, "1. refraction"), "[2]"))
}

func TestRender_DeterministicAndPure(t *testing.T) {
	p := samplePaper()
	before := p.Entries[0].Question.Clone()

	a := Render(p, Layout{})
	b := Render(p, Layout{})
	assert.Equal(t, a, b)
	assert.Equal(t, before, p.Entries[0].Question)
}

func TestRoman(t *testing.T) {
	for n, want := range map[int]string{1: "i", 2: "ii", 4: "iv", 9: "ix", 14: "xiv", 40: "xl"} {
		assert.Equal(t, want, roman(n))
	}
}
