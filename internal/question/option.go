package question

import "strings"

// Option is one answer choice of an MCQ.
type Option struct {
	Text      string `json:"text" validate:"notblank"`
	IsCorrect bool   `json:"isCorrect"`
}

// Options is an ordered list of choices with single-answer semantics.
type Options []Option

// MarkCorrect makes option i the only correct one. Out-of-range indexes
// leave the list unchanged and return false.
func (o Options) MarkCorrect(i int) bool {
	if i < 0 || i >= len(o) {
		return false
	}
	for j := range o {
		o[j].IsCorrect = j == i
	}
	return true
}

// ClearCorrect unmarks every option.
func (o Options) ClearCorrect() {
	for j := range o {
		o[j].IsCorrect = false
	}
}

// CorrectIndex returns the index of the correct option, or -1.
func (o Options) CorrectIndex() int {
	for i, opt := range o {
		if opt.IsCorrect {
			return i
		}
	}
	return -1
}

// CorrectCount returns how many options are flagged correct.
func (o Options) CorrectCount() int {
	n := 0
	for _, opt := range o {
		if opt.IsCorrect {
			n++
		}
	}
	return n
}

// Clone returns a copy that shares no backing array with o.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	copy(out, o)
	return out
}

// Letter returns the option label for index i: a, b, ..., z, aa, ab, ...
func Letter(i int) string {
	if i < 0 {
		return ""
	}
	s := ""
	for {
		s = string(rune('a'+i%26)) + s
		i = i/26 - 1
		if i < 0 {
			return s
		}
	}
}

// ParseOption reads the short option form used by the CLI and the
// editor: the text, with a trailing "*" when the option is correct.
func ParseOption(raw string) Option {
	raw = strings.TrimSpace(raw)
	if t, ok := strings.CutSuffix(raw, "*"); ok {
		return Option{Text: strings.TrimSpace(t), IsCorrect: true}
	}
	return Option{Text: raw}
}

// ParseOptionList splits "Paris*; Lyon; Nice" into options. Empty
// segments are dropped.
func ParseOptionList(raw string) Options {
	var out Options
	for _, part := range strings.Split(raw, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, ParseOption(part))
	}
	return out
}

// FormatOptionList is the inverse of ParseOptionList.
func FormatOptionList(o Options) string {
	parts := make([]string, len(o))
	for i, opt := range o {
		parts[i] = opt.Text
		if opt.IsCorrect {
			parts[i] += "*"
		}
	}
	return strings.Join(parts, "; ")
}
