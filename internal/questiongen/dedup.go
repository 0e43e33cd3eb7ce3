package questiongen

import (
	"fmt"
	"strings"
	"unicode"
)

// buildDedup formats existing questions for the prompt, keeping the last
// max entries. Returns "None" if there are none.
func buildDedup(existing []string, max int) string {
	if len(existing) == 0 {
		return "None"
	}
	if max > 0 && len(existing) > max {
		existing = existing[len(existing)-max:]
	}

	var b strings.Builder
	for i, q := range existing {
		fmt.Fprintf(&b, "%d. %s\n", i+1, oneLine(q))
	}
	return strings.TrimRight(b.String(), "\n")
}

// fingerprint reduces a body to lower-case letters and digits, so that
// drafts differing only in spacing, case or punctuation compare equal.
func fingerprint(body string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(body) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
