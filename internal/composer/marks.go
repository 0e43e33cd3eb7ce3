package composer

import (
	"math"
	"strconv"
	"strings"
)

// ParseMarks coerces free-form input to a non-negative whole mark.
// Decimals are truncated; empty, non-numeric and negative input yield 0.
func ParseMarks(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > float64(maxMarks) {
		return 0
	}
	return int(f)
}

// maxMarks bounds float input so the conversion cannot overflow.
const maxMarks = 1 << 31
