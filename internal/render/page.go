package render

import (
	"fmt"
	"strings"
)

// FormFeed separates pages.
const FormFeed = "\f"

// paginate fills fixed-height pages with blocks. A block that fits on a
// page is never split; a longer one is broken at the page boundary. Blank
// lines are dropped at the top of a page.
func paginate(blocks [][]string, l Layout) string {
	bodyH := l.PageHeight - 2
	pages := [][]string{nil}

	for _, block := range blocks {
		cur := len(pages) - 1
		if len(pages[cur]) > 0 && len(pages[cur])+len(block) > bodyH && len(trimLeading(block)) <= bodyH {
			pages = append(pages, nil)
			cur++
		}
		for _, line := range block {
			if len(pages[cur]) == bodyH {
				pages = append(pages, nil)
				cur++
			}
			if len(pages[cur]) == 0 && line == "" {
				continue
			}
			pages[cur] = append(pages[cur], line)
		}
	}

	r := renderer{width: l.Width}
	out := make([]string, len(pages))
	for i, lines := range pages {
		var b strings.Builder
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat("\n", bodyH-len(lines)+1))
		b.WriteString(r.center(fmt.Sprintf("Page %d of %d", i+1, len(pages))))
		b.WriteByte('\n')
		out[i] = b.String()
	}
	return strings.Join(out, FormFeed)
}

func trimLeading(block []string) []string {
	for len(block) > 0 && block[0] == "" {
		block = block[1:]
	}
	return block
}
