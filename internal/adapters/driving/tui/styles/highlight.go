package styles

import (
	"strings"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// RenderHighlights renders text on one line with the UTF-16 ranges styled as
// matches. Output is cut to limit runes (0 means no limit) with an ellipsis.
func (s *Styles) RenderHighlights(text string, ranges []domain.Range, limit int) string {
	var b strings.Builder
	remaining := limit
	truncated := false

	for _, seg := range domain.SplitHighlights(text, ranges) {
		part := flatten.Replace(seg.Text)
		if limit > 0 {
			runes := []rune(part)
			if len(runes) > remaining {
				part = string(runes[:remaining])
				truncated = true
			}
			remaining -= len([]rune(part))
		}
		if part != "" {
			if seg.Highlight {
				b.WriteString(s.Highlight.Render(part))
			} else {
				b.WriteString(part)
			}
		}
		if truncated {
			b.WriteString("…")
			break
		}
	}
	return b.String()
}
