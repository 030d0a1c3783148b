package services

import (
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// MaxHighlights caps the ranges reported for one text.
const MaxHighlights = 20

// highlightNeedles returns the strings searched for in displayed text: the
// query with whitespace removed plus every query token, sorted and unique.
func highlightNeedles(query string, tokens []string) []string {
	seen := make(map[string]struct{})
	var needles []string
	add := func(s string) {
		if strings.TrimSpace(s) == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		needles = append(needles, s)
	}
	add(strings.Join(strings.Fields(query), ""))
	for _, t := range tokens {
		add(t)
	}
	sort.Strings(needles)
	return needles
}

// highlight finds every non-overlapping occurrence of each needle in text
// and returns the merged UTF-16 ranges, at most MaxHighlights of them.
func highlight(text string, needles []string) []domain.Range {
	if text == "" || len(needles) == 0 {
		return []domain.Range{}
	}
	offsets := utf16Offsets(text)

	var ranges []domain.Range
	for _, n := range needles {
		for from := 0; from < len(text); {
			i := strings.Index(text[from:], n)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(n)
			if offsets[start] < offsets[end] {
				ranges = append(ranges, domain.Range{Start: offsets[start], End: offsets[end]})
			}
			from = end
		}
	}
	return mergeRanges(ranges, MaxHighlights)
}

// utf16Offsets maps every byte offset of text (and len(text)) to the UTF-16
// offset of the rune starting at or containing it.
func utf16Offsets(text string) []int {
	offsets := make([]int, len(text)+1)
	units := 0
	for i := 0; i < len(text); {
		r, width := utf8.DecodeRuneInString(text[i:])
		for j := 0; j < width; j++ {
			offsets[i+j] = units
		}
		units += utf16.RuneLen(r)
		i += width
	}
	offsets[len(text)] = units
	return offsets
}

// mergeRanges sorts ranges, merges those that overlap or touch and keeps
// the first limit.
func mergeRanges(ranges []domain.Range, limit int) []domain.Range {
	if len(ranges) == 0 {
		return []domain.Range{}
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].Start != ranges[j].Start {
			return ranges[i].Start < ranges[j].Start
		}
		return ranges[i].End < ranges[j].End
	})

	merged := make([]domain.Range, 0, len(ranges))
	cur := ranges[0]
	for _, r := range ranges[1:] {
		if r.Start <= cur.End {
			if r.End > cur.End {
				cur.End = r.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = r
	}
	merged = append(merged, cur)

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// occurrences counts the non-overlapping occurrences of each token in text.
func occurrences(text string, tokens []string) int {
	n := 0
	for _, t := range tokens {
		if t == "" {
			continue
		}
		n += strings.Count(text, t)
	}
	return n
}
