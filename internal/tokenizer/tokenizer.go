// Package tokenizer turns text into the token set used both to build the
// full-text index and to query it: segmenter words plus every character
// bigram and trigram. Indexing and querying must go through the same
// Tokenizer so that a query token always has a chance to match.
package tokenizer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
)

// Tokenizer is safe for concurrent use if its Segmenter is.
type Tokenizer struct {
	seg driven.Segmenter
}

// New creates a tokenizer. A nil segmenter means n-grams only.
func New(seg driven.Segmenter) *Tokenizer {
	return &Tokenizer{seg: seg}
}

// Tokens returns the ordered, de-duplicated token set of text: segmenter
// words, then bigrams, then trigrams. Blank input yields nil.
func (t *Tokenizer) Tokens(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(tok string) {
		if strings.TrimSpace(tok) == "" {
			return
		}
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}

	if t.seg != nil {
		for _, w := range t.seg.Cut(text) {
			add(strings.TrimSpace(w))
		}
	}
	for _, g := range CharNgrams(text, 2) {
		add(g)
	}
	for _, g := range CharNgrams(text, 3) {
		add(g)
	}
	return out
}

// SearchText is the index form of text: its tokens joined by single spaces.
func (t *Tokenizer) SearchText(text string) string {
	return strings.Join(t.Tokens(text), " ")
}

// QueryTokens returns the sorted tokens of a query.
func (t *Tokenizer) QueryTokens(query string) []string {
	toks := t.Tokens(query)
	sort.Strings(toks)
	return toks
}

// MatchExpression builds the full-text expression for a query: every token
// that carries a letter or digit, double-quoted, joined with OR. Returns ""
// when nothing is searchable.
func (t *Tokenizer) MatchExpression(query string) string {
	var parts []string
	for _, tok := range t.QueryTokens(query) {
		if !hasWordRune(tok) {
			continue
		}
		parts = append(parts, Quote(tok))
	}
	return strings.Join(parts, " OR ")
}

// Quote wraps a token in double quotes, doubling embedded quotes.
func Quote(tok string) string {
	return `"` + strings.ReplaceAll(tok, `"`, `""`) + `"`
}

// CharNgrams returns every window of n consecutive characters. Text shorter
// than n yields nil.
func CharNgrams(text string, n int) []string {
	runes := []rune(text)
	if n <= 0 || len(runes) < n {
		return nil
	}
	out := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		out = append(out, string(runes[i:i+n]))
	}
	return out
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
