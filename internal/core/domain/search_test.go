package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindRank(t *testing.T) {
	assert.Less(t, KindRank(HitBlock), KindRank(HitField))
	assert.Less(t, KindRank(HitField), KindRank(HitAnnotation))
	assert.Less(t, KindRank(HitAnnotation), KindRank(HitAttachment))
}

func TestHit_Variants(t *testing.T) {
	hits := []Hit{
		&BlockHit{ArchiveID: "a", BlockText: "b"},
		&FieldHit{ArchiveID: "a", SourceText: "f"},
		&AnnotationHit{ArchiveID: "a", Content: "n"},
		&AttachmentHit{ArchiveID: "a", DisplayName: "x.pdf"},
	}
	kinds := []HitKind{HitBlock, HitField, HitAnnotation, HitAttachment}
	texts := []string{"b", "f", "n", "x.pdf"}
	for i, h := range hits {
		assert.Equal(t, kinds[i], h.Kind())
		assert.Equal(t, "a", h.Archive())
		assert.Equal(t, texts[i], h.Text())
	}
}

func TestSpanTotal(t *testing.T) {
	assert.Equal(t, 0, SpanTotal(nil))
	assert.Equal(t, 5, SpanTotal([]Range{{0, 2}, {4, 7}}))
}

func TestSplitHighlights(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		segs := SplitHighlights("hello world", []Range{{6, 11}})
		assert.Equal(t, []Segment{{Text: "hello "}, {Text: "world", Highlight: true}}, segs)
	})

	t.Run("astral characters count as two units", func(t *testing.T) {
		segs := SplitHighlights("😀指令", []Range{{2, 4}})
		assert.Equal(t, []Segment{{Text: "😀"}, {Text: "指令", Highlight: true}}, segs)
	})

	t.Run("out of bounds clipped", func(t *testing.T) {
		segs := SplitHighlights("abc", []Range{{1, 10}})
		assert.Equal(t, []Segment{{Text: "a"}, {Text: "bc", Highlight: true}}, segs)
	})

	t.Run("no ranges", func(t *testing.T) {
		assert.Equal(t, []Segment{{Text: "abc"}}, SplitHighlights("abc", nil))
	})
}
