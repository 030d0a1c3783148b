package domain

import "unicode/utf16"

// Range is a half-open highlight span in UTF-16 code units.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span length.
func (r Range) Len() int {
	return r.End - r.Start
}

// TypeFilter values that are not attachment file types.
const (
	TypeMainDoc    = "main_doc"
	TypeAnnotation = "annotation"
)

// SearchFilters restricts which archives and entities may match.
type SearchFilters struct {
	// DateFrom and DateTo bound the archive date inclusively (unix seconds).
	DateFrom *int64
	DateTo   *int64

	// Types is the allow-set: "main_doc" keeps block and field hits,
	// "annotation" keeps annotations, any other value is an attachment
	// file type. Empty means everything.
	Types []string
}

// SearchRequest is one search query.
type SearchRequest struct {
	Query   string
	Filters SearchFilters
	Limit   int
	Offset  int
}

// SearchPage is one page of ranked hits.
type SearchPage struct {
	Items   []Hit
	HasMore bool
	Offset  int
	Limit   int
}

// HitKind discriminates the Hit variants.
type HitKind string

// Hit kinds.
const (
	HitBlock      HitKind = "docx_block"
	HitField      HitKind = "main_doc_field"
	HitAnnotation HitKind = "annotation"
	HitAttachment HitKind = "attachment_name"
)

// KindRank orders hits across kinds: blocks first, attachments last.
func KindRank(k HitKind) int {
	switch k {
	case HitBlock:
		return 0
	case HitField:
		return 1
	case HitAnnotation:
		return 2
	default:
		return 3
	}
}

// Hit is one search result. The variants are BlockHit, FieldHit,
// AnnotationHit and AttachmentHit.
type Hit interface {
	Kind() HitKind
	Archive() string
	// Text is the displayed text the highlights index into.
	Text() string
	Ranges() []Range

	hit()
}

// BlockHit is a paragraph of a main document.
type BlockHit struct {
	ArchiveID  string  `json:"archive_id"`
	BlockID    string  `json:"block_id"`
	BlockText  string  `json:"block_text"`
	Highlights []Range `json:"highlights"`
}

// FieldHit is one structured field of a main document.
type FieldHit struct {
	ArchiveID  string  `json:"archive_id"`
	FieldName  string  `json:"field_name"`
	SourceText string  `json:"source_text"`
	Highlights []Range `json:"highlights"`

	// BestBlockID is the paragraph that best supports a content match.
	BestBlockID         string  `json:"best_block_id,omitempty"`
	BestBlockHighlights []Range `json:"best_block_highlights,omitempty"`
}

// AnnotationHit is a user annotation.
type AnnotationHit struct {
	ArchiveID    string  `json:"archive_id"`
	AnnotationID string  `json:"annotation_id"`
	TargetKind   string  `json:"target_kind"`
	TargetRef    string  `json:"target_ref"`
	Locator      string  `json:"locator"`
	Content      string  `json:"content"`
	Highlights   []Range `json:"highlights"`
}

// AttachmentHit is an attachment's display name.
type AttachmentHit struct {
	ArchiveID   string  `json:"archive_id"`
	FileID      string  `json:"file_id"`
	DisplayName string  `json:"display_name"`
	Highlights  []Range `json:"highlights"`
}

func (*BlockHit) hit()      {}
func (*FieldHit) hit()      {}
func (*AnnotationHit) hit() {}
func (*AttachmentHit) hit() {}

// Kind implements Hit.
func (*BlockHit) Kind() HitKind { return HitBlock }

// Kind implements Hit.
func (*FieldHit) Kind() HitKind { return HitField }

// Kind implements Hit.
func (*AnnotationHit) Kind() HitKind { return HitAnnotation }

// Kind implements Hit.
func (*AttachmentHit) Kind() HitKind { return HitAttachment }

// Archive implements Hit.
func (h *BlockHit) Archive() string { return h.ArchiveID }

// Archive implements Hit.
func (h *FieldHit) Archive() string { return h.ArchiveID }

// Archive implements Hit.
func (h *AnnotationHit) Archive() string { return h.ArchiveID }

// Archive implements Hit.
func (h *AttachmentHit) Archive() string { return h.ArchiveID }

// Text implements Hit.
func (h *BlockHit) Text() string { return h.BlockText }

// Text implements Hit.
func (h *FieldHit) Text() string { return h.SourceText }

// Text implements Hit.
func (h *AnnotationHit) Text() string { return h.Content }

// Text implements Hit.
func (h *AttachmentHit) Text() string { return h.DisplayName }

// Ranges implements Hit.
func (h *BlockHit) Ranges() []Range { return h.Highlights }

// Ranges implements Hit.
func (h *FieldHit) Ranges() []Range { return h.Highlights }

// Ranges implements Hit.
func (h *AnnotationHit) Ranges() []Range { return h.Highlights }

// Ranges implements Hit.
func (h *AttachmentHit) Ranges() []Range { return h.Highlights }

// SpanTotal sums the highlighted lengths.
func SpanTotal(ranges []Range) int {
	total := 0
	for _, r := range ranges {
		total += r.Len()
	}
	return total
}

// Segment is a run of text that is either highlighted or not.
type Segment struct {
	Text      string
	Highlight bool
}

// SplitHighlights cuts text into segments along UTF-16 ranges. Ranges must be
// sorted and non-overlapping; out-of-bounds ranges are clipped.
func SplitHighlights(text string, ranges []Range) []Segment {
	units := utf16.Encode([]rune(text))
	var segments []Segment
	pos := 0
	for _, r := range ranges {
		start, end := clamp(r.Start, pos, len(units)), clamp(r.End, 0, len(units))
		if end <= start {
			continue
		}
		if start > pos {
			segments = append(segments, Segment{Text: string(utf16.Decode(units[pos:start]))})
		}
		segments = append(segments, Segment{Text: string(utf16.Decode(units[start:end])), Highlight: true})
		pos = end
	}
	if pos < len(units) {
		segments = append(segments, Segment{Text: string(utf16.Decode(units[pos:]))})
	}
	return segments
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
