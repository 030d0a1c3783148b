package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// Label synonyms per field.
var labelVocabulary = map[string][]string{
	domain.FieldInstructionNo: {"指令编号", "编号", "文号", "发文字号", "文件编号", "指令号"},
	domain.FieldTitle:         {"指令标题", "标题", "主题", "事项", "名称"},
	domain.FieldIssuedAt:      {"下发时间", "时间", "日期", "下发日期", "签发时间", "发文日期"},
	domain.FieldContent:       {"指令内容", "内容", "正文", "主要内容"},
}

var (
	labelPattern  = regexp.MustCompile(`(` + alternation(domain.MainFields...) + `)[\s\p{Zs}]*[:：]`)
	headerPattern = regexp.MustCompile(`^[\s\p{Zs}]*(` +
		alternation(domain.FieldInstructionNo, domain.FieldTitle, domain.FieldIssuedAt) + `)[\s\p{Zs}]*[:：]`)
	canonicalField = func() map[string]string {
		m := make(map[string]string)
		for field, labels := range labelVocabulary {
			for _, l := range labels {
				m[l] = field
			}
		}
		return m
	}()
)

func alternation(fields ...string) string {
	var labels []string
	for _, f := range fields {
		labels = append(labels, labelVocabulary[f]...)
	}
	return strings.Join(labels, "|")
}

// Fields is the result of field extraction.
type Fields struct {
	InstructionNo string
	Title         string
	IssuedAt      string
	Content       string
	Provenance    domain.Provenance
}

type extractState int

const (
	seeking extractState = iota
	collecting
)

type labelHit struct {
	field      string
	start, end int
}

// extraction carries the state of one pass.
type extraction struct {
	fields  Fields
	state   extractState
	lines   []string

	// pending is the field whose label ended its block, and pendingBlock
	// the block carrying that label.
	pending      string
	pendingBlock string
}

// ExtractFields scans blocks in order for labelled fields. A label is a
// known synonym followed by a colon. Its value is the text up to the next
// label in the same block, or the next non-empty block when the label ends
// its block. Provenance always names the block carrying the label. The
// first value found for a field wins. A content label starts collecting
// every following non-empty block verbatim until a block starts with a
// number, title or date label.
func ExtractFields(blocks []domain.Block) Fields {
	ex := &extraction{}

	for _, b := range blocks {
		text := strings.TrimSpace(b.Text)

		if ex.state == collecting {
			if headerPattern.MatchString(text) {
				ex.state = seeking
			} else {
				if text == "" {
					continue
				}
				if ex.pending != "" {
					ex.resolvePending(text)
					continue
				}
				ex.fields.Provenance.Content = append(ex.fields.Provenance.Content, b.ID)
				ex.lines = append(ex.lines, b.Text)
				continue
			}
		}

		hits := findLabels(text)
		if len(hits) > 0 {
			ex.pending = ""
			for i, h := range hits {
				next := len(text)
				if i+1 < len(hits) {
					next = hits[i+1].start
				}
				ex.assign(h.field, strings.TrimSpace(text[h.end:next]), b.ID)
			}
			continue
		}

		if ex.pending != "" && text != "" {
			ex.resolvePending(text)
		}
	}

	ex.fields.Content = strings.Join(ex.lines, "\n")
	if ex.fields.Provenance.Content == nil {
		ex.fields.Provenance.Content = []string{}
	}
	return ex.fields
}

func findLabels(text string) []labelHit {
	matches := labelPattern.FindAllStringSubmatchIndex(text, -1)
	hits := make([]labelHit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, labelHit{
			field: canonicalField[text[m[2]:m[3]]],
			start: m[0],
			end:   m[1],
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].start < hits[j].start })
	return hits
}

func (ex *extraction) assign(field, value, blockID string) {
	if field == domain.FieldContent {
		if ex.fields.Provenance.ContentAnchor == nil {
			id := blockID
			ex.fields.Provenance.ContentAnchor = &id
		}
		if value != "" {
			ex.fields.Provenance.Content = append(ex.fields.Provenance.Content, blockID)
			ex.lines = append(ex.lines, value)
		}
		ex.state = collecting
		return
	}

	if ex.filled(field) {
		return
	}
	if value == "" {
		ex.pending = field
		ex.pendingBlock = blockID
		return
	}
	ex.set(field, value, blockID)
}

// resolvePending fills the pending field with value. Provenance points at
// the label's block.
func (ex *extraction) resolvePending(value string) {
	field := ex.pending
	ex.pending = ""
	if !ex.filled(field) {
		ex.set(field, value, ex.pendingBlock)
	}
}

func (ex *extraction) filled(field string) bool {
	switch field {
	case domain.FieldInstructionNo:
		return ex.fields.InstructionNo != ""
	case domain.FieldTitle:
		return ex.fields.Title != ""
	case domain.FieldIssuedAt:
		return ex.fields.IssuedAt != ""
	default:
		return true
	}
}

func (ex *extraction) set(field, value, blockID string) {
	id := blockID
	switch field {
	case domain.FieldInstructionNo:
		ex.fields.InstructionNo = value
		ex.fields.Provenance.InstructionNo = &id
	case domain.FieldTitle:
		ex.fields.Title = value
		ex.fields.Provenance.Title = &id
	case domain.FieldIssuedAt:
		ex.fields.IssuedAt = value
		ex.fields.Provenance.IssuedAt = &id
	}
}
