package domain

import (
	"encoding/json"
	"fmt"
)

// Field names of the main document.
const (
	FieldInstructionNo = "instruction_no"
	FieldTitle         = "title"
	FieldIssuedAt      = "issued_at"
	FieldContent       = "content"
)

// MainFields lists the indexed fields in storage order.
var MainFields = []string{FieldInstructionNo, FieldTitle, FieldIssuedAt, FieldContent}

// FieldRank orders field hits within the field kind.
func FieldRank(name string) int {
	switch name {
	case FieldInstructionNo:
		return 0
	case FieldTitle:
		return 1
	case FieldContent:
		return 2
	case FieldIssuedAt:
		return 3
	default:
		return 9
	}
}

// MainDocument holds the structured fields extracted from an archive's
// instruction document. One per archive.
type MainDocument struct {
	ArchiveID     string
	InstructionNo string
	Title         string
	IssuedAt      string
	Content       string
	Provenance    Provenance
}

// Field returns the value of a named field.
func (d *MainDocument) Field(name string) string {
	switch name {
	case FieldInstructionNo:
		return d.InstructionNo
	case FieldTitle:
		return d.Title
	case FieldIssuedAt:
		return d.IssuedAt
	case FieldContent:
		return d.Content
	default:
		return ""
	}
}

// Provenance records which blocks each field came from.
type Provenance struct {
	InstructionNo *string  `json:"instruction_no"`
	Title         *string  `json:"title"`
	IssuedAt      *string  `json:"issued_at"`
	Content       []string `json:"content"`
	ContentAnchor *string  `json:"content_anchor"`
}

// Encode returns the JSON stored alongside the main document.
func (p Provenance) Encode() (string, error) {
	if p.Content == nil {
		p.Content = []string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshalling provenance: %w", err)
	}
	return string(data), nil
}

// ParseProvenance decodes stored provenance. Malformed input yields an
// empty provenance rather than an error.
func ParseProvenance(raw string) Provenance {
	var p Provenance
	if raw == "" {
		return p
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Provenance{}
	}
	return p
}

// HasContentBlock reports whether blockID contributed to the body.
func (p Provenance) HasContentBlock(blockID string) bool {
	for _, id := range p.Content {
		if id == blockID {
			return true
		}
	}
	return false
}

// Block is one paragraph of the main document.
type Block struct {
	ArchiveID string
	// ID is "p:" followed by the 1-based paragraph index zero-padded to six digits.
	ID   string
	Text string
}

// BlockID formats the ID for the n-th paragraph (1-based).
func BlockID(n int) string {
	return fmt.Sprintf("p:%06d", n)
}
