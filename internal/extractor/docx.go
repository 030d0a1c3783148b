package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// documentPart is the main body part of a WordprocessingML package.
const documentPart = "word/document.xml"

// maxDocumentXML bounds the decompressed body part.
const maxDocumentXML = 64 << 20

var textNormaliser = strings.NewReplacer("\r\n", "\n", "\u00a0", " ", "\u3000", " ")

// Paragraphs returns the text of every body paragraph of a .docx in order.
// Paragraphs inside tables are dropped entirely. Tabs become \t and line,
// carriage and rendered page breaks become \n.
func Paragraphs(docx []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotDocx, err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrNotDocx, documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", documentPart, err)
	}
	defer rc.Close()

	return paragraphTexts(io.LimitReader(rc, maxDocumentXML))
}

// paragraphTexts streams document XML and collects paragraph text.
func paragraphTexts(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var (
		out        []string
		buf        strings.Builder
		tableDepth int
		paraDepth  int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				if tableDepth == 0 {
					if paraDepth == 0 {
						buf.Reset()
					}
					paraDepth++
				}
			case "t":
				inText = paraDepth > 0 && tableDepth == 0
			case "tab":
				if paraDepth > 0 && tableDepth == 0 {
					buf.WriteByte('\t')
				}
			case "br", "cr", "lastRenderedPageBreak":
				if paraDepth > 0 && tableDepth == 0 {
					buf.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "p":
				if tableDepth == 0 && paraDepth > 0 {
					paraDepth--
					if paraDepth == 0 {
						out = append(out, textNormaliser.Replace(buf.String()))
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}

	return out, nil
}

// Blocks numbers paragraphs as blocks of an archive.
func Blocks(archiveID string, paragraphs []string) []domain.Block {
	blocks := make([]domain.Block, len(paragraphs))
	for i, text := range paragraphs {
		blocks[i] = domain.Block{ArchiveID: archiveID, ID: domain.BlockID(i + 1), Text: text}
	}
	return blocks
}

// Parse reads a main document and extracts its blocks and fields.
func Parse(archiveID string, docx []byte) (*domain.MainDocument, []domain.Block, error) {
	paragraphs, err := Paragraphs(docx)
	if err != nil {
		return nil, nil, err
	}
	blocks := Blocks(archiveID, paragraphs)
	fields := ExtractFields(blocks)

	doc := &domain.MainDocument{
		ArchiveID:     archiveID,
		InstructionNo: fields.InstructionNo,
		Title:         fields.Title,
		IssuedAt:      fields.IssuedAt,
		Content:       fields.Content,
		Provenance:    fields.Provenance,
	}
	return doc, blocks, nil
}
