package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string   `json:"query" jsonschema:"the search query; Chinese text is matched by words and character n-grams"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 50, max 200)"`
	Offset   int      `json:"offset,omitempty" jsonschema:"number of ranked results to skip"`
	DateFrom string   `json:"date_from,omitempty" jsonschema:"earliest archive date, YYYY-MM-DD"`
	DateTo   string   `json:"date_to,omitempty" jsonschema:"latest archive date, YYYY-MM-DD"`
	Types    []string `json:"types,omitempty" jsonschema:"restrict to main_doc, annotation or attachment file types (pdf, excel, image, video, docx_other, zip_child, other)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Items   []HitOutput `json:"items"`
	HasMore bool        `json:"has_more"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
}

// HitOutput is one search result. Highlights are UTF-16 ranges into Text.
type HitOutput struct {
	Kind       string         `json:"kind"`
	ArchiveID  string         `json:"archive_id"`
	Text       string         `json:"text"`
	Highlights []domain.Range `json:"highlights"`

	BlockID             string         `json:"block_id,omitempty"`
	FieldName           string         `json:"field_name,omitempty"`
	BestBlockID         string         `json:"best_block_id,omitempty"`
	BestBlockHighlights []domain.Range `json:"best_block_highlights,omitempty"`
	AnnotationID        string         `json:"annotation_id,omitempty"`
	FileID              string         `json:"file_id,omitempty"`
}

// ListArchivesInput is the input schema for the list_archives tool.
type ListArchivesInput struct {
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of archives (default 200, max 1000)"`
	Offset   int    `json:"offset,omitempty" jsonschema:"number of archives to skip"`
	DateFrom string `json:"date_from,omitempty" jsonschema:"earliest archive date, YYYY-MM-DD"`
	DateTo   string `json:"date_to,omitempty" jsonschema:"latest archive date, YYYY-MM-DD"`
}

// ListArchivesOutput is the output schema for the list_archives tool.
type ListArchivesOutput struct {
	Archives []ArchiveOutput `json:"archives"`
	Count    int             `json:"count"`
}

// ArchiveOutput summarises one archive.
type ArchiveOutput struct {
	ID            string `json:"id"`
	OriginalName  string `json:"original_name"`
	ArchiveDate   string `json:"archive_date"`
	ImportedAt    int64  `json:"imported_at"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	InstructionNo string `json:"instruction_no,omitempty"`
	Title         string `json:"title,omitempty"`
}

// ArchiveInput names one archive.
type ArchiveInput struct {
	ArchiveID string `json:"archive_id" jsonschema:"the archive id"`
}

// ArchiveDetailOutput is an archive with everything extracted from it.
type ArchiveDetailOutput struct {
	Archive      ArchiveOutput       `json:"archive"`
	MainDocument *MainDocumentOutput `json:"main_document,omitempty"`
	Attachments  []AttachmentOutput  `json:"attachments"`
	Annotations  []AnnotationOutput  `json:"annotations"`
}

// MainDocumentOutput holds the extracted fields.
type MainDocumentOutput struct {
	InstructionNo string `json:"instruction_no"`
	Title         string `json:"title"`
	IssuedAt      string `json:"issued_at"`
	Content       string `json:"content"`
}

// AttachmentOutput describes one attachment.
type AttachmentOutput struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	FileType    string `json:"file_type"`
	Depth       int    `json:"depth"`
	SizeBytes   int64  `json:"size_bytes"`
}

// AnnotationOutput describes one annotation.
type AnnotationOutput struct {
	ID         string `json:"id"`
	TargetKind string `json:"target_kind"`
	TargetRef  string `json:"target_ref"`
	Locator    string `json:"locator"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
}

// ImportInput is the input schema for the import_archives tool.
type ImportInput struct {
	Paths []string `json:"paths" jsonschema:"ZIP files or directories to import, as absolute paths"`
}

// ReextractOutput is the output schema for the reextract_archive tool.
type ReextractOutput struct {
	ArchiveID string `json:"archive_id"`
	Status    string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search instruction paragraphs, extracted fields, annotations and attachment names",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_archives",
		Description: "List imported archives, newest import first",
	}, s.handleListArchives)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_archive",
		Description: "Get an archive's extracted fields, attachments and annotations",
	}, s.handleGetArchive)

	if s.ports.Import == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "import_archives",
		Description: "Import ZIP archives from local paths; directories are scanned for .zip files",
	}, s.handleImport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reextract_archive",
		Description: "Re-parse a stored archive and replace its extracted data",
	}, s.handleReextract)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	from, to, err := domain.ParseDayRange(input.DateFrom, input.DateTo, s.ports.location())
	if err != nil {
		return nil, SearchOutput{}, err
	}

	page, err := s.ports.Search.Search(ctx, domain.SearchRequest{
		Query:   input.Query,
		Filters: domain.SearchFilters{DateFrom: from, DateTo: to, Types: input.Types},
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Items:   make([]HitOutput, len(page.Items)),
		HasMore: page.HasMore,
		Offset:  page.Offset,
		Limit:   page.Limit,
	}
	for i, h := range page.Items {
		output.Items[i] = toHitOutput(h)
	}
	return nil, output, nil
}

func toHitOutput(h domain.Hit) HitOutput {
	out := HitOutput{
		Kind:       string(h.Kind()),
		ArchiveID:  h.Archive(),
		Text:       h.Text(),
		Highlights: h.Ranges(),
	}
	switch v := h.(type) {
	case *domain.BlockHit:
		out.BlockID = v.BlockID
	case *domain.FieldHit:
		out.FieldName = v.FieldName
		out.BestBlockID = v.BestBlockID
		out.BestBlockHighlights = v.BestBlockHighlights
	case *domain.AnnotationHit:
		out.AnnotationID = v.AnnotationID
	case *domain.AttachmentHit:
		out.FileID = v.FileID
	}
	if out.Highlights == nil {
		out.Highlights = []domain.Range{}
	}
	return out
}

// handleListArchives handles the list_archives tool invocation.
func (s *Server) handleListArchives(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListArchivesInput,
) (*mcp.CallToolResult, ListArchivesOutput, error) {
	loc := s.ports.location()
	from, to, err := domain.ParseDayRange(input.DateFrom, input.DateTo, loc)
	if err != nil {
		return nil, ListArchivesOutput{}, err
	}

	archives, err := s.ports.Archive.List(ctx, domain.ArchiveFilter{
		DateFrom: from,
		DateTo:   to,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, ListArchivesOutput{}, err
	}

	output := ListArchivesOutput{
		Archives: make([]ArchiveOutput, len(archives)),
		Count:    len(archives),
	}
	for i := range archives {
		output.Archives[i] = toArchiveOutput(&archives[i].Archive, loc)
		output.Archives[i].InstructionNo = archives[i].InstructionNo
		output.Archives[i].Title = archives[i].Title
	}
	return nil, output, nil
}

// handleGetArchive handles the get_archive tool invocation.
func (s *Server) handleGetArchive(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ArchiveInput,
) (*mcp.CallToolResult, ArchiveDetailOutput, error) {
	detail, err := s.ports.Archive.Get(ctx, input.ArchiveID)
	if err != nil {
		return nil, ArchiveDetailOutput{}, err
	}
	return nil, toDetailOutput(detail, s.ports.location()), nil
}

// handleImport handles the import_archives tool invocation.
func (s *Server) handleImport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImportInput,
) (*mcp.CallToolResult, domain.ImportSummary, error) {
	if s.ports.Import == nil {
		return nil, domain.ImportSummary{}, ErrImportUnavailable
	}
	if len(input.Paths) == 0 {
		return nil, domain.ImportSummary{}, fmt.Errorf("%w: no paths given", domain.ErrInvalidInput)
	}
	summary, err := s.ports.Import.Import(ctx, input.Paths, nil)
	if err != nil {
		return nil, domain.ImportSummary{}, err
	}
	return nil, *summary, nil
}

// handleReextract handles the reextract_archive tool invocation.
func (s *Server) handleReextract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ArchiveInput,
) (*mcp.CallToolResult, ReextractOutput, error) {
	if s.ports.Import == nil {
		return nil, ReextractOutput{}, ErrImportUnavailable
	}
	if err := s.ports.Import.Reextract(ctx, input.ArchiveID, nil); err != nil {
		return nil, ReextractOutput{}, err
	}
	return nil, ReextractOutput{ArchiveID: input.ArchiveID, Status: string(domain.ArchiveCompleted)}, nil
}

func toArchiveOutput(a *domain.Archive, loc *time.Location) ArchiveOutput {
	return ArchiveOutput{
		ID:           a.ID,
		OriginalName: a.OriginalName,
		ArchiveDate:  a.ArchiveTime(loc).Format(domain.DayLayout),
		ImportedAt:   a.ImportedAt,
		Status:       a.Status.String(),
		Error:        a.Error,
	}
}

func toDetailOutput(detail *domain.ArchiveDetail, loc *time.Location) ArchiveDetailOutput {
	out := ArchiveDetailOutput{
		Archive:     toArchiveOutput(&detail.Archive, loc),
		Attachments: make([]AttachmentOutput, len(detail.Attachments)),
		Annotations: make([]AnnotationOutput, len(detail.Annotations)),
	}
	if doc := detail.MainDocument; doc != nil {
		out.Archive.InstructionNo = doc.InstructionNo
		out.Archive.Title = doc.Title
		out.MainDocument = &MainDocumentOutput{
			InstructionNo: doc.InstructionNo,
			Title:         doc.Title,
			IssuedAt:      doc.IssuedAt,
			Content:       doc.Content,
		}
	}
	for i, a := range detail.Attachments {
		out.Attachments[i] = AttachmentOutput{
			ID:          a.ID,
			DisplayName: a.DisplayName,
			FileType:    string(a.FileType),
			Depth:       a.Depth,
			SizeBytes:   a.SizeBytes,
		}
	}
	for i, n := range detail.Annotations {
		out.Annotations[i] = AnnotationOutput{
			ID:         n.ID,
			TargetKind: n.TargetKind,
			TargetRef:  n.TargetRef,
			Locator:    string(n.Locator),
			Content:    n.Content,
			CreatedAt:  n.CreatedAt,
		}
	}
	return out
}
