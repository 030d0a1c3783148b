package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/archivevault/internal/core/domain"
	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
	"github.com/custodia-labs/archivevault/internal/core/ports/driving"
	"github.com/custodia-labs/archivevault/internal/logger"
	"github.com/custodia-labs/archivevault/internal/tokenizer"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Per-index fetch bounds.
const (
	minFetch = 200
	maxFetch = 5000
)

// SearchService searches blocks, fields, annotations and attachment names.
type SearchService struct {
	index        driven.SearchIndex
	tok          *tokenizer.Tokenizer
	defaultLimit int
}

// NewSearchService creates a new search service.
func NewSearchService(index driven.SearchIndex, tok *tokenizer.Tokenizer) *SearchService {
	return &SearchService{
		index:        index,
		tok:          tok,
		defaultLimit: domain.DefaultSearchLimit,
	}
}

// SetDefaultLimit sets the page size used when a request gives none.
func (s *SearchService) SetDefaultLimit(limit int) {
	if limit > 0 {
		s.defaultLimit = min(limit, domain.MaxSearchLimit)
	}
}

// typeFilter is the parsed type allow-set.
type typeFilter struct {
	mainDoc     bool
	annotations bool
	// fileTypes is nil when every attachment type is allowed.
	fileTypes []domain.FileType
}

func parseTypes(types []string) typeFilter {
	if len(types) == 0 {
		return typeFilter{mainDoc: true, annotations: true}
	}
	f := typeFilter{fileTypes: []domain.FileType{}}
	for _, t := range types {
		switch t {
		case domain.TypeMainDoc:
			f.mainDoc = true
		case domain.TypeAnnotation:
			f.annotations = true
		default:
			f.fileTypes = append(f.fileTypes, domain.FileType(t))
		}
	}
	return f
}

func (f typeFilter) attachments() bool {
	return f.fileTypes == nil || len(f.fileTypes) > 0
}

// Search matches the query and returns one ranked page.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchPage, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", req.Query)

	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = min(limit, domain.MaxSearchLimit)
	offset := min(max(req.Offset, 0), domain.MaxSearchOffset)
	page := &domain.SearchPage{Items: []domain.Hit{}, Offset: offset, Limit: limit}
	logger.Debug("Limit: %d, Offset: %d", limit, offset)

	query := strings.TrimSpace(req.Query)
	expr := s.tok.MatchExpression(query)
	if expr == "" {
		logger.Debug("Nothing searchable in query, returning no results")
		return page, nil
	}

	var archiveIDs []string
	if req.Filters.DateFrom != nil || req.Filters.DateTo != nil {
		ids, err := s.index.ArchiveIDsInRange(ctx, req.Filters.DateFrom, req.Filters.DateTo)
		if err != nil {
			return nil, fmt.Errorf("date filter: %w", err)
		}
		if len(ids) == 0 {
			logger.Debug("No archives in date range")
			return page, nil
		}
		archiveIDs = ids
		logger.Debug("Date filter: %d archives", len(ids))
	}
	types := parseTypes(req.Filters.Types)

	fetch := min(max(4*(offset+limit+1), minFetch), maxFetch)
	logger.Debug("Internal limit: %d", fetch)
	q := driven.MatchQuery{Expression: expr, Limit: fetch, ArchiveIDs: archiveIDs}

	tokens := s.tok.QueryTokens(query)
	needles := highlightNeedles(query, tokens)

	var merged []domain.Hit

	var blocks []domain.BlockHit
	if types.mainDoc {
		var err error
		blocks, err = s.index.MatchBlocks(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("block search: %w", err)
		}
		for i := range blocks {
			blocks[i].Highlights = highlight(blocks[i].BlockText, needles)
			merged = append(merged, &blocks[i])
		}

		fields, err := s.index.MatchFields(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("field search: %w", err)
		}
		fieldHits, err := s.resolveFields(ctx, fields, blocks, tokens, needles)
		if err != nil {
			return nil, err
		}
		merged = append(merged, fieldHits...)
	}

	if types.annotations {
		notes, err := s.index.MatchAnnotations(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("annotation search: %w", err)
		}
		for i := range notes {
			notes[i].Highlights = highlight(notes[i].Content, needles)
			merged = append(merged, &notes[i])
		}
	}

	if types.attachments() {
		aq := q
		aq.FileTypes = types.fileTypes
		atts, err := s.index.MatchAttachments(ctx, aq)
		if err != nil {
			return nil, fmt.Errorf("attachment search: %w", err)
		}
		for i := range atts {
			atts[i].Highlights = highlight(atts[i].DisplayName, needles)
			merged = append(merged, &atts[i])
		}
	}
	logger.Debug("Raw results: %d hits", len(merged))

	rankHits(merged)

	page.HasMore = len(merged) > offset+limit
	if offset < len(merged) {
		page.Items = merged[offset:min(offset+limit, len(merged))]
	}
	logger.Info("Final results: %d", len(page.Items))
	return page, nil
}

// resolveFields highlights field hits, drops content hits whose body
// paragraphs already matched as blocks, and picks the paragraph that best
// supports each remaining content hit.
func (s *SearchService) resolveFields(
	ctx context.Context, fields []domain.FieldHit, blocks []domain.BlockHit, tokens, needles []string,
) ([]domain.Hit, error) {
	var contentArchives []string
	for _, f := range fields {
		if f.FieldName == domain.FieldContent {
			contentArchives = append(contentArchives, f.ArchiveID)
		}
	}
	provenance := map[string]domain.Provenance{}
	if len(contentArchives) > 0 {
		var err error
		provenance, err = s.index.Provenances(ctx, contentArchives)
		if err != nil {
			return nil, fmt.Errorf("loading provenance: %w", err)
		}
	}

	blockHits := make(map[string]map[string]struct{})
	for _, b := range blocks {
		if blockHits[b.ArchiveID] == nil {
			blockHits[b.ArchiveID] = make(map[string]struct{})
		}
		blockHits[b.ArchiveID][b.BlockID] = struct{}{}
	}

	out := make([]domain.Hit, 0, len(fields))
	for i := range fields {
		f := &fields[i]
		f.Highlights = highlight(f.SourceText, needles)
		if f.FieldName == domain.FieldContent {
			contentIDs := provenance[f.ArchiveID].Content
			if coveredByBlocks(contentIDs, blockHits[f.ArchiveID]) {
				continue
			}
			if len(contentIDs) > 0 {
				if err := s.pickBestBlock(ctx, f, contentIDs, tokens, needles); err != nil {
					return nil, err
				}
			}
		}
		out = append(out, f)
	}
	return out, nil
}

func coveredByBlocks(contentIDs []string, hits map[string]struct{}) bool {
	for _, id := range contentIDs {
		if _, ok := hits[id]; ok {
			return true
		}
	}
	return false
}

// pickBestBlock sets the content paragraph with the most token occurrences.
// The first paragraph wins ties; without readable paragraphs the first ID
// is used unhighlighted.
func (s *SearchService) pickBestBlock(
	ctx context.Context, f *domain.FieldHit, contentIDs, tokens, needles []string,
) error {
	texts, err := s.index.BlockTexts(ctx, f.ArchiveID, contentIDs)
	if err != nil {
		return fmt.Errorf("loading content blocks: %w", err)
	}

	bestID, bestText, bestScore := "", "", -1
	for _, id := range contentIDs {
		text, ok := texts[id]
		if !ok {
			continue
		}
		if score := occurrences(text, tokens); score > bestScore {
			bestID, bestText, bestScore = id, text, score
		}
	}
	if bestScore < 0 {
		f.BestBlockID = contentIDs[0]
		return nil
	}
	f.BestBlockID = bestID
	f.BestBlockHighlights = highlight(bestText, needles)
	return nil
}

// rankHits orders by kind, then field, then highlighted span descending.
// Equal hits keep index order.
func rankHits(hits []domain.Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if ka, kb := domain.KindRank(a.Kind()), domain.KindRank(b.Kind()); ka != kb {
			return ka < kb
		}
		fa, aok := a.(*domain.FieldHit)
		fb, bok := b.(*domain.FieldHit)
		if aok && bok {
			if ra, rb := domain.FieldRank(fa.FieldName), domain.FieldRank(fb.FieldName); ra != rb {
				return ra < rb
			}
		}
		return domain.SpanTotal(a.Ranges()) > domain.SpanTotal(b.Ranges())
	})
}
