package services

import (
	"context"
	"strings"

	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
	"github.com/recapd/recapd/internal/core/ports/driving"
)

// Ensure Search implements the interface.
var _ driving.SearchService = (*Search)(nil)

// defaultSearchLimit is used when the caller passes no limit.
const defaultSearchLimit = 8

// Search answers free-text queries over indexed segments.
type Search struct {
	indexer driven.SegmentIndexer
}

// NewSearch creates a search service.
func NewSearch(indexer driven.SegmentIndexer) *Search {
	return &Search{indexer: indexer}
}

// Search delegates to the segment indexer. A blank query returns no
// results without touching the indexer.
func (s *Search) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.indexer.Search(ctx, query, limit)
}
