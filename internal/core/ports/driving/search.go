package driving

import (
	"context"

	"github.com/recapd/recapd/internal/core/domain"
)

// SearchService answers free-text queries over indexed segments.
type SearchService interface {
	// Search returns up to limit results. An empty or blank query
	// returns no results and no error.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}
