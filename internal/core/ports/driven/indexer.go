package driven

import (
	"context"

	"github.com/recapd/recapd/internal/core/domain"
)

// SegmentIndexer makes meeting segments retrievable by semantic query.
type SegmentIndexer interface {
	// Index stores the segments for a meeting, keyed by meeting ID and
	// segment position. An empty segment list is a silent no-op.
	Index(ctx context.Context, meetingID string, segments []domain.Segment) error

	// Search returns the k most similar indexed segments for a
	// free-text query. An empty query returns no results and no error.
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// EmbeddingService generates vector embeddings from text. It feeds the
// segment indexer; it does not store anything itself.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request, used at startup.
	Ping(ctx context.Context) error
}

// SegmentVector is an embedded segment as persisted by the vector
// store backing the indexer.
type SegmentVector struct {
	// MeetingID owns the segment.
	MeetingID string

	// SegmentID is the segment's index within its meeting.
	SegmentID int

	// Text is the segment text, stored alongside the vector so search
	// hits need no join.
	Text string

	// Embedding is the vector produced by the embedding service.
	Embedding []float32
}

// VectorStore persists segment vectors for the indexer.
type VectorStore interface {
	// SaveVectors stores vectors in one transaction.
	SaveVectors(ctx context.Context, vectors []SegmentVector) error

	// AllVectors returns every stored vector. The corpus is one
	// machine's meetings; a linear scan is the index.
	AllVectors(ctx context.Context) ([]SegmentVector, error)
}
