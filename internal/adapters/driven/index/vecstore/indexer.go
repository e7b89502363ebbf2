// Package vecstore implements the segment indexer: segment text is
// embedded, the vectors are persisted through a VectorStore, and
// queries run a brute-force cosine scan over the stored corpus. The
// corpus is one machine's meetings, so a linear scan stays cheap and
// avoids an external index service.
package vecstore

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
)

// Ensure Indexer implements the interface.
var _ driven.SegmentIndexer = (*Indexer)(nil)

// Indexer embeds and stores meeting segments for semantic search.
type Indexer struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
}

// New creates a segment indexer.
func New(embedder driven.EmbeddingService, vectors driven.VectorStore) *Indexer {
	return &Indexer{embedder: embedder, vectors: vectors}
}

// Index embeds each segment and persists the vectors, keyed by meeting
// ID and segment position. An empty segment list is a silent no-op.
func (ix *Indexer) Index(ctx context.Context, meetingID string, segments []domain.Segment) error {
	if len(segments) == 0 {
		return nil
	}

	vectors := make([]driven.SegmentVector, 0, len(segments))
	for i, seg := range segments {
		embedding, err := ix.embedder.Embed(ctx, seg.Text)
		if err != nil {
			return fmt.Errorf("embed segment %d: %w", i, err)
		}
		vectors = append(vectors, driven.SegmentVector{
			MeetingID: meetingID,
			SegmentID: i,
			Text:      seg.Text,
			Embedding: embedding,
		})
	}

	if err := ix.vectors.SaveVectors(ctx, vectors); err != nil {
		return fmt.Errorf("save vectors: %w", err)
	}
	return nil
}

// Search embeds the query and returns the k nearest stored segments by
// cosine similarity.
func (ix *Indexer) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	queryVec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	stored, err := ix.vectors.AllVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(stored))
	for _, v := range stored {
		results = append(results, domain.SearchResult{
			MeetingID: v.MeetingID,
			SegmentID: v.SegmentID,
			Text:      v.Text,
			Score:     cosineSimilarity(queryVec, v.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// cosineSimilarity returns the cosine of the angle between two
// vectors, 0 for mismatched or zero-magnitude input.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
