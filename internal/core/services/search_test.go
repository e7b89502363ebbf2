package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/internal/core/domain"
)

type recordingIndexer struct {
	fakeIndexer
	query string
	limit int
	hits  []domain.SearchResult
}

func (r *recordingIndexer) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	r.query = query
	r.limit = k
	return r.hits, nil
}

func TestSearch_EmptyQuerySkipsIndexer(t *testing.T) {
	indexer := &recordingIndexer{}
	svc := NewSearch(indexer)

	results, err := svc.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, indexer.query)
}

func TestSearch_DefaultsLimit(t *testing.T) {
	indexer := &recordingIndexer{hits: []domain.SearchResult{
		{MeetingID: "meeting-1", SegmentID: 0, Text: "budget talk", Score: 0.9},
	}}
	svc := NewSearch(indexer)

	results, err := svc.Search(context.Background(), "budget", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "budget", indexer.query)
	assert.Equal(t, defaultSearchLimit, indexer.limit)
}

func TestSearch_TrimsQuery(t *testing.T) {
	indexer := &recordingIndexer{}
	svc := NewSearch(indexer)

	_, err := svc.Search(context.Background(), "  roadmap  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "roadmap", indexer.query)
	assert.Equal(t, 3, indexer.limit)
}
