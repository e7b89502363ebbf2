package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

// createTestJob stores a queued job (and its meeting shell) and
// returns it.
func createTestJob(t *testing.T, store *Store, id string) domain.Job {
	t.Helper()

	job := domain.Job{
		ID:        id,
		MeetingID: "meeting-" + id,
		Status:    domain.StatusQueued,
		FilePath:  "/tmp/" + id + ".wav",
		Filename:  id + ".wav",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateJob(context.Background(), job))
	return job
}

func TestNewStoreRunsMigrations(t *testing.T) {
	store := setupTestStore(t)

	// Re-opening the same directory must be idempotent.
	again, err := NewStore(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}

func TestCreateJobCreatesMeetingShell(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	job := createTestJob(t, store, "job-1")

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, got.Status)
	assert.Equal(t, job.MeetingID, got.MeetingID)
	assert.Equal(t, job.Filename, got.Filename)
	assert.Empty(t, got.Error)

	record, err := store.GetMeeting(ctx, job.MeetingID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTitle, record.Title)
	assert.Equal(t, domain.DefaultLanguage, record.Language)
	assert.Equal(t, domain.DefaultSentiment, record.Sentiment)
	assert.Zero(t, record.DurationSec)
	assert.Empty(t, record.Segments)
}

func TestGetJobNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransitionJobCompareAndSwap(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	job := createTestJob(t, store, "job-1")

	require.NoError(t, store.TransitionJob(ctx, job.ID, domain.StatusQueued, domain.StatusProcessing, ""))

	// A second claim loses: the row is no longer queued.
	err := store.TransitionJob(ctx, job.ID, domain.StatusQueued, domain.StatusProcessing, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, store.TransitionJob(ctx, job.ID, domain.StatusProcessing, domain.StatusDone, ""))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, got.Status)
}

func TestTransitionJobTerminalIsImmutable(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	job := createTestJob(t, store, "job-1")

	require.NoError(t, store.TransitionJob(ctx, job.ID, domain.StatusQueued, domain.StatusProcessing, ""))
	require.NoError(t, store.TransitionJob(ctx, job.ID, domain.StatusProcessing, domain.StatusError, "whisper exploded"))

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, got.Status)
	assert.Equal(t, "whisper exploded", got.Error)

	err = store.TransitionJob(ctx, job.ID, domain.StatusError, domain.StatusProcessing, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransitionJobNotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.TransitionJob(context.Background(), "missing", domain.StatusQueued, domain.StatusProcessing, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertMeetingUpdatesShell(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	job := createTestJob(t, store, "job-1")

	meeting := domain.Meeting{
		ID:          job.MeetingID,
		Title:       "Q3 Planning",
		DurationSec: 182.5,
		Language:    "en",
		Sentiment:   "positive",
		Summary:     "Planned the quarter.",
	}
	require.NoError(t, store.UpsertMeeting(ctx, meeting))

	record, err := store.GetMeeting(ctx, job.MeetingID)
	require.NoError(t, err)
	assert.Equal(t, meeting, record.Meeting)
}

func TestUpsertMeetingCreatesMissingRow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	meeting := domain.Meeting{ID: "orphan", Title: "Standalone", Language: "en", Sentiment: "neutral"}
	require.NoError(t, store.UpsertMeeting(ctx, meeting))

	record, err := store.GetMeeting(ctx, "orphan")
	require.NoError(t, err)
	assert.Equal(t, "Standalone", record.Title)
}

func TestGetMeetingNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetMeeting(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInsertSegmentsOrderedByStart(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	job := createTestJob(t, store, "job-1")

	segments := []domain.Segment{
		{MeetingID: job.MeetingID, Speaker: "S1", Start: 5.0, End: 8.0, Text: "second"},
		{MeetingID: job.MeetingID, Speaker: "S0", Start: 0.0, End: 4.5, Text: "first"},
	}
	require.NoError(t, store.InsertSegments(ctx, job.MeetingID, segments))

	record, err := store.GetMeeting(ctx, job.MeetingID)
	require.NoError(t, err)
	require.Len(t, record.Segments, 2)
	assert.Equal(t, "first", record.Segments[0].Text)
	assert.Equal(t, "second", record.Segments[1].Text)
}

func TestReplaceActionItemsSwapsFullSet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	job := createTestJob(t, store, "job-1")

	first := []domain.ActionItem{
		{MeetingID: job.MeetingID, Owner: "Alice", Title: "Draft proposal", Status: "open"},
		{MeetingID: job.MeetingID, Owner: "Unassigned", Title: "Book room", Status: "open"},
	}
	require.NoError(t, store.ReplaceActionItems(ctx, job.MeetingID, first))

	second := []domain.ActionItem{
		{MeetingID: job.MeetingID, Owner: "Bob", Title: "Ship release", DueDate: "next Friday", Status: "open"},
	}
	require.NoError(t, store.ReplaceActionItems(ctx, job.MeetingID, second))

	record, err := store.GetMeeting(ctx, job.MeetingID)
	require.NoError(t, err)
	require.Len(t, record.Actions, 1)
	assert.Equal(t, "Ship release", record.Actions[0].Title)
	assert.Equal(t, "next Friday", record.Actions[0].DueDate)
}

func TestReplaceTopicsSwapsFullSet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	job := createTestJob(t, store, "job-1")

	require.NoError(t, store.ReplaceTopics(ctx, job.MeetingID, []domain.Topic{
		{MeetingID: job.MeetingID, Label: "budget"},
		{MeetingID: job.MeetingID, Label: "hiring"},
	}))
	require.NoError(t, store.ReplaceTopics(ctx, job.MeetingID, []domain.Topic{
		{MeetingID: job.MeetingID, Label: "roadmap"},
	}))

	record, err := store.GetMeeting(ctx, job.MeetingID)
	require.NoError(t, err)
	require.Len(t, record.Topics, 1)
	assert.Equal(t, "roadmap", record.Topics[0].Label)
}

func TestVectorsRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	vectors := []driven.SegmentVector{
		{MeetingID: "m-1", SegmentID: 0, Text: "hello", Embedding: []float32{0.25, -1.5, 3}},
		{MeetingID: "m-1", SegmentID: 1, Text: "world", Embedding: []float32{1, 0, 0}},
	}
	require.NoError(t, store.SaveVectors(ctx, vectors))

	got, err := store.AllVectors(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := map[int]driven.SegmentVector{}
	for _, v := range got {
		byID[v.SegmentID] = v
	}
	assert.Equal(t, []float32{0.25, -1.5, 3}, byID[0].Embedding)
	assert.Equal(t, "world", byID[1].Text)
}

func TestSaveVectorsUpsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVectors(ctx, []driven.SegmentVector{
		{MeetingID: "m-1", SegmentID: 0, Text: "old", Embedding: []float32{1}},
	}))
	require.NoError(t, store.SaveVectors(ctx, []driven.SegmentVector{
		{MeetingID: "m-1", SegmentID: 0, Text: "new", Embedding: []float32{2}},
	}))

	got, err := store.AllVectors(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Text)
	assert.Equal(t, []float32{2}, got[0].Embedding)
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 1e-7}
	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
