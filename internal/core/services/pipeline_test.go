package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/internal/adapters/driven/storage/memory"
	"github.com/recapd/recapd/internal/core/domain"
)

type fakeTranscriber struct {
	segments []domain.Segment
	err      error
	calls    int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) ([]domain.Segment, error) {
	f.calls++
	return f.segments, f.err
}

type fakeInsights struct {
	insights   domain.Insights
	err        error
	transcript string
}

func (f *fakeInsights) Extract(_ context.Context, transcript string) (domain.Insights, error) {
	f.transcript = transcript
	return f.insights, f.err
}

func (f *fakeInsights) ModelName() string { return "fake" }

type fakeIndexer struct {
	indexed map[string][]domain.Segment
	err     error
}

func (f *fakeIndexer) Index(_ context.Context, meetingID string, segments []domain.Segment) error {
	if f.err != nil {
		return f.err
	}
	if f.indexed == nil {
		f.indexed = make(map[string][]domain.Segment)
	}
	f.indexed[meetingID] = segments
	return nil
}

func (f *fakeIndexer) Search(_ context.Context, _ string, _ int) ([]domain.SearchResult, error) {
	return nil, nil
}

func testLog() *logrus.Entry {
	base := logrus.New()
	base.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(base)
}

func queuedJob(t *testing.T, store *memory.Store) domain.Job {
	t.Helper()
	job := domain.Job{
		ID:        "job-1",
		MeetingID: "meeting-1",
		Status:    domain.StatusQueued,
		FilePath:  "/tmp/job-1.wav",
		Filename:  "standup.wav",
	}
	require.NoError(t, store.CreateJob(context.Background(), job))
	return job
}

func TestPipeline_Run_HappyPath(t *testing.T) {
	store := memory.NewStore()
	queuedJob(t, store)

	transcriber := &fakeTranscriber{segments: []domain.Segment{
		{Speaker: "S0", Start: 0.0, End: 1.5, Text: "hello everyone"},
		{Speaker: "S1", Start: 1.5, End: 3.0, Text: "let's begin"},
	}}
	insights := &fakeInsights{insights: domain.Insights{
		Title:     "Standup",
		Language:  "en",
		Summary:   "Quick sync.",
		Sentiment: "positive",
		Topics:    []string{"status"},
		Actions:   []domain.InsightAction{{Title: "Send notes"}},
	}}
	indexer := &fakeIndexer{}

	p := NewPipeline(store, transcriber, insights, indexer, testLog())
	p.Run(context.Background(), "job-1")

	job, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, job.Status)
	assert.Empty(t, job.Error)

	record, err := store.GetMeeting(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, "Standup", record.Title)
	assert.Equal(t, "Quick sync.", record.Summary)
	assert.Equal(t, "positive", record.Sentiment)
	assert.Equal(t, 3.0, record.DurationSec)
	require.Len(t, record.Segments, 2)
	require.Len(t, record.Actions, 1)
	assert.Equal(t, "Unassigned", record.Actions[0].Owner)
	require.Len(t, record.Topics, 1)

	// Transcript handed to the insight stage is newline-joined.
	assert.Equal(t, "hello everyone\nlet's begin", insights.transcript)

	// Segments reached the indexer keyed by meeting.
	assert.Len(t, indexer.indexed["meeting-1"], 2)
}

func TestPipeline_Run_UnknownJobIsNoOp(t *testing.T) {
	store := memory.NewStore()
	transcriber := &fakeTranscriber{}

	p := NewPipeline(store, transcriber, &fakeInsights{}, &fakeIndexer{}, testLog())
	p.Run(context.Background(), "missing")

	assert.Zero(t, transcriber.calls)
}

func TestPipeline_Run_SecondRunIsNoOp(t *testing.T) {
	store := memory.NewStore()
	queuedJob(t, store)

	transcriber := &fakeTranscriber{segments: []domain.Segment{
		{Speaker: "S0", Start: 0, End: 1, Text: "once"},
	}}
	p := NewPipeline(store, transcriber, &fakeInsights{}, &fakeIndexer{}, testLog())

	p.Run(context.Background(), "job-1")
	p.Run(context.Background(), "job-1")

	assert.Equal(t, 1, transcriber.calls)

	// No second set of segments was appended.
	record, err := store.GetMeeting(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Len(t, record.Segments, 1)
}

func TestPipeline_Run_TranscriptionFailureShortCircuits(t *testing.T) {
	store := memory.NewStore()
	queuedJob(t, store)

	stageErr := errors.New("transcription process failed: exit status 1")
	transcriber := &fakeTranscriber{err: stageErr}
	insights := &fakeInsights{}
	indexer := &fakeIndexer{}

	p := NewPipeline(store, transcriber, insights, indexer, testLog())
	p.Run(context.Background(), "job-1")

	job, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, job.Status)
	assert.Equal(t, stageErr.Error(), job.Error)

	// Nothing past the failed stage was committed.
	record, err := store.GetMeeting(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Empty(t, record.Segments)
	assert.Equal(t, "Untitled Meeting", record.Title)
	assert.Empty(t, insights.transcript)
	assert.Empty(t, indexer.indexed)
}

func TestPipeline_Run_InsightTransportFailureFailsJob(t *testing.T) {
	store := memory.NewStore()
	queuedJob(t, store)

	transcriber := &fakeTranscriber{segments: []domain.Segment{
		{Speaker: "S0", Start: 0, End: 2, Text: "hello"},
	}}
	insights := &fakeInsights{err: domain.ErrInsightService}

	p := NewPipeline(store, transcriber, insights, &fakeIndexer{}, testLog())
	p.Run(context.Background(), "job-1")

	job, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, job.Status)
	assert.NotEmpty(t, job.Error)

	// Segments were already durable, but the meeting was never touched.
	record, err := store.GetMeeting(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Len(t, record.Segments, 1)
	assert.Equal(t, "Untitled Meeting", record.Title)
	assert.Empty(t, record.Actions)
}

func TestPipeline_Run_MalformedInsightsStillCompletes(t *testing.T) {
	store := memory.NewStore()
	queuedJob(t, store)

	transcriber := &fakeTranscriber{segments: []domain.Segment{
		{Speaker: "S0", Start: 0, End: 2, Text: "hello"},
	}}
	// The extractor degrades to defaults instead of erroring.
	insights := &fakeInsights{insights: domain.DefaultInsights()}

	p := NewPipeline(store, transcriber, insights, &fakeIndexer{}, testLog())
	p.Run(context.Background(), "job-1")

	job, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, job.Status)

	record, err := store.GetMeeting(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, "Meeting", record.Title)
	assert.Equal(t, "neutral", record.Sentiment)
}

func TestPipeline_Run_IndexerFailureFailsJob(t *testing.T) {
	store := memory.NewStore()
	queuedJob(t, store)

	transcriber := &fakeTranscriber{segments: []domain.Segment{
		{Speaker: "S0", Start: 0, End: 1, Text: "hello"},
	}}
	indexer := &fakeIndexer{err: errors.New("index service down")}

	p := NewPipeline(store, transcriber, &fakeInsights{}, indexer, testLog())
	p.Run(context.Background(), "job-1")

	job, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, job.Status)
	assert.Contains(t, job.Error, "index service down")
}

func TestPipeline_Run_EmptyTranscriptYieldsZeroDuration(t *testing.T) {
	store := memory.NewStore()
	queuedJob(t, store)

	p := NewPipeline(store, &fakeTranscriber{}, &fakeInsights{}, &fakeIndexer{}, testLog())
	p.Run(context.Background(), "job-1")

	record, err := store.GetMeeting(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, record.DurationSec)
}
