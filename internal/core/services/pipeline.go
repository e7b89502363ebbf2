package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
	"github.com/recapd/recapd/internal/core/ports/driving"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineRunner = (*Pipeline)(nil)

// Pipeline drives a job through transcription, insight extraction,
// persistence, and indexing. One Run call handles one job; callers run
// each job on its own goroutine so a job's blocking external calls
// never stall intake or other jobs.
type Pipeline struct {
	store       driven.RecordStore
	transcriber driven.Transcriber
	insights    driven.InsightService
	indexer     driven.SegmentIndexer
	log         *logrus.Entry
}

// NewPipeline creates a pipeline runner.
func NewPipeline(
	store driven.RecordStore,
	transcriber driven.Transcriber,
	insights driven.InsightService,
	indexer driven.SegmentIndexer,
	log *logrus.Entry,
) *Pipeline {
	return &Pipeline{
		store:       store,
		transcriber: transcriber,
		insights:    insights,
		indexer:     indexer,
		log:         log,
	}
}

// Run takes the job to a terminal state. The persisted job record is
// the only failure channel: Run never returns an error and converts
// every stage failure into a stored error status.
func (p *Pipeline) Run(ctx context.Context, jobID string) {
	log := p.log.WithField("job_id", jobID)

	// Claim the job. The compare-and-swap on queued means a missing,
	// already-running, or already-finished job is a no-op here.
	err := p.store.TransitionJob(ctx, jobID, domain.StatusQueued, domain.StatusProcessing, "")
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Warn("job does not exist, nothing to run")
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		log.Warn("job is not queued, refusing to run it twice")
		return
	case err != nil:
		log.WithError(err).Error("could not claim job")
		return
	}

	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		p.fail(ctx, jobID, log, fmt.Errorf("load job: %w", err))
		return
	}
	log = log.WithField("meeting_id", job.MeetingID)

	if err := p.process(ctx, job, log); err != nil {
		p.fail(ctx, jobID, log, err)
		return
	}

	if err := p.store.TransitionJob(ctx, jobID, domain.StatusProcessing, domain.StatusDone, ""); err != nil {
		log.WithError(err).Error("could not mark job done")
		return
	}
	log.Info("job done")
}

// process runs stages 2–7. Returning an error here fails the job with
// that error's message; nothing written by a later stage can precede a
// failure in an earlier one.
func (p *Pipeline) process(ctx context.Context, job *domain.Job, log *logrus.Entry) error {
	segments, err := p.transcriber.Transcribe(ctx, job.FilePath)
	if err != nil {
		return err
	}
	log.WithField("segments", len(segments)).Info("transcription complete")

	if err := p.store.InsertSegments(ctx, job.MeetingID, segments); err != nil {
		return fmt.Errorf("persist segments: %w", err)
	}

	insights, err := p.insights.Extract(ctx, joinTranscript(segments))
	if err != nil {
		return err
	}

	meeting := domain.Meeting{
		ID:          job.MeetingID,
		Title:       insights.Title,
		DurationSec: domain.DurationFromSegments(segments),
		Language:    insights.Language,
		Sentiment:   insights.Sentiment,
		Summary:     insights.Summary,
	}
	if err := p.store.UpsertMeeting(ctx, meeting); err != nil {
		return fmt.Errorf("persist meeting: %w", err)
	}

	if err := p.store.ReplaceActionItems(ctx, job.MeetingID, insights.MeetingActions(job.MeetingID)); err != nil {
		return fmt.Errorf("persist action items: %w", err)
	}
	if err := p.store.ReplaceTopics(ctx, job.MeetingID, insights.MeetingTopics(job.MeetingID)); err != nil {
		return fmt.Errorf("persist topics: %w", err)
	}

	if err := p.indexer.Index(ctx, job.MeetingID, segments); err != nil {
		return fmt.Errorf("index segments: %w", err)
	}

	return nil
}

// fail records the stage error verbatim on the job. A failure to store
// the failure can only be logged.
func (p *Pipeline) fail(ctx context.Context, jobID string, log *logrus.Entry, stageErr error) {
	log.WithError(stageErr).Warn("pipeline failed")
	err := p.store.TransitionJob(ctx, jobID, domain.StatusProcessing, domain.StatusError, stageErr.Error())
	if err != nil {
		log.WithError(err).Error("could not mark job failed")
	}
}

// joinTranscript produces the full transcript text handed to the
// insight service: segment texts newline-joined in the order the
// transcriber returned them.
func joinTranscript(segments []domain.Segment) string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n")
}
