package driven

import (
	"context"

	"github.com/recapd/recapd/internal/core/domain"
)

// RecordStore is the durable store for jobs, meetings, and meeting
// entities. Every mutation commits before the call returns, so a
// status read immediately after a write observes it.
type RecordStore interface {
	// CreateJob stores a new queued job together with its meeting
	// shell in a single transaction.
	CreateJob(ctx context.Context, job domain.Job) error

	// GetJob retrieves a job by ID. Returns domain.ErrNotFound if the
	// job does not exist.
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// TransitionJob atomically moves a job from one status to another,
	// recording errMsg (terminal errors only) and bumping updated_at.
	// The write is compare-and-swap on the current status: if it is not
	// `from`, the store returns domain.ErrInvalidTransition and writes
	// nothing. Returns domain.ErrNotFound for an unknown job.
	TransitionJob(ctx context.Context, id string, from, to domain.JobStatus, errMsg string) error

	// UpsertMeeting writes all meeting fields, creating the row if the
	// shell is somehow missing.
	UpsertMeeting(ctx context.Context, meeting domain.Meeting) error

	// InsertSegments bulk-inserts segments for a meeting. Segments are
	// append-only and never updated.
	InsertSegments(ctx context.Context, meetingID string, segments []domain.Segment) error

	// ReplaceActionItems atomically swaps the full action item set for
	// a meeting: the previous set is removed in the same transaction.
	ReplaceActionItems(ctx context.Context, meetingID string, items []domain.ActionItem) error

	// ReplaceTopics atomically swaps the full topic set for a meeting.
	ReplaceTopics(ctx context.Context, meetingID string, topics []domain.Topic) error

	// GetMeeting retrieves a meeting joined with its segments in
	// ascending start-time order, action items, and topics. Returns
	// domain.ErrNotFound if the meeting does not exist.
	GetMeeting(ctx context.Context, id string) (*domain.MeetingRecord, error)
}
