package domain

import "time"

// JobStatus is the lifecycle state of a processing job.
type JobStatus string

// Job statuses. The only legal transitions are
// queued → processing → done and queued → processing → error.
const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusError      JobStatus = "error"
)

// Terminal reports whether the status is final. A terminal job is never
// mutated again.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// CanTransition reports whether the state machine permits moving from s
// to next. A terminal state cannot be left, and a terminal state can
// only be entered from processing, so every job that runs is observably
// processing before it completes.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case StatusQueued:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusDone || next == StatusError
	default:
		return false
	}
}

// Job tracks a single uploaded recording through the pipeline.
type Job struct {
	// ID is the opaque unique job identifier.
	ID string

	// MeetingID links the job to the meeting shell created with it.
	MeetingID string

	// Status is the current state machine position.
	Status JobStatus

	// Error holds a human-readable failure message when Status is
	// StatusError. Suitable for display; not machine-parseable.
	Error string

	// FilePath is where the source media file is stored.
	FilePath string

	// Filename is the original upload filename.
	Filename string

	CreatedAt time.Time
	UpdatedAt time.Time
}
