package driving

import "context"

// PipelineRunner drives one job through the full enrichment pipeline.
type PipelineRunner interface {
	// Run takes the job to a terminal state. It never panics and never
	// surfaces an error to the caller: the persisted job record is the
	// only failure channel once processing has started. Running an
	// unknown or already-started job ID is a no-op.
	//
	// Run is not safe to invoke concurrently for the same job ID; the
	// compare-and-swap queued→processing transition makes the second
	// invocation a no-op rather than a double run.
	Run(ctx context.Context, jobID string)
}
