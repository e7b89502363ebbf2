package driven

import (
	"context"

	"github.com/recapd/recapd/internal/core/domain"
)

// InsightService produces a normalised insights record from the full
// transcript text.
//
// The error contract is deliberately asymmetric: a transport failure
// (network error, non-success status) returns domain.ErrInsightService
// and is fatal to the job, while a successful reply whose body is not
// valid JSON degrades to domain.DefaultInsights with a nil error so a
// malformed model response never aborts the pipeline.
type InsightService interface {
	// Extract blocks for up to the service's configured timeout.
	Extract(ctx context.Context, transcript string) (domain.Insights, error)

	// ModelName returns the generative model in use, for logging.
	ModelName() string
}
