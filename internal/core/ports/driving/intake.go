package driving

import (
	"context"
	"io"

	"github.com/recapd/recapd/internal/core/domain"
)

// IntakeService accepts new recordings and creates their job and
// meeting shell. It does not run the pipeline; the caller decides
// whether to dispatch the returned job asynchronously or drive it
// inline.
type IntakeService interface {
	// Submit stores the uploaded content under the configured storage
	// directory and creates a queued job. contentType must be an
	// audio/* or video/* type; anything else returns
	// domain.ErrUnsupportedMedia.
	Submit(ctx context.Context, r io.Reader, filename, contentType string) (*domain.Job, error)

	// SubmitPath creates a queued job for a media file that already
	// exists on disk, referencing it in place.
	SubmitPath(ctx context.Context, path string) (*domain.Job, error)
}
