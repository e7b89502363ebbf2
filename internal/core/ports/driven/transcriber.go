package driven

import (
	"context"

	"github.com/recapd/recapd/internal/core/domain"
)

// Transcriber converts a stored media file into timed speech segments.
//
// Implementations may invoke an external process (whisper.cpp), an
// in-process library, or a remote service; the pipeline does not care.
// Failures are fatal to the job and are never retried:
//   - domain.ErrTranscribeProcess when the engine itself fails
//   - domain.ErrTranscribeNoOutput when it silently produces nothing
type Transcriber interface {
	// Transcribe blocks until the engine finishes. Returned segments
	// are normalised (speaker label, trimmed text) but not guaranteed
	// to be in time order.
	Transcribe(ctx context.Context, mediaPath string) ([]domain.Segment, error)
}
