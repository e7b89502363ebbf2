package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a job status change that the state
	// machine does not permit, including any attempt to leave a terminal
	// state and any compare-and-swap whose expected status did not match.
	ErrInvalidTransition = errors.New("invalid status transition")

	// Transcription Errors.

	// ErrTranscribeProcess indicates the external transcription process
	// exited with a non-zero status. Fatal to the job; never retried.
	ErrTranscribeProcess = errors.New("transcription process failed")

	// ErrTranscribeNoOutput indicates the transcription process reported
	// success but produced no output artifact. Fatal to the job.
	ErrTranscribeNoOutput = errors.New("transcription output not found")

	// Insight Errors.

	// ErrInsightService indicates a transport-level failure calling the
	// generative service (network error or non-success HTTP status).
	// Fatal to the job. Content-level malformation is NOT an error: the
	// extractor degrades to DefaultInsights instead.
	ErrInsightService = errors.New("insight service failed")

	// ErrUnsupportedProvider indicates an unknown insight provider name.
	ErrUnsupportedProvider = errors.New("unsupported insight provider")

	// Intake Errors.

	// ErrUnsupportedMedia indicates an upload whose content type is
	// neither audio nor video.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
