package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
	"github.com/recapd/recapd/internal/core/ports/driving"
)

// Ensure Intake implements the interface.
var _ driving.IntakeService = (*Intake)(nil)

// Intake accepts new recordings: it stores the media file and creates
// the job plus meeting shell. Dispatching the pipeline is the caller's
// decision, which keeps intake usable from the async HTTP path, the
// watch folder, and the synchronous CLI alike.
type Intake struct {
	store      driven.RecordStore
	storageDir string
}

// NewIntake creates an intake service writing uploads to storageDir.
func NewIntake(store driven.RecordStore, storageDir string) *Intake {
	return &Intake{store: store, storageDir: storageDir}
}

// Submit stores uploaded content and creates a queued job for it.
func (s *Intake) Submit(ctx context.Context, r io.Reader, filename, contentType string) (*domain.Job, error) {
	if !strings.HasPrefix(contentType, "audio/") && !strings.HasPrefix(contentType, "video/") {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, contentType)
	}

	if err := os.MkdirAll(s.storageDir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	jobID := uuid.New().String()
	filename = filepath.Base(filename)
	path := filepath.Join(s.storageDir, jobID+"_"+filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("store upload: %w", err)
	}

	job, err := s.createJob(ctx, jobID, path, filename)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return job, nil
}

// SubmitPath creates a queued job for a media file already on disk,
// referenced in place.
func (s *Intake) SubmitPath(ctx context.Context, path string) (*domain.Job, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat media file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrUnsupportedMedia, path)
	}

	return s.createJob(ctx, uuid.New().String(), path, filepath.Base(path))
}

func (s *Intake) createJob(ctx context.Context, jobID, path, filename string) (*domain.Job, error) {
	now := time.Now().UTC()
	job := domain.Job{
		ID:        jobID,
		MeetingID: uuid.New().String(),
		Status:    domain.StatusQueued,
		FilePath:  path,
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return &job, nil
}
