package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recapd/internal/adapters/driven/storage/memory"
	"github.com/recapd/recapd/internal/core/domain"
)

func TestIntake_Submit_CreatesQueuedJobAndStoresFile(t *testing.T) {
	store := memory.NewStore()
	intake := NewIntake(store, t.TempDir())

	job, err := intake.Submit(context.Background(), strings.NewReader("RIFFdata"), "standup.wav", "audio/wav")
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.NotEmpty(t, job.MeetingID)
	assert.Equal(t, domain.StatusQueued, job.Status)
	assert.Equal(t, "standup.wav", job.Filename)

	content, err := os.ReadFile(job.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "RIFFdata", string(content))

	// Meeting shell exists with defaults.
	record, err := store.GetMeeting(context.Background(), job.MeetingID)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Meeting", record.Title)
}

func TestIntake_Submit_RejectsNonMediaContentType(t *testing.T) {
	intake := NewIntake(memory.NewStore(), t.TempDir())

	_, err := intake.Submit(context.Background(), strings.NewReader("%PDF"), "notes.pdf", "application/pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)
}

func TestIntake_Submit_AcceptsVideo(t *testing.T) {
	intake := NewIntake(memory.NewStore(), t.TempDir())

	job, err := intake.Submit(context.Background(), strings.NewReader("data"), "call.mp4", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "call.mp4", job.Filename)
}

func TestIntake_Submit_StripsDirectoryFromFilename(t *testing.T) {
	dir := t.TempDir()
	intake := NewIntake(memory.NewStore(), dir)

	job, err := intake.Submit(context.Background(), strings.NewReader("data"), "../../etc/passwd.wav", "audio/wav")
	require.NoError(t, err)

	assert.Equal(t, "passwd.wav", job.Filename)
	assert.Equal(t, dir, filepath.Dir(job.FilePath))
}

func TestIntake_SubmitPath_ReferencesFileInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drop.wav")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))

	store := memory.NewStore()
	intake := NewIntake(store, t.TempDir())

	job, err := intake.SubmitPath(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, job.FilePath)
	assert.Equal(t, "drop.wav", job.Filename)
	assert.Equal(t, domain.StatusQueued, job.Status)
}

func TestIntake_SubmitPath_MissingFile(t *testing.T) {
	intake := NewIntake(memory.NewStore(), t.TempDir())

	_, err := intake.SubmitPath(context.Background(), "/nonexistent/whatever.wav")
	assert.Error(t, err)
}

func TestIntake_SubmitPath_RejectsDirectory(t *testing.T) {
	intake := NewIntake(memory.NewStore(), t.TempDir())

	_, err := intake.SubmitPath(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)
}
