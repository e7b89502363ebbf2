package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/recapd/recapd/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
)

var (
	_ driven.RecordStore = (*Store)(nil)
	_ driven.VectorStore = (*Store)(nil)
)

// Store is the SQLite-backed record and vector store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.recapd/data/recapd.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recapd", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "recapd.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Record Store ====================

// CreateJob stores a new queued job together with its meeting shell in
// a single transaction.
func (s *Store) CreateJob(ctx context.Context, job domain.Job) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = job.CreatedAt

	_, err = tx.ExecContext(ctx, `
		INSERT INTO jobs (id, meeting_id, status, error, file_path, filename, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.MeetingID, string(job.Status), job.Error,
		job.FilePath, job.Filename, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}

	shell := domain.NewMeetingShell(job.MeetingID)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO meetings (id, title, duration_sec, language, sentiment, summary)
		VALUES (?, ?, ?, ?, ?, ?)
	`, shell.ID, shell.Title, shell.DurationSec, shell.Language, shell.Sentiment, shell.Summary)
	if err != nil {
		return fmt.Errorf("inserting meeting shell: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, meeting_id, status, error, file_path, filename, created_at, updated_at
		FROM jobs WHERE id = ?
	`, id)

	var job domain.Job
	var status string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&job.ID, &job.MeetingID, &status, &job.Error,
		&job.FilePath, &job.Filename, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	job.Status = domain.JobStatus(status)
	if createdAt.Valid {
		job.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		job.UpdatedAt = updatedAt.Time
	}

	return &job, nil
}

// TransitionJob atomically moves a job from one status to another. The
// UPDATE is guarded on the current status, so a concurrent claimer
// loses cleanly instead of double-processing.
func (s *Store) TransitionJob(ctx context.Context, id string, from, to domain.JobStatus, errMsg string) error {
	if !from.CanTransition(to) {
		return domain.ErrInvalidTransition
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(to), errMsg, time.Now().UTC(), id, string(from))
	if err != nil {
		return fmt.Errorf("updating job status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing matched: either the job is missing or its status moved.
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs WHERE id = ?", id).Scan(&count); err != nil {
		return fmt.Errorf("checking job existence: %w", err)
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}

// UpsertMeeting writes all meeting fields, creating the row if the
// shell is somehow missing.
func (s *Store) UpsertMeeting(ctx context.Context, meeting domain.Meeting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meetings (id, title, duration_sec, language, sentiment, summary)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			duration_sec = excluded.duration_sec,
			language = excluded.language,
			sentiment = excluded.sentiment,
			summary = excluded.summary
	`, meeting.ID, meeting.Title, meeting.DurationSec,
		meeting.Language, meeting.Sentiment, meeting.Summary)
	if err != nil {
		return fmt.Errorf("upserting meeting: %w", err)
	}
	return nil
}

// InsertSegments bulk-inserts segments for a meeting.
func (s *Store) InsertSegments(ctx context.Context, meetingID string, segments []domain.Segment) error {
	if len(segments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (meeting_id, speaker, start_sec, end_sec, text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		if _, err := stmt.ExecContext(ctx, meetingID, seg.Speaker,
			seg.Start, seg.End, seg.Text); err != nil {
			return fmt.Errorf("inserting segment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceActionItems atomically swaps the full action item set for a
// meeting.
func (s *Store) ReplaceActionItems(ctx context.Context, meetingID string, items []domain.ActionItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM action_items WHERE meeting_id = ?", meetingID); err != nil {
		return fmt.Errorf("clearing action items: %w", err)
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO action_items (meeting_id, owner, title, due_date, status)
			VALUES (?, ?, ?, ?, ?)
		`, meetingID, item.Owner, item.Title, item.DueDate, item.Status); err != nil {
			return fmt.Errorf("inserting action item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceTopics atomically swaps the full topic set for a meeting.
func (s *Store) ReplaceTopics(ctx context.Context, meetingID string, topics []domain.Topic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM topics WHERE meeting_id = ?", meetingID); err != nil {
		return fmt.Errorf("clearing topics: %w", err)
	}

	for _, topic := range topics {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO topics (meeting_id, label) VALUES (?, ?)
		`, meetingID, topic.Label); err != nil {
			return fmt.Errorf("inserting topic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetMeeting retrieves a meeting joined with its segments, action
// items, and topics.
func (s *Store) GetMeeting(ctx context.Context, id string) (*domain.MeetingRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, duration_sec, language, sentiment, summary
		FROM meetings WHERE id = ?
	`, id)

	var record domain.MeetingRecord
	if err := row.Scan(&record.ID, &record.Title, &record.DurationSec,
		&record.Language, &record.Sentiment, &record.Summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning meeting: %w", err)
	}

	segments, err := s.meetingSegments(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Segments = segments

	actions, err := s.meetingActions(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Actions = actions

	topics, err := s.meetingTopics(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Topics = topics

	return &record, nil
}

func (s *Store) meetingSegments(ctx context.Context, meetingID string) ([]domain.Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT meeting_id, speaker, start_sec, end_sec, text
		FROM segments WHERE meeting_id = ?
		ORDER BY start_sec, id
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var segments []domain.Segment //nolint:prealloc // size unknown from query
	for rows.Next() {
		var seg domain.Segment
		if err := rows.Scan(&seg.MeetingID, &seg.Speaker, &seg.Start, &seg.End, &seg.Text); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		segments = append(segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}

	return segments, nil
}

func (s *Store) meetingActions(ctx context.Context, meetingID string) ([]domain.ActionItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT meeting_id, owner, title, due_date, status
		FROM action_items WHERE meeting_id = ?
		ORDER BY id
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("querying action items: %w", err)
	}
	defer rows.Close()

	var items []domain.ActionItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		var item domain.ActionItem
		if err := rows.Scan(&item.MeetingID, &item.Owner, &item.Title, &item.DueDate, &item.Status); err != nil {
			return nil, fmt.Errorf("scanning action item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating action items: %w", err)
	}

	return items, nil
}

func (s *Store) meetingTopics(ctx context.Context, meetingID string) ([]domain.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT meeting_id, label
		FROM topics WHERE meeting_id = ?
		ORDER BY id
	`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var topics []domain.Topic //nolint:prealloc // size unknown from query
	for rows.Next() {
		var topic domain.Topic
		if err := rows.Scan(&topic.MeetingID, &topic.Label); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topics: %w", err)
	}

	return topics, nil
}

// ==================== Vector Store ====================

// SaveVectors stores segment vectors in one transaction.
func (s *Store) SaveVectors(ctx context.Context, vectors []driven.SegmentVector) error {
	if len(vectors) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segment_vectors (meeting_id, segment_id, text, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(meeting_id, segment_id) DO UPDATE SET
			text = excluded.text,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range vectors {
		if _, err := stmt.ExecContext(ctx, v.MeetingID, v.SegmentID,
			v.Text, float32SliceToBytes(v.Embedding)); err != nil {
			return fmt.Errorf("saving vector: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AllVectors returns every stored segment vector.
func (s *Store) AllVectors(ctx context.Context) ([]driven.SegmentVector, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT meeting_id, segment_id, text, embedding
		FROM segment_vectors
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var vectors []driven.SegmentVector //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v driven.SegmentVector
		var blob []byte
		if err := rows.Scan(&v.MeetingID, &v.SegmentID, &v.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		v.Embedding = bytesToFloat32Slice(blob)
		vectors = append(vectors, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	return vectors, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
