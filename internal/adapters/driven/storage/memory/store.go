// Package memory provides an in-memory RecordStore and VectorStore.
// Used by tests and by the no-database development mode; data does not
// survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.RecordStore = (*Store)(nil)
	_ driven.VectorStore = (*Store)(nil)
)

// Store is an in-memory implementation of the record and vector
// stores.
type Store struct {
	mu       sync.RWMutex
	jobs     map[string]domain.Job
	meetings map[string]domain.Meeting
	segments map[string][]domain.Segment
	actions  map[string][]domain.ActionItem
	topics   map[string][]domain.Topic
	vectors  []driven.SegmentVector
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		jobs:     make(map[string]domain.Job),
		meetings: make(map[string]domain.Meeting),
		segments: make(map[string][]domain.Segment),
		actions:  make(map[string][]domain.ActionItem),
		topics:   make(map[string][]domain.Topic),
	}
}

// CreateJob stores a new job and its meeting shell.
func (s *Store) CreateJob(_ context.Context, job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	s.meetings[job.MeetingID] = domain.NewMeetingShell(job.MeetingID)
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// TransitionJob atomically moves a job between statuses.
func (s *Store) TransitionJob(_ context.Context, id string, from, to domain.JobStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status != from || !from.CanTransition(to) {
		return domain.ErrInvalidTransition
	}
	job.Status = to
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

// UpsertMeeting writes all meeting fields.
func (s *Store) UpsertMeeting(_ context.Context, meeting domain.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[meeting.ID] = meeting
	return nil
}

// InsertSegments appends segments for a meeting.
func (s *Store) InsertSegments(_ context.Context, meetingID string, segments []domain.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seg := range segments {
		seg.MeetingID = meetingID
		s.segments[meetingID] = append(s.segments[meetingID], seg)
	}
	return nil
}

// ReplaceActionItems swaps the full action item set for a meeting.
func (s *Store) ReplaceActionItems(_ context.Context, meetingID string, items []domain.ActionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[meetingID] = append([]domain.ActionItem(nil), items...)
	return nil
}

// ReplaceTopics swaps the full topic set for a meeting.
func (s *Store) ReplaceTopics(_ context.Context, meetingID string, topics []domain.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[meetingID] = append([]domain.Topic(nil), topics...)
	return nil
}

// GetMeeting retrieves the joined meeting record with segments in
// ascending start-time order.
func (s *Store) GetMeeting(_ context.Context, id string) (*domain.MeetingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	segments := append([]domain.Segment(nil), s.segments[id]...)
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	return &domain.MeetingRecord{
		Meeting:  meeting,
		Segments: segments,
		Actions:  append([]domain.ActionItem(nil), s.actions[id]...),
		Topics:   append([]domain.Topic(nil), s.topics[id]...),
	}, nil
}

// SaveVectors stores segment vectors.
func (s *Store) SaveVectors(_ context.Context, vectors []driven.SegmentVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// AllVectors returns every stored vector.
func (s *Store) AllVectors(_ context.Context) ([]driven.SegmentVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]driven.SegmentVector(nil), s.vectors...), nil
}
