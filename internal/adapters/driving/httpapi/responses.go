package httpapi

import (
	"time"

	"github.com/recapd/recapd/internal/core/domain"
)

// JobView is the wire shape of a job.
type JobView struct {
	JobID     string    `json:"job_id"`
	MeetingID string    `json:"meeting_id"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SegmentView is the wire shape of a transcript segment.
type SegmentView struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// ActionItemView is the wire shape of an action item.
type ActionItemView struct {
	Owner   string `json:"owner"`
	Title   string `json:"title"`
	DueDate string `json:"due_date,omitempty"`
	Status  string `json:"status"`
}

// MeetingView is the wire shape of a fully joined meeting.
type MeetingView struct {
	MeetingID   string           `json:"meeting_id"`
	Title       string           `json:"title"`
	DurationSec float64          `json:"duration_sec"`
	Language    string           `json:"language"`
	Sentiment   string           `json:"sentiment"`
	Summary     string           `json:"summary"`
	Segments    []SegmentView    `json:"segments"`
	Actions     []ActionItemView `json:"action_items"`
	Topics      []string         `json:"topics"`
}

func jobResponse(job *domain.Job) JobView {
	return JobView{
		JobID:     job.ID,
		MeetingID: job.MeetingID,
		Status:    string(job.Status),
		Error:     job.Error,
		Filename:  job.Filename,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func meetingResponse(record *domain.MeetingRecord) MeetingView {
	segments := make([]SegmentView, 0, len(record.Segments))
	for _, seg := range record.Segments {
		segments = append(segments, SegmentView{
			Speaker: seg.Speaker,
			Start:   seg.Start,
			End:     seg.End,
			Text:    seg.Text,
		})
	}

	actions := make([]ActionItemView, 0, len(record.Actions))
	for _, item := range record.Actions {
		actions = append(actions, ActionItemView{
			Owner:   item.Owner,
			Title:   item.Title,
			DueDate: item.DueDate,
			Status:  item.Status,
		})
	}

	topics := make([]string, 0, len(record.Topics))
	for _, topic := range record.Topics {
		topics = append(topics, topic.Label)
	}

	return MeetingView{
		MeetingID:   record.ID,
		Title:       record.Title,
		DurationSec: record.DurationSec,
		Language:    record.Language,
		Sentiment:   record.Sentiment,
		Summary:     record.Summary,
		Segments:    segments,
		Actions:     actions,
		Topics:      topics,
	}
}
