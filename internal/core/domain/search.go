package domain

// SearchResult is a single semantic search hit over indexed segments.
type SearchResult struct {
	// MeetingID owns the matched segment.
	MeetingID string `json:"meeting_id"`

	// SegmentID is the segment's index within its meeting, assigned at
	// indexing time.
	SegmentID int `json:"segment_id"`

	// Text is the segment text.
	Text string `json:"text"`

	// Score is the similarity score; higher is closer.
	Score float64 `json:"score"`
}
