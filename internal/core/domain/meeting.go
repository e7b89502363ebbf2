package domain

// Default meeting field values. A meeting still carrying all defaults
// has not been processed yet; readers must consult the job status to
// distinguish "empty meeting" from "not yet enriched".
const (
	DefaultTitle     = "Untitled Meeting"
	DefaultLanguage  = "en"
	DefaultSentiment = "neutral"
)

// Meeting is the enriched record for one recording. It is created as an
// empty shell alongside its job and populated by the pipeline once
// insight extraction completes.
type Meeting struct {
	ID string

	// Title is a short meeting title produced by insight extraction.
	Title string

	// DurationSec is derived from the transcript: the maximum segment
	// end time, 0 when there are no segments. It is never supplied by
	// a caller.
	DurationSec float64

	// Language is an ISO language code, best-effort.
	Language string

	// Sentiment is one of the sentiment labels in SentimentLabels.
	Sentiment string

	// Summary is a narrative executive summary.
	Summary string
}

// NewMeetingShell returns an unprocessed meeting with documented
// defaults.
func NewMeetingShell(id string) Meeting {
	return Meeting{
		ID:        id,
		Title:     DefaultTitle,
		Language:  DefaultLanguage,
		Sentiment: DefaultSentiment,
	}
}

// Segment is a single timed utterance from the transcript.
type Segment struct {
	MeetingID string

	// Speaker is a display label, e.g. "S0" or "Speaker".
	Speaker string

	// Start and End are offsets in seconds. End >= Start.
	Start float64
	End   float64

	// Text is the trimmed utterance text. May be empty.
	Text string
}

// ActionItem is a follow-up task extracted from the meeting.
type ActionItem struct {
	MeetingID string

	// Owner defaults to "Unassigned" when the model names nobody.
	Owner string

	Title string

	// DueDate is a free-form string as produced by the model, not a
	// validated calendar date.
	DueDate string

	// Status defaults to "open".
	Status string
}

// Topic is a short discussion label attached to a meeting.
type Topic struct {
	MeetingID string
	Label     string
}

// MeetingRecord is the fully joined view of a meeting: the meeting
// fields plus its segments in ascending start-time order, action items,
// and topics.
type MeetingRecord struct {
	Meeting
	Segments []Segment
	Actions  []ActionItem
	Topics   []Topic
}

// DurationFromSegments derives a meeting duration as the maximum
// segment end time. Returns 0 for an empty transcript.
func DurationFromSegments(segments []Segment) float64 {
	var max float64
	for _, s := range segments {
		if s.End > max {
			max = s.End
		}
	}
	return max
}
