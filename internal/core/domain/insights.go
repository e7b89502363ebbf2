package domain

import (
	"encoding/json"
	"strings"
)

// SentimentLabels are the values the generative service is instructed
// to choose from.
var SentimentLabels = []string{
	"very_positive", "positive", "neutral", "negative", "very_negative",
}

// Insights is the normalised output of the insight extraction stage.
type Insights struct {
	Title     string
	Language  string
	Summary   string
	Sentiment string
	Topics    []string
	Actions   []InsightAction
}

// InsightAction is an action item as reported by the model, before it
// is attached to a meeting.
type InsightAction struct {
	Title   string
	Owner   string
	DueDate string
	Status  string
}

// DefaultInsights is the degraded record used when the generative
// service replies with something that is not a JSON document. A
// malformed model response never aborts the pipeline.
func DefaultInsights() Insights {
	return Insights{
		Title:     "Meeting",
		Language:  DefaultLanguage,
		Summary:   "",
		Sentiment: DefaultSentiment,
	}
}

// insightPayload is the loose wire shape of the model's JSON reply.
// Every field is optional; persistence never trusts the model.
type insightPayload struct {
	Title     string          `json:"title"`
	Language  string          `json:"language"`
	Summary   string          `json:"summary"`
	Sentiment string          `json:"sentiment"`
	Topics    []string        `json:"topics"`
	Actions   []actionPayload `json:"actions"`
}

type actionPayload struct {
	Title   string `json:"title"`
	Owner   string `json:"owner"`
	DueDate string `json:"due_date"`
	Status  string `json:"status"`
}

// ParseInsightPayload interprets the raw text the generative service
// returned. If the text is not a JSON object the result degrades to
// DefaultInsights; if it parses, each missing field is independently
// defaulted. The returned bool reports whether the payload parsed.
func ParseInsightPayload(text string) (Insights, bool) {
	var payload insightPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return DefaultInsights(), false
	}

	in := Insights{
		Title:     payload.Title,
		Language:  payload.Language,
		Summary:   payload.Summary,
		Sentiment: payload.Sentiment,
		Topics:    payload.Topics,
	}
	if in.Title == "" {
		in.Title = "Meeting"
	}
	if in.Language == "" {
		in.Language = DefaultLanguage
	}
	if in.Sentiment == "" {
		in.Sentiment = DefaultSentiment
	}

	for _, a := range payload.Actions {
		in.Actions = append(in.Actions, InsightAction{
			Title:   a.Title,
			Owner:   a.Owner,
			DueDate: a.DueDate,
			Status:  a.Status,
		})
	}
	return in, true
}

// MeetingActions converts insight actions into persistable action
// items for the given meeting, applying the documented owner and
// status defaults.
func (in Insights) MeetingActions(meetingID string) []ActionItem {
	items := make([]ActionItem, 0, len(in.Actions))
	for _, a := range in.Actions {
		item := ActionItem{
			MeetingID: meetingID,
			Owner:     a.Owner,
			Title:     a.Title,
			DueDate:   a.DueDate,
			Status:    a.Status,
		}
		if item.Owner == "" {
			item.Owner = "Unassigned"
		}
		if item.Status == "" {
			item.Status = "open"
		}
		items = append(items, item)
	}
	return items
}

// MeetingTopics converts insight topic labels into persistable topics
// for the given meeting. Blank labels are dropped.
func (in Insights) MeetingTopics(meetingID string) []Topic {
	topics := make([]Topic, 0, len(in.Topics))
	for _, label := range in.Topics {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		topics = append(topics, Topic{MeetingID: meetingID, Label: label})
	}
	return topics
}
