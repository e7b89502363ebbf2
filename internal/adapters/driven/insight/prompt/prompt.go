// Package prompt builds the instruction prompt shared by all insight
// providers.
package prompt

import "strings"

// transcriptPlaceholder marks where the transcript is spliced in.
const transcriptPlaceholder = "{{transcript}}"

// template instructs the model to reply with a strict JSON document.
// Providers count on this contract but never trust it: an off-contract
// reply degrades to defaults downstream.
const template = `You are an assistant that summarizes meeting transcripts.
Return a strict JSON object with keys: title, language, summary, sentiment, topics, actions.
- title: short meeting title
- language: ISO code if you can infer (like "en")
- summary: multi-paragraph executive summary
- sentiment: one of [very_positive, positive, neutral, negative, very_negative]
- topics: array of short topic labels (3-8)
- actions: array of objects { title, owner, due_date (optional), status }

Transcript:
` + transcriptPlaceholder + `
Respond ONLY with JSON.`

// Build embeds the transcript into the instruction template.
func Build(transcript string) string {
	return strings.Replace(template, transcriptPlaceholder, transcript, 1)
}
