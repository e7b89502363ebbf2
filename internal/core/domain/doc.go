// Package domain contains the core entities and business rules for the
// meeting enrichment pipeline: jobs, meetings, transcript segments,
// derived insights, and the job status state machine.
//
// Domain types carry no persistence or transport concerns. Adapters map
// them to SQL rows, JSON payloads, and external service formats.
package domain
