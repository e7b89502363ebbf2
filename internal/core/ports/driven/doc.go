// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the record store, the transcription
// engine, the generative insight service, and the segment indexer.
package driven
