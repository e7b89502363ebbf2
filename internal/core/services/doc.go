// Package services contains the core application services: the
// enrichment pipeline, recording intake, and segment search. Services
// depend only on domain types and ports; adapters are injected.
package services
