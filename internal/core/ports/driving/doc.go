// Package driving provides interfaces for primary/inbound ports: the
// operations the HTTP API, watch-folder, and CLI adapters invoke on
// the core.
package driving
