// Package logger configures the process-wide structured logger.
// Local environments get a readable text format; everything else logs
// JSON for ingestion.
package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options controls logger construction.
type Options struct {
	// Environment selects the output format; "" and "local" mean text.
	Environment string

	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
}

// New builds a configured logrus entry. Callers attach their own
// fields with WithField/WithFields.
func New(opts Options) *logrus.Entry {
	base := logrus.New()

	if opts.Environment == "" || opts.Environment == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	}

	switch opts.Level {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return logrus.NewEntry(base)
}

// WithRequest attaches request metadata to a log entry, generating a
// request ID when the client did not send one.
func WithRequest(log *logrus.Entry, r *http.Request) *logrus.Entry {
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.New().String()
	}

	return log.WithFields(logrus.Fields{
		"req_id": reqID,
		"method": r.Method,
		"path":   r.URL.Path,
	})
}
