// Package whispercpp runs the whisper.cpp binary as an external
// transcription engine and parses its JSON output into domain
// segments.
package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/recapd/recapd/internal/core/domain"
	"github.com/recapd/recapd/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// Default configuration values.
const (
	DefaultBinary    = "main"
	DefaultModelPath = "./models/ggml-small.bin"
)

// defaultSpeaker labels segments whose speaker the engine did not
// identify.
const defaultSpeaker = "Speaker"

// Config holds configuration for the whisper.cpp transcriber.
type Config struct {
	// Binary is the whisper.cpp executable (default: "main", resolved
	// via PATH).
	Binary string

	// ModelPath is the ggml model file (default: ./models/ggml-small.bin).
	ModelPath string
}

// Transcriber invokes whisper.cpp synchronously. The engine writes its
// JSON result next to the input file at <input>.json; success means
// exit status zero and that artifact existing.
type Transcriber struct {
	binary    string
	modelPath string
}

// New creates a whisper.cpp transcriber.
func New(cfg Config) *Transcriber {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = DefaultModelPath
	}
	return &Transcriber{binary: cfg.Binary, modelPath: cfg.ModelPath}
}

// Transcribe blocks until the engine exits. Failures are fatal to the
// job and are not retried here.
func (t *Transcriber) Transcribe(ctx context.Context, mediaPath string) ([]domain.Segment, error) {
	outPath := mediaPath + ".json"

	// -oj selects JSON output, -of the output file prefix.
	cmd := exec.CommandContext(ctx, t.binary,
		"-m", t.modelPath,
		"-f", mediaPath,
		"-oj",
		"-of", mediaPath,
	)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscribeProcess, err)
	}

	// The engine can exit zero without writing anything; treat that as
	// a failure rather than an empty transcript.
	raw, err := os.ReadFile(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTranscribeNoOutput, outPath)
		}
		return nil, fmt.Errorf("read transcription output: %w", err)
	}

	return parseOutput(raw)
}

// engineOutput is the loose shape of whisper.cpp's JSON result.
type engineOutput struct {
	Segments []engineSegment `json:"segments"`

	// Text is the whole-file transcription some builds emit even when
	// the segment list is empty.
	Text string `json:"text"`
}

// engineSegment keeps speaker raw: builds with diarization emit an
// integer index, others a string label or nothing at all.
type engineSegment struct {
	Speaker json.RawMessage `json:"speaker"`
	Start   *float64        `json:"start"`
	End     *float64        `json:"end"`
	Text    string          `json:"text"`
}

// parseOutput normalises the engine output into domain segments. When
// the engine produced no segments but did report whole-file text, one
// synthetic segment carries it so downstream stages always receive a
// usable transcript when any text exists.
func parseOutput(raw []byte) ([]domain.Segment, error) {
	var out engineOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse transcription output: %w", err)
	}

	segments := make([]domain.Segment, 0, len(out.Segments))
	for _, seg := range out.Segments {
		var start, end float64
		if seg.Start != nil {
			start = *seg.Start
		}
		if seg.End != nil {
			end = *seg.End
		}
		segments = append(segments, domain.Segment{
			Speaker: speakerLabel(seg.Speaker),
			Start:   start,
			End:     end,
			Text:    strings.TrimSpace(seg.Text),
		})
	}

	if len(segments) == 0 {
		if text := strings.TrimSpace(out.Text); text != "" {
			segments = append(segments, domain.Segment{
				Speaker: defaultSpeaker,
				Start:   0.0,
				End:     0.0,
				Text:    text,
			})
		}
	}

	return segments, nil
}

// speakerLabel maps the raw speaker value to a display label: integer
// index i becomes "S<i>", a non-empty string passes through, anything
// else falls back to the default label.
func speakerLabel(raw json.RawMessage) string {
	if len(raw) == 0 {
		return defaultSpeaker
	}

	var index int
	if err := json.Unmarshal(raw, &index); err == nil {
		return fmt.Sprintf("S%d", index)
	}

	var label string
	if err := json.Unmarshal(raw, &label); err == nil && label != "" {
		return label
	}

	return defaultSpeaker
}
