// Package eventlog counts target encounters and records per-action events.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Log counts target encounters for the run.
type Log struct {
	Initial int      `json:"initial"`
	Copied  int      `json:"copied"`
	Sources []string `json:"sources"`
}

// Record counts one target encounter produced by source.
func (l *Log) Record(source string, copied bool) {
	if copied {
		l.Copied++
	} else {
		l.Initial++
	}
	l.Sources = append(l.Sources, source)
}

// Total is the number of target encounters recorded.
func (l *Log) Total() int { return l.Initial + l.Copied }

// Event is one line of the per-run event file.
type Event struct {
	At        time.Time `json:"at"`
	Turn      int       `json:"turn"`
	Kind      string    `json:"kind"`
	Task      string    `json:"task,omitempty"`
	Encounter string    `json:"encounter,omitempty"`
	Currency  int64     `json:"currency"`
	Error     string    `json:"error,omitempty"`
}

// Writer appends events as zstd-compressed JSON lines to one file per run.
type Writer struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Path returns the event file for runID under dir.
func Path(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("run-%s.jsonl.zst", runID))
}

// Create opens a new event file for runID under dir.
func Create(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create event dir: %w", err)
	}
	path := Path(dir, runID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{path: path, f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}, nil
}

// Path is the file being written.
func (w *Writer) Path() string { return w.path }

// Write appends one event. Each call flushes through the encoder buffer but
// the zstd frame is only finished on Close.
func (w *Writer) Write(e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return fmt.Errorf("event log %s is closed", w.path)
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close finishes the zstd frame and closes the file. It is safe to call twice.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err1 == nil {
			err1 = err
		}
		w.f = nil
	}
	w.w = nil
	return err1
}

// ReadFile decodes every event in a file written by Writer.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var out []Event
	for sc.Scan() {
		var e Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return out, nil
}
