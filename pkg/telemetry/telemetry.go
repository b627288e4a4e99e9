// Package telemetry emits the per-cycle plotting record. The line format
// is fixed: four comma-space-separated fields, a constant floor, a
// constant ceiling, the accumulated charge and the rescaled light
// reading, so a serial-plotter-style tool can graph charge against the
// 0-100 band.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// Record is one telemetry sample, emitted once per cycle.
type Record struct {
	// Floor and Ceil are the fixed plotting bounds, always 0 and 100.
	Floor int `json:"floor"`
	Ceil  int `json:"ceil"`
	// Charge is the accumulated battery percentage.
	Charge float64 `json:"charge"`
	// Light is the raw sensor reading rescaled into 0-100.
	Light int `json:"light"`
}

// NewRecord returns a Record with the fixed plotting bounds filled in.
func NewRecord(charge float64, light int) Record {
	return Record{Floor: 0, Ceil: 100, Charge: charge, Light: light}
}

// String renders the four-field plotter line.
func (r Record) String() string {
	return fmt.Sprintf("%d, %d, %.4f, %d", r.Floor, r.Ceil, r.Charge, r.Light)
}

// Writer is a telemetry sink.
type Writer interface {
	Write(Record) error
	Close() error
}

// LineWriter writes one plotter line per record to an io.Writer.
type LineWriter struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer // nil when the writer does not own the stream
}

// NewLineWriter wraps an existing stream. The stream is not closed by
// Close.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// OpenStream opens the telemetry stream at path, polling until the path
// becomes openable or the timeout elapses. "-" means stdout and is always
// ready. A character device that has not enumerated yet (a USB serial
// adapter, say) becomes ready as soon as the node appears.
func OpenStream(path string, timeout time.Duration) (*LineWriter, error) {
	if path == "-" {
		return NewLineWriter(os.Stdout), nil
	}

	deadline := time.Now().Add(timeout)
	for {
		fp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err == nil {
			return &LineWriter{w: fp, c: fp}, nil
		}

		if time.Now().After(deadline) {
			return nil, pkgerrors.Wrapf(err, "telemetry stream %s not ready after %s", path, timeout)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// Write writes one line.
func (l *LineWriter) Write(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := fmt.Fprintln(l.w, r.String()); err != nil {
		return pkgerrors.Wrap(err, "failed to write telemetry line")
	}
	return nil
}

// Close closes the stream if this writer owns it.
func (l *LineWriter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.c == nil {
		return nil
	}
	return l.c.Close()
}

// multi fans a record out to several writers.
type multi struct {
	writers []Writer
}

// MultiWriter returns a Writer that sends every record to all the given
// writers. The first write error is returned, remaining writers still
// receive the record.
func MultiWriter(writers ...Writer) Writer {
	return &multi{writers: writers}
}

func (m *multi) Write(r Record) error {
	var firstErr error
	for _, w := range m.writers {
		if err := w.Write(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multi) Close() error {
	var firstErr error
	for _, w := range m.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
