// Package telemetry records per-frame statistics of the particle network and
// writes them as CSV.
package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/olivierh59500/particle-network/network"
)

// FrameRecord is one CSV row.
type FrameRecord struct {
	Frame       uint64 `csv:"frame"`
	Width       int    `csv:"width"`
	Height      int    `csv:"height"`
	Dark        bool   `csv:"dark"`
	Particles   int    `csv:"particles"`
	Connections int    `csv:"connections"`
	ElapsedUS   int64  `csv:"elapsed_us"`
}

// Summary aggregates recorded frames.
type Summary struct {
	Frames         int
	AvgConnections float64
	MaxConnections int
	AvgFrameTime   time.Duration
	MaxFrameTime   time.Duration
}

// Recorder collects frames and optionally streams them to a CSV writer.
// Use Record as a network.WithFrameHook callback.
type Recorder struct {
	out           io.Writer
	headerWritten bool
	err           error

	frames      int
	connections int
	maxConns    int
	elapsed     time.Duration
	maxElapsed  time.Duration
}

// NewRecorder returns a recorder. out may be nil to only aggregate.
func NewRecorder(out io.Writer) *Recorder {
	return &Recorder{out: out}
}

// Record adds one frame. Write errors are kept and reported by Err; recording
// stops streaming after the first one.
func (r *Recorder) Record(f network.Frame) {
	r.frames++
	r.connections += f.Stats.Connections
	r.maxConns = max(r.maxConns, f.Stats.Connections)
	r.elapsed += f.Elapsed
	r.maxElapsed = max(r.maxElapsed, f.Elapsed)

	if r.out == nil || r.err != nil {
		return
	}
	records := []FrameRecord{{
		Frame:       f.Index,
		Width:       f.Width,
		Height:      f.Height,
		Dark:        f.Dark,
		Particles:   f.Stats.Particles,
		Connections: f.Stats.Connections,
		ElapsedUS:   f.Elapsed.Microseconds(),
	}}

	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.out); err != nil {
			r.err = fmt.Errorf("writing frame stats: %w", err)
			return
		}
		r.headerWritten = true
		return
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.out); err != nil {
		r.err = fmt.Errorf("writing frame stats: %w", err)
	}
}

// Err returns the first write error.
func (r *Recorder) Err() error {
	return r.err
}

// Summary returns aggregates over every recorded frame.
func (r *Recorder) Summary() Summary {
	s := Summary{
		Frames:         r.frames,
		MaxConnections: r.maxConns,
		MaxFrameTime:   r.maxElapsed,
	}
	if r.frames > 0 {
		s.AvgConnections = float64(r.connections) / float64(r.frames)
		s.AvgFrameTime = r.elapsed / time.Duration(r.frames)
	}
	return s
}

// ReadRecords parses CSV written by a Recorder.
func ReadRecords(in io.Reader) ([]FrameRecord, error) {
	var records []FrameRecord
	if err := gocsv.Unmarshal(in, &records); err != nil {
		return nil, fmt.Errorf("reading frame stats: %w", err)
	}
	return records, nil
}
