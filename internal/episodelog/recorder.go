// Package episodelog appends one line per finished episode to a plain-text log.
package episodelog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"socialnav-sim/internal/common"
	"socialnav-sim/internal/simulation"
)

const header = "Episode,Steps,Reward,Route"

// Recorder writes episode summaries. It is not safe for concurrent use.
type Recorder struct {
	w      *bufio.Writer
	closer io.Closer
}

// Open appends to the log file at path, creating it and its directory if
// needed, and writes the run header.
func Open(path, runID string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open episode log: %w", err)
	}
	r, err := New(fh, runID)
	if err != nil {
		fh.Close()
		return nil, err
	}
	r.closer = fh
	return r, nil
}

// New writes the run header to w and returns a recorder appending to it.
func New(w io.Writer, runID string) (*Recorder, error) {
	r := &Recorder{w: bufio.NewWriter(w)}
	if _, err := fmt.Fprintf(r.w, "Run:%s\n%s\n", runID, header); err != nil {
		return nil, err
	}
	return r, r.w.Flush()
}

// Record writes the summary of a terminal step.
func (r *Recorder) Record(info simulation.Info) error {
	_, err := fmt.Fprintf(r.w, "Episode:%d Steps:%d Reward:%s Route:%s\n",
		info.Episode, info.NumSteps, formatFloat(info.TotalReward), FormatRoute(info.Route))
	if err != nil {
		return err
	}
	return r.w.Flush()
}

// RecordSmoothed writes the final smoothed route of a run.
func (r *Recorder) RecordSmoothed(route []common.Vector) error {
	if _, err := fmt.Fprintf(r.w, "Final Smooth Route: %s\n", FormatSmoothedRoute(route)); err != nil {
		return err
	}
	return r.w.Flush()
}

// Close flushes and closes the underlying file, if the recorder owns one.
func (r *Recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		return err
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// FormatRoute renders a route as [[x, y], [x, y], ...].
func FormatRoute(route []common.Vector) string {
	return formatPoints(route, '[', ']')
}

// FormatSmoothedRoute renders a route as [(x, y), (x, y), ...], the pairing
// used for smoothed routes.
func FormatSmoothedRoute(route []common.Vector) string {
	return formatPoints(route, '(', ')')
}

func formatPoints(route []common.Vector, left, right byte) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, p := range route {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte(left)
		sb.WriteString(formatFloat(p.X))
		sb.WriteString(", ")
		sb.WriteString(formatFloat(p.Y))
		sb.WriteByte(right)
	}
	sb.WriteByte(']')
	return sb.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
