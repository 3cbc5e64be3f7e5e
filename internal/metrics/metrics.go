// Package metrics is the process-wide metrics facade used by the load path.
//
// Code records through the package-level helpers; cmd wiring installs a real
// backend with SetBackend. Until then a nop backend swallows everything, so
// tests and library callers never need to configure metrics.
package metrics

import "sync"

// Labels are metric dimensions such as {"phase": "song"}.
type Labels map[string]string

// Backend receives metric observations.
//
// Implementations must be safe for concurrent use. Unknown metric names may
// be ignored.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

const (
	// FilesTotal counts files processed, labelled by phase and status.
	FilesTotal = "etl_files_total"
	// RowsTotal counts rows written, labelled by table.
	RowsTotal = "etl_rows_total"
	// CommitsTotal counts store commits.
	CommitsTotal = "etl_commits_total"
	// FileDurationSeconds observes per-file load+commit time, labelled by phase.
	FileDurationSeconds = "etl_file_duration_seconds"
)

type nop struct{}

func (nop) IncCounter(string, float64, Labels)       {}
func (nop) ObserveHistogram(string, float64, Labels) {}
func (nop) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nop{}
)

// SetBackend installs b as the process-wide backend. nil restores the nop.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nop{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter adds delta to the named counter on the current backend.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records value for the named histogram.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush asks the current backend to submit buffered data.
func Flush() error {
	return current().Flush()
}
