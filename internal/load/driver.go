// Package load turns song and log files into table rows and drives a loader
// over every file under a root, committing after each file.
package load

import (
	"context"
	"fmt"
	"time"

	"sparkify/internal/discover"
	"sparkify/internal/metrics"
	"sparkify/internal/storage"
)

// Logger is the logging surface the driver needs. *logging.Logger satisfies it.
type Logger interface {
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

// Driver applies a LoaderFunc to every .json file under a root.
type Driver struct {
	Store  storage.Store
	Logger Logger
	// Phase labels metrics ("song", "log"). Optional.
	Phase string
}

// Process discovers files under root, then for each file runs fn and commits.
//
// Progress is logged as "N files found in root" and then "i/N files
// processed." after every commit. The first failure aborts the run; files
// committed before it stay committed. The returned count is the number of
// files committed.
func (d Driver) Process(ctx context.Context, root string, fn LoaderFunc) (int, error) {
	log := d.Logger
	if log == nil {
		log = nopLogger{}
	}
	phase := d.Phase
	if phase == "" {
		phase = "unknown"
	}

	files, err := discover.JSONFiles(root)
	if err != nil {
		return 0, err
	}

	total := len(files)
	log.Infof("%d files found in %s", total, root)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		start := time.Now()
		log.Debugf("loading %s", path)

		if err := fn(ctx, d.Store, path); err != nil {
			metrics.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"phase": phase, "status": "error"})
			return i, err
		}
		if err := d.Store.Commit(ctx); err != nil {
			metrics.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"phase": phase, "status": "error"})
			return i, fmt.Errorf("commit %s: %w", path, err)
		}

		metrics.IncCounter(metrics.CommitsTotal, 1, nil)
		metrics.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"phase": phase, "status": "ok"})
		metrics.ObserveHistogram(metrics.FileDurationSeconds, time.Since(start).Seconds(), metrics.Labels{"phase": phase})

		log.Infof("%d/%d files processed.", i+1, total)
	}
	return total, nil
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}
