package cli

import (
	"context"

	"sparkify/internal/load"
	"sparkify/internal/metrics"
)

// runLoad processes the song root and then the log root. Buffered metrics
// are flushed after each phase.
func runLoad(ctx context.Context, s *session) error {
	logFn := load.LogFile
	if s.cfg.BatchSize > 1 {
		logFn = load.LogFileBatched(s.cfg.BatchSize)
	}

	phases := []struct {
		name string
		root string
		fn   load.LoaderFunc
	}{
		{"song", s.cfg.SongDataDir, load.SongFile},
		{"log", s.cfg.LogDataDir, logFn},
	}

	for _, p := range phases {
		d := load.Driver{Store: s.store, Logger: s.log, Phase: p.name}
		if _, err := d.Process(ctx, p.root, p.fn); err != nil {
			return err
		}
		if err := metrics.Flush(); err != nil {
			s.log.Warnf("metrics: flush after %s phase: %v", p.name, err)
		}
	}
	return nil
}
