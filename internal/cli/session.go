package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sparkify/internal/config"
	"sparkify/internal/logging"
	"sparkify/internal/storage"
)

// session is what every command runs with once settings are resolved.
type session struct {
	cfg   config.Config
	log   *logging.Logger
	store storage.Store
	deps  deps
}

type action func(ctx context.Context, s *session) error

// withSession resolves config, builds the logger and metrics backend, opens
// the store and runs fn.
//
// The store is closed only when fn succeeds. On failure the error is logged
// and returned; the open transaction is left to die with the process.
func withSession(cmd *cobra.Command, d deps, fv flagValues, fn action) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := d.loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, fv, &cfg); err != nil {
		return err
	}

	base, err := d.newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer base.Sync()

	runID := d.newRunID()
	log := base.With("run_id", runID)

	stopMetrics, err := d.initMetrics(ctx, cfg.Metrics, runID, log)
	if err != nil {
		log.Errorf("%v", err)
		return err
	}
	defer stopMetrics()

	dsn, err := cfg.Database.Resolve()
	if err != nil {
		log.Errorf("%v", err)
		return err
	}

	st, err := d.openStore(ctx, storage.Config{Kind: cfg.Database.Kind, DSN: dsn})
	if err != nil {
		log.Errorf("open %s store: %v", cfg.Database.Kind, err)
		return fmt.Errorf("open %s store: %w", cfg.Database.Kind, err)
	}

	s := &session{cfg: cfg, log: log, store: st, deps: d}
	if err := fn(ctx, s); err != nil {
		log.Errorf("%v", err)
		return err
	}
	return st.Close(ctx)
}
