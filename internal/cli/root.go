// Package cli wires configuration, logging, metrics and storage into the
// sparkify commands.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sparkify/internal/config"
	"sparkify/internal/logging"
	"sparkify/internal/storage"

	// every backend is compiled in; database.kind picks one at runtime.
	_ "sparkify/internal/storage/all"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// deps are the side-effecting seams of the commands. Tests replace them.
type deps struct {
	loadConfig  func() (config.Config, error)
	openStore   func(ctx context.Context, cfg storage.Config) (storage.Store, error)
	newLogger   func(level, format string) (*logging.Logger, error)
	initMetrics func(ctx context.Context, m config.Metrics, runID string, log *logging.Logger) (func(), error)
	newRunID    func() string
	stdout      io.Writer
}

func defaultDeps() deps {
	return deps{
		loadConfig: func() (config.Config, error) {
			_ = godotenv.Load()
			return config.Load(".", os.Getenv)
		},
		openStore:   storage.Open,
		newLogger:   logging.New,
		initMetrics: initMetrics,
		newRunID:    uuid.NewString,
		stdout:      os.Stdout,
	}
}

// Execute runs the sparkify command line.
func Execute() error {
	return newRootCmd(defaultDeps()).ExecuteContext(context.Background())
}

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ue usageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitError
}

type flagValues struct {
	dbKind         string
	dsn            string
	songData       string
	logData        string
	batchSize      int
	logLevel       string
	metricsBackend string
}

func newRootCmd(d deps) *cobra.Command {
	var fv flagValues

	root := &cobra.Command{
		Use:   "sparkify",
		Short: "Load song metadata and listening logs into the sparkify tables",
		Long: `sparkify reads JSON song files and newline-delimited JSON activity logs
and loads them into the songs, artists, time, users and songplays tables.

With no subcommand it runs the full load: every song file first, then every
log file, committing after each file. The tables must already exist; see
"sparkify reset".

Settings come from defaults, sparkify.yaml, the environment (.env included)
and finally flags.

Exit Codes:
  0  - Success
  1  - Load, database or configuration error
  2  - CLI usage error (invalid arguments or flags)`,
		Args:         noArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, d, fv, runLoad)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&fv.dbKind, "db-kind", "", "database backend: postgres, sqlite or mssql")
	pf.StringVar(&fv.dsn, "dsn", "", "database connection string")
	pf.StringVar(&fv.songData, "song-data", "", "root directory of song files")
	pf.StringVar(&fv.logData, "log-data", "", "root directory of log files")
	pf.IntVar(&fv.batchSize, "batch-size", 0, "rows per time/users insert in the log phase")
	pf.StringVar(&fv.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&fv.metricsBackend, "metrics-backend", "", "metrics backend: none or datadog")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(newResetCmd(d, &fv), newReportCmd(d, &fv))
	return root
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cmd *cobra.Command, fv flagValues, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("db-kind") {
		cfg.Database.Kind = fv.dbKind
	}
	if fs.Changed("dsn") {
		cfg.Database.DSN = fv.dsn
	}
	if fs.Changed("song-data") {
		cfg.SongDataDir = fv.songData
	}
	if fs.Changed("log-data") {
		cfg.LogDataDir = fv.logData
	}
	if fs.Changed("batch-size") {
		cfg.BatchSize = fv.batchSize
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = fv.logLevel
	}
	if fs.Changed("metrics-backend") {
		cfg.Metrics.Backend = fv.metricsBackend
	}
	return cfg.Validate()
}
