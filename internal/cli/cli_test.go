package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sparkify/internal/catalog"
	"sparkify/internal/config"
	"sparkify/internal/logging"
	"sparkify/internal/record"
	"sparkify/internal/storage"
)

const (
	songJSON = `{"num_songs": 1, "artist_id": "AR1", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Band", "song_id": "SO1", "title": "Hit", "duration": 200.5, "year": 2001}`

	playHit  = `{"artist":"Band","auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":0,"lastName":"Lee","length":200.5,"level":"free","location":"Here, CA","method":"PUT","page":"NextSong","registration":1540919166796.0,"sessionId":7,"song":"Hit","status":200,"ts":1541106106796,"userAgent":"UA","userId":"10"}`
	playMiss = `{"artist":"Nobody","auth":"Logged In","firstName":"Bo","gender":"M","itemInSession":1,"lastName":"Ng","length":12.0,"level":"paid","location":"There, NY","method":"PUT","page":"NextSong","registration":1540919166796.0,"sessionId":8,"song":"Unknown","status":200,"ts":1541106352796,"userAgent":"UA2","userId":"11"}`
	homeLine = `{"artist":null,"auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":2,"lastName":"Lee","length":null,"level":"free","location":"Here, CA","method":"GET","page":"Home","registration":1540919166796.0,"sessionId":7,"song":null,"status":200,"ts":1541106496796,"userAgent":"UA","userId":"10"}`
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// dataset lays out one song file and one log file and returns a config
// pointing a SQLite database and both roots into dir.
func dataset(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song_data", "A", "B", "TRA.json"), songJSON)
	writeFile(t, filepath.Join(dir, "log_data", "2018", "11", "2018-11-01-events.json"),
		strings.Join([]string{playHit, homeLine, playMiss}, "\n")+"\n")

	cfg := config.Default()
	cfg.Database = config.Database{Kind: "sqlite", DSN: filepath.Join(dir, "sparkify.db")}
	cfg.SongDataDir = filepath.Join(dir, "song_data")
	cfg.LogDataDir = filepath.Join(dir, "log_data")
	return cfg
}

type harness struct {
	deps   deps
	logs   *bytes.Buffer
	stdout *bytes.Buffer
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()

	h := &harness{logs: &bytes.Buffer{}, stdout: &bytes.Buffer{}}
	h.deps = deps{
		loadConfig: func() (config.Config, error) { return cfg, nil },
		openStore:  storage.Open,
		newLogger: func(level, format string) (*logging.Logger, error) {
			return logging.NewWriter(h.logs, level, format)
		},
		initMetrics: initMetrics,
		newRunID:    func() string { return "run-1" },
		stdout:      h.stdout,
	}
	return h
}

func (h *harness) run(args ...string) error {
	cmd := newRootCmd(h.deps)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

func countRows(t *testing.T, cfg config.Config, table string) int {
	t.Helper()

	ctx := context.Background()
	st, err := storage.Open(ctx, storage.Config{Kind: cfg.Database.Kind, DSN: cfg.Database.DSN})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close(ctx)

	rows, err := st.Query(ctx, "SELECT COUNT(*) FROM "+catalog.SQLite.Ident(table))
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatalf("count %s: no row", table)
	}
	var n int
	if err := rows.Scan(&n); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return n
}

func TestResetLoadReport(t *testing.T) {
	t.Parallel()

	for _, batch := range []int{1, 3} {
		batch := batch
		t.Run(fmt.Sprintf("batch_%d", batch), func(t *testing.T) {
			t.Parallel()

			cfg := dataset(t)
			cfg.BatchSize = batch
			h := newHarness(t, cfg)

			if err := h.run("reset"); err != nil {
				t.Fatalf("reset: %v", err)
			}
			if err := h.run(); err != nil {
				t.Fatalf("load: %v\nlogs:\n%s", err, h.logs)
			}

			logs := h.logs.String()
			for _, want := range []string{
				"1 files found in " + cfg.SongDataDir,
				"1 files found in " + cfg.LogDataDir,
				"1/1 files processed.",
				"run-1",
			} {
				if !strings.Contains(logs, want) {
					t.Fatalf("logs missing %q:\n%s", want, logs)
				}
			}

			for table, want := range map[string]int{"songs": 1, "artists": 1, "time": 2, "users": 2, "songplays": 2} {
				if got := countRows(t, cfg, table); got != want {
					t.Fatalf("%s rows=%d, want %d", table, got, want)
				}
			}

			if err := h.run("report"); err != nil {
				t.Fatalf("report: %v", err)
			}
			out := h.stdout.String()
			for _, want := range []string{"Top 10 songs by plays", "Hit", "Users by subscription level"} {
				if !strings.Contains(out, want) {
					t.Fatalf("report missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestLoad_WithoutResetFails(t *testing.T) {
	t.Parallel()

	cfg := dataset(t)
	h := newHarness(t, cfg)

	err := h.run()
	if err == nil {
		t.Fatalf("expected error loading into a database with no tables")
	}
	if ExitCode(err) != ExitError {
		t.Fatalf("exit code=%d, want %d", ExitCode(err), ExitError)
	}
	if !strings.Contains(h.logs.String(), "ERROR") {
		t.Fatalf("error was not logged:\n%s", h.logs)
	}
}

type fakeStore struct {
	commits int
	closed  bool
}

func (f *fakeStore) Dialect() catalog.Dialect { return catalog.SQLite }
func (f *fakeStore) Insert(context.Context, catalog.Table, [][]any) (int64, error) {
	return 0, nil
}
func (f *fakeStore) LookupSong(context.Context, string, string, float64) (record.SongRef, bool, error) {
	return record.SongRef{}, false, nil
}
func (f *fakeStore) Exec(context.Context, string, ...any) error { return nil }
func (f *fakeStore) Query(context.Context, string, ...any) (storage.Rows, error) {
	return nil, errors.New("not supported")
}
func (f *fakeStore) Commit(context.Context) error { f.commits++; return nil }
func (f *fakeStore) Close(context.Context) error  { f.closed = true; return nil }

func TestFlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	songs, logs := t.TempDir(), t.TempDir()
	h := newHarness(t, config.Default())

	var got storage.Config
	fs := &fakeStore{}
	h.deps.openStore = func(_ context.Context, cfg storage.Config) (storage.Store, error) {
		got = cfg
		return fs, nil
	}

	err := h.run("--db-kind", "sqlite", "--dsn", "file:flag.db", "--song-data", songs, "--log-data", logs, "--log-level", "debug")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.Kind != "sqlite" || got.DSN != "file:flag.db" {
		t.Fatalf("store config=%+v", got)
	}
	if !fs.closed {
		t.Fatalf("store not closed after successful run")
	}
	out := h.logs.String()
	if !strings.Contains(out, "0 files found in "+songs) || !strings.Contains(out, "DEBUG") {
		t.Fatalf("logs:\n%s", out)
	}
}

func TestLoadError_LeavesStoreOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "songs", "bad.json"), "{not json")

	cfg := config.Default()
	cfg.SongDataDir = filepath.Join(dir, "songs")
	h := newHarness(t, cfg)

	fs := &fakeStore{}
	h.deps.openStore = func(context.Context, storage.Config) (storage.Store, error) { return fs, nil }

	err := h.run()
	if err == nil {
		t.Fatalf("expected error for malformed song file")
	}
	if fs.closed {
		t.Fatalf("store closed on failure")
	}
	if fs.commits != 0 {
		t.Fatalf("commits=%d, want 0", fs.commits)
	}
}

func TestMissingRootsLoadNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.SongDataDir = filepath.Join(dir, "no_songs")
	cfg.LogDataDir = filepath.Join(dir, "no_logs")
	h := newHarness(t, cfg)

	fs := &fakeStore{}
	h.deps.openStore = func(context.Context, storage.Config) (storage.Store, error) { return fs, nil }

	if err := h.run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !fs.closed || fs.commits != 0 {
		t.Fatalf("closed=%v commits=%d", fs.closed, fs.commits)
	}
	logs := h.logs.String()
	for _, root := range []string{cfg.SongDataDir, cfg.LogDataDir} {
		if !strings.Contains(logs, "0 files found in "+root) {
			t.Fatalf("logs missing count for %s:\n%s", root, logs)
		}
	}
}

func TestFlagOverridesInvalidConfigValue(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.BatchSize = 0
	cfg.SongDataDir, cfg.LogDataDir = t.TempDir(), t.TempDir()
	h := newHarness(t, cfg)

	fs := &fakeStore{}
	h.deps.openStore = func(context.Context, storage.Config) (storage.Store, error) { return fs, nil }

	if err := h.run("--batch-size", "5"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !fs.closed {
		t.Fatalf("store not closed")
	}

	if err := h.run(); ExitCode(err) != ExitError {
		t.Fatalf("without the flag: err=%v, want validation error", err)
	}
}

func TestUsageAndConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "unknown_flag", args: []string{"--nope"}, wantCode: ExitUsage},
		{name: "extra_arg", args: []string{"bogus"}, wantCode: ExitUsage},
		{name: "reset_extra_arg", args: []string{"reset", "x"}, wantCode: ExitUsage},
		{name: "bad_flag_value", args: []string{"--batch-size", "many"}, wantCode: ExitUsage},
		{name: "invalid_batch_size", args: []string{"--batch-size", "0"}, wantCode: ExitError},
		{name: "invalid_kind", args: []string{"--db-kind", "oracle"}, wantCode: ExitError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, config.Default())
			h.deps.openStore = func(context.Context, storage.Config) (storage.Store, error) {
				t.Fatalf("openStore must not be called")
				return nil, nil
			}

			err := h.run(tc.args...)
			if code := ExitCode(err); code != tc.wantCode {
				t.Fatalf("exit code=%d, want %d (err=%v)", code, tc.wantCode, err)
			}
		})
	}
}

func TestConfigLoadError(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.Config{})
	h.deps.loadConfig = func() (config.Config, error) { return config.Config{}, errors.New("parse sparkify.yaml: boom") }

	err := h.run()
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err=%v, want config error", err)
	}
	if ExitCode(err) != ExitError {
		t.Fatalf("exit code=%d", ExitCode(err))
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("x"), ExitError},
		{usageError{errors.New("bad flag")}, ExitUsage},
		{fmt.Errorf("wrapped: %w", usageError{errors.New("bad")}), ExitUsage},
	}
	for _, tc := range tests {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v)=%d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestInitMetrics(t *testing.T) {
	t.Parallel()

	log, err := logging.NewWriter(io.Discard, "debug", "console")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	for _, backend := range []string{"", "none", "statsd"} {
		stop, err := initMetrics(context.Background(), config.Metrics{Backend: backend}, "run-1", log)
		if err != nil {
			t.Fatalf("backend %q: %v", backend, err)
		}
		stop()
	}

	// An invalid tag makes the datadog backend fail to start; the run carries
	// on with metrics disabled.
	stop, err := initMetrics(context.Background(), config.Metrics{Backend: "datadog", Tags: []string{"1bad"}}, "run-1", log)
	if err != nil {
		t.Fatalf("datadog with bad tags: %v", err)
	}
	stop()
}
