package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"sparkify/internal/catalog"
	"sparkify/internal/record"
)

// Config is the minimal configuration needed to open a Store.
//
// Edge cases:
//   - Kind must match a registered backend ("postgres", "sqlite", "mssql").
//   - DSN is passed through to the backend; validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Store is the explicit database handle the loaders write through.
//
// A Store wraps exactly one connection and one implicit transaction: the first
// statement after Open or Commit begins a transaction, and Commit ends it.
// Nothing is visible to other sessions until Commit. Stores are not safe for
// concurrent use; the load path is single-threaded.
type Store interface {
	// Dialect reports which SQL flavor statements must be rendered in.
	Dialect() catalog.Dialect

	// Insert writes rows into t, aligned with t.Columns. Rows are split into
	// as many statements as the backend's parameter limit requires.
	Insert(ctx context.Context, t catalog.Table, rows [][]any) (int64, error)

	// LookupSong resolves a songplay reference by exact title, artist name and
	// duration. ok is false when nothing matches; that is not an error.
	LookupSong(ctx context.Context, title, artist string, duration float64) (ref record.SongRef, ok bool, err error)

	// Exec runs a statement with no result set inside the current transaction.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query runs a read inside the current transaction.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Commit makes everything since the last Commit durable. With no open
	// transaction it is a no-op.
	Commit(ctx context.Context) error

	// Close rolls back any open transaction and releases the connection.
	// Treat Close as "call once".
	Close(ctx context.Context) error
}

// Rows is the subset of a result cursor that report code needs. It is
// satisfied by pgx.Rows and by the database/sql adapter in this package.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Factory opens a Store for cfg.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available to Open under kind.
//
// Call Register from an init() function in a backend package. Registering
// the same kind twice, an empty kind, or a nil factory panics.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Open constructs a Store using the registered backend factory.
//
// Errors:
//   - cfg.Kind is empty or not registered.
//   - Whatever error the backend factory returns (bad DSN, unreachable host).
func Open(ctx context.Context, cfg Config) (Store, error) {
	kind := normalizeKind(cfg.Kind)
	if kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%s (registered: %s)", cfg.Kind, strings.Join(Kinds(), ", "))
	}
	return f(ctx, cfg)
}

// Kinds lists registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// normalizeKind maps dialect aliases onto their registry kind. Unknown kinds
// pass through lowercased so Open can report them.
func normalizeKind(s string) string {
	if d, err := catalog.ParseDialect(s); err == nil {
		return d.String()
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Chunk splits rows into slices that fit a single insert statement for t.
func Chunk(d catalog.Dialect, t catalog.Table, rows [][]any) [][][]any {
	if len(rows) == 0 {
		return nil
	}
	size := catalog.MaxRowsPerInsert(d, t)

	out := make([][][]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

// Flatten returns rows as one row-major argument list and checks that every
// row has width columns.
func Flatten(rows [][]any, width int) ([]any, error) {
	args := make([]any, 0, len(rows)*width)
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("storage: row %d has %d values, want %d", i, len(r), width)
		}
		args = append(args, r...)
	}
	return args, nil
}
