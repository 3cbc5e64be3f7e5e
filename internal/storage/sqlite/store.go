package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"sparkify/internal/catalog"
	"sparkify/internal/storage"
)

func init() {
	storage.Register("sqlite", New)
}

// New opens an SQLite database through modernc.org/sqlite.
//
// cfg.DSN is a file path or a modernc DSN such as "file:sparkify.db?_pragma=busy_timeout(5000)".
// Timestamps are written as time.Time and stored by the driver as text.
func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlite: empty DSN")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return storage.NewSQLStore(db, catalog.SQLite), nil
}
