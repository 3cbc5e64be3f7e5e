package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sparkify/internal/catalog"
	"sparkify/internal/record"
)

// SQLStore implements Store on database/sql. The sqlite and mssql backends
// wrap it; they differ only in driver, DSN handling and Dialect.
//
// The pool is pinned to a single connection so the store behaves like one
// session, matching the Postgres backend.
type SQLStore struct {
	db      *sql.DB
	dialect catalog.Dialect
	tx      *sql.Tx
}

// NewSQLStore wraps an open *sql.DB.
func NewSQLStore(db *sql.DB, d catalog.Dialect) *SQLStore {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &SQLStore{db: db, dialect: d}
}

func (s *SQLStore) Dialect() catalog.Dialect { return s.dialect }

func (s *SQLStore) begin(ctx context.Context) (*sql.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	s.tx = tx
	return tx, nil
}

func (s *SQLStore) Insert(ctx context.Context, t catalog.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, part := range Chunk(s.dialect, t, rows) {
		args, err := Flatten(part, len(t.Columns))
		if err != nil {
			return total, fmt.Errorf("insert %s: %w", t.Name, err)
		}
		res, err := tx.ExecContext(ctx, catalog.Insert(s.dialect, t, len(part)), args...)
		if err != nil {
			return total, fmt.Errorf("insert %s: %w", t.Name, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func (s *SQLStore) LookupSong(ctx context.Context, title, artist string, duration float64) (record.SongRef, bool, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return record.SongRef{}, false, err
	}

	var ref record.SongRef
	err = tx.QueryRowContext(ctx, catalog.SongSelect(s.dialect), title, artist, duration).Scan(&ref.SongID, &ref.ArtistID)
	if errors.Is(err, sql.ErrNoRows) {
		return record.SongRef{}, false, nil
	}
	if err != nil {
		return record.SongRef{}, false, fmt.Errorf("song lookup: %w", err)
	}
	return ref, true, nil
}

func (s *SQLStore) Exec(ctx context.Context, query string, args ...any) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

func (s *SQLStore) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

func (s *SQLStore) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLStore) Close(ctx context.Context) error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

// sqlRows adapts *sql.Rows to Rows; Close drops the error like pgx does.
type sqlRows struct{ *sql.Rows }

func (r sqlRows) Close() { _ = r.Rows.Close() }

var _ Store = (*SQLStore)(nil)
