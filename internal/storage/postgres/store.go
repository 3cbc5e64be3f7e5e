package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sparkify/internal/catalog"
	"sparkify/internal/record"
	"sparkify/internal/storage"
)

func init() {
	storage.Register("postgres", New)
}

// Store implements storage.Store on a single pgx connection.
//
// A pool would let statements of one file land on different sessions, so the
// backend holds exactly one *pgx.Conn and at most one open pgx.Tx.
type Store struct {
	conn *pgx.Conn
	tx   pgx.Tx
}

// New connects using cfg.DSN. Both keyword ("host=... dbname=...") and URL
// DSNs are accepted by pgx.
func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	conn, err := pgx.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Dialect() catalog.Dialect { return catalog.Postgres }

func (s *Store) begin(ctx context.Context) (pgx.Tx, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	s.tx = tx
	return tx, nil
}

func (s *Store) Insert(ctx context.Context, t catalog.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, part := range storage.Chunk(catalog.Postgres, t, rows) {
		args, err := storage.Flatten(part, len(t.Columns))
		if err != nil {
			return total, fmt.Errorf("insert %s: %w", t.Name, err)
		}
		tag, err := tx.Exec(ctx, catalog.Insert(catalog.Postgres, t, len(part)), args...)
		if err != nil {
			return total, fmt.Errorf("insert %s: %w", t.Name, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

func (s *Store) LookupSong(ctx context.Context, title, artist string, duration float64) (record.SongRef, bool, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return record.SongRef{}, false, err
	}

	var ref record.SongRef
	err = tx.QueryRow(ctx, catalog.SongSelect(catalog.Postgres), title, artist, duration).Scan(&ref.SongID, &ref.ArtistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.SongRef{}, false, nil
	}
	if err != nil {
		return record.SongRef{}, false, fmt.Errorf("song lookup: %w", err)
	}
	return ref, true, nil
}

func (s *Store) Exec(ctx context.Context, sql string, args ...any) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

func (s *Store) Query(ctx context.Context, sql string, args ...any) (storage.Rows, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.tx != nil {
		_ = s.tx.Rollback(ctx)
		s.tx = nil
	}
	return s.conn.Close(ctx)
}

var _ storage.Store = (*Store)(nil)
