package load

import (
	"context"
	"fmt"
	"os"

	"sparkify/internal/catalog"
	"sparkify/internal/metrics"
	"sparkify/internal/record"
	"sparkify/internal/storage"
)

// LoaderFunc loads one file through st. It must not commit; the Driver does.
type LoaderFunc func(ctx context.Context, st storage.Store, path string) error

// SongFile loads one song metadata file: a songs row, then an artists row.
//
// The file holds a single JSON object. Values are written verbatim; a
// duplicate song_id or artist_id fails on the primary key.
func SongFile(ctx context.Context, st storage.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load song file %s: %w", path, err)
	}
	defer f.Close()

	sf, err := record.DecodeSongFile(f)
	if err != nil {
		return fmt.Errorf("load song file %s: %w", path, err)
	}

	if err := insert(ctx, st, catalog.Songs, [][]any{songRow(sf.Song())}); err != nil {
		return fmt.Errorf("load song file %s: %w", path, err)
	}
	if err := insert(ctx, st, catalog.Artists, [][]any{artistRow(sf.Artist())}); err != nil {
		return fmt.Errorf("load song file %s: %w", path, err)
	}
	return nil
}

func insert(ctx context.Context, st storage.Store, t catalog.Table, rows [][]any) error {
	n, err := st.Insert(ctx, t, rows)
	if err != nil {
		return err
	}
	metrics.IncCounter(metrics.RowsTotal, float64(n), metrics.Labels{"table": t.Name})
	return nil
}
