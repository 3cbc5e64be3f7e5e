package load

import (
	"context"
	"fmt"
	"os"

	"sparkify/internal/catalog"
	"sparkify/internal/record"
	"sparkify/internal/storage"
)

// LogFile loads one activity log row by row. See LogFileBatched.
func LogFile(ctx context.Context, st storage.Store, path string) error {
	return loadLog(ctx, st, path, 1)
}

// LogFileBatched returns a loader that writes time and users rows with
// multi-row inserts of up to n rows. n <= 1 behaves like LogFile.
//
// Songplays are always written one at a time; each needs its own lookup.
func LogFileBatched(n int) LoaderFunc {
	if n < 1 {
		n = 1
	}
	return func(ctx context.Context, st storage.Store, path string) error {
		return loadLog(ctx, st, path, n)
	}
}

// loadLog keeps NextSong events and writes, in order: every time row, every
// users row, then per event a song lookup and a songplays row.
func loadLog(ctx context.Context, st storage.Store, path string, batch int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load log file %s: %w", path, err)
	}
	defer f.Close()

	plays, err := record.ReadPlays(f)
	if err != nil {
		return fmt.Errorf("load log file %s: %w", path, err)
	}
	if len(plays) == 0 {
		return nil
	}

	times := make([][]any, 0, len(plays))
	users := make([][]any, 0, len(plays))
	for _, ev := range plays {
		times = append(times, timeRow(record.NewTimeRow(ev.TS)))
		users = append(users, userRow(ev.User()))
	}

	if err := insertBatched(ctx, st, catalog.Time, times, batch); err != nil {
		return fmt.Errorf("load log file %s: %w", path, err)
	}
	if err := insertBatched(ctx, st, catalog.Users, users, batch); err != nil {
		return fmt.Errorf("load log file %s: %w", path, err)
	}

	for i, ev := range plays {
		ref, err := resolve(ctx, st, ev)
		if err != nil {
			return fmt.Errorf("load log file %s: play %d: %w", path, i+1, err)
		}
		if err := insert(ctx, st, catalog.Songplays, [][]any{songplayRow(ev.Songplay(ref))}); err != nil {
			return fmt.Errorf("load log file %s: play %d: %w", path, i+1, err)
		}
	}
	return nil
}

// resolve looks up the songplay reference for ev. Events with a null song,
// artist or length are not looked up.
func resolve(ctx context.Context, st storage.Store, ev record.LogEvent) (*record.SongRef, error) {
	title, artist, length, ok := ev.Lookup()
	if !ok {
		return nil, nil
	}
	ref, found, err := st.LookupSong(ctx, title, artist, length)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &ref, nil
}

func insertBatched(ctx context.Context, st storage.Store, t catalog.Table, rows [][]any, batch int) error {
	for start := 0; start < len(rows); start += batch {
		end := start + batch
		if end > len(rows) {
			end = len(rows)
		}
		if err := insert(ctx, st, t, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}
