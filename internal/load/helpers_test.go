package load

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sparkify/internal/catalog"
	"sparkify/internal/storage"
	_ "sparkify/internal/storage/sqlite"
)

const (
	songHit = `{"num_songs": 1, "artist_id": "AR1", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Band", "song_id": "SO1", "title": "Hit", "duration": 200.5, "year": 2001}`
	songB   = `{"num_songs": 1, "artist_id": "AR2", "artist_latitude": 35.1, "artist_longitude": -90.0, "artist_location": "Memphis, TN", "artist_name": "Other", "song_id": "SO2", "title": "B-Side", "duration": 99.0, "year": 0}`

	playHit  = `{"artist":"Band","auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":0,"lastName":"Lee","length":200.5,"level":"free","location":"Here, CA","method":"PUT","page":"NextSong","registration":1540919166796.0,"sessionId":7,"song":"Hit","status":200,"ts":1541106106796,"userAgent":"UA","userId":"10"}`
	playMiss = `{"artist":"Nobody","auth":"Logged In","firstName":"Bo","gender":"M","itemInSession":1,"lastName":"Ng","length":12.0,"level":"paid","location":"There, NY","method":"PUT","page":"NextSong","registration":1540919166796.0,"sessionId":8,"song":"Unknown","status":200,"ts":1541106352796,"userAgent":"UA2","userId":11}`
	homeLine = `{"artist":null,"auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":2,"lastName":"Lee","length":null,"level":"free","location":"Here, CA","method":"GET","page":"Home","registration":1540919166796.0,"sessionId":7,"song":null,"status":200,"ts":1541106496796,"userAgent":"UA","userId":"10"}`
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()

	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func lines(ls ...string) string { return strings.Join(ls, "\n") + "\n" }

// openStore opens a fresh SQLite database with the five tables created.
func openStore(t *testing.T) storage.Store {
	t.Helper()

	ctx := context.Background()
	st, err := storage.Open(ctx, storage.Config{Kind: "sqlite", DSN: filepath.Join(t.TempDir(), "sparkify.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(ctx) })

	stmts, err := catalog.Schema(catalog.SQLite)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, s := range stmts {
		if err := st.Exec(ctx, s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	if err := st.Commit(ctx); err != nil {
		t.Fatalf("commit schema: %v", err)
	}
	return st
}

func queryInt(t *testing.T, st storage.Store, q string) int {
	t.Helper()

	rows, err := st.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("query %q: %v", q, err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatalf("query %q: no rows (err=%v)", q, rows.Err())
	}
	var n int
	if err := rows.Scan(&n); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return n
}

func count(t *testing.T, st storage.Store, table string) int {
	t.Helper()
	return queryInt(t, st, "SELECT COUNT(*) FROM "+catalog.SQLite.Ident(table))
}

type songplayRef struct {
	userID   string
	songID   sql.NullString
	artistID sql.NullString
}

func songplayRefs(t *testing.T, st storage.Store) []songplayRef {
	t.Helper()

	rows, err := st.Query(context.Background(), `SELECT "user_id", "song_id", "artist_id" FROM "songplays" ORDER BY "songplay_id"`)
	if err != nil {
		t.Fatalf("query songplays: %v", err)
	}
	defer rows.Close()

	var out []songplayRef
	for rows.Next() {
		var r songplayRef
		if err := rows.Scan(&r.userID, &r.songID, &r.artistID); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return out
}

// recordingLogger keeps Infof lines.
type recordingLogger struct {
	info  []string
	debug int
}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.info = append(l.info, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(string, ...any) { l.debug++ }
