package catalog

import (
	"fmt"
	"strings"
)

// Table names a destination table and the column order its insert binds.
type Table struct {
	Name    string
	Columns []string
}

var (
	Songs = Table{
		Name:    "songs",
		Columns: []string{"song_id", "title", "artist_id", "year", "duration"},
	}
	Artists = Table{
		Name:    "artists",
		Columns: []string{"artist_id", "name", "location", "latitude", "longitude"},
	}
	Time = Table{
		Name:    "time",
		Columns: []string{"start_time", "hour", "day", "week", "month", "year", "weekday"},
	}
	Users = Table{
		Name:    "users",
		Columns: []string{"user_id", "first_name", "last_name", "gender", "level"},
	}
	// Songplays omits songplay_id; the store generates it.
	Songplays = Table{
		Name:    "songplays",
		Columns: []string{"start_time", "user_id", "level", "song_id", "artist_id", "session_id", "location", "user_agent"},
	}
)

// Tables lists the destination tables in load order.
func Tables() []Table {
	return []Table{Songs, Artists, Time, Users, Songplays}
}

// Insert renders an INSERT for rows rows of t.
//
// rows == 1 gives the single-row template used for row-at-a-time loads.
// Placeholders are numbered left to right, row-major, so args must be the
// rows flattened in the same order.
func Insert(d Dialect, t Table, rows int) string {
	if rows < 1 {
		rows = 1
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.Ident(t.Name))
	b.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Ident(c))
	}
	b.WriteString(") VALUES ")

	p := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range t.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(p))
			p++
		}
		b.WriteString(")")
	}
	return b.String()
}

// MaxRowsPerInsert is how many rows of t fit in one statement for d.
func MaxRowsPerInsert(d Dialect, t Table) int {
	if len(t.Columns) == 0 {
		return 1
	}
	n := d.MaxParams() / len(t.Columns)
	if n < 1 {
		return 1
	}
	return n
}

// SongSelect resolves (song_id, artist_id) from an exact (title, artist
// name, duration) match. Binds: title, artist name, duration.
func SongSelect(d Dialect) string {
	q := d.Ident
	return fmt.Sprintf(
		"SELECT s.%s, s.%s FROM %s s JOIN %s a ON s.%s = a.%s WHERE s.%s = %s AND a.%s = %s AND s.%s = %s",
		q("song_id"), q("artist_id"),
		q(Songs.Name), q(Artists.Name),
		q("artist_id"), q("artist_id"),
		q("title"), d.Placeholder(1),
		q("name"), d.Placeholder(2),
		q("duration"), d.Placeholder(3),
	)
}
