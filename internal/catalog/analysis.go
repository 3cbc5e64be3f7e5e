package catalog

import "fmt"

// Analysis is a read-only query over the loaded schema.
type Analysis struct {
	Name    string
	Title   string
	Columns []string
	SQL     string
}

// Analyses returns the reporting queries rendered for d.
func Analyses(d Dialect) []Analysis {
	q := d.Ident
	return []Analysis{
		{
			Name:    "top_songs",
			Title:   "Top 10 songs by plays",
			Columns: []string{"artist_id", "song_id", "title", "artist", "plays"},
			SQL: limit(d, 10, fmt.Sprintf(
				"SELECT %[1]s sp.%[2]s, sp.%[3]s, s.%[4]s, a.%[5]s, COUNT(*) AS %[6]s "+
					"FROM %[7]s sp JOIN %[8]s s ON s.%[3]s = sp.%[3]s JOIN %[9]s a ON s.%[2]s = a.%[2]s "+
					"GROUP BY sp.%[2]s, sp.%[3]s, s.%[4]s, a.%[5]s ORDER BY %[6]s DESC",
				top(d, 10), q("artist_id"), q("song_id"), q("title"), q("name"), q("plays"),
				q(Songplays.Name), q(Songs.Name), q(Artists.Name),
			)),
		},
		{
			Name:    "top_locations",
			Title:   "Top 10 locations with more than 100 plays",
			Columns: []string{"location", "plays"},
			SQL: limit(d, 10, fmt.Sprintf(
				"SELECT %[1]s %[2]s, COUNT(*) AS %[3]s FROM %[4]s GROUP BY %[2]s HAVING COUNT(*) > 100 ORDER BY %[3]s DESC",
				top(d, 10), q("location"), q("plays"), q(Songplays.Name),
			)),
		},
		{
			Name:    "plays_by_hour",
			Title:   "Plays by hour of day",
			Columns: []string{"hour", "plays"},
			SQL: fmt.Sprintf(
				"SELECT %[1]s, COUNT(*) AS %[2]s FROM %[3]s GROUP BY %[1]s ORDER BY %[1]s",
				q("hour"), q("plays"), q(Time.Name),
			),
		},
		{
			Name:    "users_by_level",
			Title:   "Users by subscription level",
			Columns: []string{"level", "users"},
			SQL: fmt.Sprintf(
				"SELECT %[1]s, COUNT(*) AS %[2]s FROM %[3]s GROUP BY %[1]s ORDER BY %[1]s",
				q("level"), q("users"), q(Users.Name),
			),
		},
	}
}

func top(d Dialect, n int) string {
	if d == SQLServer {
		return fmt.Sprintf("TOP %d", n)
	}
	return ""
}

func limit(d Dialect, n int, sql string) string {
	if d == SQLServer {
		return sql
	}
	return fmt.Sprintf("%s LIMIT %d", sql, n)
}
