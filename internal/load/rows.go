package load

import "sparkify/internal/record"

// Row builders flatten records into argument slices aligned with the
// catalog.Table column lists. Nil pointers become untyped nil so every driver
// binds SQL NULL.

func songRow(s record.Song) []any {
	return []any{s.SongID, s.Title, s.ArtistID, s.Year, s.Duration}
}

func artistRow(a record.Artist) []any {
	return []any{a.ArtistID, a.Name, deref(a.Location), deref(a.Latitude), deref(a.Longitude)}
}

func timeRow(t record.TimeRow) []any {
	return []any{t.Start, t.Hour, t.Day, t.Week, t.Month, t.Year, t.Weekday}
}

func userRow(u record.User) []any {
	return []any{u.UserID, deref(u.FirstName), deref(u.LastName), deref(u.Gender), u.Level}
}

func songplayRow(p record.Songplay) []any {
	var songID, artistID any
	if p.Ref != nil {
		songID, artistID = p.Ref.SongID, p.Ref.ArtistID
	}
	return []any{p.Start, p.UserID, p.Level, songID, artistID, p.SessionID, deref(p.Location), deref(p.UserAgent)}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
