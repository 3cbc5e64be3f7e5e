// Package record defines the source records read from song and log files and
// the destination rows derived from them.
package record

import (
	"errors"
	"time"
)

// ErrMissingField is wrapped by decode errors when a required key is absent.
// Match with errors.Is.
var ErrMissingField = errors.New("missing required field")

// NextSong is the page value that marks a song play event.
const NextSong = "NextSong"

// SongFile is one song metadata record. Song and artist fields share a file.
type SongFile struct {
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	ArtistID        string   `json:"artist_id"`
	Year            int      `json:"year"`
	Duration        float64  `json:"duration"`
	ArtistName      string   `json:"artist_name"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
}

// Song is a songs row.
type Song struct {
	SongID   string
	Title    string
	ArtistID string
	Year     int
	Duration float64
}

// Artist is an artists row.
type Artist struct {
	ArtistID  string
	Name      string
	Location  *string
	Latitude  *float64
	Longitude *float64
}

// Song returns the song subset of f.
func (f SongFile) Song() Song {
	return Song{
		SongID:   f.SongID,
		Title:    f.Title,
		ArtistID: f.ArtistID,
		Year:     f.Year,
		Duration: f.Duration,
	}
}

// Artist returns the artist subset of f.
func (f SongFile) Artist() Artist {
	return Artist{
		ArtistID:  f.ArtistID,
		Name:      f.ArtistName,
		Location:  f.ArtistLocation,
		Latitude:  f.ArtistLatitude,
		Longitude: f.ArtistLongitude,
	}
}

// LogEvent is one line of an activity log.
//
// Nullable keys are pointers: non-play events carry null song, artist and
// length in the source data.
type LogEvent struct {
	Page      string   `json:"page"`
	TS        int64    `json:"ts"`
	UserID    UserID   `json:"userId"`
	FirstName *string  `json:"firstName"`
	LastName  *string  `json:"lastName"`
	Gender    *string  `json:"gender"`
	Level     string   `json:"level"`
	Song      *string  `json:"song"`
	Artist    *string  `json:"artist"`
	Length    *float64 `json:"length"`
	SessionID int64    `json:"sessionId"`
	Location  *string  `json:"location"`
	UserAgent *string  `json:"userAgent"`
}

// Start is the event timestamp as a UTC time.
func (e LogEvent) Start() time.Time {
	return time.UnixMilli(e.TS).UTC()
}

// User returns the users row carried by e.
func (e LogEvent) User() User {
	return User{
		UserID:    string(e.UserID),
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Gender:    e.Gender,
		Level:     e.Level,
	}
}

// Lookup returns the (title, artist, duration) triple used to resolve a
// songplay reference. ok is false when any part is null; such an event can
// never match.
func (e LogEvent) Lookup() (title, artist string, duration float64, ok bool) {
	if e.Song == nil || e.Artist == nil || e.Length == nil {
		return "", "", 0, false
	}
	return *e.Song, *e.Artist, *e.Length, true
}

// Songplay builds the songplays row for e with the resolved reference.
// ref is nil when no song matched.
func (e LogEvent) Songplay(ref *SongRef) Songplay {
	return Songplay{
		Start:     e.Start(),
		UserID:    string(e.UserID),
		Level:     e.Level,
		Ref:       ref,
		SessionID: e.SessionID,
		Location:  e.Location,
		UserAgent: e.UserAgent,
	}
}

// User is a users row.
type User struct {
	UserID    string
	FirstName *string
	LastName  *string
	Gender    *string
	Level     string
}

// SongRef is a resolved (song_id, artist_id) pair. The pair is either wholly
// present or wholly absent; callers model absence as a nil *SongRef.
type SongRef struct {
	SongID   string
	ArtistID string
}

// Songplay is a songplays row. songplay_id is assigned by the store.
type Songplay struct {
	Start     time.Time
	UserID    string
	Level     string
	Ref       *SongRef
	SessionID int64
	Location  *string
	UserAgent *string
}
