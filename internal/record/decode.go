package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var songFileFields = []string{
	"song_id", "title", "artist_id", "year", "duration",
	"artist_name", "artist_location", "artist_latitude", "artist_longitude",
}

var playFields = []string{
	"ts", "userId", "firstName", "lastName", "gender", "level",
	"song", "artist", "length", "sessionId", "location", "userAgent",
}

// nonNullSongFields must be present and non-null; the song and artist rows
// are keyed on them.
var nonNullSongFields = []string{"song_id", "artist_id"}

// DecodeSongFile reads the first JSON object from r.
//
// Every key in the song file layout must be present. song_id and artist_id
// must also be non-null. Anything after the first object is ignored.
func DecodeSongFile(r io.Reader) (SongFile, error) {
	dec := json.NewDecoder(r)

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return SongFile{}, fmt.Errorf("song file: empty input")
		}
		return SongFile{}, fmt.Errorf("song file: decode: %w", err)
	}
	if err := requireKeys(raw, songFileFields); err != nil {
		return SongFile{}, fmt.Errorf("song file: %w", err)
	}
	for _, k := range nonNullSongFields {
		if string(raw[k]) == "null" {
			return SongFile{}, fmt.Errorf("song file: %w: %s is null", ErrMissingField, k)
		}
	}

	var f SongFile
	if err := unmarshalRaw(raw, &f); err != nil {
		return SongFile{}, fmt.Errorf("song file: %w", err)
	}
	return f, nil
}

// ReadPlays reads newline-delimited log events from r and returns the song
// play events (page == "NextSong") in file order.
//
// Required keys are checked only on play events. Other events are discarded
// without inspection beyond their page.
func ReadPlays(r io.Reader) ([]LogEvent, error) {
	var (
		plays []LogEvent
		seen  int
	)
	dec := json.NewDecoder(r)

	for {
		var raw map[string]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return plays, nil
			}
			return nil, fmt.Errorf("log file: event %d: decode: %w", seen+1, err)
		}
		seen++

		var page string
		if p, ok := raw["page"]; ok {
			if err := json.Unmarshal(p, &page); err != nil {
				return nil, fmt.Errorf("log file: event %d: page: %w", seen, err)
			}
		}
		if page != NextSong {
			continue
		}

		if err := requireKeys(raw, playFields); err != nil {
			return nil, fmt.Errorf("log file: event %d: %w", seen, err)
		}

		var ev LogEvent
		if err := unmarshalRaw(raw, &ev); err != nil {
			return nil, fmt.Errorf("log file: event %d: %w", seen, err)
		}
		plays = append(plays, ev)
	}
}

func requireKeys(raw map[string]json.RawMessage, keys []string) error {
	for _, k := range keys {
		if _, ok := raw[k]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, k)
		}
	}
	return nil
}

// unmarshalRaw re-encodes the decoded key set into v. The round trip keeps
// presence checks and typed decoding on a single read of the input.
func unmarshalRaw(raw map[string]json.RawMessage, v any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
