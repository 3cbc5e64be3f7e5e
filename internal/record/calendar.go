package record

import "time"

// TimeRow is a time row: a play timestamp and its calendar breakdown.
type TimeRow struct {
	Start   time.Time
	Hour    int
	Day     int
	Week    int // ISO 8601 week of year
	Month   int
	Year    int
	Weekday int // Monday=0 .. Sunday=6
}

// NewTimeRow derives calendar fields from a millisecond Unix timestamp, in UTC.
func NewTimeRow(ms int64) TimeRow {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return TimeRow{
		Start:   t,
		Hour:    t.Hour(),
		Day:     t.Day(),
		Week:    week,
		Month:   int(t.Month()),
		Year:    t.Year(),
		Weekday: (int(t.Weekday()) + 6) % 7,
	}
}
