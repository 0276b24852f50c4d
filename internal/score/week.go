package score

import "time"

// WeekWindow returns the week containing t as a half-open interval
// [start, end): start is Monday 00:00 in loc and end is the following Monday 00:00.
// A nil loc means UTC.
func WeekWindow(t time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)

	// Weekday counts from Sunday; shift so Monday is 0.
	sinceMonday := (int(t.Weekday()) + 6) % 7
	start = time.Date(t.Year(), t.Month(), t.Day()-sinceMonday, 0, 0, 0, 0, loc)
	// AddDate rather than 7*24h so DST transitions keep midnight.
	end = start.AddDate(0, 0, 7)
	return start, end
}
