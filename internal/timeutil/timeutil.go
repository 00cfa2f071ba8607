// Package timeutil converts the short HH:MM timestamps used in offer
// callbacks between UTC and the configured display timezone. Callback data
// always carries UTC; button labels and messages show local time.
package timeutil

import "time"

const shortLayout = "15:04"

// UTCShortToLocal converts a "15:04" string in UTC to the same wall-clock
// format in loc. Malformed input is returned unchanged, the backend owns
// validation of offers.
func UTCShortToLocal(short string, loc *time.Location) string {
	t, err := time.Parse(shortLayout, short)
	if err != nil {
		return short
	}
	now := time.Now().UTC()
	utc := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return utc.In(loc).Format(shortLayout)
}

// Short formats a time as HH:MM.
func Short(t time.Time) string {
	return t.Format(shortLayout)
}

// HalfHourSlots returns half-hour marks strictly after from, until the first
// mark that falls on the next UTC day. Used to build the offer day grid.
func HalfHourSlots(from time.Time) []time.Time {
	from = from.UTC()
	day := from.Truncate(24 * time.Hour)

	var slots []time.Time
	step := 30 * time.Minute
	for i := 1; ; i++ {
		slot := from.Add(time.Duration(i) * step)
		slots = append(slots, slot)
		if slot.Truncate(24 * time.Hour).After(day) {
			break
		}
	}
	return slots
}
