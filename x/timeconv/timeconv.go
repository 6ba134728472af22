// Package timeconv converts between Unix timestamps and the broken-down
// calendar representation used by RTC chips. All conversions are in UTC;
// wall-clock zone handling is a host concern.
package timeconv

import "time"

// Calendar is a broken-down civil time. Weekday runs 1-7 with 1 = Sunday,
// the convention used by the DS1307 weekday register.
type Calendar struct {
	Year    int // four-digit
	Month   int // 1-12
	Day     int // 1-31
	Weekday int // 1-7, 1 = Sunday
	Hour    int // 0-23
	Minute  int // 0-59
	Second  int // 0-59
}

// FromTime breaks a time.Time into calendar fields (UTC).
func FromTime(t time.Time) Calendar {
	t = t.UTC()
	return Calendar{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Weekday: int(t.Weekday()) + 1,
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
	}
}

// FromUnix breaks Unix seconds into calendar fields.
func FromUnix(sec int64) Calendar {
	return FromTime(time.Unix(sec, 0))
}

// Time reassembles the calendar fields into a time.Time. The Weekday field
// is ignored; it is derived from the date.
func (c Calendar) Time() time.Time {
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
}

// Unix returns the calendar as Unix seconds.
func (c Calendar) Unix() int64 { return c.Time().Unix() }

// IsPM reports whether a canonical 24-hour value falls in the PM half.
func IsPM(hour int) bool { return hour >= 12 }

// HourFormat12 maps a canonical 24-hour value onto the 1-12 dial, with
// midnight and noon both reading 12.
func HourFormat12(hour int) int {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return h
}
