package timeconv

import (
	"testing"
	"time"
)

func TestFromUnix_KnownVector(t *testing.T) {
	// 2025-01-27 14:30:00 UTC, a Monday.
	const ts = 1737988200
	got := FromUnix(ts)
	want := Calendar{Year: 2025, Month: 1, Day: 27, Weekday: 2, Hour: 14, Minute: 30, Second: 0}
	if got != want {
		t.Fatalf("FromUnix(%d) = %+v, want %+v", ts, got, want)
	}
	if got.Unix() != ts {
		t.Fatalf("Unix round trip = %d, want %d", got.Unix(), ts)
	}
}

func TestWeekdayConvention(t *testing.T) {
	// 2000-01-02 was a Sunday; the chip convention maps Sunday to 1.
	c := FromTime(time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC))
	if c.Weekday != 1 {
		t.Fatalf("Sunday weekday = %d, want 1", c.Weekday)
	}
	c = FromTime(time.Date(2000, 1, 8, 0, 0, 0, 0, time.UTC))
	if c.Weekday != 7 {
		t.Fatalf("Saturday weekday = %d, want 7", c.Weekday)
	}
}

func TestHourFormat12(t *testing.T) {
	cases := map[int]int{0: 12, 1: 1, 11: 11, 12: 12, 13: 1, 23: 11}
	for h24, want := range cases {
		if got := HourFormat12(h24); got != want {
			t.Fatalf("HourFormat12(%d) = %d, want %d", h24, got, want)
		}
	}
	if IsPM(11) || !IsPM(12) {
		t.Fatal("IsPM boundary at noon is wrong")
	}
}
