package clock

import (
	"testing"
	"time"
)

func TestDayNumber_StartDateIsDayOne(t *testing.T) {
	c := New(5)

	start := time.Date(2025, 1, 10, 9, 30, 0, 0, c.Location())
	sameDay := time.Date(2025, 1, 10, 23, 59, 0, 0, c.Location())

	if got := c.DayNumber(start, sameDay); got != 1 {
		t.Errorf("expected day 1 on the start date, got %d", got)
	}
}

func TestDayNumber_AdvancesAtTargetZoneMidnight(t *testing.T) {
	c := New(5)

	start := time.Date(2025, 1, 10, 22, 0, 0, 0, c.Location())
	justBefore := time.Date(2025, 1, 10, 23, 59, 59, 0, c.Location())
	justAfter := time.Date(2025, 1, 11, 0, 0, 1, 0, c.Location())

	if got := c.DayNumber(start, justBefore); got != 1 {
		t.Errorf("expected day 1 just before midnight, got %d", got)
	}
	if got := c.DayNumber(start, justAfter); got != 2 {
		t.Errorf("expected day 2 just after midnight, got %d", got)
	}
}

func TestDayNumber_IgnoresInputZone(t *testing.T) {
	c := New(5)

	// 20:00 UTC on Jan 10 is 01:00 Jan 11 in UTC+5. The wall clock in the
	// target zone decides the day, whatever zone the instant arrives in.
	start := time.Date(2025, 1, 10, 8, 0, 0, 0, c.Location())
	lateUTC := time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)

	if got := c.DayNumber(start, lateUTC); got != 2 {
		t.Errorf("expected day 2 for an instant past target-zone midnight, got %d", got)
	}
}

func TestDayNumber_BeforeStart(t *testing.T) {
	c := New(5)

	start := time.Date(2025, 1, 10, 0, 0, 0, 0, c.Location())
	dayBefore := time.Date(2025, 1, 9, 12, 0, 0, 0, c.Location())

	if got := c.DayNumber(start, dayBefore); got != 0 {
		t.Errorf("expected day 0 before the start date, got %d", got)
	}
}

func TestStartOfDay(t *testing.T) {
	c := New(5)

	at := time.Date(2025, 3, 7, 18, 42, 11, 0, c.Location())
	got := c.StartOfDay(at)

	want := time.Date(2025, 3, 7, 0, 0, 0, 0, c.Location())
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}

func TestHourMinute_ConvertsToTargetZone(t *testing.T) {
	c := New(5)

	// 03:15 UTC is 08:15 in UTC+5.
	at := time.Date(2025, 3, 7, 3, 15, 0, 0, time.UTC)
	h, m := c.HourMinute(at)
	if h != 8 || m != 15 {
		t.Errorf("HourMinute = %d:%02d, want 8:15", h, m)
	}
}

func TestWithNow(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := New(5).WithNow(func() time.Time { return fixed })

	got := c.Now()
	if !got.Equal(fixed) {
		t.Errorf("Now = %v, want %v", got, fixed)
	}
	if got.Location() != c.Location() {
		t.Errorf("Now should be expressed in the target zone, got %v", got.Location())
	}
}
