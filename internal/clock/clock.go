package clock

import (
	"fmt"
	"time"
)

// Clock converts instants to calendar days in a fixed UTC-offset target
// zone. Every day number in the system must be derived through the same
// Clock instance so that challenge creation, marking, status, and the
// reminder sweep agree on where day boundaries fall.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New returns a clock for the given UTC offset in hours. No timezone
// database is consulted; the offset is a fixed constant for the deployment.
func New(utcOffsetHours int) *Clock {
	name := fmt.Sprintf("UTC%+d", utcOffsetHours)
	return &Clock{
		loc: time.FixedZone(name, utcOffsetHours*3600),
		now: time.Now,
	}
}

// WithNow returns a copy of the clock using the given time source.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	return &Clock{loc: c.loc, now: now}
}

// Now returns the current instant in the target zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Location returns the fixed target zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// CalendarDay returns the integer day the instant falls on in the target
// zone, counted from the Unix epoch.
func (c *Clock) CalendarDay(t time.Time) int {
	y, m, d := t.In(c.loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DayNumber returns the 1-based challenge day for now given the challenge
// start date. The start date itself is day 1.
func (c *Clock) DayNumber(start, now time.Time) int {
	return c.CalendarDay(now) - c.CalendarDay(start) + 1
}

// StartOfDay returns midnight of the instant's day in the target zone.
func (c *Clock) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// HourMinute returns the target-zone wall-clock hour and minute.
func (c *Clock) HourMinute(t time.Time) (int, int) {
	local := t.In(c.loc)
	return local.Hour(), local.Minute()
}
