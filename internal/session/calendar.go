package session

import "time"

// Calendar answers calendar-day questions in the device's local time zone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a Calendar for loc; nil means time.Local.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Day returns local midnight at the start of t's calendar day.
func (c Calendar) Day(t time.Time) time.Time {
	t = t.In(c.Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.Location())
}

func (c Calendar) SameDay(a, b time.Time) bool {
	return c.Day(a).Equal(c.Day(b))
}

// NextDay returns the start of the calendar day after day.
func (c Calendar) NextDay(day time.Time) time.Time {
	d := c.Day(day)
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, c.Location())
}

// NextMidnight returns the first local midnight strictly after t.
func (c Calendar) NextMidnight(t time.Time) time.Time {
	return c.NextDay(t)
}

func (c Calendar) Weekday(t time.Time) time.Weekday {
	return t.In(c.Location()).Weekday()
}
