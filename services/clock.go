package services

import (
	"fmt"
	"time"
)

// DayLayout is the stored form of a business day.
const DayLayout = "2006-01-02"

// Clock maps instants to business days in one time zone. Every day and week
// comparison in this package goes through it.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// LoadClock builds a Clock for an IANA zone name.
func LoadClock(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return NewClock(loc), nil
}

// WithNow returns a copy of c that reads the current time from now.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	return &Clock{loc: c.loc, now: now}
}

func (c *Clock) Now() time.Time {
	return c.now().UTC()
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Day returns the business day containing t.
func (c *Clock) Day(t time.Time) string {
	return t.In(c.loc).Format(DayLayout)
}

func (c *Clock) Today() string {
	return c.Day(c.now())
}

// WeekStart returns the Monday of the ISO week containing day.
func (c *Clock) WeekStart(day string) string {
	d := mustParseDay(day)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset).Format(DayLayout)
}

// AddDays shifts a business day by n calendar days.
func (c *Clock) AddDays(day string, n int) string {
	return mustParseDay(day).AddDate(0, 0, n).Format(DayLayout)
}

// DaysBetween returns the number of calendar days from one day to another.
func (c *Clock) DaysBetween(from, to string) int {
	return daysBetween(from, to)
}

func daysBetween(from, to string) int {
	a, b := mustParseDay(from), mustParseDay(to)
	return int(b.Sub(a).Hours() / 24)
}

// Weekday returns the short English name of day, as shown on charts.
func (c *Clock) Weekday(day string) string {
	return mustParseDay(day).Weekday().String()[:3]
}

// Day strings are produced by Clock; anything else is a programming error.
func mustParseDay(day string) time.Time {
	t, err := time.ParseInLocation(DayLayout, day, time.UTC)
	if err != nil {
		panic(fmt.Sprintf("invalid business day %q: %v", day, err))
	}
	return t
}
