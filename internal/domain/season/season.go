// Package season maps calendar dates to season numbers from a single
// observed anchor.
package season

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Length is the number of days in a season.
const Length = 91

const secondsPerDay = 24 * 60 * 60

// Anchor is one observed point of the calendar: on Date it was day Day of Season.
type Anchor struct {
	Date   time.Time
	Season int
	Day    int
}

// NewAnchor validates the anchor fields.
func NewAnchor(date time.Time, season, day int) (Anchor, error) {
	if date.IsZero() {
		return Anchor{}, fmt.Errorf("%w: missing date", ErrAnchorUnavailable)
	}
	if season <= 0 {
		return Anchor{}, fmt.Errorf("%w: season %d", ErrAnchorUnavailable, season)
	}
	if day < 0 || day >= Length {
		return Anchor{}, fmt.Errorf("%w: day %d outside [0,%d]", ErrAnchorUnavailable, day, Length-1)
	}
	return Anchor{Date: date, Season: season, Day: day}, nil
}

var (
	headerDate = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	digits     = regexp.MustCompile(`\d+`)
)

// ParseAnchor reads the anchor from page header text. dateText carries a
// D/M/YYYY or D-M-YYYY date; seasonText carries at least three integers of
// which the first is the season and the third the day of season.
func ParseAnchor(dateText, seasonText string, loc *time.Location) (Anchor, error) {
	if loc == nil {
		loc = time.UTC
	}
	m := headerDate.FindStringSubmatch(dateText)
	if m == nil {
		return Anchor{}, fmt.Errorf("%w: no date in %q", ErrAnchorUnavailable, dateText)
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return Anchor{}, fmt.Errorf("%w: invalid date %q", ErrAnchorUnavailable, m[0])
	}
	date := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
	if date.Day() != d {
		return Anchor{}, fmt.Errorf("%w: invalid date %q", ErrAnchorUnavailable, m[0])
	}

	nums := digits.FindAllString(seasonText, -1)
	if len(nums) < 3 {
		return Anchor{}, fmt.Errorf("%w: expected 3 numbers in %q", ErrAnchorUnavailable, seasonText)
	}
	s, err := strconv.Atoi(nums[0])
	if err != nil {
		return Anchor{}, fmt.Errorf("%w: %w", ErrAnchorUnavailable, err)
	}
	day, err := strconv.Atoi(nums[2])
	if err != nil {
		return Anchor{}, fmt.Errorf("%w: %w", ErrAnchorUnavailable, err)
	}
	return NewAnchor(date, s, day)
}

// Clock converts dates to seasons. Dates are compared by calendar day in the
// clock's location.
type Clock struct {
	anchor   Anchor
	loc      *time.Location
	startDay int64
}

// NewClock builds a clock for the anchor. A nil location means UTC.
func NewClock(a Anchor, loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{
		anchor:   a,
		loc:      loc,
		startDay: dayNumber(a.Date, loc) - int64(a.Day),
	}
}

// Anchor returns the anchor the clock was built from.
func (c *Clock) Anchor() Anchor { return c.anchor }

// Location returns the calendar location.
func (c *Clock) Location() *time.Location { return c.loc }

// Current is the anchor's season.
func (c *Clock) Current() int { return c.anchor.Season }

// Of returns the season containing t. Dates before and after the anchor use
// the same floor division, so day 0 of every season maps to that season.
func (c *Clock) Of(t time.Time) int {
	offset := dayNumber(t, c.loc) - c.startDay
	return c.anchor.Season + int(floorDiv(offset, Length))
}

// StartOf returns midnight of day 0 of season s.
func (c *Clock) StartOf(s int) time.Time {
	day := c.startDay + int64(s-c.anchor.Season)*Length
	return time.Date(1970, time.January, 1+int(day), 0, 0, 0, 0, c.loc)
}

// At returns a clock anchored on the calendar date of t. Seasons map the
// same way; only Current and Anchor move.
func (c *Clock) At(t time.Time) *Clock {
	s := c.Of(t)
	y, m, d := t.In(c.loc).Date()
	day := dayNumber(t, c.loc) - dayNumber(c.StartOf(s), c.loc)
	return NewClock(Anchor{
		Date:   time.Date(y, m, d, 0, 0, 0, 0, c.loc),
		Season: s,
		Day:    int(day),
	}, c.loc)
}

// dayNumber is the count of days since 1970-01-01 of t's calendar date in loc.
func dayNumber(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// HistoricalAge is the age an entity had in target, given its current age.
// An unknown (non-positive) current age yields ok=false.
func HistoricalAge(currentAge, currentSeason, target int) (age int, ok bool) {
	if currentAge <= 0 {
		return 0, false
	}
	return currentAge - (currentSeason - target), true
}
