package booking

import (
	"math"
	"time"
)

// DateLayout is the calendar date format accepted on input and used in output.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// DateRange is a stay expressed as the half-open interval [Start, End).
// Both bounds are calendar dates at UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Date returns the calendar date y-m-d at UTC midnight.
func Date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time of day from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDateRange parses and validates a check-in/check-out pair against today.
func ParseDateRange(start, end string, today time.Time) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, ErrInvalidFormat
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, ErrInvalidFormat
	}
	return NewDateRange(s, e, today)
}

// NewDateRange validates an already parsed pair of dates. The checks run in a
// fixed order: check-out after check-in first, then no past check-in.
func NewDateRange(start, end, today time.Time) (DateRange, error) {
	r := DateRange{Start: DateOf(start), End: DateOf(end)}
	if !r.End.After(r.Start) {
		return DateRange{}, ErrCheckOutNotAfterCheckIn
	}
	if r.Start.Before(DateOf(today)) {
		return DateRange{}, ErrCheckInInPast
	}
	return r, nil
}

// Nights is the number of nights in the stay, at least 1 for a valid range.
func (r DateRange) Nights() int {
	return int((r.End.Unix() - r.Start.Unix()) / secondsPerDay)
}

// Overlaps reports whether two stays share at least one night.
func (r DateRange) Overlaps(o DateRange) bool {
	return Overlap(r.Start, r.End, o.Start, o.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + "/" + r.End.Format(DateLayout)
}

// Overlap is the half-open interval test for [a,b) and [c,d).
// Touching intervals do not overlap.
func Overlap(a, b, c, d time.Time) bool {
	return a.Before(d) && c.Before(b)
}

// DaysUntil counts the days from now until check-in, rounding partial days up.
func DaysUntil(checkIn, now time.Time) int {
	return int(math.Ceil(float64(DateOf(checkIn).Unix()-now.Unix()) / secondsPerDay))
}
