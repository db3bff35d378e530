package booking

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	today := Date(2024, time.January, 1)

	t.Run("Valid", func(t *testing.T) {
		r, err := ParseDateRange("2024-01-01", "2024-01-05", today)
		if err != nil {
			t.Fatalf("ParseDateRange returned error: %v", err)
		}
		if r.Nights() != 4 {
			t.Errorf("expected 4 nights, got %d", r.Nights())
		}
	})

	t.Run("LongStay", func(t *testing.T) {
		r, err := ParseDateRange("2030-01-01", "2400-01-01", Date(2030, time.January, 1))
		if err != nil {
			t.Fatalf("ParseDateRange returned error: %v", err)
		}
		if r.Nights() != 135139 {
			t.Errorf("expected 135139 nights, got %d", r.Nights())
		}
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		for _, pair := range [][2]string{
			{"2024/01/02", "2024-01-05"},
			{"2024-01-02", "05.01.2024"},
			{"2024-02-30", "2024-03-01"},
			{"", "2024-01-05"},
		} {
			if _, err := ParseDateRange(pair[0], pair[1], today); !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("%v: expected ErrInvalidFormat, got %v", pair, err)
			}
		}
	})

	t.Run("CheckOutNotAfterCheckIn", func(t *testing.T) {
		start := Date(2024, time.March, 10)
		for offset := -5; offset <= 0; offset++ {
			_, err := NewDateRange(start, start.AddDate(0, 0, offset), today)
			if !errors.Is(err, ErrCheckOutNotAfterCheckIn) {
				t.Errorf("offset %d: expected ErrCheckOutNotAfterCheckIn, got %v", offset, err)
			}
		}
	})

	t.Run("CheckInInPast", func(t *testing.T) {
		for days := 1; days <= 30; days++ {
			start := today.AddDate(0, 0, -days)
			_, err := NewDateRange(start, today.AddDate(0, 0, 3), today)
			if !errors.Is(err, ErrCheckInInPast) {
				t.Errorf("%d days ago: expected ErrCheckInInPast, got %v", days, err)
			}
		}
	})

	t.Run("TimeOfDayIgnored", func(t *testing.T) {
		lateToday := today.Add(23 * time.Hour)
		if _, err := NewDateRange(today, today.AddDate(0, 0, 1), lateToday); err != nil {
			t.Errorf("expected check-in today to be accepted late in the day, got %v", err)
		}
	})

	t.Run("OrderOfChecks", func(t *testing.T) {
		_, err := ParseDateRange("2023-12-20", "2023-12-10", today)
		if !errors.Is(err, ErrCheckOutNotAfterCheckIn) {
			t.Errorf("expected ErrCheckOutNotAfterCheckIn before ErrCheckInInPast, got %v", err)
		}
	})
}

func TestOverlap(t *testing.T) {
	base := Date(2024, time.January, 1)
	d := func(n int) time.Time { return base.AddDate(0, 0, n) }

	t.Run("Symmetric", func(t *testing.T) {
		for a := 0; a < 6; a++ {
			for b := a + 1; b <= 6; b++ {
				for c := 0; c < 6; c++ {
					for e := c + 1; e <= 6; e++ {
						got := Overlap(d(a), d(b), d(c), d(e))
						if got != Overlap(d(c), d(e), d(a), d(b)) {
							t.Fatalf("overlap not symmetric for [%d,%d) [%d,%d)", a, b, c, e)
						}
						if want := a < e && c < b; got != want {
							t.Fatalf("overlap [%d,%d) [%d,%d) = %v, want %v", a, b, c, e, got, want)
						}
					}
				}
			}
		}
	})

	t.Run("Adjacent", func(t *testing.T) {
		first := DateRange{Start: Date(2024, 1, 1), End: Date(2024, 1, 5)}
		second := DateRange{Start: Date(2024, 1, 5), End: Date(2024, 1, 10)}
		if first.Overlaps(second) || second.Overlaps(first) {
			t.Error("adjacent stays must not overlap")
		}
	})

	t.Run("Identical", func(t *testing.T) {
		r := DateRange{Start: Date(2024, 1, 1), End: Date(2024, 1, 5)}
		if !r.Overlaps(r) {
			t.Error("identical stays must overlap")
		}
	})
}

func TestDaysUntil(t *testing.T) {
	checkIn := Date(2024, time.June, 10)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"ExactlyOneDay", checkIn.Add(-24 * time.Hour), 1},
		{"LessThanOneDay", checkIn.Add(-5 * time.Hour), 1},
		{"JustOverOneDay", checkIn.Add(-25 * time.Hour), 2},
		{"ThreeDays", checkIn.AddDate(0, 0, -3), 3},
		{"CheckInDay", checkIn.Add(10 * time.Hour), 0},
		{"CenturiesAway", Date(1700, time.June, 10), 118339},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(checkIn, tt.now); got != tt.want {
				t.Errorf("DaysUntil = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReservationDisplayStatus(t *testing.T) {
	res := Reservation{
		Status: StatusConfirmed,
		Range:  DateRange{Start: Date(2024, 7, 1), End: Date(2024, 7, 5)},
	}

	tests := []struct {
		today time.Time
		want  DisplayStatus
	}{
		{Date(2024, 6, 30), DisplayUpcoming},
		{Date(2024, 7, 1), DisplayActive},
		{Date(2024, 7, 4), DisplayActive},
		{Date(2024, 7, 5), DisplayCompleted},
		{Date(2024, 7, 6), DisplayCompleted},
	}
	for _, tt := range tests {
		if got := res.DisplayStatus(tt.today); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.today.Format(DateLayout), got, tt.want)
		}
	}

	res.Status = StatusCancelled
	if got := res.DisplayStatus(Date(2024, 6, 1)); got != DisplayCancelled {
		t.Errorf("expected Cancelled, got %s", got)
	}
	if res.Status != StatusCancelled {
		t.Error("display status must not change the persisted status")
	}
}
