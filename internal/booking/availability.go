package booking

import "fmt"

// PropertyType tags which numbering space a property id belongs to.
type PropertyType string

const (
	PropertyHotelRoom PropertyType = "hotel_room"
	PropertyHouse     PropertyType = "house"
)

func (t PropertyType) Valid() bool {
	return t == PropertyHotelRoom || t == PropertyHouse
}

// PropertyRef identifies a bookable property.
type PropertyRef struct {
	Type PropertyType
	ID   uint
}

func (r PropertyRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// Status is the persisted lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// BlockingStatuses are the statuses that hold a property's dates.
var BlockingStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking is the part of a stored reservation the overlap check needs.
type Booking struct {
	ID       uint
	Property PropertyRef
	Range    DateRange
	Status   Status
}

// Conflicts returns the existing bookings that would collide with a stay of
// ref over r.
func Conflicts(ref PropertyRef, r DateRange, existing []Booking) []Booking {
	var out []Booking
	for _, b := range existing {
		if b.Property != ref || !b.Status.Blocking() {
			continue
		}
		if r.Overlaps(b.Range) {
			out = append(out, b)
		}
	}
	return out
}

// IsAvailable reports whether ref is free for r given the existing bookings.
func IsAvailable(ref PropertyRef, r DateRange, existing []Booking) bool {
	return len(Conflicts(ref, r, existing)) == 0
}
