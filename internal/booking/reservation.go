package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StayRequest names a property and the dates of a stay.
type StayRequest struct {
	PropertyType PropertyType `json:"propertyType" validate:"required,oneof=hotel_room house"`
	PropertyID   uint         `json:"propertyId" validate:"required"`
	CheckIn      string       `json:"checkIn" validate:"required"`
	CheckOut     string       `json:"checkOut" validate:"required"`
}

func (r StayRequest) ref() PropertyRef {
	return PropertyRef{Type: r.PropertyType, ID: r.PropertyID}
}

// ReservationRequest is a guest's booking request.
type ReservationRequest struct {
	StayRequest
	GuestCount      int    `json:"guestCount" validate:"gte=1"`
	SpecialRequests string `json:"specialRequests" validate:"max=1000"`
}

// ReservationChange replaces the dates and party of an existing reservation.
type ReservationChange struct {
	CheckIn         string `json:"checkIn" validate:"required"`
	CheckOut        string `json:"checkOut" validate:"required"`
	GuestCount      int    `json:"guestCount" validate:"gte=1"`
	SpecialRequests string `json:"specialRequests" validate:"max=1000"`
}

// AvailabilityQuote answers whether a stay can be booked and what it costs.
type AvailabilityQuote struct {
	Property      Property
	Range         DateRange
	Available     bool
	Nights        int
	PricePerNight decimal.Decimal
	TotalPrice    decimal.Decimal
}

func reservationLockKey(ref PropertyRef) string {
	return "reservation:" + string(ref.Type) + ":" + fmt.Sprint(ref.ID)
}

// bookableProperty loads ref and rejects properties closed for booking.
func bookableProperty(ctx context.Context, catalog PropertyCatalog, ref PropertyRef) (*Property, error) {
	p, err := catalog.GetProperty(ctx, ref)
	if err != nil {
		return nil, persistenceError("get property", err)
	}
	if !p.IsAvailable {
		return nil, ErrPropertyUnavailable
	}
	return p, nil
}

func checkCapacity(p *Property, guests int) error {
	if guests < 1 || (p.Capacity > 0 && guests > p.Capacity) {
		return ErrGuestCountOutOfRange
	}
	return nil
}

// CheckAvailability quotes a stay. A stay that collides with an existing
// booking is reported with Available set to false, not as an error.
func (m *Manager) CheckAvailability(ctx context.Context, req StayRequest) (*AvailabilityQuote, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fieldError(err)
	}
	r, err := ParseDateRange(req.CheckIn, req.CheckOut, m.Today())
	if err != nil {
		return nil, err
	}
	p, err := bookableProperty(ctx, m.store, req.ref())
	if err != nil {
		return nil, err
	}

	existing, err := m.store.FindConflicting(ctx, p.Ref, r, BlockingStatuses)
	if err != nil {
		return nil, persistenceError("find conflicting", err)
	}

	q := &AvailabilityQuote{
		Property:  *p,
		Range:     r,
		Available: IsAvailable(p.Ref, r, existing),
	}
	if q.Available {
		q.Nights = r.Nights()
		q.PricePerNight = p.PricePerNight
		q.TotalPrice = StayPrice(p.PricePerNight, q.Nights)
	}
	return q, nil
}

// CreateReservation books a stay as pending. The conflict check and the
// insert run under the property's lock so overlapping requests cannot both
// succeed.
func (m *Manager) CreateReservation(ctx context.Context, id *Identity, req ReservationRequest) (*Reservation, error) {
	if err := authenticated(id); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, fieldError(err)
	}
	r, err := ParseDateRange(req.CheckIn, req.CheckOut, m.Today())
	if err != nil {
		return nil, err
	}
	p, err := bookableProperty(ctx, m.store, req.ref())
	if err != nil {
		return nil, err
	}
	if err := checkCapacity(p, req.GuestCount); err != nil {
		return nil, err
	}

	res := m.newReservation(id.UserID, p, r, req.GuestCount, req.SpecialRequests)
	err = m.store.Atomically(ctx, reservationLockKey(p.Ref), func(tx Store) error {
		return insertIfFree(ctx, tx, res)
	})
	if err != nil {
		return nil, persistenceError("create reservation", err)
	}
	return res, nil
}

func (m *Manager) newReservation(userID uint, p *Property, r DateRange, guests int, requests string) *Reservation {
	nights := r.Nights()
	return &Reservation{
		UserID:           userID,
		Property:         p.Ref,
		PropertyName:     p.Name,
		Range:            r,
		GuestCount:       guests,
		PricePerNight:    p.PricePerNight,
		TotalPrice:       StayPrice(p.PricePerNight, nights),
		Status:           StatusPending,
		SpecialRequests:  strings.TrimSpace(requests),
		ConfirmationCode: confirmationCode(),
		BookedAt:         m.now(),
	}
}

// insertIfFree must run inside Atomically.
func insertIfFree(ctx context.Context, tx Store, res *Reservation) error {
	existing, err := tx.FindConflicting(ctx, res.Property, res.Range, BlockingStatuses)
	if err != nil {
		return err
	}
	if !IsAvailable(res.Property, res.Range, existing) {
		return ErrPropertyNotAvailable
	}
	return tx.InsertReservation(ctx, res)
}

func confirmationCode() string {
	return "HV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// ownedReservation loads a reservation, hiding other guests' bookings.
func (m *Manager) ownedReservation(ctx context.Context, id *Identity, reservationID uint) (*Reservation, error) {
	res, err := m.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, persistenceError("get reservation", err)
	}
	if res.UserID != id.UserID && !id.IsAdmin {
		return nil, ErrReservationNotFound
	}
	return res, nil
}

// CancelReservation cancels a pending or confirmed stay more than 24 hours
// before check-in. Cancelling twice is an error.
func (m *Manager) CancelReservation(ctx context.Context, id *Identity, reservationID uint) (*Reservation, error) {
	if err := authenticated(id); err != nil {
		return nil, err
	}
	res, err := m.ownedReservation(ctx, id, reservationID)
	if err != nil {
		return nil, err
	}
	switch {
	case res.Status == StatusCancelled:
		return nil, ErrAlreadyCancelled
	case !res.CanCancel(m.now()):
		return nil, ErrCancellationNotAllowed
	}

	ok, err := m.store.UpdateReservationStatus(ctx, res.ID, BlockingStatuses, StatusCancelled)
	if err != nil {
		return nil, persistenceError("cancel reservation", err)
	}
	if !ok {
		return nil, ErrAlreadyCancelled
	}
	res.Status = StatusCancelled
	return res, nil
}

// ModifyReservation cancels the reservation and books the new dates in one
// transaction. If the new dates are taken nothing changes.
func (m *Manager) ModifyReservation(ctx context.Context, id *Identity, reservationID uint, change ReservationChange) (*Reservation, error) {
	if err := authenticated(id); err != nil {
		return nil, err
	}
	old, err := m.ownedReservation(ctx, id, reservationID)
	if err != nil {
		return nil, err
	}
	if !old.CanModify(m.now()) {
		return nil, ErrModificationNotAllowed
	}
	if err := validate.Struct(change); err != nil {
		return nil, fieldError(err)
	}
	r, err := ParseDateRange(change.CheckIn, change.CheckOut, m.Today())
	if err != nil {
		return nil, err
	}
	p, err := bookableProperty(ctx, m.store, old.Property)
	if err != nil {
		return nil, err
	}
	if err := checkCapacity(p, change.GuestCount); err != nil {
		return nil, err
	}

	requests := change.SpecialRequests
	if requests == "" {
		requests = old.SpecialRequests
	}
	res := m.newReservation(old.UserID, p, r, change.GuestCount, requests)
	err = m.store.Atomically(ctx, reservationLockKey(p.Ref), func(tx Store) error {
		ok, err := tx.UpdateReservationStatus(ctx, old.ID, BlockingStatuses, StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return ErrModificationNotAllowed
		}
		return insertIfFree(ctx, tx, res)
	})
	if err != nil {
		return nil, persistenceError("modify reservation", err)
	}
	return res, nil
}

// ListReservations returns the caller's reservations, latest check-in first.
func (m *Manager) ListReservations(ctx context.Context, id *Identity) ([]Reservation, error) {
	if err := authenticated(id); err != nil {
		return nil, err
	}
	list, err := m.store.ListReservationsByUser(ctx, id.UserID)
	if err != nil {
		return nil, persistenceError("list reservations", err)
	}
	return list, nil
}

// ConfirmReservation moves a pending reservation to confirmed after checking
// again that no other booking holds its dates.
func (m *Manager) ConfirmReservation(ctx context.Context, id *Identity, reservationID uint) (*Reservation, error) {
	if err := staff(id); err != nil {
		return nil, err
	}
	res, err := m.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, persistenceError("get reservation", err)
	}
	if res.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	err = m.store.Atomically(ctx, reservationLockKey(res.Property), func(tx Store) error {
		existing, err := tx.FindConflicting(ctx, res.Property, res.Range, BlockingStatuses)
		if err != nil {
			return err
		}
		for _, b := range Conflicts(res.Property, res.Range, existing) {
			if b.ID != res.ID {
				return ErrPropertyNotAvailable
			}
		}
		ok, err := tx.UpdateReservationStatus(ctx, res.ID, []Status{StatusPending}, StatusConfirmed)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, persistenceError("confirm reservation", err)
	}
	res.Status = StatusConfirmed
	return res, nil
}
