package handlers

import (
	"context"
	"log"
	"time"

	"github.com/yusufgokkayy/IBP-final-project/internal/apierror"
	"github.com/yusufgokkayy/IBP-final-project/internal/auth"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/notifier"
)

type ReservationHandler struct {
	manager     *booking.Manager
	authHandler *auth.AuthHandler
	notifier    notifier.Notifier
}

// NewReservationHandler builds the reservation endpoints. n may be nil when
// notifications are not configured.
func NewReservationHandler(manager *booking.Manager, authHandler *auth.AuthHandler, n notifier.Notifier) *ReservationHandler {
	return &ReservationHandler{manager: manager, authHandler: authHandler, notifier: n}
}

type ReservationBody struct {
	ID               uint   `json:"id"`
	PropertyType     string `json:"propertyType"`
	PropertyID       uint   `json:"propertyId"`
	PropertyName     string `json:"propertyName"`
	CheckIn          string `json:"checkIn"`
	CheckOut         string `json:"checkOut"`
	Nights           int    `json:"nights"`
	GuestCount       int    `json:"guestCount"`
	PricePerNight    string `json:"pricePerNight"`
	TotalPrice       string `json:"totalPrice"`
	Status           string `json:"status" doc:"Persisted status: pending, confirmed, cancelled or completed"`
	DisplayStatus    string `json:"displayStatus" doc:"Upcoming, Active, Completed or Cancelled as of today"`
	CanCancel        bool   `json:"canCancel"`
	CanModify        bool   `json:"canModify"`
	SpecialRequests  string `json:"specialRequests,omitempty"`
	ConfirmationCode string `json:"confirmationCode"`
	BookedAt         string `json:"bookedAt"`
}

func reservationBody(r booking.Reservation, now time.Time) ReservationBody {
	return ReservationBody{
		ID:               r.ID,
		PropertyType:     string(r.Property.Type),
		PropertyID:       r.Property.ID,
		PropertyName:     r.PropertyName,
		CheckIn:          r.Range.Start.Format(booking.DateLayout),
		CheckOut:         r.Range.End.Format(booking.DateLayout),
		Nights:           r.Range.Nights(),
		GuestCount:       r.GuestCount,
		PricePerNight:    r.PricePerNight.StringFixed(2),
		TotalPrice:       r.TotalPrice.StringFixed(2),
		Status:           string(r.Status),
		DisplayStatus:    string(r.DisplayStatus(now)),
		CanCancel:        r.CanCancel(now),
		CanModify:        r.CanModify(now),
		SpecialRequests:  r.SpecialRequests,
		ConfirmationCode: r.ConfirmationCode,
		BookedAt:         r.BookedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ReservationHandler) notify(id *booking.Identity, res *booking.Reservation, event string) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.NotifyReservation(*id, *res, event); err != nil {
		log.Printf("Failed to send reservation notification: %v", err)
	}
}

type StayBody struct {
	PropertyType string `json:"propertyType" enum:"hotel_room,house"`
	PropertyID   uint   `json:"propertyId"`
	CheckIn      string `json:"checkIn" doc:"YYYY-MM-DD"`
	CheckOut     string `json:"checkOut" doc:"YYYY-MM-DD"`
}

func (b StayBody) request() booking.StayRequest {
	return booking.StayRequest{
		PropertyType: booking.PropertyType(b.PropertyType),
		PropertyID:   b.PropertyID,
		CheckIn:      b.CheckIn,
		CheckOut:     b.CheckOut,
	}
}

type AvailabilityRequest struct {
	Body StayBody
}

type AvailabilityResponse struct {
	Body struct {
		Available     bool   `json:"available"`
		PropertyName  string `json:"propertyName"`
		Nights        int    `json:"nights,omitempty"`
		PricePerNight string `json:"pricePerNight,omitempty"`
		TotalPrice    string `json:"totalPrice,omitempty"`
		Message       string `json:"message"`
	}
}

func (h *ReservationHandler) HandleCheckAvailability(ctx context.Context, input *AvailabilityRequest) (*AvailabilityResponse, error) {
	q, err := h.manager.CheckAvailability(ctx, input.Body.request())
	if err != nil {
		return nil, apierror.From(ctx, err)
	}

	res := &AvailabilityResponse{}
	res.Body.Available = q.Available
	res.Body.PropertyName = q.Property.Name
	if !q.Available {
		res.Body.Message = "Property is not available for the selected dates"
		return res, nil
	}
	res.Body.Nights = q.Nights
	res.Body.PricePerNight = q.PricePerNight.StringFixed(2)
	res.Body.TotalPrice = q.TotalPrice.StringFixed(2)
	res.Body.Message = "Property is available"
	return res, nil
}

type CreateReservationRequest struct {
	auth.AuthInput
	Body struct {
		StayBody
		GuestCount      int    `json:"guestCount" minimum:"1"`
		SpecialRequests string `json:"specialRequests,omitempty" maxLength:"1000"`
	}
}

type ReservationResponse struct {
	Body ReservationBody
}

func (h *ReservationHandler) HandleCreateReservation(ctx context.Context, input *CreateReservationRequest) (*ReservationResponse, error) {
	id, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res, err := h.manager.CreateReservation(ctx, id, booking.ReservationRequest{
		StayRequest:     input.Body.request(),
		GuestCount:      input.Body.GuestCount,
		SpecialRequests: input.Body.SpecialRequests,
	})
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	h.notify(id, res, "created")

	return &ReservationResponse{Body: reservationBody(*res, h.manager.Now())}, nil
}

type ListReservationsRequest struct {
	auth.AuthInput
}

type ListReservationsResponse struct {
	Body struct {
		Reservations []ReservationBody `json:"reservations"`
	}
}

func (h *ReservationHandler) HandleListReservations(ctx context.Context, input *ListReservationsRequest) (*ListReservationsResponse, error) {
	id, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	list, err := h.manager.ListReservations(ctx, id)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}

	now := h.manager.Now()
	res := &ListReservationsResponse{}
	res.Body.Reservations = make([]ReservationBody, 0, len(list))
	for _, r := range list {
		res.Body.Reservations = append(res.Body.Reservations, reservationBody(r, now))
	}
	return res, nil
}

type CancelReservationRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *ReservationHandler) HandleCancelReservation(ctx context.Context, input *CancelReservationRequest) (*ReservationResponse, error) {
	id, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res, err := h.manager.CancelReservation(ctx, id, input.ID)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	h.notify(id, res, "cancelled")

	return &ReservationResponse{Body: reservationBody(*res, h.manager.Now())}, nil
}

type ModifyReservationRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		CheckIn         string `json:"checkIn" doc:"YYYY-MM-DD"`
		CheckOut        string `json:"checkOut" doc:"YYYY-MM-DD"`
		GuestCount      int    `json:"guestCount" minimum:"1"`
		SpecialRequests string `json:"specialRequests,omitempty" maxLength:"1000"`
	}
}

// HandleModifyReservation returns the replacement reservation. The original
// one is cancelled.
func (h *ReservationHandler) HandleModifyReservation(ctx context.Context, input *ModifyReservationRequest) (*ReservationResponse, error) {
	id, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res, err := h.manager.ModifyReservation(ctx, id, input.ID, booking.ReservationChange{
		CheckIn:         input.Body.CheckIn,
		CheckOut:        input.Body.CheckOut,
		GuestCount:      input.Body.GuestCount,
		SpecialRequests: input.Body.SpecialRequests,
	})
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	h.notify(id, res, "modified")

	return &ReservationResponse{Body: reservationBody(*res, h.manager.Now())}, nil
}
