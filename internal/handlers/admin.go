package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yusufgokkayy/IBP-final-project/internal/apierror"
	"github.com/yusufgokkayy/IBP-final-project/internal/auth"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
	"gorm.io/gorm"
)

const recentLimit = 10

type AdminHandler struct {
	db          *gorm.DB
	manager     *booking.Manager
	authHandler *auth.AuthHandler
}

func NewAdminHandler(db *gorm.DB, manager *booking.Manager, authHandler *auth.AuthHandler) *AdminHandler {
	return &AdminHandler{db: db, manager: manager, authHandler: authHandler}
}

// authorizeStaff resolves the caller and requires the admin flag.
func (h *AdminHandler) authorizeStaff(ctx context.Context, input auth.AuthInput) (*booking.Identity, error) {
	id, err := h.authHandler.Authorize(ctx, input)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin {
		return nil, apierror.From(ctx, booking.ErrForbidden)
	}
	return id, nil
}

type RecentReservationBody struct {
	ID               uint   `json:"id"`
	GuestEmail       string `json:"guestEmail"`
	PropertyType     string `json:"propertyType"`
	PropertyID       uint   `json:"propertyId"`
	CheckIn          string `json:"checkIn"`
	CheckOut         string `json:"checkOut"`
	TotalPrice       string `json:"totalPrice"`
	Status           string `json:"status"`
	ConfirmationCode string `json:"confirmationCode"`
}

type RecentContractBody struct {
	ID             uint   `json:"id"`
	ContractNumber string `json:"contractNumber"`
	OwnerEmail     string `json:"ownerEmail"`
	HouseName      string `json:"houseName"`
	Period         string `json:"period"`
	DurationWeeks  int    `json:"durationWeeks"`
	PurchasePrice  string `json:"purchasePrice"`
	Status         string `json:"status"`
}

type StatsRequest struct {
	auth.AuthInput
}

type StatsResponse struct {
	Body struct {
		ActiveUsers        int64                   `json:"activeUsers"`
		Reservations       int64                   `json:"reservations"`
		Contracts          int64                   `json:"contracts"`
		Revenue            string                  `json:"revenue" doc:"Sum of confirmed reservation totals"`
		RecentReservations []RecentReservationBody `json:"recentReservations"`
		RecentContracts    []RecentContractBody    `json:"recentContracts"`
	}
}

func (h *AdminHandler) HandleStats(ctx context.Context, input *StatsRequest) (*StatsResponse, error) {
	if _, err := h.authorizeStaff(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	res := &StatsResponse{}

	if err := db.Model(&models.User{}).Where("is_active = ?", true).Count(&res.Body.ActiveUsers).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}
	if err := db.Model(&models.Reservation{}).Count(&res.Body.Reservations).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}
	if err := db.Model(&models.TimeshareContract{}).Count(&res.Body.Contracts).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}

	var revenue decimal.NullDecimal
	err := db.Model(&models.Reservation{}).
		Select("SUM(total_price)").
		Where("status = ?", string(booking.StatusConfirmed)).
		Row().Scan(&revenue)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	res.Body.Revenue = revenue.Decimal.StringFixed(2)

	var reservations []models.Reservation
	if err := db.Preload("User").Order("created_at DESC, id DESC").Limit(recentLimit).Find(&reservations).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}
	res.Body.RecentReservations = make([]RecentReservationBody, 0, len(reservations))
	for _, r := range reservations {
		res.Body.RecentReservations = append(res.Body.RecentReservations, RecentReservationBody{
			ID:               r.ID,
			GuestEmail:       r.User.Email,
			PropertyType:     r.PropertyType,
			PropertyID:       r.PropertyID,
			CheckIn:          r.CheckInDate.Format(booking.DateLayout),
			CheckOut:         r.CheckOutDate.Format(booking.DateLayout),
			TotalPrice:       r.TotalPrice.StringFixed(2),
			Status:           r.Status,
			ConfirmationCode: r.ConfirmationCode,
		})
	}

	var contracts []models.TimeshareContract
	if err := db.Preload("User").Preload("House").Order("created_at DESC, id DESC").Limit(recentLimit).Find(&contracts).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}
	res.Body.RecentContracts = make([]RecentContractBody, 0, len(contracts))
	for _, c := range contracts {
		res.Body.RecentContracts = append(res.Body.RecentContracts, RecentContractBody{
			ID:             c.ID,
			ContractNumber: c.ContractNumber,
			OwnerEmail:     c.User.Email,
			HouseName:      c.House.Name,
			Period:         c.Period,
			DurationWeeks:  c.DurationWeeks,
			PurchasePrice:  c.PurchasePrice.StringFixed(2),
			Status:         c.Status,
		})
	}

	return res, nil
}

type ConfirmReservationRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *AdminHandler) HandleConfirmReservation(ctx context.Context, input *ConfirmReservationRequest) (*ReservationResponse, error) {
	id, err := h.authorizeStaff(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res, err := h.manager.ConfirmReservation(ctx, id, input.ID)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	return &ReservationResponse{Body: reservationBody(*res, h.manager.Now())}, nil
}

type ActivateContractRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *AdminHandler) HandleActivateContract(ctx context.Context, input *ActivateContractRequest) (*ContractResponse, error) {
	id, err := h.authorizeStaff(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	c, err := h.manager.ActivateContract(ctx, id, input.ID)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	return &ContractResponse{Body: contractBody(*c, h.manager)}, nil
}
