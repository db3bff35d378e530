package handlers

import (
	"context"
	"log"

	"github.com/yusufgokkayy/IBP-final-project/internal/apierror"
	"github.com/yusufgokkayy/IBP-final-project/internal/auth"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/notifier"
)

type TimeshareHandler struct {
	manager     *booking.Manager
	authHandler *auth.AuthHandler
	notifier    notifier.Notifier
}

func NewTimeshareHandler(manager *booking.Manager, authHandler *auth.AuthHandler, n notifier.Notifier) *TimeshareHandler {
	return &TimeshareHandler{manager: manager, authHandler: authHandler, notifier: n}
}

type ContractBody struct {
	ID                   uint   `json:"id"`
	ContractNumber       string `json:"contractNumber"`
	HouseID              uint   `json:"houseId"`
	HouseName            string `json:"houseName"`
	Period               string `json:"period"`
	DurationWeeks        int    `json:"durationWeeks"`
	PurchasePrice        string `json:"purchasePrice"`
	AnnualMaintenanceFee string `json:"annualMaintenanceFee"`
	OwnershipPercentage  string `json:"ownershipPercentage"`
	ContractDate         string `json:"contractDate"`
	EffectiveFrom        string `json:"effectiveFrom"`
	ValidUntil           string `json:"validUntil"`
	RemainingYears       int    `json:"remainingYears"`
	Status               string `json:"status"`
	TermsConditions      string `json:"termsConditions"`
}

func contractBody(c booking.Contract, m *booking.Manager) ContractBody {
	return ContractBody{
		ID:                   c.ID,
		ContractNumber:       c.ContractNumber,
		HouseID:              c.HouseID,
		HouseName:            c.HouseName,
		Period:               string(c.Period),
		DurationWeeks:        c.DurationWeeks,
		PurchasePrice:        c.PurchasePrice.StringFixed(2),
		AnnualMaintenanceFee: c.AnnualMaintenanceFee.StringFixed(2),
		OwnershipPercentage:  c.OwnershipPercentage.StringFixed(2),
		ContractDate:         c.ContractDate.Format(booking.DateLayout),
		EffectiveFrom:        c.EffectiveFrom.Format(booking.DateLayout),
		ValidUntil:           c.ValidUntil.Format(booking.DateLayout),
		RemainingYears:       c.RemainingYears(m.Today()),
		Status:               string(c.Status),
		TermsConditions:      c.Terms,
	}
}

type TimeshareOfferBody struct {
	HouseID       uint              `json:"houseId"`
	Name          string            `json:"name"`
	Location      string            `json:"location"`
	HasPool       bool              `json:"hasPool"`
	MaxOccupancy  int               `json:"maxOccupancy"`
	PricePerNight string            `json:"pricePerNight"`
	WeeklyRates   map[string]string `json:"weeklyRates" doc:"Weekly usage rate per period"`
}

type TimeshareOverviewRequest struct {
	auth.AuthInput
}

type TimeshareOverviewResponse struct {
	Body struct {
		Eligible  bool                 `json:"eligible"`
		Contracts []ContractBody       `json:"contracts"`
		Houses    []TimeshareOfferBody `json:"houses"`
	}
}

func (h *TimeshareHandler) HandleOverview(ctx context.Context, input *TimeshareOverviewRequest) (*TimeshareOverviewResponse, error) {
	id, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	ov, err := h.manager.TimeshareOverview(ctx, id)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}

	res := &TimeshareOverviewResponse{}
	res.Body.Eligible = ov.Eligible
	res.Body.Contracts = make([]ContractBody, 0, len(ov.Contracts))
	for _, c := range ov.Contracts {
		res.Body.Contracts = append(res.Body.Contracts, contractBody(c, h.manager))
	}
	res.Body.Houses = make([]TimeshareOfferBody, 0, len(ov.Offers))
	for _, o := range ov.Offers {
		rates := make(map[string]string, len(o.WeeklyRates))
		for p, rate := range o.WeeklyRates {
			rates[string(p)] = rate.StringFixed(2)
		}
		res.Body.Houses = append(res.Body.Houses, TimeshareOfferBody{
			HouseID:       o.House.Ref.ID,
			Name:          o.House.Name,
			Location:      o.House.Location,
			HasPool:       o.House.HasPool,
			MaxOccupancy:  o.House.Capacity,
			PricePerNight: o.House.PricePerNight.StringFixed(2),
			WeeklyRates:   rates,
		})
	}
	return res, nil
}

type ApplyTimeshareRequest struct {
	auth.AuthInput
	Body struct {
		HouseID       uint   `json:"houseId"`
		Period        string `json:"period" doc:"spring, summer, autumn or winter"`
		DurationWeeks int    `json:"durationWeeks" doc:"1 to 12 weeks"`
	}
}

type ContractResponse struct {
	Body ContractBody
}

func (h *TimeshareHandler) HandleApply(ctx context.Context, input *ApplyTimeshareRequest) (*ContractResponse, error) {
	id, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	c, err := h.manager.ApplyForTimeshare(ctx, id, booking.TimeshareApplication{
		HouseID:       input.Body.HouseID,
		Period:        booking.Period(input.Body.Period),
		DurationWeeks: input.Body.DurationWeeks,
	})
	if err != nil {
		return nil, apierror.From(ctx, err)
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyTimeshareApplication(*id, *c); err != nil {
			log.Printf("Failed to send timeshare notification: %v", err)
		}
	}

	return &ContractResponse{Body: contractBody(*c, h.manager)}, nil
}
