package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxContractNumberAttempts bounds the retries on contract number collisions.
const maxContractNumberAttempts = 5

// TimeshareApplication is a request to buy weeks of a house in one period.
type TimeshareApplication struct {
	HouseID       uint   `json:"houseId" validate:"required"`
	Period        Period `json:"period"`
	DurationWeeks int    `json:"durationWeeks"`
}

// TimeshareOffer is a house open for timeshare with its weekly rate per period.
type TimeshareOffer struct {
	House       Property
	WeeklyRates map[Period]decimal.Decimal
}

// TimeshareOverview is what a guest sees on the timeshare page.
type TimeshareOverview struct {
	Eligible  bool
	Contracts []Contract
	Offers    []TimeshareOffer
}

// ContractNumber formats a contract number as TS, the year, the zero padded
// house id, the period prefix and a 4 digit suffix, e.g. TS2024003SUM4821.
func ContractNumber(year int, houseID uint, period Period, suffix int) string {
	prefix := strings.ToUpper(string(period))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("TS%04d%03d%s%04d", year, houseID, prefix, suffix)
}

// ContractTerms is the terms and conditions text stored on a contract.
func ContractTerms(durationWeeks int, period Period) string {
	return fmt.Sprintf("This timeshare contract grants the holder the right to use the specified property "+
		"for %d weeks during the %s period each year for %d years. The contract includes annual "+
		"maintenance fees and is subject to the Holiday Village terms and conditions.",
		durationWeeks, period, ContractYears)
}

func timeshareLockKey(userID, houseID uint, period Period) string {
	return fmt.Sprintf("timeshare:%d:%d:%s", userID, houseID, period)
}

// ApplyForTimeshare creates a pending contract and its ownership row. The
// preconditions are checked in order and the first failure is returned:
// authentication, eligibility, the house being offered as timeshare, no open
// contract for the same house and period, then period and duration.
func (m *Manager) ApplyForTimeshare(ctx context.Context, id *Identity, app TimeshareApplication) (*Contract, error) {
	if err := authenticated(id); err != nil {
		return nil, err
	}
	today := m.Today()
	if !id.TimeshareEligible(today) {
		return nil, ErrNotEligible
	}
	if err := validate.Struct(app); err != nil {
		return nil, fieldError(err)
	}

	house, err := m.store.GetProperty(ctx, PropertyRef{Type: PropertyHouse, ID: app.HouseID})
	if err != nil {
		return nil, persistenceError("get house", err)
	}
	if !house.IsTimeshare || !house.IsAvailable {
		return nil, ErrNotTimeshareHouse
	}

	var contract *Contract
	err = m.store.Atomically(ctx, timeshareLockKey(id.UserID, house.Ref.ID, app.Period), func(tx Store) error {
		open, err := tx.CountOpenContracts(ctx, id.UserID, house.Ref.ID, app.Period)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrDuplicateContract
		}

		quote, err := QuoteTimeshare(house.PricePerNight, app.Period, app.DurationWeeks)
		if err != nil {
			return err
		}
		contract = newContract(id.UserID, house, quote, today)
		if err := m.insertContract(ctx, tx, contract); err != nil {
			return err
		}
		return tx.InsertOwnership(ctx, Ownership{
			UserID:              id.UserID,
			HouseID:             house.Ref.ID,
			ContractID:          contract.ID,
			OwnershipPercentage: quote.OwnershipPercentage,
		})
	})
	if err != nil {
		return nil, persistenceError("apply for timeshare", err)
	}
	return contract, nil
}

func newContract(userID uint, house *Property, q TimeshareQuote, today time.Time) *Contract {
	return &Contract{
		UserID:               userID,
		HouseID:              house.Ref.ID,
		HouseName:            house.Name,
		Period:               q.Period,
		DurationWeeks:        q.DurationWeeks,
		PurchasePrice:        q.PurchasePrice,
		AnnualMaintenanceFee: q.AnnualMaintenanceFee,
		OwnershipPercentage:  q.OwnershipPercentage,
		ContractDate:         today,
		EffectiveFrom:        today.AddDate(0, 1, 0),
		ValidUntil:           today.AddDate(ContractYears, 0, 0),
		Status:               ContractPending,
		Terms:                ContractTerms(q.DurationWeeks, q.Period),
	}
}

// insertContract draws contract numbers until the store accepts one.
func (m *Manager) insertContract(ctx context.Context, tx Store, c *Contract) error {
	for attempt := 0; attempt < maxContractNumberAttempts; attempt++ {
		c.ContractNumber = ContractNumber(c.ContractDate.Year(), c.HouseID, c.Period, m.suffix())
		err := tx.InsertContract(ctx, c)
		if errors.Is(err, ErrDuplicateContractNumber) {
			continue
		}
		return err
	}
	return fmt.Errorf("no free contract number after %d attempts: %w", maxContractNumberAttempts, ErrDuplicateContractNumber)
}

// TimeshareOverview lists the caller's contracts, the houses open for
// timeshare and whether the caller may apply.
func (m *Manager) TimeshareOverview(ctx context.Context, id *Identity) (*TimeshareOverview, error) {
	if err := authenticated(id); err != nil {
		return nil, err
	}
	contracts, err := m.store.ListContractsByUser(ctx, id.UserID)
	if err != nil {
		return nil, persistenceError("list contracts", err)
	}
	houses, err := m.store.ListTimeshareHouses(ctx)
	if err != nil {
		return nil, persistenceError("list timeshare houses", err)
	}

	ov := &TimeshareOverview{
		Eligible:  id.TimeshareEligible(m.Today()),
		Contracts: contracts,
	}
	for _, h := range houses {
		offer := TimeshareOffer{House: h, WeeklyRates: make(map[Period]decimal.Decimal, len(Periods))}
		for _, p := range Periods {
			offer.WeeklyRates[p] = WeeklyRate(h.PricePerNight, p)
		}
		ov.Offers = append(ov.Offers, offer)
	}
	return ov, nil
}

// ActivateContract moves a pending contract to active.
func (m *Manager) ActivateContract(ctx context.Context, id *Identity, contractID uint) (*Contract, error) {
	if err := staff(id); err != nil {
		return nil, err
	}
	c, err := m.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, persistenceError("get contract", err)
	}
	if c.Status != ContractPending {
		return nil, ErrInvalidTransition
	}
	ok, err := m.store.UpdateContractStatus(ctx, c.ID, []ContractStatus{ContractPending}, ContractActive)
	if err != nil {
		return nil, persistenceError("activate contract", err)
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	c.Status = ContractActive
	return c, nil
}
