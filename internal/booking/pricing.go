package booking

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Period is the season a timeshare week falls in.
type Period string

const (
	PeriodSpring Period = "spring"
	PeriodSummer Period = "summer"
	PeriodAutumn Period = "autumn"
	PeriodWinter Period = "winter"
)

// Periods lists the seasons in calendar order.
var Periods = []Period{PeriodSpring, PeriodSummer, PeriodAutumn, PeriodWinter}

var periodMultipliers = map[Period]decimal.Decimal{
	PeriodSpring: decimal.RequireFromString("1.0"),
	PeriodSummer: decimal.RequireFromString("1.5"),
	PeriodAutumn: decimal.RequireFromString("1.2"),
	PeriodWinter: decimal.RequireFromString("0.8"),
}

const (
	MinDurationWeeks = 1
	MaxDurationWeeks = 12

	// ContractYears is the fixed term of every timeshare contract.
	ContractYears = 25
)

var (
	daysPerWeek         = decimal.NewFromInt(7)
	weeksPerYear        = decimal.NewFromInt(52)
	purchaseMultiplier  = decimal.NewFromInt(10)
	maintenanceFeeRatio = decimal.RequireFromString("0.05")
	hundred             = decimal.NewFromInt(100)
)

func (p Period) Valid() bool {
	_, ok := periodMultipliers[p]
	return ok
}

// Multiplier returns the seasonal price factor, or zero for an unknown period.
func (p Period) Multiplier() decimal.Decimal {
	return periodMultipliers[p]
}

func currency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// StayPrice is the total cost of a stay.
func StayPrice(pricePerNight decimal.Decimal, nights int) decimal.Decimal {
	return currency(pricePerNight.Mul(decimal.NewFromInt(int64(nights))))
}

// WeeklyRate is one week of use in the given period.
func WeeklyRate(basePricePerNight decimal.Decimal, period Period) decimal.Decimal {
	return currency(basePricePerNight.Mul(daysPerWeek).Mul(period.Multiplier()))
}

// TimesharePeriodPrice is the usage rate for durationWeeks in the given period.
func TimesharePeriodPrice(basePricePerNight decimal.Decimal, period Period, durationWeeks int) decimal.Decimal {
	return currency(basePricePerNight.
		Mul(daysPerWeek).
		Mul(period.Multiplier()).
		Mul(decimal.NewFromInt(int64(durationWeeks))))
}

// TimesharePurchasePrice is ten times the usage rate for the whole duration.
func TimesharePurchasePrice(weeklyRate decimal.Decimal, durationWeeks int) decimal.Decimal {
	return currency(weeklyRate.Mul(decimal.NewFromInt(int64(durationWeeks))).Mul(purchaseMultiplier))
}

func AnnualMaintenanceFee(purchasePrice decimal.Decimal) decimal.Decimal {
	return currency(purchasePrice.Mul(maintenanceFeeRatio))
}

// OwnershipPercentage is the share of a year the contract covers.
func OwnershipPercentage(durationWeeks int) decimal.Decimal {
	return decimal.NewFromInt(int64(durationWeeks)).Div(weeksPerYear).Mul(hundred).Round(2)
}

// TimeshareQuote is the full price breakdown for a timeshare application.
type TimeshareQuote struct {
	Period               Period
	DurationWeeks        int
	WeeklyRate           decimal.Decimal
	PeriodPrice          decimal.Decimal
	PurchasePrice        decimal.Decimal
	AnnualMaintenanceFee decimal.Decimal
	OwnershipPercentage  decimal.Decimal
}

// QuoteTimeshare prices durationWeeks of a house in a period.
func QuoteTimeshare(basePricePerNight decimal.Decimal, period Period, durationWeeks int) (TimeshareQuote, error) {
	if !period.Valid() {
		return TimeshareQuote{}, ErrInvalidPeriod
	}
	if durationWeeks < MinDurationWeeks || durationWeeks > MaxDurationWeeks {
		return TimeshareQuote{}, ErrInvalidDuration
	}

	weekly := WeeklyRate(basePricePerNight, period)
	purchase := TimesharePurchasePrice(weekly, durationWeeks)
	return TimeshareQuote{
		Period:               period,
		DurationWeeks:        durationWeeks,
		WeeklyRate:           weekly,
		PeriodPrice:          TimesharePeriodPrice(basePricePerNight, period, durationWeeks),
		PurchasePrice:        purchase,
		AnnualMaintenanceFee: AnnualMaintenanceFee(purchase),
		OwnershipPercentage:  OwnershipPercentage(durationWeeks),
	}, nil
}

func (q TimeshareQuote) String() string {
	return fmt.Sprintf("%d weeks of %s at %s/week, purchase %s", q.DurationWeeks, q.Period, q.WeeklyRate.StringFixed(2), q.PurchasePrice.StringFixed(2))
}
