package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Property is a bookable hotel room or house as the catalog describes it.
type Property struct {
	Ref           PropertyRef
	Name          string
	PricePerNight decimal.Decimal
	Capacity      int
	IsAvailable   bool
	IsTimeshare   bool
	HasPool       bool
	Location      string
	Description   string
}

// Reservation is a stored stay.
type Reservation struct {
	ID               uint
	UserID           uint
	Property         PropertyRef
	PropertyName     string
	Range            DateRange
	GuestCount       int
	PricePerNight    decimal.Decimal
	TotalPrice       decimal.Decimal
	Status           Status
	SpecialRequests  string
	ConfirmationCode string
	BookedAt         time.Time
}

// DisplayStatus is the label shown to guests. It depends on today and is
// never persisted.
type DisplayStatus string

const (
	DisplayCancelled DisplayStatus = "Cancelled"
	DisplayUpcoming  DisplayStatus = "Upcoming"
	DisplayActive    DisplayStatus = "Active"
	DisplayCompleted DisplayStatus = "Completed"
)

func (r Reservation) DisplayStatus(today time.Time) DisplayStatus {
	today = DateOf(today)
	switch {
	case r.Status == StatusCancelled:
		return DisplayCancelled
	case today.Before(r.Range.Start):
		return DisplayUpcoming
	case today.Before(r.Range.End):
		return DisplayActive
	default:
		return DisplayCompleted
	}
}

// CanCancel reports whether the guest may still cancel at now.
func (r Reservation) CanCancel(now time.Time) bool {
	return r.Status.Blocking() && DaysUntil(r.Range.Start, now) > 1
}

// CanModify reports whether the guest may still change the stay at now.
func (r Reservation) CanModify(now time.Time) bool {
	return r.Status.Blocking() && DaysUntil(r.Range.Start, now) > 2
}

// Booking is the part of r the overlap check looks at.
func (r Reservation) Booking() Booking {
	return Booking{ID: r.ID, Property: r.Property, Range: r.Range, Status: r.Status}
}

type ContractStatus string

const (
	ContractPending   ContractStatus = "pending"
	ContractActive    ContractStatus = "active"
	ContractExpired   ContractStatus = "expired"
	ContractCancelled ContractStatus = "cancelled"
)

// OpenContractStatuses are the statuses that count against the one contract
// per user, house and period rule.
var OpenContractStatuses = []ContractStatus{ContractPending, ContractActive}

// Contract is a timeshare purchase agreement.
type Contract struct {
	ID                   uint
	ContractNumber       string
	UserID               uint
	HouseID              uint
	HouseName            string
	Period               Period
	DurationWeeks        int
	PurchasePrice        decimal.Decimal
	AnnualMaintenanceFee decimal.Decimal
	OwnershipPercentage  decimal.Decimal
	ContractDate         time.Time
	EffectiveFrom        time.Time
	ValidUntil           time.Time
	Status               ContractStatus
	Terms                string
}

// RemainingYears is the number of full years left on the contract.
func (c Contract) RemainingYears(today time.Time) int {
	if !c.ValidUntil.After(today) {
		return 0
	}
	return Age(today, c.ValidUntil)
}

// Ownership records the share of a house a contract grants.
type Ownership struct {
	UserID              uint
	HouseID             uint
	ContractID          uint
	OwnershipPercentage decimal.Decimal
}

// PropertyCatalog looks up inventory. GetProperty returns ErrPropertyNotFound
// for unknown references.
type PropertyCatalog interface {
	GetProperty(ctx context.Context, ref PropertyRef) (*Property, error)
	ListTimeshareHouses(ctx context.Context) ([]Property, error)
}

// ReservationStore persists reservations. GetReservation returns
// ErrReservationNotFound for unknown ids. UpdateReservationStatus only applies
// when the current status is one of from and reports whether it did.
type ReservationStore interface {
	FindConflicting(ctx context.Context, ref PropertyRef, r DateRange, statuses []Status) ([]Booking, error)
	InsertReservation(ctx context.Context, res *Reservation) error
	GetReservation(ctx context.Context, id uint) (*Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uint, from []Status, to Status) (bool, error)
	ListReservationsByUser(ctx context.Context, userID uint) ([]Reservation, error)
}

// ContractStore persists timeshare contracts and ownership rows. InsertContract
// returns ErrDuplicateContractNumber when the number is already taken.
type ContractStore interface {
	CountOpenContracts(ctx context.Context, userID, houseID uint, period Period) (int64, error)
	InsertContract(ctx context.Context, c *Contract) error
	InsertOwnership(ctx context.Context, o Ownership) error
	GetContract(ctx context.Context, id uint) (*Contract, error)
	UpdateContractStatus(ctx context.Context, id uint, from []ContractStatus, to ContractStatus) (bool, error)
	ListContractsByUser(ctx context.Context, userID uint) ([]Contract, error)
}

// Store is everything the Manager needs from storage. Atomically runs fn with
// a Store bound to a single transaction while holding an exclusive lock on
// key. Any error returned by fn rolls the transaction back.
type Store interface {
	PropertyCatalog
	ReservationStore
	ContractStore
	Atomically(ctx context.Context, key string, fn func(tx Store) error) error
}
