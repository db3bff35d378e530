package booking_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/config"
	"github.com/yusufgokkayy/IBP-final-project/internal/database"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
	"gorm.io/gorm"
)

// Seeded catalog ids.
const (
	denizRoom101    = 1 // 120.00, up to 2 guests
	sunsetVilla     = 1 // 250.00, timeshare
	oceanBreeze     = 2 // 300.00, timeshare
	mountainLodge   = 6 // not timeshare
	executiveVilla  = 8 // 350.00, timeshare, up to 10 guests
	timeshareHouses = 6
)

type fixture struct {
	db      *gorm.DB
	manager *booking.Manager
	now     time.Time
	users   int
}

func newFixture(t *testing.T, now time.Time, opts ...booking.Option) *fixture {
	t.Helper()
	db, err := database.Open(&config.Config{
		DatabaseDriver: database.DriverSQLite,
		DatabasePath:   ":memory:",
		SeedCatalog:    true,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	opts = append([]booking.Option{booking.WithClock(func() time.Time { return now })}, opts...)
	return &fixture{
		db:      db,
		manager: booking.NewManager(database.NewStore(db), opts...),
		now:     now,
	}
}

func (f *fixture) user(t *testing.T, birth time.Time, status booking.MaritalStatus, admin bool) *booking.Identity {
	t.Helper()
	f.users++
	u := models.User{
		FirstName:     "Guest",
		LastName:      fmt.Sprint(f.users),
		Email:         fmt.Sprintf("guest%d@example.com", f.users),
		BirthDate:     birth,
		MaritalStatus: string(status),
		IsAdmin:       admin,
		IsActive:      true,
	}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &booking.Identity{
		UserID:        u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		BirthDate:     birth,
		MaritalStatus: status,
		IsAdmin:       admin,
	}
}

func (f *fixture) guest(t *testing.T) *booking.Identity {
	return f.user(t, booking.Date(1990, 1, 1), booking.MaritalMarried, false)
}

func (f *fixture) day(offset int) string {
	return booking.DateOf(f.now).AddDate(0, 0, offset).Format(booking.DateLayout)
}

func stay(kind booking.PropertyType, id uint, checkIn, checkOut string, guests int) booking.ReservationRequest {
	return booking.ReservationRequest{
		StayRequest: booking.StayRequest{
			PropertyType: kind,
			PropertyID:   id,
			CheckIn:      checkIn,
			CheckOut:     checkOut,
		},
		GuestCount: guests,
	}
}

func expectError(t *testing.T, err, target error, kind booking.Kind) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
	if got := booking.KindOf(err); got != kind {
		t.Errorf("expected kind %s, got %s", kind, got)
	}
}

var morning = time.Date(2030, time.January, 10, 9, 0, 0, 0, time.UTC)

func TestCreateReservation(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	guest := f.guest(t)

	res, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHotelRoom, denizRoom101, f.day(5), f.day(8), 2))
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}

	t.Run("Persisted", func(t *testing.T) {
		if res.ID == 0 || res.Status != booking.StatusPending {
			t.Errorf("expected pending reservation with id, got %+v", res)
		}
		if !res.TotalPrice.Equal(decimal.NewFromInt(360)) {
			t.Errorf("expected total 360.00, got %s", res.TotalPrice.StringFixed(2))
		}
		if res.PropertyName != "Hotel Deniz Room 101" {
			t.Errorf("unexpected property name %q", res.PropertyName)
		}
		if !regexp.MustCompile(`^HV-[0-9A-F]{10}$`).MatchString(res.ConfirmationCode) {
			t.Errorf("unexpected confirmation code %q", res.ConfirmationCode)
		}

		stored, err := database.NewStore(f.db).GetReservation(ctx, res.ID)
		if err != nil {
			t.Fatalf("GetReservation returned error: %v", err)
		}
		if !stored.Range.Start.Equal(res.Range.Start) || !stored.Range.End.Equal(res.Range.End) || !stored.TotalPrice.Equal(res.TotalPrice) {
			t.Errorf("stored reservation differs: %+v vs %+v", stored, res)
		}
	})

	t.Run("IdenticalRangeConflicts", func(t *testing.T) {
		_, err := f.manager.CreateReservation(ctx, f.guest(t), stay(booking.PropertyHotelRoom, denizRoom101, f.day(5), f.day(8), 1))
		expectError(t, err, booking.ErrPropertyNotAvailable, booking.KindConflict)
	})

	t.Run("AdjacentAllowed", func(t *testing.T) {
		if _, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHotelRoom, denizRoom101, f.day(8), f.day(10), 2)); err != nil {
			t.Fatalf("expected adjacent stay to succeed, got %v", err)
		}
		if _, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHotelRoom, denizRoom101, f.day(3), f.day(5), 2)); err != nil {
			t.Fatalf("expected adjacent stay to succeed, got %v", err)
		}
	})

	t.Run("SameIDOtherType", func(t *testing.T) {
		if _, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, sunsetVilla, f.day(5), f.day(8), 4)); err != nil {
			t.Fatalf("expected house 1 to be free, got %v", err)
		}
	})

	t.Run("TooManyGuests", func(t *testing.T) {
		_, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHotelRoom, 2, f.day(5), f.day(8), 3))
		expectError(t, err, booking.ErrGuestCountOutOfRange, booking.KindValidation)
	})

	t.Run("PastCheckIn", func(t *testing.T) {
		_, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHotelRoom, 2, f.day(-1), f.day(2), 1))
		expectError(t, err, booking.ErrCheckInInPast, booking.KindValidation)
	})

	t.Run("MissingField", func(t *testing.T) {
		_, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHotelRoom, 0, f.day(1), f.day(2), 1))
		var be *booking.Error
		if !errors.As(err, &be) || be.Kind != booking.KindValidation || be.Field != "propertyId" {
			t.Fatalf("expected propertyId validation error, got %v", err)
		}
	})

	t.Run("UnknownProperty", func(t *testing.T) {
		_, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, 999, f.day(5), f.day(8), 1))
		expectError(t, err, booking.ErrPropertyNotFound, booking.KindNotFound)
	})

	t.Run("ClosedProperty", func(t *testing.T) {
		f.db.Model(&models.House{}).Where("id = ?", 7).Update("is_available", false)
		_, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, 7, f.day(5), f.day(8), 1))
		expectError(t, err, booking.ErrPropertyUnavailable, booking.KindConflict)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := f.manager.CreateReservation(ctx, nil, stay(booking.PropertyHouse, 3, f.day(5), f.day(8), 1))
		expectError(t, err, booking.ErrUnauthenticated, booking.KindAuth)
	})

	t.Run("CancelledDoesNotBlock", func(t *testing.T) {
		first, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, 4, f.day(10), f.day(12), 2))
		if err != nil {
			t.Fatalf("CreateReservation returned error: %v", err)
		}
		if _, err := f.manager.CancelReservation(ctx, guest, first.ID); err != nil {
			t.Fatalf("CancelReservation returned error: %v", err)
		}
		if _, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, 4, f.day(10), f.day(12), 2)); err != nil {
			t.Fatalf("expected cancelled dates to be bookable, got %v", err)
		}
	})
}

func TestCreateReservation_Concurrent(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	guests := []*booking.Identity{f.guest(t), f.guest(t), f.guest(t), f.guest(t)}

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, len(guests))
	for i, g := range guests {
		wg.Add(1)
		go func(i int, g *booking.Identity) {
			defer wg.Done()
			<-start
			// Overlapping but not identical stays.
			_, errs[i] = f.manager.CreateReservation(ctx, g, stay(booking.PropertyHouse, executiveVilla, f.day(10+i), f.day(14+i), 4))
		}(i, g)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, booking.ErrPropertyNotAvailable):
			t.Errorf("expected conflict, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one reservation to succeed, got %d", succeeded)
	}

	var count int64
	f.db.Model(&models.Reservation{}).Where("property_id = ? AND property_type = ?", executiveVilla, "house").Count(&count)
	if count != 1 {
		t.Errorf("expected 1 stored reservation, got %d", count)
	}
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	req := booking.StayRequest{PropertyType: booking.PropertyHouse, PropertyID: oceanBreeze, CheckIn: f.day(1), CheckOut: f.day(4)}

	q, err := f.manager.CheckAvailability(ctx, req)
	if err != nil {
		t.Fatalf("CheckAvailability returned error: %v", err)
	}
	if !q.Available || q.Nights != 3 || !q.TotalPrice.Equal(decimal.NewFromInt(900)) {
		t.Errorf("unexpected quote %+v", q)
	}

	if _, err := f.manager.CreateReservation(ctx, f.guest(t), booking.ReservationRequest{StayRequest: req, GuestCount: 2}); err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}

	q, err = f.manager.CheckAvailability(ctx, req)
	if err != nil {
		t.Fatalf("unavailable dates must not be an error, got %v", err)
	}
	if q.Available {
		t.Error("expected dates to be unavailable after booking")
	}

	_, err = f.manager.CheckAvailability(ctx, booking.StayRequest{PropertyType: booking.PropertyHouse, PropertyID: oceanBreeze, CheckIn: "tomorrow", CheckOut: f.day(4)})
	expectError(t, err, booking.ErrInvalidFormat, booking.KindValidation)
}

func TestCancelReservation(t *testing.T) {
	midnight := time.Date(2030, time.January, 10, 0, 0, 0, 0, time.UTC)
	f := newFixture(t, midnight)
	ctx := context.Background()
	guest := f.guest(t)

	t.Run("ExactlyOneDayAway", func(t *testing.T) {
		res, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, 3, f.day(1), f.day(3), 2))
		if err != nil {
			t.Fatalf("CreateReservation returned error: %v", err)
		}
		_, err = f.manager.CancelReservation(ctx, guest, res.ID)
		expectError(t, err, booking.ErrCancellationNotAllowed, booking.KindConflict)
	})

	res, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, 3, f.day(3), f.day(6), 2))
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}

	t.Run("OtherGuest", func(t *testing.T) {
		_, err := f.manager.CancelReservation(ctx, f.guest(t), res.ID)
		expectError(t, err, booking.ErrReservationNotFound, booking.KindNotFound)
	})

	t.Run("ThreeDaysAway", func(t *testing.T) {
		cancelled, err := f.manager.CancelReservation(ctx, guest, res.ID)
		if err != nil {
			t.Fatalf("CancelReservation returned error: %v", err)
		}
		if cancelled.Status != booking.StatusCancelled {
			t.Errorf("expected cancelled, got %s", cancelled.Status)
		}

		var history int64
		f.db.Model(&models.ReservationHistory{}).Where("reservation_id = ?", res.ID).Count(&history)
		if history != 2 {
			t.Errorf("expected 2 history snapshots, got %d", history)
		}
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		_, err := f.manager.CancelReservation(ctx, guest, res.ID)
		expectError(t, err, booking.ErrAlreadyCancelled, booking.KindConflict)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := f.manager.CancelReservation(ctx, guest, 4242)
		expectError(t, err, booking.ErrReservationNotFound, booking.KindNotFound)
	})
}

func TestModifyReservation(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	guest := f.guest(t)

	res, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, 5, f.day(10), f.day(12), 2))
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}
	other, err := f.manager.CreateReservation(ctx, f.guest(t), stay(booking.PropertyHouse, 5, f.day(20), f.day(25), 2))
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}
	store := database.NewStore(f.db)

	t.Run("ConflictKeepsOriginal", func(t *testing.T) {
		_, err := f.manager.ModifyReservation(ctx, guest, res.ID, booking.ReservationChange{CheckIn: f.day(22), CheckOut: f.day(24), GuestCount: 2})
		expectError(t, err, booking.ErrPropertyNotAvailable, booking.KindConflict)

		stored, err := store.GetReservation(ctx, res.ID)
		if err != nil {
			t.Fatalf("GetReservation returned error: %v", err)
		}
		if stored.Status != booking.StatusPending {
			t.Errorf("expected original reservation to stay pending, got %s", stored.Status)
		}
	})

	t.Run("OverlappingOwnDates", func(t *testing.T) {
		updated, err := f.manager.ModifyReservation(ctx, guest, res.ID, booking.ReservationChange{CheckIn: f.day(11), CheckOut: f.day(14), GuestCount: 3, SpecialRequests: "late arrival"})
		if err != nil {
			t.Fatalf("ModifyReservation returned error: %v", err)
		}
		if updated.ID == res.ID || updated.Range.Nights() != 3 || updated.GuestCount != 3 {
			t.Errorf("unexpected replacement %+v", updated)
		}
		if !updated.TotalPrice.Equal(decimal.NewFromInt(780)) {
			t.Errorf("expected total 780.00, got %s", updated.TotalPrice.StringFixed(2))
		}

		old, err := store.GetReservation(ctx, res.ID)
		if err != nil {
			t.Fatalf("GetReservation returned error: %v", err)
		}
		if old.Status != booking.StatusCancelled {
			t.Errorf("expected original to be cancelled, got %s", old.Status)
		}
	})

	t.Run("TooClose", func(t *testing.T) {
		soon, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHouse, 5, f.day(2), f.day(4), 2))
		if err != nil {
			t.Fatalf("CreateReservation returned error: %v", err)
		}
		_, err = f.manager.ModifyReservation(ctx, guest, soon.ID, booking.ReservationChange{CheckIn: f.day(30), CheckOut: f.day(32), GuestCount: 2})
		expectError(t, err, booking.ErrModificationNotAllowed, booking.KindConflict)
	})

	t.Run("OtherGuest", func(t *testing.T) {
		_, err := f.manager.ModifyReservation(ctx, guest, other.ID, booking.ReservationChange{CheckIn: f.day(30), CheckOut: f.day(32), GuestCount: 2})
		expectError(t, err, booking.ErrReservationNotFound, booking.KindNotFound)
	})
}

func TestListReservations(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	guest := f.guest(t)

	for _, offset := range []int{10, 30, 20} {
		if _, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHotelRoom, 3, f.day(offset), f.day(offset+2), 1)); err != nil {
			t.Fatalf("CreateReservation returned error: %v", err)
		}
	}
	if _, err := f.manager.CreateReservation(ctx, f.guest(t), stay(booking.PropertyHotelRoom, 3, f.day(40), f.day(42), 1)); err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}

	list, err := f.manager.ListReservations(ctx, guest)
	if err != nil {
		t.Fatalf("ListReservations returned error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 reservations, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if !list[i-1].Range.Start.After(list[i].Range.Start) {
			t.Errorf("expected latest check-in first, got %s before %s", list[i-1].Range, list[i].Range)
		}
	}
	if got := list[0].DisplayStatus(f.manager.Today()); got != booking.DisplayUpcoming {
		t.Errorf("expected Upcoming, got %s", got)
	}
	if got := list[0].DisplayStatus(list[0].Range.Start); got != booking.DisplayActive {
		t.Errorf("expected Active, got %s", got)
	}
}

func TestConfirmReservation(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	guest := f.guest(t)
	admin := f.user(t, booking.Date(1980, 1, 1), booking.MaritalSingle, true)

	res, err := f.manager.CreateReservation(ctx, guest, stay(booking.PropertyHotelRoom, 4, f.day(5), f.day(7), 1))
	if err != nil {
		t.Fatalf("CreateReservation returned error: %v", err)
	}

	_, err = f.manager.ConfirmReservation(ctx, guest, res.ID)
	expectError(t, err, booking.ErrForbidden, booking.KindAuth)

	confirmed, err := f.manager.ConfirmReservation(ctx, admin, res.ID)
	if err != nil {
		t.Fatalf("ConfirmReservation returned error: %v", err)
	}
	if confirmed.Status != booking.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}

	_, err = f.manager.ConfirmReservation(ctx, admin, res.ID)
	expectError(t, err, booking.ErrInvalidTransition, booking.KindConflict)

	_, err = f.manager.CreateReservation(ctx, f.guest(t), stay(booking.PropertyHotelRoom, 4, f.day(6), f.day(8), 1))
	expectError(t, err, booking.ErrPropertyNotAvailable, booking.KindConflict)
}

func TestApplyForTimeshare(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	married := f.guest(t)
	young := f.user(t, booking.Date(2006, 1, 1), booking.MaritalMarried, false)
	single := f.user(t, booking.Date(1980, 1, 1), booking.MaritalSingle, false)
	app := booking.TimeshareApplication{HouseID: oceanBreeze, Period: booking.PeriodSummer, DurationWeeks: 2}

	c, err := f.manager.ApplyForTimeshare(ctx, married, app)
	if err != nil {
		t.Fatalf("ApplyForTimeshare returned error: %v", err)
	}

	t.Run("Contract", func(t *testing.T) {
		if !regexp.MustCompile(`^TS2030002SUM\d{4}$`).MatchString(c.ContractNumber) {
			t.Errorf("unexpected contract number %q", c.ContractNumber)
		}
		if c.Status != booking.ContractPending {
			t.Errorf("expected pending, got %s", c.Status)
		}
		// 300 * 7 * 1.5 = 3150 per week
		if !c.PurchasePrice.Equal(decimal.NewFromInt(63000)) || !c.AnnualMaintenanceFee.Equal(decimal.NewFromInt(3150)) {
			t.Errorf("unexpected pricing %s / %s", c.PurchasePrice, c.AnnualMaintenanceFee)
		}
		if !c.EffectiveFrom.Equal(booking.Date(2030, 2, 10)) || !c.ValidUntil.Equal(booking.Date(2055, 1, 10)) {
			t.Errorf("unexpected dates %s - %s", c.EffectiveFrom, c.ValidUntil)
		}
		if c.Terms == "" {
			t.Error("expected terms and conditions")
		}

		var ownership models.TimeshareOwnership
		if err := f.db.Where("contract_id = ?", c.ID).First(&ownership).Error; err != nil {
			t.Fatalf("expected ownership row: %v", err)
		}
		if !ownership.OwnershipPercentage.Equal(decimal.RequireFromString("3.85")) {
			t.Errorf("expected 3.85%% ownership, got %s", ownership.OwnershipPercentage)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := f.manager.ApplyForTimeshare(ctx, married, app)
		expectError(t, err, booking.ErrDuplicateContract, booking.KindConflict)
	})

	t.Run("OtherPeriodAllowed", func(t *testing.T) {
		if _, err := f.manager.ApplyForTimeshare(ctx, married, booking.TimeshareApplication{HouseID: oceanBreeze, Period: booking.PeriodWinter, DurationWeeks: 1}); err != nil {
			t.Fatalf("expected another period to be allowed, got %v", err)
		}
	})

	t.Run("Ineligible", func(t *testing.T) {
		_, err := f.manager.ApplyForTimeshare(ctx, young, app)
		expectError(t, err, booking.ErrNotEligible, booking.KindEligibility)
		_, err = f.manager.ApplyForTimeshare(ctx, single, app)
		expectError(t, err, booking.ErrNotEligible, booking.KindEligibility)
	})

	t.Run("PreconditionOrder", func(t *testing.T) {
		bad := booking.TimeshareApplication{HouseID: mountainLodge, Period: "monsoon", DurationWeeks: 40}

		_, err := f.manager.ApplyForTimeshare(ctx, nil, bad)
		expectError(t, err, booking.ErrUnauthenticated, booking.KindAuth)
		_, err = f.manager.ApplyForTimeshare(ctx, young, bad)
		expectError(t, err, booking.ErrNotEligible, booking.KindEligibility)
		_, err = f.manager.ApplyForTimeshare(ctx, married, bad)
		expectError(t, err, booking.ErrNotTimeshareHouse, booking.KindConflict)

		bad.HouseID = oceanBreeze
		bad.Period = booking.PeriodSummer
		_, err = f.manager.ApplyForTimeshare(ctx, married, bad)
		expectError(t, err, booking.ErrDuplicateContract, booking.KindConflict)

		bad.HouseID = sunsetVilla
		bad.Period = "monsoon"
		_, err = f.manager.ApplyForTimeshare(ctx, married, bad)
		expectError(t, err, booking.ErrInvalidPeriod, booking.KindValidation)

		bad.Period = booking.PeriodSpring
		_, err = f.manager.ApplyForTimeshare(ctx, married, bad)
		expectError(t, err, booking.ErrInvalidDuration, booking.KindValidation)

		var count int64
		f.db.Model(&models.TimeshareContract{}).Where("house_id = ?", sunsetVilla).Count(&count)
		if count != 0 {
			t.Errorf("expected no contract to be written, got %d", count)
		}
	})

	t.Run("UnknownHouse", func(t *testing.T) {
		_, err := f.manager.ApplyForTimeshare(ctx, married, booking.TimeshareApplication{HouseID: 99, Period: booking.PeriodSpring, DurationWeeks: 1})
		expectError(t, err, booking.ErrPropertyNotFound, booking.KindNotFound)
	})
}

func TestApplyForTimeshare_ContractNumberCollision(t *testing.T) {
	suffixes := []int{1234, 1234, 5678}
	var mu sync.Mutex
	next := func() int {
		mu.Lock()
		defer mu.Unlock()
		s := suffixes[0]
		if len(suffixes) > 1 {
			suffixes = suffixes[1:]
		}
		return s
	}

	f := newFixture(t, morning, booking.WithContractSuffix(next))
	ctx := context.Background()
	app := booking.TimeshareApplication{HouseID: sunsetVilla, Period: booking.PeriodSpring, DurationWeeks: 1}

	first, err := f.manager.ApplyForTimeshare(ctx, f.guest(t), app)
	if err != nil {
		t.Fatalf("ApplyForTimeshare returned error: %v", err)
	}
	second, err := f.manager.ApplyForTimeshare(ctx, f.guest(t), app)
	if err != nil {
		t.Fatalf("expected retry with a fresh suffix, got %v", err)
	}
	if first.ContractNumber != "TS2030001SPR1234" || second.ContractNumber != "TS2030001SPR5678" {
		t.Errorf("unexpected contract numbers %s, %s", first.ContractNumber, second.ContractNumber)
	}

	// Only 5678 is left, which is taken now.
	_, err = f.manager.ApplyForTimeshare(ctx, f.guest(t), app)
	if booking.KindOf(err) != booking.KindPersistence {
		t.Fatalf("expected retryable persistence error, got %v", err)
	}
	var be *booking.Error
	if !errors.As(err, &be) || !be.Retryable() {
		t.Errorf("expected retryable error, got %v", err)
	}
}

func TestApplyForTimeshare_Concurrent(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	married := f.guest(t)
	app := booking.TimeshareApplication{HouseID: oceanBreeze, Period: booking.PeriodSummer, DurationWeeks: 1}

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.manager.ApplyForTimeshare(ctx, married, app)
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, booking.ErrDuplicateContract):
			t.Errorf("expected duplicate contract, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one application to succeed, got %d", succeeded)
	}

	var count int64
	f.db.Model(&models.TimeshareContract{}).Where("user_id = ? AND house_id = ?", married.UserID, oceanBreeze).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 stored contract, got %d", count)
	}
}

func TestTimeshareOverviewAndActivation(t *testing.T) {
	f := newFixture(t, morning)
	ctx := context.Background()
	guest := f.guest(t)
	admin := f.user(t, booking.Date(1975, 1, 1), booking.MaritalMarried, true)

	c, err := f.manager.ApplyForTimeshare(ctx, guest, booking.TimeshareApplication{HouseID: sunsetVilla, Period: booking.PeriodAutumn, DurationWeeks: 4})
	if err != nil {
		t.Fatalf("ApplyForTimeshare returned error: %v", err)
	}

	ov, err := f.manager.TimeshareOverview(ctx, guest)
	if err != nil {
		t.Fatalf("TimeshareOverview returned error: %v", err)
	}
	if !ov.Eligible {
		t.Error("expected guest to be eligible")
	}
	if len(ov.Contracts) != 1 || ov.Contracts[0].HouseName != "Sunset Villa" {
		t.Fatalf("unexpected contracts %+v", ov.Contracts)
	}
	if got := ov.Contracts[0].RemainingYears(f.manager.Today()); got != 25 {
		t.Errorf("expected 25 remaining years, got %d", got)
	}
	if len(ov.Offers) != timeshareHouses {
		t.Fatalf("expected %d timeshare houses, got %d", timeshareHouses, len(ov.Offers))
	}
	if rate := ov.Offers[0].WeeklyRates[booking.PeriodSummer]; !rate.Equal(decimal.NewFromInt(2625)) {
		t.Errorf("expected Sunset Villa summer rate 2625.00, got %s", rate)
	}

	_, err = f.manager.ActivateContract(ctx, guest, c.ID)
	expectError(t, err, booking.ErrForbidden, booking.KindAuth)

	active, err := f.manager.ActivateContract(ctx, admin, c.ID)
	if err != nil {
		t.Fatalf("ActivateContract returned error: %v", err)
	}
	if active.Status != booking.ContractActive {
		t.Errorf("expected active, got %s", active.Status)
	}
	_, err = f.manager.ActivateContract(ctx, admin, c.ID)
	expectError(t, err, booking.ErrInvalidTransition, booking.KindConflict)

	_, err = f.manager.ActivateContract(ctx, admin, 777)
	expectError(t, err, booking.ErrContractNotFound, booking.KindNotFound)

	// An active contract still blocks a second application.
	_, err = f.manager.ApplyForTimeshare(ctx, guest, booking.TimeshareApplication{HouseID: sunsetVilla, Period: booking.PeriodAutumn, DurationWeeks: 1})
	expectError(t, err, booking.ErrDuplicateContract, booking.KindConflict)
}
