package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
	"gorm.io/gorm"
)

// Store implements booking.Store on top of gorm.
type Store struct {
	db    *gorm.DB
	locks *keyedMutex
	inTx  bool
}

var _ booking.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, locks: newKeyedMutex()}
}

// Atomically holds the in-process lock for key, opens a transaction and, on
// PostgreSQL, takes a transaction scoped advisory lock on the same key so that
// several API instances sharing a database also serialize.
func (s *Store) Atomically(ctx context.Context, key string, fn func(tx booking.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == DriverPostgres {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
				return fmt.Errorf("advisory lock %s: %w", key, err)
			}
		}
		return fn(&Store{db: tx, locks: s.locks, inTx: true})
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) GetProperty(ctx context.Context, ref booking.PropertyRef) (*booking.Property, error) {
	db := s.db.WithContext(ctx)
	switch ref.Type {
	case booking.PropertyHotelRoom:
		var room models.Room
		if err := db.Preload("Hotel").First(&room, ref.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, booking.ErrPropertyNotFound
			}
			return nil, err
		}
		p := roomProperty(room)
		return &p, nil
	case booking.PropertyHouse:
		var house models.House
		if err := db.First(&house, ref.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, booking.ErrPropertyNotFound
			}
			return nil, err
		}
		p := houseProperty(house)
		return &p, nil
	}
	return nil, booking.ErrPropertyNotFound
}

func (s *Store) ListTimeshareHouses(ctx context.Context) ([]booking.Property, error) {
	var houses []models.House
	err := s.db.WithContext(ctx).
		Where("is_timeshare = ? AND is_available = ?", true, true).
		Order("id").
		Find(&houses).Error
	if err != nil {
		return nil, err
	}
	out := make([]booking.Property, 0, len(houses))
	for _, h := range houses {
		out = append(out, houseProperty(h))
	}
	return out, nil
}

// FindConflicting returns the reservations on ref in one of statuses whose
// stay overlaps r.
func (s *Store) FindConflicting(ctx context.Context, ref booking.PropertyRef, r booking.DateRange, statuses []booking.Status) ([]booking.Booking, error) {
	var rows []models.Reservation
	err := s.db.WithContext(ctx).
		Where("property_type = ? AND property_id = ?", string(ref.Type), ref.ID).
		Where("status IN ?", statusStrings(statuses)).
		Where("check_in_date < ? AND check_out_date > ?", r.End, r.Start).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]booking.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, toReservation(row, "").Booking())
	}
	return out, nil
}

func (s *Store) InsertReservation(ctx context.Context, res *booking.Reservation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := fromReservation(res)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		res.ID = row.ID
		return tx.Create(historyOf(row)).Error
	})
}

func (s *Store) GetReservation(ctx context.Context, id uint) (*booking.Reservation, error) {
	var row models.Reservation
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrReservationNotFound
		}
		return nil, err
	}
	names, err := s.propertyNames(ctx, []models.Reservation{row})
	if err != nil {
		return nil, err
	}
	res := toReservation(row, names[propertyKey(row)])
	return &res, nil
}

// UpdateReservationStatus changes the status only if it is currently one of
// from, and records a history snapshot when it does.
func (s *Store) UpdateReservationStatus(ctx context.Context, id uint, from []booking.Status, to booking.Status) (bool, error) {
	updated := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Reservation{}).
			Where("id = ? AND status IN ?", id, statusStrings(from)).
			Update("status", string(to))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		updated = true

		var row models.Reservation
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		return tx.Create(historyOf(row)).Error
	})
	return updated, err
}

func (s *Store) ListReservationsByUser(ctx context.Context, userID uint) ([]booking.Reservation, error) {
	var rows []models.Reservation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in_date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	names, err := s.propertyNames(ctx, rows)
	if err != nil {
		return nil, err
	}
	out := make([]booking.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, toReservation(row, names[propertyKey(row)]))
	}
	return out, nil
}

func (s *Store) CountOpenContracts(ctx context.Context, userID, houseID uint, period booking.Period) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.TimeshareContract{}).
		Where("user_id = ? AND house_id = ? AND period = ?", userID, houseID, string(period)).
		Where("status IN ?", contractStatusStrings(booking.OpenContractStatuses)).
		Count(&n).Error
	return n, err
}

// InsertContract runs under a savepoint so that a contract number collision
// leaves the surrounding transaction usable for a retry.
func (s *Store) InsertContract(ctx context.Context, c *booking.Contract) error {
	row := fromContract(c)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if isUniqueViolation(err) {
		return booking.ErrDuplicateContractNumber
	}
	if err != nil {
		return err
	}
	c.ID = row.ID
	return nil
}

func (s *Store) InsertOwnership(ctx context.Context, o booking.Ownership) error {
	return s.db.WithContext(ctx).Create(&models.TimeshareOwnership{
		UserID:              o.UserID,
		HouseID:             o.HouseID,
		ContractID:          o.ContractID,
		OwnershipPercentage: o.OwnershipPercentage,
	}).Error
}

func (s *Store) GetContract(ctx context.Context, id uint) (*booking.Contract, error) {
	var row models.TimeshareContract
	if err := s.db.WithContext(ctx).Preload("House").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrContractNotFound
		}
		return nil, err
	}
	c := toContract(row)
	return &c, nil
}

func (s *Store) UpdateContractStatus(ctx context.Context, id uint, from []booking.ContractStatus, to booking.ContractStatus) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.TimeshareContract{}).
		Where("id = ? AND status IN ?", id, contractStatusStrings(from)).
		Update("status", string(to))
	return result.RowsAffected > 0, result.Error
}

func (s *Store) ListContractsByUser(ctx context.Context, userID uint) ([]booking.Contract, error) {
	var rows []models.TimeshareContract
	err := s.db.WithContext(ctx).Preload("House").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]booking.Contract, 0, len(rows))
	for _, row := range rows {
		out = append(out, toContract(row))
	}
	return out, nil
}

// propertyNames resolves display names for the properties of rows.
func (s *Store) propertyNames(ctx context.Context, rows []models.Reservation) (map[string]string, error) {
	var roomIDs, houseIDs []uint
	for _, row := range rows {
		switch booking.PropertyType(row.PropertyType) {
		case booking.PropertyHotelRoom:
			roomIDs = append(roomIDs, row.PropertyID)
		case booking.PropertyHouse:
			houseIDs = append(houseIDs, row.PropertyID)
		}
	}

	names := make(map[string]string, len(rows))
	db := s.db.WithContext(ctx)
	if len(roomIDs) > 0 {
		var rooms []models.Room
		if err := db.Preload("Hotel").Find(&rooms, roomIDs).Error; err != nil {
			return nil, err
		}
		for _, r := range rooms {
			names[booking.PropertyRef{Type: booking.PropertyHotelRoom, ID: r.ID}.String()] = roomName(r)
		}
	}
	if len(houseIDs) > 0 {
		var houses []models.House
		if err := db.Find(&houses, houseIDs).Error; err != nil {
			return nil, err
		}
		for _, h := range houses {
			names[booking.PropertyRef{Type: booking.PropertyHouse, ID: h.ID}.String()] = h.Name
		}
	}
	return names, nil
}
