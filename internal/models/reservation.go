package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReservationFields struct {
	CheckInDate     time.Time       `json:"check_in_date" gorm:"type:date;not null"`
	CheckOutDate    time.Time       `json:"check_out_date" gorm:"type:date;not null"`
	NumGuests       int             `json:"num_guests"`
	NumNights       int             `json:"num_nights"`
	PricePerNight   decimal.Decimal `json:"price_per_night" gorm:"type:decimal(10,2)"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2)"`
	Status          string          `json:"status" gorm:"type:varchar(16);index"`
	SpecialRequests string          `json:"special_requests"`
}

type Reservation struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index"`
	User              User      `json:"-" gorm:"foreignKey:UserID"`
	PropertyType      string    `json:"property_type" gorm:"type:varchar(16);index:idx_reservation_property"`
	PropertyID        uint      `json:"property_id" gorm:"index:idx_reservation_property"`
	ConfirmationCode  string    `json:"confirmation_code" gorm:"uniqueIndex"`
	BookingDate       time.Time `json:"booking_date"`
	ReservationFields `gorm:"embedded"`
}

// ReservationHistory is a snapshot written on every reservation change.
type ReservationHistory struct {
	gorm.Model
	ReservationID     uint   `json:"reservation_id" gorm:"index"`
	UserID            uint   `json:"user_id"`
	PropertyType      string `json:"property_type"`
	PropertyID        uint   `json:"property_id"`
	ReservationFields `gorm:"embedded"`
}
