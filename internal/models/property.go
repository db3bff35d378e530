package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Hotel struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	Floors      int    `json:"floors"`
	TotalRooms  int    `json:"total_rooms"`
	Location    string `json:"location"`
	Rooms       []Room `json:"rooms,omitempty"`
}

type Room struct {
	gorm.Model
	HotelID       uint            `json:"hotel_id" gorm:"uniqueIndex:idx_hotel_room_number"`
	Hotel         Hotel           `json:"-"`
	RoomNumber    string          `json:"room_number" gorm:"uniqueIndex:idx_hotel_room_number"`
	Floor         int             `json:"floor"`
	RoomType      string          `json:"room_type" gorm:"type:varchar(16)"` // standard, deluxe, suite
	SizeSqm       int             `json:"size_sqm"`
	PricePerNight decimal.Decimal `json:"price_per_night" gorm:"type:decimal(10,2);not null"`
	MaxOccupancy  int             `json:"max_occupancy"`
	Amenities     datatypes.JSON  `json:"amenities" gorm:"type:json"`
	IsAvailable   bool            `json:"is_available" gorm:"default:true"`
}

type House struct {
	gorm.Model
	Name          string          `json:"name" gorm:"not null"`
	Type          string          `json:"type" gorm:"type:varchar(16)"` // single_story, double_story
	Floors        int             `json:"floors"`
	SizeSqm       int             `json:"size_sqm"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	MaxOccupancy  int             `json:"max_occupancy"`
	HasPool       bool            `json:"has_pool"`
	PoolSize      string          `json:"pool_size"`
	PricePerNight decimal.Decimal `json:"price_per_night" gorm:"type:decimal(10,2);not null"`
	IsTimeshare   bool            `json:"is_timeshare" gorm:"default:false"`
	IsAvailable   bool            `json:"is_available" gorm:"default:true"`
	Description   string          `json:"description"`
	Amenities     datatypes.JSON  `json:"amenities" gorm:"type:json"`
	Location      string          `json:"location"`
	ImageURL      string          `json:"image_url"`
}
