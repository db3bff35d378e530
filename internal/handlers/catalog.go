package handlers

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/yusufgokkayy/IBP-final-project/internal/apierror"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	db *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

func amenities(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

type HotelBody struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Floors         int    `json:"floors"`
	TotalRooms     int    `json:"totalRooms"`
	Location       string `json:"location"`
	AvailableRooms int64  `json:"availableRooms"`
	MinPrice       string `json:"minPrice,omitempty"`
	MaxPrice       string `json:"maxPrice,omitempty"`
}

type RoomBody struct {
	ID            uint     `json:"id"`
	HotelID       uint     `json:"hotelId"`
	RoomNumber    string   `json:"roomNumber"`
	Floor         int      `json:"floor"`
	RoomType      string   `json:"roomType"`
	SizeSqm       int      `json:"sizeSqm"`
	PricePerNight string   `json:"pricePerNight"`
	MaxOccupancy  int      `json:"maxOccupancy"`
	Amenities     []string `json:"amenities"`
	IsAvailable   bool     `json:"isAvailable"`
}

type HouseBody struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Floors        int      `json:"floors"`
	SizeSqm       int      `json:"sizeSqm"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	MaxOccupancy  int      `json:"maxOccupancy"`
	HasPool       bool     `json:"hasPool"`
	PoolSize      string   `json:"poolSize,omitempty"`
	PricePerNight string   `json:"pricePerNight"`
	IsTimeshare   bool     `json:"isTimeshare"`
	IsAvailable   bool     `json:"isAvailable"`
	Description   string   `json:"description"`
	Amenities     []string `json:"amenities"`
	Location      string   `json:"location"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

func roomBody(r models.Room) RoomBody {
	return RoomBody{
		ID:            r.ID,
		HotelID:       r.HotelID,
		RoomNumber:    r.RoomNumber,
		Floor:         r.Floor,
		RoomType:      r.RoomType,
		SizeSqm:       r.SizeSqm,
		PricePerNight: r.PricePerNight.StringFixed(2),
		MaxOccupancy:  r.MaxOccupancy,
		Amenities:     amenities(r.Amenities),
		IsAvailable:   r.IsAvailable,
	}
}

func houseBody(h models.House) HouseBody {
	return HouseBody{
		ID:            h.ID,
		Name:          h.Name,
		Type:          h.Type,
		Floors:        h.Floors,
		SizeSqm:       h.SizeSqm,
		Bedrooms:      h.Bedrooms,
		Bathrooms:     h.Bathrooms,
		MaxOccupancy:  h.MaxOccupancy,
		HasPool:       h.HasPool,
		PoolSize:      h.PoolSize,
		PricePerNight: h.PricePerNight.StringFixed(2),
		IsTimeshare:   h.IsTimeshare,
		IsAvailable:   h.IsAvailable,
		Description:   h.Description,
		Amenities:     amenities(h.Amenities),
		Location:      h.Location,
		ImageURL:      h.ImageURL,
	}
}

type hotelStats struct {
	HotelID        uint
	AvailableRooms int64
	MinPrice       decimal.NullDecimal
	MaxPrice       decimal.NullDecimal
}

type PropertiesResponse struct {
	Body struct {
		Hotels []HotelBody `json:"hotels"`
		Houses []HouseBody `json:"houses"`
	}
}

func (h *CatalogHandler) HandleListProperties(ctx context.Context, input *struct{}) (*PropertiesResponse, error) {
	db := h.db.WithContext(ctx)

	var hotels []models.Hotel
	if err := db.Order("id").Find(&hotels).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}

	var stats []hotelStats
	err := db.Model(&models.Room{}).
		Select("hotel_id, COUNT(*) AS available_rooms, MIN(price_per_night) AS min_price, MAX(price_per_night) AS max_price").
		Where("is_available = ?", true).
		Group("hotel_id").
		Scan(&stats).Error
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	byHotel := make(map[uint]hotelStats, len(stats))
	for _, s := range stats {
		byHotel[s.HotelID] = s
	}

	var houses []models.House
	if err := db.Where("is_available = ?", true).Order("id").Find(&houses).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}

	res := &PropertiesResponse{}
	res.Body.Hotels = make([]HotelBody, 0, len(hotels))
	for _, hotel := range hotels {
		body := HotelBody{
			ID:          hotel.ID,
			Name:        hotel.Name,
			Description: hotel.Description,
			Floors:      hotel.Floors,
			TotalRooms:  hotel.TotalRooms,
			Location:    hotel.Location,
		}
		if s, ok := byHotel[hotel.ID]; ok {
			body.AvailableRooms = s.AvailableRooms
			if s.MinPrice.Valid {
				body.MinPrice = s.MinPrice.Decimal.StringFixed(2)
			}
			if s.MaxPrice.Valid {
				body.MaxPrice = s.MaxPrice.Decimal.StringFixed(2)
			}
		}
		res.Body.Hotels = append(res.Body.Hotels, body)
	}
	res.Body.Houses = make([]HouseBody, 0, len(houses))
	for _, house := range houses {
		res.Body.Houses = append(res.Body.Houses, houseBody(house))
	}
	return res, nil
}

type ListRoomsRequest struct {
	HotelID uint `query:"hotel_id" doc:"Only rooms of this hotel"`
}

type RoomsResponse struct {
	Body struct {
		Rooms []RoomBody `json:"rooms"`
	}
}

func (h *CatalogHandler) HandleListRooms(ctx context.Context, input *ListRoomsRequest) (*RoomsResponse, error) {
	query := h.db.WithContext(ctx).Where("is_available = ?", true)
	if input.HotelID != 0 {
		query = query.Where("hotel_id = ?", input.HotelID)
	}

	var rooms []models.Room
	if err := query.Order("hotel_id, floor, room_number").Find(&rooms).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}

	res := &RoomsResponse{}
	res.Body.Rooms = make([]RoomBody, 0, len(rooms))
	for _, r := range rooms {
		res.Body.Rooms = append(res.Body.Rooms, roomBody(r))
	}
	return res, nil
}

type ListHousesRequest struct {
	Timeshare bool `query:"timeshare" doc:"Only houses offered as timeshare"`
}

type HousesResponse struct {
	Body struct {
		Houses []HouseBody `json:"houses"`
	}
}

func (h *CatalogHandler) HandleListHouses(ctx context.Context, input *ListHousesRequest) (*HousesResponse, error) {
	query := h.db.WithContext(ctx).Where("is_available = ?", true)
	if input.Timeshare {
		query = query.Where("is_timeshare = ?", true)
	}

	var houses []models.House
	if err := query.Order("id").Find(&houses).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}

	res := &HousesResponse{}
	res.Body.Houses = make([]HouseBody, 0, len(houses))
	for _, house := range houses {
		res.Body.Houses = append(res.Body.Houses, houseBody(house))
	}
	return res, nil
}
