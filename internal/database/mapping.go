package database

import (
	"fmt"

	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
)

func roomName(r models.Room) string {
	return fmt.Sprintf("%s Room %s", r.Hotel.Name, r.RoomNumber)
}

func roomProperty(r models.Room) booking.Property {
	return booking.Property{
		Ref:           booking.PropertyRef{Type: booking.PropertyHotelRoom, ID: r.ID},
		Name:          roomName(r),
		PricePerNight: r.PricePerNight,
		Capacity:      r.MaxOccupancy,
		IsAvailable:   r.IsAvailable,
		Location:      r.Hotel.Location,
		Description:   r.RoomType,
	}
}

func houseProperty(h models.House) booking.Property {
	return booking.Property{
		Ref:           booking.PropertyRef{Type: booking.PropertyHouse, ID: h.ID},
		Name:          h.Name,
		PricePerNight: h.PricePerNight,
		Capacity:      h.MaxOccupancy,
		IsAvailable:   h.IsAvailable,
		IsTimeshare:   h.IsTimeshare,
		HasPool:       h.HasPool,
		Location:      h.Location,
		Description:   h.Description,
	}
}

func propertyKey(row models.Reservation) string {
	return booking.PropertyRef{Type: booking.PropertyType(row.PropertyType), ID: row.PropertyID}.String()
}

func fromReservation(res *booking.Reservation) models.Reservation {
	return models.Reservation{
		UserID:           res.UserID,
		PropertyType:     string(res.Property.Type),
		PropertyID:       res.Property.ID,
		ConfirmationCode: res.ConfirmationCode,
		BookingDate:      res.BookedAt,
		ReservationFields: models.ReservationFields{
			CheckInDate:     res.Range.Start,
			CheckOutDate:    res.Range.End,
			NumGuests:       res.GuestCount,
			NumNights:       res.Range.Nights(),
			PricePerNight:   res.PricePerNight,
			TotalPrice:      res.TotalPrice,
			Status:          string(res.Status),
			SpecialRequests: res.SpecialRequests,
		},
	}
}

func toReservation(row models.Reservation, name string) booking.Reservation {
	return booking.Reservation{
		ID:       row.ID,
		UserID:   row.UserID,
		Property: booking.PropertyRef{Type: booking.PropertyType(row.PropertyType), ID: row.PropertyID},
		Range: booking.DateRange{
			Start: booking.DateOf(row.CheckInDate),
			End:   booking.DateOf(row.CheckOutDate),
		},
		PropertyName:     name,
		GuestCount:       row.NumGuests,
		PricePerNight:    row.PricePerNight,
		TotalPrice:       row.TotalPrice,
		Status:           booking.Status(row.Status),
		SpecialRequests:  row.SpecialRequests,
		ConfirmationCode: row.ConfirmationCode,
		BookedAt:         row.BookingDate,
	}
}

func historyOf(row models.Reservation) *models.ReservationHistory {
	return &models.ReservationHistory{
		ReservationID:     row.ID,
		UserID:            row.UserID,
		PropertyType:      row.PropertyType,
		PropertyID:        row.PropertyID,
		ReservationFields: row.ReservationFields,
	}
}

func fromContract(c *booking.Contract) models.TimeshareContract {
	return models.TimeshareContract{
		ContractNumber:       c.ContractNumber,
		UserID:               c.UserID,
		HouseID:              c.HouseID,
		Period:               string(c.Period),
		DurationWeeks:        c.DurationWeeks,
		PurchasePrice:        c.PurchasePrice,
		AnnualMaintenanceFee: c.AnnualMaintenanceFee,
		ContractDate:         c.ContractDate,
		EffectiveFrom:        c.EffectiveFrom,
		ValidUntil:           c.ValidUntil,
		Status:               string(c.Status),
		TermsConditions:      c.Terms,
	}
}

func toContract(row models.TimeshareContract) booking.Contract {
	return booking.Contract{
		ID:                   row.ID,
		ContractNumber:       row.ContractNumber,
		UserID:               row.UserID,
		HouseID:              row.HouseID,
		HouseName:            row.House.Name,
		Period:               booking.Period(row.Period),
		DurationWeeks:        row.DurationWeeks,
		PurchasePrice:        row.PurchasePrice,
		AnnualMaintenanceFee: row.AnnualMaintenanceFee,
		OwnershipPercentage:  booking.OwnershipPercentage(row.DurationWeeks),
		ContractDate:         booking.DateOf(row.ContractDate),
		EffectiveFrom:        booking.DateOf(row.EffectiveFrom),
		ValidUntil:           booking.DateOf(row.ValidUntil),
		Status:               booking.ContractStatus(row.Status),
		Terms:                row.TermsConditions,
	}
}

func statusStrings(statuses []booking.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func contractStatusStrings(statuses []booking.ContractStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
