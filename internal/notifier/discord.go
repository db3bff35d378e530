package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
)

type Notifier interface {
	NotifyReservation(guest booking.Identity, res booking.Reservation, event string) error
	NotifyTimeshareApplication(guest booking.Identity, contract booking.Contract) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}
	return nil
}

func (n *DiscordNotifier) NotifyReservation(guest booking.Identity, res booking.Reservation, event string) error {
	requests := ""
	if res.SpecialRequests != "" {
		requests = fmt.Sprintf("\n**Special requests:** %s", res.SpecialRequests)
	}

	message := fmt.Sprintf("🏖️ **Reservation %s**\n**Guest:** %s %s (%s)\n**Property:** %s\n**Dates:** %s - %s (%d nights)\n**Guests:** %d\n**Total:** %s\n**Status:** %s\n**Code:** %s%s",
		event,
		guest.FirstName,
		guest.LastName,
		guest.Email,
		res.PropertyName,
		res.Range.Start.Format(booking.DateLayout),
		res.Range.End.Format(booking.DateLayout),
		res.Range.Nights(),
		res.GuestCount,
		res.TotalPrice.StringFixed(2),
		res.Status,
		res.ConfirmationCode,
		requests,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyTimeshareApplication(guest booking.Identity, contract booking.Contract) error {
	message := fmt.Sprintf("🏡 **Timeshare Application**\n**Applicant:** %s %s (%s)\n**House:** %s\n**Period:** %s, %d weeks\n**Purchase price:** %s\n**Maintenance fee:** %s/year\n**Contract:** %s",
		guest.FirstName,
		guest.LastName,
		guest.Email,
		contract.HouseName,
		contract.Period,
		contract.DurationWeeks,
		contract.PurchasePrice.StringFixed(2),
		contract.AnnualMaintenanceFee.StringFixed(2),
		contract.ContractNumber,
	)
	return n.send(message)
}
