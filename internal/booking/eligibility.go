package booking

import "time"

type MaritalStatus string

const (
	MaritalSingle  MaritalStatus = "single"
	MaritalMarried MaritalStatus = "married"
)

const (
	// MinimumRegistrationAge is the youngest a guest may be to hold an account.
	MinimumRegistrationAge = 18
	// TimeshareMinimumAge must be exceeded, not merely reached.
	TimeshareMinimumAge = 30
)

// Identity is the resolved caller of a core operation.
type Identity struct {
	UserID        uint
	FirstName     string
	LastName      string
	Email         string
	BirthDate     time.Time
	MaritalStatus MaritalStatus
	IsAdmin       bool
}

// Age is the number of full years elapsed between birth and today.
func Age(birth, today time.Time) int {
	by, bm, bd := birth.Date()
	ty, tm, td := today.Date()
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age
}

// Eligible is the single timeshare eligibility rule: older than 30 and married.
func Eligible(birth time.Time, status MaritalStatus, today time.Time) bool {
	return Age(birth, today) > TimeshareMinimumAge && status == MaritalMarried
}

// TimeshareEligible applies Eligible to a resolved identity.
func (id Identity) TimeshareEligible(today time.Time) bool {
	return Eligible(id.BirthDate, id.MaritalStatus, today)
}
