package booking

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind is the stable, machine readable class of a booking error.
type Kind string

const (
	KindValidation  Kind = "validation_error"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindAuth        Kind = "auth_error"
	KindEligibility Kind = "eligibility_error"
	KindPersistence Kind = "persistence_error"
)

// Error is returned by every operation of the booking core.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so that copies of a sentinel still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the caller may repeat the request unchanged.
func (e *Error) Retryable() bool {
	return e.Kind == KindPersistence
}

func newError(kind Kind, code, field, msg string) *Error {
	return &Error{Kind: kind, Code: code, Field: field, Message: msg}
}

var (
	ErrInvalidFormat           = newError(KindValidation, "invalid_format", "", "dates must use the YYYY-MM-DD format")
	ErrCheckOutNotAfterCheckIn = newError(KindValidation, "check_out_not_after_check_in", "checkOut", "check-out date must be after check-in date")
	ErrCheckInInPast           = newError(KindValidation, "check_in_in_past", "checkIn", "check-in date cannot be in the past")
	ErrGuestCountOutOfRange    = newError(KindValidation, "guest_count_out_of_range", "guestCount", "number of guests exceeds the property capacity")
	ErrInvalidPeriod           = newError(KindValidation, "invalid_period", "period", "period must be one of spring, summer, autumn, winter")
	ErrInvalidDuration         = newError(KindValidation, "invalid_duration", "durationWeeks", "duration must be between 1 and 12 weeks")

	ErrPropertyNotFound    = newError(KindNotFound, "property_not_found", "propertyId", "property not found")
	ErrReservationNotFound = newError(KindNotFound, "reservation_not_found", "id", "reservation not found")
	ErrContractNotFound    = newError(KindNotFound, "contract_not_found", "id", "timeshare contract not found")

	ErrPropertyUnavailable    = newError(KindConflict, "property_unavailable", "propertyId", "property is not open for booking")
	ErrPropertyNotAvailable   = newError(KindConflict, "property_not_available", "", "property is not available for the selected dates")
	ErrAlreadyCancelled       = newError(KindConflict, "already_cancelled", "", "reservation is already cancelled")
	ErrCancellationNotAllowed = newError(KindConflict, "cancellation_not_allowed", "", "reservation can only be cancelled more than 24 hours before check-in")
	ErrModificationNotAllowed = newError(KindConflict, "modification_not_allowed", "", "reservation can only be modified more than 48 hours before check-in")
	ErrInvalidTransition      = newError(KindConflict, "invalid_status_transition", "status", "status change is not allowed from the current status")
	ErrNotTimeshareHouse      = newError(KindConflict, "house_not_available_for_timeshare", "houseId", "house is not available for timeshare")
	ErrDuplicateContract      = newError(KindConflict, "duplicate_contract", "", "you already have a timeshare contract for this house and period")

	ErrUnauthenticated = newError(KindAuth, "unauthenticated", "", "authentication required")
	ErrForbidden       = newError(KindAuth, "forbidden", "", "access denied")

	ErrNotEligible = newError(KindEligibility, "not_eligible", "", "timeshare requires applicants over 30 who are married")

	// ErrDuplicateContractNumber is returned by contract stores when the unique
	// contract number constraint rejects an insert.
	ErrDuplicateContractNumber = errors.New("contract number already exists")
)

// KindOf classifies any error. Errors that did not originate in the core are
// treated as persistence failures.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindPersistence
}

func persistenceError(op string, err error) error {
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return &Error{
		Kind:    KindPersistence,
		Code:    "persistence_failure",
		Message: "the booking store is temporarily unavailable, please try again",
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}

// fieldError turns the first validator failure into a validation error.
func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return newError(KindValidation, "invalid_input", "", err.Error())
	}

	fe := verrs[0]
	msg := fmt.Sprintf("%s failed the %q check", fe.Field(), fe.Tag())
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("field '%s' is required", fe.Field())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min", "gte":
		msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		msg = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		msg = "invalid email format"
	case "eqfield":
		msg = fmt.Sprintf("%s does not match", fe.Field())
	}
	return newError(KindValidation, "invalid_field", fe.Field(), msg)
}

var validate = newValidator()

// Validate checks the validate tags of v and reports the first failing field
// as a validation error.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fieldError(err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
