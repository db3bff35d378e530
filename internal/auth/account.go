package auth

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/yusufgokkayy/IBP-final-project/internal/apierror"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

var (
	ErrEmailTaken = &booking.Error{
		Kind:    booking.KindConflict,
		Code:    "email_taken",
		Field:   "email",
		Message: "email address is already registered",
	}
	ErrInvalidPhone = &booking.Error{
		Kind:    booking.KindValidation,
		Code:    "invalid_phone",
		Field:   "phone",
		Message: "invalid phone number format",
	}
	ErrInvalidBirthDate = &booking.Error{
		Kind:    booking.KindValidation,
		Code:    "invalid_birth_date",
		Field:   "birthDate",
		Message: "birth date must use the YYYY-MM-DD format",
	}
	ErrTooYoung = &booking.Error{
		Kind:    booking.KindValidation,
		Code:    "too_young",
		Field:   "birthDate",
		Message: "you must be at least 18 years old to register",
	}
	ErrInvalidCredentials = &booking.Error{
		Kind:    booking.KindAuth,
		Code:    "invalid_credentials",
		Message: "invalid email or password",
	}
)

type UserBody struct {
	ID                uint   `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	BirthDate         string `json:"birthDate"`
	MaritalStatus     string `json:"maritalStatus"`
	IsAdmin           bool   `json:"isAdmin"`
	TimeshareEligible bool   `json:"timeshareEligible" doc:"Whether the user may apply for a timeshare"`
}

func (h *AuthHandler) userBody(u models.User) UserBody {
	body := UserBody{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Phone:             u.Phone,
		MaritalStatus:     u.MaritalStatus,
		IsAdmin:           u.IsAdmin,
		TimeshareEligible: identityOf(u).TimeshareEligible(h.now()),
	}
	if !u.BirthDate.IsZero() {
		body.BirthDate = u.BirthDate.Format(booking.DateLayout)
	}
	return body
}

type SessionResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      UserBody
}

type RegisterRequest struct {
	Body struct {
		FirstName       string `json:"firstName" validate:"required,max=100"`
		LastName        string `json:"lastName" validate:"required,max=100"`
		Email           string `json:"email" validate:"required,email"`
		Phone           string `json:"phone" validate:"required"`
		BirthDate       string `json:"birthDate" doc:"YYYY-MM-DD" validate:"required"`
		MaritalStatus   string `json:"maritalStatus" enum:"single,married" validate:"required,oneof=single married"`
		Password        string `json:"password" validate:"required,min=6"`
		ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	}
}

// normalizePhone drops spaces, dashes and brackets before validation.
func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, phone)
}

func (h *AuthHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*SessionResponse, error) {
	in := input.Body
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := booking.Validate(in); err != nil {
		return nil, apierror.From(ctx, err)
	}
	phone := normalizePhone(in.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, apierror.From(ctx, ErrInvalidPhone)
	}
	birth, err := time.Parse(booking.DateLayout, in.BirthDate)
	if err != nil {
		return nil, apierror.From(ctx, ErrInvalidBirthDate)
	}
	if booking.Age(birth, h.now()) < booking.MinimumRegistrationAge {
		return nil, apierror.From(ctx, ErrTooYoung)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}

	user := models.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Phone:         phone,
		BirthDate:     birth,
		MaritalStatus: in.MaritalStatus,
		PasswordHash:  string(hash),
		IsActive:      true,
	}
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, apierror.From(ctx, err)
	}

	cookie, err := h.startSession(ctx, user.ID)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}

	return &SessionResponse{SetCookie: *cookie, Body: h.userBody(user)}, nil
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
}

func (h *AuthHandler) HandleLoginPassword(ctx context.Context, input *LoginRequest) (*SessionResponse, error) {
	in := input.Body
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := booking.Validate(in); err != nil {
		return nil, apierror.From(ctx, err)
	}

	var user models.User
	err := h.db.WithContext(ctx).Where("email = ? AND is_active = ?", in.Email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.From(ctx, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, apierror.From(ctx, ErrInvalidCredentials)
	}

	cookie, err := h.startSession(ctx, user.ID)
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	return &SessionResponse{SetCookie: *cookie, Body: h.userBody(user)}, nil
}

type MeRequest struct {
	AuthInput
}

type MeResponse struct {
	Body UserBody
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeRequest) (*MeResponse, error) {
	id, err := h.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, id.UserID).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}
	return &MeResponse{Body: h.userBody(user)}, nil
}

type LogoutRequest struct {
	AuthInput
}

type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

// HandleLogout deletes the session row, so the token stops working even
// before it expires.
func (h *AuthHandler) HandleLogout(ctx context.Context, input *LogoutRequest) (*LogoutResponse, error) {
	_, session, err := h.Resolve(ctx, input.Token())
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	if err := h.db.WithContext(ctx).Delete(session).Error; err != nil {
		return nil, apierror.From(ctx, err)
	}

	res := &LogoutResponse{}
	res.SetCookie = *h.sessionCookie("", time.Unix(0, 0))
	res.SetCookie.MaxAge = -1
	res.Body.Message = "Logged out"
	return res, nil
}
