package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yusufgokkayy/IBP-final-project/internal/apierror"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
	"gorm.io/gorm"
)

// AuthInput is embedded in every huma input that needs a caller.
type AuthInput struct {
	Cookie        string `header:"Cookie" doc:"Session cookie"`
	Authorization string `header:"Authorization" doc:"Bearer session token"`
}

// Token returns the session token from the cookie, falling back to the bearer
// header.
func (in AuthInput) Token() string {
	if in.Cookie != "" {
		if cookies, err := http.ParseCookie(in.Cookie); err == nil {
			for _, c := range cookies {
				if c.Name == SessionCookie && c.Value != "" {
					return c.Value
				}
			}
		}
	}
	if token, ok := strings.CutPrefix(in.Authorization, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authorize resolves the caller of a huma operation and renders failures as
// API errors.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (*booking.Identity, error) {
	id, _, err := h.Resolve(ctx, input.Token())
	if err != nil {
		return nil, apierror.From(ctx, err)
	}
	return id, nil
}

func (h *AuthHandler) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(h.now))
	if err != nil || !token.Valid || claims.SessionID == "" {
		return nil, booking.ErrUnauthenticated
	}
	return claims, nil
}

// Resolve maps a session token to the identity behind it. The token must be
// signed by us and its session row must still exist and be unexpired.
func (h *AuthHandler) Resolve(ctx context.Context, token string) (*booking.Identity, *models.Session, error) {
	if token == "" {
		return nil, nil, booking.ErrUnauthenticated
	}
	claims, err := h.parseToken(token)
	if err != nil {
		return nil, nil, err
	}

	db := h.db.WithContext(ctx)
	var session models.Session
	if err := db.Preload("User").First(&session, "id = ?", claims.SessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, booking.ErrUnauthenticated
		}
		return nil, nil, err
	}

	now := h.now()
	if !session.ExpiresAt.After(now) {
		if err := db.Delete(&session).Error; err != nil {
			log.Printf("Failed to delete expired session %s: %v", session.ID, err)
		}
		return nil, nil, booking.ErrUnauthenticated
	}
	if session.UserID != claims.UserID || !session.User.IsActive {
		return nil, nil, booking.ErrUnauthenticated
	}

	if err := db.Model(&session).Update("last_used_at", now).Error; err != nil {
		log.Printf("Failed to record use of session %s: %v", session.ID, err)
	}

	return identityOf(session.User), &session, nil
}

func identityOf(u models.User) *booking.Identity {
	return &booking.Identity{
		UserID:        u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		BirthDate:     u.BirthDate,
		MaritalStatus: booking.MaritalStatus(u.MaritalStatus),
		IsAdmin:       u.IsAdmin,
	}
}
