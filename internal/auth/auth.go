package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yusufgokkayy/IBP-final-project/internal/config"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
	DiscordUserGuildsAPI     = "https://discord.com/api/users/@me/guilds"

	SessionCookie    = "session_token"
	oauthStateCookie = "oauth_state"

	DefaultSessionTTL = 30 * 24 * time.Hour
)

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
	discord     *discordgo.Session
	now         func() time.Time
}

// NewAuthHandler wires guest and staff authentication. discord may be nil, in
// which case staff guild membership is read from the OAuth2 guild list.
func NewAuthHandler(cfg *config.Config, db *gorm.DB, discord *discordgo.Session) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		db:      db,
		cfg:     cfg,
		discord: discord,
		now:     time.Now,
	}
}

func (h *AuthHandler) sessionTTL() time.Duration {
	if h.cfg.SessionTTL > 0 {
		return h.cfg.SessionTTL
	}
	return DefaultSessionTTL
}

// Claims ties a token to a row in the sessions table.
type Claims struct {
	UserID    uint   `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (h *AuthHandler) GenerateToken(sessionID string, userID uint, expires time.Time) (string, error) {
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(h.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// startSession stores a new session for userID and returns its cookie.
func (h *AuthHandler) startSession(ctx context.Context, userID uint) (*http.Cookie, error) {
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: h.now().Add(h.sessionTTL()),
	}
	if err := h.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}

	token, err := h.GenerateToken(session.ID, userID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return h.sessionCookie(token, session.ExpiresAt), nil
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  h.now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		Path:     "/auth/discord",
	})
	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// HandleCallback finishes the Discord login for staff. Only members of the
// configured guild are let in, and they are marked as administrators.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(oauthStateCookie)
	if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)

	resp, err := client.Get(DiscordUserAPI)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var du discordUser
	if err := json.NewDecoder(resp.Body).Decode(&du); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	if h.cfg.DiscordGuildID != "" {
		isMember, err := h.isGuildMember(client, du.ID)
		if err != nil {
			log.Printf("Failed to check guild membership for %s: %v", du.ID, err)
			http.Error(w, "Failed to check guild membership", http.StatusInternalServerError)
			return
		}
		if !isMember {
			http.Error(w, "Access denied: You are not a member of the required guild.", http.StatusForbidden)
			return
		}
	}

	user, err := h.upsertStaff(r.Context(), du)
	if err != nil {
		log.Printf("Failed to save staff user %s: %v", du.ID, err)
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	cookie, err := h.startSession(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Failed to start session", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}

func (h *AuthHandler) isGuildMember(client *http.Client, discordID string) (bool, error) {
	if h.discord != nil {
		_, err := h.discord.GuildMember(h.cfg.DiscordGuildID, discordID)
		if err == nil {
			return true, nil
		}
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}

	guildsResp, err := client.Get(DiscordUserGuildsAPI)
	if err != nil {
		return false, err
	}
	defer guildsResp.Body.Close()

	var guilds []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(guildsResp.Body).Decode(&guilds); err != nil {
		return false, err
	}
	for _, g := range guilds {
		if g.ID == h.cfg.DiscordGuildID {
			return true, nil
		}
	}
	return false, nil
}

// upsertStaff finds the staff account by Discord id, then by email, and
// creates it when neither matches.
func (h *AuthHandler) upsertStaff(ctx context.Context, du discordUser) (*models.User, error) {
	var user models.User
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("discord_id = ?", du.ID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) && du.Email != "" {
			err = tx.Where("email = ?", du.Email).First(&user).Error
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if user.ID == 0 {
			user.FirstName = du.Username
			user.Email = du.Email
			if user.Email == "" {
				user.Email = du.ID + "@discord.invalid"
			}
			user.MaritalStatus = "single"
		}
		discordID := du.ID
		user.DiscordID = &discordID
		user.IsAdmin = true
		user.IsActive = true
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
