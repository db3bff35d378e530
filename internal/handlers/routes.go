package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yusufgokkayy/IBP-final-project/internal/apierror"
	"github.com/yusufgokkayy/IBP-final-project/internal/auth"
	"github.com/yusufgokkayy/IBP-final-project/internal/config"
)

type Handlers struct {
	Auth        *auth.AuthHandler
	Catalog     *CatalogHandler
	Reservation *ReservationHandler
	Timeshare   *TimeshareHandler
	Admin       *AdminHandler
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers) huma.API {
	r.Use(middleware.RequestID)
	r.Use(TraceContext)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(CORS(cfg.FrontendURL))
	}

	// Initialize Huma API
	huma.NewError = apierror.NewHumaError
	apiConfig := huma.DefaultConfig("Holiday Village API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.SessionCookie,
		},
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(r, apiConfig)

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"bearerAuth": {}}}
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Staff login
	r.Get("/auth/discord/login", h.Auth.HandleLogin)
	r.Get("/auth/discord/callback", h.Auth.HandleCallback)

	// Guest accounts
	huma.Post(api, "/auth/register", h.Auth.HandleRegister)
	huma.Post(api, "/auth/login", h.Auth.HandleLoginPassword)
	huma.Post(api, "/auth/logout", h.Auth.HandleLogout, secured)
	huma.Get(api, "/auth/me", h.Auth.HandleMe, secured)

	// Catalog
	huma.Get(api, "/properties", h.Catalog.HandleListProperties)
	huma.Get(api, "/rooms", h.Catalog.HandleListRooms)
	huma.Get(api, "/houses", h.Catalog.HandleListHouses)
	huma.Post(api, "/availability", h.Reservation.HandleCheckAvailability)

	// Reservations
	huma.Post(api, "/reservations", h.Reservation.HandleCreateReservation, secured)
	huma.Get(api, "/reservations", h.Reservation.HandleListReservations, secured)
	huma.Post(api, "/reservations/{id}/cancel", h.Reservation.HandleCancelReservation, secured)
	huma.Post(api, "/reservations/{id}/modify", h.Reservation.HandleModifyReservation, secured)

	// Timeshare
	huma.Get(api, "/timeshare", h.Timeshare.HandleOverview, secured)
	huma.Post(api, "/timeshare/apply", h.Timeshare.HandleApply, secured)

	// Staff
	huma.Get(api, "/admin/stats", h.Admin.HandleStats, secured)
	huma.Post(api, "/admin/reservations/{id}/confirm", h.Admin.HandleConfirmReservation, secured)
	huma.Post(api, "/admin/contracts/{id}/activate", h.Admin.HandleActivateContract, secured)

	return api
}
