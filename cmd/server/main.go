package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/yusufgokkayy/IBP-final-project/internal/auth"
	"github.com/yusufgokkayy/IBP-final-project/internal/booking"
	"github.com/yusufgokkayy/IBP-final-project/internal/config"
	"github.com/yusufgokkayy/IBP-final-project/internal/database"
	"github.com/yusufgokkayy/IBP-final-project/internal/handlers"
	"github.com/yusufgokkayy/IBP-final-project/internal/notifier"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Connect to Database
	db := database.Connect(cfg)

	// Discord bot session, used for notifications and staff guild checks
	var discord *discordgo.Session
	var bookingNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord session not initialized: %v", err)
		} else {
			discord = session
			if cfg.DiscordNotificationsChannelID != "" {
				bookingNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
			}
		}
	}

	// Initialize Handlers
	manager := booking.NewManager(database.NewStore(db))
	authHandler := auth.NewAuthHandler(cfg, db, discord)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, handlers.Handlers{
		Auth:        authHandler,
		Catalog:     handlers.NewCatalogHandler(db),
		Reservation: handlers.NewReservationHandler(manager, authHandler, bookingNotifier),
		Timeshare:   handlers.NewTimeshareHandler(manager, authHandler, bookingNotifier),
		Admin:       handlers.NewAdminHandler(db, manager, authHandler),
	})

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
