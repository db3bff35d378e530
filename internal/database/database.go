package database

import (
	"fmt"
	"log"

	"github.com/yusufgokkayy/IBP-final-project/internal/config"
	"github.com/yusufgokkayy/IBP-final-project/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Models lists every table the service owns, in migration order.
var Models = []any{
	&models.User{},
	&models.Session{},
	&models.Hotel{},
	&models.Room{},
	&models.House{},
	&models.Reservation{},
	&models.ReservationHistory{},
	&models.TimeshareContract{},
	&models.TimeshareOwnership{},
}

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case DriverSQLite, "":
		dialector = sqlite.Open(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// One connection serializes writers and keeps :memory: databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if cfg.SeedCatalog {
		if err := SeedCatalog(db); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	return db, nil
}

func Connect(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}
