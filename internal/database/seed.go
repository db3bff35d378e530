package database

import (
	"embed"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SeedCatalog loads the hotels, rooms and houses. Seeds are versioned by goose
// so they run once per database.
func SeedCatalog(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	dialect := "sqlite3"
	if db.Dialector.Name() == DriverPostgres {
		dialect = "postgres"
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetLogger(goose.NopLogger())
	return goose.Up(sqlDB, "migrations")
}
