// Package db opens, migrates and seeds the billing database.
package db

import (
	"errors"
	"fmt"
	"path/filepath"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/school-billing/internal/config"
	"github.com/diewo77/school-billing/internal/models"
)

var coreTables = []string{"students", "fee_structure_items", "invoices", "payments", "waivers"}

// Migrate creates or updates the schema with gorm AutoMigrate.
func Migrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return checkTables(db)
}

// Apply runs the migrations selected by cfg.App.Migrations.
func Apply(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	switch cfg.App.Migrations {
	case config.MigrateOff:
		log.Info("migrations disabled")
		return nil
	case config.MigrateSQL:
		if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("sql migrations need the postgres driver, got %q", cfg.Database.Driver)
		}
		if err := RunSQLMigrations(cfg.App.MigrationsDir, cfg.Database.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Info("sql migrations applied", zap.String("dir", cfg.App.MigrationsDir))
		return checkTables(db)
	default:
		if err := Migrate(db); err != nil {
			return err
		}
		log.Info("schema migrated")
		return nil
	}
}

// RunSQLMigrations applies the migrations in dir with golang-migrate.
func RunSQLMigrations(dir, databaseURL string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+filepath.ToSlash(abs), databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// sanity check: ensure required core tables exist
func checkTables(db *gorm.DB) error {
	for _, table := range coreTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
