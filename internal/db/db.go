package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/school-billing/internal/config"
)

const connectAttempts = 5

// Open connects to the configured database. PostgreSQL connections are
// retried to give the server time to start.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
		log.Info("connecting to database",
			zap.String("driver", cfg.Driver), zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port), zap.String("dbname", cfg.DBName), zap.String("user", cfg.User))
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
		log.Info("opening database", zap.String("driver", cfg.Driver), zap.String("path", cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	var db *gorm.DB
	var err error
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			err = db.Exec("SELECT 1").Error
		}
		if err == nil {
			return db, nil
		}
		if cfg.Driver != "postgres" {
			break
		}
		log.Warn("database not ready, retrying", zap.Int("attempt", i), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect database: %w", err)
}
