// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/diewo77/school-billing/internal/billing"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Billing   BillingConfig
	Mail      MailConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

// Migration modes.
const (
	MigrateAuto = "auto" // gorm AutoMigrate
	MigrateSQL  = "sql"  // golang-migrate files under MigrationsDir
	MigrateOff  = "off"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Migrations    string
	MigrationsDir string
	Seed          bool
	SchoolName    string
}

// BillingConfig drives invoice generation and money display.
type BillingConfig struct {
	DueMode               string
	DueDays               int
	DueDay                int
	SkipEmptyFeeStructure bool
	// GenerateSchedule is a cron spec for the monthly run; empty disables it.
	GenerateSchedule string
	CurrencySymbol   string
}

// MailConfig selects how fee reminders leave the system. Mode is a comma
// separated list of "log", "file", "redis" and "smtp".
type MailConfig struct {
	Mode         string
	From         string
	FilePath     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	RedisAddr    string
	RedisQueue   string
}

// AIConfig configures the optional narrative summary.
type AIConfig struct {
	APIKey string
	Model  string
}

// RateLimitConfig bounds mutating requests per client.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DuePolicy builds the configured due date policy.
func (b BillingConfig) DuePolicy() (billing.DuePolicy, error) {
	n := b.DueDays
	if billing.DueMode(b.DueMode) == billing.DueDayOfNextMonth {
		n = b.DueDay
	}
	return billing.NewDuePolicy(b.DueMode, n)
}

// MailModes splits Mode into its enabled senders.
func (m MailConfig) MailModes() []string {
	var modes []string
	for _, part := range strings.Split(m.Mode, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			modes = append(modes, p)
		}
	}
	return modes
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "billing"),
			Password:   getEnv("DB_PASSWORD", "billing123"),
			DBName:     getEnv("DB_NAME", "school_billing"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "school-billing.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", true),
			Migrations:    strings.ToLower(getEnv("MIGRATIONS", MigrateAuto)),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
			Seed:          getEnvBool("DB_SEED", false),
			SchoolName:    getEnv("SCHOOL_NAME", "School"),
		},
		Billing: BillingConfig{
			DueMode:               getEnv("DUE_MODE", string(billing.DueAfterDays)),
			DueDays:               getEnvInt("DUE_DAYS", 15),
			DueDay:                getEnvInt("DUE_DAY", 10),
			SkipEmptyFeeStructure: getEnvBool("SKIP_EMPTY_FEE_STRUCTURE", false),
			GenerateSchedule:      getEnv("GENERATE_SCHEDULE", ""),
			CurrencySymbol:        getEnv("CURRENCY_SYMBOL", "Rs."),
		},
		Mail: MailConfig{
			Mode:         getEnv("MAIL_MODE", "log"),
			From:         getEnv("MAIL_FROM", "accounts@school.local"),
			FilePath:     getEnv("MAIL_FILE", "var/mail/reminders.log"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
			RedisQueue:   getEnv("REDIS_MAIL_QUEUE", "school-billing:mail"),
		},
		AI: AIConfig{
			APIKey: getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
