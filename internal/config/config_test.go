package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/school-billing/internal/billing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DUE_MODE", "")
	t.Setenv("MIGRATIONS", "")
	t.Setenv("DUE_DAYS", "")
	t.Setenv("SKIP_EMPTY_FEE_STRUCTURE", "")
	t.Setenv("GEMINI_MODEL", "")
	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, MigrateAuto, cfg.App.Migrations)
	assert.Equal(t, "days", cfg.Billing.DueMode)
	assert.Equal(t, 15, cfg.Billing.DueDays)
	assert.False(t, cfg.Billing.SkipEmptyFeeStructure)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("MIGRATIONS", "SQL")
	t.Setenv("SKIP_EMPTY_FEE_STRUCTURE", "yes")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "fallback-key")
	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port, "invalid ints fall back to the default")
	assert.Equal(t, MigrateSQL, cfg.App.Migrations)
	assert.True(t, cfg.Billing.SkipEmptyFeeStructure)
	assert.InDelta(t, 0.5, cfg.RateLimit.RPS, 1e-9)
	assert.Equal(t, "fallback-key", cfg.AI.APIKey)
}

func TestDatabaseConfigStrings(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", d.DSN())
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=disable", d.URL())
}

func TestBillingDuePolicy(t *testing.T) {
	p, err := BillingConfig{DueMode: "days", DueDays: 20, DueDay: 3}.DuePolicy()
	require.NoError(t, err)
	assert.Equal(t, billing.DuePolicy{Mode: billing.DueAfterDays, Days: 20}, p)

	p, err = BillingConfig{DueMode: "next_month_day", DueDays: 20, DueDay: 3}.DuePolicy()
	require.NoError(t, err)
	assert.Equal(t, billing.DuePolicy{Mode: billing.DueDayOfNextMonth, Day: 3}, p)

	_, err = BillingConfig{DueMode: "fortnightly"}.DuePolicy()
	assert.Error(t, err)
}

func TestMailModes(t *testing.T) {
	assert.Equal(t, []string{"log", "redis"}, MailConfig{Mode: " Log, ,redis "}.MailModes())
	assert.Empty(t, MailConfig{}.MailModes())
}
