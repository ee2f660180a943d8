package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/config"
	"github.com/diewo77/school-billing/internal/middleware"
	"github.com/diewo77/school-billing/internal/notify"
	"github.com/diewo77/school-billing/internal/pdf"
	"github.com/diewo77/school-billing/internal/scheduler"
	"github.com/diewo77/school-billing/internal/server"
	"github.com/diewo77/school-billing/internal/summary"
)

// App bundles the wired services, the HTTP handler and the scheduler.
type App struct {
	deps      server.Deps
	scheduler *scheduler.Scheduler
	closers   []func() error
}

// NewApp wires every component from configuration.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger, dbConn *gorm.DB) (*App, error) {
	due, err := cfg.Billing.DuePolicy()
	if err != nil {
		return nil, fmt.Errorf("due policy: %w", err)
	}
	gen := billing.Generator{Due: due, SkipEmptyFeeStructure: cfg.Billing.SkipEmptyFeeStructure}

	app := &App{deps: server.Deps{DB: dbConn, Log: log}}
	sender, err := app.buildSender(cfg.Mail, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.deps.Summarizer = summary.New(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.Billing.CurrencySymbol, log)
	app.deps.School = pdf.SchoolData{Name: cfg.App.SchoolName}
	app.deps.Currency = cfg.Billing.CurrencySymbol
	app.deps.Limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	server.NewServices(&app.deps, gen, sender, notify.Reminders{
		From:     cfg.Mail.From,
		School:   cfg.App.SchoolName,
		Currency: cfg.Billing.CurrencySymbol,
	})

	app.scheduler = scheduler.New(log)
	err = app.scheduler.MonthlyInvoices(cfg.Billing.GenerateSchedule, func(ctx context.Context, p billing.Period) error {
		_, err := app.deps.Invoices.Generate(ctx, p)
		return err
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// buildSender composes the senders named by MAIL_MODE.
func (a *App) buildSender(cfg config.MailConfig, log *zap.Logger) (notify.Sender, error) {
	cs := notify.NewCompositeSender()
	for _, mode := range cfg.MailModes() {
		switch mode {
		case "log":
			cs.Add(notify.NewLoggingSender(log))
		case "file":
			fs, err := notify.NewFileSender(cfg.FilePath)
			if err != nil {
				return nil, err
			}
			cs.Add(fs)
		case "redis":
			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			a.closers = append(a.closers, client.Close)
			cs.Add(notify.NewRedisSender(client, cfg.RedisQueue))
		case "smtp":
			ss, err := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, log)
			if err != nil {
				return nil, err
			}
			cs.Add(ss)
		default:
			return nil, fmt.Errorf("unknown mail mode %q", mode)
		}
	}
	if len(cfg.MailModes()) == 0 {
		cs.Add(notify.NewLoggingSender(log))
	}
	return cs, nil
}

func (a *App) Handler() http.Handler { return server.New(a.deps) }

// Generate runs one generation for period, as the -generate flag does.
func (a *App) Generate(ctx context.Context, p billing.Period) (int, error) {
	res, err := a.deps.Invoices.Generate(ctx, p)
	if err != nil {
		return 0, err
	}
	return res.Created, nil
}

func (a *App) Start() { a.scheduler.Start() }

// Stop halts the scheduler and releases connections.
func (a *App) Stop(ctx context.Context) {
	a.scheduler.Stop(ctx)
	a.Close()
}

func (a *App) Close() {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.deps.Log.Warn("close", zap.Error(err))
	}
}
