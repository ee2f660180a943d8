// Package server assembles the HTTP API.
package server

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/school-billing/httpx"
	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/handlers"
	"github.com/diewo77/school-billing/internal/middleware"
	"github.com/diewo77/school-billing/internal/notify"
	"github.com/diewo77/school-billing/internal/pdf"
	"github.com/diewo77/school-billing/internal/services"
	"github.com/diewo77/school-billing/internal/summary"
)

// Deps are the collaborators behind the API.
type Deps struct {
	DB         *gorm.DB
	Log        *zap.Logger
	Students   *services.StudentService
	Fees       *services.FeeService
	Invoices   *services.InvoiceService
	Ledger     *services.LedgerService
	Reminders  *services.ReminderService
	Summarizer summary.Summarizer
	School     pdf.SchoolData
	Currency   string
	Limiter    *middleware.RateLimiter
}

// NewServices wires the service layer over db.
func NewServices(d *Deps, gen billing.Generator, sender notify.Sender, reminders notify.Reminders) {
	d.Students = services.NewStudentService(d.DB, d.Log)
	d.Fees = services.NewFeeService(d.DB, d.Log)
	d.Ledger = services.NewLedgerService(d.DB, d.Log)
	d.Invoices = services.NewInvoiceService(d.DB, gen, d.Log)
	d.Reminders = services.NewReminderService(d.Ledger, sender, reminders, d.Log)
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			d.Log.Warn("health check failed", zap.Error(err))
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	handlers.NewStudentHandler(d.Students, d.Log).Register(mux)
	handlers.NewFeeHandler(d.Fees, d.Log).Register(mux)
	handlers.NewInvoiceHandler(d.Invoices, d.Ledger, d.School, d.Currency, d.Log).Register(mux)
	handlers.NewLedgerHandler(d.Ledger, d.Log).Register(mux)
	handlers.NewReportHandler(d.Ledger, d.Summarizer, d.Log).Register(mux)
	handlers.NewReminderHandler(d.Reminders, d.Log).Register(mux)

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})

	var h http.Handler = mux
	if d.Limiter != nil {
		h = d.Limiter.Middleware(h)
	}
	h = middleware.Prefs(h)
	h = middleware.Recover(d.Log)(h)
	return middleware.Logging(d.Log)(h)
}
