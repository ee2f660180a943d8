package handlers

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/httpx"
	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/display"
	"github.com/diewo77/school-billing/internal/middleware"
	"github.com/diewo77/school-billing/internal/models"
	"github.com/diewo77/school-billing/internal/pdf"
	"github.com/diewo77/school-billing/internal/services"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
	ledger   *services.LedgerService
	school   pdf.SchoolData
	currency string
	log      *zap.Logger
	now      func() time.Time
}

func NewInvoiceHandler(invoices *services.InvoiceService, ledger *services.LedgerService, school pdf.SchoolData, currency string, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, ledger: ledger, school: school, currency: currency, log: log, now: time.Now}
}

func (h *InvoiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/invoices", h.List)
	mux.HandleFunc("POST /api/invoices/generate", h.Generate)
	mux.HandleFunc("GET /api/invoices/{id}", h.Get)
	mux.HandleFunc("GET /api/invoices/{id}/pdf", h.PDF)
}

// List returns invoice views, newest first, optionally narrowed by
// ?status= and ?studentId=.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	f := billing.InvoiceFilter{
		Status:    models.InvoiceStatus(r.URL.Query().Get("status")),
		StudentID: r.URL.Query().Get("studentId"),
	}
	if f.Status != "" && !f.Status.Valid() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "invalid_choice"})
		return
	}
	l, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f.Filter(l.InvoiceViews()))
}

// Generate runs monthly generation for {month, year}; an empty body bills
// the current month.
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var period billing.Period
	if !decode(w, r, &period) {
		return
	}
	if period == (billing.Period{}) {
		period = billing.PeriodOf(h.now())
	}
	res, err := h.invoices.Generate(r.Context(), period)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	status := http.StatusOK
	if res.Created > 0 {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, res)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.ledger.InvoiceDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// PDF renders the invoice with dates in the caller's calendar preference.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	d, err := h.ledger.InvoiceDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	cal := middleware.CalendarFrom(r)

	data := pdf.InvoiceData{
		InvoiceNumber: d.Number,
		Period:        display.Period(d.Month, d.Year),
		Date:          display.Date(d.IssueDate, cal),
		DueDate:       display.Date(d.DueDate, cal),
		Status:        string(d.Status),
		School:        h.school,
		Student:       pdf.StudentData{Name: d.StudentName, Email: d.StudentEmail},
		Total:         display.Amount(h.currency, d.TotalAmount),
		Paid:          display.Amount(h.currency, d.PaidAmount),
		Waived:        display.Amount(h.currency, d.WaiverAmount),
		Due:           display.Amount(h.currency, d.DueAmount),
	}
	if d.Student != nil {
		data.Student.Class = d.Student.Class
		data.Student.Roll = d.Student.Roll
		data.Student.Guardian = d.Student.GuardianContact
		data.Student.Address = d.Student.Address
	}
	for _, it := range d.Items {
		data.Items = append(data.Items, pdf.InvoiceItem{Description: it.Description, Amount: display.Amount(h.currency, it.Amount)})
	}

	out, err := pdf.InvoicePDF(data)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.Attachment(w, "application/pdf", fmt.Sprintf("invoice-%s.pdf", d.Number), out)
}
