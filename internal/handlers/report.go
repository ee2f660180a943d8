package handlers

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/httpx"
	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/csvio"
	"github.com/diewo77/school-billing/internal/services"
	"github.com/diewo77/school-billing/internal/summary"
)

type ReportHandler struct {
	ledger     *services.LedgerService
	summarizer summary.Summarizer
	log        *zap.Logger
}

func NewReportHandler(ledger *services.LedgerService, summarizer summary.Summarizer, log *zap.Logger) *ReportHandler {
	return &ReportHandler{ledger: ledger, summarizer: summarizer, log: log}
}

func (h *ReportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", h.Dashboard)
	mux.HandleFunc("GET /api/reports/students", h.Students)
	mux.HandleFunc("GET /api/reports/students.csv", h.StudentsCSV)
	mux.HandleFunc("POST /api/reports/summary", h.Summary)
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l.Dashboard())
}

func (h *ReportHandler) Students(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l.StudentReport())
}

func (h *ReportHandler) StudentsCSV(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var buf bytes.Buffer
	if err := csvio.WriteStudentReport(&buf, l.StudentReport()); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.Attachment(w, "text/csv; charset=utf-8", "student-dues.csv", buf.Bytes())
}

type summaryResponse struct {
	Figures billing.Figures `json:"figures"`
	Summary string          `json:"summary"`
}

// Summary always answers 200; an unavailable or failing model yields the
// fallback text.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	f := l.Figures()
	httpx.JSON(w, http.StatusOK, summaryResponse{
		Figures: f,
		Summary: summary.Describe(r.Context(), h.summarizer, f, h.log),
	})
}
