package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/httpx"
	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/services"
)

type LedgerHandler struct {
	svc *services.LedgerService
	log *zap.Logger
}

func NewLedgerHandler(svc *services.LedgerService, log *zap.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, log: log}
}

func (h *LedgerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/data", h.Data)
	mux.HandleFunc("GET /api/audit", h.Audit)
	mux.HandleFunc("POST /api/payments", h.RecordPayment)
	mux.HandleFunc("POST /api/waivers", h.GrantWaiver)
}

// Data returns the whole ledger snapshot.
func (h *LedgerHandler) Data(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

func (h *LedgerHandler) Audit(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	issues := l.Audit()
	if issues == nil {
		issues = []billing.Issue{}
	}
	httpx.JSON(w, http.StatusOK, issues)
}

func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var in services.PaymentInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.svc.RecordPayment(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *LedgerHandler) GrantWaiver(w http.ResponseWriter, r *http.Request) {
	var in services.WaiverInput
	if !decode(w, r, &in) {
		return
	}
	wv, err := h.svc.GrantWaiver(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, wv)
}
