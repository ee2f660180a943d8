package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/httpx"
	"github.com/diewo77/school-billing/internal/services"
)

type ReminderHandler struct {
	svc *services.ReminderService
	log *zap.Logger
}

func NewReminderHandler(svc *services.ReminderService, log *zap.Logger) *ReminderHandler {
	return &ReminderHandler{svc: svc, log: log}
}

func (h *ReminderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/reminders", h.Pending)
	mux.HandleFunc("POST /api/reminders/send", h.Send)
}

func (h *ReminderHandler) Pending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.Pending(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pending)
}

func (h *ReminderHandler) Send(w http.ResponseWriter, r *http.Request) {
	var in struct {
		InvoiceIDs []string `json:"invoiceIds"`
	}
	if !decode(w, r, &in) {
		return
	}
	res, err := h.svc.Send(r.Context(), in.InvoiceIDs)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
