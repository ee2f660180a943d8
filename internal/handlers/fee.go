package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/httpx"
	"github.com/diewo77/school-billing/internal/services"
)

type FeeHandler struct {
	svc *services.FeeService
	log *zap.Logger
}

func NewFeeHandler(svc *services.FeeService, log *zap.Logger) *FeeHandler {
	return &FeeHandler{svc: svc, log: log}
}

func (h *FeeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/fees", h.List)
	mux.HandleFunc("POST /api/fees", h.Create)
	mux.HandleFunc("PUT /api/fees/{id}", h.Update)
	mux.HandleFunc("DELETE /api/fees/{id}", h.Delete)
}

func (h *FeeHandler) List(w http.ResponseWriter, r *http.Request) {
	fees, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fees)
}

func (h *FeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.FeeInput
	if !decode(w, r, &in) {
		return
	}
	fee, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, fee)
}

func (h *FeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.FeeInput
	if !decode(w, r, &in) {
		return
	}
	fee, err := h.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fee)
}

func (h *FeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
