package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/httpx"
	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/services"
)

// writeError maps service errors onto API error codes. Anything unknown is
// logged and reported as internal_error.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", ve.Violations)
	case errors.Is(err, billing.ErrInvalidPeriod):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"period": "invalid_period"})
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrNoInvoicesSelected):
		httpx.JSONError(w, http.StatusBadRequest, "no_invoices_selected", nil)
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}
