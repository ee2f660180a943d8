package services

import (
	"errors"

	"github.com/diewo77/school-billing/validation"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrNoInvoicesSelected = errors.New("no_invoices_selected")
)

// ValidationError carries the field violations of a rejected write.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "validation_failed" }

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}
