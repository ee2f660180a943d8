package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/notify"
)

// Skip reasons reported by ReminderService.Send.
const (
	SkipNotPending = "not_pending"
	SkipNoEmail    = "no_guardian_email"
	SkipSendFailed = "send_failed"
)

// SkippedReminder is an invoice id that got no reminder, with the reason.
type SkippedReminder struct {
	InvoiceID string `json:"invoiceId"`
	Reason    string `json:"reason"`
}

// ReminderResult reports a reminder batch.
type ReminderResult struct {
	Sent    []string          `json:"sent"`
	Skipped []SkippedReminder `json:"skipped"`
}

// ReminderService sends fee reminders for pending invoices.
type ReminderService struct {
	ledger    *LedgerService
	sender    notify.Sender
	reminders notify.Reminders
	log       *zap.Logger
}

func NewReminderService(ledger *LedgerService, sender notify.Sender, reminders notify.Reminders, log *zap.Logger) *ReminderService {
	return &ReminderService{ledger: ledger, sender: sender, reminders: reminders, log: log}
}

// Pending lists invoices with a positive due amount.
func (s *ReminderService) Pending(ctx context.Context) ([]billing.PendingInvoice, error) {
	l, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pending := l.PendingInvoices()
	if pending == nil {
		pending = []billing.PendingInvoice{}
	}
	return pending, nil
}

// Send reminds the guardians of the selected invoices. Ids that are not
// pending or lack a guardian email are skipped; a failed delivery skips
// that invoice and the batch continues.
func (s *ReminderService) Send(ctx context.Context, invoiceIDs []string) (*ReminderResult, error) {
	if len(invoiceIDs) == 0 {
		return nil, ErrNoInvoicesSelected
	}
	pending, err := s.Pending(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]billing.PendingInvoice, len(pending))
	for _, p := range pending {
		byID[p.InvoiceID] = p
	}

	res := &ReminderResult{Sent: []string{}, Skipped: []SkippedReminder{}}
	seen := make(map[string]bool, len(invoiceIDs))
	for _, id := range invoiceIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, ok := byID[id]
		switch {
		case !ok:
			res.Skipped = append(res.Skipped, SkippedReminder{InvoiceID: id, Reason: SkipNotPending})
			continue
		case p.GuardianEmail == "":
			res.Skipped = append(res.Skipped, SkippedReminder{InvoiceID: id, Reason: SkipNoEmail})
			continue
		}
		msg, err := s.reminders.Compose(p)
		if err != nil {
			return nil, fmt.Errorf("compose reminder for %s: %w", id, err)
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			s.log.Error("reminder delivery failed", zap.String("invoice_id", id), zap.Error(err))
			res.Skipped = append(res.Skipped, SkippedReminder{InvoiceID: id, Reason: SkipSendFailed})
			continue
		}
		res.Sent = append(res.Sent, id)
	}
	s.log.Info("reminders processed", zap.Int("sent", len(res.Sent)), zap.Int("skipped", len(res.Skipped)))
	return res, nil
}
