package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/display"
)

var reminderTmpl = template.Must(template.New("reminder").Parse(`Dear Guardian,

This is a reminder that invoice {{.Number}} for {{.StudentName}} ({{.Period}}) has an outstanding balance of {{.Due}}.

Due date: {{.DueDate}} ({{.DueDateBS}})
Status: {{.Status}}

Please settle the balance at the school accounts office. Ignore this message if you have already paid.

{{.School}} Accounts
`))

// Reminders composes fee reminder messages.
type Reminders struct {
	From     string
	School   string
	Currency string
}

// Compose writes the reminder for one pending invoice.
func (r Reminders) Compose(p billing.PendingInvoice) (Message, error) {
	var body bytes.Buffer
	err := reminderTmpl.Execute(&body, map[string]string{
		"Number":      p.Number,
		"StudentName": p.StudentName,
		"Period":      display.Period(p.Month, p.Year),
		"Due":         display.Amount(r.Currency, p.DueAmount),
		"DueDate":     display.Date(p.DueDate, display.AD),
		"DueDateBS":   display.Date(p.DueDate, display.BS),
		"Status":      string(p.Status),
		"School":      r.School,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render reminder: %w", err)
	}
	return Message{
		From:    r.From,
		To:      []string{p.GuardianEmail},
		Subject: fmt.Sprintf("Fee reminder: %s for %s", p.Number, p.StudentName),
		Body:    body.String(),
	}, nil
}
