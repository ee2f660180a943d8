package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/diewo77/school-billing/internal/models"
)

func TestAudit_CleanLedger(t *testing.T) {
	l := sampleLedger()
	for i := range l.Invoices {
		l.Invoices[i].Items = datatypes.NewJSONSlice([]models.LineItem{{Description: "Tuition Fee", Amount: l.Invoices[i].TotalAmount}})
	}
	assert.Empty(t, l.Audit())
}

func TestAudit_ReportsAnomalies(t *testing.T) {
	l := Ledger{
		Students: []models.Student{{ID: "s1", IsActive: true}},
		Invoices: []models.Invoice{
			{ID: "i1", StudentID: "s1", TotalAmount: amt(100), Items: datatypes.NewJSONSlice([]models.LineItem{{Amount: amt(100)}})},
			{ID: "i2", StudentID: "ghost", TotalAmount: amt(50), Items: datatypes.NewJSONSlice([]models.LineItem{{Amount: amt(40)}})},
		},
		Payments: []models.Payment{
			{ID: "p1", InvoiceID: "missing", Amount: amt(10)},
			{ID: "p2", InvoiceID: "i1", Amount: amt(0)},
		},
		Waivers: []models.Waiver{
			{ID: "w1", InvoiceID: "missing", Amount: amt(-5)},
		},
	}

	kinds := map[IssueKind][]string{}
	for _, is := range l.Audit() {
		kinds[is.Kind] = append(kinds[is.Kind], is.Ref)
	}
	assert.Equal(t, []string{"i2"}, kinds[IssueUnknownStudent])
	assert.Equal(t, []string{"i2"}, kinds[IssueTotalMismatch])
	assert.Equal(t, []string{"p1"}, kinds[IssueDanglingPayment])
	assert.Equal(t, []string{"p2"}, kinds[IssueNonPositivePayment])
	assert.Equal(t, []string{"w1"}, kinds[IssueDanglingWaiver])
	assert.Equal(t, []string{"w1"}, kinds[IssueNonPositiveWaiver])

	// the settlement still runs over the same data
	s := Settle(l.Invoices[0], l.Payments, l.Waivers)
	assert.Equal(t, models.InvoiceStatusUnpaid, s.Status)
}
