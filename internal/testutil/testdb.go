// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/school-billing/internal/db"
	"github.com/diewo77/school-billing/internal/models"
)

// NewDB opens a private in-memory SQLite database with the schema applied.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// CreateStudent inserts an active student.
func CreateStudent(t *testing.T, conn *gorm.DB, name, email string) models.Student {
	t.Helper()
	s := models.Student{Name: name, Class: "5", Roll: 1, GuardianEmail: email, IsActive: true}
	if err := conn.Create(&s).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	return s
}

// CreateFee inserts a fee structure item.
func CreateFee(t *testing.T, conn *gorm.DB, description string, amount int64) models.FeeStructureItem {
	t.Helper()
	f := models.FeeStructureItem{Description: description, Amount: decimal.NewFromInt(amount)}
	if err := conn.Create(&f).Error; err != nil {
		t.Fatalf("create fee: %v", err)
	}
	return f
}

// CreateInvoice inserts an invoice of total for the student and period.
func CreateInvoice(t *testing.T, conn *gorm.DB, studentID string, month time.Month, year int, total int64) models.Invoice {
	t.Helper()
	issued := time.Date(year, month, 1, 9, 0, 0, 0, time.UTC)
	inv := models.Invoice{
		Number:      models.InvoiceNumber(year, month, nextSeq(conn, month, year)),
		StudentID:   studentID,
		Month:       month,
		Year:        year,
		IssueDate:   issued,
		DueDate:     issued.AddDate(0, 0, 15),
		TotalAmount: decimal.NewFromInt(total),
	}
	inv.Items = append(inv.Items, models.LineItem{Description: "Tuition Fee", Amount: inv.TotalAmount})
	if err := conn.Create(&inv).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func nextSeq(conn *gorm.DB, month time.Month, year int) int {
	var n int64
	conn.Model(&models.Invoice{}).Where("month = ? AND year = ?", month, year).Count(&n)
	return int(n) + 1
}
