// Package csvio reads and writes the roster and report CSV files.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/models"
)

var studentHeader = []string{"ID", "Name", "Class", "Roll", "Guardian Contact", "Guardian Email", "Address", "Status"}

var ErrMissingHeader = errors.New("csv header must include Name and Class")

// RowError points at the line of an unreadable record.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// WriteStudents writes the roster export.
func WriteStudents(w io.Writer, students []models.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(studentHeader); err != nil {
		return err
	}
	for _, s := range students {
		rec := []string{
			s.ID, s.Name, s.Class, strconv.Itoa(s.Roll),
			s.GuardianContact, s.GuardianEmail, s.Address, s.StatusLabel(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func normHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "").Replace(h)
}

// ReadStudents parses a roster file. Columns are matched by header name in
// any order; ID is ignored and a missing Status means active.
func ReadStudents(r io.Reader) ([]models.Student, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[normHeader(h)] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, ErrMissingHeader
	}
	if _, ok := col["class"]; !ok {
		return nil, ErrMissingHeader
	}
	get := func(rec []string, key string) string {
		i, ok := col[key]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var students []models.Student
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		if strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}
		s := models.Student{
			Name:            get(rec, "name"),
			Class:           get(rec, "class"),
			GuardianContact: get(rec, "guardiancontact"),
			GuardianEmail:   get(rec, "guardianemail"),
			Address:         get(rec, "address"),
			IsActive:        !strings.EqualFold(get(rec, "status"), "inactive"),
		}
		if roll := get(rec, "roll"); roll != "" {
			n, err := strconv.Atoi(roll)
			if err != nil {
				return nil, &RowError{Line: line, Err: fmt.Errorf("roll %q is not a number", roll)}
			}
			s.Roll = n
		}
		students = append(students, s)
	}
	return students, nil
}

// WriteStudentReport writes the per-student dues report.
func WriteStudentReport(w io.Writer, rows []billing.StudentDues) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Student ID", "Name", "Class", "Status", "Total Billed", "Total Paid", "Total Due"}); err != nil {
		return err
	}
	for _, r := range rows {
		status := "Active"
		if !r.IsActive {
			status = "Inactive"
		}
		rec := []string{
			r.StudentID, r.StudentName, r.Class, status,
			r.TotalBilled.StringFixed(2), r.TotalPaid.StringFixed(2), r.TotalDue.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
