package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/school-billing/internal/models"
	"github.com/diewo77/school-billing/validation"
)

// StudentInput is the enrolment form.
type StudentInput struct {
	Name            string `json:"name" validate:"max=255"`
	Class           string `json:"class" validate:"max=50"`
	Roll            int    `json:"roll" validate:"gte=0"`
	GuardianContact string `json:"guardianContact" validate:"max=50"`
	GuardianEmail   string `json:"guardianEmail" validate:"omitempty,email,max=255"`
	Address         string `json:"address" validate:"max=500"`
	// IsActive is only honoured on import; enrolment always starts active.
	IsActive *bool `json:"isActive,omitempty"`
}

// InputFromStudent turns an imported record back into an input row.
func InputFromStudent(s models.Student) StudentInput {
	active := s.IsActive
	return StudentInput{
		Name:            s.Name,
		Class:           s.Class,
		Roll:            s.Roll,
		GuardianContact: s.GuardianContact,
		GuardianEmail:   s.GuardianEmail,
		Address:         s.Address,
		IsActive:        &active,
	}
}

func (in *StudentInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Class = strings.TrimSpace(in.Class)
	in.GuardianContact = strings.TrimSpace(in.GuardianContact)
	in.GuardianEmail = strings.TrimSpace(in.GuardianEmail)
	in.Address = strings.TrimSpace(in.Address)
}

// Validate reports field violations.
func (in StudentInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("class", in.Class, v)
	validation.Struct(in, v)
	return v
}

func (in StudentInput) model() models.Student {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return models.Student{
		Name:            in.Name,
		Class:           in.Class,
		Roll:            in.Roll,
		GuardianContact: in.GuardianContact,
		GuardianEmail:   in.GuardianEmail,
		Address:         in.Address,
		IsActive:        active,
	}
}

// StudentService manages the roster.
type StudentService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStudentService(db *gorm.DB, log *zap.Logger) *StudentService {
	return &StudentService{db: db, log: log}
}

// List returns every student in enrolment order.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Get loads one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	var st models.Student
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &st, nil
}

// Create enrols a new, active student.
func (s *StudentService) Create(ctx context.Context, in StudentInput) (*models.Student, error) {
	in.normalize()
	in.IsActive = nil
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	st := in.model()
	if err := s.db.WithContext(ctx).Create(&st).Error; err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	s.log.Info("student enrolled", zap.String("student_id", st.ID), zap.String("class", st.Class))
	return &st, nil
}

// SetActive flips the enrolment status. Existing invoices are kept either way.
func (s *StudentService) SetActive(ctx context.Context, id string, active bool) (*models.Student, error) {
	res := s.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return nil, fmt.Errorf("update student status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	s.log.Info("student status changed", zap.String("student_id", id), zap.Bool("active", active))
	return s.Get(ctx, id)
}

// Import enrols all rows in one transaction. A single invalid row rejects
// the batch; violations are keyed "row N.field" with N counted from 1.
func (s *StudentService) Import(ctx context.Context, rows []StudentInput) (int, error) {
	all := validation.Violations{}
	students := make([]models.Student, 0, len(rows))
	for i := range rows {
		rows[i].normalize()
		for field, code := range rows[i].Validate() {
			all[fmt.Sprintf("row %d.%s", i+1, field)] = code
		}
		students = append(students, rows[i].model())
	}
	if err := invalid(all); err != nil {
		return 0, err
	}
	if len(students) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&students, 100).Error
	})
	if err != nil {
		return 0, fmt.Errorf("import students: %w", err)
	}
	s.log.Info("students imported", zap.Int("count", len(students)))
	return len(students), nil
}
