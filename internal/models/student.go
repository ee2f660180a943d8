package models

import (
	"time"

	"gorm.io/gorm"
)

// Student is an enrolled pupil. Students are never deleted; leaving the
// school flips IsActive.
type Student struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Class string `gorm:"size:50;not null" json:"class"`
	Roll  int    `gorm:"not null" json:"roll"`

	// Guardian contact details, used for fee reminders.
	GuardianContact string `gorm:"size:50" json:"guardianContact"`
	GuardianEmail   string `gorm:"size:255" json:"guardianEmail"`
	Address         string `gorm:"size:500" json:"address"`

	IsActive bool `gorm:"not null;index" json:"isActive"`
}

func (s *Student) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// StatusLabel renders IsActive the way exports show it.
func (s *Student) StatusLabel() string {
	if s.IsActive {
		return "Active"
	}
	return "Inactive"
}
