package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ElementType groups elements within a company (flours, packaging, ...).
type ElementType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"size:45;not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}

func (ElementType) TableName() string { return "pro_element_type" }

func (t *ElementType) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}
