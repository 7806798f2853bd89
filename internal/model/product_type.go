package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductType classifies products within a company.
type ProductType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"size:45;not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}

func (ProductType) TableName() string { return "pro_product_type" }

func (p *ProductType) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
