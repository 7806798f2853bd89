package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Element is a raw material or input with its own unit cost and stock.
type Element struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name      string          `gorm:"size:45;not null"`
	Cost      decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Stock     float64         `gorm:"not null"`
	Unit      string          `gorm:"size:5;not null"`
	Active    bool            `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ElementTypeID *uuid.UUID `gorm:"type:uuid;index"`

	Company     *Company     `gorm:"foreignKey:CompanyID"`
	ElementType *ElementType `gorm:"foreignKey:ElementTypeID"`
}

func (Element) TableName() string { return "pro_element" }

func (e *Element) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
