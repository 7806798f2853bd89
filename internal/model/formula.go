package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Formula is a reusable recipe: a named set of (element, qty) lines whose
// cost is the sum of element cost times qty.
type Formula struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name      string          `gorm:"size:45;not null"`
	Cost      decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Active    bool            `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Company *Company         `gorm:"foreignKey:CompanyID"`
	Lines   []FormulaElement `gorm:"foreignKey:FormulaID"`
}

func (Formula) TableName() string { return "pro_formula" }

func (f *Formula) BeforeCreate(*gorm.DB) error {
	assignID(&f.ID)
	return nil
}

// FormulaElement is one composition line of a formula.
type FormulaElement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FormulaID uuid.UUID `gorm:"type:uuid;index;not null"`
	ElementID uuid.UUID `gorm:"type:uuid;index;not null"`
	Qty       float64   `gorm:"not null"`

	Element *Element `gorm:"foreignKey:ElementID"`
}

func (FormulaElement) TableName() string { return "pro_formula_element" }

func (l *FormulaElement) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
