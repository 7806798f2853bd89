package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable item. HasFormula selects which line set carries
// its composition: FormulaLines when true, ElementLines otherwise.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductTypeID *uuid.UUID      `gorm:"type:uuid;index"`
	Name          string          `gorm:"size:50;not null"`
	Code          *string         `gorm:"size:45"`
	Description   *string         `gorm:"size:100"`
	ImageURL      *string         `gorm:"size:255"`
	Cost          decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Price         decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	HasFormula    bool            `gorm:"not null"`
	Active        bool            `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Company      *Company         `gorm:"foreignKey:CompanyID"`
	ProductType  *ProductType     `gorm:"foreignKey:ProductTypeID"`
	ElementLines []ProductElement `gorm:"foreignKey:ProductID"`
	FormulaLines []ProductFormula `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "pro_product" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// ProductElement is a direct element line of a product.
type ProductElement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`
	ElementID uuid.UUID `gorm:"type:uuid;index;not null"`
	Qty       float64   `gorm:"not null"`

	Element *Element `gorm:"foreignKey:ElementID"`
}

func (ProductElement) TableName() string { return "pro_product_element" }

func (l *ProductElement) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// ProductFormula is a formula line of a product.
type ProductFormula struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`
	FormulaID uuid.UUID `gorm:"type:uuid;index;not null"`
	Qty       float64   `gorm:"not null"`

	Formula *Formula `gorm:"foreignKey:FormulaID"`
}

func (ProductFormula) TableName() string { return "pro_product_formula" }

func (l *ProductFormula) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
