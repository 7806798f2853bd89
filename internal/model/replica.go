package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Replica rows live in the products-sales store. They are written only by
// the replication worker, keyed by the source id, and keep the composition
// as the JSON document the message carried.

type ReplicaProductType struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name         string    `gorm:"size:45;not null"`
	Active       bool      `gorm:"not null"`
	ReplicatedAt time.Time `gorm:"not null"`
}

func (ReplicaProductType) TableName() string { return "sal_product_type" }

type ReplicaFormula struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name         string          `gorm:"size:45;not null"`
	Cost         decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Composition  datatypes.JSON
	Active       bool      `gorm:"not null"`
	ReplicatedAt time.Time `gorm:"not null"`
}

func (ReplicaFormula) TableName() string { return "sal_formula" }

type ReplicaProduct struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductTypeID *uuid.UUID      `gorm:"type:uuid"`
	Name          string          `gorm:"size:50;not null"`
	Code          *string         `gorm:"size:45"`
	Description   *string         `gorm:"size:100"`
	ImageURL      *string         `gorm:"size:255"`
	Cost          decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	Price         decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	HasFormula    bool            `gorm:"not null"`
	Composition   datatypes.JSON
	Active        bool      `gorm:"not null"`
	ReplicatedAt  time.Time `gorm:"not null"`
}

func (ReplicaProduct) TableName() string { return "sal_product" }
