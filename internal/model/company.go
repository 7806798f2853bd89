package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a row a fresh uuid unless the caller (or a replicated
// message) already set one.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Company is the tenant every catalog row belongs to. Rows are created and
// removed through replication from the admin service.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:50;not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Company) TableName() string { return "pro_company" }

func (c *Company) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
