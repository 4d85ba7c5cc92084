package model

import (
	"time"

	"gorm.io/gorm"
)

// ── audit columns ──

// BaseModel audit columns shared by every table
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"createdBy,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updatedBy,omitempty"`
}

// SoftDeleteModel audit columns plus soft delete
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"-"`
	DeletedBy *string        `gorm:"type:uuid" json:"-"`
}

// VersionedModel soft delete plus optimistic lock version
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
