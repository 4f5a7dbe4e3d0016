package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the UUID key, timestamps, soft delete and audit columns
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy string `json:"createdBy,omitempty"`
	UpdatedBy string `json:"updatedBy,omitempty"`
	DeletedBy string `json:"-"`
}

// BeforeCreate assigns a fresh UUID unless the caller already set one.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// SystemFlag is a keyed, write-once marker row.
type SystemFlag struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time
}

// FlagAdminBootstrapped is set exactly once, by whoever becomes the first admin.
const FlagAdminBootstrapped = "admin_bootstrapped"
