package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile is the engine's per-user progression state. Accounts are
// provisioned by the profile service; ExternalUserID links back to it.
// CurrentLevel is derived from TotalXP and the level table — recomputed
// after every XP mutation, never hand-set, and never decremented.
type UserProfile struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`

	TotalXP      int64 `json:"total_xp" gorm:"default:0"`
	CurrentLevel int   `json:"current_level" gorm:"default:1"`

	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	LastLevelUpAt  *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
