package models

import "time"

// QuestStatus is the lifecycle state of a per-user quest record.
type QuestStatus string

const (
	QuestStatusCompleted QuestStatus = "completed"
)

// UserQuest is the per-(user, quest) aggregate. Created on the first
// successful completion, updated on every one after that, never deleted.
// It doubles as the display record and the cooldown source of truth;
// daily-cap counting reads the ledger instead.
type UserQuest struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index:idx_user_quest,unique;not null" json:"external_user_id"`
	QuestID        string `gorm:"index:idx_user_quest,unique;not null" json:"quest_id"`

	Status          QuestStatus `gorm:"not null" json:"status"`
	CompletionCount int         `json:"completion_count" gorm:"default:0"`
	XPEarned        int64       `json:"xp_earned" gorm:"default:0"`
	LastCompletedAt *time.Time  `json:"last_completed_at,omitempty"`

	Timestamps
}
