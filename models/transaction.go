package models

import "time"

// TxAction classifies a ledger entry.
type TxAction string

const (
	TxActionQuestCompleted TxAction = "QUEST_COMPLETED"
	TxActionLevelUp        TxAction = "LEVEL_UP"
	TxActionXPExchange     TxAction = "XP_EXCHANGE"
	TxActionXPReset        TxAction = "XP_RESET"
	TxActionAdminGrant     TxAction = "ADMIN_GRANT"
)

// Transaction is one immutable row of the append-only XP ledger — the
// sole audit source: for every user, sum(xp_change) must equal TotalXP.
// Streaks and history reads are computed from it.
type Transaction struct {
	ID             string   `gorm:"primaryKey" json:"id"` // ksuid, sortable by creation time
	ExternalUserID string   `gorm:"index;not null" json:"external_user_id"`
	ActionType     TxAction `gorm:"not null;index" json:"action_type"`
	XPChange       int64    `json:"xp_change"`

	QuestID   string `gorm:"index" json:"quest_id,omitempty"`
	VoucherID string `json:"voucher_id,omitempty"`

	Description string `json:"description"`
	Metadata    string `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
