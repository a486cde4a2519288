package services

import (
	"time"

	"tourism-rewards-system/models"
)

// CurrentStreak counts consecutive UTC days, ending today or yesterday,
// on which the user earned positive XP. A quiet today does not break the
// streak — it just is not counted yet; a gap at yesterday does.
// Pure over the ledger, cheap enough to recompute on every dashboard read.
func CurrentStreak(txs []models.Transaction, now time.Time) int {
	active := make(map[time.Time]bool, len(txs))
	for _, tx := range txs {
		if tx.XPChange > 0 {
			active[StartOfUTCDay(tx.CreatedAt)] = true
		}
	}

	day := StartOfUTCDay(now)
	if !active[day] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for active[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
