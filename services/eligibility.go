package services

import (
	"time"

	"tourism-rewards-system/models"
)

// CanComplete is the anti-spam guard: pure over catalog config and the
// user's completion history, no I/O. External requirement predicates
// (GPS, photo, social proof) are verified by the caller before this runs.
//
// Checks run in a fixed order: inactive, non-repeatable, daily cap,
// cooldown. completedToday is the count of this quest's ledger entries
// since UTC midnight — the calendar day policy is UTC throughout.
// uq is nil when the user has never completed the quest.
func CanComplete(quest models.Quest, uq *models.UserQuest, completedToday int64, now time.Time) error {
	if !quest.IsActive {
		return models.ErrQuestInactive
	}
	if !quest.IsRepeatable && uq != nil && uq.Status == models.QuestStatusCompleted {
		return models.ErrNotRepeatable
	}
	if quest.MaxCompletionsPerDay > 0 && completedToday >= int64(quest.MaxCompletionsPerDay) {
		return models.ErrDailyLimitReached
	}
	if quest.CooldownHours > 0 && uq != nil && uq.LastCompletedAt != nil {
		readyAt := uq.LastCompletedAt.Add(time.Duration(quest.CooldownHours) * time.Hour)
		if now.Before(readyAt) {
			return models.ErrOnCooldown
		}
	}
	return nil
}

// StartOfUTCDay truncates t to UTC midnight, the boundary used for the
// daily completion cap and for streaks.
func StartOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
