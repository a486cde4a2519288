package services

import (
	"testing"
	"time"

	"tourism-rewards-system/models"
)

func txAt(t time.Time, xp int64) models.Transaction {
	return models.Transaction{XPChange: xp, CreatedAt: t}
}

func TestCurrentStreakThreeDays(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		txAt(now.AddDate(0, 0, -2), 50),
		txAt(now.AddDate(0, 0, -1), 25),
		txAt(now, 100),
	}
	if got := CurrentStreak(txs, now); got != 3 {
		t.Fatalf("streak = %d, want 3", got)
	}
}

func TestCurrentStreakGapBreaks(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	// Most recent activity was two days ago: the gap at yesterday breaks it.
	txs := []models.Transaction{
		txAt(now.AddDate(0, 0, -3), 50),
		txAt(now.AddDate(0, 0, -2), 25),
	}
	if got := CurrentStreak(txs, now); got != 0 {
		t.Fatalf("streak = %d, want 0", got)
	}
}

func TestCurrentStreakQuietTodayDoesNotBreak(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		txAt(now.AddDate(0, 0, -3), 10),
		txAt(now.AddDate(0, 0, -2), 10),
		txAt(now.AddDate(0, 0, -1), 10),
	}
	// No activity yet today: the walk starts at yesterday.
	if got := CurrentStreak(txs, now); got != 3 {
		t.Fatalf("streak = %d, want 3", got)
	}
}

func TestCurrentStreakIgnoresNonPositive(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		txAt(now.AddDate(0, 0, -1), 50),
		txAt(now, -200), // exchange today does not count as activity
		txAt(now, 0),    // level-up marker does not either
	}
	if got := CurrentStreak(txs, now); got != 1 {
		t.Fatalf("streak = %d, want 1", got)
	}
}

func TestCurrentStreakEmptyLedger(t *testing.T) {
	if got := CurrentStreak(nil, time.Now()); got != 0 {
		t.Fatalf("streak = %d, want 0", got)
	}
}
