package services

import (
	"errors"
	"testing"
	"time"

	"tourism-rewards-system/models"
)

func TestCanCompleteFirstAttempt(t *testing.T) {
	quest := models.Quest{ID: "q", IsActive: true, IsRepeatable: false}
	if err := CanComplete(quest, nil, 0, time.Now()); err != nil {
		t.Fatalf("first attempt must be allowed, got %v", err)
	}
}

func TestCanCompleteInactive(t *testing.T) {
	quest := models.Quest{ID: "q", IsActive: false}
	err := CanComplete(quest, nil, 0, time.Now())
	if !errors.Is(err, models.ErrQuestInactive) {
		t.Fatalf("got %v, want QUEST_INACTIVE", err)
	}
}

func TestCanCompleteNotRepeatable(t *testing.T) {
	quest := models.Quest{ID: "q", IsActive: true, IsRepeatable: false}
	uq := &models.UserQuest{QuestID: "q", Status: models.QuestStatusCompleted, CompletionCount: 1}

	err := CanComplete(quest, uq, 0, time.Now())
	if !errors.Is(err, models.ErrNotRepeatable) {
		t.Fatalf("got %v, want NOT_REPEATABLE", err)
	}
}

func TestCanCompleteDailyLimit(t *testing.T) {
	quest := models.Quest{ID: "q", IsActive: true, IsRepeatable: true, MaxCompletionsPerDay: 3}
	uq := &models.UserQuest{QuestID: "q", Status: models.QuestStatusCompleted}

	if err := CanComplete(quest, uq, 2, time.Now()); err != nil {
		t.Fatalf("under the cap must be allowed, got %v", err)
	}
	err := CanComplete(quest, uq, 3, time.Now())
	if !errors.Is(err, models.ErrDailyLimitReached) {
		t.Fatalf("got %v, want DAILY_LIMIT_REACHED", err)
	}
}

func TestCanCompleteCooldown(t *testing.T) {
	quest := models.Quest{ID: "q", IsActive: true, IsRepeatable: true, CooldownHours: 20}
	now := time.Now()

	last := now.Add(-2 * time.Hour)
	uq := &models.UserQuest{QuestID: "q", Status: models.QuestStatusCompleted, LastCompletedAt: &last}
	err := CanComplete(quest, uq, 0, now)
	if !errors.Is(err, models.ErrOnCooldown) {
		t.Fatalf("got %v, want ON_COOLDOWN", err)
	}

	last = now.Add(-21 * time.Hour)
	if err := CanComplete(quest, uq, 0, now); err != nil {
		t.Fatalf("after cooldown must be allowed, got %v", err)
	}
}

// The four checks run in a fixed order; an inactive quest reports
// QUEST_INACTIVE even when later checks would also fail.
func TestCanCompleteCheckOrder(t *testing.T) {
	now := time.Now()
	last := now.Add(-time.Hour)
	uq := &models.UserQuest{QuestID: "q", Status: models.QuestStatusCompleted, LastCompletedAt: &last}

	quest := models.Quest{ID: "q", IsActive: false, IsRepeatable: false, CooldownHours: 24, MaxCompletionsPerDay: 1}
	if err := CanComplete(quest, uq, 5, now); !errors.Is(err, models.ErrQuestInactive) {
		t.Fatalf("got %v, want QUEST_INACTIVE first", err)
	}

	quest.IsActive = true
	if err := CanComplete(quest, uq, 5, now); !errors.Is(err, models.ErrNotRepeatable) {
		t.Fatalf("got %v, want NOT_REPEATABLE before limit checks", err)
	}

	quest.IsRepeatable = true
	if err := CanComplete(quest, uq, 5, now); !errors.Is(err, models.ErrDailyLimitReached) {
		t.Fatalf("got %v, want DAILY_LIMIT_REACHED before cooldown", err)
	}
}

func TestStartOfUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 02:30 on the 10th in UTC+7 is still the 9th in UTC.
	local := time.Date(2026, 8, 10, 2, 30, 0, 0, loc)
	got := StartOfUTCDay(local)
	want := time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("StartOfUTCDay = %v, want %v", got, want)
	}
}
