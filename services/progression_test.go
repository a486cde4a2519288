package services

import (
	"testing"
	"time"

	"tourism-rewards-system/models"
)

func newTestEngine(t *testing.T) *ProgressionEngine {
	t.Helper()
	engine, err := NewProgressionEngine(models.DefaultLevelTable)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestLevelForXPTotalAndMonotonic(t *testing.T) {
	engine := newTestEngine(t)

	prev := 0
	for xp := int64(0); xp <= 20000; xp += 37 {
		lvl := engine.LevelForXP(xp)
		if !lvl.Contains(xp) {
			t.Fatalf("level %d does not contain xp %d", lvl.Level, xp)
		}
		if lvl.Level < prev {
			t.Fatalf("level decreased from %d to %d at xp %d", prev, lvl.Level, xp)
		}
		prev = lvl.Level
	}
}

func TestLevelForXPBoundaries(t *testing.T) {
	engine := newTestEngine(t)

	cases := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{499, 1},
		{500, 2}, // half-open ranges: boundary belongs to the next level
		{1499, 2},
		{1500, 3},
		{9999, 4},
		{10000, 5},
		{1 << 40, 5},
		{-5, 1}, // defensive: negative clamps to the bottom level
	}
	for _, tc := range cases {
		if got := engine.LevelForXP(tc.xp); got.Level != tc.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tc.xp, got.Level, tc.want)
		}
	}
}

func TestApplyXPDeltaClampsAtZero(t *testing.T) {
	engine := newTestEngine(t)
	user := &models.UserProfile{ExternalUserID: "u1", TotalXP: 100, CurrentLevel: 1}

	leveledUp, _ := engine.ApplyXPDelta(user, -500, time.Now())
	if leveledUp {
		t.Fatal("losing XP must not level up")
	}
	if user.TotalXP != 0 {
		t.Fatalf("TotalXP = %d, want 0 (excess penalty absorbed)", user.TotalXP)
	}
}

func TestApplyXPDeltaLevelUp(t *testing.T) {
	engine := newTestEngine(t)
	now := time.Now()
	user := &models.UserProfile{ExternalUserID: "u1", TotalXP: 450, CurrentLevel: 1}

	leveledUp, newLevel := engine.ApplyXPDelta(user, 100, now)
	if !leveledUp {
		t.Fatal("expected level up crossing 500")
	}
	if newLevel == nil || newLevel.Level != 2 {
		t.Fatalf("newLevel = %+v, want level 2", newLevel)
	}
	if user.CurrentLevel != 2 || user.TotalXP != 550 {
		t.Fatalf("user = level %d xp %d, want level 2 xp 550", user.CurrentLevel, user.TotalXP)
	}
	if user.LastLevelUpAt == nil || !user.LastLevelUpAt.Equal(now) {
		t.Fatal("LastLevelUpAt not stamped")
	}
}

func TestApplyXPDeltaNeverLevelsDown(t *testing.T) {
	engine := newTestEngine(t)
	user := &models.UserProfile{ExternalUserID: "u1", TotalXP: 600, CurrentLevel: 2}

	leveledUp, _ := engine.ApplyXPDelta(user, -400, time.Now())
	if leveledUp {
		t.Fatal("unexpected level up")
	}
	if user.TotalXP != 200 {
		t.Fatalf("TotalXP = %d, want 200", user.TotalXP)
	}
	if user.CurrentLevel != 2 {
		t.Fatalf("CurrentLevel = %d, want 2 (no level-down)", user.CurrentLevel)
	}
}

func TestProgressToNext(t *testing.T) {
	engine := newTestEngine(t)

	if got := engine.ProgressToNext(1, 250); got != 50 {
		t.Errorf("ProgressToNext(1, 250) = %v, want 50", got)
	}
	if got := engine.ProgressToNext(1, 0); got != 0 {
		t.Errorf("ProgressToNext(1, 0) = %v, want 0", got)
	}
	if got := engine.ProgressToNext(5, 50000); got != 100 {
		t.Errorf("ProgressToNext at top level = %v, want 100", got)
	}
	// XP spent below the level floor clamps to 0, not negative.
	if got := engine.ProgressToNext(2, 100); got != 0 {
		t.Errorf("ProgressToNext(2, 100) = %v, want 0", got)
	}
}

func TestLevelTableValidation(t *testing.T) {
	bad := []struct {
		name  string
		table models.LevelTable
	}{
		{"empty", models.LevelTable{}},
		{"not starting at zero", models.LevelTable{
			{Level: 1, MinXP: 100, MaxXP: models.UnboundedXP},
		}},
		{"gap", models.LevelTable{
			{Level: 1, MinXP: 0, MaxXP: 100},
			{Level: 2, MinXP: 200, MaxXP: models.UnboundedXP},
		}},
		{"bounded top", models.LevelTable{
			{Level: 1, MinXP: 0, MaxXP: 100},
			{Level: 2, MinXP: 100, MaxXP: 200},
		}},
		{"unordered levels", models.LevelTable{
			{Level: 2, MinXP: 0, MaxXP: 100},
			{Level: 1, MinXP: 100, MaxXP: models.UnboundedXP},
		}},
	}
	for _, tc := range bad {
		if _, err := NewProgressionEngine(tc.table); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	if err := models.DefaultLevelTable.Validate(); err != nil {
		t.Fatalf("default table must validate: %v", err)
	}
}
