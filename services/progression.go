package services

import (
	"fmt"
	"time"

	"tourism-rewards-system/models"
)

// ProgressionEngine owns the level math. It is stateless beyond the
// validated level table, so all methods are safe for concurrent use.
type ProgressionEngine struct {
	levels models.LevelTable
}

func NewProgressionEngine(levels models.LevelTable) (*ProgressionEngine, error) {
	if err := levels.Validate(); err != nil {
		return nil, fmt.Errorf("level table: %w", err)
	}
	return &ProgressionEngine{levels: levels}, nil
}

// LevelForXP returns the highest level whose MinXP <= xp. Total over
// xp >= 0 because the table is contiguous from 0 with an unbounded top.
func (e *ProgressionEngine) LevelForXP(xp int64) models.Level {
	if xp < 0 {
		xp = 0
	}
	for i := len(e.levels) - 1; i >= 0; i-- {
		if e.levels[i].MinXP <= xp {
			return e.levels[i]
		}
	}
	return e.levels[0]
}

// Level returns the table entry for a level number.
func (e *ProgressionEngine) Level(n int) (models.Level, bool) {
	for _, l := range e.levels {
		if l.Level == n {
			return l, true
		}
	}
	return models.Level{}, false
}

// NextLevel returns the level after n, or nil at the top of the ladder.
func (e *ProgressionEngine) NextLevel(n int) *models.Level {
	for i, l := range e.levels {
		if l.Level == n && i+1 < len(e.levels) {
			next := e.levels[i+1]
			return &next
		}
	}
	return nil
}

// ProgressToNext is the percentage of level n's range covered by xp,
// clamped to [0, 100]: spending XP can leave xp below the level's floor
// without demoting it, and that reads as 0% progress. 100 at the
// unbounded top level.
func (e *ProgressionEngine) ProgressToNext(n int, xp int64) float64 {
	cur, ok := e.Level(n)
	if !ok {
		return 0
	}
	if cur.Unbounded() || xp >= cur.MaxXP {
		return 100
	}
	if xp < cur.MinXP {
		return 0
	}
	span := cur.MaxXP - cur.MinXP
	return float64(xp-cur.MinXP) / float64(span) * 100
}

// ApplyXPDelta adds delta to the user's XP, clamping at 0 — excess
// penalty is absorbed, never carried as debt. The level is recomputed and
// only upward crossings are reported; XP loss never demotes a level (the
// one-directional policy — exchanges spend XP without touching rank).
func (e *ProgressionEngine) ApplyXPDelta(user *models.UserProfile, delta int64, now time.Time) (leveledUp bool, newLevel *models.Level) {
	next := user.TotalXP + delta
	if next < 0 {
		next = 0
	}
	user.TotalXP = next

	lvl := e.LevelForXP(next)
	if lvl.Level > user.CurrentLevel {
		user.CurrentLevel = lvl.Level
		user.LastLevelUpAt = &now
		return true, &lvl
	}
	return false, nil
}
