package models

import "fmt"

// Quest is a catalog entry for a completable action. Requirements are
// opaque descriptors verified upstream (GPS proximity, uploaded photo,
// social post); the engine only enforces repeatability, cooldown, and the
// daily cap.
type Quest struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	ActionType           string   `json:"action_type"`
	XPReward             int64    `json:"xp_reward"`
	IsActive             bool     `json:"is_active"`
	IsRepeatable         bool     `json:"is_repeatable"`
	CooldownHours        int      `json:"cooldown_hours,omitempty"`          // 0 = no cooldown
	MaxCompletionsPerDay int      `json:"max_completions_per_day,omitempty"` // 0 = no cap
	Requirements         []string `json:"requirements,omitempty"`
}

// QuestCatalog is the administered quest configuration.
type QuestCatalog []Quest

// Find returns the quest with the given id.
func (c QuestCatalog) Find(id string) (Quest, bool) {
	for _, q := range c {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}

// Validate rejects malformed catalogs. Negative rewards and duplicate ids
// are config errors, fatal at startup.
func (c QuestCatalog) Validate() error {
	seen := make(map[string]bool, len(c))
	for _, q := range c {
		if q.ID == "" {
			return fmt.Errorf("quest %q has no id", q.Title)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate quest id %q", q.ID)
		}
		seen[q.ID] = true
		if q.XPReward < 0 {
			return fmt.Errorf("quest %q has negative xp reward %d", q.ID, q.XPReward)
		}
		if q.CooldownHours < 0 || q.MaxCompletionsPerDay < 0 {
			return fmt.Errorf("quest %q has negative limits", q.ID)
		}
	}
	return nil
}

// DefaultQuestCatalog ships the launch quest set.
var DefaultQuestCatalog = QuestCatalog{
	{
		ID:           "visit-old-town",
		Title:        "Visit the Old Town",
		ActionType:   "checkin",
		XPReward:     100,
		IsActive:     true,
		IsRepeatable: false,
		Requirements: []string{"gps_proximity:old-town"},
	},
	{
		ID:                   "daily-checkin",
		Title:                "Daily Check-in",
		ActionType:           "checkin",
		XPReward:             25,
		IsActive:             true,
		IsRepeatable:         true,
		CooldownHours:        20,
		MaxCompletionsPerDay: 1,
	},
	{
		ID:                   "share-photo",
		Title:                "Share a Trip Photo",
		ActionType:           "social_post",
		XPReward:             50,
		IsActive:             true,
		IsRepeatable:         true,
		MaxCompletionsPerDay: 3,
		Requirements:         []string{"photo_upload"},
	},
	{
		ID:           "book-partner-stay",
		Title:        "Book a Partner Stay",
		ActionType:   "booking",
		XPReward:     500,
		IsActive:     true,
		IsRepeatable: true,
		Requirements: []string{"booking_confirmed"},
	},
	{
		ID:            "write-review",
		Title:         "Write a Destination Review",
		ActionType:    "review",
		XPReward:      75,
		IsActive:      true,
		IsRepeatable:  true,
		CooldownHours: 24,
	},
	{
		ID:           "legacy-ferry-tour",
		Title:        "Harbor Ferry Tour",
		ActionType:   "checkin",
		XPReward:     150,
		IsActive:     false, // route suspended off-season
		IsRepeatable: false,
		Requirements: []string{"gps_proximity:harbor"},
	},
}
