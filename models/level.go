package models

import "fmt"

// UnboundedXP marks the top level's open upper range.
const UnboundedXP int64 = -1

// VoucherTemplate describes the voucher minted when a user crosses into a
// level that carries one.
type VoucherTemplate struct {
	DiscountPercentage int         `json:"discount_percentage"`
	ExpiryDays         int         `json:"expiry_days"`
	Partner            string      `json:"partner"`
	Type               VoucherType `json:"type"`
}

// Level is one row of the static level table. Ranges are half-open
// [MinXP, MaxXP); the last level has MaxXP = UnboundedXP.
type Level struct {
	Level          int              `json:"level"`
	Name           string           `json:"name"`
	MinXP          int64            `json:"min_xp"`
	MaxXP          int64            `json:"max_xp"`
	Benefits       []string         `json:"benefits"`
	Badge          string           `json:"badge"`
	LevelUpVoucher *VoucherTemplate `json:"level_up_voucher,omitempty"`
}

// Unbounded reports whether the level has no upper XP bound.
func (l Level) Unbounded() bool {
	return l.MaxXP == UnboundedXP
}

// Contains reports whether xp falls inside the level's range.
func (l Level) Contains(xp int64) bool {
	return xp >= l.MinXP && (l.Unbounded() || xp < l.MaxXP)
}

// LevelTable is an ordered, contiguous set of levels covering all xp >= 0.
type LevelTable []Level

// Validate rejects tables with gaps, overlaps, or a bounded top level.
// A broken table is a deployment error, so callers treat this as fatal.
func (t LevelTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("level table is empty")
	}
	if t[0].MinXP != 0 {
		return fmt.Errorf("level table must start at 0 XP, got %d", t[0].MinXP)
	}
	for i, l := range t {
		last := i == len(t)-1
		if last {
			if !l.Unbounded() {
				return fmt.Errorf("top level %d must be unbounded", l.Level)
			}
			break
		}
		if l.Unbounded() {
			return fmt.Errorf("level %d is unbounded but not the top level", l.Level)
		}
		if l.MaxXP <= l.MinXP {
			return fmt.Errorf("level %d has empty range [%d, %d)", l.Level, l.MinXP, l.MaxXP)
		}
		next := t[i+1]
		if next.MinXP != l.MaxXP {
			return fmt.Errorf("gap between level %d (max %d) and level %d (min %d)",
				l.Level, l.MaxXP, next.Level, next.MinXP)
		}
		if next.Level <= l.Level {
			return fmt.Errorf("level numbers must increase: %d then %d", l.Level, next.Level)
		}
		tpl := l.LevelUpVoucher
		if tpl != nil && (tpl.DiscountPercentage <= 0 || tpl.ExpiryDays <= 0) {
			return fmt.Errorf("level %d has an invalid voucher template", l.Level)
		}
	}
	return nil
}

// DefaultLevelTable is the shipped tourism progression ladder.
var DefaultLevelTable = LevelTable{
	{
		Level:    1,
		Name:     "Wanderer",
		MinXP:    0,
		MaxXP:    500,
		Benefits: []string{"Monthly newsletter"},
		Badge:    "wanderer",
	},
	{
		Level:    2,
		Name:     "Explorer",
		MinXP:    500,
		MaxXP:    1500,
		Benefits: []string{"Early access to seasonal deals"},
		Badge:    "explorer",
		LevelUpVoucher: &VoucherTemplate{
			DiscountPercentage: 5,
			ExpiryDays:         30,
			Partner:            "Island Hopper Tours",
			Type:               VoucherTypeDiscount,
		},
	},
	{
		Level:    3,
		Name:     "Adventurer",
		MinXP:    1500,
		MaxXP:    4000,
		Benefits: []string{"Priority booking", "Partner lounge access"},
		Badge:    "adventurer",
		LevelUpVoucher: &VoucherTemplate{
			DiscountPercentage: 10,
			ExpiryDays:         45,
			Partner:            "Summit Trek Co",
			Type:               VoucherTypeDiscount,
		},
	},
	{
		Level:    4,
		Name:     "Globetrotter",
		MinXP:    4000,
		MaxXP:    10000,
		Benefits: []string{"Free airport transfer", "Dedicated concierge"},
		Badge:    "globetrotter",
		LevelUpVoucher: &VoucherTemplate{
			DiscountPercentage: 15,
			ExpiryDays:         60,
			Partner:            "Coastline Resorts",
			Type:               VoucherTypeExperience,
		},
	},
	{
		Level:    5,
		Name:     "Legend",
		MinXP:    10000,
		MaxXP:    UnboundedXP,
		Benefits: []string{"Annual partner getaway draw", "Lifetime discounts"},
		Badge:    "legend",
		LevelUpVoucher: &VoucherTemplate{
			DiscountPercentage: 25,
			ExpiryDays:         90,
			Partner:            "Grand Heritage Hotels",
			Type:               VoucherTypeExperience,
		},
	},
}
