package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tourism-rewards-system/models"
	"tourism-rewards-system/storage"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// RewardsService is the orchestrator tying the quest catalog, anti-spam
// guard, progression engine, voucher store, and ledger into atomic
// operations. Mutations on one user are serialized by a keyed mutex;
// different users never contend. Every mutation runs inside a storage
// Atomic so the XP write, quest record, voucher, and ledger entry commit
// together or not at all.
type RewardsService struct {
	store       storage.Store
	progression *ProgressionEngine
	vouchers    *VoucherService
	catalog     models.QuestCatalog
	rates       models.ExchangeRateTable
	log         *zap.Logger

	locks sync.Map // external user id -> *sync.Mutex
	now   func() time.Time
}

func NewRewardsService(store storage.Store, progression *ProgressionEngine, vouchers *VoucherService, catalog models.QuestCatalog, rates models.ExchangeRateTable, log *zap.Logger) (*RewardsService, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("quest catalog: %w", err)
	}
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("exchange rates: %w", err)
	}
	return &RewardsService{
		store:       store,
		progression: progression,
		vouchers:    vouchers,
		catalog:     catalog,
		rates:       rates,
		log:         log,
		now:         time.Now,
	}, nil
}

// Catalog exposes the quest configuration for read-only consumers.
func (s *RewardsService) Catalog() models.QuestCatalog { return s.catalog }

// Rates exposes the exchange table for read-only consumers.
func (s *RewardsService) Rates() models.ExchangeRateTable { return s.rates }

func (s *RewardsService) userLock(userID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// CompletionResult is the payload of a successful quest completion.
type CompletionResult struct {
	XPEarned      int64           `json:"xp_earned"`
	LeveledUp     bool            `json:"leveled_up"`
	NewLevel      *models.Level   `json:"new_level,omitempty"`
	VoucherEarned *models.Voucher `json:"voucher_earned,omitempty"`
	TotalXP       int64           `json:"total_xp"`
}

// CompleteQuest applies one quest completion: eligibility, XP, level-up
// voucher, quest record, ledger — all under the user's lock, all atomic.
func (s *RewardsService) CompleteQuest(ctx context.Context, userID, questID string, metadata map[string]string) (*CompletionResult, error) {
	quest, ok := s.catalog.Find(questID)
	if !ok {
		return nil, models.ErrQuestNotFound
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	var result *CompletionResult

	err := s.store.Atomic(ctx, func(st storage.Store) error {
		user, err := s.getUser(ctx, st, userID)
		if err != nil {
			return err
		}

		uq, err := st.GetUserQuest(ctx, userID, questID)
		if errors.Is(err, storage.ErrNotFound) {
			uq = nil
		} else if err != nil {
			return err
		}

		completedToday, err := st.CountQuestCompletionsSince(ctx, userID, questID, StartOfUTCDay(now))
		if err != nil {
			return err
		}
		if err := CanComplete(quest, uq, completedToday, now); err != nil {
			return err
		}

		leveledUp, newLevel := s.progression.ApplyXPDelta(user, quest.XPReward, now)
		user.LastActivityAt = &now
		if err := st.SaveUser(ctx, user); err != nil {
			return err
		}

		var voucher *models.Voucher
		if leveledUp && newLevel.LevelUpVoucher != nil {
			voucher, err = s.vouchers.Issue(ctx, st, userID, *newLevel.LevelUpVoucher,
				models.VoucherSourceLevelUp, fmt.Sprintf("level_%d", newLevel.Level), now)
			if err != nil {
				return err
			}
		}

		if uq == nil {
			uq = &models.UserQuest{
				ID:             uuid.NewString(),
				ExternalUserID: userID,
				QuestID:        questID,
			}
		}
		uq.Status = models.QuestStatusCompleted
		uq.CompletionCount++
		uq.XPEarned += quest.XPReward
		uq.LastCompletedAt = &now
		if err := st.SaveUserQuest(ctx, uq); err != nil {
			return err
		}

		if err := st.AppendTransaction(ctx, &models.Transaction{
			ID:             ksuid.New().String(),
			ExternalUserID: userID,
			ActionType:     models.TxActionQuestCompleted,
			XPChange:       quest.XPReward,
			QuestID:        questID,
			Description:    fmt.Sprintf("Completed quest: %s", quest.Title),
			Metadata:       encodeMetadata(metadata),
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		if leveledUp {
			levelTx := &models.Transaction{
				ID:             ksuid.New().String(),
				ExternalUserID: userID,
				ActionType:     models.TxActionLevelUp,
				XPChange:       0,
				Description:    fmt.Sprintf("Reached level %d (%s)", newLevel.Level, newLevel.Name),
				CreatedAt:      now,
			}
			if voucher != nil {
				levelTx.VoucherID = voucher.ID
			}
			if err := st.AppendTransaction(ctx, levelTx); err != nil {
				return err
			}
		}

		result = &CompletionResult{
			XPEarned:      quest.XPReward,
			LeveledUp:     leveledUp,
			NewLevel:      newLevel,
			VoucherEarned: voucher,
			TotalXP:       user.TotalXP,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quest completed",
		zap.String("user_id", userID),
		zap.String("quest_id", questID),
		zap.Int64("xp_earned", result.XPEarned),
		zap.Bool("leveled_up", result.LeveledUp))
	return result, nil
}

// ExchangeResult is the payload of a successful XP exchange.
type ExchangeResult struct {
	Voucher *models.Voucher `json:"voucher"`
	TotalXP int64           `json:"total_xp"`
}

// ExchangeXPForVoucher spends XP on a voucher from the rate table.
// Insufficiency is strictly totalXP < xpCost: an exact-cost exchange
// succeeds and leaves the user at 0. Spending XP never demotes a level.
func (s *RewardsService) ExchangeXPForVoucher(ctx context.Context, userID string, rateIndex int) (*ExchangeResult, error) {
	if rateIndex < 0 || rateIndex >= len(s.rates) {
		return nil, models.ErrInvalidExchangeRate
	}
	rate := s.rates[rateIndex]

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	var result *ExchangeResult

	err := s.store.Atomic(ctx, func(st storage.Store) error {
		user, err := s.getUser(ctx, st, userID)
		if err != nil {
			return err
		}
		if user.TotalXP < rate.XPCost {
			return models.ErrInsufficientXP
		}

		s.progression.ApplyXPDelta(user, -rate.XPCost, now)
		user.LastActivityAt = &now
		if err := st.SaveUser(ctx, user); err != nil {
			return err
		}

		voucher, err := s.vouchers.Issue(ctx, st, userID, rate.Template(),
			models.VoucherSourceXPExchange, fmt.Sprintf("rate_%d", rateIndex), now)
		if err != nil {
			return err
		}

		if err := st.AppendTransaction(ctx, &models.Transaction{
			ID:             ksuid.New().String(),
			ExternalUserID: userID,
			ActionType:     models.TxActionXPExchange,
			XPChange:       -rate.XPCost,
			VoucherID:      voucher.ID,
			Description:    fmt.Sprintf("Exchanged %d XP for %d%% off at %s", rate.XPCost, rate.DiscountPercentage, rate.Partner),
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		result = &ExchangeResult{Voucher: voucher, TotalXP: user.TotalXP}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("xp exchanged",
		zap.String("user_id", userID),
		zap.Int("rate_index", rateIndex),
		zap.Int64("xp_cost", rate.XPCost))
	return result, nil
}

// RedeemVoucher marks a voucher used. Not idempotent: the second call on
// the same voucher fails VOUCHER_ALREADY_USED.
func (s *RewardsService) RedeemVoucher(ctx context.Context, userID, voucherID string) (*models.Voucher, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	var redeemed *models.Voucher
	err := s.store.Atomic(ctx, func(st storage.Store) error {
		v, err := s.vouchers.redeem(ctx, st, userID, voucherID, now)
		if err != nil {
			return err
		}
		redeemed = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("voucher redeemed",
		zap.String("user_id", userID),
		zap.String("voucher_id", voucherID))
	return redeemed, nil
}

// GrantXP is the admin path: a positive XP award outside the catalog.
// It goes through the same level-up and voucher machinery as quests.
func (s *RewardsService) GrantXP(ctx context.Context, userID string, xp int64, reason string) (*models.UserProfile, error) {
	if xp <= 0 {
		return nil, models.ErrInvalidGrant
	}

	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	var granted *models.UserProfile

	err := s.store.Atomic(ctx, func(st storage.Store) error {
		user, err := s.getUser(ctx, st, userID)
		if err != nil {
			return err
		}

		leveledUp, newLevel := s.progression.ApplyXPDelta(user, xp, now)
		user.LastActivityAt = &now
		if err := st.SaveUser(ctx, user); err != nil {
			return err
		}

		var voucher *models.Voucher
		if leveledUp && newLevel.LevelUpVoucher != nil {
			voucher, err = s.vouchers.Issue(ctx, st, userID, *newLevel.LevelUpVoucher,
				models.VoucherSourceLevelUp, fmt.Sprintf("level_%d", newLevel.Level), now)
			if err != nil {
				return err
			}
		}

		if err := st.AppendTransaction(ctx, &models.Transaction{
			ID:             ksuid.New().String(),
			ExternalUserID: userID,
			ActionType:     models.TxActionAdminGrant,
			XPChange:       xp,
			Description:    fmt.Sprintf("Admin grant: %s", reason),
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		if leveledUp {
			levelTx := &models.Transaction{
				ID:             ksuid.New().String(),
				ExternalUserID: userID,
				ActionType:     models.TxActionLevelUp,
				XPChange:       0,
				Description:    fmt.Sprintf("Reached level %d (%s)", newLevel.Level, newLevel.Name),
				CreatedAt:      now,
			}
			if voucher != nil {
				levelTx.VoucherID = voucher.ID
			}
			if err := st.AppendTransaction(ctx, levelTx); err != nil {
				return err
			}
		}

		granted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}

// ResetXP zeroes a user's XP for a serious violation. The ledger entry
// records the true negative delta so the audit sum stays exact; the level
// is deliberately left where it was (no level-down policy).
func (s *RewardsService) ResetXP(ctx context.Context, userID, reason string) (*models.UserProfile, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	var reset *models.UserProfile

	err := s.store.Atomic(ctx, func(st storage.Store) error {
		user, err := s.getUser(ctx, st, userID)
		if err != nil {
			return err
		}

		delta := -user.TotalXP
		user.TotalXP = 0
		user.LastActivityAt = &now
		if err := st.SaveUser(ctx, user); err != nil {
			return err
		}

		if err := st.AppendTransaction(ctx, &models.Transaction{
			ID:             ksuid.New().String(),
			ExternalUserID: userID,
			ActionType:     models.TxActionXPReset,
			XPChange:       delta,
			Description:    fmt.Sprintf("XP reset: %s", reason),
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		reset = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Warn("xp reset",
		zap.String("user_id", userID),
		zap.String("reason", reason))
	return reset, nil
}

// EnsureUser creates the progression row for a provisioned account if it
// does not exist yet. Idempotent.
func (s *RewardsService) EnsureUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	user = &models.UserProfile{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		TotalXP:        0,
		CurrentLevel:   1,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *RewardsService) getUser(ctx context.Context, st storage.Store, userID string) (*models.UserProfile, error) {
	user, err := st.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, models.ErrUserNotFound
	}
	return user, err
}

func encodeMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return ""
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(raw)
}
