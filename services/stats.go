package services

import (
	"context"
	"errors"

	"tourism-rewards-system/models"
	"tourism-rewards-system/storage"

	"go.uber.org/zap"
)

// UserStats is the profile-page payload.
type UserStats struct {
	User               *models.UserProfile  `json:"user"`
	CurrentLevel       models.Level         `json:"current_level"`
	NextLevel          *models.Level        `json:"next_level,omitempty"`
	ProgressToNext     float64              `json:"progress_to_next"`
	TotalQuests        int                  `json:"total_quests"`
	CompletedQuests    int                  `json:"completed_quests"`
	AvailableVouchers  []models.Voucher     `json:"available_vouchers"`
	UsedVouchers       []models.Voucher     `json:"used_vouchers"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// Dashboard is the landing-page payload.
type Dashboard struct {
	User               *models.UserProfile `json:"user"`
	CurrentLevel       models.Level        `json:"current_level"`
	NextLevel          *models.Level       `json:"next_level,omitempty"`
	ProgressPercentage float64             `json:"progress_percentage"`
	AvailableQuests    []models.Quest      `json:"available_quests"`
	CompletedQuests    []models.UserQuest  `json:"completed_quests"`
	AvailableVouchers  []models.Voucher    `json:"available_vouchers"`
	Stats              DashboardStats      `json:"stats"`
}

type DashboardStats struct {
	TotalXP         int64 `json:"total_xp"`
	QuestsCompleted int   `json:"quests_completed"`
	VouchersEarned  int   `json:"vouchers_earned"`
	CurrentStreak   int   `json:"current_streak"`
}

const recentTransactionLimit = 10

// levelOf resolves the user's stored level. The stored number is the
// source of truth for display — XP spends can drop TotalXP below the
// level floor without demoting it, so the payload must not re-derive the
// level from XP.
func (s *RewardsService) levelOf(user *models.UserProfile) models.Level {
	if lvl, ok := s.progression.Level(user.CurrentLevel); ok {
		return lvl
	}
	return s.progression.LevelForXP(user.TotalXP)
}

// GetUserStats assembles the profile view. Read-only: no per-user lock,
// just a consistent snapshot per entity. The progression row is created
// on first read for provisioned accounts that have not earned XP yet.
func (s *RewardsService) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	user, err := s.EnsureUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	quests, err := s.store.ListUserQuests(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed := 0
	for i := range quests {
		if quests[i].Status == models.QuestStatusCompleted {
			completed++
		}
	}

	vouchers, err := s.store.ListVouchers(ctx, userID)
	if err != nil {
		return nil, err
	}
	var available, used []models.Voucher
	for i := range vouchers {
		switch {
		case vouchers[i].IsUsed:
			used = append(used, vouchers[i])
		case vouchers[i].Available(now):
			available = append(available, vouchers[i])
		}
	}

	recent, err := s.store.ListTransactions(ctx, userID, recentTransactionLimit)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		User:               user,
		CurrentLevel:       s.levelOf(user),
		NextLevel:          s.progression.NextLevel(user.CurrentLevel),
		ProgressToNext:     s.progression.ProgressToNext(user.CurrentLevel, user.TotalXP),
		TotalQuests:        len(s.catalog),
		CompletedQuests:    completed,
		AvailableVouchers:  available,
		UsedVouchers:       used,
		RecentTransactions: recent,
	}, nil
}

// GetDashboard assembles the landing view, including which quests are
// currently completable and the activity streak from the ledger.
func (s *RewardsService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.EnsureUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	dayStart := StartOfUTCDay(now)

	records, err := s.store.ListUserQuests(ctx, userID)
	if err != nil {
		return nil, err
	}
	byQuest := make(map[string]*models.UserQuest, len(records))
	for i := range records {
		byQuest[records[i].QuestID] = &records[i]
	}

	var availableQuests []models.Quest
	for _, q := range s.catalog {
		if !q.IsActive {
			continue
		}
		completedToday, err := s.store.CountQuestCompletionsSince(ctx, userID, q.ID, dayStart)
		if err != nil {
			return nil, err
		}
		if CanComplete(q, byQuest[q.ID], completedToday, now) == nil {
			availableQuests = append(availableQuests, q)
		}
	}

	vouchers, err := s.store.ListVouchers(ctx, userID)
	if err != nil {
		return nil, err
	}
	var availableVouchers []models.Voucher
	for i := range vouchers {
		if vouchers[i].Available(now) {
			availableVouchers = append(availableVouchers, vouchers[i])
		}
	}

	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	questsCompleted := 0
	for i := range records {
		questsCompleted += records[i].CompletionCount
	}

	return &Dashboard{
		User:               user,
		CurrentLevel:       s.levelOf(user),
		NextLevel:          s.progression.NextLevel(user.CurrentLevel),
		ProgressPercentage: s.progression.ProgressToNext(user.CurrentLevel, user.TotalXP),
		AvailableQuests:    availableQuests,
		CompletedQuests:    records,
		AvailableVouchers:  availableVouchers,
		Stats: DashboardStats{
			TotalXP:         user.TotalXP,
			QuestsCompleted: questsCompleted,
			VouchersEarned:  len(vouchers),
			CurrentStreak:   CurrentStreak(txs, now),
		},
	}, nil
}

// ListVouchers returns all of the user's vouchers, newest first,
// including used and expired ones.
func (s *RewardsService) ListVouchers(ctx context.Context, userID string) ([]models.Voucher, error) {
	if _, err := s.getUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	return s.vouchers.List(ctx, userID)
}

// GetTransactions returns the user's recent ledger entries, newest first.
func (s *RewardsService) GetTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if _, err := s.getUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, userID, limit)
}

// AuditUser checks the ledger-sum invariant for one user:
// TotalXP == max(sum(xp_change), 0).
func (s *RewardsService) AuditUser(ctx context.Context, userID string) error {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	sum, err := s.store.SumXPChanges(ctx, userID)
	if err != nil {
		return err
	}
	expected := sum
	if expected < 0 {
		expected = 0
	}
	if user.TotalXP != expected {
		return &LedgerMismatchError{UserID: userID, TotalXP: user.TotalXP, LedgerSum: sum}
	}
	return nil
}

// AuditLedger runs AuditUser across every user and returns the ids that
// fail the invariant. Mismatches are logged; storage errors abort.
func (s *RewardsService) AuditLedger(ctx context.Context) ([]string, error) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	var mismatched []string
	for _, id := range ids {
		err := s.AuditUser(ctx, id)
		var mismatch *LedgerMismatchError
		if errors.As(err, &mismatch) {
			s.log.Error("ledger invariant violated",
				zap.String("user_id", id),
				zap.Int64("total_xp", mismatch.TotalXP),
				zap.Int64("ledger_sum", mismatch.LedgerSum))
			mismatched = append(mismatched, id)
			continue
		}
		if err != nil {
			return mismatched, err
		}
	}
	return mismatched, nil
}

// LedgerMismatchError reports a user whose cached XP disagrees with the
// ledger sum.
type LedgerMismatchError struct {
	UserID    string
	TotalXP   int64
	LedgerSum int64
}

func (e *LedgerMismatchError) Error() string {
	return "ledger sum mismatch for user " + e.UserID
}
