package storage

import (
	"context"
	"errors"
	"time"

	"tourism-rewards-system/models"

	"gorm.io/gorm"
)

// GormStore backs the engine with postgres through GORM. Atomic maps onto
// a database transaction, so the orchestrator's multi-write steps commit
// together or not at all.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// AutoMigrate creates or updates the engine's tables.
func (s *GormStore) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.UserProfile{},
		&models.UserQuest{},
		&models.Voucher{},
		&models.Transaction{},
	)
}

func (s *GormStore) GetUser(ctx context.Context, externalUserID string) (*models.UserProfile, error) {
	var user models.UserProfile
	err := s.DB.WithContext(ctx).Where("external_user_id = ?", externalUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.UserProfile) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

func (s *GormStore) SaveUser(ctx context.Context, user *models.UserProfile) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

func (s *GormStore) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).
		Model(&models.UserProfile{}).
		Pluck("external_user_id", &ids).Error
	return ids, err
}

func (s *GormStore) GetUserQuest(ctx context.Context, externalUserID, questID string) (*models.UserQuest, error) {
	var uq models.UserQuest
	err := s.DB.WithContext(ctx).
		Where("external_user_id = ? AND quest_id = ?", externalUserID, questID).
		First(&uq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &uq, nil
}

func (s *GormStore) SaveUserQuest(ctx context.Context, uq *models.UserQuest) error {
	return s.DB.WithContext(ctx).Save(uq).Error
}

func (s *GormStore) ListUserQuests(ctx context.Context, externalUserID string) ([]models.UserQuest, error) {
	var records []models.UserQuest
	err := s.DB.WithContext(ctx).
		Where("external_user_id = ?", externalUserID).
		Order("last_completed_at DESC").
		Find(&records).Error
	return records, err
}

func (s *GormStore) CreateVoucher(ctx context.Context, v *models.Voucher) error {
	return s.DB.WithContext(ctx).Create(v).Error
}

func (s *GormStore) GetVoucher(ctx context.Context, id string) (*models.Voucher, error) {
	var v models.Voucher
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *GormStore) SaveVoucher(ctx context.Context, v *models.Voucher) error {
	return s.DB.WithContext(ctx).Save(v).Error
}

func (s *GormStore) ListVouchers(ctx context.Context, externalUserID string) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	err := s.DB.WithContext(ctx).
		Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Find(&vouchers).Error
	return vouchers, err
}

func (s *GormStore) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	return s.DB.WithContext(ctx).Create(tx).Error
}

func (s *GormStore) ListTransactions(ctx context.Context, externalUserID string, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	q := s.DB.WithContext(ctx).
		Where("external_user_id = ?", externalUserID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&txs).Error
	return txs, err
}

func (s *GormStore) SumXPChanges(ctx context.Context, externalUserID string) (int64, error) {
	var sum int64
	err := s.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("external_user_id = ?", externalUserID).
		Select("COALESCE(SUM(xp_change), 0)").
		Scan(&sum).Error
	return sum, err
}

func (s *GormStore) CountQuestCompletionsSince(ctx context.Context, externalUserID, questID string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("external_user_id = ? AND quest_id = ? AND action_type = ? AND created_at >= ?",
			externalUserID, questID, models.TxActionQuestCompleted, since).
		Count(&count).Error
	return count, err
}

func (s *GormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}
