// Package storage defines the repository boundary of the rewards engine.
// The engine only ever talks to Store, so the in-memory backend used in
// tests and the postgres backend used in production are interchangeable.
package storage

import (
	"context"
	"errors"
	"time"

	"tourism-rewards-system/models"
)

// ErrNotFound is returned when a looked-up entity does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store is the persistence contract for users, quest records, vouchers,
// and the ledger. Transactions are append-only: there is no update or
// delete for them. Atomic runs fn against a transactional view; if fn
// returns an error every write made inside it is rolled back.
type Store interface {
	GetUser(ctx context.Context, externalUserID string) (*models.UserProfile, error)
	CreateUser(ctx context.Context, user *models.UserProfile) error
	SaveUser(ctx context.Context, user *models.UserProfile) error
	ListUserIDs(ctx context.Context) ([]string, error)

	GetUserQuest(ctx context.Context, externalUserID, questID string) (*models.UserQuest, error)
	SaveUserQuest(ctx context.Context, uq *models.UserQuest) error
	ListUserQuests(ctx context.Context, externalUserID string) ([]models.UserQuest, error)

	CreateVoucher(ctx context.Context, v *models.Voucher) error
	GetVoucher(ctx context.Context, id string) (*models.Voucher, error)
	SaveVoucher(ctx context.Context, v *models.Voucher) error
	ListVouchers(ctx context.Context, externalUserID string) ([]models.Voucher, error)

	AppendTransaction(ctx context.Context, tx *models.Transaction) error
	// ListTransactions returns the newest entries first; limit <= 0 means all.
	ListTransactions(ctx context.Context, externalUserID string, limit int) ([]models.Transaction, error)
	SumXPChanges(ctx context.Context, externalUserID string) (int64, error)
	CountQuestCompletionsSince(ctx context.Context, externalUserID, questID string, since time.Time) (int64, error)

	Atomic(ctx context.Context, fn func(Store) error) error
}
