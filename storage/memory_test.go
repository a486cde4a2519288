package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourism-rewards-system/models"
)

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := store.GetVoucher(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if _, err := store.GetUserQuest(ctx, "u", "q"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCopySemantics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.CreateUser(ctx, &models.UserProfile{ExternalUserID: "u1", TotalXP: 10, CurrentLevel: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.TotalXP = 9999 // mutating the returned copy must not leak in

	again, err := store.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.TotalXP != 10 {
		t.Fatalf("TotalXP = %d, stored state was mutated through a read", again.TotalXP)
	}
}

func TestMemoryStoreAtomicRollback(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.CreateUser(ctx, &models.UserProfile{ExternalUserID: "u1", TotalXP: 100, CurrentLevel: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err := store.Atomic(ctx, func(st Store) error {
		user, err := st.GetUser(ctx, "u1")
		if err != nil {
			return err
		}
		user.TotalXP = 500
		if err := st.SaveUser(ctx, user); err != nil {
			return err
		}
		if err := st.AppendTransaction(ctx, &models.Transaction{
			ID:             "t1",
			ExternalUserID: "u1",
			ActionType:     models.TxActionAdminGrant,
			XPChange:       400,
		}); err != nil {
			return err
		}
		if err := st.CreateVoucher(ctx, &models.Voucher{ID: "v1", Code: "C", ExternalUserID: "u1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want the closure's error", err)
	}

	user, err := store.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.TotalXP != 100 {
		t.Fatalf("TotalXP = %d after rollback, want 100", user.TotalXP)
	}
	txs, _ := store.ListTransactions(ctx, "u1", 0)
	if len(txs) != 0 {
		t.Fatalf("ledger = %d entries after rollback, want 0", len(txs))
	}
	if _, err := store.GetVoucher(ctx, "v1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("voucher survived rollback: %v", err)
	}
}

func TestMemoryStoreAtomicCommit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Atomic(ctx, func(st Store) error {
		if err := st.CreateUser(ctx, &models.UserProfile{ExternalUserID: "u1", TotalXP: 50, CurrentLevel: 1}); err != nil {
			return err
		}
		return st.AppendTransaction(ctx, &models.Transaction{
			ID:             "t1",
			ExternalUserID: "u1",
			ActionType:     models.TxActionAdminGrant,
			XPChange:       50,
		})
	})
	if err != nil {
		t.Fatalf("atomic: %v", err)
	}

	sum, err := store.SumXPChanges(ctx, "u1")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 50 {
		t.Fatalf("sum = %d, want 50", sum)
	}
}

func TestCountQuestCompletionsSince(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	entries := []models.Transaction{
		{ID: "a", ExternalUserID: "u1", QuestID: "q1", ActionType: models.TxActionQuestCompleted, XPChange: 10, CreatedAt: base.Add(-2 * time.Hour)},
		{ID: "b", ExternalUserID: "u1", QuestID: "q1", ActionType: models.TxActionQuestCompleted, XPChange: 10, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "c", ExternalUserID: "u1", QuestID: "q1", ActionType: models.TxActionQuestCompleted, XPChange: 10, CreatedAt: base.Add(5 * time.Hour)},
		{ID: "d", ExternalUserID: "u1", QuestID: "q2", ActionType: models.TxActionQuestCompleted, XPChange: 10, CreatedAt: base.Add(5 * time.Hour)},
		{ID: "e", ExternalUserID: "u1", QuestID: "q1", ActionType: models.TxActionLevelUp, XPChange: 0, CreatedAt: base.Add(5 * time.Hour)},
	}
	for i := range entries {
		if err := store.AppendTransaction(ctx, &entries[i]); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	count, err := store.CountQuestCompletionsSince(ctx, "u1", "q1", base)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 (same quest, same day, completions only)", count)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i, id := range []string{"t1", "t2", "t3"} {
		if err := store.AppendTransaction(ctx, &models.Transaction{
			ID:             id,
			ExternalUserID: "u1",
			ActionType:     models.TxActionQuestCompleted,
			XPChange:       int64(i + 1),
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	txs, err := store.ListTransactions(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "t3" || txs[1].ID != "t2" {
		t.Fatalf("txs = %+v, want newest first with limit", txs)
	}
}
