package storage

import (
	"context"
	"sync"
	"time"

	"tourism-rewards-system/models"
)

// MemoryStore is a map-backed Store used by tests and by single-node
// deployments that do not need postgres. Entities are copied on the way
// in and out so callers never alias internal state. Atomic snapshots the
// whole dataset and restores it when fn fails, so a failed mutation
// leaves nothing behind.
type MemoryStore struct {
	mu   sync.RWMutex
	data *memData
}

type memData struct {
	users    map[string]*models.UserProfile // by external user id
	quests   map[string]*models.UserQuest   // by user id + "/" + quest id
	vouchers map[string]*models.Voucher     // by voucher id
	ledger   map[string][]*models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData()}
}

func newMemData() *memData {
	return &memData{
		users:    make(map[string]*models.UserProfile),
		quests:   make(map[string]*models.UserQuest),
		vouchers: make(map[string]*models.Voucher),
		ledger:   make(map[string][]*models.Transaction),
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, u := range d.users {
		cp := *u
		c.users[k] = &cp
	}
	for k, q := range d.quests {
		cp := *q
		c.quests[k] = &cp
	}
	for k, v := range d.vouchers {
		cp := *v
		c.vouchers[k] = &cp
	}
	for k, txs := range d.ledger {
		c.ledger[k] = append([]*models.Transaction(nil), txs...)
	}
	return c
}

func questKey(userID, questID string) string { return userID + "/" + questID }

// --- data operations, callers hold the lock ---

func (d *memData) getUser(id string) (*models.UserProfile, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (d *memData) putUser(u *models.UserProfile, create bool) {
	cp := *u
	if create && cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	d.users[u.ExternalUserID] = &cp
}

func (d *memData) getUserQuest(userID, questID string) (*models.UserQuest, error) {
	q, ok := d.quests[questKey(userID, questID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (d *memData) putUserQuest(uq *models.UserQuest) {
	cp := *uq
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	d.quests[questKey(uq.ExternalUserID, uq.QuestID)] = &cp
}

func (d *memData) listUserQuests(userID string) []models.UserQuest {
	var out []models.UserQuest
	for _, q := range d.quests {
		if q.ExternalUserID == userID {
			out = append(out, *q)
		}
	}
	return out
}

func (d *memData) getVoucher(id string) (*models.Voucher, error) {
	v, ok := d.vouchers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (d *memData) putVoucher(v *models.Voucher) {
	cp := *v
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	d.vouchers[v.ID] = &cp
}

func (d *memData) listVouchers(userID string) []models.Voucher {
	var out []models.Voucher
	for _, v := range d.vouchers {
		if v.ExternalUserID == userID {
			out = append(out, *v)
		}
	}
	return out
}

func (d *memData) appendTransaction(tx *models.Transaction) {
	cp := *tx
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	d.ledger[tx.ExternalUserID] = append(d.ledger[tx.ExternalUserID], &cp)
}

func (d *memData) listTransactions(userID string, limit int) []models.Transaction {
	txs := d.ledger[userID]
	var out []models.Transaction
	for i := len(txs) - 1; i >= 0; i-- { // newest first
		out = append(out, *txs[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// --- Store implementation ---

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getUser(id)
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.putUser(u, true)
	return nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, u *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.putUser(u, false)
	return nil
}

func (s *MemoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data.users))
	for id := range s.data.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) GetUserQuest(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getUserQuest(userID, questID)
}

func (s *MemoryStore) SaveUserQuest(ctx context.Context, uq *models.UserQuest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.putUserQuest(uq)
	return nil
}

func (s *MemoryStore) ListUserQuests(ctx context.Context, userID string) ([]models.UserQuest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listUserQuests(userID), nil
}

func (s *MemoryStore) CreateVoucher(ctx context.Context, v *models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.putVoucher(v)
	return nil
}

func (s *MemoryStore) GetVoucher(ctx context.Context, id string) (*models.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.getVoucher(id)
}

func (s *MemoryStore) SaveVoucher(ctx context.Context, v *models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.putVoucher(v)
	return nil
}

func (s *MemoryStore) ListVouchers(ctx context.Context, userID string) ([]models.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listVouchers(userID), nil
}

func (s *MemoryStore) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.appendTransaction(tx)
	return nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listTransactions(userID, limit), nil
}

func (s *MemoryStore) SumXPChanges(ctx context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum int64
	for _, tx := range s.data.ledger[userID] {
		sum += tx.XPChange
	}
	return sum, nil
}

func (s *MemoryStore) CountQuestCompletionsSince(ctx context.Context, userID, questID string, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, tx := range s.data.ledger[userID] {
		if tx.QuestID == questID && tx.ActionType == models.TxActionQuestCompleted && !tx.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// Atomic takes the store-wide write lock for the whole closure, snapshots
// the data, and rolls back to the snapshot if fn fails. Unlike the
// postgres backend, this serializes writers across all users, not just
// per user — fine for tests and single-node use.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(&memTx{data: s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// memTx is the in-transaction view: same data, no locking (the Atomic
// caller already holds the write lock).
type memTx struct {
	data *memData
}

func (t *memTx) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	return t.data.getUser(id)
}

func (t *memTx) CreateUser(ctx context.Context, u *models.UserProfile) error {
	t.data.putUser(u, true)
	return nil
}

func (t *memTx) SaveUser(ctx context.Context, u *models.UserProfile) error {
	t.data.putUser(u, false)
	return nil
}

func (t *memTx) ListUserIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(t.data.users))
	for id := range t.data.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (t *memTx) GetUserQuest(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	return t.data.getUserQuest(userID, questID)
}

func (t *memTx) SaveUserQuest(ctx context.Context, uq *models.UserQuest) error {
	t.data.putUserQuest(uq)
	return nil
}

func (t *memTx) ListUserQuests(ctx context.Context, userID string) ([]models.UserQuest, error) {
	return t.data.listUserQuests(userID), nil
}

func (t *memTx) CreateVoucher(ctx context.Context, v *models.Voucher) error {
	t.data.putVoucher(v)
	return nil
}

func (t *memTx) GetVoucher(ctx context.Context, id string) (*models.Voucher, error) {
	return t.data.getVoucher(id)
}

func (t *memTx) SaveVoucher(ctx context.Context, v *models.Voucher) error {
	t.data.putVoucher(v)
	return nil
}

func (t *memTx) ListVouchers(ctx context.Context, userID string) ([]models.Voucher, error) {
	return t.data.listVouchers(userID), nil
}

func (t *memTx) AppendTransaction(ctx context.Context, tx *models.Transaction) error {
	t.data.appendTransaction(tx)
	return nil
}

func (t *memTx) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	return t.data.listTransactions(userID, limit), nil
}

func (t *memTx) SumXPChanges(ctx context.Context, userID string) (int64, error) {
	var sum int64
	for _, tx := range t.data.ledger[userID] {
		sum += tx.XPChange
	}
	return sum, nil
}

func (t *memTx) CountQuestCompletionsSince(ctx context.Context, userID, questID string, since time.Time) (int64, error) {
	var count int64
	for _, tx := range t.data.ledger[userID] {
		if tx.QuestID == questID && tx.ActionType == models.TxActionQuestCompleted && !tx.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (t *memTx) Atomic(ctx context.Context, fn func(Store) error) error {
	return fn(t) // already inside the outer transaction
}
