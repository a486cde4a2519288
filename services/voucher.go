package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourism-rewards-system/models"
	"tourism-rewards-system/storage"
	"tourism-rewards-system/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// VoucherService issues, looks up, and redeems partner vouchers. Vouchers
// are never deleted; expiry is computed from ExpiryDate at read time.
type VoucherService struct {
	store storage.Store
	log   *zap.Logger
}

func NewVoucherService(store storage.Store, log *zap.Logger) *VoucherService {
	return &VoucherService{store: store, log: log}
}

// Issue mints a voucher for the user through st, which may be a
// transactional view when called from inside an orchestrator write.
func (s *VoucherService) Issue(ctx context.Context, st storage.Store, userID string, tpl models.VoucherTemplate, source models.VoucherSource, sourceID string, now time.Time) (*models.Voucher, error) {
	code, err := voucherCode(tpl.Partner)
	if err != nil {
		return nil, err
	}
	v := &models.Voucher{
		ID:                 uuid.NewString(),
		Code:               code,
		ExternalUserID:     userID,
		DiscountPercentage: tpl.DiscountPercentage,
		ExpiryDate:         now.AddDate(0, 0, tpl.ExpiryDays),
		IsUsed:             false,
		LinkedPartner:      tpl.Partner,
		VoucherType:        tpl.Type,
		SourceType:         source,
		SourceID:           sourceID,
	}
	if err := st.CreateVoucher(ctx, v); err != nil {
		return nil, err
	}
	s.log.Info("voucher issued",
		zap.String("user_id", userID),
		zap.String("voucher_id", v.ID),
		zap.String("partner", tpl.Partner),
		zap.String("source", string(source)))
	return v, nil
}

// redeem flips the voucher to used through st. Checked in order: missing
// (or foreign-owned, reported identically), already used, expired.
// Not idempotent: a second call fails VOUCHER_ALREADY_USED.
func (s *VoucherService) redeem(ctx context.Context, st storage.Store, userID, voucherID string, now time.Time) (*models.Voucher, error) {
	v, err := st.GetVoucher(ctx, voucherID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, models.ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.ExternalUserID != userID {
		return nil, models.ErrVoucherNotFound
	}
	if v.IsUsed {
		return nil, models.ErrVoucherAlreadyUsed
	}
	if v.Expired(now) {
		return nil, models.ErrVoucherExpired
	}
	v.IsUsed = true
	v.UsedAt = &now
	if err := st.SaveVoucher(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// List returns the user's vouchers, newest first.
func (s *VoucherService) List(ctx context.Context, userID string) ([]models.Voucher, error) {
	return s.store.ListVouchers(ctx, userID)
}

// CountByState splits a voucher slice into available / used / expired.
func CountByState(vouchers []models.Voucher, now time.Time) (available, used, expired int) {
	for i := range vouchers {
		switch {
		case vouchers[i].IsUsed:
			used++
		case vouchers[i].Expired(now):
			expired++
		default:
			available++
		}
	}
	return
}

// voucherCode builds PARTNER-SLUG-XXXXXXXXXX: a readable partner prefix
// plus an unguessable random suffix.
func voucherCode(partner string) (string, error) {
	suffix, err := utils.RandomCode(10)
	if err != nil {
		return "", err
	}
	prefix := strings.ToUpper(slug.Make(partner))
	if prefix == "" {
		prefix = "REWARD"
	}
	return fmt.Sprintf("%s-%s", prefix, suffix), nil
}
