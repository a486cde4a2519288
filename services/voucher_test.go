package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"tourism-rewards-system/models"
	"tourism-rewards-system/storage"

	"go.uber.org/zap"
)

func TestIssueVoucherCodes(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewVoucherService(store, zap.NewNop())
	ctx := context.Background()
	now := time.Now()

	tpl := models.VoucherTemplate{
		DiscountPercentage: 10,
		ExpiryDays:         45,
		Partner:            "Summit Trek Co",
		Type:               models.VoucherTypeDiscount,
	}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		v, err := svc.Issue(ctx, store, "u1", tpl, models.VoucherSourceXPExchange, "rate_1", now)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if !strings.HasPrefix(v.Code, "SUMMIT-TREK-CO-") {
			t.Fatalf("code %q missing partner prefix", v.Code)
		}
		if seen[v.Code] {
			t.Fatalf("duplicate code %q", v.Code)
		}
		seen[v.Code] = true
		if !v.ExpiryDate.Equal(now.AddDate(0, 0, 45)) {
			t.Fatalf("expiry = %v", v.ExpiryDate)
		}
	}

	vouchers, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(vouchers) != 50 {
		t.Fatalf("listed %d vouchers, want 50", len(vouchers))
	}
}

func TestCountByState(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Hour)
	vouchers := []models.Voucher{
		{ExpiryDate: now.AddDate(0, 0, 10)},                               // available
		{ExpiryDate: now.AddDate(0, 0, 10), IsUsed: true, UsedAt: &used},  // used
		{ExpiryDate: now.AddDate(0, 0, -1)},                               // expired
		{ExpiryDate: now.AddDate(0, 0, -1), IsUsed: true, UsedAt: &used},  // used before expiry
	}

	available, usedCount, expired := CountByState(vouchers, now)
	if available != 1 || usedCount != 2 || expired != 1 {
		t.Fatalf("counts = %d/%d/%d, want 1/2/1", available, usedCount, expired)
	}
}
