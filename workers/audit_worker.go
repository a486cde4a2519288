package workers

import (
	"context"
	"time"

	"tourism-rewards-system/services"

	"go.uber.org/zap"
)

// PollLedgerAudit re-checks the ledger-sum invariant on a fixed interval:
// for every user, sum(xp_change) must equal the cached TotalXP. A
// mismatch means a partial write slipped past the atomic section and is
// logged loudly by the service; this loop just keeps the check running.
func PollLedgerAudit(ctx context.Context, svc *services.RewardsService, log *zap.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("ledger audit worker started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			log.Info("ledger audit worker stopped")
			return
		case <-ticker.C:
			mismatched, err := svc.AuditLedger(ctx)
			if err != nil {
				log.Error("ledger audit run failed", zap.Error(err))
				continue
			}
			if len(mismatched) == 0 {
				log.Debug("ledger audit clean")
			}
		}
	}
}
