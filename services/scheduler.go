// services/scheduler.go
package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartExpirySweep runs an hourly job that counts vouchers that have
// passed their expiry date. Vouchers are never deleted or mutated by the
// sweep — expiry is a computed state — this only surfaces the numbers for
// operations.
func (s *RewardsService) StartExpirySweep() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			ctx := context.Background()
			now := s.now()

			ids, err := s.store.ListUserIDs(ctx)
			if err != nil {
				s.log.Error("expiry sweep: listing users failed", zap.Error(err))
				return
			}

			var available, used, expired int
			for _, id := range ids {
				vouchers, err := s.store.ListVouchers(ctx, id)
				if err != nil {
					s.log.Error("expiry sweep: listing vouchers failed",
						zap.String("user_id", id), zap.Error(err))
					return
				}
				a, u, e := CountByState(vouchers, now)
				available += a
				used += u
				expired += e
			}

			s.log.Info("voucher expiry sweep",
				zap.Int("available", available),
				zap.Int("used", used),
				zap.Int("expired", expired))
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
