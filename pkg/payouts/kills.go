package payouts

import (
	"context"

	"github.com/bravecollective/bravebucks/pkg/policy"
	"github.com/bravecollective/bravebucks/pkg/settings"
	"github.com/bravecollective/bravebucks/pkg/storage"
	"github.com/bravecollective/bravebucks/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Capsule ("pod") ship type. Pod kills are worth points on zKillboard but the
// alliance can choose not to pay for them.
const podShipTypeId = 670

type KillPayoutAllocator struct {
	store    storage.LedgerStore
	settings settings.Provider
	logger   *zap.Logger
}

func NewKillPayoutAllocator(store storage.LedgerStore, sp settings.Provider, l *zap.Logger) *KillPayoutAllocator {
	return &KillPayoutAllocator{
		store:    store,
		settings: sp,
		logger:   l,
	}
}

type killmailShare struct {
	killmailId   int64
	points       int64
	participants []int64
}

// Run divides the kill pool proportionally over all unaccounted killmails.
//
// Raw points are first smoothed (round(sqrt(points) * 3)) and written back, so
// one expensive kill cannot swallow the pool. All monetary values are rounded
// to 2 decimal places at every intermediate step; the final amounts depend on
// that, so the rounding must not be deferred to the end.
//
// Pod kills are accounted with a zero payout when accountPodKills is off, so
// they leave the unaccounted set instead of being re-examined every cycle.
func (a *KillPayoutAllocator) Run(ctx context.Context) (*PayoutSummary, error) {
	summary := &PayoutSummary{TotalCredited: decimal.Zero}

	payoutSettings, err := policy.LoadPayoutSettings(a.settings)
	if err != nil {
		return nil, err
	}

	killmails, err := a.store.ListUnaccountedKillmails()
	if err != nil {
		return nil, err
	}
	if len(killmails) == 0 {
		a.logger.Sugar().Info("No unaccounted killmails found")
		return summary, nil
	}

	var totalPoints int64
	shares := make([]killmailShare, 0, len(killmails))
	for _, km := range killmails {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		if !payoutSettings.AccountPodKills && km.ShipTypeId == podShipTypeId {
			if err := a.store.MarkKillmailAccounted(km.KillmailId); err != nil {
				a.logger.Sugar().Errorw("Failed to account excluded pod kill",
					zap.Int64("killmailId", km.KillmailId),
					zap.Error(err),
				)
				continue
			}
			summary.PodKillsExcluded++
			continue
		}

		smoothed := types.SmoothedPoints(km.Points)
		if err := a.store.UpdateKillmailPoints(km.KillmailId, smoothed); err != nil {
			a.logger.Sugar().Errorw("Failed to store smoothed points",
				zap.Int64("killmailId", km.KillmailId),
				zap.Error(err),
			)
		}

		participants, err := a.store.ListKillmailParticipants(km.KillmailId)
		if err != nil {
			a.logger.Sugar().Errorw("Failed to list killmail participants, leaving killmail for next run",
				zap.Int64("killmailId", km.KillmailId),
				zap.Error(err),
			)
			continue
		}

		totalPoints += smoothed
		shares = append(shares, killmailShare{
			killmailId:   km.KillmailId,
			points:       smoothed,
			participants: participants,
		})
	}

	a.logger.Sugar().Infow("Computed kill payout pool",
		zap.Int("killmails", len(shares)),
		zap.Int64("totalPoints", totalPoints),
	)

	if len(shares) == 0 || totalPoints == 0 {
		return summary, nil
	}

	payoutPerPoint := payoutSettings.KillPool.Div(decimal.NewFromInt(totalPoints)).Round(2)

	for _, share := range shares {
		payout := payoutPerPoint.Mul(decimal.NewFromInt(share.points)).Round(2)

		if len(share.participants) > 0 {
			perParticipant := payout.Div(decimal.NewFromInt(int64(len(share.participants)))).Round(2)
			credit := perParticipant.Add(payoutSettings.KillFlat)

			for _, userId := range share.participants {
				if err := a.store.CreditUserBalance(userId, credit); err != nil {
					// One member's failed credit must not sink the rest of the batch.
					a.logger.Sugar().Errorw("Failed to credit member for killmail",
						zap.Int64("userId", userId),
						zap.Int64("killmailId", share.killmailId),
						zap.Error(err),
					)
					summary.MembersSkipped++
					continue
				}
				summary.MembersCredited++
				summary.TotalCredited = summary.TotalCredited.Add(credit)
			}
		}

		if err := a.store.MarkKillmailAccounted(share.killmailId); err != nil {
			a.logger.Sugar().Errorw("Failed to mark killmail accounted",
				zap.Int64("killmailId", share.killmailId),
				zap.Error(err),
			)
			continue
		}
		summary.KillmailsAccounted++
	}

	a.logger.Sugar().Infow("Kill payout calculation finished",
		zap.Int("killmailsAccounted", summary.KillmailsAccounted),
		zap.Int("membersCredited", summary.MembersCredited),
		zap.String("totalCredited", summary.TotalCredited.String()),
	)
	return summary, nil
}
