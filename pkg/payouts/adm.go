package payouts

import (
	"context"
	"sort"
	"time"

	"github.com/bravecollective/bravebucks/pkg/clients/sso"
	"github.com/bravecollective/bravebucks/pkg/policy"
	"github.com/bravecollective/bravebucks/pkg/settings"
	"github.com/bravecollective/bravebucks/pkg/storage"
	"github.com/bravecollective/bravebucks/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Minimum age of a member's scan cursor before their wallet is fetched again.
const walletScanInterval = 24 * time.Hour

type TokenClient interface {
	RefreshAccessToken(refreshToken string) (*sso.TokenResponse, error)
}

type WalletClient interface {
	GetWalletJournal(characterId int64, accessToken string) ([]types.WalletEntry, error)
}

type SovereigntyClient interface {
	GetSovereigntyStructures() ([]types.SovStructure, error)
	GetNames(ids []int64) ([]types.UniverseName, error)
}

// AdmContribution is one member's bounty income attributed to one territory.
type AdmContribution struct {
	SolarSystemId int64
	Amount        decimal.Decimal
}

// AdmIncomeCollector pulls territory-linked bounty income out of members'
// wallet journals. It never advances the scan cursor itself; that happens when
// the allocation step credits the member, so a failed allocation leaves the
// collection replayable.
type AdmIncomeCollector struct {
	store    storage.LedgerStore
	settings settings.Provider
	token    TokenClient
	wallet   WalletClient
	logger   *zap.Logger
}

func NewAdmIncomeCollector(store storage.LedgerStore, sp settings.Provider, token TokenClient, wallet WalletClient, l *zap.Logger) *AdmIncomeCollector {
	return &AdmIncomeCollector{
		store:    store,
		settings: sp,
		token:    token,
		wallet:   wallet,
		logger:   l,
	}
}

// Collect returns per-member contribution lists for every member whose wallet
// is due for a scan. A member whose token refresh or journal fetch fails is
// skipped for this cycle and retried from the same cursor next cycle.
func (c *AdmIncomeCollector) Collect(ctx context.Context) (map[int64][]AdmContribution, error) {
	payoutSettings, err := policy.LoadPayoutSettings(c.settings)
	if err != nil {
		return nil, err
	}

	users, err := c.store.ListUsersWithRefreshToken()
	if err != nil {
		return nil, err
	}

	contributions := make(map[int64][]AdmContribution)
	for _, user := range users {
		if ctx.Err() != nil {
			return contributions, ctx.Err()
		}

		admUser, err := c.store.GetAdmUser(user.UserId)
		if err != nil {
			c.logger.Sugar().Errorw("Failed to load wallet scan cursor",
				zap.Int64("userId", user.UserId),
				zap.Error(err),
			)
			continue
		}

		var cursor time.Time
		if admUser != nil && admUser.LastUpdated != nil {
			if time.Since(*admUser.LastUpdated) <= walletScanInterval {
				continue
			}
			cursor = *admUser.LastUpdated
		}

		token, err := c.token.RefreshAccessToken(user.RefreshToken)
		if err != nil {
			c.logger.Sugar().Warnw("Failed to refresh member token, skipping for this cycle",
				zap.Int64("userId", user.UserId),
				zap.Error(err),
			)
			continue
		}
		if token.RefreshToken != "" && token.RefreshToken != user.RefreshToken {
			if err := c.store.UpdateRefreshToken(user.UserId, token.RefreshToken); err != nil {
				c.logger.Sugar().Errorw("Failed to store rotated refresh token",
					zap.Int64("userId", user.UserId),
					zap.Error(err),
				)
			}
		}

		journal, err := c.wallet.GetWalletJournal(user.UserId, token.AccessToken)
		if err != nil {
			c.logger.Sugar().Warnw("Failed to fetch wallet journal, skipping for this cycle",
				zap.Int64("userId", user.UserId),
				zap.Error(err),
			)
			continue
		}

		for _, entry := range journal {
			if !entry.IsBountyIncome(cursor) || !payoutSettings.AdmSystems[entry.ContextID] {
				continue
			}
			contributions[user.UserId] = append(contributions[user.UserId], AdmContribution{
				SolarSystemId: entry.ContextID,
				Amount:        decimal.NewFromFloat(entry.Amount),
			})
		}
	}

	c.logger.Sugar().Infow("Collected ADM contributions",
		zap.Int("members", len(contributions)),
	)
	return contributions, nil
}

type admSystemAggregate struct {
	solarSystemId int64
	name          string
	level         float64
	weight        decimal.Decimal
	totalAmount   decimal.Decimal
	contributors  []admContributor
}

type admContributor struct {
	userId int64
	amount decimal.Decimal
}

// AdmPayoutAllocator divides the ADM pool over collected contributions,
// weighted against each territory's current control level. Weakly-held
// territory pays more per ISK of bounty income to pull members into it.
type AdmPayoutAllocator struct {
	store       storage.LedgerStore
	settings    settings.Provider
	sovereignty SovereigntyClient
	logger      *zap.Logger
}

func NewAdmPayoutAllocator(store storage.LedgerStore, sp settings.Provider, sov SovereigntyClient, l *zap.Logger) *AdmPayoutAllocator {
	return &AdmPayoutAllocator{
		store:       store,
		settings:    sp,
		sovereignty: sov,
		logger:      l,
	}
}

// admWeight is strictly decreasing in the control level and always positive.
// Levels below zero are clamped.
func admWeight(level float64) decimal.Decimal {
	if level < 0 {
		level = 0
	}
	return decimal.NewFromFloat(4 / (1 + level))
}

// Allocate credits each contributing member their weighted share of the ADM
// pool and advances their scan cursor. Every configured system's name and
// level snapshot is refreshed even when it earned nothing this cycle.
func (a *AdmPayoutAllocator) Allocate(ctx context.Context, collected map[int64][]AdmContribution) (*PayoutSummary, error) {
	summary := &PayoutSummary{TotalCredited: decimal.Zero}

	payoutSettings, err := policy.LoadPayoutSettings(a.settings)
	if err != nil {
		return nil, err
	}

	systemIds := make([]int64, 0, len(payoutSettings.AdmSystems))
	for id := range payoutSettings.AdmSystems {
		systemIds = append(systemIds, id)
	}
	sort.Slice(systemIds, func(i, j int) bool { return systemIds[i] < systemIds[j] })

	if len(systemIds) == 0 {
		a.logger.Sugar().Info("No ADM systems configured")
		return summary, nil
	}

	structures, err := a.sovereignty.GetSovereigntyStructures()
	if err != nil {
		return nil, err
	}
	levels := make(map[int64]float64, len(systemIds))
	for _, structure := range structures {
		if payoutSettings.AdmSystems[structure.SolarSystemID] {
			levels[structure.SolarSystemID] = structure.VulnerabilityOccupancyLevel
		}
	}

	names := make(map[int64]string, len(systemIds))
	universeNames, err := a.sovereignty.GetNames(systemIds)
	if err != nil {
		a.logger.Sugar().Warnw("Failed to resolve system names", zap.Error(err))
	} else {
		for _, n := range universeNames {
			names[n.ID] = n.Name
		}
	}

	aggregates := make(map[int64]*admSystemAggregate, len(systemIds))
	for _, id := range systemIds {
		aggregates[id] = &admSystemAggregate{
			solarSystemId: id,
			name:          names[id],
			level:         levels[id],
			weight:        admWeight(levels[id]),
			totalAmount:   decimal.Zero,
		}
	}

	userIds := make([]int64, 0, len(collected))
	for userId := range collected {
		userIds = append(userIds, userId)
	}
	sort.Slice(userIds, func(i, j int) bool { return userIds[i] < userIds[j] })

	for _, userId := range userIds {
		for _, contribution := range collected[userId] {
			aggregate, ok := aggregates[contribution.SolarSystemId]
			if !ok {
				continue
			}
			aggregate.totalAmount = aggregate.totalAmount.Add(contribution.Amount)
			aggregate.contributors = append(aggregate.contributors, admContributor{
				userId: userId,
				amount: contribution.Amount,
			})
		}
	}

	totalWeighted := decimal.Zero
	for _, id := range systemIds {
		aggregate := aggregates[id]
		totalWeighted = totalWeighted.Add(aggregate.totalAmount.Mul(aggregate.weight))
	}

	if totalWeighted.IsPositive() {
		payoutPerWeightedUnit := payoutSettings.AdmPool.Div(totalWeighted).Round(2)

		for _, id := range systemIds {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			aggregate := aggregates[id]
			if len(aggregate.contributors) == 0 {
				continue
			}

			for _, contributor := range aggregate.contributors {
				share := contributor.amount.Mul(aggregate.weight).Mul(payoutPerWeightedUnit).Round(2)
				if err := a.store.CreditUserBalance(contributor.userId, share); err != nil {
					a.logger.Sugar().Errorw("Failed to credit member for ADM income",
						zap.Int64("userId", contributor.userId),
						zap.Int64("solarSystemId", id),
						zap.Error(err),
					)
					summary.MembersSkipped++
					continue
				}
				// Cursor advances only on a successful credit so a failed member
				// replays the same wallet window next cycle.
				if err := a.store.TouchAdmUser(contributor.userId); err != nil {
					a.logger.Sugar().Errorw("Failed to advance wallet scan cursor",
						zap.Int64("userId", contributor.userId),
						zap.Error(err),
					)
				}
				summary.MembersCredited++
				summary.TotalCredited = summary.TotalCredited.Add(share)
			}
			summary.SystemsPaid++
		}
	}

	for _, id := range systemIds {
		aggregate := aggregates[id]
		if err := a.store.UpsertAdmSystem(id, aggregate.name, aggregate.level); err != nil {
			a.logger.Sugar().Errorw("Failed to store ADM system snapshot",
				zap.Int64("solarSystemId", id),
				zap.Error(err),
			)
		}
	}

	a.logger.Sugar().Infow("ADM payout calculation finished",
		zap.Int("systemsPaid", summary.SystemsPaid),
		zap.Int("membersCredited", summary.MembersCredited),
		zap.String("totalCredited", summary.TotalCredited.String()),
	)
	return summary, nil
}
