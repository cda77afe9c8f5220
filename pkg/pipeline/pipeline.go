package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/bravecollective/bravebucks/internal/metrics"
	"github.com/bravecollective/bravebucks/internal/metrics/metricsTypes"
	"github.com/bravecollective/bravebucks/pkg/classifier"
	"github.com/bravecollective/bravebucks/pkg/payouts"
	"github.com/bravecollective/bravebucks/pkg/policy"
	"github.com/bravecollective/bravebucks/pkg/recorder"
	"github.com/bravecollective/bravebucks/pkg/settings"
	"github.com/bravecollective/bravebucks/pkg/types"
	"go.uber.org/zap"
)

// KillmailSource is the live feed of kill events. The zKillboard subscriber
// implements it in production.
type KillmailSource interface {
	Start(ctx context.Context)
	Killmails() <-chan *types.Killmail
}

type KillmailRecorder interface {
	Record(km *types.Killmail, classification classifier.Classification) (recorder.RecordResult, error)
}

type KillAllocator interface {
	Run(ctx context.Context) (*payouts.PayoutSummary, error)
}

type AdmCollector interface {
	Collect(ctx context.Context) (map[int64][]payouts.AdmContribution, error)
}

type AdmAllocator interface {
	Allocate(ctx context.Context, collected map[int64][]payouts.AdmContribution) (*payouts.PayoutSummary, error)
}

type PipelineConfig struct {
	AllianceId     int64
	PayoutInterval time.Duration
}

// Pipeline owns both scheduling domains: the event-driven classify/record path
// and the periodic payout batch path. The two share no in-process state; they
// meet only in the ledger store.
type Pipeline struct {
	config        *PipelineConfig
	source        KillmailSource
	recorder      KillmailRecorder
	settings      settings.Provider
	killAllocator KillAllocator
	admCollector  AdmCollector
	admAllocator  AdmAllocator
	metricsSink   *metrics.MetricsSink
	logger        *zap.Logger

	// Single-flight guards. A payout run that outlives the timer interval must
	// not overlap with the next one, or both would read the same unsettled set.
	killRunMu sync.Mutex
	admRunMu  sync.Mutex
}

func NewPipeline(
	cfg *PipelineConfig,
	source KillmailSource,
	rec KillmailRecorder,
	sp settings.Provider,
	killAllocator KillAllocator,
	admCollector AdmCollector,
	admAllocator AdmAllocator,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *Pipeline {
	return &Pipeline{
		config:        cfg,
		source:        source,
		recorder:      rec,
		settings:      sp,
		killAllocator: killAllocator,
		admCollector:  admCollector,
		admAllocator:  admAllocator,
		metricsSink:   ms,
		logger:        l,
	}
}

// Start runs the killmail consumer and the payout timer until the context is
// cancelled.
func (p *Pipeline) Start(ctx context.Context) {
	go p.source.Start(ctx)
	go p.runPayoutTimer(ctx)
	p.consumeKillmails(ctx)
}

func (p *Pipeline) consumeKillmails(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case km, ok := <-p.source.Killmails():
			if !ok {
				return
			}
			p.processKillmail(km)
		}
	}
}

// processKillmail loads a fresh policy snapshot per event so settings changes
// take effect on the very next killmail.
func (p *Pipeline) processKillmail(km *types.Killmail) {
	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_KillmailReceived, nil, 1)

	pol, err := policy.Load(p.settings)
	if err != nil {
		p.logger.Sugar().Errorw("Failed to load eligibility policy, dropping killmail",
			zap.Int64("killmailId", km.KillmailID),
			zap.Error(err),
		)
		return
	}

	classification := classifier.Classify(km, pol, p.config.AllianceId)
	if classification == classifier.Classification_Ignore {
		p.logger.Sugar().Debugw("Killmail not eligible",
			zap.Int64("killmailId", km.KillmailID),
		)
		return
	}

	result, err := p.recorder.Record(km, classification)
	if err != nil {
		p.logger.Sugar().Errorw("Failed to record killmail",
			zap.Int64("killmailId", km.KillmailID),
			zap.Error(err),
		)
		return
	}

	if result == recorder.RecordResult_AlreadyRecorded {
		_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_KillmailDuplicate, nil, 1)
		return
	}
	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_KillmailRecorded, []metricsTypes.MetricsLabel{
		{Name: "classification", Value: classification.String()},
	}, 1)
}

func (p *Pipeline) runPayoutTimer(ctx context.Context) {
	ticker := time.NewTicker(p.config.PayoutInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunPayoutCycle(ctx)
		}
	}
}

// RunPayoutCycle runs kill payouts and then the ADM collection/allocation
// sequence. Each half is guarded independently so a slow ADM run does not
// block the next kill payout run.
func (p *Pipeline) RunPayoutCycle(ctx context.Context) {
	p.RunKillPayouts(ctx)
	p.RunAdmPayouts(ctx)
}

func (p *Pipeline) RunKillPayouts(ctx context.Context) {
	if !p.killRunMu.TryLock() {
		p.logger.Sugar().Warn("Kill payout run already in progress, skipping")
		_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_PayoutRunSkipped, []metricsTypes.MetricsLabel{
			{Name: "allocator", Value: "kills"},
		}, 1)
		return
	}
	defer p.killRunMu.Unlock()

	start := time.Now()
	summary, err := p.killAllocator.Run(ctx)
	if err != nil {
		p.logger.Sugar().Errorw("Kill payout run failed", zap.Error(err))
		return
	}
	_ = p.metricsSink.Timing(metricsTypes.Metric_Timing_KillPayoutDuration, time.Since(start), nil)
	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_MemberCredited, []metricsTypes.MetricsLabel{
		{Name: "source", Value: "kills"},
	}, float64(summary.MembersCredited))
}

// RunAdmPayouts guards collection and allocation with one lock: the scan
// cursor only advances at the end of allocation, so an overlapping collection
// would read the same wallet window twice.
func (p *Pipeline) RunAdmPayouts(ctx context.Context) {
	if !p.admRunMu.TryLock() {
		p.logger.Sugar().Warn("ADM payout run already in progress, skipping")
		_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_PayoutRunSkipped, []metricsTypes.MetricsLabel{
			{Name: "allocator", Value: "adm"},
		}, 1)
		return
	}
	defer p.admRunMu.Unlock()

	start := time.Now()
	collected, err := p.admCollector.Collect(ctx)
	if err != nil {
		p.logger.Sugar().Errorw("ADM income collection failed", zap.Error(err))
		return
	}

	summary, err := p.admAllocator.Allocate(ctx, collected)
	if err != nil {
		p.logger.Sugar().Errorw("ADM payout allocation failed", zap.Error(err))
		return
	}
	_ = p.metricsSink.Timing(metricsTypes.Metric_Timing_AdmPayoutDuration, time.Since(start), nil)
	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_MemberCredited, []metricsTypes.MetricsLabel{
		{Name: "source", Value: "adm"},
	}, float64(summary.MembersCredited))
}
