package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bravecollective/bravebucks/internal/metrics"
	"github.com/bravecollective/bravebucks/pkg/classifier"
	"github.com/bravecollective/bravebucks/pkg/payouts"
	"github.com/bravecollective/bravebucks/pkg/policy"
	"github.com/bravecollective/bravebucks/pkg/recorder"
	"github.com/bravecollective/bravebucks/pkg/settings"
	"github.com/bravecollective/bravebucks/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSettings struct {
	values map[string][]string
}

func (f *fakeSettings) GetSettingsByPath(path string) ([]settings.Setting, error) {
	rows := make([]settings.Setting, 0, len(f.values[path]))
	for _, v := range f.values[path] {
		rows = append(rows, settings.Setting{Path: path, Value: v})
	}
	return rows, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []*types.Killmail
	result   recorder.RecordResult
}

func (f *fakeRecorder) Record(km *types.Killmail, classification classifier.Classification) (recorder.RecordResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, km)
	return f.result, nil
}

type blockingKillAllocator struct {
	started chan struct{}
	release chan struct{}
	runs    int
}

func (b *blockingKillAllocator) Run(ctx context.Context) (*payouts.PayoutSummary, error) {
	b.runs++
	close(b.started)
	<-b.release
	return &payouts.PayoutSummary{TotalCredited: decimal.Zero}, nil
}

type fakeAdmCollector struct {
	collections int
}

func (f *fakeAdmCollector) Collect(ctx context.Context) (map[int64][]payouts.AdmContribution, error) {
	f.collections++
	return nil, nil
}

type fakeAdmAllocator struct {
	allocations int
}

func (f *fakeAdmAllocator) Allocate(ctx context.Context, collected map[int64][]payouts.AdmContribution) (*payouts.PayoutSummary, error) {
	f.allocations++
	return &payouts.PayoutSummary{TotalCredited: decimal.Zero}, nil
}

func newTestPipeline(t *testing.T, rec KillmailRecorder, killAllocator KillAllocator) *Pipeline {
	sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, nil)
	assert.Nil(t, err)

	sp := &fakeSettings{values: map[string][]string{
		policy.Path_DefenseEnabled:      {"true"},
		policy.Path_DefenseSolarSystems: {"30000001"},
	}}

	return NewPipeline(
		&PipelineConfig{AllianceId: 99000006, PayoutInterval: time.Hour},
		nil,
		rec,
		sp,
		killAllocator,
		&fakeAdmCollector{},
		&fakeAdmAllocator{},
		sink,
		zap.NewNop(),
	)
}

func Test_ProcessKillmail(t *testing.T) {
	t.Run("Should record an eligible killmail", func(t *testing.T) {
		rec := &fakeRecorder{}
		p := newTestPipeline(t, rec, &blockingKillAllocator{})

		p.processKillmail(&types.Killmail{
			KillmailID:    100,
			SolarSystemID: 30000001,
			Attackers:     []types.Attacker{{CharacterID: 1, AllianceID: 99000006}},
		})
		assert.Len(t, rec.recorded, 1)
	})

	t.Run("Should drop an ineligible killmail before recording", func(t *testing.T) {
		rec := &fakeRecorder{}
		p := newTestPipeline(t, rec, &blockingKillAllocator{})

		p.processKillmail(&types.Killmail{
			KillmailID:    101,
			SolarSystemID: 30009999,
			Attackers:     []types.Attacker{{CharacterID: 1, AllianceID: 99000006}},
		})
		assert.Len(t, rec.recorded, 0)
	})
}

func Test_RunKillPayouts(t *testing.T) {
	t.Run("Should skip a run while another is in flight", func(t *testing.T) {
		allocator := &blockingKillAllocator{
			started: make(chan struct{}),
			release: make(chan struct{}),
		}
		p := newTestPipeline(t, &fakeRecorder{}, allocator)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.RunKillPayouts(context.Background())
		}()
		<-allocator.started

		p.RunKillPayouts(context.Background())
		assert.Equal(t, 1, allocator.runs)

		close(allocator.release)
		wg.Wait()
	})
}

func Test_RunAdmPayouts(t *testing.T) {
	t.Run("Should collect and then allocate", func(t *testing.T) {
		collector := &fakeAdmCollector{}
		allocator := &fakeAdmAllocator{}
		sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, nil)
		assert.Nil(t, err)

		p := NewPipeline(
			&PipelineConfig{AllianceId: 99000006, PayoutInterval: time.Hour},
			nil,
			&fakeRecorder{},
			&fakeSettings{},
			&blockingKillAllocator{},
			collector,
			allocator,
			sink,
			zap.NewNop(),
		)

		p.RunAdmPayouts(context.Background())
		assert.Equal(t, 1, collector.collections)
		assert.Equal(t, 1, allocator.allocations)
	})
}
