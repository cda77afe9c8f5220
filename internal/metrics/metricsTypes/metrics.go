package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_KillmailReceived   = "killmail.received"
	Metric_Incr_KillmailRecorded   = "killmail.recorded"
	Metric_Incr_KillmailDuplicate  = "killmail.duplicate"
	Metric_Incr_PayoutRunSkipped   = "payouts.run.skipped"
	Metric_Incr_MemberCredited     = "payouts.member.credited"
	Metric_Incr_WalletScanSkipped  = "adm.wallet.scan.skipped"

	Metric_Gauge_UnaccountedKillmails = "killmail.unaccounted"

	Metric_Timing_KillPayoutDuration = "payouts.kills.duration"
	Metric_Timing_AdmPayoutDuration  = "payouts.adm.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name:   Metric_Incr_KillmailReceived,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_KillmailRecorded,
			Labels: []string{"classification"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_KillmailDuplicate,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_PayoutRunSkipped,
			Labels: []string{"allocator"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_MemberCredited,
			Labels: []string{"source"},
		},
		MetricsTypeConfig{
			Name:   Metric_Incr_WalletScanSkipped,
			Labels: []string{},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_UnaccountedKillmails,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name:   Metric_Timing_KillPayoutDuration,
			Labels: []string{},
		},
		MetricsTypeConfig{
			Name:   Metric_Timing_AdmPayoutDuration,
			Labels: []string{},
		},
	},
}
