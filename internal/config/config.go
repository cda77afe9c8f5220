package config

import (
	"strings"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "BRAVEBUCKS"

const (
	Debug = "debug"

	AllianceId = "alliance-id"

	DatabaseHost       = "database.host"
	DatabasePort       = "database.port"
	DatabaseUser       = "database.user"
	DatabasePassword   = "database.password"
	DatabaseDbName     = "database.db_name"
	DatabaseSchemaName = "database.schema_name"
	DatabaseSSLMode    = "database.ssl_mode"

	ZkillboardWsUrl = "zkillboard.ws-url"

	EsiBaseUrl = "esi.base-url"

	SsoTokenUrl     = "sso.token-url"
	SsoClientId     = "sso.client-id"
	SsoClientSecret = "sso.client-secret"

	PayoutInterval = "payouts.interval"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample-rate"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"
)

type Config struct {
	Debug bool

	// AllianceId identifies the organization whose members earn payouts.
	AllianceId int64

	DatabaseConfig   DatabaseConfig
	ZkillboardConfig ZkillboardConfig
	EsiConfig        EsiConfig
	SsoConfig        SsoConfig
	PayoutConfig     PayoutConfig
	DataDogConfig    DataDogConfig
	PrometheusConfig PrometheusConfig
}

type DatabaseConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	DbName     string
	SchemaName string
	SSLMode    string
}

type ZkillboardConfig struct {
	WsUrl string
}

type EsiConfig struct {
	BaseUrl string
}

type SsoConfig struct {
	TokenUrl     string
	ClientId     string
	ClientSecret string
}

type PayoutConfig struct {
	// Interval between payout cycles, in hours.
	IntervalHours int
}

type DataDogConfig struct {
	StatsdConfig StatsdConfig
}

type StatsdConfig struct {
	Enabled    bool
	Url        string
	SampleRate float64
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

// KebabToSnakeCase converts a flag name to the form viper uses for env binding.
func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}

func NewConfig() *Config {
	return &Config{
		Debug: viper.GetBool(Debug),

		AllianceId: viper.GetInt64(normalizeFlagName(AllianceId)),

		DatabaseConfig: DatabaseConfig{
			Host:       viper.GetString(normalizeFlagName(DatabaseHost)),
			Port:       viper.GetInt(normalizeFlagName(DatabasePort)),
			User:       viper.GetString(normalizeFlagName(DatabaseUser)),
			Password:   viper.GetString(normalizeFlagName(DatabasePassword)),
			DbName:     viper.GetString(normalizeFlagName(DatabaseDbName)),
			SchemaName: viper.GetString(normalizeFlagName(DatabaseSchemaName)),
			SSLMode:    viper.GetString(normalizeFlagName(DatabaseSSLMode)),
		},

		ZkillboardConfig: ZkillboardConfig{
			WsUrl: viper.GetString(normalizeFlagName(ZkillboardWsUrl)),
		},

		EsiConfig: EsiConfig{
			BaseUrl: viper.GetString(normalizeFlagName(EsiBaseUrl)),
		},

		SsoConfig: SsoConfig{
			TokenUrl:     viper.GetString(normalizeFlagName(SsoTokenUrl)),
			ClientId:     viper.GetString(normalizeFlagName(SsoClientId)),
			ClientSecret: viper.GetString(normalizeFlagName(SsoClientSecret)),
		},

		PayoutConfig: PayoutConfig{
			IntervalHours: viper.GetInt(normalizeFlagName(PayoutInterval)),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled:    viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:        viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
				SampleRate: viper.GetFloat64(normalizeFlagName(DataDogStatsdSampleRate)),
			},
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},
	}
}

func normalizeFlagName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
