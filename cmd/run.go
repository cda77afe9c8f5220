package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bravecollective/bravebucks/internal/config"
	"github.com/bravecollective/bravebucks/internal/logger"
	"github.com/bravecollective/bravebucks/internal/metrics"
	"github.com/bravecollective/bravebucks/internal/metrics/prometheus"
	"github.com/bravecollective/bravebucks/internal/shutdown"
	"github.com/bravecollective/bravebucks/pkg/clients/esi"
	"github.com/bravecollective/bravebucks/pkg/clients/sso"
	"github.com/bravecollective/bravebucks/pkg/clients/zkillboard"
	"github.com/bravecollective/bravebucks/pkg/payouts"
	"github.com/bravecollective/bravebucks/pkg/pipeline"
	"github.com/bravecollective/bravebucks/pkg/postgres"
	"github.com/bravecollective/bravebucks/pkg/postgres/migrations"
	"github.com/bravecollective/bravebucks/pkg/recorder"
	pgStorage "github.com/bravecollective/bravebucks/pkg/storage/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the killmail ingestion pipeline and the payout scheduler",
	Run: func(cmd *cobra.Command, args []string) {
		initRunCmd(cmd)
		cfg := config.NewConfig()
		ctx, cancel := context.WithCancel(context.Background())

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		if cfg.AllianceId == 0 {
			l.Sugar().Fatal("alliance-id must be set")
		}

		metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup metrics clients", zap.Error(err))
		}
		metricsSink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, metricsClients)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup metrics sink", zap.Error(err))
		}

		prometheusShutdown := make(chan bool)
		if cfg.PrometheusConfig.Enabled {
			promServer := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.PrometheusConfig.Port,
			}, l)
			if err := promServer.Start(prometheusShutdown); err != nil {
				l.Sugar().Fatalw("Failed to start prometheus server", zap.Error(err))
			}
		}

		pgConfig := postgres.PostgresConfigFromDbConfig(&cfg.DatabaseConfig)

		pg, err := postgres.NewPostgres(pgConfig)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup postgres connection", zap.Error(err))
		}

		grm, err := postgres.NewGormFromPostgresConnection(pg.Db)
		if err != nil {
			l.Sugar().Fatalw("Failed to create gorm instance", zap.Error(err))
		}

		migrator := migrations.NewMigrator(pg.Db, grm, l)
		if err = migrator.MigrateAll(); err != nil {
			l.Sugar().Fatalw("Failed to migrate", zap.Error(err))
		}

		store := pgStorage.NewPostgresLedgerStore(grm, l, cfg)

		httpClient := &http.Client{Timeout: 30 * time.Second}
		esiClient := esi.NewEsiClient(httpClient, cfg.EsiConfig.BaseUrl, l)
		ssoClient := sso.NewSsoClient(httpClient, cfg.SsoConfig.TokenUrl, cfg.SsoConfig.ClientId, cfg.SsoConfig.ClientSecret, l)

		subscriber := zkillboard.NewKillmailSubscriber(cfg.ZkillboardConfig.WsUrl, l)
		killRecorder := recorder.NewKillRecorder(store, esiClient, cfg.AllianceId, l)

		killAllocator := payouts.NewKillPayoutAllocator(store, store, l)
		admCollector := payouts.NewAdmIncomeCollector(store, store, ssoClient, esiClient, l)
		admAllocator := payouts.NewAdmPayoutAllocator(store, store, esiClient, l)

		p := pipeline.NewPipeline(&pipeline.PipelineConfig{
			AllianceId:     cfg.AllianceId,
			PayoutInterval: time.Duration(cfg.PayoutConfig.IntervalHours) * time.Hour,
		}, subscriber, killRecorder, store, killAllocator, admCollector, admAllocator, metricsSink, l)

		go p.Start(ctx)

		l.Sugar().Info("Started BraveBucks")

		gracefulShutdown := shutdown.CreateGracefulShutdownChannel()

		done := make(chan bool)
		shutdown.ListenForShutdown(gracefulShutdown, done, func() {
			l.Sugar().Info("Shutting down...")
			cancel()
			if cfg.PrometheusConfig.Enabled {
				prometheusShutdown <- true
			}
		}, time.Second*5, l)
	},
}

func initRunCmd(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(f.Name); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}
	})
}
