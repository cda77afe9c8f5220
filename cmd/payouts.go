package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/bravecollective/bravebucks/internal/config"
	"github.com/bravecollective/bravebucks/internal/logger"
	"github.com/bravecollective/bravebucks/pkg/clients/esi"
	"github.com/bravecollective/bravebucks/pkg/clients/sso"
	"github.com/bravecollective/bravebucks/pkg/payouts"
	"github.com/bravecollective/bravebucks/pkg/postgres"
	"github.com/bravecollective/bravebucks/pkg/postgres/migrations"
	pgStorage "github.com/bravecollective/bravebucks/pkg/storage/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runPayoutsCmd = &cobra.Command{
	Use:   "payouts",
	Short: "Run one payout cycle and exit",
	Run: func(cmd *cobra.Command, args []string) {
		initRunCmd(cmd)
		cfg := config.NewConfig()
		ctx := context.Background()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

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

		killAllocator := payouts.NewKillPayoutAllocator(store, store, l)
		if _, err := killAllocator.Run(ctx); err != nil {
			l.Sugar().Errorw("Kill payout run failed", zap.Error(err))
		}

		admCollector := payouts.NewAdmIncomeCollector(store, store, ssoClient, esiClient, l)
		collected, err := admCollector.Collect(ctx)
		if err != nil {
			l.Sugar().Fatalw("ADM income collection failed", zap.Error(err))
		}

		admAllocator := payouts.NewAdmPayoutAllocator(store, store, esiClient, l)
		if _, err := admAllocator.Allocate(ctx, collected); err != nil {
			l.Sugar().Fatalw("ADM payout allocation failed", zap.Error(err))
		}
	},
}
