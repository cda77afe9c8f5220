package cmd

import (
	"strconv"

	"github.com/bravecollective/bravebucks/internal/config"
	"github.com/bravecollective/bravebucks/internal/logger"
	"github.com/bravecollective/bravebucks/pkg/postgres"
	pgStorage "github.com/bravecollective/bravebucks/pkg/storage/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runRequestCmd = &cobra.Command{
	Use:   "request <user-id>",
	Short: "Record a payout request for a member's full balance and reset it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initRunCmd(cmd)
		cfg := config.NewConfig()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		userId, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			l.Sugar().Fatalw("Invalid user id", zap.String("userId", args[0]), zap.Error(err))
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

		store := pgStorage.NewPostgresLedgerStore(grm, l, cfg)

		request, err := store.CreatePayoutRequest(userId)
		if err != nil {
			l.Sugar().Fatalw("Failed to create payout request", zap.Int64("userId", userId), zap.Error(err))
		}

		l.Sugar().Infow("Payout request recorded",
			zap.Int64("userId", userId),
			zap.String("amount", request.Amount.String()),
			zap.String("status", request.Status),
		)
	},
}
