package cmd

import (
	"github.com/bravecollective/bravebucks/internal/config"
	"github.com/bravecollective/bravebucks/internal/logger"
	"github.com/bravecollective/bravebucks/pkg/postgres"
	"github.com/bravecollective/bravebucks/pkg/postgres/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runDatabaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Create the database if needed and run all migrations",
	Run: func(cmd *cobra.Command, args []string) {
		initRunCmd(cmd)
		cfg := config.NewConfig()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})

		pgConfig := postgres.PostgresConfigFromDbConfig(&cfg.DatabaseConfig)
		pgConfig.CreateDbIfNotExists = true

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

		l.Sugar().Info("Database is up to date")
	},
}
