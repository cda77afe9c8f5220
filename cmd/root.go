package cmd

import (
	"os"
	"strings"

	"github.com/bravecollective/bravebucks/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "bravebucks",
	Short: "BraveBucks attributes killmails and ADM bounty income to alliance members and pays them from shared pools",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)

	rootCmd.PersistentFlags().Int64(config.AllianceId, 0, `Alliance whose members earn payouts`)

	rootCmd.PersistentFlags().String(config.DatabaseHost, "localhost", `PostgreSQL host`)
	rootCmd.PersistentFlags().Int(config.DatabasePort, 5432, `PostgreSQL port`)
	rootCmd.PersistentFlags().String(config.DatabaseUser, "bravebucks", `PostgreSQL username`)
	rootCmd.PersistentFlags().String(config.DatabasePassword, "", `PostgreSQL password`)
	rootCmd.PersistentFlags().String(config.DatabaseDbName, "bravebucks", `PostgreSQL database name`)
	rootCmd.PersistentFlags().String(config.DatabaseSchemaName, "", `PostgreSQL schema name (default "public")`)
	rootCmd.PersistentFlags().String(config.DatabaseSSLMode, "disable", `PostgreSQL ssl mode`)

	rootCmd.PersistentFlags().String(config.ZkillboardWsUrl, "wss://zkillboard.com/websocket/", `zKillboard killstream websocket URL`)
	rootCmd.PersistentFlags().String(config.EsiBaseUrl, "https://esi.evetech.net/latest", `EVE ESI base URL`)

	rootCmd.PersistentFlags().String(config.SsoTokenUrl, "https://login.eveonline.com/v2/oauth/token", `EVE SSO token endpoint`)
	rootCmd.PersistentFlags().String(config.SsoClientId, "", `EVE SSO client id`)
	rootCmd.PersistentFlags().String(config.SsoClientSecret, "", `EVE SSO client secret`)

	rootCmd.PersistentFlags().Int(config.PayoutInterval, 24, `Hours between payout cycles`)

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runPayoutsCmd)
	rootCmd.AddCommand(runRequestCmd)
	rootCmd.AddCommand(runDatabaseCmd)
	rootCmd.AddCommand(runVersionCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}
