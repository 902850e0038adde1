package main

import (
	"context"
	"os"

	"github.com/jingkaihe/skillmigrate/pkg/logger"
	"github.com/jingkaihe/skillmigrate/pkg/presenter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.SetEnvPrefix("SKILLMIGRATE")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillmigrate")
	viper.AddConfigPath(".")

	// a missing config file is fine
	_ = viper.ReadInConfig()

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
}

var rootCmd = &cobra.Command{
	Use:   "skillmigrate [source] [target]",
	Short: "Copy skill directories between skills folders",
	Long: `skillmigrate copies skill directories (folders holding a SKILL.md descriptor and
helper files) from a source skills folder into a target skills folder. Existing
destinations are never overwritten, so re-running is always safe.

Without a subcommand, arguments are forwarded to "skillmigrate migrate".`,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Configure(viper.GetString("log_level"), viper.GetString("log_format"), os.Stderr); err != nil {
			return err
		}
		presenter.SetQuiet(viper.GetBool("quiet"))
		return initTracing(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrateCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print errors")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	addMigrateFlags(rootCmd)
}

func main() {
	ctx := context.Background()

	err := rootCmd.ExecuteContext(ctx)
	if shutdownErr := shutdownTracing(ctx); shutdownErr != nil {
		logger.G(ctx).WithError(shutdownErr).Warn("failed to shut down tracing")
	}
	if err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
