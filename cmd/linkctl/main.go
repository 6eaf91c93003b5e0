// linkctl runs maintenance jobs against the bibpay database: expiring stale
// payment links, canceling a link, replaying failed webhooks and printing the
// dashboard figures.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Brunohvg/bibpay/internal/bootstrap"
	"github.com/Brunohvg/bibpay/internal/config"
	"github.com/Brunohvg/bibpay/internal/infrastructure/database"
	"github.com/Brunohvg/bibpay/pkg/logger"
)

var Version = "dev"

// app holds what every subcommand needs. It is opened once per invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	useCases *bootstrap.UseCases
}

func (a *app) open(configPath string, verbose bool) error {
	if configPath != "" {
		if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
			return err
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.NewZapLogger(logger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return err
	}

	useCases, err := bootstrap.NewUseCases(cfg, database.NewRepositories(db, log), log)
	if err != nil {
		_ = database.Close(db, log)
		return err
	}

	a.cfg = cfg
	a.logger = log
	a.db = db
	a.useCases = useCases
	return nil
}

func (a *app) close() {
	if a.useCases != nil {
		_ = a.useCases.Close()
	}
	if a.db != nil {
		_ = database.Close(a.db, a.logger)
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func main() {
	a := &app{}
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:           "linkctl",
		Short:         "Maintenance commands for bibpay payment links",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(configPath, verbose)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file or directory (overrides CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(expireCmd(a))
	rootCmd.AddCommand(cancelCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(webhooksCmd(a))

	err := rootCmd.Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
