package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/majowuji/wuji/internal/config"
	"github.com/majowuji/wuji/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "wuji",
		Short:   "Wuji training recommendation and record tracking",
		Long:    "Wuji manages a personal bodyweight training program: it logs attempts,\ntracks record consolidation, ranks exercises by weekly load, and serves\nthe results over HTTP, Telegram, and MCP.",
		Version: Version,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newBotCommand())
	rootCmd.AddCommand(newMCPCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newLogCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newRecommendCommand())
	rootCmd.AddCommand(newStatsCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// openDatabase loads the config, applies migrations, and opens the database.
func openDatabase() (*config.Config, *storage.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := storage.RunMigrations(cfg.Database.Path, "migrations"); err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := storage.RunMigrations(cfg.Database.Path, "migrations"); err != nil {
				return err
			}
			newLogger().Info("migrations applied", "db", cfg.Database.Path)
			return nil
		},
	}
}
