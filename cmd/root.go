package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/codecoach/internal/config"
	"github.com/abhisek/codecoach/internal/logging"
	"github.com/abhisek/codecoach/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "codecoach",
	Short: "AI-backed coding practice service",
	Long: "codecoach generates programming questions, evaluates code submissions and " +
		"analyzes complexity with a generative model, and serves them over HTTP.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CODECOACH_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(questionCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(complexityCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration named by --config and applies the
// --log-level override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db.path from config, then CODECOACH_DB env var, then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}

// openStore opens the event store for read-only inspection commands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
