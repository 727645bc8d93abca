package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fcegen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "fcegen",
	Short: "Exercise generation engine for FCE-style language practice",
	Long:  "fcegen generates validated fill-in-the-blank English exercises from a learner's error profile, with multi-model fallback and strict structural validation.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; explicit env vars still apply.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite event log (overrides FCE_DB env var)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger. Debug level with --verbose.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

// resolveDBPath returns the event-log path using --db (highest priority),
// then the FCE_DB env var, then the default data-dir path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := os.Getenv("FCE_DB"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openEvents opens the event store at the resolved path. Failures degrade
// to a no-op repo so the pipeline keeps working without an event log.
func openEvents(cmd *cobra.Command, log *zap.Logger) (store.EventRepo, func()) {
	path, err := resolveDBPath(cmd)
	if err != nil {
		log.Warn("event log disabled: cannot resolve path", zap.Error(err))
		return store.NopEventRepo{}, func() {}
	}
	s, err := store.Open(path)
	if err != nil {
		log.Warn("event log disabled", zap.String("path", path), zap.Error(err))
		return store.NopEventRepo{}, func() {}
	}
	return s.EventRepo(), func() {
		if cerr := s.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "warning: closing event log: %v\n", cerr)
		}
	}
}
