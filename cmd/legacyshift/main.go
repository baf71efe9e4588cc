package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"legacyshift/internal/gateway/config"
	"legacyshift/internal/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "legacyshift",
	Short: "Convert legacy web applications to a modern stack",
	Long: `legacyshift converts an archive of AngularJS, JAX-RS, JSF or Struts sources
into a modern Angular / Spring Boot project. Grouping, analysis, rewriting,
test generation and scaffolding are delegated to an LLM backend; the files
produced for the same path by different groups are merged before the
result archive is written.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, convertCmd, familiesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
