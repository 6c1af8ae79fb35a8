// Package main implements rcactl, a command-line driver over the RCA
// engine: load a package-store fixture, run whole-store or single-package
// analysis, and inspect the resulting compute properties.
//
// # File Index
//
//   - main.go          - entry point, rootCmd, global flags
//   - cmd_analyze.go   - analyzeCmd, reanalyzeCmd
//   - cmd_inspect.go   - inspectCmd, capabilitiesCmd
//   - cmd_watch.go     - watchCmd (fsnotify-driven incremental re-analysis)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rca/internal/rcalog"
)

var (
	// Global flags
	verbose   bool
	workspace string
	cfgPath   string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rcactl",
	Short: "Runtime Capabilities Analysis engine CLI",
	Long: `rcactl runs the Runtime Capabilities Analysis (RCA) engine over a
package-store fixture and reports, for every callable and nested IR node,
the runtime capabilities a quantum execution target must support to run it.

RCA is a whole-package, cycle-aware abstract interpretation; it never
folds classical values and never reports user-facing errors - it only
classifies the capability surface a later target-validation or codegen
pass consumes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		} else if abs, err := filepath.Abs(ws); err == nil {
			ws = abs
		}
		workspace = ws

		if err := rcalog.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		rcalog.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to rca run config YAML (default: <workspace>/rca.yaml)")

	rootCmd.AddCommand(
		analyzeCmd,
		reanalyzeCmd,
		inspectCmd,
		capabilitiesCmd,
		watchCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfigPath returns cfgPath if set, else <workspace>/rca.yaml.
func resolveConfigPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	return filepath.Join(workspace, "rca.yaml")
}
