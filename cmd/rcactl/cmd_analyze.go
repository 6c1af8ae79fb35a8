package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rca/internal/analyzer"
	"rca/internal/fir"
	"rca/internal/fixture"
	"rca/internal/rcaconfig"
	"rca/internal/rcaprops"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run whole-store analysis over every package-store fixture",
	Long: `Loads every JSON package-store fixture named in the run config's
fixture_paths, builds a combined store in file order, and runs AnalyzeAll
over it. Prints a per-callable summary of inherent compute kind and
per-parameter dynamic deltas.`,
	RunE: runAnalyze,
}

var reanalyzeCmd = &cobra.Command{
	Use:   "reanalyze",
	Short: "Re-analyze one package against a prior whole-store run",
	Long: `Runs AnalyzeAll once to establish a baseline, then clears and
re-analyzes the package named by --package (or the config's open_package)
in isolation, demonstrating the whole/part equivalence the engine
guarantees: the re-analyzed package's results are identical to what
AnalyzeAll alone would have produced, and every other package's results
are reused unchanged.`,
	RunE: runReanalyze,
}

func init() {
	reanalyzeCmd.Flags().Int32("package", -1, "Package ID to re-analyze (default: config's open_package)")
}

// loadCombinedStore reads every fixture path from cfg, in order, inserting
// each file's packages into one fir.PackageStore.
func loadCombinedStore(cfg *rcaconfig.Config) (*fir.PackageStore, error) {
	store := fir.NewPackageStore()
	for _, dir := range cfg.FixturePaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read fixture dir %s: %w", dir, err)
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			sub, err := fixture.Load(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			sub.Packages(func(id fir.PackageID, pkg *fir.Package) {
				store.Insert(id, pkg)
			})
		}
	}
	return store, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := rcaconfig.Load(resolveConfigPath())
	if err != nil {
		return err
	}

	store, err := loadCombinedStore(cfg)
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Info("loaded package store", zap.Int("packages", len(store.Order())))
	}

	var props *rcaprops.PackageStoreComputeProperties
	if cfg.Parallel {
		props, err = analyzer.AnalyzeAllParallel(context.Background(), store)
		if err != nil {
			return fmt.Errorf("parallel analysis: %w", err)
		}
	} else {
		props = analyzer.AnalyzeAll(store)
	}

	fmt.Print(analyzer.Display(store, props))
	return nil
}

func runReanalyze(cmd *cobra.Command, args []string) error {
	cfg, err := rcaconfig.Load(resolveConfigPath())
	if err != nil {
		return err
	}

	store, err := loadCombinedStore(cfg)
	if err != nil {
		return err
	}

	openPkg, _ := cmd.Flags().GetInt32("package")
	if openPkg < 0 {
		if cfg.OpenPackage == "" {
			return fmt.Errorf("no --package given and config has no open_package set")
		}
		parsed, err := strconv.ParseInt(cfg.OpenPackage, 10, 32)
		if err != nil {
			return fmt.Errorf("config open_package %q is not a package ID: %w", cfg.OpenPackage, err)
		}
		openPkg = int32(parsed)
	}

	baseline := analyzer.AnalyzeAll(store)
	updated := analyzer.AnalyzePackage(store, baseline, fir.PackageID(openPkg))

	if logger != nil {
		logger.Info("re-analyzed package", zap.Int32("package", openPkg))
	}
	fmt.Print(analyzer.Display(store, updated))
	return nil
}
