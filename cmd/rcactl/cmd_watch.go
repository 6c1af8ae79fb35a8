package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rca/internal/analyzer"
	"rca/internal/fir"
	"rca/internal/fixture"
	"rca/internal/rcaconfig"
	"rca/internal/rcaprops"
	"rca/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze the open package whenever its fixture file changes",
	Long: `Establishes a whole-store baseline with AnalyzeAll, then watches the
first fixture_paths directory for changes to the open_package's JSON file.
Each settled write triggers AnalyzePackage against the unchanged baseline -
the incremental path a language-server-style caller takes after an edit -
and prints the updated package's summary. Runs until interrupted.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := rcaconfig.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	if len(cfg.FixturePaths) == 0 {
		return fmt.Errorf("config has no fixture_paths to watch")
	}
	if cfg.OpenPackage == "" {
		return fmt.Errorf("config has no open_package set; watch needs one package to re-analyze")
	}

	var openPkg int32
	if _, err := fmt.Sscanf(cfg.OpenPackage, "%d", &openPkg); err != nil {
		return fmt.Errorf("config open_package %q is not a package ID: %w", cfg.OpenPackage, err)
	}

	store, err := loadCombinedStore(cfg)
	if err != nil {
		return err
	}
	baseline := analyzer.AnalyzeAll(store)
	if logger != nil {
		logger.Info("established baseline", zap.Int("packages", len(store.Order())))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(cfg.FixturePaths[0])
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.OnChange = func(path string) {
		onFixtureChanged(path, store, baseline, fir.PackageID(openPkg))
	}

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	fmt.Printf("watching %s for changes to package %d (ctrl-c to stop)\n", cfg.FixturePaths[0], openPkg)

	<-ctx.Done()
	w.Stop()
	return nil
}

func onFixtureChanged(path string, store *fir.PackageStore, baseline *rcaprops.PackageStoreComputeProperties, openPkg fir.PackageID) {
	if logger != nil {
		logger.Info("fixture changed", zap.String("file", filepath.Base(path)))
	}

	sub, err := fixture.Load(path)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to reload fixture", zap.String("file", path), zap.Error(err))
		}
		return
	}
	pkg, ok := sub.Get(openPkg)
	if !ok {
		return
	}
	store.Insert(openPkg, pkg)

	updated := analyzer.AnalyzePackage(store, baseline, openPkg)
	fmt.Print(analyzer.Display(store, updated))
}
