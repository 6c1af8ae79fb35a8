package analyzer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"rca/internal/cycledetect"
	"rca/internal/cyclicoverride"
	"rca/internal/fir"
	"rca/internal/rcalog"
	"rca/internal/rcaprops"
	"rca/internal/scaffold"
)

// AnalyzeAll runs the full pipeline over every package in store: scaffold
// placeholders, discover cycles, seed conservative summaries for them, then
// core-analyze every callable item. Scaffolding and cycle detection run
// against the whole store up front since both need a complete picture of
// the call graph; the core analysis itself proceeds item by item, resolving
// forward references to not-yet-visited callees as it reaches them.
func AnalyzeAll(store *fir.PackageStore) *rcaprops.PackageStoreComputeProperties {
	props := rcaprops.NewPackageStoreComputeProperties()
	log := rcalog.Get(rcalog.CategoryTopLevel)
	log.Info("run %s: analyzing %d package(s)", rcalog.RunID, len(store.Order()))

	store.Packages(func(id fir.PackageID, pkg *fir.Package) {
		scaffold.Package(id, pkg, props)
	})

	cyclic := cycledetect.Cyclic(store)
	log.Info("run %s: %d cyclic specialization(s) flagged", rcalog.RunID, len(cyclic))
	cyclicoverride.Apply(store, cyclic, props)

	run := newRun(store, props, cyclic)
	store.Packages(func(pkgID fir.PackageID, pkg *fir.Package) {
		pkg.Items.Iter(func(itemID fir.LocalItemID, item fir.Item) {
			run.analyzeItem(fir.StoreItemID{Package: pkgID, Item: itemID})
		})
	})

	return props
}

// AnalyzeAllParallel is AnalyzeAll's concurrent counterpart for callers
// that can afford to analyze independent packages on separate goroutines -
// mirroring the incremental-compilation front end's use of an error group
// to fan work out across CPUs while still propagating the first failure
// and cancelling the rest.
//
// Packages run one topological layer at a time (see packageLayers): every
// member of a layer is independent of every other member of that same
// layer by construction, so they get one goroutine each, joined by
// errgroup.Wait before the next layer's goroutines are launched. That join
// is the synchronization barrier that makes a later layer's reads of an
// earlier layer's props entries race-free - without it, a layer-k member
// resolving a call into a layer-(k-1) callee it shares with a sibling
// goroutine could read partially-written or concurrently-growing
// indexmap.Map state. Items within one package are still analyzed on the
// calling goroutine in declaration order: the memoized recursive call
// resolution in Run is not itself safe for concurrent use from multiple
// goroutines sharing one Run, so each package gets its own Run, seeded to
// treat every earlier layer's items as already done (mirroring
// AnalyzePackage's markForeignPackagesDone) so it never re-walks them.
func AnalyzeAllParallel(ctx context.Context, store *fir.PackageStore) (*rcaprops.PackageStoreComputeProperties, error) {
	props := rcaprops.NewPackageStoreComputeProperties()

	store.Packages(func(id fir.PackageID, pkg *fir.Package) {
		scaffold.Package(id, pkg, props)
	})

	cyclic := cycledetect.Cyclic(store)
	cyclicoverride.Apply(store, cyclic, props)

	var done []fir.PackageID
	for _, layer := range packageLayers(store) {
		group, gctx := errgroup.WithContext(ctx)
		finished := append([]fir.PackageID(nil), done...)
		for _, pkgID := range layer {
			pkgID := pkgID
			group.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				pkg, ok := store.Get(pkgID)
				if !ok {
					return nil
				}
				run := newRun(store, props, cyclic)
				run.markPackagesDone(store, finished)
				pkg.Items.Iter(func(itemID fir.LocalItemID, item fir.Item) {
					run.analyzeItem(fir.StoreItemID{Package: pkgID, Item: itemID})
				})
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		done = append(done, layer...)
	}
	return props, nil
}

// AnalyzePackage re-analyzes a single "open" package against the frozen
// results of every other package in store, as produced by a prior AnalyzeAll
// (or AnalyzePackage) call. Only pkgID's own block/stmt/expr/item entries in
// prior are cleared and recomputed; every other package's entries, and
// therefore every cross-package call resolution reached from pkgID, are
// reused unchanged. This is the incremental path a language-server-style
// caller takes after editing one package's source.
func AnalyzePackage(store *fir.PackageStore, prior *rcaprops.PackageStoreComputeProperties, pkgID fir.PackageID) *rcaprops.PackageStoreComputeProperties {
	log := rcalog.Get(rcalog.CategoryTopLevel)
	log.Info("run %s: re-analyzing package %d", rcalog.RunID, pkgID)

	pkg, ok := store.Get(pkgID)
	if !ok {
		return prior
	}

	prior.Get(pkgID).Clear()
	scaffold.Package(pkgID, pkg, prior)

	cyclic := cycledetect.Cyclic(store)
	cyclicoverride.Apply(store, filterPackageCyclic(cyclic, pkgID), prior)

	run := newRun(store, prior, cyclic)
	// Run is fresh per call, so it has no record of other packages'
	// callables; marking every item outside pkgID as done makes
	// analyzeItem return at once for them, and a cross-package call reads
	// the entries that survived the Clear above exactly as it would for a
	// package analyzed earlier in the same AnalyzeAll pass.
	run.markForeignPackagesDone(store, pkgID)

	pkg.Items.Iter(func(itemID fir.LocalItemID, item fir.Item) {
		run.analyzeItem(fir.StoreItemID{Package: pkgID, Item: itemID})
	})

	return prior
}

// filterPackageCyclic restricts a whole-store cyclic set to the nodes
// belonging to one package, so re-seeding conservative summaries during a
// single-package reanalysis never touches another package's already-final
// results.
func filterPackageCyclic(cyclic map[cycledetect.Node]bool, pkgID fir.PackageID) map[cycledetect.Node]bool {
	out := make(map[cycledetect.Node]bool)
	for n, v := range cyclic {
		if v && n.Package == pkgID {
			out[n] = true
		}
	}
	return out
}

// markForeignPackagesDone seeds run's memoization so it treats every item
// outside pkgID as already analyzed, forcing call resolution to read
// straight from the (unchanged) prior results instead of recursing into
// another package's body.
func (r *Run) markForeignPackagesDone(store *fir.PackageStore, pkgID fir.PackageID) {
	store.Packages(func(id fir.PackageID, pkg *fir.Package) {
		if id == pkgID {
			return
		}
		pkg.Items.Iter(func(itemID fir.LocalItemID, _ fir.Item) {
			r.done[fir.StoreItemID{Package: id, Item: itemID}] = true
		})
	})
}

// markPackagesDone seeds run's memoization so it treats every item in the
// given packages as already analyzed. AnalyzeAllParallel uses this to tell a
// layer member's Run that every earlier layer is frozen: those packages'
// entries in props are already fully written and happen-before this layer
// by the errgroup.Wait barrier between layers, so call resolution must read
// them, never re-walk them.
func (r *Run) markPackagesDone(store *fir.PackageStore, pkgIDs []fir.PackageID) {
	for _, id := range pkgIDs {
		pkg, ok := store.Get(id)
		if !ok {
			continue
		}
		pkg.Items.Iter(func(itemID fir.LocalItemID, _ fir.Item) {
			r.done[fir.StoreItemID{Package: id, Item: itemID}] = true
		})
	}
}
