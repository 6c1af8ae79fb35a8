package analyzer

import "rca/internal/fir"

// packageLayers groups store's packages into topological layers: layer 0
// holds every package with no dependency on another package in store, layer
// k holds every remaining package whose cross-package references all land
// in layers < k. Two packages in the same layer never reference one
// another, so AnalyzeAllParallel can safely run one goroutine per member of
// a layer and only needs to join the whole layer - not the whole store -
// before starting the next.
//
// A package's dependency set is over-approximated as "every package any
// ExprGlobal in it points at": this only ever adds edges, never misses one,
// so the layering stays safe even though it may be coarser than the true
// per-item dependency graph.
func packageLayers(store *fir.PackageStore) [][]fir.PackageID {
	order := store.Order()
	deps := make(map[fir.PackageID]map[fir.PackageID]bool, len(order))
	for _, id := range order {
		deps[id] = packageDependencies(store, id)
	}

	resolved := make(map[fir.PackageID]bool, len(order))
	var layers [][]fir.PackageID
	remaining := order
	for len(remaining) > 0 {
		var layer []fir.PackageID
		var next []fir.PackageID
		for _, id := range remaining {
			ready := true
			for dep := range deps[id] {
				if dep != id && !resolved[dep] {
					ready = false
					break
				}
			}
			if ready {
				layer = append(layer, id)
			} else {
				next = append(next, id)
			}
		}
		if len(layer) == 0 {
			// A genuine cross-package cycle (or a dependency on a package
			// absent from the store): fall back to finishing the rest
			// sequentially, one package per layer, rather than risk
			// racing on an unresolved ordering.
			for _, id := range next {
				layers = append(layers, []fir.PackageID{id})
			}
			return layers
		}
		for _, id := range layer {
			resolved[id] = true
		}
		layers = append(layers, layer)
		remaining = next
	}
	return layers
}

// packageDependencies collects every other package referenced by an
// ExprGlobal anywhere in pkgID's expressions.
func packageDependencies(store *fir.PackageStore, pkgID fir.PackageID) map[fir.PackageID]bool {
	deps := make(map[fir.PackageID]bool)
	pkg, ok := store.Get(pkgID)
	if !ok {
		return deps
	}
	pkg.Expr.Iter(func(_ fir.ExprID, e fir.Expr) {
		if e.Kind == fir.ExprGlobal && e.Global.Package != pkgID {
			deps[e.Global.Package] = true
		}
	})
	return deps
}
