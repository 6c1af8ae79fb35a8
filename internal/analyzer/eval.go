// Package analyzer implements the core abstract interpreter that derives
// an application generator set for every callable specialization, plus the
// top-level orchestration entry points that drive it over a whole store or
// a single reanalyzed package.
package analyzer

import (
	"fmt"

	"rca/internal/capability"
	"rca/internal/cycledetect"
	"rca/internal/fir"
	"rca/internal/generatorset"
	"rca/internal/overrider"
	"rca/internal/rcalog"
	"rca/internal/rcaprops"
)

// Run holds everything one whole-store or single-package analysis needs:
// the read-only input store, the output store being populated, the set of
// cyclic specializations pre-seeded by internal/cyclicoverride, and the
// memoization state that lets callables be analyzed in whatever order
// their callers happen to reach them.
type Run struct {
	store  *fir.PackageStore
	props  *rcaprops.PackageStoreComputeProperties
	cyclic map[cycledetect.Node]bool

	done       map[fir.StoreItemID]bool
	inProgress map[fir.StoreItemID]bool
}

func newRun(store *fir.PackageStore, props *rcaprops.PackageStoreComputeProperties, cyclic map[cycledetect.Node]bool) *Run {
	return &Run{
		store:      store,
		props:      props,
		cyclic:     cyclic,
		done:       make(map[fir.StoreItemID]bool),
		inProgress: make(map[fir.StoreItemID]bool),
	}
}

// analyzeItem ensures the item at id has a fully computed
// CallableComputeProperties in r.props, analyzing it (and, transitively,
// whatever non-cyclic callees it reaches first) if it has not been visited
// yet this run.
func (r *Run) analyzeItem(id fir.StoreItemID) {
	if r.done[id] {
		return
	}
	if r.inProgress[id] {
		panic(fmt.Sprintf("analyzer: cycle reached %+v outside the pre-seeded cyclic set", id))
	}

	pkg, ok := r.store.Get(id.Package)
	if !ok {
		return
	}
	item, ok := pkg.Item(id.Item)
	if !ok || item.Kind != fir.ItemCallable || item.Callable == nil {
		r.done[id] = true
		return
	}
	callable := item.Callable

	r.inProgress[id] = true
	result := rcaprops.CallableComputeProperties{}
	for _, specKind := range []fir.SpecKind{fir.SpecBody, fir.SpecAdj, fir.SpecCtl, fir.SpecCtlAdj} {
		impl, declared := callable.Specs[specKind]
		if !declared {
			continue
		}
		node := cycledetect.Node{Package: id.Package, Item: id.Item, Spec: specKind}
		var gs generatorset.ApplicationGeneratorSet
		if r.cyclic[node] {
			gs = readSpec(r.props.GetItem(id), specKind)
		} else {
			gs = r.analyzeSpecialization(id, pkg, callable, impl)
		}
		writeSpec(&result, specKind, gs)
	}
	delete(r.inProgress, id)

	r.done[id] = true
	r.props.InsertItem(id, rcaprops.NewCallableProperties(result))
}

func readSpec(item rcaprops.ItemComputeProperties, spec fir.SpecKind) generatorset.ApplicationGeneratorSet {
	switch spec {
	case fir.SpecAdj:
		if item.Callable.Adj != nil {
			return *item.Callable.Adj
		}
	case fir.SpecCtl:
		if item.Callable.Ctl != nil {
			return *item.Callable.Ctl
		}
	case fir.SpecCtlAdj:
		if item.Callable.CtlAdj != nil {
			return *item.Callable.CtlAdj
		}
	}
	return item.Callable.Body
}

func writeSpec(result *rcaprops.CallableComputeProperties, spec fir.SpecKind, gs generatorset.ApplicationGeneratorSet) {
	switch spec {
	case fir.SpecBody:
		result.Body = gs
	case fir.SpecAdj:
		result.Adj = &gs
	case fir.SpecCtl:
		result.Ctl = &gs
	case fir.SpecCtlAdj:
		result.CtlAdj = &gs
	}
}

// analyzeSpecialization computes one specialization's generator set:
// evaluate the body once with every parameter Static (the canonical pass,
// whose per-node results are recorded into r.props), then once more per
// parameter (three times for array-typed parameters) to derive that
// parameter's delta.
func (r *Run) analyzeSpecialization(id fir.StoreItemID, pkg *fir.Package, callable *fir.Callable, impl fir.SpecImpl) generatorset.ApplicationGeneratorSet {
	if impl.Intrinsic {
		return r.lookupIntrinsic(callable)
	}

	paramTypes := callable.ParamTypes()
	binders := paramBinders(callable.Input, pkg)

	inherentEnv := allStaticEnv(binders)
	inherent := reconcileOutput(r.evalBlockWith(id.Package, pkg, impl.Block, inherentEnv, true), callable.Output)

	apps := make([]generatorset.ParamApplication, len(paramTypes))
	for i, ty := range paramTypes {
		if i >= len(binders) {
			apps[i] = generatorset.NewElementApplication(capability.Classical)
			continue
		}
		if ty.IsArray() {
			apps[i] = generatorset.NewArrayApplication(generatorset.ArrayParamApplication{
				DynamicContentStaticSize:  reconcileOutput(r.rerunWithParam(id, pkg, impl.Block, binders, i, capability.NewArray(capability.Dynamic, capability.Static)), callable.Output),
				StaticContentDynamicSize:  reconcileOutput(r.rerunWithParam(id, pkg, impl.Block, binders, i, capability.NewArray(capability.Static, capability.Dynamic)), callable.Output),
				DynamicContentDynamicSize: reconcileOutput(r.rerunWithParam(id, pkg, impl.Block, binders, i, capability.NewArray(capability.Dynamic, capability.Dynamic)), callable.Output),
			})
		} else {
			delta := reconcileOutput(r.rerunWithParam(id, pkg, impl.Block, binders, i, capability.NewElement(capability.Dynamic)), callable.Output)
			apps[i] = generatorset.NewElementApplication(delta)
		}
	}

	return generatorset.ApplicationGeneratorSet{Inherent: inherent, DynamicParamApplications: apps}
}

// reconcileOutput replaces raw's value kind - whatever the body's trailing
// expression happened to compute - with the shape implied by the callable's
// declared output type, while keeping raw's own Classical/Quantum
// discriminant and every runtime feature it accumulated along the way. A
// body's last expression is not necessarily its return value (most
// operations return Unit regardless of what their last statement was), so
// the two must not be conflated: NewDynamicFromType special-cases Unit to
// Element(Static), since a unit value carries no information to be dynamic
// about, no matter how dynamic the body's control flow was.
func reconcileOutput(raw capability.ComputeKind, output fir.Ty) capability.ComputeKind {
	if raw.IsClassical() {
		return raw
	}
	var value capability.ValueKind
	if raw.IsDynamic() {
		value = capability.NewDynamicFromType(output)
	} else {
		value = capability.NewStaticFromType(output)
	}
	return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: raw.RuntimeFeatures(), Value: value})
}

func (r *Run) rerunWithParam(id fir.StoreItemID, pkg *fir.Package, block fir.BlockID, binders []fir.BinderID, index int, value capability.ValueKind) capability.ComputeKind {
	env := allStaticEnv(binders)
	env[binders[index]] = capability.NewQuantum(capability.QuantumProperties{Value: value})
	return r.evalBlockWith(id.Package, pkg, block, env, false)
}

func (r *Run) lookupIntrinsic(callable *fir.Callable) generatorset.ApplicationGeneratorSet {
	if gs, ok := overrider.Lookup(callable.Name); ok {
		return gs
	}
	rcalog.Get(rcalog.CategoryOverrider).Warn("unresolved intrinsic callable %q, assuming worst case", callable.Name)
	apps := make([]generatorset.ParamApplication, callable.Arity())
	for i := range apps {
		apps[i] = generatorset.NewElementApplication(capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: capability.CallToUnresolvedCallee}))
	}
	return generatorset.ApplicationGeneratorSet{
		Inherent:                 capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: capability.CallToUnresolvedCallee, Value: capability.NewElement(capability.Dynamic)}),
		DynamicParamApplications: apps,
	}
}

// paramBinders extracts, in order, the BinderID each of a callable's
// parameters binds, by walking its input pattern.
func paramBinders(patID fir.PatID, pkg *fir.Package) []fir.BinderID {
	pat, ok := pkg.GetPat(patID)
	if !ok {
		return nil
	}
	switch pat.Kind {
	case fir.PatBind:
		return []fir.BinderID{pat.Binder}
	case fir.PatTuple:
		var out []fir.BinderID
		for _, elem := range pat.Elements {
			out = append(out, paramBinders(elem, pkg)...)
		}
		return out
	default:
		return nil
	}
}

func allStaticEnv(binders []fir.BinderID) map[fir.BinderID]capability.ComputeKind {
	env := make(map[fir.BinderID]capability.ComputeKind, len(binders))
	for _, b := range binders {
		env[b] = capability.Classical
	}
	return env
}
