// Package cyclicoverride seeds conservative generator sets for callable
// specializations flagged by internal/cycledetect as participating in a
// call-graph cycle. Seeding these up front breaks what would otherwise be
// unbounded recursion in the core analyzer: once a cyclic callable's
// generator set exists, the core analyzer treats it as opaque, same as any
// other already-analyzed callee.
package cyclicoverride

import (
	"rca/internal/capability"
	"rca/internal/cycledetect"
	"rca/internal/fir"
	"rca/internal/generatorset"
	"rca/internal/rcaprops"
)

// Apply overrides the generator set of every (package, item, spec) in
// cyclic with a conservative summary derived from the callable's kind and
// declared parameter/return types.
func Apply(store *fir.PackageStore, cyclic map[cycledetect.Node]bool, props *rcaprops.PackageStoreComputeProperties) {
	for node := range cyclic {
		pkg, ok := store.Get(node.Package)
		if !ok {
			continue
		}
		item, ok := pkg.Item(node.Item)
		if !ok || item.Kind != fir.ItemCallable || item.Callable == nil {
			continue
		}
		conservative := conservativeGeneratorSet(item.Callable)
		setSpec(props, fir.StoreItemID{Package: node.Package, Item: node.Item}, node.Spec, conservative)
	}
}

// conservativeGeneratorSet builds the worst-case generator set for a cyclic
// callable per spec: a function's inherent stays Classical and each
// parameter contributes CallToCyclicFunctionWithDynamicArg when dynamic; an
// operation's inherent carries CyclicOperationSpec with a quantum value
// kind derived from its return type.
func conservativeGeneratorSet(callable *fir.Callable) generatorset.ApplicationGeneratorSet {
	var inherent capability.ComputeKind
	if callable.Kind == fir.Operation {
		inherent = capability.NewQuantum(capability.QuantumProperties{
			RuntimeFeatures: capability.CyclicOperationSpec,
			Value:           capability.NewDynamicFromType(callable.Output),
		})
	} else {
		inherent = capability.Classical
	}

	paramTypes := callable.ParamTypes()
	apps := make([]generatorset.ParamApplication, len(paramTypes))
	for i, ty := range paramTypes {
		apps[i] = conservativeParamApplication(ty, callable.Kind)
	}

	return generatorset.ApplicationGeneratorSet{Inherent: inherent, DynamicParamApplications: apps}
}

// conservativeParamApplication builds the per-parameter delta a cyclic
// callable contributes when that parameter is dynamic. Per spec, only a
// function's delta carries CallToCyclicFunctionWithDynamicArg; an
// operation's cyclic-call feature (CallToCyclicOperation) is contributed
// once per call site by the core analyzer's call-resolution path, not
// baked into every parameter here - doing both would double-count the
// feature and mislabel an operation's parameter delta with a
// function-specific bit.
func conservativeParamApplication(ty fir.Ty, kind fir.CallableKind) generatorset.ParamApplication {
	var features capability.RuntimeFeatureFlags
	if kind != fir.Operation {
		features = capability.CallToCyclicFunctionWithDynamicArg
	}
	delta := capability.NewQuantum(capability.QuantumProperties{
		RuntimeFeatures: features,
		Value:           capability.NewDynamicFromType(ty),
	})
	if !ty.IsArray() {
		return generatorset.NewElementApplication(delta)
	}
	return generatorset.NewArrayApplication(generatorset.ArrayParamApplication{
		StaticContentDynamicSize:  delta,
		DynamicContentStaticSize:  delta,
		DynamicContentDynamicSize: delta,
	})
}

// setSpec writes generator set gs into the named specialization of the
// item at id, preserving the item's other already-scaffolded
// specializations.
func setSpec(props *rcaprops.PackageStoreComputeProperties, id fir.StoreItemID, spec fir.SpecKind, gs generatorset.ApplicationGeneratorSet) {
	current := props.GetItem(id)
	if !current.IsCallable {
		return
	}
	switch spec {
	case fir.SpecBody:
		current.Callable.Body = gs
	case fir.SpecAdj:
		current.Callable.Adj = &gs
	case fir.SpecCtl:
		current.Callable.Ctl = &gs
	case fir.SpecCtlAdj:
		current.Callable.CtlAdj = &gs
	}
	props.InsertItem(id, current)
}
