// Package overrider supplies hand-authored generator sets for intrinsic
// callables: the small set of runtime-provided functions and operations
// (measurement, gates, diagnostics) that have no source body for the core
// analyzer to walk. Consulted before descending into a callable's
// implementation; if the callable is intrinsic, the table's entry is the
// answer and the core analyzer never looks at (and never needs) a body.
//
// The qubit-only-parameter shape this table encodes for gate operations
// mirrors how qsc_circuit's operations.rs classifies callables by their
// parameter shape (qubit vs qubit-array vs other) to decide how to treat
// them structurally; the concrete intrinsic vocabulary (X, H, CNOT, M,
// Reset, rotation gates, diagnostics) is the standard Q# runtime surface.
package overrider

import (
	"rca/internal/capability"
	"rca/internal/generatorset"
)

// classicalUnitGate is the generator set for an intrinsic that takes only
// qubit (and possibly angle) parameters, has no statically observable
// return value, and whose own application contributes no runtime feature
// regardless of whether its arguments are dynamic: single-qubit and
// multi-qubit gates (X, H, CNOT, SWAP, ...).
func classicalUnitGate(arity int) generatorset.ApplicationGeneratorSet {
	apps := make([]generatorset.ParamApplication, arity)
	for i := range apps {
		apps[i] = generatorset.NewElementApplication(capability.Classical)
	}
	return generatorset.ApplicationGeneratorSet{Inherent: capability.Classical, DynamicParamApplications: apps}
}

// rotationGate is the generator set for a gate parameterized by a
// classical or dynamic rotation angle followed by one or more qubits: a
// dynamic angle contributes UseOfDynamicDouble, a dynamic qubit argument
// contributes nothing (allocation dynamism is tracked at the allocation
// site, not at each use).
func rotationGate(qubitArity int) generatorset.ApplicationGeneratorSet {
	angleDelta := generatorset.NewElementApplication(capability.NewQuantum(capability.QuantumProperties{
		RuntimeFeatures: capability.UseOfDynamicDouble,
	}))
	apps := make([]generatorset.ParamApplication, 0, 1+qubitArity)
	apps = append(apps, angleDelta)
	for i := 0; i < qubitArity; i++ {
		apps = append(apps, generatorset.NewElementApplication(capability.Classical))
	}
	return generatorset.ApplicationGeneratorSet{Inherent: capability.Classical, DynamicParamApplications: apps}
}

// measurement is M's generator set: the result is always dynamic -
// measurement outcomes are never known pre-runtime - independent of
// whether the measured qubit was itself dynamically allocated.
func measurement() generatorset.ApplicationGeneratorSet {
	return generatorset.ApplicationGeneratorSet{
		Inherent: capability.NewQuantum(capability.QuantumProperties{
			Value: capability.NewElement(capability.Dynamic),
		}),
		DynamicParamApplications: []generatorset.ParamApplication{
			generatorset.NewElementApplication(capability.Classical),
		},
	}
}

// diagnosticBool is a classical-result diagnostic query over qubits
// (CheckZero and similar): its result is statically classified even though
// it inspects quantum state, because it is a debugging affordance evaluated
// outside the normal runtime-capability model.
func diagnosticBool(arity int) generatorset.ApplicationGeneratorSet {
	return classicalUnitGate(arity)
}

// Table maps a callable's fully qualified name to its hand-authored
// generator set. Namespace-qualified names match how the source FIR would
// resolve an intrinsic reference.
var Table = map[string]generatorset.ApplicationGeneratorSet{
	"Microsoft.Quantum.Intrinsic.X":          classicalUnitGate(1),
	"Microsoft.Quantum.Intrinsic.Y":          classicalUnitGate(1),
	"Microsoft.Quantum.Intrinsic.Z":          classicalUnitGate(1),
	"Microsoft.Quantum.Intrinsic.H":          classicalUnitGate(1),
	"Microsoft.Quantum.Intrinsic.S":          classicalUnitGate(1),
	"Microsoft.Quantum.Intrinsic.T":          classicalUnitGate(1),
	"Microsoft.Quantum.Intrinsic.SWAP":       classicalUnitGate(2),
	"Microsoft.Quantum.Intrinsic.CNOT":       classicalUnitGate(2),
	"Microsoft.Quantum.Intrinsic.CCNOT":      classicalUnitGate(3),
	"Microsoft.Quantum.Intrinsic.Rx":         rotationGate(1),
	"Microsoft.Quantum.Intrinsic.Ry":         rotationGate(1),
	"Microsoft.Quantum.Intrinsic.Rz":         rotationGate(1),
	"Microsoft.Quantum.Intrinsic.R1":         rotationGate(1),
	"Microsoft.Quantum.Intrinsic.Reset":      classicalUnitGate(1),
	"Microsoft.Quantum.Intrinsic.M":          measurement(),
	"Microsoft.Quantum.Diagnostics.CheckZero": diagnosticBool(1),
	"Microsoft.Quantum.Diagnostics.DumpMachine": classicalUnitGate(1),
}

// Lookup returns the generator set for a fully qualified intrinsic name.
func Lookup(fqName string) (generatorset.ApplicationGeneratorSet, bool) {
	gs, ok := Table[fqName]
	return gs, ok
}
