// Package capability implements the runtime capability and value lattice:
// the bitflag vocabulary of runtime features, the two-point RuntimeKind
// lattice, the ValueKind product lattice, and the ComputeKind join
// semilattice built on top of them.
package capability

import "strings"

// RuntimeFeatureFlags is a bitflag set over the closed vocabulary of
// capability-relevant program events. Bit position is semantic identity and
// is part of the external contract - it must not be renumbered.
type RuntimeFeatureFlags uint32

const (
	UseOfDynamicBool RuntimeFeatureFlags = 1 << iota
	UseOfDynamicInt
	UseOfDynamicPauli
	UseOfDynamicRange
	UseOfDynamicDouble
	UseOfDynamicQubit
	UseOfDynamicBigInt
	UseOfDynamicString
	UseOfDynamicallySizedArray
	UseOfDynamicUdt
	UseOfDynamicArrowFunction
	UseOfDynamicArrowOperation
	CallToCyclicFunctionWithDynamicArg
	CyclicOperationSpec
	CallToCyclicOperation
	CallToDynamicCallee
	CallToUnresolvedCallee
	ForwardBranchingOnDynamicValue
	DynamicQubitAllocation
	DynamicResultAllocation
	UseOfDynamicIndex
	ReturnWithinDynamicScope
	LoopWithDynamicCondition
	UseOfClosure
)

var featureNames = []struct {
	flag RuntimeFeatureFlags
	name string
}{
	{UseOfDynamicBool, "UseOfDynamicBool"},
	{UseOfDynamicInt, "UseOfDynamicInt"},
	{UseOfDynamicPauli, "UseOfDynamicPauli"},
	{UseOfDynamicRange, "UseOfDynamicRange"},
	{UseOfDynamicDouble, "UseOfDynamicDouble"},
	{UseOfDynamicQubit, "UseOfDynamicQubit"},
	{UseOfDynamicBigInt, "UseOfDynamicBigInt"},
	{UseOfDynamicString, "UseOfDynamicString"},
	{UseOfDynamicallySizedArray, "UseOfDynamicallySizedArray"},
	{UseOfDynamicUdt, "UseOfDynamicUdt"},
	{UseOfDynamicArrowFunction, "UseOfDynamicArrowFunction"},
	{UseOfDynamicArrowOperation, "UseOfDynamicArrowOperation"},
	{CallToCyclicFunctionWithDynamicArg, "CallToCyclicFunctionWithDynamicArg"},
	{CyclicOperationSpec, "CyclicOperationSpec"},
	{CallToCyclicOperation, "CallToCyclicOperation"},
	{CallToDynamicCallee, "CallToDynamicCallee"},
	{CallToUnresolvedCallee, "CallToUnresolvedCallee"},
	{ForwardBranchingOnDynamicValue, "ForwardBranchingOnDynamicValue"},
	{DynamicQubitAllocation, "DynamicQubitAllocation"},
	{DynamicResultAllocation, "DynamicResultAllocation"},
	{UseOfDynamicIndex, "UseOfDynamicIndex"},
	{ReturnWithinDynamicScope, "ReturnWithinDynamicScope"},
	{LoopWithDynamicCondition, "LoopWithDynamicCondition"},
	{UseOfClosure, "UseOfClosure"},
}

// Contains reports whether every bit set in other is also set in f.
func (f RuntimeFeatureFlags) Contains(other RuntimeFeatureFlags) bool {
	return f&other == other
}

// Intersects reports whether f and other share any set bit.
func (f RuntimeFeatureFlags) Intersects(other RuntimeFeatureFlags) bool {
	return f&other != 0
}

// String renders f as a pipe-joined list of set feature names, or "<empty>".
func (f RuntimeFeatureFlags) String() string {
	if f == 0 {
		return "<empty>"
	}
	var names []string
	for _, entry := range featureNames {
		if f.Contains(entry.flag) {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, " | ")
}

// RuntimeCapabilityFlags is the coarse external classification of target
// hardware power that a set of runtime features maps onto.
type RuntimeCapabilityFlags uint32

const (
	ForwardBranching RuntimeCapabilityFlags = 1 << iota
	IntegerComputations
	FloatingPointComputations
	BackwardsBranching
	HigherLevelConstructs
)

var capabilityNames = []struct {
	flag RuntimeCapabilityFlags
	name string
}{
	{ForwardBranching, "ForwardBranching"},
	{IntegerComputations, "IntegerComputations"},
	{FloatingPointComputations, "FloatingPointComputations"},
	{BackwardsBranching, "BackwardsBranching"},
	{HigherLevelConstructs, "HigherLevelConstructs"},
}

func (c RuntimeCapabilityFlags) Intersects(other RuntimeCapabilityFlags) bool {
	return c&other != 0
}

func (c RuntimeCapabilityFlags) String() string {
	if c == 0 {
		return "<empty>"
	}
	var names []string
	for _, entry := range capabilityNames {
		if c&entry.flag != 0 {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, " | ")
}

// featureCapability is the per-feature capability bucket table from the
// external contract. It must be preserved bit-for-bit: qsc_linter and other
// downstream consumers key target-profile validation off it.
var featureCapability = map[RuntimeFeatureFlags]RuntimeCapabilityFlags{
	UseOfDynamicBool:                    ForwardBranching,
	UseOfDynamicInt:                     IntegerComputations,
	UseOfDynamicPauli:                   IntegerComputations,
	UseOfDynamicRange:                   IntegerComputations,
	UseOfDynamicDouble:                  FloatingPointComputations,
	UseOfDynamicQubit:                   HigherLevelConstructs,
	UseOfDynamicBigInt:                  HigherLevelConstructs,
	UseOfDynamicString:                  HigherLevelConstructs,
	UseOfDynamicallySizedArray:          HigherLevelConstructs,
	UseOfDynamicUdt:                     HigherLevelConstructs,
	UseOfDynamicArrowFunction:           HigherLevelConstructs,
	UseOfDynamicArrowOperation:          HigherLevelConstructs,
	CallToCyclicFunctionWithDynamicArg:  HigherLevelConstructs,
	CyclicOperationSpec:                 HigherLevelConstructs,
	CallToCyclicOperation:               HigherLevelConstructs,
	CallToDynamicCallee:                 HigherLevelConstructs,
	CallToUnresolvedCallee:              HigherLevelConstructs,
	ForwardBranchingOnDynamicValue:      ForwardBranching,
	DynamicQubitAllocation:              HigherLevelConstructs,
	DynamicResultAllocation:             HigherLevelConstructs,
	UseOfDynamicIndex:                   HigherLevelConstructs,
	ReturnWithinDynamicScope:            ForwardBranching,
	LoopWithDynamicCondition:            BackwardsBranching,
	UseOfClosure:                        HigherLevelConstructs,
}

// RuntimeCapabilities maps the set features in f to the coarse capability
// buckets they require, ORing every bucket of every set bit together.
func (f RuntimeFeatureFlags) RuntimeCapabilities() RuntimeCapabilityFlags {
	var caps RuntimeCapabilityFlags
	for _, entry := range featureNames {
		if f.Contains(entry.flag) {
			caps |= featureCapability[entry.flag]
		}
	}
	return caps
}

// ContributingFeatures returns the subset of set features in f whose bucket
// intersects caps.
func (f RuntimeFeatureFlags) ContributingFeatures(caps RuntimeCapabilityFlags) RuntimeFeatureFlags {
	var contributing RuntimeFeatureFlags
	for _, entry := range featureNames {
		if f.Contains(entry.flag) && featureCapability[entry.flag].Intersects(caps) {
			contributing |= entry.flag
		}
	}
	return contributing
}
