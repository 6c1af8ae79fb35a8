// Package generatorset implements the application generator set: the core
// per-callable (and per-block/stmt/expr) summary that RCA computes, and the
// specialization algorithm that turns it plus a concrete argument list into
// a call site's ComputeKind.
package generatorset

import (
	"fmt"

	"rca/internal/capability"
)

// paramApplicationVariant discriminates the ParamApplication sum type.
type paramApplicationVariant int

const (
	variantElement paramApplicationVariant = iota
	variantArray
)

// ArrayParamApplication holds the three non-trivial deltas of an
// array-typed parameter's (content, size) product lattice. The fourth
// point - both static - needs no delta: it is already folded into the
// generator set's inherent ComputeKind.
type ArrayParamApplication struct {
	StaticContentDynamicSize  capability.ComputeKind
	DynamicContentStaticSize  capability.ComputeKind
	DynamicContentDynamicSize capability.ComputeKind
}

// ParamApplication is the delta contributed by one parameter when its
// argument is dynamic: a single ComputeKind for non-array parameters, or
// three deltas (one per non-trivial lattice point) for array parameters.
type ParamApplication struct {
	variant paramApplicationVariant
	element capability.ComputeKind
	array   ArrayParamApplication
}

// NewElementApplication builds a ParamApplication for a non-array
// parameter.
func NewElementApplication(delta capability.ComputeKind) ParamApplication {
	return ParamApplication{variant: variantElement, element: delta}
}

// NewArrayApplication builds a ParamApplication for an array parameter.
func NewArrayApplication(deltas ArrayParamApplication) ParamApplication {
	return ParamApplication{variant: variantArray, array: deltas}
}

// IsArray reports whether p is the Array variant.
func (p ParamApplication) IsArray() bool {
	return p.variant == variantArray
}

// Element returns the non-array delta. It panics if p is the Array
// variant.
func (p ParamApplication) Element() capability.ComputeKind {
	if p.variant != variantElement {
		panic("generatorset: Element called on Array ParamApplication")
	}
	return p.element
}

// Array returns the array deltas. It panics if p is the Element variant.
func (p ParamApplication) Array() ArrayParamApplication {
	if p.variant != variantArray {
		panic("generatorset: Array called on Element ParamApplication")
	}
	return p.array
}

// ApplicationGeneratorSet is a closure over a callable's parameters:
// Inherent is the ComputeKind when every argument is statically known;
// DynamicParamApplications holds one ParamApplication per parameter, in
// parameter order, giving the delta contributed when that argument is
// dynamic.
type ApplicationGeneratorSet struct {
	Inherent                 capability.ComputeKind
	DynamicParamApplications []ParamApplication
}

// Classical is the generator set for a node with no parameters and no
// runtime feature use.
var Classical = ApplicationGeneratorSet{Inherent: capability.Classical}

// Specialize computes the ComputeKind of a call site given the value kinds
// of its concrete arguments, per parameter. It panics if len(args) does not
// equal the arity recorded by DynamicParamApplications - a mismatched
// arity is a programmer error in the caller, never a condition RCA
// recovers from.
func (g ApplicationGeneratorSet) Specialize(args []capability.ValueKind) capability.ComputeKind {
	if len(args) != len(g.DynamicParamApplications) {
		panic(fmt.Sprintf("generatorset: arity mismatch: got %d arguments, want %d", len(args), len(g.DynamicParamApplications)))
	}

	result := g.Inherent
	for i, pa := range g.DynamicParamApplications {
		arg := args[i]

		if pa.IsArray() {
			mapped := arg.ProjectOntoVariant(capability.NewArray(capability.Static, capability.Static))
			content, size := mapped.ArrayContent(), mapped.ArraySize()
			switch {
			case content == capability.Static && size == capability.Static:
				// No delta: already folded into inherent.
			case content == capability.Dynamic && size == capability.Static:
				result = result.Aggregate(pa.Array().DynamicContentStaticSize)
			case content == capability.Static && size == capability.Dynamic:
				result = result.Aggregate(pa.Array().StaticContentDynamicSize)
			default:
				result = result.Aggregate(pa.Array().DynamicContentDynamicSize)
			}
			continue
		}

		mapped := arg.ProjectOntoVariant(capability.NewElement(capability.Static))
		if mapped.Element() == capability.Dynamic {
			result = result.Aggregate(pa.Element())
		}
	}
	return result
}
