package capability

// computeKindVariant discriminates the ComputeKind sum type.
type computeKindVariant int

const (
	variantClassical computeKindVariant = iota
	variantQuantum
)

// QuantumProperties carries the two facts that distinguish one Quantum
// ComputeKind from another: which runtime features it exercises, and the
// runtime shape of the value it produces.
type QuantumProperties struct {
	RuntimeFeatures RuntimeFeatureFlags
	Value           ValueKind
}

// ComputeKind is the two-point-plus-payload lattice at the center of the
// analysis: Classical is bottom, Quantum carries QuantumProperties. Joining
// two Quantum kinds unions their features and joins their value kinds;
// joining Classical with anything returns the other operand unchanged.
type ComputeKind struct {
	variant computeKindVariant
	quantum QuantumProperties
}

// Classical is the bottom element: no runtime feature use, value shape known
// statically.
var Classical = ComputeKind{variant: variantClassical}

// NewQuantum constructs a Quantum ComputeKind.
func NewQuantum(props QuantumProperties) ComputeKind {
	return ComputeKind{variant: variantQuantum, quantum: props}
}

// IsClassical reports whether k is the bottom element.
func (k ComputeKind) IsClassical() bool {
	return k.variant == variantClassical
}

// IsQuantum reports whether k carries QuantumProperties.
func (k ComputeKind) IsQuantum() bool {
	return k.variant == variantQuantum
}

// QuantumProperties returns the payload of a Quantum ComputeKind. It panics
// if k is Classical; callers must check IsQuantum first.
func (k ComputeKind) QuantumProperties() QuantumProperties {
	if k.variant != variantQuantum {
		panic("capability: QuantumProperties called on Classical ComputeKind")
	}
	return k.quantum
}

// IsDynamic reports whether k is Quantum and its value kind is not entirely
// static - the predicate the core analyzer uses to decide whether a node
// can ever surface a dynamic value to its callers.
func (k ComputeKind) IsDynamic() bool {
	return k.variant == variantQuantum && !k.quantum.Value.IsStatic()
}

// ValueKind returns the runtime shape of k's value: Classical values are
// always a static Element, matching the fact that a classical computation
// can never itself be dynamic.
func (k ComputeKind) ValueKind() ValueKind {
	if k.variant == variantClassical {
		return NewElement(Static)
	}
	return k.quantum.Value
}

// ValueKindOrDefault returns k's value kind, or def when k is Classical.
func (k ComputeKind) ValueKindOrDefault(def ValueKind) ValueKind {
	if k.variant == variantClassical {
		return def
	}
	return k.quantum.Value
}

// RuntimeFeatures returns the feature set k exercises; Classical always
// contributes none.
func (k ComputeKind) RuntimeFeatures() RuntimeFeatureFlags {
	if k.variant == variantClassical {
		return 0
	}
	return k.quantum.RuntimeFeatures
}

// Aggregate returns the least upper bound of k and other.
func (k ComputeKind) Aggregate(other ComputeKind) ComputeKind {
	if k.variant == variantClassical {
		return other
	}
	if other.variant == variantClassical {
		return k
	}
	return NewQuantum(QuantumProperties{
		RuntimeFeatures: k.quantum.RuntimeFeatures | other.quantum.RuntimeFeatures,
		Value:           k.quantum.Value.Aggregate(other.quantum.Value),
	})
}

// AggregateRuntimeFeatures folds the runtime features of value into k,
// taking k's own value kind (or defaultValueKind if k was Classical) rather
// than value's. This is the primitive the core analyzer uses when a
// sub-expression contributes feature usage that must be recorded on the
// parent node without overwriting the parent's own value kind - for
// example, a dynamic index operand whose dynamism is a feature of the
// indexing expression, not of the expression being indexed.
func (k ComputeKind) AggregateRuntimeFeatures(value ComputeKind, defaultValueKind ValueKind) ComputeKind {
	if value.variant == variantClassical {
		return k
	}
	runtimeFeatures := value.quantum.RuntimeFeatures
	if k.variant == variantQuantum {
		runtimeFeatures |= k.quantum.RuntimeFeatures
	}
	valueKind := defaultValueKind
	if k.variant == variantQuantum {
		valueKind = k.quantum.Value
	}
	return NewQuantum(QuantumProperties{RuntimeFeatures: runtimeFeatures, Value: valueKind})
}

// AggregateValueKind folds an additional ValueKind into k's own value kind.
// It panics if k is Classical: a value kind can only be aggregated onto a
// node that is already known to be Quantum.
func (k ComputeKind) AggregateValueKind(value ValueKind) ComputeKind {
	if k.variant != variantQuantum {
		panic("capability: AggregateValueKind called on Classical ComputeKind")
	}
	return NewQuantum(QuantumProperties{
		RuntimeFeatures: k.quantum.RuntimeFeatures,
		Value:           k.quantum.Value.Aggregate(value),
	})
}

func (k ComputeKind) String() string {
	if k.variant == variantClassical {
		return "Classical"
	}
	return "Quantum(features=" + k.quantum.RuntimeFeatures.String() + ", value=" + k.quantum.Value.String() + ")"
}
