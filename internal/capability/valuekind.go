package capability

// RuntimeKind is the two-point lattice Static ⊑ Dynamic. Static is bottom:
// a value whose shape or content is known entirely at compile time.
type RuntimeKind int

const (
	Static RuntimeKind = iota
	Dynamic
)

func (k RuntimeKind) String() string {
	if k == Dynamic {
		return "Dynamic"
	}
	return "Static"
}

// Join returns the least upper bound of k and other: Dynamic if either is
// Dynamic, Static only if both are Static.
func (k RuntimeKind) Join(other RuntimeKind) RuntimeKind {
	if k == Dynamic || other == Dynamic {
		return Dynamic
	}
	return Static
}

// valueKindVariant discriminates the ValueKind sum type.
type valueKindVariant int

const (
	variantElement valueKindVariant = iota
	variantArray
)

// ValueKind classifies the runtime shape of a value: a scalar Element with
// one RuntimeKind, or an Array with independent content and size
// RuntimeKinds. The two variants only join with each other; joining across
// variants requires ProjectOntoVariant first.
type ValueKind struct {
	variant valueKindVariant

	// element is meaningful when variant == variantElement.
	element RuntimeKind

	// arrayContent and arraySize are meaningful when variant == variantArray.
	arrayContent RuntimeKind
	arraySize    RuntimeKind
}

// NewElement constructs a scalar ValueKind.
func NewElement(kind RuntimeKind) ValueKind {
	return ValueKind{variant: variantElement, element: kind}
}

// NewArray constructs an array ValueKind with independently tracked content
// and size runtime kinds.
func NewArray(content, size RuntimeKind) ValueKind {
	return ValueKind{variant: variantArray, arrayContent: content, arraySize: size}
}

// IsArray reports whether v is the Array variant.
func (v ValueKind) IsArray() bool {
	return v.variant == variantArray
}

// Element returns the scalar RuntimeKind. It panics if v is not an Element;
// callers must check IsArray first.
func (v ValueKind) Element() RuntimeKind {
	if v.variant != variantElement {
		panic("capability: Element called on Array ValueKind")
	}
	return v.element
}

// ArrayContent returns the content RuntimeKind of an Array ValueKind.
func (v ValueKind) ArrayContent() RuntimeKind {
	if v.variant != variantArray {
		panic("capability: ArrayContent called on Element ValueKind")
	}
	return v.arrayContent
}

// ArraySize returns the size RuntimeKind of an Array ValueKind.
func (v ValueKind) ArraySize() RuntimeKind {
	if v.variant != variantArray {
		panic("capability: ArraySize called on Element ValueKind")
	}
	return v.arraySize
}

// IsStatic reports whether every dimension of v is Static.
func (v ValueKind) IsStatic() bool {
	if v.variant == variantElement {
		return v.element == Static
	}
	return v.arrayContent == Static && v.arraySize == Static
}

// ProjectOntoVariant reconciles v with target's variant when the two
// disagree, as happens when a classical scalar flows into a position
// declared to hold an array (or vice versa) through a generic binding. The
// projected value takes target's variant and folds v's own dynamism into
// every dimension of the result, so no information about v is silently lost.
func (v ValueKind) ProjectOntoVariant(target ValueKind) ValueKind {
	if v.variant == target.variant {
		return v
	}
	runtime := v.worstCaseRuntimeKind()
	if target.variant == variantElement {
		return NewElement(runtime)
	}
	return NewArray(runtime, runtime)
}

// worstCaseRuntimeKind collapses v to a single RuntimeKind by joining every
// dimension it tracks.
func (v ValueKind) worstCaseRuntimeKind() RuntimeKind {
	if v.variant == variantElement {
		return v.element
	}
	return v.arrayContent.Join(v.arraySize)
}

// AsDynamic preserves v's variant but forces every dimension it tracks to
// Dynamic: the shape a value takes when something outside its own
// definition (e.g. the dynamic condition selecting which branch produced it)
// makes it unknowable pre-runtime, regardless of how static its own
// constituent parts looked in isolation.
func (v ValueKind) AsDynamic() ValueKind {
	if v.variant == variantElement {
		return NewElement(Dynamic)
	}
	return NewArray(Dynamic, Dynamic)
}

// Aggregate joins v with other. Both must share a variant - a cross-variant
// join is a programmer error at the call site, which must project first via
// ProjectOntoVariant; Aggregate itself never does so silently.
func (v ValueKind) Aggregate(other ValueKind) ValueKind {
	if v.variant != other.variant {
		panic("capability: Aggregate called on mismatched ValueKind variants; project first")
	}
	if v.variant == variantElement {
		return NewElement(v.element.Join(other.element))
	}
	return NewArray(v.arrayContent.Join(other.arrayContent), v.arraySize.Join(other.arraySize))
}

func (v ValueKind) String() string {
	if v.variant == variantElement {
		return "Element(" + v.element.String() + ")"
	}
	return "Array(content=" + v.arrayContent.String() + ", size=" + v.arraySize.String() + ")"
}
