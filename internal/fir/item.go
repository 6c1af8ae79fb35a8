package fir

// ItemKind discriminates a top-level (or block-scoped local) item.
type ItemKind int

const (
	ItemCallable ItemKind = iota
	ItemType
)

// Item is one declaration in a package: a callable or a type definition.
// Type definitions carry no behavior RCA cares about beyond existing, so
// only Callable is populated for ItemCallable items.
type Item struct {
	Kind     ItemKind
	Callable *Callable
}

// SpecKind names one of a callable's up-to-four specializations.
type SpecKind int

const (
	SpecBody SpecKind = iota
	SpecAdj
	SpecCtl
	SpecCtlAdj
)

// SpecImpl is one specialization's implementation: either a body block (for
// a callable with source) or an intrinsic marker (no body, consulted via
// the overrider table).
type SpecImpl struct {
	Intrinsic bool
	Block     BlockID // valid when !Intrinsic
}

// Callable is a function or operation declaration.
type Callable struct {
	Name string
	Kind CallableKind

	// Input is the callable's parameter pattern; InputTy is its type
	// (a tuple type when there is more than one parameter).
	Input   PatID
	InputTy Ty
	Output  Ty

	// Specs holds whichever of the four specializations this callable
	// declares. SpecBody is always present for a non-intrinsic callable.
	Specs map[SpecKind]SpecImpl
}

// Arity returns the callable's declared parameter count, derived from the
// shape of its input pattern/type: a tuple type contributes one parameter
// per field, anything else (including Unit) contributes exactly one -
// matching the convention that `()` is itself the sole argument of a
// zero-information parameter list.
func (c *Callable) Arity() int {
	if c.InputTy.Kind == TyTuple {
		return len(c.InputTy.Fields)
	}
	return 1
}

// ParamTypes returns the declared type of each parameter in order, per the
// same convention as Arity.
func (c *Callable) ParamTypes() []Ty {
	if c.InputTy.Kind == TyTuple {
		return c.InputTy.Fields
	}
	return []Ty{c.InputTy}
}
