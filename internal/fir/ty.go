package fir

// TyKind discriminates the shape of a declared type.
type TyKind int

const (
	TyUnit TyKind = iota
	TyBool
	TyInt
	TyBigInt
	TyDouble
	TyString
	TyQubit
	TyResult
	TyPauli
	TyRange
	TyArray
	TyTuple
	TyUdt
	TyArrow
	TyInfer // unresolved type, surfaced after earlier error recovery
)

// CallableKind distinguishes a function (no quantum side effects by
// construction) from an operation (may act on qubits and carries functor
// specializations).
type CallableKind int

const (
	Function CallableKind = iota
	Operation
)

// Ty is a declared type as seen by RCA: just enough structural shape to
// drive ValueKind construction and closure-capture classification. It never
// carries source spans or resolution diagnostics - those stay upstream.
type Ty struct {
	Kind TyKind

	// Elem is the element type when Kind == TyArray.
	Elem *Ty

	// Fields holds member types when Kind == TyTuple or TyUdt.
	Fields []Ty

	// ArrowInput, ArrowOutput, and ArrowKind are meaningful when
	// Kind == TyArrow: the type of a first-class function or operation
	// value, as captured by a lambda or stored in a variable.
	ArrowInput  *Ty
	ArrowOutput *Ty
	ArrowKind   CallableKind
}

// Unit is the canonical unit type.
var Unit = Ty{Kind: TyUnit}

// IsArray reports whether t is an array type. It implements
// capability.TypeShape.
func (t Ty) IsArray() bool {
	return t.Kind == TyArray
}

// IsUnit reports whether t is the unit type. It implements
// capability.TypeShape.
func (t Ty) IsUnit() bool {
	return t.Kind == TyUnit
}

// NewArray builds an array type with the given element type.
func NewArray(elem Ty) Ty {
	return Ty{Kind: TyArray, Elem: &elem}
}

// NewTuple builds a tuple type from its field types.
func NewTuple(fields ...Ty) Ty {
	return Ty{Kind: TyTuple, Fields: fields}
}

// NewUdt builds a user-defined-type reference with the given underlying
// field types (for structural aggregation purposes RCA treats a UDT like a
// tuple of its fields).
func NewUdt(fields ...Ty) Ty {
	return Ty{Kind: TyUdt, Fields: fields}
}

// NewArrow builds a first-class callable-value type.
func NewArrow(kind CallableKind, input, output Ty) Ty {
	return Ty{Kind: TyArrow, ArrowInput: &input, ArrowOutput: &output, ArrowKind: kind}
}
