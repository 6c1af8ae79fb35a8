// Package fixture loads a package store from a JSON file on disk. RCA
// itself never parses source - lexing, parsing, name resolution, type
// checking, and lowering are explicitly out of scope (spec Non-goals) - so
// a JSON-encoded fir.PackageStore is the only input mechanism exercised by
// the CLI and its tests: a stand-in for whatever earlier compiler stage
// would otherwise hand RCA an in-memory store.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"rca/internal/fir"
)

// Store is the on-disk shape of a package store: one entry per package, in
// dependency order.
type Store struct {
	Packages []Package `json:"packages"`
}

// Package is the on-disk shape of one fir.Package.
type Package struct {
	ID    int32   `json:"id"`
	Items []Item  `json:"items"`
	Block []Block `json:"blocks"`
	Stmt  []Stmt  `json:"stmts"`
	Expr  []Expr  `json:"exprs"`
	Pat   []Pat   `json:"pats"`
}

// Item is the on-disk shape of a fir.Item.
type Item struct {
	ID       int32     `json:"id"`
	Kind     string    `json:"kind"` // "callable" | "type"
	Callable *Callable `json:"callable,omitempty"`
}

// Callable is the on-disk shape of a fir.Callable.
type Callable struct {
	Name    string          `json:"name"`
	Kind    string          `json:"kind"` // "function" | "operation"
	Input   int32           `json:"input"`
	InputTy Ty              `json:"input_ty"`
	Output  Ty              `json:"output"`
	Specs   map[string]Spec `json:"specs"` // "body" | "adj" | "ctl" | "ctl_adj"
}

// Spec is the on-disk shape of a fir.SpecImpl.
type Spec struct {
	Intrinsic bool  `json:"intrinsic"`
	Block     int32 `json:"block"`
}

// Ty is the on-disk shape of a fir.Ty.
type Ty struct {
	Kind        string `json:"kind"`
	Elem        *Ty    `json:"elem,omitempty"`
	Fields      []Ty   `json:"fields,omitempty"`
	ArrowInput  *Ty    `json:"arrow_input,omitempty"`
	ArrowOutput *Ty    `json:"arrow_output,omitempty"`
	ArrowKind   string `json:"arrow_kind,omitempty"`
}

// Block is the on-disk shape of a fir.Block.
type Block struct {
	ID    int32   `json:"id"`
	Stmts []int32 `json:"stmts"`
	Ty    Ty      `json:"ty"`
}

// Stmt is the on-disk shape of a fir.Stmt.
type Stmt struct {
	ID   int32  `json:"id"`
	Kind string `json:"kind"`
	Expr int32  `json:"expr"`
	Pat  int32  `json:"pat"`
	Item int32  `json:"item"`
}

// Expr is the on-disk shape of a fir.Expr.
type Expr struct {
	ID           int32   `json:"id"`
	Kind         string  `json:"kind"`
	Ty           Ty      `json:"ty"`
	Lit          string  `json:"lit,omitempty"`
	Var          int32   `json:"var,omitempty"`
	GlobalPkg    int32   `json:"global_pkg,omitempty"`
	GlobalItem   int32   `json:"global_item,omitempty"`
	Operands     []int32 `json:"operands,omitempty"`
	Stmts        []int32 `json:"stmts,omitempty"`
	Pat          int32   `json:"pat,omitempty"`
	CallableKind string  `json:"callable_kind,omitempty"`
	Captures     []int32 `json:"captures,omitempty"`
	BinOp        string  `json:"bin_op,omitempty"`
}

// Pat is the on-disk shape of a fir.Pat.
type Pat struct {
	ID       int32   `json:"id"`
	Kind     string  `json:"kind"` // "bind" | "discard" | "tuple"
	Binder   int32   `json:"binder,omitempty"`
	Ty       Ty      `json:"ty"`
	Elements []int32 `json:"elements,omitempty"`
}

// Load reads and decodes a JSON package-store fixture from path.
func Load(path string) (*fir.PackageStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	var raw Store
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fixture: parse %s: %w", path, err)
	}
	return raw.build()
}

func (raw *Store) build() (*fir.PackageStore, error) {
	store := fir.NewPackageStore()
	for _, p := range raw.Packages {
		pkg, err := p.build()
		if err != nil {
			return nil, fmt.Errorf("fixture: package %d: %w", p.ID, err)
		}
		store.Insert(fir.PackageID(p.ID), pkg)
	}
	return store, nil
}

func (p *Package) build() (*fir.Package, error) {
	pkg := fir.NewPackage()

	for _, b := range p.Pat {
		pat, err := b.build()
		if err != nil {
			return nil, fmt.Errorf("pat %d: %w", b.ID, err)
		}
		pkg.Pat.Insert(fir.PatID(b.ID), pat)
	}
	for _, b := range p.Block {
		pkg.Block.Insert(fir.BlockID(b.ID), fir.Block{Stmts: toStmtIDs(b.Stmts), Ty: b.Ty.build()})
	}
	for _, s := range p.Stmt {
		kind, err := stmtKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("stmt %d: %w", s.ID, err)
		}
		pkg.Stmt.Insert(fir.StmtID(s.ID), fir.Stmt{
			Kind: kind,
			Expr: fir.ExprID(s.Expr),
			Pat:  fir.PatID(s.Pat),
			Item: fir.LocalItemID(s.Item),
		})
	}
	for _, e := range p.Expr {
		expr, err := e.build()
		if err != nil {
			return nil, fmt.Errorf("expr %d: %w", e.ID, err)
		}
		pkg.Expr.Insert(fir.ExprID(e.ID), expr)
	}
	for _, it := range p.Items {
		item, err := it.build()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", it.ID, err)
		}
		pkg.Items.Insert(fir.LocalItemID(it.ID), item)
	}
	return pkg, nil
}

func toStmtIDs(ids []int32) []fir.StmtID {
	out := make([]fir.StmtID, len(ids))
	for i, v := range ids {
		out[i] = fir.StmtID(v)
	}
	return out
}

func toExprIDs(ids []int32) []fir.ExprID {
	out := make([]fir.ExprID, len(ids))
	for i, v := range ids {
		out[i] = fir.ExprID(v)
	}
	return out
}

func toPatIDs(ids []int32) []fir.PatID {
	out := make([]fir.PatID, len(ids))
	for i, v := range ids {
		out[i] = fir.PatID(v)
	}
	return out
}

func toBinderIDs(ids []int32) []fir.BinderID {
	out := make([]fir.BinderID, len(ids))
	for i, v := range ids {
		out[i] = fir.BinderID(v)
	}
	return out
}

func (it *Item) build() (fir.Item, error) {
	switch it.Kind {
	case "type":
		return fir.Item{Kind: fir.ItemType}, nil
	case "callable":
		if it.Callable == nil {
			return fir.Item{}, fmt.Errorf("callable item missing callable body")
		}
		c, err := it.Callable.build()
		if err != nil {
			return fir.Item{}, err
		}
		return fir.Item{Kind: fir.ItemCallable, Callable: c}, nil
	default:
		return fir.Item{}, fmt.Errorf("unknown item kind %q", it.Kind)
	}
}

func (c *Callable) build() (*fir.Callable, error) {
	kind, err := callableKind(c.Kind)
	if err != nil {
		return nil, err
	}
	specs := make(map[fir.SpecKind]fir.SpecImpl, len(c.Specs))
	for name, s := range c.Specs {
		specKind, err := specKind(name)
		if err != nil {
			return nil, err
		}
		specs[specKind] = fir.SpecImpl{Intrinsic: s.Intrinsic, Block: fir.BlockID(s.Block)}
	}
	return &fir.Callable{
		Name:    c.Name,
		Kind:    kind,
		Input:   fir.PatID(c.Input),
		InputTy: c.InputTy.build(),
		Output:  c.Output.build(),
		Specs:   specs,
	}, nil
}

func (t *Ty) build() fir.Ty {
	if t == nil {
		return fir.Unit
	}
	out := fir.Ty{Kind: tyKind(t.Kind)}
	if t.Elem != nil {
		elem := t.Elem.build()
		out.Elem = &elem
	}
	for _, f := range t.Fields {
		out.Fields = append(out.Fields, f.build())
	}
	if t.ArrowInput != nil {
		in := t.ArrowInput.build()
		out.ArrowInput = &in
	}
	if t.ArrowOutput != nil {
		o := t.ArrowOutput.build()
		out.ArrowOutput = &o
	}
	if t.ArrowKind != "" {
		kind, _ := callableKind(t.ArrowKind)
		out.ArrowKind = kind
	}
	return out
}

func tyKind(name string) fir.TyKind {
	switch name {
	case "bool":
		return fir.TyBool
	case "int":
		return fir.TyInt
	case "bigint":
		return fir.TyBigInt
	case "double":
		return fir.TyDouble
	case "string":
		return fir.TyString
	case "qubit":
		return fir.TyQubit
	case "result":
		return fir.TyResult
	case "pauli":
		return fir.TyPauli
	case "range":
		return fir.TyRange
	case "array":
		return fir.TyArray
	case "tuple":
		return fir.TyTuple
	case "udt":
		return fir.TyUdt
	case "arrow":
		return fir.TyArrow
	case "infer":
		return fir.TyInfer
	default:
		return fir.TyUnit
	}
}

func callableKind(name string) (fir.CallableKind, error) {
	switch name {
	case "function":
		return fir.Function, nil
	case "operation":
		return fir.Operation, nil
	default:
		return 0, fmt.Errorf("unknown callable kind %q", name)
	}
}

func specKind(name string) (fir.SpecKind, error) {
	switch name {
	case "body":
		return fir.SpecBody, nil
	case "adj":
		return fir.SpecAdj, nil
	case "ctl":
		return fir.SpecCtl, nil
	case "ctl_adj":
		return fir.SpecCtlAdj, nil
	default:
		return 0, fmt.Errorf("unknown spec kind %q", name)
	}
}

func stmtKind(name string) (fir.StmtKind, error) {
	switch name {
	case "expr":
		return fir.StmtExpr, nil
	case "semi":
		return fir.StmtSemi, nil
	case "let":
		return fir.StmtLet, nil
	case "mutable":
		return fir.StmtMutable, nil
	case "qubit_alloc":
		return fir.StmtQubitAlloc, nil
	case "qubit_alloc_array":
		return fir.StmtQubitAllocArray, nil
	case "item":
		return fir.StmtItem, nil
	default:
		return 0, fmt.Errorf("unknown stmt kind %q", name)
	}
}

func (p *Pat) build() (fir.Pat, error) {
	switch p.Kind {
	case "bind":
		return fir.Pat{Kind: fir.PatBind, Binder: fir.BinderID(p.Binder), Ty: p.Ty.build()}, nil
	case "discard":
		return fir.Pat{Kind: fir.PatDiscard, Ty: p.Ty.build()}, nil
	case "tuple":
		return fir.Pat{Kind: fir.PatTuple, Ty: p.Ty.build(), Elements: toPatIDs(p.Elements)}, nil
	default:
		return fir.Pat{}, fmt.Errorf("unknown pat kind %q", p.Kind)
	}
}

func litKind(name string) fir.LiteralKind {
	switch name {
	case "bool":
		return fir.LitBool
	case "int":
		return fir.LitInt
	case "bigint":
		return fir.LitBigInt
	case "double":
		return fir.LitDouble
	case "string":
		return fir.LitString
	case "pauli":
		return fir.LitPauli
	case "result":
		return fir.LitResult
	default:
		return fir.LitInt
	}
}

var binOpNames = map[string]fir.BinOpKind{
	"add": fir.BinOpAdd, "sub": fir.BinOpSub, "mul": fir.BinOpMul, "div": fir.BinOpDiv,
	"mod": fir.BinOpMod, "exp": fir.BinOpExp, "andl": fir.BinOpAndL, "orl": fir.BinOpOrL,
	"andb": fir.BinOpAndB, "orb": fir.BinOpOrB, "xorb": fir.BinOpXorB, "shl": fir.BinOpShl,
	"shr": fir.BinOpShr, "eq": fir.BinOpEq, "neq": fir.BinOpNeq, "lt": fir.BinOpLt,
	"lte": fir.BinOpLte, "gt": fir.BinOpGt, "gte": fir.BinOpGte,
}

var exprKindNames = map[string]fir.ExprKind{
	"unit": fir.ExprUnit, "hole": fir.ExprHole, "lit": fir.ExprLit, "var": fir.ExprVar,
	"global": fir.ExprGlobal, "tuple": fir.ExprTuple, "array": fir.ExprArray,
	"array_repeat": fir.ExprArrayRepeat, "index": fir.ExprIndex, "update_index": fir.ExprUpdateIndex,
	"field": fir.ExprField, "update_field": fir.ExprUpdateField, "range": fir.ExprRange,
	"bin_op": fir.ExprBinOp, "un_op": fir.ExprUnOp, "assign": fir.ExprAssign,
	"assign_op": fir.ExprAssignOp, "if": fir.ExprIf, "block": fir.ExprBlock,
	"while": fir.ExprWhile, "for": fir.ExprFor, "repeat": fir.ExprRepeat,
	"return": fir.ExprReturn, "call": fir.ExprCall, "lambda": fir.ExprLambda,
	"qubit_alloc": fir.ExprQubitAlloc, "qubit_alloc_array": fir.ExprQubitAllocArray,
	"conjugate": fir.ExprConjugate, "fail": fir.ExprFail, "string_concat": fir.ExprStringConcat,
}

func (e *Expr) build() (fir.Expr, error) {
	kind, ok := exprKindNames[e.Kind]
	if !ok {
		return fir.Expr{}, fmt.Errorf("unknown expr kind %q", e.Kind)
	}
	out := fir.Expr{
		Kind:     kind,
		Ty:       e.Ty.build(),
		Var:      fir.BinderID(e.Var),
		Global:   fir.StoreItemID{Package: fir.PackageID(e.GlobalPkg), Item: fir.LocalItemID(e.GlobalItem)},
		Operands: toExprIDs(e.Operands),
		Stmts:    toStmtIDs(e.Stmts),
		Pat:      fir.PatID(e.Pat),
		Captures: toBinderIDs(e.Captures),
	}
	if e.Lit != "" {
		out.Lit = fir.Literal{Kind: litKind(e.Lit)}
	}
	if e.CallableKind != "" {
		ck, err := callableKind(e.CallableKind)
		if err != nil {
			return fir.Expr{}, err
		}
		out.CallableKind = ck
	}
	if e.BinOp != "" {
		op, ok := binOpNames[e.BinOp]
		if !ok {
			return fir.Expr{}, fmt.Errorf("unknown bin op %q", e.BinOp)
		}
		out.BinOp = op
	}
	return out, nil
}
