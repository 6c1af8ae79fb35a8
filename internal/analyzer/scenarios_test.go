package analyzer

import (
	"testing"

	"rca/internal/capability"
	"rca/internal/fir"
)

// fb is a minimal builder for hand-authored package fixtures: each call
// appends one node and returns its freshly assigned ID, so a scenario can be
// written as a flat sequence of statements without tracking index arithmetic
// by hand.
type fb struct {
	pkg       *fir.Package
	nextExpr  fir.ExprID
	nextStmt  fir.StmtID
	nextPat   fir.PatID
	nextBlock fir.BlockID
}

func newFB() *fb {
	return &fb{pkg: fir.NewPackage()}
}

func (b *fb) expr(e fir.Expr) fir.ExprID {
	id := b.nextExpr
	b.pkg.Expr.Insert(id, e)
	b.nextExpr++
	return id
}

func (b *fb) stmt(s fir.Stmt) fir.StmtID {
	id := b.nextStmt
	b.pkg.Stmt.Insert(id, s)
	b.nextStmt++
	return id
}

func (b *fb) pat(p fir.Pat) fir.PatID {
	id := b.nextPat
	b.pkg.Pat.Insert(id, p)
	b.nextPat++
	return id
}

func (b *fb) block(stmts []fir.StmtID) fir.BlockID {
	id := b.nextBlock
	b.pkg.Block.Insert(id, fir.Block{Stmts: stmts})
	b.nextBlock++
	return id
}

func (b *fb) item(id fir.LocalItemID, callable *fir.Callable) {
	b.pkg.Items.Insert(id, fir.Item{Kind: fir.ItemCallable, Callable: callable})
}

func measurementItem(b *fb, id fir.LocalItemID) {
	b.item(id, &fir.Callable{
		Name:    "Microsoft.Quantum.Intrinsic.M",
		Kind:    fir.Operation,
		InputTy: fir.Ty{Kind: fir.TyQubit},
		Output:  fir.Ty{Kind: fir.TyResult},
		Specs:   map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Intrinsic: true}},
	})
}

func TestScenario1_ClassicalArithmetic(t *testing.T) {
	b := newFB()
	one := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	two := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	add := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpAdd, Operands: []fir.ExprID{one, two}, Ty: fir.Ty{Kind: fir.TyInt}})
	s0 := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: add})
	blk := b.block([]fir.StmtID{s0})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(0, &fir.Callable{
		Name: "frag1", Kind: fir.Function, Input: in, InputTy: fir.Unit, Output: fir.Ty{Kind: fir.TyInt},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})

	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: s0}).Inherent
	if !got.IsClassical() {
		t.Errorf("1+1 should be Classical, got %v", got)
	}
}

func buildMeasurementComparison(reversed bool) (*fb, fir.StmtID) {
	b := newFB()
	measurementItem(b, 0)

	qPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	s0 := b.stmt(fir.Stmt{Kind: fir.StmtQubitAlloc, Pat: qPat})

	globalM := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 0}})
	varQ := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	call := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalM, varQ}, Ty: fir.Ty{Kind: fir.TyResult}})
	zero := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitResult}, Ty: fir.Ty{Kind: fir.TyResult}})

	var cmp fir.ExprID
	if reversed {
		cmp = b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpEq, Operands: []fir.ExprID{zero, call}, Ty: fir.Ty{Kind: fir.TyBool}})
	} else {
		cmp = b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpNeq, Operands: []fir.ExprID{call, zero}, Ty: fir.Ty{Kind: fir.TyBool}})
	}
	s1 := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: cmp})
	blk := b.block([]fir.StmtID{s0, s1})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(1, &fir.Callable{
		Name: "frag2", Kind: fir.Operation, Input: in, InputTy: fir.Unit, Output: fir.Ty{Kind: fir.TyBool},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})
	return b, s1
}

func TestScenario2_MeasurementComparisonNeq(t *testing.T) {
	b, last := buildMeasurementComparison(false)
	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: last}).Inherent
	if !got.IsQuantum() || !got.IsDynamic() {
		t.Fatalf("M(q) != Zero should be a dynamic Quantum value, got %v", got)
	}
	if !got.RuntimeFeatures().Contains(capability.UseOfDynamicBool) {
		t.Errorf("expected UseOfDynamicBool, got %v", got.RuntimeFeatures())
	}
	if got.ValueKind() != capability.NewElement(capability.Dynamic) {
		t.Errorf("expected Element(Dynamic), got %v", got.ValueKind())
	}
}

func TestScenario3_MeasurementComparisonReversed(t *testing.T) {
	b, last := buildMeasurementComparison(true)
	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: last}).Inherent
	if !got.IsQuantum() || !got.IsDynamic() {
		t.Fatalf("One == M(q) should be a dynamic Quantum value, got %v", got)
	}
	if !got.RuntimeFeatures().Contains(capability.UseOfDynamicBool) {
		t.Errorf("expected UseOfDynamicBool, got %v", got.RuntimeFeatures())
	}
}

func TestScenario4_TupleDestructureAndAndL(t *testing.T) {
	b := newFB()
	measurementItem(b, 0)

	patA := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	patB := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 1, Ty: fir.Ty{Kind: fir.TyQubit}})
	patAB := b.pat(fir.Pat{Kind: fir.PatTuple, Elements: []fir.PatID{patA, patB}})
	s0 := b.stmt(fir.Stmt{Kind: fir.StmtQubitAlloc, Pat: patAB})

	globalM := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 0}})

	varA := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	callA := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalM, varA}, Ty: fir.Ty{Kind: fir.TyResult}})
	zero1 := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitResult}, Ty: fir.Ty{Kind: fir.TyResult}})
	eq1 := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpEq, Operands: []fir.ExprID{callA, zero1}, Ty: fir.Ty{Kind: fir.TyBool}})

	varB := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 1, Ty: fir.Ty{Kind: fir.TyQubit}})
	callB := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalM, varB}, Ty: fir.Ty{Kind: fir.TyResult}})
	zero2 := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitResult}, Ty: fir.Ty{Kind: fir.TyResult}})
	eq2 := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpEq, Operands: []fir.ExprID{callB, zero2}, Ty: fir.Ty{Kind: fir.TyBool}})

	tuple := b.expr(fir.Expr{Kind: fir.ExprTuple, Operands: []fir.ExprID{eq1, eq2}, Ty: fir.NewTuple(fir.Ty{Kind: fir.TyBool}, fir.Ty{Kind: fir.TyBool})})
	patC := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 2, Ty: fir.Ty{Kind: fir.TyBool}})
	patD := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 3, Ty: fir.Ty{Kind: fir.TyBool}})
	patCD := b.pat(fir.Pat{Kind: fir.PatTuple, Elements: []fir.PatID{patC, patD}})
	s1 := b.stmt(fir.Stmt{Kind: fir.StmtLet, Pat: patCD, Expr: tuple})

	varC := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 2, Ty: fir.Ty{Kind: fir.TyBool}})
	varD := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 3, Ty: fir.Ty{Kind: fir.TyBool}})
	and := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpAndL, Operands: []fir.ExprID{varC, varD}, Ty: fir.Ty{Kind: fir.TyBool}})
	s2 := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: and})

	blk := b.block([]fir.StmtID{s0, s1, s2})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(1, &fir.Callable{
		Name: "frag4", Kind: fir.Operation, Input: in, InputTy: fir.Unit, Output: fir.Ty{Kind: fir.TyBool},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})

	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: s2}).Inherent
	if !got.IsQuantum() || !got.IsDynamic() {
		t.Fatalf("c and d should be dynamic Quantum, got %v", got)
	}
	if !got.RuntimeFeatures().Contains(capability.UseOfDynamicBool) {
		t.Errorf("expected UseOfDynamicBool, got %v", got.RuntimeFeatures())
	}
}

func TestScenario5_ClassicalMathLibrary(t *testing.T) {
	b := newFB()

	piLit := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitDouble}, Ty: fir.Ty{Kind: fir.TyDouble}})
	piStmt := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: piLit})
	piBlock := b.block([]fir.StmtID{piStmt})
	piIn := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(0, &fir.Callable{
		Name: "Microsoft.Quantum.Math.PI", Kind: fir.Function, Input: piIn, InputTy: fir.Unit, Output: fir.Ty{Kind: fir.TyDouble},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: piBlock}},
	})

	// Sin and Cos are both modeled as a trivial classical pass-through of
	// their one Double parameter - enough to exercise the
	// classical-call-is-classical path without needing real trigonometry,
	// which RCA never evaluates anyway.
	sinIn := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyDouble}})
	sinBody := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyDouble}})
	sinStmt := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: sinBody})
	sinBlock := b.block([]fir.StmtID{sinStmt})
	b.item(1, &fir.Callable{
		Name: "Microsoft.Quantum.Math.Sin", Kind: fir.Function, Input: sinIn, InputTy: fir.Ty{Kind: fir.TyDouble}, Output: fir.Ty{Kind: fir.TyDouble},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: sinBlock}},
	})

	cosIn := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyDouble}})
	cosBody := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyDouble}})
	cosStmt := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: cosBody})
	cosBlock := b.block([]fir.StmtID{cosStmt})
	b.item(2, &fir.Callable{
		Name: "Microsoft.Quantum.Math.Cos", Kind: fir.Function, Input: cosIn, InputTy: fir.Ty{Kind: fir.TyDouble}, Output: fir.Ty{Kind: fir.TyDouble},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: cosBlock}},
	})

	globalPI := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 0}})
	piArg := b.expr(fir.Expr{Kind: fir.ExprUnit, Ty: fir.Unit})
	piCall := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalPI, piArg}, Ty: fir.Ty{Kind: fir.TyDouble}})
	two := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitDouble}, Ty: fir.Ty{Kind: fir.TyDouble}})
	half := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpDiv, Operands: []fir.ExprID{piCall, two}, Ty: fir.Ty{Kind: fir.TyDouble}})

	globalSin := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 1}})
	sinCall := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalSin, half}, Ty: fir.Ty{Kind: fir.TyDouble}})
	twoExp1 := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitDouble}, Ty: fir.Ty{Kind: fir.TyDouble}})
	sinSq := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpExp, Operands: []fir.ExprID{sinCall, twoExp1}, Ty: fir.Ty{Kind: fir.TyDouble}})

	globalCos := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 2}})
	cosCall := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalCos, half}, Ty: fir.Ty{Kind: fir.TyDouble}})
	twoExp2 := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitDouble}, Ty: fir.Ty{Kind: fir.TyDouble}})
	cosSq := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpExp, Operands: []fir.ExprID{cosCall, twoExp2}, Ty: fir.Ty{Kind: fir.TyDouble}})

	sum := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpAdd, Operands: []fir.ExprID{sinSq, cosSq}, Ty: fir.Ty{Kind: fir.TyDouble}})
	s := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: sum})
	blk := b.block([]fir.StmtID{s})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(3, &fir.Callable{
		Name: "frag5", Kind: fir.Function, Input: in, InputTy: fir.Unit, Output: fir.Ty{Kind: fir.TyDouble},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})

	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: s}).Inherent
	if !got.IsClassical() {
		t.Errorf("classical trig identity should stay Classical, got %v", got)
	}
}

func TestScenario6_TernaryThenArithmetic(t *testing.T) {
	b := newFB()
	measurementItem(b, 0)

	qPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	s0 := b.stmt(fir.Stmt{Kind: fir.StmtQubitAlloc, Pat: qPat})

	globalM := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 0}})
	varQ := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	call := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalM, varQ}, Ty: fir.Ty{Kind: fir.TyResult}})
	zero := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitResult}, Ty: fir.Ty{Kind: fir.TyResult}})
	cond := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpEq, Operands: []fir.ExprID{call, zero}, Ty: fir.Ty{Kind: fir.TyBool}})
	thenV := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	elseV := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	ifExpr := b.expr(fir.Expr{Kind: fir.ExprIf, Operands: []fir.ExprID{cond, thenV, elseV}, Ty: fir.Ty{Kind: fir.TyInt}})
	iPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 1, Ty: fir.Ty{Kind: fir.TyInt}})
	s1 := b.stmt(fir.Stmt{Kind: fir.StmtLet, Pat: iPat, Expr: ifExpr})

	varI := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 1, Ty: fir.Ty{Kind: fir.TyInt}})
	one := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	mul := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpMul, Operands: []fir.ExprID{varI, one}, Ty: fir.Ty{Kind: fir.TyInt}})
	oneAgain := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	div := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpDiv, Operands: []fir.ExprID{mul, oneAgain}, Ty: fir.Ty{Kind: fir.TyInt}})
	s2 := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: div})

	blk := b.block([]fir.StmtID{s0, s1, s2})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(1, &fir.Callable{
		Name: "frag6", Kind: fir.Operation, Input: in, InputTy: fir.Unit, Output: fir.Ty{Kind: fir.TyInt},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})

	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: s2}).Inherent
	if !got.IsQuantum() || !got.IsDynamic() {
		t.Fatalf("i*1/1 should be dynamic Quantum, got %v", got)
	}
	want := capability.UseOfDynamicBool | capability.UseOfDynamicInt
	if !got.RuntimeFeatures().Contains(want) {
		t.Errorf("expected at least UseOfDynamicBool|UseOfDynamicInt, got %v", got.RuntimeFeatures())
	}
	if got.ValueKind() != capability.NewElement(capability.Dynamic) {
		t.Errorf("expected Element(Dynamic), got %v", got.ValueKind())
	}
}

func TestScenario7_StaticQubitHandleStaysStatic(t *testing.T) {
	b := newFB()
	qPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	s0 := b.stmt(fir.Stmt{Kind: fir.StmtQubitAlloc, Pat: qPat})
	varQ := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	s1 := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: varQ})
	blk := b.block([]fir.StmtID{s0, s1})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(0, &fir.Callable{
		Name: "frag7", Kind: fir.Operation, Input: in, InputTy: fir.Unit, Output: fir.Ty{Kind: fir.TyQubit},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})

	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: s1}).Inherent
	if !got.IsQuantum() {
		t.Fatalf("a freshly allocated qubit handle is Quantum even with no features, got %v", got)
	}
	if got.RuntimeFeatures() != 0 {
		t.Errorf("expected no runtime features, got %v", got.RuntimeFeatures())
	}
	if got.ValueKind() != capability.NewElement(capability.Static) {
		t.Errorf("expected Element(Static), got %v", got.ValueKind())
	}
}

func TestScenario8_DynamicallySizedQubitArray(t *testing.T) {
	b := newFB()
	measurementItem(b, 0)

	qPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	s0 := b.stmt(fir.Stmt{Kind: fir.StmtQubitAlloc, Pat: qPat})

	globalM := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 0}})
	varQ := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	call := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalM, varQ}, Ty: fir.Ty{Kind: fir.TyResult}})
	zero := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitResult}, Ty: fir.Ty{Kind: fir.TyResult}})
	cond := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpEq, Operands: []fir.ExprID{call, zero}, Ty: fir.Ty{Kind: fir.TyBool}})
	thenV := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	elseV := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	ifExpr := b.expr(fir.Expr{Kind: fir.ExprIf, Operands: []fir.ExprID{cond, thenV, elseV}, Ty: fir.Ty{Kind: fir.TyInt}})
	nPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 1, Ty: fir.Ty{Kind: fir.TyInt}})
	s1 := b.stmt(fir.Stmt{Kind: fir.StmtLet, Pat: nPat, Expr: ifExpr})

	arrTy := fir.NewArray(fir.Ty{Kind: fir.TyQubit})
	rPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 2, Ty: arrTy})
	varN := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 1, Ty: fir.Ty{Kind: fir.TyInt}})
	s2 := b.stmt(fir.Stmt{Kind: fir.StmtQubitAllocArray, Pat: rPat, Expr: varN})

	varR := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 2, Ty: arrTy})
	s3 := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: varR})

	blk := b.block([]fir.StmtID{s0, s1, s2, s3})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(1, &fir.Callable{
		Name: "frag8", Kind: fir.Operation, Input: in, InputTy: fir.Unit, Output: arrTy,
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})

	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: s3}).Inherent
	if !got.IsQuantum() || !got.IsDynamic() {
		t.Fatalf("r should be a dynamic Quantum array, got %v", got)
	}
	want := capability.UseOfDynamicBool |
		capability.UseOfDynamicInt |
		capability.UseOfDynamicRange |
		capability.UseOfDynamicQubit |
		capability.UseOfDynamicallySizedArray |
		capability.ForwardBranchingOnDynamicValue |
		capability.DynamicQubitAllocation |
		capability.LoopWithDynamicCondition
	if !got.RuntimeFeatures().Contains(want) {
		t.Errorf("missing expected features: got %v, want at least %v", got.RuntimeFeatures(), want)
	}
	vk := got.ValueKind()
	if !vk.IsArray() || vk.ArrayContent() != capability.Dynamic || vk.ArraySize() != capability.Dynamic {
		t.Errorf("expected Array(Dynamic,Dynamic), got %v", vk)
	}
}

func TestScenario9_BranchingAllocationWithinOperation(t *testing.T) {
	b := newFB()
	measurementItem(b, 0)

	cPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	s0 := b.stmt(fir.Stmt{Kind: fir.StmtQubitAlloc, Pat: cPat})

	globalM := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 0}})
	varC := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	call := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalM, varC}, Ty: fir.Ty{Kind: fir.TyResult}})
	one := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitResult}, Ty: fir.Ty{Kind: fir.TyResult}})
	cond := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpEq, Operands: []fir.ExprID{call, one}, Ty: fir.Ty{Kind: fir.TyBool}})

	tPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 1, Ty: fir.Ty{Kind: fir.TyQubit}})
	tAlloc := b.stmt(fir.Stmt{Kind: fir.StmtQubitAlloc, Pat: tPat})
	thenBlock := b.expr(fir.Expr{Kind: fir.ExprBlock, Stmts: []fir.StmtID{tAlloc}, Ty: fir.Unit})

	ifExpr := b.expr(fir.Expr{Kind: fir.ExprIf, Operands: []fir.ExprID{cond, thenBlock}, Ty: fir.Unit})
	s1 := b.stmt(fir.Stmt{Kind: fir.StmtSemi, Expr: ifExpr})

	blk := b.block([]fir.StmtID{s0, s1})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(1, &fir.Callable{
		Name: "frag9", Kind: fir.Operation, Input: in, InputTy: fir.Unit, Output: fir.Unit,
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})

	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetItem(fir.StoreItemID{Package: 0, Item: 1}).Callable.Body.Inherent
	if !got.IsQuantum() {
		t.Fatalf("operation body should be Quantum, got %v", got)
	}
	want := capability.UseOfDynamicBool | capability.ForwardBranchingOnDynamicValue | capability.DynamicQubitAllocation
	if !got.RuntimeFeatures().Contains(want) {
		t.Errorf("missing expected features: got %v, want at least %v", got.RuntimeFeatures(), want)
	}
	if got.ValueKind() != capability.NewElement(capability.Static) {
		t.Errorf("a Unit-returning operation's value kind must stay Element(Static) regardless of body dynamism, got %v", got.ValueKind())
	}
}

// TestRangeExprAddsUseOfDynamicInt exercises spec §4.6's "Ranges: dynamic
// endpoints or step add UseOfDynamicRange and UseOfDynamicInt" rule for an
// endpoint whose own dynamism comes from a dynamic bool, not a dynamic int -
// UseOfDynamicInt must still appear on the range even though nothing below
// it ever set that bit directly.
func TestRangeExprAddsUseOfDynamicInt(t *testing.T) {
	b := newFB()
	measurementItem(b, 0)

	qPat := b.pat(fir.Pat{Kind: fir.PatBind, Binder: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	s0 := b.stmt(fir.Stmt{Kind: fir.StmtQubitAlloc, Pat: qPat})

	globalM := b.expr(fir.Expr{Kind: fir.ExprGlobal, Global: fir.StoreItemID{Package: 0, Item: 0}})
	varQ := b.expr(fir.Expr{Kind: fir.ExprVar, Var: 0, Ty: fir.Ty{Kind: fir.TyQubit}})
	call := b.expr(fir.Expr{Kind: fir.ExprCall, Operands: []fir.ExprID{globalM, varQ}, Ty: fir.Ty{Kind: fir.TyResult}})
	zero := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitResult}, Ty: fir.Ty{Kind: fir.TyResult}})
	cond := b.expr(fir.Expr{Kind: fir.ExprBinOp, BinOp: fir.BinOpEq, Operands: []fir.ExprID{call, zero}, Ty: fir.Ty{Kind: fir.TyBool}})
	thenV := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	elseV := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	end := b.expr(fir.Expr{Kind: fir.ExprIf, Operands: []fir.ExprID{cond, thenV, elseV}, Ty: fir.Ty{Kind: fir.TyInt}})

	start := b.expr(fir.Expr{Kind: fir.ExprLit, Lit: fir.Literal{Kind: fir.LitInt}, Ty: fir.Ty{Kind: fir.TyInt}})
	rangeExpr := b.expr(fir.Expr{Kind: fir.ExprRange, Operands: []fir.ExprID{start, end}, Ty: fir.Ty{Kind: fir.TyRange}})
	s1 := b.stmt(fir.Stmt{Kind: fir.StmtExpr, Expr: rangeExpr})

	blk := b.block([]fir.StmtID{s0, s1})
	in := b.pat(fir.Pat{Kind: fir.PatDiscard})
	b.item(1, &fir.Callable{
		Name: "fragRange", Kind: fir.Operation, Input: in, InputTy: fir.Unit, Output: fir.Ty{Kind: fir.TyRange},
		Specs: map[fir.SpecKind]fir.SpecImpl{fir.SpecBody: {Block: blk}},
	})

	store := fir.NewPackageStore()
	store.Insert(0, b.pkg)
	props := AnalyzeAll(store)

	got := props.GetStmt(fir.StoreStmtID{Package: 0, Stmt: s1}).Inherent
	if !got.IsQuantum() {
		t.Fatalf("range with a dynamic endpoint should be Quantum, got %v", got)
	}
	want := capability.UseOfDynamicBool | capability.UseOfDynamicRange | capability.UseOfDynamicInt
	if !got.RuntimeFeatures().Contains(want) {
		t.Errorf("missing expected features: got %v, want at least %v", got.RuntimeFeatures(), want)
	}
}
