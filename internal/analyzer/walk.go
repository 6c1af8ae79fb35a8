package analyzer

import (
	"rca/internal/capability"
	"rca/internal/fir"
	"rca/internal/generatorset"
)

// wrapGS adapts a bare ComputeKind to the ApplicationGeneratorSet shape the
// compute-properties store expects for non-callable nodes: blocks,
// statements, and expressions are never themselves parameterized, so their
// dynamic application list is always empty.
func wrapGS(k capability.ComputeKind) generatorset.ApplicationGeneratorSet {
	return generatorset.ApplicationGeneratorSet{Inherent: k}
}

// evalCtx carries one evaluation pass's mutable state: the symbolic binder
// environment, whether per-node results should be persisted to props (true
// only for the canonical all-static pass), and whether the walk is
// currently inside a dynamically-conditioned scope (an if/while/for/repeat
// whose own condition is dynamic), which taxes every allocation and return
// found within it.
type evalCtx struct {
	r            *Run
	pkgID        fir.PackageID
	pkg          *fir.Package
	env          map[fir.BinderID]capability.ComputeKind
	write        bool
	dynamicScope bool
}

// evalBlockWith is the entry point for one full pass over a callable body:
// a fresh symbolic binding for its parameters, evaluating the block, and
// (when write is true) recording the result of every block/stmt/expr node
// reached along the way.
func (r *Run) evalBlockWith(pkgID fir.PackageID, pkg *fir.Package, block fir.BlockID, env map[fir.BinderID]capability.ComputeKind, write bool) capability.ComputeKind {
	ctx := &evalCtx{r: r, pkgID: pkgID, pkg: pkg, env: env, write: write}
	return ctx.block(block)
}

func (c *evalCtx) block(id fir.BlockID) capability.ComputeKind {
	b, ok := c.pkg.GetBlock(id)
	if !ok {
		return capability.Classical
	}
	result := c.evalStmtsTrailing(b.Stmts)
	if c.write {
		c.r.props.InsertBlock(fir.StoreBlockID{Package: c.pkgID, Block: id}, wrapGS(result))
	}
	return result
}

// evalStmtsTrailing evaluates a statement sequence and assembles the
// sequence's own ComputeKind per the "a block's value kind is that of its
// trailing expression" rule (spec: blocks aggregate every statement's
// runtime features, but the resulting value shape comes only from the last
// statement when it is a bare, non-discarded expression statement - never
// unit). Every earlier statement, and a discarded trailing statement,
// contributes only its runtime features: folding their own value kinds
// wholesale into the result would wrongly let e.g. a non-tail array
// allocation's shape leak into a block whose tail is a plain Bool, a
// cross-variant join that is exactly the kind of mismatch
// ValueKind.Aggregate is built to reject.
func (c *evalCtx) evalStmtsTrailing(stmts []fir.StmtID) capability.ComputeKind {
	var features capability.RuntimeFeatureFlags
	tail := capability.Classical
	hasTail := false
	for i, stmtID := range stmts {
		v := c.stmt(stmtID)
		isLast := i == len(stmts)-1
		if isLast {
			if s, ok := c.pkg.GetStmt(stmtID); ok && s.Kind == fir.StmtExpr {
				tail = v
				hasTail = true
				continue
			}
		}
		features |= v.RuntimeFeatures()
	}
	if !hasTail {
		if features == 0 {
			return capability.Classical
		}
		return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: capability.NewElement(capability.Static)})
	}
	if features == 0 {
		return tail
	}
	return withFeature(tail, features)
}

func (c *evalCtx) stmt(id fir.StmtID) capability.ComputeKind {
	s, ok := c.pkg.GetStmt(id)
	if !ok {
		return capability.Classical
	}

	var result capability.ComputeKind
	switch s.Kind {
	case fir.StmtExpr, fir.StmtSemi:
		result = c.expr(s.Expr)
	case fir.StmtLet:
		val := c.expr(s.Expr)
		c.bindPattern(s.Pat, s.Expr, val)
		result = val
	case fir.StmtMutable:
		val := c.expr(s.Expr)
		c.bindPattern(s.Pat, s.Expr, val)
		result = val
	case fir.StmtQubitAlloc:
		result = c.allocSingleQubit(s.Pat)
	case fir.StmtQubitAllocArray:
		result = c.allocQubitArray(s.Pat, s.Expr)
	case fir.StmtItem:
		result = capability.Classical
	default:
		result = capability.Classical
	}

	if c.write {
		c.r.props.InsertStmt(fir.StoreStmtID{Package: c.pkgID, Stmt: id}, wrapGS(result))
	}
	return result
}

// allocSingleQubit evaluates `use q = Qubit();`: the handle is always
// statically shaped (Element(Static)), even under a dynamic scope, since
// which physical qubit backs it is immaterial to the capability model -
// only that one was allocated at all, which is what DynamicQubitAllocation
// records.
func (c *evalCtx) allocSingleQubit(pat fir.PatID) capability.ComputeKind {
	result := capability.NewQuantum(capability.QuantumProperties{Value: capability.NewElement(capability.Static)})
	if c.dynamicScope {
		result = withFeature(result, capability.DynamicQubitAllocation)
	}
	if p, ok := c.pkg.GetPat(pat); ok {
		c.bindPatternValue(p, result)
	}
	return result
}

// allocQubitArray evaluates `use qs = Qubit[n];`. A statically sized array
// is shaped Array(Static,Static), taxed only by an enclosing dynamic scope
// exactly like the single-qubit case; a dynamically sized array implies an
// unbounded allocation loop over a dynamic range, so it carries the full
// composite of features that implies: the size's own dynamism
// (UseOfDynamicInt or whatever type backs it), the allocation itself, the
// qubit values it produces, the dynamically sized array shape, the range
// the implicit allocation loop iterates, and that loop's own dynamic
// condition.
func (c *evalCtx) allocQubitArray(pat fir.PatID, sizeID fir.ExprID) capability.ComputeKind {
	size := c.expr(sizeID)
	dynamicSize := size.IsDynamic()

	value := capability.NewArray(capability.Static, capability.Static)
	var features capability.RuntimeFeatureFlags
	switch {
	case dynamicSize:
		value = capability.NewArray(capability.Dynamic, capability.Dynamic)
		features = size.RuntimeFeatures() |
			capability.UseOfDynamicInt |
			capability.DynamicQubitAllocation |
			capability.UseOfDynamicQubit |
			capability.UseOfDynamicallySizedArray |
			capability.UseOfDynamicRange |
			capability.LoopWithDynamicCondition
	case c.dynamicScope:
		features = capability.DynamicQubitAllocation
	}

	result := capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: value})
	if p, ok := c.pkg.GetPat(pat); ok {
		c.bindPatternValue(p, result)
	}
	return result
}

// bindPattern binds pat to the already-evaluated ComputeKind of expr,
// destructuring element-wise when expr is a literal tuple construction and
// pat is a matching tuple pattern; otherwise every leaf binder in pat
// receives the same aggregate value, since the lattice carries no
// structural tuple shape of its own.
func (c *evalCtx) bindPattern(patID fir.PatID, exprID fir.ExprID, val capability.ComputeKind) {
	pat, ok := c.pkg.GetPat(patID)
	if !ok {
		return
	}
	e, ok := c.pkg.GetExpr(exprID)
	if ok && pat.Kind == fir.PatTuple && e.Kind == fir.ExprTuple && len(e.Operands) == len(pat.Elements) {
		for i, elemPat := range pat.Elements {
			elemVal := c.exprCache(e.Operands[i])
			c.bindPattern(elemPat, e.Operands[i], elemVal)
		}
		return
	}
	c.bindPatternValue(pat, val)
}

func (c *evalCtx) bindPatternValue(pat fir.Pat, val capability.ComputeKind) {
	switch pat.Kind {
	case fir.PatBind:
		c.env[pat.Binder] = val
	case fir.PatTuple:
		for _, elemID := range pat.Elements {
			elem, ok := c.pkg.GetPat(elemID)
			if !ok {
				continue
			}
			c.bindPatternValue(elem, val)
		}
	}
}

// exprCache re-evaluates an already-computed operand; evaluation is pure
// over the current env so recomputation is safe and avoids threading a
// separate per-pass memo table through tuple destructuring.
func (c *evalCtx) exprCache(id fir.ExprID) capability.ComputeKind {
	return c.expr(id)
}

// withFeature unions feature f into k, keeping k's own value kind (or a
// static Element default if k was Classical).
func withFeature(k capability.ComputeKind, f capability.RuntimeFeatureFlags) capability.ComputeKind {
	carrier := capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: f})
	return k.AggregateRuntimeFeatures(carrier, k.ValueKindOrDefault(capability.NewElement(capability.Static)))
}
