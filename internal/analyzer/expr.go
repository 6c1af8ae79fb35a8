package analyzer

import (
	"rca/internal/capability"
	"rca/internal/cycledetect"
	"rca/internal/fir"
)

// expr evaluates one expression node, returning its ComputeKind under the
// context's current symbolic bindings and dynamic-scope state, recording
// the result into props when c.write is set.
func (c *evalCtx) expr(id fir.ExprID) capability.ComputeKind {
	e, ok := c.pkg.GetExpr(id)
	if !ok {
		return capability.Classical
	}

	result := c.evalNode(id, e)

	if c.write {
		c.r.props.InsertExpr(fir.StoreExprID{Package: c.pkgID, Expr: id}, wrapGS(result))
	}
	return result
}

func (c *evalCtx) evalNode(id fir.ExprID, e fir.Expr) capability.ComputeKind {
	switch e.Kind {
	case fir.ExprUnit, fir.ExprHole, fir.ExprLit, fir.ExprGlobal:
		return capability.Classical

	case fir.ExprVar:
		if v, ok := c.env[e.Var]; ok {
			return v
		}
		return capability.Classical

	case fir.ExprTuple, fir.ExprStringConcat:
		return c.aggregateOperands(e.Operands)

	case fir.ExprArray:
		return c.arrayLiteral(e.Operands)

	case fir.ExprArrayRepeat:
		return c.arrayRepeat(e.Operands)

	case fir.ExprIndex:
		return c.index(e.Operands)

	case fir.ExprUpdateIndex:
		return c.updateIndex(e.Operands)

	case fir.ExprField:
		return c.expr(e.Operands[0])

	case fir.ExprUpdateField:
		return c.aggregateOperands(e.Operands)

	case fir.ExprRange:
		return c.rangeExpr(e.Operands)

	case fir.ExprBinOp:
		return c.binOp(e)

	case fir.ExprUnOp:
		return c.unOp(e)

	case fir.ExprAssign, fir.ExprAssignOp:
		return c.assign(e)

	case fir.ExprIf:
		return c.ifExpr(e.Operands)

	case fir.ExprBlock:
		return c.evalInlineStmts(e.Stmts)

	case fir.ExprWhile:
		return c.whileExpr(e.Operands)

	case fir.ExprFor:
		return c.forExpr(e)

	case fir.ExprRepeat:
		return c.repeatExpr(e.Operands)

	case fir.ExprReturn:
		return c.returnExpr(e.Operands)

	case fir.ExprCall:
		return c.call(e)

	case fir.ExprLambda:
		return c.lambda(e)

	case fir.ExprQubitAlloc:
		return c.allocSingleQubit(0)

	case fir.ExprQubitAllocArray:
		return c.allocQubitArray(0, e.Operands[0])

	case fir.ExprConjugate:
		return c.conjugate(e.Operands)

	case fir.ExprFail:
		return c.aggregateOperands(e.Operands)

	default:
		return capability.Classical
	}
}

// evalInlineStmts evaluates a block-expression's statements directly: an
// ExprBlock carries its statement list inline (Expr.Stmts) rather than
// referencing a separate fir.Block, since only a callable specialization's
// top-level body is addressed by BlockID. Delegates to evalStmtsTrailing for
// the same trailing-expression value-kind rule a top-level fir.Block gets.
func (c *evalCtx) evalInlineStmts(stmts []fir.StmtID) capability.ComputeKind {
	return c.evalStmtsTrailing(stmts)
}

// aggregateOperands combines a set of sibling operand ComputeKinds into one
// Element-shaped result: used for tuple/UDT construction, string
// concatenation, and other "structural aggregation" nodes (spec §4.6) whose
// own value is a non-array aggregate (ValueKind's Element variant covers
// "scalar and non-array aggregate values", spec §3) even when operands
// themselves differ in variant - e.g. a tuple of (Bool, Qubit[]) has
// operands of differing ValueKind shape, which a plain ComputeKind.Aggregate
// cannot join directly. Every operand's runtime features are unioned in
// regardless of its own variant; only the coarse Static/Dynamic
// determinedness of each operand's shape feeds the result's own runtime
// kind.
func (c *evalCtx) aggregateOperands(ids []fir.ExprID) capability.ComputeKind {
	var features capability.RuntimeFeatureFlags
	runtime := capability.Static
	for _, id := range ids {
		v := c.expr(id)
		features |= v.RuntimeFeatures()
		runtime = runtime.Join(runtimeKindOf(v))
	}
	if features == 0 && runtime == capability.Static {
		return capability.Classical
	}
	return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: capability.NewElement(runtime)})
}

func (c *evalCtx) arrayLiteral(ids []fir.ExprID) capability.ComputeKind {
	content := capability.Static
	var features capability.RuntimeFeatureFlags
	for _, id := range ids {
		v := c.expr(id)
		features |= v.RuntimeFeatures()
		content = content.Join(runtimeKindOf(v))
	}
	if content == capability.Static && features == 0 {
		return capability.Classical
	}
	return capability.NewQuantum(capability.QuantumProperties{
		RuntimeFeatures: features,
		Value:           capability.NewArray(content, capability.Static),
	})
}

func (c *evalCtx) arrayRepeat(operands []fir.ExprID) capability.ComputeKind {
	value := c.expr(operands[0])
	size := c.expr(operands[1])
	content := runtimeKindOf(value)
	sizeKind := runtimeKindOf(size)
	features := value.RuntimeFeatures() | size.RuntimeFeatures()
	if sizeKind == capability.Dynamic {
		features |= capability.UseOfDynamicallySizedArray
	}
	if content == capability.Static && sizeKind == capability.Static && features == 0 {
		return capability.Classical
	}
	return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: capability.NewArray(content, sizeKind)})
}

func (c *evalCtx) index(operands []fir.ExprID) capability.ComputeKind {
	array := c.expr(operands[0])
	index := c.expr(operands[1])

	content := capability.Static
	if array.IsQuantum() {
		v := array.ValueKind()
		if v.IsArray() {
			content = v.ArrayContent()
		} else {
			content = v.Element()
		}
	}
	result := content
	if index.IsDynamic() {
		result = capability.Dynamic
	}

	features := array.RuntimeFeatures()
	if index.IsDynamic() {
		features |= capability.UseOfDynamicIndex
	}
	if result == capability.Static && features == 0 {
		return capability.Classical
	}
	return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: capability.NewElement(result)})
}

func (c *evalCtx) updateIndex(operands []fir.ExprID) capability.ComputeKind {
	array := c.expr(operands[0])
	index := c.expr(operands[1])
	value := c.expr(operands[2])

	content := runtimeKindOf(value)
	size := capability.Static
	if array.IsQuantum() {
		v := array.ValueKind()
		if v.IsArray() {
			content = content.Join(v.ArrayContent())
			size = v.ArraySize()
		}
	}
	features := array.RuntimeFeatures() | index.RuntimeFeatures() | value.RuntimeFeatures()
	if index.IsDynamic() {
		features |= capability.UseOfDynamicIndex
		content = capability.Dynamic
	}
	if content == capability.Static && size == capability.Static && features == 0 {
		return capability.Classical
	}
	return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: capability.NewArray(content, size)})
}

func (c *evalCtx) rangeExpr(operands []fir.ExprID) capability.ComputeKind {
	result := c.aggregateOperands(operands)
	if result.IsDynamic() || result.RuntimeFeatures() != 0 {
		result = withFeature(result, capability.UseOfDynamicRange|capability.UseOfDynamicInt)
	}
	return result
}

func featureForTy(ty fir.Ty) capability.RuntimeFeatureFlags {
	switch ty.Kind {
	case fir.TyBool:
		return capability.UseOfDynamicBool
	case fir.TyInt:
		return capability.UseOfDynamicInt
	case fir.TyBigInt:
		return capability.UseOfDynamicBigInt
	case fir.TyDouble:
		return capability.UseOfDynamicDouble
	case fir.TyString:
		return capability.UseOfDynamicString
	case fir.TyPauli:
		return capability.UseOfDynamicPauli
	case fir.TyRange:
		return capability.UseOfDynamicRange
	case fir.TyQubit:
		return capability.UseOfDynamicQubit
	case fir.TyArray:
		return capability.UseOfDynamicallySizedArray
	case fir.TyTuple, fir.TyUdt:
		return capability.UseOfDynamicUdt
	default:
		return 0
	}
}

func isComparisonOrLogical(op fir.BinOpKind) bool {
	switch op {
	case fir.BinOpEq, fir.BinOpNeq, fir.BinOpLt, fir.BinOpLte, fir.BinOpGt, fir.BinOpGte, fir.BinOpAndL, fir.BinOpOrL:
		return true
	default:
		return false
	}
}

func (c *evalCtx) binOp(e fir.Expr) capability.ComputeKind {
	left := c.expr(e.Operands[0])
	right := c.expr(e.Operands[1])
	result := left.Aggregate(right)

	if !result.IsDynamic() {
		return result
	}

	var feature capability.RuntimeFeatureFlags
	if isComparisonOrLogical(e.BinOp) {
		feature = capability.UseOfDynamicBool
	} else {
		operandTy, ok := c.pkg.GetExpr(e.Operands[0])
		if ok {
			feature = featureForTy(operandTy.Ty)
		}
	}
	if feature != 0 {
		result = withFeature(result, feature)
	}
	return result
}

func (c *evalCtx) unOp(e fir.Expr) capability.ComputeKind {
	operand := c.expr(e.Operands[0])
	if !operand.IsDynamic() {
		return operand
	}
	feature := featureForTy(e.Ty)
	if feature == 0 {
		return operand
	}
	return withFeature(operand, feature)
}

func (c *evalCtx) assign(e fir.Expr) capability.ComputeKind {
	value := c.expr(e.Operands[len(e.Operands)-1])
	if target, ok := c.pkg.GetExpr(e.Operands[0]); ok && target.Kind == fir.ExprVar {
		current, known := c.env[target.Var]
		if known {
			c.env[target.Var] = current.Aggregate(value)
		} else {
			c.env[target.Var] = value
		}
	}
	return value
}

// ifExpr treats branches symbolically (both are always explored, never
// pruned by the condition's own dynamism). The result takes the branches'
// own value shape (their declared type, not the condition's) but is forced
// fully Dynamic whenever the condition is dynamic, since a dynamically
// selected branch is unknowable pre-runtime no matter how static each branch
// looks in isolation; ForwardBranchingOnDynamicValue is added for the same
// reason. Folding the condition's features onto the branches' value shape -
// rather than literally joining the condition's own ComputeKind into the
// result, as the branches may have a different value-kind variant than the
// (always-Bool) condition - keeps this variant-safe.
func (c *evalCtx) ifExpr(operands []fir.ExprID) capability.ComputeKind {
	cond := c.expr(operands[0])
	dynamicCond := cond.IsDynamic()

	prevScope := c.dynamicScope
	if dynamicCond {
		c.dynamicScope = true
	}
	branches := capability.Classical
	if len(operands) > 1 {
		branches = c.expr(operands[1])
	}
	if len(operands) > 2 {
		branches = branches.Aggregate(c.expr(operands[2]))
	}
	c.dynamicScope = prevScope

	features := cond.RuntimeFeatures() | branches.RuntimeFeatures()
	value := branches.ValueKindOrDefault(capability.NewElement(capability.Static))
	if dynamicCond {
		features |= capability.ForwardBranchingOnDynamicValue
		value = value.AsDynamic()
	}
	if features == 0 && value.IsStatic() {
		return capability.Classical
	}
	return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: value})
}

// loopResult folds every runtime feature a loop construct's pieces
// contributed into a single ComputeKind whose own value is always the
// Unit shape (Element(Static)): loop constructs never themselves produce a
// usable value, so unlike ifExpr there is no branch value-kind to inherit,
// and unioning a condition's (Bool) features with a body's (Unit, or
// whatever type the iterable's element is) features never risks a
// cross-variant join since only the feature bits are combined.
func loopResult(extraFeature capability.RuntimeFeatureFlags, pieces ...capability.ComputeKind) capability.ComputeKind {
	var features capability.RuntimeFeatureFlags
	for _, p := range pieces {
		features |= p.RuntimeFeatures()
	}
	features |= extraFeature
	if features == 0 {
		return capability.Classical
	}
	return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: capability.NewElement(capability.Static)})
}

func (c *evalCtx) whileExpr(operands []fir.ExprID) capability.ComputeKind {
	cond := c.expr(operands[0])
	dynamicCond := cond.IsDynamic()

	prevScope := c.dynamicScope
	if dynamicCond {
		c.dynamicScope = true
	}
	var body capability.ComputeKind
	if len(operands) > 1 {
		body = c.expr(operands[1])
	}
	c.dynamicScope = prevScope

	var extra capability.RuntimeFeatureFlags
	if dynamicCond {
		extra = capability.LoopWithDynamicCondition
	}
	return loopResult(extra, cond, body)
}

func (c *evalCtx) forExpr(e fir.Expr) capability.ComputeKind {
	iterable := c.expr(e.Operands[0])
	elementKind := runtimeKindOf(iterable)

	pat, ok := c.pkg.GetPat(e.Pat)
	if ok {
		c.bindPatternValue(pat, elementComputeKind(iterable, elementKind))
	}

	dynamicCond := elementKind == capability.Dynamic
	prevScope := c.dynamicScope
	if dynamicCond {
		c.dynamicScope = true
	}
	var body capability.ComputeKind
	if len(e.Operands) > 1 {
		body = c.expr(e.Operands[1])
	}
	c.dynamicScope = prevScope

	var extra capability.RuntimeFeatureFlags
	if dynamicCond {
		extra = capability.LoopWithDynamicCondition
	}
	return loopResult(extra, iterable, body)
}

func elementComputeKind(container capability.ComputeKind, runtime capability.RuntimeKind) capability.ComputeKind {
	if runtime == capability.Static {
		return capability.Classical
	}
	return capability.NewQuantum(capability.QuantumProperties{
		RuntimeFeatures: container.RuntimeFeatures(),
		Value:           capability.NewElement(capability.Dynamic),
	})
}

func (c *evalCtx) repeatExpr(operands []fir.ExprID) capability.ComputeKind {
	result := c.expr(operands[0])
	until := c.expr(operands[1])
	dynamicCond := until.IsDynamic()

	prevScope := c.dynamicScope
	if dynamicCond {
		c.dynamicScope = true
	}
	result = result.Aggregate(until)
	if len(operands) > 2 {
		result = result.Aggregate(c.expr(operands[2]))
	}
	c.dynamicScope = prevScope

	if dynamicCond {
		result = withFeature(result, capability.LoopWithDynamicCondition)
	}
	return result
}

func (c *evalCtx) returnExpr(operands []fir.ExprID) capability.ComputeKind {
	result := c.aggregateOperands(operands)
	if c.dynamicScope {
		result = withFeature(result, capability.ReturnWithinDynamicScope)
	}
	return result
}

// call resolves the callee. A statically known global callee is
// specialized against the actual argument shapes; anything else (a bound
// lambda value, a field read, ...) is an unresolved dynamic callee and
// contributes the conservative CallToDynamicCallee feature.
func (c *evalCtx) call(e fir.Expr) capability.ComputeKind {
	calleeID := e.Operands[0]
	argIDs := e.Operands[1:]

	args := make([]capability.ComputeKind, len(argIDs))
	argValues := make([]capability.ValueKind, len(argIDs))
	var argFeatures capability.RuntimeFeatureFlags
	for i, id := range argIDs {
		args[i] = c.expr(id)
		argValues[i] = args[i].ValueKindOrDefault(capability.NewElement(capability.Static))
		argFeatures |= args[i].RuntimeFeatures()
	}

	callee, ok := c.pkg.GetExpr(calleeID)
	if !ok || callee.Kind != fir.ExprGlobal {
		return capability.NewQuantum(capability.QuantumProperties{
			RuntimeFeatures: argFeatures | capability.CallToDynamicCallee,
			Value:           capability.NewElement(capability.Dynamic),
		})
	}

	target := callee.Global
	targetPkg, ok := c.r.store.Get(target.Package)
	if !ok {
		return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: argFeatures | capability.CallToUnresolvedCallee, Value: capability.NewElement(capability.Dynamic)})
	}
	item, ok := targetPkg.Item(target.Item)
	if !ok || item.Kind != fir.ItemCallable || item.Callable == nil {
		return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: argFeatures | capability.CallToUnresolvedCallee, Value: capability.NewElement(capability.Dynamic)})
	}

	node := cycledetect.Node{Package: target.Package, Item: target.Item, Spec: fir.SpecBody}
	cyclic := c.r.cyclic[node]
	if !cyclic {
		// A cyclic specialization is already seeded by cyclicoverride
		// before the core analyzer runs; recursing into it here (as for a
		// self-call) would re-enter analyzeItem's in-progress guard.
		c.r.analyzeItem(target)
	}
	props := c.r.props.GetItem(target)
	gs := props.Callable.Body
	result := gs.Specialize(argValues)

	result = withExtraFeatures(result, argFeatures)

	if cyclic && item.Callable.Kind == fir.Operation {
		result = withFeature(result, capability.CallToCyclicOperation)
	}
	return result
}

func withExtraFeatures(k capability.ComputeKind, extra capability.RuntimeFeatureFlags) capability.ComputeKind {
	if extra == 0 {
		return k
	}
	return withFeature(k, extra)
}

// lambda is classical inherent but always contributes UseOfClosure; when
// any captured binding is itself dynamic, the resulting value's kind is
// dynamic and the callable-kind specific dynamic-arrow feature is added too.
func (c *evalCtx) lambda(e fir.Expr) capability.ComputeKind {
	features := capability.UseOfClosure
	dynamic := false
	for _, binder := range e.Captures {
		if v, ok := c.env[binder]; ok && v.IsDynamic() {
			dynamic = true
			features |= v.RuntimeFeatures()
		}
	}
	if !dynamic {
		return capability.NewQuantum(capability.QuantumProperties{
			RuntimeFeatures: features,
			Value:           capability.NewElement(capability.Static),
		})
	}
	if e.CallableKind == fir.Operation {
		features |= capability.UseOfDynamicArrowOperation
	} else {
		features |= capability.UseOfDynamicArrowFunction
	}
	return capability.NewQuantum(capability.QuantumProperties{RuntimeFeatures: features, Value: capability.NewElement(capability.Dynamic)})
}

// conjugate evaluates the within-block then the apply-block in sequence;
// RCA does not special-case uncomputation, so this is exactly two
// sequential block evaluations.
func (c *evalCtx) conjugate(operands []fir.ExprID) capability.ComputeKind {
	return c.aggregateOperands(operands)
}

func runtimeKindOf(k capability.ComputeKind) capability.RuntimeKind {
	if k.IsClassical() {
		return capability.Static
	}
	v := k.ValueKind()
	if v.IsArray() {
		return v.ArrayContent().Join(v.ArraySize())
	}
	return v.Element()
}
