// Package scaffold pre-populates a package's result maps with sentinel
// entries before any analysis pass runs, so the core analyzer and the
// cyclic-callable overrider can write results by ID without reshaping the
// backing storage, and so partial results remain queryable mid fixed-point.
package scaffold

import (
	"rca/internal/capability"
	"rca/internal/fir"
	"rca/internal/generatorset"
	"rca/internal/rcaprops"
)

// classicalElementApplications builds a Classical, all-static parameter
// vector of length n - the placeholder every block/stmt/expr gets before
// the core analyzer overwrites it.
func classicalElementApplications(n int) []generatorset.ParamApplication {
	apps := make([]generatorset.ParamApplication, n)
	for i := range apps {
		apps[i] = generatorset.NewElementApplication(capability.Classical)
	}
	return apps
}

func placeholderSet(arity int) generatorset.ApplicationGeneratorSet {
	return generatorset.ApplicationGeneratorSet{
		Inherent:                 capability.Classical,
		DynamicParamApplications: classicalElementApplications(arity),
	}
}

// Package walks pkg once, inserting a Classical placeholder generator set
// for every block, statement, and expression, and a NonCallable or
// Callable shell (with body/adj/ctl/ctl_adj present per the callable's
// declared specializations) for every item.
func Package(id fir.PackageID, pkg *fir.Package, props *rcaprops.PackageStoreComputeProperties) {
	pkg.Block.Iter(func(blockID fir.BlockID, _ fir.Block) {
		props.InsertBlock(fir.StoreBlockID{Package: id, Block: blockID}, placeholderSet(0))
	})
	pkg.Stmt.Iter(func(stmtID fir.StmtID, _ fir.Stmt) {
		props.InsertStmt(fir.StoreStmtID{Package: id, Stmt: stmtID}, placeholderSet(0))
	})
	pkg.Expr.Iter(func(exprID fir.ExprID, _ fir.Expr) {
		props.InsertExpr(fir.StoreExprID{Package: id, Expr: exprID}, placeholderSet(0))
	})
	pkg.Items.Iter(func(itemID fir.LocalItemID, item fir.Item) {
		props.InsertItem(fir.StoreItemID{Package: id, Item: itemID}, itemShell(item))
	})
}

// itemShell builds the scaffolded ItemComputeProperties for one item: a
// NonCallable marker for type definitions, or a Callable shell with a
// placeholder body generator set and one placeholder per declared
// specialization.
func itemShell(item fir.Item) rcaprops.ItemComputeProperties {
	if item.Kind != fir.ItemCallable || item.Callable == nil {
		return rcaprops.NonCallable
	}

	callable := item.Callable
	placeholder := placeholderSet(callable.Arity())
	props := rcaprops.CallableComputeProperties{Body: placeholder}

	if _, ok := callable.Specs[fir.SpecAdj]; ok {
		spec := placeholderSet(callable.Arity())
		props.Adj = &spec
	}
	if _, ok := callable.Specs[fir.SpecCtl]; ok {
		spec := placeholderSet(callable.Arity())
		props.Ctl = &spec
	}
	if _, ok := callable.Specs[fir.SpecCtlAdj]; ok {
		spec := placeholderSet(callable.Arity())
		props.CtlAdj = &spec
	}

	return rcaprops.NewCallableProperties(props)
}
