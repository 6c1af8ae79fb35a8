// Package cycledetect discovers every callable specialization that
// participates in a cycle of the call graph - direct recursion or mutual
// recursion across several callables - before core analysis runs. The core
// analyzer cannot converge on a cycle by ordinary structural recursion, so
// these nodes are flagged for conservative treatment by
// internal/cyclicoverride instead.
package cycledetect

import "rca/internal/fir"

// Node identifies one callable specialization in the call graph.
type Node struct {
	Package fir.PackageID
	Item    fir.LocalItemID
	Spec    fir.SpecKind
}

// graph is an adjacency list over Nodes: edges record "A calls B".
type graph struct {
	edges map[Node][]Node
	nodes []Node
}

func newGraph() *graph {
	return &graph{edges: make(map[Node][]Node)}
}

func (g *graph) addNode(n Node) {
	if _, ok := g.edges[n]; !ok {
		g.edges[n] = nil
		g.nodes = append(g.nodes, n)
	}
}

func (g *graph) addEdge(from, to Node) {
	g.addNode(from)
	g.addNode(to)
	g.edges[from] = append(g.edges[from], to)
}

// Build walks every package in store, collecting one call-graph node per
// declared specialization and one edge per statically resolved call
// (ExprGlobal callee) found in that specialization's body.
func Build(store *fir.PackageStore) *graph {
	g := newGraph()

	store.Packages(func(pkgID fir.PackageID, pkg *fir.Package) {
		pkg.Items.Iter(func(itemID fir.LocalItemID, item fir.Item) {
			if item.Kind != fir.ItemCallable || item.Callable == nil {
				return
			}
			for specKind, impl := range item.Callable.Specs {
				from := Node{Package: pkgID, Item: itemID, Spec: specKind}
				g.addNode(from)
				if impl.Intrinsic {
					continue
				}
				collectCalls(store, pkgID, pkg, impl.Block, from, g)
			}
		})
	})

	return g
}

func collectCalls(store *fir.PackageStore, pkgID fir.PackageID, pkg *fir.Package, blockID fir.BlockID, from Node, g *graph) {
	block, ok := pkg.GetBlock(blockID)
	if !ok {
		return
	}
	for _, stmtID := range block.Stmts {
		stmt, ok := pkg.GetStmt(stmtID)
		if !ok {
			continue
		}
		walkStmtForCalls(store, pkgID, pkg, stmt, from, g)
	}
}

func walkStmtForCalls(store *fir.PackageStore, pkgID fir.PackageID, pkg *fir.Package, stmt fir.Stmt, from Node, g *graph) {
	switch stmt.Kind {
	case fir.StmtExpr, fir.StmtSemi, fir.StmtLet, fir.StmtMutable, fir.StmtQubitAllocArray:
		walkExprForCalls(store, pkgID, pkg, stmt.Expr, from, g)
	}
}

func walkExprForCalls(store *fir.PackageStore, pkgID fir.PackageID, pkg *fir.Package, exprID fir.ExprID, from Node, g *graph) {
	expr, ok := pkg.GetExpr(exprID)
	if !ok {
		return
	}

	if expr.Kind == fir.ExprCall && len(expr.Operands) > 0 {
		calleeID := expr.Operands[0]
		if callee, ok := pkg.GetExpr(calleeID); ok && callee.Kind == fir.ExprGlobal {
			to := Node{Package: callee.Global.Package, Item: callee.Global.Item, Spec: fir.SpecBody}
			g.addEdge(from, to)
		}
	}

	if expr.Kind == fir.ExprBlock {
		for _, stmtID := range expr.Stmts {
			if stmt, ok := pkg.GetStmt(stmtID); ok {
				walkStmtForCalls(store, pkgID, pkg, stmt, from, g)
			}
		}
	}

	for _, child := range expr.Operands {
		walkExprForCalls(store, pkgID, pkg, child, from, g)
	}
}

// Cyclic runs Tarjan's strongly-connected-components algorithm over store's
// call graph and returns the set of nodes that participate in a cycle: any
// SCC with more than one node, or a single node with a self-edge (direct
// recursion).
func Cyclic(store *fir.PackageStore) map[Node]bool {
	g := Build(store)
	t := &tarjan{
		graph:   g,
		index:   make(map[Node]int),
		lowlink: make(map[Node]int),
		onStack: make(map[Node]bool),
	}
	for _, n := range g.nodes {
		if _, visited := t.index[n]; !visited {
			t.strongConnect(n)
		}
	}

	cyclic := make(map[Node]bool)
	for _, scc := range t.sccs {
		if len(scc) > 1 {
			for _, n := range scc {
				cyclic[n] = true
			}
			continue
		}
		n := scc[0]
		for _, to := range g.edges[n] {
			if to == n {
				cyclic[n] = true
			}
		}
	}
	return cyclic
}

// tarjan implements Tarjan's SCC algorithm iteratively-by-recursion; the
// call graphs RCA processes are shallow enough (bounded by source nesting)
// that a recursive implementation is the clearer choice over an explicit
// stack machine.
type tarjan struct {
	graph   *graph
	index   map[Node]int
	lowlink map[Node]int
	onStack map[Node]bool
	stack   []Node
	counter int
	sccs    [][]Node
}

func (t *tarjan) strongConnect(v Node) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.edges[v] {
		if _, visited := t.index[w]; !visited {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []Node
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
