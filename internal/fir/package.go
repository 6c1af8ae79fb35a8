package fir

import "rca/internal/indexmap"

// Package is a dense collection of items, blocks, statements, and
// expressions, addressed by package-local IDs.
type Package struct {
	Items Map[LocalItemID, Item]
	Block Map[BlockID, Block]
	Stmt  Map[StmtID, Stmt]
	Expr  Map[ExprID, Expr]
	Pat   Map[PatID, Pat]
}

// Map is a type alias over indexmap.Map, spelled out locally so fir's
// exported surface does not force every caller to import indexmap
// directly.
type Map[K indexmap.Key, V any] = indexmap.Map[K, V]

// NewPackage returns an empty Package ready for population.
func NewPackage() *Package {
	return &Package{
		Items: *indexmap.New[LocalItemID, Item](),
		Block: *indexmap.New[BlockID, Block](),
		Stmt:  *indexmap.New[StmtID, Stmt](),
		Expr:  *indexmap.New[ExprID, Expr](),
		Pat:   *indexmap.New[PatID, Pat](),
	}
}

// Item looks up an item by local ID.
func (p *Package) Item(id LocalItemID) (Item, bool) {
	return p.Items.Get(id)
}

// GetBlock looks up a block by local ID.
func (p *Package) GetBlock(id BlockID) (Block, bool) {
	return p.Block.Get(id)
}

// GetStmt looks up a statement by local ID.
func (p *Package) GetStmt(id StmtID) (Stmt, bool) {
	return p.Stmt.Get(id)
}

// GetExpr looks up an expression by local ID.
func (p *Package) GetExpr(id ExprID) (Expr, bool) {
	return p.Expr.Get(id)
}

// GetPat looks up a pattern by local ID.
func (p *Package) GetPat(id PatID) (Pat, bool) {
	return p.Pat.Get(id)
}

// PackageStore is the read-only input to the analysis: an append-only
// collection of packages in dependency order. Earlier compiler stages own
// and populate it; RCA only ever reads it.
type PackageStore struct {
	packages indexmap.Map[PackageID, *Package]
	order    []PackageID
}

// NewPackageStore returns an empty store.
func NewPackageStore() *PackageStore {
	return &PackageStore{}
}

// Insert adds or replaces the package at id, recording first-insertion
// order for iteration.
func (s *PackageStore) Insert(id PackageID, pkg *Package) {
	if !s.packages.Contains(id) {
		s.order = append(s.order, id)
	}
	s.packages.Insert(id, pkg)
}

// Get returns the package at id.
func (s *PackageStore) Get(id PackageID) (*Package, bool) {
	return s.packages.Get(id)
}

// Packages iterates every package in insertion (dependency) order.
func (s *PackageStore) Packages(fn func(id PackageID, pkg *Package)) {
	for _, id := range s.order {
		pkg, ok := s.packages.Get(id)
		if ok {
			fn(id, pkg)
		}
	}
}

// Order returns the dependency order package IDs were inserted in.
func (s *PackageStore) Order() []PackageID {
	out := make([]PackageID, len(s.order))
	copy(out, s.order)
	return out
}
