// Package rcaprops implements the compute-properties store: the output of
// analysis, mirroring the shape of a fir.PackageStore one-for-one so every
// input node has a corresponding (eventually populated) result entry.
package rcaprops

import (
	"fmt"

	"rca/internal/fir"
	"rca/internal/generatorset"
	"rca/internal/indexmap"
)

// CallableComputeProperties bundles the generator sets for a callable's
// declared specializations. Body is always present once scaffolded; Adj,
// Ctl, and CtlAdj are nil unless the callable declares that specialization.
type CallableComputeProperties struct {
	Body   generatorset.ApplicationGeneratorSet
	Adj    *generatorset.ApplicationGeneratorSet
	Ctl    *generatorset.ApplicationGeneratorSet
	CtlAdj *generatorset.ApplicationGeneratorSet
}

// ItemComputeProperties is a tagged union over an item's result: Callable
// holds a CallableComputeProperties, or the item carries no computed
// properties at all (a type definition).
type ItemComputeProperties struct {
	IsCallable bool
	Callable   CallableComputeProperties
}

// NonCallable is the result for a non-callable item (a type definition).
var NonCallable = ItemComputeProperties{}

// NewCallableProperties wraps a CallableComputeProperties as an
// ItemComputeProperties.
func NewCallableProperties(c CallableComputeProperties) ItemComputeProperties {
	return ItemComputeProperties{IsCallable: true, Callable: c}
}

// PackageComputeProperties holds one package's worth of results: one dense
// map per IR node kind, mirroring fir.Package.
type PackageComputeProperties struct {
	Items indexmap.Map[fir.LocalItemID, ItemComputeProperties]
	Block indexmap.Map[fir.BlockID, generatorset.ApplicationGeneratorSet]
	Stmt  indexmap.Map[fir.StmtID, generatorset.ApplicationGeneratorSet]
	Expr  indexmap.Map[fir.ExprID, generatorset.ApplicationGeneratorSet]
}

// NewPackageComputeProperties returns an empty result set for one package.
func NewPackageComputeProperties() *PackageComputeProperties {
	return &PackageComputeProperties{}
}

// Clear empties every dense map in p, used to force re-analysis of a
// single open package while leaving every other package's results intact.
func (p *PackageComputeProperties) Clear() {
	p.Items.Clear()
	p.Block.Clear()
	p.Stmt.Clear()
	p.Expr.Clear()
}

// PackageStoreComputeProperties mirrors a fir.PackageStore: a dense map
// from package ID to that package's results.
type PackageStoreComputeProperties struct {
	packages indexmap.Map[fir.PackageID, *PackageComputeProperties]
}

// NewPackageStoreComputeProperties returns an empty store.
func NewPackageStoreComputeProperties() *PackageStoreComputeProperties {
	return &PackageStoreComputeProperties{}
}

// Get returns the per-package results for id, creating an empty one if
// absent.
func (s *PackageStoreComputeProperties) Get(id fir.PackageID) *PackageComputeProperties {
	pkg, ok := s.packages.Get(id)
	if !ok {
		pkg = NewPackageComputeProperties()
		s.packages.Insert(id, pkg)
	}
	return pkg
}

// Iter calls fn for every package with recorded results, in ascending
// package-ID order.
func (s *PackageStoreComputeProperties) Iter(fn func(id fir.PackageID, props *PackageComputeProperties)) {
	s.packages.Iter(fn)
}

// ComputePropertiesLookup is the capability exposed to consumers: dense
// lookup and insertion by store-wide ID, with both "maybe absent" and
// "fail loudly" variants.
type ComputePropertiesLookup interface {
	FindBlock(id fir.StoreBlockID) (generatorset.ApplicationGeneratorSet, bool)
	FindStmt(id fir.StoreStmtID) (generatorset.ApplicationGeneratorSet, bool)
	FindExpr(id fir.StoreExprID) (generatorset.ApplicationGeneratorSet, bool)
	FindItem(id fir.StoreItemID) (ItemComputeProperties, bool)

	GetBlock(id fir.StoreBlockID) generatorset.ApplicationGeneratorSet
	GetStmt(id fir.StoreStmtID) generatorset.ApplicationGeneratorSet
	GetExpr(id fir.StoreExprID) generatorset.ApplicationGeneratorSet
	GetItem(id fir.StoreItemID) ItemComputeProperties

	InsertBlock(id fir.StoreBlockID, value generatorset.ApplicationGeneratorSet)
	InsertStmt(id fir.StoreStmtID, value generatorset.ApplicationGeneratorSet)
	InsertExpr(id fir.StoreExprID, value generatorset.ApplicationGeneratorSet)
	InsertItem(id fir.StoreItemID, value ItemComputeProperties)
}

var _ ComputePropertiesLookup = (*PackageStoreComputeProperties)(nil)

func (s *PackageStoreComputeProperties) FindBlock(id fir.StoreBlockID) (generatorset.ApplicationGeneratorSet, bool) {
	pkg, ok := s.packages.Get(id.Package)
	if !ok {
		return generatorset.ApplicationGeneratorSet{}, false
	}
	return pkg.Block.Get(id.Block)
}

func (s *PackageStoreComputeProperties) FindStmt(id fir.StoreStmtID) (generatorset.ApplicationGeneratorSet, bool) {
	pkg, ok := s.packages.Get(id.Package)
	if !ok {
		return generatorset.ApplicationGeneratorSet{}, false
	}
	return pkg.Stmt.Get(id.Stmt)
}

func (s *PackageStoreComputeProperties) FindExpr(id fir.StoreExprID) (generatorset.ApplicationGeneratorSet, bool) {
	pkg, ok := s.packages.Get(id.Package)
	if !ok {
		return generatorset.ApplicationGeneratorSet{}, false
	}
	return pkg.Expr.Get(id.Expr)
}

func (s *PackageStoreComputeProperties) FindItem(id fir.StoreItemID) (ItemComputeProperties, bool) {
	pkg, ok := s.packages.Get(id.Package)
	if !ok {
		return ItemComputeProperties{}, false
	}
	return pkg.Items.Get(id.Item)
}

func (s *PackageStoreComputeProperties) GetBlock(id fir.StoreBlockID) generatorset.ApplicationGeneratorSet {
	v, ok := s.FindBlock(id)
	if !ok {
		panic(fmt.Sprintf("rcaprops: no block entry for %+v", id))
	}
	return v
}

func (s *PackageStoreComputeProperties) GetStmt(id fir.StoreStmtID) generatorset.ApplicationGeneratorSet {
	v, ok := s.FindStmt(id)
	if !ok {
		panic(fmt.Sprintf("rcaprops: no stmt entry for %+v", id))
	}
	return v
}

func (s *PackageStoreComputeProperties) GetExpr(id fir.StoreExprID) generatorset.ApplicationGeneratorSet {
	v, ok := s.FindExpr(id)
	if !ok {
		panic(fmt.Sprintf("rcaprops: no expr entry for %+v", id))
	}
	return v
}

func (s *PackageStoreComputeProperties) GetItem(id fir.StoreItemID) ItemComputeProperties {
	v, ok := s.FindItem(id)
	if !ok {
		panic(fmt.Sprintf("rcaprops: no item entry for %+v", id))
	}
	return v
}

func (s *PackageStoreComputeProperties) InsertBlock(id fir.StoreBlockID, value generatorset.ApplicationGeneratorSet) {
	s.Get(id.Package).Block.Insert(id.Block, value)
}

func (s *PackageStoreComputeProperties) InsertStmt(id fir.StoreStmtID, value generatorset.ApplicationGeneratorSet) {
	s.Get(id.Package).Stmt.Insert(id.Stmt, value)
}

func (s *PackageStoreComputeProperties) InsertExpr(id fir.StoreExprID, value generatorset.ApplicationGeneratorSet) {
	s.Get(id.Package).Expr.Insert(id.Expr, value)
}

func (s *PackageStoreComputeProperties) InsertItem(id fir.StoreItemID, value ItemComputeProperties) {
	s.Get(id.Package).Items.Insert(id.Item, value)
}
