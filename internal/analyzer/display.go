package analyzer

import (
	"fmt"
	"strings"

	"rca/internal/fir"
	"rca/internal/generatorset"
	"rca/internal/rcaprops"
)

// Display renders a completed analysis as an indented, human-readable
// report: one section per package, one line per callable item naming its
// specializations' inherent ComputeKind and parameter deltas. Printed by
// the CLI's analyze, reanalyze and watch subcommands; not for machine
// consumption.
func Display(store *fir.PackageStore, props *rcaprops.PackageStoreComputeProperties) string {
	var b strings.Builder
	store.Packages(func(pkgID fir.PackageID, pkg *fir.Package) {
		fmt.Fprintf(&b, "package %d\n", pkgID)
		pkg.Items.Iter(func(itemID fir.LocalItemID, item fir.Item) {
			if item.Kind != fir.ItemCallable || item.Callable == nil {
				return
			}
			displayCallable(&b, fir.StoreItemID{Package: pkgID, Item: itemID}, item.Callable, props)
		})
	})
	return b.String()
}

func displayCallable(b *strings.Builder, id fir.StoreItemID, callable *fir.Callable, props *rcaprops.PackageStoreComputeProperties) {
	name := callable.Name
	if name == "" {
		name = fmt.Sprintf("item%d", id.Item)
	}
	result, ok := props.FindItem(id)
	if !ok || !result.IsCallable {
		fmt.Fprintf(b, "  %s: <not analyzed>\n", name)
		return
	}
	fmt.Fprintf(b, "  %s:\n", name)
	displaySpec(b, "body", result.Callable.Body)
	if result.Callable.Adj != nil {
		displaySpec(b, "adj", *result.Callable.Adj)
	}
	if result.Callable.Ctl != nil {
		displaySpec(b, "ctl", *result.Callable.Ctl)
	}
	if result.Callable.CtlAdj != nil {
		displaySpec(b, "ctl-adj", *result.Callable.CtlAdj)
	}
}

func displaySpec(b *strings.Builder, label string, gs generatorset.ApplicationGeneratorSet) {
	fmt.Fprintf(b, "    %s: inherent=%s\n", label, gs.Inherent)
	for i, app := range gs.DynamicParamApplications {
		if app.IsArray() {
			arr := app.Array()
			fmt.Fprintf(b, "      param[%d] (array): dyn-content/static-size=%s static-content/dyn-size=%s both-dynamic=%s\n",
				i, arr.DynamicContentStaticSize, arr.StaticContentDynamicSize, arr.DynamicContentDynamicSize)
			continue
		}
		fmt.Fprintf(b, "      param[%d]: %s\n", i, app.Element())
	}
}
