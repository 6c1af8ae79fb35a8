package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rca/internal/analyzer"
	"rca/internal/capability"
	"rca/internal/fir"
	"rca/internal/rcaconfig"
	"rca/internal/rcaprops"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <package> <item>",
	Short: "Print the analyzed generator set for one item",
	Args:  cobra.ExactArgs(2),
	RunE:  runInspect,
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities <package> <item>",
	Short: "Print the coarse runtime capability bucket required by one item's body",
	Long: `Resolves an item's inherent ComputeKind and reports which coarse
RuntimeCapabilityFlags buckets (ForwardBranching, IntegerComputations,
FloatingPointComputations, BackwardsBranching, HigherLevelConstructs) its
runtime features fall into, and which individual features contributed to
each bucket.`,
	Args: cobra.ExactArgs(2),
	RunE: runCapabilities,
}

func analyzeForInspection(cfg *rcaconfig.Config) (*fir.PackageStore, *rcaprops.PackageStoreComputeProperties, error) {
	store, err := loadCombinedStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, analyzer.AnalyzeAll(store), nil
}

func parseStoreItemID(pkgArg, itemArg string) (fir.StoreItemID, error) {
	var pkgID, itemID int32
	if _, err := fmt.Sscanf(pkgArg, "%d", &pkgID); err != nil {
		return fir.StoreItemID{}, fmt.Errorf("invalid package id %q: %w", pkgArg, err)
	}
	if _, err := fmt.Sscanf(itemArg, "%d", &itemID); err != nil {
		return fir.StoreItemID{}, fmt.Errorf("invalid item id %q: %w", itemArg, err)
	}
	return fir.StoreItemID{Package: fir.PackageID(pkgID), Item: fir.LocalItemID(itemID)}, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := rcaconfig.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	_, props, err := analyzeForInspection(cfg)
	if err != nil {
		return err
	}

	id, err := parseStoreItemID(args[0], args[1])
	if err != nil {
		return err
	}

	result, ok := props.FindItem(id)
	if !ok || !result.IsCallable {
		return fmt.Errorf("no callable analyzed at %+v", id)
	}

	fmt.Printf("body: inherent=%s\n", result.Callable.Body.Inherent)
	for i, app := range result.Callable.Body.DynamicParamApplications {
		if app.IsArray() {
			arr := app.Array()
			fmt.Printf("  param[%d] (array): dyn-content/static-size=%s static-content/dyn-size=%s both-dynamic=%s\n",
				i, arr.DynamicContentStaticSize, arr.StaticContentDynamicSize, arr.DynamicContentDynamicSize)
			continue
		}
		fmt.Printf("  param[%d]: %s\n", i, app.Element())
	}
	return nil
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	cfg, err := rcaconfig.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	_, props, err := analyzeForInspection(cfg)
	if err != nil {
		return err
	}

	id, err := parseStoreItemID(args[0], args[1])
	if err != nil {
		return err
	}

	result, ok := props.FindItem(id)
	if !ok || !result.IsCallable {
		return fmt.Errorf("no callable analyzed at %+v", id)
	}

	features := result.Callable.Body.Inherent.RuntimeFeatures()
	caps := features.RuntimeCapabilities()
	if caps == 0 {
		fmt.Println("no runtime capability requirement beyond the base target")
		return nil
	}
	fmt.Printf("capabilities: %s\n", caps)

	for _, bucket := range []capability.RuntimeCapabilityFlags{
		capability.ForwardBranching,
		capability.IntegerComputations,
		capability.FloatingPointComputations,
		capability.BackwardsBranching,
		capability.HigherLevelConstructs,
	} {
		if !caps.Intersects(bucket) {
			continue
		}
		contributing := features.ContributingFeatures(bucket)
		fmt.Printf("  %s <- %s\n", bucket, contributing)
	}
	return nil
}
