package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/cuemby/hutch/pkg/ipolicy"
	"github.com/cuemby/hutch/pkg/metrics"
	"github.com/cuemby/hutch/pkg/params"
	"github.com/cuemby/hutch/pkg/storageunit"
	"github.com/cuemby/hutch/pkg/types"
	"github.com/cuemby/hutch/pkg/version"
	"github.com/spf13/cobra"
)

// Instance commands
var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Inspect instances",
}

var instanceHVParamsCmd = &cobra.Command{
	Use:   "hvparams NAME",
	Short: "Show the effective hypervisor parameters of an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cluster, err := getCluster(store)
		if err != nil {
			return err
		}
		inst, err := store.GetInstance(args[0])
		if err != nil {
			return notFound("instance", args[0], err)
		}

		timer := metrics.NewTimer()
		filled := params.FillHV(cluster, inst)
		timer.ObserveDurationVec(metrics.ResolutionDuration, "hv")
		metrics.ResolutionsTotal.WithLabelValues("hv").Inc()

		return printValue(cmd, os.Stdout, filled)
	},
}

var instanceNodesCmd = &cobra.Command{
	Use:   "nodes NAME",
	Short: "Show the nodes an instance lives on and its volumes per node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		inst, err := store.GetInstance(args[0])
		if err != nil {
			return notFound("instance", args[0], err)
		}

		secondaries := inst.SecondaryNodes()
		if secondaries == nil {
			secondaries = []string{}
		}
		return printValue(cmd, os.Stdout, map[string]any{
			"primary_node":    inst.PrimaryNode,
			"secondary_nodes": secondaries,
			"volumes":         inst.MapLVsByNode(),
		})
	},
}

var instanceDiskCmd = &cobra.Command{
	Use:   "disk NAME INDEX",
	Short: "Show one disk of an instance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		inst, err := store.GetInstance(args[0])
		if err != nil {
			return notFound("instance", args[0], err)
		}
		disk, err := inst.FindDisk(args[1])
		if err != nil {
			return err
		}
		return printValue(cmd, os.Stdout, disk.ToDict())
	},
}

func init() {
	instanceCmd.AddCommand(instanceHVParamsCmd)
	instanceCmd.AddCommand(instanceNodesCmd)
	instanceCmd.AddCommand(instanceDiskCmd)
	rootCmd.AddCommand(instanceCmd)
}

// Node commands
var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Inspect and manage nodes",
}

var nodeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List nodes in the cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cluster, err := getCluster(store)
		if err != nil {
			return err
		}
		nodes, err := store.ListNodes()
		if err != nil {
			return err
		}
		slices.SortFunc(nodes, func(a, b *types.Node) int { return strings.Compare(a.Name, b.Name) })

		fmt.Printf("%-30s %-15s %-12s %s\n", "NAME", "PRIMARY IP", "GROUP", "FLAGS")
		for _, n := range nodes {
			var flags []string
			if n.Name == cluster.MasterNode {
				flags = append(flags, "master")
			}
			if n.MasterCandidate {
				flags = append(flags, "candidate")
			}
			if n.Offline {
				flags = append(flags, "offline")
			}
			if n.Drained {
				flags = append(flags, "drained")
			}
			if !n.IsVMCapable() {
				flags = append(flags, "no-vm")
			}
			fmt.Printf("%-30s %-15s %-12s %s\n", n.Name, n.PrimaryIP, n.Group, strings.Join(flags, " "))
		}
		return nil
	},
}

var nodeNDParamsCmd = &cobra.Command{
	Use:   "ndparams NAME",
	Short: "Show the effective node parameters of a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cluster, err := getCluster(store)
		if err != nil {
			return err
		}
		node, err := store.GetNode(args[0])
		if err != nil {
			return notFound("node", args[0], err)
		}
		var group *types.NodeGroup
		if node.Group != "" {
			if group, err = store.GetNodeGroup(node.Group); err != nil {
				return notFound("node group", node.Group, err)
			}
		}

		timer := metrics.NewTimer()
		filled := params.FillND(cluster, node, group)
		timer.ObserveDurationVec(metrics.ResolutionDuration, "nd")
		metrics.ResolutionsTotal.WithLabelValues("nd").Inc()

		return printValue(cmd, os.Stdout, filled)
	},
}

func init() {
	nodeCmd.AddCommand(nodeListCmd)
	nodeCmd.AddCommand(nodeNDParamsCmd)
	rootCmd.AddCommand(nodeCmd)
}

// Group commands
var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Inspect and manage node groups",
}

var groupIPolicyCmd = &cobra.Command{
	Use:   "ipolicy NAME",
	Short: "Show the effective instance policy of a node group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cluster, err := getCluster(store)
		if err != nil {
			return err
		}
		group, err := store.GetNodeGroup(args[0])
		if err != nil {
			return notFound("node group", args[0], err)
		}

		timer := metrics.NewTimer()
		policy := params.GroupIPolicy(cluster, group)
		timer.ObserveDurationVec(metrics.ResolutionDuration, "ipolicy")
		metrics.ResolutionsTotal.WithLabelValues("ipolicy").Inc()

		return printValue(cmd, os.Stdout, policy.ToDict())
	},
}

func init() {
	groupCmd.AddCommand(groupIPolicyCmd)
	rootCmd.AddCommand(groupCmd)
}

// Policy commands
var ipolicyCmd = &cobra.Command{
	Use:   "ipolicy",
	Short: "Work with instance policies",
}

var ipolicyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an instance policy document",
	Long: `Validate an instance policy document (YAML or JSON) in its wire form.

Examples:
  hutch ipolicy check -f policy.yaml --std`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, _ := cmd.Flags().GetString("file")
		checkStd, _ := cmd.Flags().GetBool("std")

		doc, err := readDocument(filename)
		if err != nil {
			return err
		}
		err = ipolicy.CheckParameterSyntax(doc, checkStd)
		metrics.ValidationChecksTotal.WithLabelValues("ipolicy-file", metrics.Result(err)).Inc()
		if err != nil {
			return err
		}
		fmt.Println("✓ Policy is valid")
		return nil
	},
}

func init() {
	ipolicyCheckCmd.Flags().StringP("file", "f", "", "Policy document (required)")
	ipolicyCheckCmd.Flags().Bool("std", false, "Also require and check the std spec")
	_ = ipolicyCheckCmd.MarkFlagRequired("file")

	ipolicyCmd.AddCommand(ipolicyCheckCmd)
	rootCmd.AddCommand(ipolicyCmd)
}

// Storage commands
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect storage",
}

var storageUnitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the storage units of the enabled disk templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		spindles, _ := cmd.Flags().GetBool("spindles")

		data, err := loadConfigData()
		if err != nil {
			return err
		}
		units, err := storageunit.UnitsOfCluster(data, spindles)
		if err != nil {
			return err
		}
		for _, u := range units {
			fmt.Println(u.String())
		}
		return nil
	},
}

func init() {
	storageUnitsCmd.Flags().Bool("spindles", false, "Include the spindle unit")
	storageCmd.AddCommand(storageUnitsCmd)
	rootCmd.AddCommand(storageCmd)
}

var configVersionCmd = &cobra.Command{
	Use:   "config-version",
	Short: "Show the stored and supported configuration versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Supported: %s (%d)\n", version.String(version.Current), version.Current)

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		v, err := store.Version()
		if err != nil {
			fmt.Println("Stored:    none")
			return nil
		}
		fmt.Printf("Stored:    %s (%d)", version.String(v), v)
		if !version.Compatible(v) {
			fmt.Print(" - run hutch-migrate")
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configVersionCmd)
}
