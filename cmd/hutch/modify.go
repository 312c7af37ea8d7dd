package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cuemby/hutch/pkg/log"
	"github.com/cuemby/hutch/pkg/storage"
	"github.com/cuemby/hutch/pkg/types"
	"github.com/cuemby/hutch/pkg/upgrade"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var nodeModifyCmd = &cobra.Command{
	Use:   "modify NAME",
	Short: "Change the role flags of a node",
	Long: `Change the role flags of a node. Only the flags given are changed.

Examples:
  hutch node modify node2.example.com --drained
  hutch node modify node2.example.com --offline=false --master-candidate`,
	Args: cobra.ExactArgs(1),
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

		flags := cmd.Flags()
		if !flags.Changed("offline") && !flags.Changed("drained") && !flags.Changed("master-candidate") {
			return fmt.Errorf("nothing to change: pass --offline, --drained or --master-candidate")
		}
		if flags.Changed("offline") {
			node.Offline, _ = flags.GetBool("offline")
		}
		if flags.Changed("drained") {
			node.Drained, _ = flags.GetBool("drained")
		}
		if flags.Changed("master-candidate") {
			node.MasterCandidate, _ = flags.GetBool("master-candidate")
		}
		if node.Name == cluster.MasterNode && (node.Offline || node.Drained || !node.MasterCandidate) {
			return types.NewPrereqError(types.ErrCodeWrongInput,
				"the master node %q must stay online, undrained and a master candidate", node.Name)
		}

		node.SerialNo++
		if err := store.PutNode(node); err != nil {
			return fmt.Errorf("failed to update node: %w", err)
		}
		if err := touchCluster(store, cluster); err != nil {
			return err
		}

		logger := log.WithNode(node.Name)
		logger.Info().
			Bool("offline", node.Offline).
			Bool("drained", node.Drained).
			Bool("master_candidate", node.MasterCandidate).
			Msg("Node modified")
		fmt.Printf("✓ Node %s modified\n", node.Name)
		return nil
	},
}

var nodeRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a node that hosts no instances",
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
		name := args[0]
		if _, err := store.GetNode(name); err != nil {
			return notFound("node", name, err)
		}
		if name == cluster.MasterNode {
			return types.NewPrereqError(types.ErrCodeWrongInput, "node %q is the master node", name)
		}

		instances, err := store.ListInstances()
		if err != nil {
			return err
		}
		for _, inst := range instances {
			if slices.Contains(inst.AllNodes(), name) {
				return types.NewPrereqError(types.ErrCodeWrongInput,
					"node %q still hosts instance %q", name, inst.Name)
			}
		}

		if err := store.DeleteNode(name); err != nil {
			return fmt.Errorf("failed to remove node: %w", err)
		}
		if err := touchCluster(store, cluster); err != nil {
			return err
		}

		logger := log.WithNode(name)
		logger.Info().Msg("Node removed")
		fmt.Printf("✓ Node %s removed\n", name)
		return nil
	},
}

func init() {
	nodeModifyCmd.Flags().Bool("offline", false, "Mark the node offline")
	nodeModifyCmd.Flags().Bool("drained", false, "Mark the node drained")
	nodeModifyCmd.Flags().Bool("master-candidate", false, "Make the node a master candidate")

	nodeCmd.AddCommand(nodeModifyCmd)
	nodeCmd.AddCommand(nodeRemoveCmd)
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List node groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		groups, err := store.ListNodeGroups()
		if err != nil {
			return err
		}
		nodes, err := store.ListNodes()
		if err != nil {
			return err
		}
		members := make(map[string]int)
		for _, n := range nodes {
			members[n.Group]++
		}

		fmt.Printf("%-20s %-14s %-6s %s\n", "NAME", "ALLOC POLICY", "NODES", "UUID")
		for _, g := range groups {
			fmt.Printf("%-20s %-14s %-6d %s\n", g.Name, g.AllocPolicy, members[g.Name], g.UUID)
		}
		return nil
	},
}

var groupAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add an empty node group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, _ := cmd.Flags().GetString("alloc-policy")
		if !slices.Contains(types.AllocPolicies, types.AllocPolicy(policy)) {
			return types.NewPrereqError(types.ErrCodeWrongInput, "unknown allocation policy %q", policy)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cluster, err := getCluster(store)
		if err != nil {
			return err
		}
		name := args[0]
		if _, err := store.GetNodeGroup(name); err == nil {
			return types.NewPrereqError(types.ErrCodeWrongInput, "node group %q already exists", name)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		group := &types.NodeGroup{
			Name:        name,
			UUID:        uuid.NewString(),
			AllocPolicy: types.AllocPolicy(policy),
		}
		upgrade.UpgradeNodeGroup(group)

		if err := store.PutNodeGroup(group); err != nil {
			return fmt.Errorf("failed to add node group: %w", err)
		}
		if err := touchCluster(store, cluster); err != nil {
			return err
		}

		logger := log.WithGroup(name)
		logger.Info().Str("uuid", group.UUID).Msg("Node group added")
		fmt.Printf("✓ Node group %s added\n", name)
		return nil
	},
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove an empty node group",
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
		name := args[0]
		if _, err := store.GetNodeGroup(name); err != nil {
			return notFound("node group", name, err)
		}

		groups, err := store.ListNodeGroups()
		if err != nil {
			return err
		}
		if len(groups) == 1 {
			return types.NewPrereqError(types.ErrCodeWrongInput, "node group %q is the last group", name)
		}
		nodes, err := store.ListNodes()
		if err != nil {
			return err
		}
		for _, n := range nodes {
			if n.Group == name {
				return types.NewPrereqError(types.ErrCodeWrongInput, "node group %q still contains node %q", name, n.Name)
			}
		}

		if err := store.DeleteNodeGroup(name); err != nil {
			return fmt.Errorf("failed to remove node group: %w", err)
		}
		if err := touchCluster(store, cluster); err != nil {
			return err
		}

		logger := log.WithGroup(name)
		logger.Info().Msg("Node group removed")
		fmt.Printf("✓ Node group %s removed\n", name)
		return nil
	},
}

func init() {
	groupAddCmd.Flags().String("alloc-policy", string(types.AllocPolicyPreferred), "Allocation policy: preferred, last_resort or unallocable")

	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupRemoveCmd)
}

var instanceModifyCmd = &cobra.Command{
	Use:   "modify NAME",
	Short: "Change the hypervisor parameter overrides of an instance",
	Long: `Change the hypervisor parameter overrides of an instance.

Values are parsed as YAML scalars, so numbers and booleans keep their type.

Examples:
  hutch instance modify web1 --hvparam kernel_path=/boot/vmlinuz --hvparam cpu_cap=50
  hutch instance modify web1 --clear-hvparam cpu_cap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, _ := cmd.Flags().GetStringToString("hvparam")
		cleared, _ := cmd.Flags().GetStringSlice("clear-hvparam")
		if len(set) == 0 && len(cleared) == 0 {
			return fmt.Errorf("nothing to change: pass --hvparam or --clear-hvparam")
		}

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

		if inst.HVParams == nil {
			inst.HVParams = types.Params{}
		}
		for _, key := range cleared {
			delete(inst.HVParams, key)
		}
		for key, raw := range set {
			value, err := parseScalar(raw)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			inst.HVParams[key] = value
		}

		inst.SerialNo++
		if err := store.PutInstance(inst); err != nil {
			return fmt.Errorf("failed to update instance: %w", err)
		}
		if err := touchCluster(store, cluster); err != nil {
			return err
		}

		logger := log.WithInstance(inst.Name)
		logger.Info().Int("set", len(set)).Int("cleared", len(cleared)).Msg("Instance modified")
		fmt.Printf("✓ Instance %s modified\n", inst.Name)
		return nil
	},
}

var instanceRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove an instance from the configuration",
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
		name := args[0]
		if _, err := store.GetInstance(name); err != nil {
			return notFound("instance", name, err)
		}
		if err := store.DeleteInstance(name); err != nil {
			return fmt.Errorf("failed to remove instance: %w", err)
		}
		if err := touchCluster(store, cluster); err != nil {
			return err
		}

		logger := log.WithInstance(name)
		logger.Info().Msg("Instance removed")
		fmt.Printf("✓ Instance %s removed\n", name)
		return nil
	},
}

func init() {
	instanceModifyCmd.Flags().StringToString("hvparam", nil, "Set a hypervisor parameter override (key=value, repeatable)")
	instanceModifyCmd.Flags().StringSlice("clear-hvparam", nil, "Drop a hypervisor parameter override (repeatable)")

	instanceCmd.AddCommand(instanceModifyCmd)
	instanceCmd.AddCommand(instanceRemoveCmd)
}

// parseScalar reads a command line value as a YAML scalar
func parseScalar(raw string) (any, error) {
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return nil, err
	}
	switch value.(type) {
	case nil:
		return raw, nil
	case map[string]any, []any:
		return nil, fmt.Errorf("expected a scalar, got %q", raw)
	}
	return value, nil
}
