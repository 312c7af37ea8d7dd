package types

import (
	"maps"
	"slices"

	"github.com/cuemby/hutch/pkg/record"
)

// ConfigData is the root of a configuration snapshot. Entities are keyed by
// name; references between them are names resolved through the lookup
// methods below.
type ConfigData struct {
	Version    int
	Cluster    *Cluster
	NodeGroups map[string]*NodeGroup
	Nodes      map[string]*Node
	Instances  map[string]*Instance
	SerialNo   int
}

var configSchema = record.NewSchema("config",
	record.Int("version", func(c *ConfigData) *int { return &c.Version }),
	record.Object("cluster", clusterSchema, func(c *ConfigData) **Cluster { return &c.Cluster }),
	record.ObjectMap("nodegroups", nodeGroupSchema, func(c *ConfigData) *map[string]*NodeGroup { return &c.NodeGroups }),
	record.ObjectMap("nodes", nodeSchema, func(c *ConfigData) *map[string]*Node { return &c.Nodes }),
	record.ObjectMap("instances", instanceSchema, func(c *ConfigData) *map[string]*Instance { return &c.Instances }),
	record.Int("serial_no", func(c *ConfigData) *int { return &c.SerialNo }),
)

// ToDict encodes the snapshot to its wire form
func (c *ConfigData) ToDict() map[string]any {
	return configSchema.ToDict(c)
}

// ConfigDataFromDict decodes a snapshot. Entities without a name take the
// name of their map key.
func ConfigDataFromDict(m map[string]any) (*ConfigData, error) {
	data, err := configSchema.FromDict(m)
	if err != nil {
		return nil, err
	}
	for name, g := range data.NodeGroups {
		if g.Name == "" {
			g.Name = name
		}
	}
	for name, n := range data.Nodes {
		if n.Name == "" {
			n.Name = name
		}
	}
	for name, inst := range data.Instances {
		if inst.Name == "" {
			inst.Name = name
		}
	}
	return data, nil
}

// Clone returns an independent copy of the snapshot
func (c *ConfigData) Clone() (*ConfigData, error) {
	return ConfigDataFromDict(c.ToDict())
}

// Diff describes how other differs from c, or "" if they encode equally
func (c *ConfigData) Diff(other *ConfigData) string {
	return configSchema.Diff(c, other)
}

// Node resolves a node reference
func (c *ConfigData) Node(name string) (*Node, error) {
	if n, ok := c.Nodes[name]; ok {
		return n, nil
	}
	return nil, NewPrereqError(ErrCodeUnknownEntity, "node %q not found", name)
}

// NodeGroup resolves a node group reference
func (c *ConfigData) NodeGroup(name string) (*NodeGroup, error) {
	if g, ok := c.NodeGroups[name]; ok {
		return g, nil
	}
	return nil, NewPrereqError(ErrCodeUnknownEntity, "node group %q not found", name)
}

// Instance resolves an instance reference
func (c *ConfigData) Instance(name string) (*Instance, error) {
	if inst, ok := c.Instances[name]; ok {
		return inst, nil
	}
	return nil, NewPrereqError(ErrCodeUnknownEntity, "instance %q not found", name)
}

// GroupOf returns the group of a node, or nil when the node has none
func (c *ConfigData) GroupOf(node *Node) (*NodeGroup, error) {
	if node.Group == "" {
		return nil, nil
	}
	return c.NodeGroup(node.Group)
}

// NodeNames returns node names, sorted
func (c *ConfigData) NodeNames() []string {
	return slices.Sorted(maps.Keys(c.Nodes))
}

// NodeGroupNames returns group names, sorted
func (c *ConfigData) NodeGroupNames() []string {
	return slices.Sorted(maps.Keys(c.NodeGroups))
}

// InstanceNames returns instance names, sorted
func (c *ConfigData) InstanceNames() []string {
	return slices.Sorted(maps.Keys(c.Instances))
}

// GetVGName returns the cluster volume group name
func (c *ConfigData) GetVGName() string {
	if c.Cluster == nil {
		return ""
	}
	return c.Cluster.VolumeGroupName
}

// GetClusterInfo returns the cluster object
func (c *ConfigData) GetClusterInfo() *Cluster {
	return c.Cluster
}
