package types

import "github.com/cuemby/hutch/pkg/record"

// NodeGroup groups nodes that share node parameters and an instance policy
type NodeGroup struct {
	Name string
	UUID string

	// NDParams overrides cluster node parameters for member nodes
	NDParams Params

	// IPolicy is a diff over the cluster instance policy
	IPolicy *InstancePolicy

	AllocPolicy AllocPolicy
	SerialNo    int
}

var nodeGroupSchema = record.NewSchema("nodegroup",
	record.String("name", func(g *NodeGroup) *string { return &g.Name }),
	record.String("uuid", func(g *NodeGroup) *string { return &g.UUID }),
	record.Params("ndparams", func(g *NodeGroup) *Params { return &g.NDParams }),
	record.Object("ipolicy", policySchema, func(g *NodeGroup) **InstancePolicy { return &g.IPolicy }),
	record.String("alloc_policy", func(g *NodeGroup) *AllocPolicy { return &g.AllocPolicy }),
	record.Int("serial_no", func(g *NodeGroup) *int { return &g.SerialNo }),
)

// ToDict encodes the group to its wire form
func (g *NodeGroup) ToDict() map[string]any {
	return nodeGroupSchema.ToDict(g)
}

// NodeGroupFromDict decodes a group from its wire form
func NodeGroupFromDict(m map[string]any) (*NodeGroup, error) {
	return nodeGroupSchema.FromDict(m)
}
