package types

import "github.com/cuemby/hutch/pkg/record"

// NodeHvState is the hypervisor-reported resource state of a node
type NodeHvState struct {
	MemTotal int
	MemNode  int
	MemHv    int
	MemInst  int
	CPUTotal int
	CPUNode  int
}

// NodeDiskState is the capacity state of one storage unit on a node
type NodeDiskState struct {
	Total    int
	Reserved int
	Overhead int
}

var hvStateSchema = record.NewSchema("hv_state",
	record.Int("mem_total", func(s *NodeHvState) *int { return &s.MemTotal }),
	record.Int("mem_node", func(s *NodeHvState) *int { return &s.MemNode }),
	record.Int("mem_hv", func(s *NodeHvState) *int { return &s.MemHv }),
	record.Int("mem_inst", func(s *NodeHvState) *int { return &s.MemInst }),
	record.Int("cpu_total", func(s *NodeHvState) *int { return &s.CPUTotal }),
	record.Int("cpu_node", func(s *NodeHvState) *int { return &s.CPUNode }),
)

var diskStateSchema = record.NewSchema("disk_state",
	record.Int("total", func(s *NodeDiskState) *int { return &s.Total }),
	record.Int("reserved", func(s *NodeDiskState) *int { return &s.Reserved }),
	record.Int("overhead", func(s *NodeDiskState) *int { return &s.Overhead }),
)

// Node is a physical machine of the cluster
type Node struct {
	Name        string
	UUID        string
	PrimaryIP   string
	SecondaryIP string

	// Group is the owning node group, by name
	Group string

	Offline         bool
	Drained         bool
	MasterCandidate bool
	MasterCapable   *bool
	VMCapable       *bool

	NDParams  Params
	HVState   map[HypervisorType]*NodeHvState
	DiskState map[StorageType]map[string]*NodeDiskState

	SerialNo int
}

var nodeSchema = record.NewSchema("node",
	record.String("name", func(n *Node) *string { return &n.Name }),
	record.String("uuid", func(n *Node) *string { return &n.UUID }),
	record.String("primary_ip", func(n *Node) *string { return &n.PrimaryIP }),
	record.String("secondary_ip", func(n *Node) *string { return &n.SecondaryIP }),
	record.String("group", func(n *Node) *string { return &n.Group }),
	record.Bool("offline", func(n *Node) *bool { return &n.Offline }),
	record.Bool("drained", func(n *Node) *bool { return &n.Drained }),
	record.Bool("master_candidate", func(n *Node) *bool { return &n.MasterCandidate }),
	record.OptBool("master_capable", func(n *Node) **bool { return &n.MasterCapable }),
	record.OptBool("vm_capable", func(n *Node) **bool { return &n.VMCapable }),
	record.Params("ndparams", func(n *Node) *Params { return &n.NDParams }),
	record.ObjectMap("hv_state", hvStateSchema, func(n *Node) *map[HypervisorType]*NodeHvState { return &n.HVState }),
	record.ObjectMapMap("disk_state", diskStateSchema, func(n *Node) *map[StorageType]map[string]*NodeDiskState { return &n.DiskState }),
	record.Int("serial_no", func(n *Node) *int { return &n.SerialNo }),
)

// ToDict encodes the node to its wire form
func (n *Node) ToDict() map[string]any {
	return nodeSchema.ToDict(n)
}

// NodeFromDict decodes a node from its wire form
func NodeFromDict(m map[string]any) (*Node, error) {
	return nodeSchema.FromDict(m)
}

// IsVMCapable reports whether instances may run on the node. Unset means
// capable.
func (n *Node) IsVMCapable() bool {
	return n.VMCapable == nil || *n.VMCapable
}

// IsMasterCapable reports whether the node may become master. Unset means
// capable.
func (n *Node) IsMasterCapable() bool {
	return n.MasterCapable == nil || *n.MasterCapable
}
