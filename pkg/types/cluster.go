package types

import (
	"slices"

	"github.com/cuemby/hutch/pkg/record"
)

// Cluster holds cluster-wide defaults that nodes, groups and instances
// layer their own parameters on top of.
type Cluster struct {
	Name            string
	UUID            string
	MasterNode      string
	VolumeGroupName string
	FileStorageDir  string

	EnabledHypervisors   []HypervisorType
	HVParams             map[HypervisorType]Params
	OSHVP                map[string]map[HypervisorType]Params // os name -> hypervisor -> params
	NDParams             Params
	IPolicy              *InstancePolicy
	EnabledDiskTemplates []DiskTemplate

	// TCPUDPPortPool is nil until decoded or upgraded
	TCPUDPPortPool record.IntSet

	SerialNo int
}

var clusterSchema = record.NewSchema("cluster",
	record.String("name", func(c *Cluster) *string { return &c.Name }),
	record.String("uuid", func(c *Cluster) *string { return &c.UUID }),
	record.String("master_node", func(c *Cluster) *string { return &c.MasterNode }),
	record.String("volume_group_name", func(c *Cluster) *string { return &c.VolumeGroupName }),
	record.String("file_storage_dir", func(c *Cluster) *string { return &c.FileStorageDir }),
	record.Strings("enabled_hypervisors", func(c *Cluster) *[]HypervisorType { return &c.EnabledHypervisors }),
	record.ParamsMap("hvparams", func(c *Cluster) *map[HypervisorType]Params { return &c.HVParams }),
	record.ParamsMapMap("os_hvp", func(c *Cluster) *map[string]map[HypervisorType]Params { return &c.OSHVP }),
	record.Params("ndparams", func(c *Cluster) *Params { return &c.NDParams }),
	record.Object("ipolicy", policySchema, func(c *Cluster) **InstancePolicy { return &c.IPolicy }),
	record.Strings("enabled_disk_templates", func(c *Cluster) *[]DiskTemplate { return &c.EnabledDiskTemplates }),
	record.Set("tcpudp_port_pool", func(c *Cluster) *record.IntSet { return &c.TCPUDPPortPool }),
	record.Int("serial_no", func(c *Cluster) *int { return &c.SerialNo }),
)

// ToDict encodes the cluster to its wire form
func (c *Cluster) ToDict() map[string]any {
	return clusterSchema.ToDict(c)
}

// ClusterFromDict decodes a cluster from its wire form
func ClusterFromDict(m map[string]any) (*Cluster, error) {
	return clusterSchema.FromDict(m)
}

// PrimaryHypervisor returns the first enabled hypervisor, if any
func (c *Cluster) PrimaryHypervisor() (HypervisorType, bool) {
	if len(c.EnabledHypervisors) == 0 {
		return "", false
	}
	return c.EnabledHypervisors[0], true
}

// IsHypervisorEnabled reports whether hv is in the enabled list
func (c *Cluster) IsHypervisorEnabled(hv HypervisorType) bool {
	return slices.Contains(c.EnabledHypervisors, hv)
}

// IsDiskTemplateEnabled reports whether dt is in the enabled list
func (c *Cluster) IsDiskTemplateEnabled(dt DiskTemplate) bool {
	return slices.Contains(c.EnabledDiskTemplates, dt)
}
