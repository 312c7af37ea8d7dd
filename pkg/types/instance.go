package types

import (
	"strconv"

	"github.com/cuemby/hutch/pkg/record"
)

// Instance is a virtual machine
type Instance struct {
	Name string
	UUID string

	// PrimaryNode is the node the instance runs on, by name
	PrimaryNode string

	OS           string
	Hypervisor   HypervisorType
	HVParams     Params
	DiskTemplate DiskTemplate
	AdminState   AdminState

	// Disks are ordered; the index is the user-visible disk number
	Disks []*Disk

	SerialNo int
}

var instanceSchema = record.NewSchema("instance",
	record.String("name", func(i *Instance) *string { return &i.Name }),
	record.String("uuid", func(i *Instance) *string { return &i.UUID }),
	record.String("primary_node", func(i *Instance) *string { return &i.PrimaryNode }),
	record.String("os", func(i *Instance) *string { return &i.OS }),
	record.String("hypervisor", func(i *Instance) *HypervisorType { return &i.Hypervisor }),
	record.Params("hvparams", func(i *Instance) *Params { return &i.HVParams }),
	record.String("disk_template", func(i *Instance) *DiskTemplate { return &i.DiskTemplate }),
	record.String("admin_state", func(i *Instance) *AdminState { return &i.AdminState }),
	record.ObjectList("disks", func() *record.Schema[Disk] { return diskSchema },
		func(i *Instance) *[]*Disk { return &i.Disks }),
	record.Int("serial_no", func(i *Instance) *int { return &i.SerialNo }),
)

// ToDict encodes the instance to its wire form
func (i *Instance) ToDict() map[string]any {
	return instanceSchema.ToDict(i)
}

// InstanceFromDict decodes an instance from its wire form
func InstanceFromDict(m map[string]any) (*Instance, error) {
	return instanceSchema.FromDict(m)
}

// SecondaryNodes returns every node referenced by the instance's disks other
// than the primary, in first-seen order.
func (i *Instance) SecondaryNodes() []string {
	seen := map[string]bool{i.PrimaryNode: true}
	var out []string
	for _, disk := range i.Disks {
		disk.Walk(func(d *Disk) {
			lid, ok := d.LogicalID.(DRBDLogicalID)
			if !ok {
				return
			}
			for _, node := range []string{lid.PrimaryNode, lid.SecondaryNode} {
				if !seen[node] {
					seen[node] = true
					out = append(out, node)
				}
			}
		})
	}
	return out
}

// AllNodes returns the primary node followed by SecondaryNodes
func (i *Instance) AllNodes() []string {
	return append([]string{i.PrimaryNode}, i.SecondaryNodes()...)
}

// MapLVsByNode returns, per node, the "vg/name" logical volumes backing the
// instance. The primary node is always present.
func (i *Instance) MapLVsByNode() map[string][]string {
	lvmap := map[string][]string{i.PrimaryNode: {}}
	mapLVs(lvmap, i.Disks, i.PrimaryNode)
	return lvmap
}

func mapLVs(lvmap map[string][]string, disks []*Disk, node string) {
	if _, ok := lvmap[node]; !ok {
		lvmap[node] = []string{}
	}
	for _, d := range disks {
		switch lid := d.LogicalID.(type) {
		case LVLogicalID:
			lvmap[node] = append(lvmap[node], lid.Path())
		case DRBDLogicalID:
			if len(d.Children) > 0 {
				mapLVs(lvmap, d.Children, lid.PrimaryNode)
				mapLVs(lvmap, d.Children, lid.SecondaryNode)
			}
		default:
			if len(d.Children) > 0 {
				mapLVs(lvmap, d.Children, node)
			}
		}
	}
}

// FindDisk returns the disk with the given user-visible index.
//
// A non-integer index and an index outside [0, MaxDisks) are rejected as
// wrong input; an index in range that the instance does not have is an
// unknown entity.
func (i *Instance) FindDisk(idx string) (*Disk, error) {
	n, err := strconv.Atoi(idx)
	if err != nil {
		return nil, NewPrereqError(ErrCodeWrongInput, "invalid disk index %q", idx)
	}
	if n < 0 || n >= MaxDisks {
		return nil, NewPrereqError(ErrCodeWrongInput, "disk index %d out of range [0, %d)", n, MaxDisks)
	}
	if n >= len(i.Disks) {
		if len(i.Disks) == 0 {
			return nil, NewPrereqError(ErrCodeUnknownEntity, "disk %d not found, instance %s has no disks", n, i.Name)
		}
		return nil, NewPrereqError(ErrCodeUnknownEntity, "disk %d not found, valid indices are 0 to %d", n, len(i.Disks)-1)
	}
	return i.Disks[n], nil
}
