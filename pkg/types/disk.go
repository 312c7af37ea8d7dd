package types

import (
	"errors"
	"fmt"

	"github.com/cuemby/hutch/pkg/record"
	"github.com/spf13/cast"
)

// LogicalID identifies the backing object of a disk. Its shape depends on
// the disk's device type.
type LogicalID interface {
	// DevType is the device type the id belongs to
	DevType() DiskType
	// Tuple returns the fixed-order wire form
	Tuple() []any
}

// LVLogicalID names a logical volume
type LVLogicalID struct {
	VG   string
	Name string
}

func (LVLogicalID) DevType() DiskType { return DiskTypeLV }
func (l LVLogicalID) Tuple() []any    { return []any{l.VG, l.Name} }

// Path returns "vg/name"
func (l LVLogicalID) Path() string { return l.VG + "/" + l.Name }

// DRBDLogicalID describes a replicated pair
type DRBDLogicalID struct {
	PrimaryNode    string
	SecondaryNode  string
	Port           int
	PrimaryMinor   int
	SecondaryMinor int
	Secret         string
}

func (DRBDLogicalID) DevType() DiskType { return DiskTypeDRBD8 }
func (d DRBDLogicalID) Tuple() []any {
	return []any{d.PrimaryNode, d.SecondaryNode, d.Port, d.PrimaryMinor, d.SecondaryMinor, d.Secret}
}

// FileLogicalID is a file-backed disk
type FileLogicalID struct {
	Driver string
	Path   string
}

func (FileLogicalID) DevType() DiskType { return DiskTypeFile }
func (f FileLogicalID) Tuple() []any    { return []any{f.Driver, f.Path} }

// BlockDevLogicalID is an adopted block device
type BlockDevLogicalID struct {
	Driver string
	Path   string
}

func (BlockDevLogicalID) DevType() DiskType { return DiskTypeBlockDev }
func (b BlockDevLogicalID) Tuple() []any    { return []any{b.Driver, b.Path} }

// RBDLogicalID is a RADOS block device
type RBDLogicalID struct {
	Driver string
	Name   string
}

func (RBDLogicalID) DevType() DiskType { return DiskTypeRBD }
func (r RBDLogicalID) Tuple() []any    { return []any{r.Driver, r.Name} }

// ExtLogicalID is a disk managed by an external storage provider
type ExtLogicalID struct {
	Provider string
	Name     string
}

func (ExtLogicalID) DevType() DiskType { return DiskTypeExt }
func (e ExtLogicalID) Tuple() []any    { return []any{e.Provider, e.Name} }

// ParseLogicalID decodes the wire tuple of a logical id for device type dt.
func ParseLogicalID(dt DiskType, raw any) (LogicalID, error) {
	items, err := record.ToList(raw)
	if err != nil {
		return nil, err
	}

	want := 2
	if dt == DiskTypeDRBD8 {
		want = 6
	}
	if len(items) != want {
		return nil, fmt.Errorf("%s logical id needs %d elements, got %d", dt, want, len(items))
	}

	strs := make([]string, 0, 2)
	for _, i := range []int{0, 1} {
		s, err := cast.ToStringE(items[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		strs = append(strs, s)
	}

	switch dt {
	case DiskTypeLV:
		return LVLogicalID{VG: strs[0], Name: strs[1]}, nil
	case DiskTypeFile:
		return FileLogicalID{Driver: strs[0], Path: strs[1]}, nil
	case DiskTypeBlockDev:
		return BlockDevLogicalID{Driver: strs[0], Path: strs[1]}, nil
	case DiskTypeRBD:
		return RBDLogicalID{Driver: strs[0], Name: strs[1]}, nil
	case DiskTypeExt:
		return ExtLogicalID{Provider: strs[0], Name: strs[1]}, nil
	case DiskTypeDRBD8:
		var nums [3]int
		for i := range nums {
			n, err := cast.ToIntE(items[2+i])
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", 2+i, err)
			}
			nums[i] = n
		}
		secret, err := cast.ToStringE(items[5])
		if err != nil {
			return nil, fmt.Errorf("element 5: %w", err)
		}
		return DRBDLogicalID{
			PrimaryNode:    strs[0],
			SecondaryNode:  strs[1],
			Port:           nums[0],
			PrimaryMinor:   nums[1],
			SecondaryMinor: nums[2],
			Secret:         secret,
		}, nil
	}
	return nil, fmt.Errorf("unknown device type %q", dt)
}

// Disk is one virtual disk of an instance. Composite devices (DRBD) carry
// their backing volumes as children.
type Disk struct {
	DevType   DiskType
	Size      int64
	LogicalID LogicalID
	Children  []*Disk
	IVName    string
	Mode      DiskMode
}

var diskSchema *record.Schema[Disk]

func init() {
	diskSchema = record.NewSchema("disk",
		record.Field[Disk]{
			Name: "dev_type",
			Encode: func(d *Disk) (any, bool) {
				dt := d.Type()
				return string(dt), dt != ""
			},
			Decode: func(d *Disk, raw any) error {
				s, err := cast.ToStringE(raw)
				if err != nil {
					return err
				}
				d.DevType = DiskType(s)
				return nil
			},
		},
		record.Int64("size", func(d *Disk) *int64 { return &d.Size }),
		record.Field[Disk]{
			Name: "logical_id",
			Encode: func(d *Disk) (any, bool) {
				if d.LogicalID == nil {
					return nil, false
				}
				return d.LogicalID.Tuple(), true
			},
			Decode: func(d *Disk, raw any) error {
				if d.DevType == "" {
					return errors.New("logical id without dev_type")
				}
				lid, err := ParseLogicalID(d.DevType, raw)
				if err != nil {
					return err
				}
				d.LogicalID = lid
				return nil
			},
		},
		record.ObjectList("children", func() *record.Schema[Disk] { return diskSchema },
			func(d *Disk) *[]*Disk { return &d.Children }),
		record.String("iv_name", func(d *Disk) *string { return &d.IVName }),
		record.String("mode", func(d *Disk) *DiskMode { return &d.Mode }),
	)
}

// Type returns the device type of the disk. A logical id carries its own
// type, which wins over DevType.
func (d *Disk) Type() DiskType {
	if d.LogicalID != nil {
		return d.LogicalID.DevType()
	}
	return d.DevType
}

// ToDict encodes the disk to its wire form
func (d *Disk) ToDict() map[string]any {
	return diskSchema.ToDict(d)
}

// DiskFromDict decodes a disk from its wire form
func DiskFromDict(m map[string]any) (*Disk, error) {
	return diskSchema.FromDict(m)
}

// SecondaryNode returns the secondary node of a DRBD disk. Other device
// types have none.
func (d *Disk) SecondaryNode() (string, bool) {
	if lid, ok := d.LogicalID.(DRBDLogicalID); ok {
		return lid.SecondaryNode, true
	}
	return "", false
}

// Nodes returns the nodes the disk lives on. A DRBD disk lives on both
// ends of its pair; everything else lives on primary.
func (d *Disk) Nodes(primary string) []string {
	if lid, ok := d.LogicalID.(DRBDLogicalID); ok {
		return []string{lid.PrimaryNode, lid.SecondaryNode}
	}
	return []string{primary}
}

// Walk calls fn for d and every descendant, depth first
func (d *Disk) Walk(fn func(*Disk)) {
	fn(d)
	for _, child := range d.Children {
		child.Walk(fn)
	}
}
