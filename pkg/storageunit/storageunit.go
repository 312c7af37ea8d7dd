package storageunit

import (
	"errors"
	"fmt"

	"github.com/cuemby/hutch/pkg/record"
	"github.com/cuemby/hutch/pkg/types"
)

// ConfigAccessor is the slice of the cluster configuration the resolver
// needs. *types.ConfigData implements it.
type ConfigAccessor interface {
	GetVGName() string
	GetClusterInfo() *types.Cluster
}

var _ ConfigAccessor = (*types.ConfigData)(nil)

// Unit is a concrete pool of capacity: a storage backend plus the key that
// selects the pool within it. An empty Key means the backend takes none.
type Unit struct {
	Type types.StorageType
	Key  string
}

func (u Unit) String() string {
	if u.Key == "" {
		return string(u.Type)
	}
	return fmt.Sprintf("%s:%s", u.Type, u.Key)
}

// DefaultUnitForTemplate returns the storage unit new disks of template dt
// are carved from.
func DefaultUnitForTemplate(cfg ConfigAccessor, dt types.DiskTemplate) (Unit, error) {
	st, ok := types.DiskTemplateStorageType[dt]
	if !ok {
		return Unit{}, types.NewConfigurationError("unknown disk template %q", dt)
	}

	switch dt {
	case types.DiskTemplatePlain, types.DiskTemplateDRBD:
		return Unit{Type: st, Key: cfg.GetVGName()}, nil
	case types.DiskTemplateFile:
		cluster := cfg.GetClusterInfo()
		if cluster == nil {
			return Unit{}, types.NewConfigurationError("no cluster configuration for disk template %q", dt)
		}
		return Unit{Type: st, Key: cluster.FileStorageDir}, nil
	case types.DiskTemplateSharedFile:
		return Unit{Type: st, Key: types.DefaultSharedFileStorageDir}, nil
	default:
		return Unit{Type: st}, nil
	}
}

// DefaultUnitForSpindles returns the unit spindles are accounted against:
// the physical volumes of the cluster volume group.
func DefaultUnitForSpindles(cfg ConfigAccessor) Unit {
	return Unit{Type: types.StorageLVMPV, Key: cfg.GetVGName()}
}

// UnitsOfCluster returns one unit per enabled disk template, in the
// cluster's order. Templates sharing a backend each get their own entry.
// With includeSpindles the spindle unit is appended last.
func UnitsOfCluster(cfg ConfigAccessor, includeSpindles bool) ([]Unit, error) {
	cluster := cfg.GetClusterInfo()
	if cluster == nil {
		return nil, types.NewConfigurationError("no cluster configuration")
	}

	units := make([]Unit, 0, len(cluster.EnabledDiskTemplates)+1)
	for _, dt := range cluster.EnabledDiskTemplates {
		u, err := DefaultUnitForTemplate(cfg, dt)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	if includeSpindles {
		units = append(units, DefaultUnitForSpindles(cfg))
	}
	return units, nil
}

// SpaceInfo is one entry of a node capacity report
type SpaceInfo struct {
	Type        types.StorageType
	Name        string
	StorageSize int64
	StorageFree int64
}

var spaceInfoSchema = record.NewSchema("space_info",
	record.String("type", func(s *SpaceInfo) *types.StorageType { return &s.Type }),
	record.String("name", func(s *SpaceInfo) *string { return &s.Name }),
	record.Int64("storage_size", func(s *SpaceInfo) *int64 { return &s.StorageSize }),
	record.Int64("storage_free", func(s *SpaceInfo) *int64 { return &s.StorageFree }),
)

// ToDict encodes the entry to its wire form
func (s *SpaceInfo) ToDict() map[string]any {
	return spaceInfoSchema.ToDict(s)
}

// SpaceInfoFromDict decodes one report entry
func SpaceInfoFromDict(m map[string]any) (*SpaceInfo, error) {
	return spaceInfoSchema.FromDict(m)
}

// ParseSpaceInfo decodes a whole capacity report
func ParseSpaceInfo(entries []map[string]any) ([]SpaceInfo, error) {
	out := make([]SpaceInfo, 0, len(entries))
	for i, m := range entries {
		info, err := SpaceInfoFromDict(m)
		if err != nil {
			return nil, fmt.Errorf("failed to decode space info entry %d: %w", i, err)
		}
		out = append(out, *info)
	}
	return out, nil
}

// LookupByType returns the first report entry of storage type st.
func LookupByType(infos []SpaceInfo, st types.StorageType) (SpaceInfo, bool) {
	for _, info := range infos {
		if info.Type == st {
			return info, true
		}
	}
	return SpaceInfo{}, false
}

// ErrMissingSpaceInfo is returned when a report lacks a required entry
var ErrMissingSpaceInfo = errors.New("missing space info")

// StorageData is the disk and spindle capacity of one node
type StorageData struct {
	TotalDisk     int64
	FreeDisk      int64
	TotalSpindles int64
	FreeSpindles  int64
}

// ComputeStorageData derives node capacity from its report. Only LVM is
// accounted: without LVM everything is zero, with LVM both the volume group
// and physical volume entries must be present.
func ComputeStorageData(infos []SpaceInfo, node string, hasLVM bool) (StorageData, error) {
	if !hasLVM {
		return StorageData{}, nil
	}

	vg, ok := LookupByType(infos, types.StorageLVMVG)
	if !ok {
		return StorageData{}, fmt.Errorf("%w: node %s reported no %s entry", ErrMissingSpaceInfo, node, types.StorageLVMVG)
	}
	pv, ok := LookupByType(infos, types.StorageLVMPV)
	if !ok {
		return StorageData{}, fmt.Errorf("%w: node %s reported no %s entry", ErrMissingSpaceInfo, node, types.StorageLVMPV)
	}
	return StorageData{
		TotalDisk:     vg.StorageSize,
		FreeDisk:      vg.StorageFree,
		TotalSpindles: pv.StorageSize,
		FreeSpindles:  pv.StorageFree,
	}, nil
}
