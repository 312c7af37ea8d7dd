package types

import "slices"

// HypervisorType identifies a hypervisor driver
type HypervisorType string

const (
	HypervisorChroot HypervisorType = "chroot"
	HypervisorFake   HypervisorType = "fake"
	HypervisorKVM    HypervisorType = "kvm"
	HypervisorLXC    HypervisorType = "lxc"
	HypervisorXenHVM HypervisorType = "xen-hvm"
	HypervisorXenPVM HypervisorType = "xen-pvm"
)

// HypervisorTypes lists every known hypervisor, sorted
var HypervisorTypes = []HypervisorType{
	HypervisorChroot,
	HypervisorFake,
	HypervisorKVM,
	HypervisorLXC,
	HypervisorXenHVM,
	HypervisorXenPVM,
}

// DefaultEnabledHypervisor is enabled on clusters that list none
const DefaultEnabledHypervisor = HypervisorKVM

// DiskTemplate names how an instance's disks are realized
type DiskTemplate string

const (
	DiskTemplateBlockDev   DiskTemplate = "blockdev"
	DiskTemplateDiskless   DiskTemplate = "diskless"
	DiskTemplateDRBD       DiskTemplate = "drbd"
	DiskTemplateExt        DiskTemplate = "ext"
	DiskTemplateFile       DiskTemplate = "file"
	DiskTemplatePlain      DiskTemplate = "plain"
	DiskTemplateRBD        DiskTemplate = "rbd"
	DiskTemplateSharedFile DiskTemplate = "sharedfile"
)

// DiskTemplatePreference lists every disk template, most preferred first
var DiskTemplatePreference = []DiskTemplate{
	DiskTemplateDRBD,
	DiskTemplatePlain,
	DiskTemplateFile,
	DiskTemplateSharedFile,
	DiskTemplateBlockDev,
	DiskTemplateRBD,
	DiskTemplateExt,
	DiskTemplateDiskless,
}

// DefaultEnabledDiskTemplates is applied to clusters that list none
var DefaultEnabledDiskTemplates = []DiskTemplate{DiskTemplateDRBD, DiskTemplatePlain}

// StorageType identifies a storage backend
type StorageType string

const (
	StorageBlockDev StorageType = "blockdev"
	StorageDiskless StorageType = "diskless"
	StorageExt      StorageType = "ext"
	StorageFile     StorageType = "file"
	StorageLVMPV    StorageType = "lvm-pv"
	StorageLVMVG    StorageType = "lvm-vg"
	StorageRados    StorageType = "rados"
)

// StorageTypes lists every storage backend
var StorageTypes = []StorageType{
	StorageBlockDev,
	StorageDiskless,
	StorageExt,
	StorageFile,
	StorageLVMPV,
	StorageLVMVG,
	StorageRados,
}

// DiskTemplateStorageType maps each disk template to its backend
var DiskTemplateStorageType = map[DiskTemplate]StorageType{
	DiskTemplateBlockDev:   StorageBlockDev,
	DiskTemplateDiskless:   StorageDiskless,
	DiskTemplateDRBD:       StorageLVMVG,
	DiskTemplateExt:        StorageExt,
	DiskTemplateFile:       StorageFile,
	DiskTemplatePlain:      StorageLVMVG,
	DiskTemplateRBD:        StorageRados,
	DiskTemplateSharedFile: StorageFile,
}

// DiskType is the device kind of a single disk
type DiskType string

const (
	DiskTypeLV       DiskType = "lvm"
	DiskTypeDRBD8    DiskType = "drbd8"
	DiskTypeFile     DiskType = "file"
	DiskTypeBlockDev DiskType = "blockdev"
	DiskTypeRBD      DiskType = "rbd"
	DiskTypeExt      DiskType = "ext"
)

// DiskMode is the access mode of a disk
type DiskMode string

const (
	DiskModeReadWrite DiskMode = "rw"
	DiskModeReadOnly  DiskMode = "ro"
)

// AllocPolicy controls whether new instances may land in a node group
type AllocPolicy string

const (
	AllocPolicyPreferred   AllocPolicy = "preferred"
	AllocPolicyLastResort  AllocPolicy = "last_resort"
	AllocPolicyUnallocable AllocPolicy = "unallocable"
)

// AllocPolicies lists the valid allocation policies
var AllocPolicies = []AllocPolicy{AllocPolicyPreferred, AllocPolicyLastResort, AllocPolicyUnallocable}

// AdminState is the administratively requested state of an instance
type AdminState string

const (
	AdminStateUp      AdminState = "up"
	AdminStateDown    AdminState = "down"
	AdminStateOffline AdminState = "offline"
)

// Node parameter keys
const (
	NDOOBProgram       = "oob_program"
	NDSpindleCount     = "spindle_count"
	NDExclusiveStorage = "exclusive_storage"
	NDOVS              = "ovs"
	NDOVSName          = "ovs_name"
	NDOVSLink          = "ovs_link"
	NDSSHPort          = "ssh_port"
	NDCPUSpeed         = "cpu_speed"
)

// Instance policy keys
const (
	IPolicyMinMax        = "minmax"
	IPolicyStd           = "std"
	IPolicyVCPURatio     = "vcpu-ratio"
	IPolicySpindleRatio  = "spindle-ratio"
	IPolicyDiskTemplates = "disk-templates"

	ISpecMin = "min"
	ISpecMax = "max"
)

// IPolicyKeys lists every recognized top-level instance policy key
var IPolicyKeys = []string{
	IPolicyMinMax,
	IPolicyStd,
	IPolicyVCPURatio,
	IPolicySpindleRatio,
	IPolicyDiskTemplates,
}

// IPolicyRatioKeys are the numeric policy parameters
var IPolicyRatioKeys = []string{IPolicyVCPURatio, IPolicySpindleRatio}

// Instance spec parameters
const (
	ISpecMemSize    = "memory-size"
	ISpecCPUCount   = "cpu-count"
	ISpecDiskCount  = "disk-count"
	ISpecDiskSize   = "disk-size"
	ISpecNICCount   = "nic-count"
	ISpecSpindleUse = "spindle-use"
)

// ISpecParameters is the fixed parameter set of every instance spec
var ISpecParameters = []string{
	ISpecMemSize,
	ISpecCPUCount,
	ISpecDiskCount,
	ISpecDiskSize,
	ISpecNICCount,
	ISpecSpindleUse,
}

// Limits
const (
	MaxDisks = 16
	MaxNICs  = 8
)

// Storage locations
const (
	DefaultVGName               = "xenvg"
	DefaultFileStorageDir       = "/srv/hutch/file-storage"
	DefaultSharedFileStorageDir = "/srv/hutch/shared-file-storage"
)

// ValidHypervisor reports whether hv is a known hypervisor type
func ValidHypervisor(hv HypervisorType) bool {
	return slices.Contains(HypervisorTypes, hv)
}

// ValidDiskTemplate reports whether dt is a known disk template
func ValidDiskTemplate(dt DiskTemplate) bool {
	_, ok := DiskTemplateStorageType[dt]
	return ok
}

// ValidStorageType reports whether st is a known storage backend
func ValidStorageType(st StorageType) bool {
	return slices.Contains(StorageTypes, st)
}

// IsISpecParameter reports whether name is one of the six spec parameters
func IsISpecParameter(name string) bool {
	return slices.Contains(ISpecParameters, name)
}

// IsIPolicyKey reports whether key is a recognized policy key
func IsIPolicyKey(key string) bool {
	return slices.Contains(IPolicyKeys, key)
}
