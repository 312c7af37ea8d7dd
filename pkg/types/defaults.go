package types

import (
	"slices"

	"github.com/cuemby/hutch/pkg/record"
)

// Params is a free-form parameter map (hypervisor or node parameters)
type Params map[string]any

// Copy returns a deep copy. A nil map copies to nil.
func (p Params) Copy() Params {
	if p == nil {
		return nil
	}
	return Params(record.CopyMap(p))
}

// HVCDefaults holds the built-in parameters of every hypervisor type
var HVCDefaults = map[HypervisorType]Params{
	HypervisorChroot: {
		"init_script": "/hutch-chroot",
	},
	HypervisorFake: {
		"migration_mode": "live",
	},
	HypervisorKVM: {
		"kernel_path":         "/boot/vmlinuz-kvmU",
		"initrd_path":         "",
		"root_path":           "/dev/vda1",
		"kernel_args":         "ro",
		"boot_order":          "disk",
		"serial_console":      true,
		"vnc_bind_address":    "",
		"acpi":                true,
		"use_chroot":          false,
		"cpu_mask":            "all",
		"migration_port":      8102,
		"migration_bandwidth": 32,
		"migration_downtime":  30,
		"migration_mode":      "live",
	},
	HypervisorLXC: {
		"cpu_mask":        "",
		"startup_timeout": 30,
	},
	HypervisorXenHVM: {
		"boot_order":       "cd",
		"cdrom_image_path": "",
		"nic_type":         "rtl8139",
		"disk_type":        "paravirtual",
		"vnc_bind_address": "0.0.0.0",
		"acpi":             true,
		"pae":              true,
		"kernel_path":      "/usr/lib/xen/boot/hvmloader",
		"cpu_mask":         "all",
		"migration_port":   8002,
		"migration_mode":   "non-live",
	},
	HypervisorXenPVM: {
		"use_bootloader":  false,
		"bootloader_path": "/usr/lib/xen-default/bin/pygrub",
		"kernel_path":     "/boot/vmlinuz-xenU",
		"initrd_path":     "",
		"root_path":       "/dev/xvda1",
		"kernel_args":     "ro",
		"cpu_mask":        "all",
		"migration_port":  8002,
		"migration_mode":  "live",
	},
}

// HVDefaults returns a copy of the built-in parameters for hv, or an empty
// map for an unknown type.
func HVDefaults(hv HypervisorType) Params {
	if p, ok := HVCDefaults[hv]; ok {
		return p.Copy()
	}
	return Params{}
}

// NDCDefaults holds the built-in node parameters
var NDCDefaults = Params{
	NDOOBProgram:       "",
	NDSpindleCount:     1,
	NDExclusiveStorage: false,
	NDOVS:              false,
	NDOVSName:          "switch1",
	NDOVSLink:          "",
	NDSSHPort:          22,
	NDCPUSpeed:         1.0,
}

// NDDefaults returns a copy of NDCDefaults.
func NDDefaults() Params {
	return NDCDefaults.Copy()
}

// DefaultMinMax returns the built-in min/max spec pair.
func DefaultMinMax() *MinMaxISpecs {
	return &MinMaxISpecs{
		Min: ISpec{
			ISpecMemSize:    128,
			ISpecCPUCount:   1,
			ISpecDiskCount:  1,
			ISpecDiskSize:   1024,
			ISpecNICCount:   1,
			ISpecSpindleUse: 1,
		},
		Max: ISpec{
			ISpecMemSize:    32768,
			ISpecCPUCount:   8,
			ISpecDiskCount:  MaxDisks,
			ISpecDiskSize:   1024 * 1024,
			ISpecNICCount:   MaxNICs,
			ISpecSpindleUse: 12,
		},
	}
}

// DefaultIPolicy returns a fresh copy of the built-in full instance policy.
func DefaultIPolicy() *InstancePolicy {
	minmax := DefaultMinMax()
	vcpuRatio := 4.0
	spindleRatio := 32.0
	return &InstancePolicy{
		MinMax:        []*MinMaxISpecs{minmax},
		Std:           minmax.Min.Copy(),
		VCPURatio:     &vcpuRatio,
		SpindleRatio:  &spindleRatio,
		DiskTemplates: slices.Clone(DiskTemplatePreference),
	}
}
