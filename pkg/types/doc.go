/*
Package types defines the configuration entities of a hutch cluster.

A configuration snapshot (ConfigData) holds one Cluster plus node groups,
nodes and instances keyed by name. Every entity is a plain struct with a
static record schema (see pkg/record) that fixes its wire keys; ToDict and
the matching FromDict function are the persisted and exchanged shape.

# Architecture

	┌──────────────────────── ConfigData ─────────────────────────┐
	│                                                              │
	│  Cluster ── hvparams, os_hvp, ndparams, ipolicy,             │
	│     │        enabled hypervisors / disk templates            │
	│     │                                                        │
	│  NodeGroup ── ndparams, ipolicy diff                         │
	│     ▲ (by name)                                              │
	│  Node ── group, ndparams, hv_state, disk_state               │
	│     ▲ (by name)                                              │
	│  Instance ── primary_node, hvparams, disks                   │
	│                 │                                            │
	│               Disk ── logical_id (typed per dev_type)        │
	│                 └── children (recursive)                     │
	└──────────────────────────────────────────────────────────────┘

References between entities are names, never pointers. Nodes and groups can
be renamed or removed independently of what refers to them, so callers
resolve a reference through ConfigData.Node, NodeGroup or Instance and get a
*PrereqError with code unknown_entity when it dangles.

# Core Types

Cluster topology:
  - Cluster: cluster-wide defaults and enabled hypervisors/templates
  - NodeGroup: node parameter overrides and an instance policy diff
  - Node: per-node overrides, hypervisor state and disk state

Instances and storage:
  - Instance: a VM with its primary node, OS, hypervisor and disks
  - Disk: a virtual disk; DRBD disks carry their LVs as children
  - LogicalID: LVLogicalID, DRBDLogicalID, FileLogicalID,
    BlockDevLogicalID, RBDLogicalID, ExtLogicalID

Sizing policy:
  - InstancePolicy: min/max spec pairs, std spec, ratios, templates
  - ISpec: memory-size, cpu-count, disk-count, disk-size, nic-count,
    spindle-use

# Disks

A DRBD logical id is the tuple

	[primary node, secondary node, port, primary minor, secondary minor, secret]

and is the only place a secondary node comes from. Instance.SecondaryNodes
walks all disks recursively and returns those nodes, minus the primary, in
first-seen order; Instance.AllNodes puts the primary in front.

Instance.FindDisk takes the user-supplied index string and fails three
distinct ways, all as *PrereqError:

	"x"   → wrong_input     (not an integer)
	"99"  → wrong_input     (outside [0, MaxDisks))
	"3"   → unknown_entity  (in range, but the instance has fewer disks)

# Errors

	errors.Is(err, types.ErrConfiguration)  // *ConfigurationError
	errors.Is(err, types.ErrPrecondition)   // *PrereqError, see Code

# Usage

	data, err := types.ConfigDataFromDict(raw)
	if err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	inst, err := data.Instance("web1")
	if err != nil {
		return err
	}
	disk, err := inst.FindDisk("0")
*/
package types
