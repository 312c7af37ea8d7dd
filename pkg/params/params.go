package params

import (
	"slices"

	"github.com/cuemby/hutch/pkg/record"
	"github.com/cuemby/hutch/pkg/types"
)

// FillDict returns defaults updated with custom, minus skipKeys. Neither
// input is modified.
func FillDict(defaults, custom types.Params, skipKeys ...string) types.Params {
	out := make(types.Params, len(defaults)+len(custom))
	for k, v := range defaults {
		out[k] = record.DeepCopy(v)
	}
	for k, v := range custom {
		out[k] = record.DeepCopy(v)
	}
	for _, k := range skipKeys {
		delete(out, k)
	}
	return out
}

// GetHVDefaults returns the cluster-level parameters of hvType, with the OS
// override layer applied when osName has one for that hypervisor.
func GetHVDefaults(cluster *types.Cluster, hvType types.HypervisorType, osName string) types.Params {
	if hvType == "" {
		return types.Params{}
	}
	out := FillDict(nil, cluster.HVParams[hvType])
	if osName == "" {
		return out
	}
	if osParams, ok := cluster.OSHVP[osName]; ok {
		if hvParams, ok := osParams[hvType]; ok {
			out = FillDict(out, hvParams)
		}
	}
	return out
}

// FillHV resolves the effective hypervisor parameters of an instance:
//
//	built-in defaults(hv) → cluster hvparams[hv] → os_hvp[os][hv] → instance hvparams
//
// Later layers win per key. Missing layers are skipped.
func FillHV(cluster *types.Cluster, inst *types.Instance) types.Params {
	out := types.HVDefaults(inst.Hypervisor)
	if clusterParams, ok := cluster.HVParams[inst.Hypervisor]; ok {
		out = FillDict(out, clusterParams)
	}
	if osParams, ok := cluster.OSHVP[inst.OS]; ok {
		if hvParams, ok := osParams[inst.Hypervisor]; ok {
			out = FillDict(out, hvParams)
		}
	}
	if inst.HVParams != nil {
		out = FillDict(out, inst.HVParams)
	}
	return out
}

// FillND resolves the effective node parameters:
//
//	cluster ndparams → group ndparams → node ndparams
//
// group may be nil for a node without a group.
func FillND(cluster *types.Cluster, node *types.Node, group *types.NodeGroup) types.Params {
	out := FillDict(nil, cluster.NDParams)
	if group != nil {
		out = FillDict(out, group.NDParams)
	}
	return FillDict(out, node.NDParams)
}

// FillIPolicy layers a policy diff over a full policy.
//
// Every key set in diff replaces the default's value wholesale, except std,
// which is merged per spec parameter. Unrecognized keys of both policies are
// kept, diff's winning on collision. Nothing is validated here.
func FillIPolicy(def, diff *types.InstancePolicy) *types.InstancePolicy {
	out := def.Clone()
	if out == nil {
		out = &types.InstancePolicy{}
	}
	if diff == nil {
		return out
	}

	if diff.MinMax != nil {
		out.MinMax = diff.Clone().MinMax
	}
	if diff.Std != nil {
		std := out.Std.Copy()
		if std == nil {
			std = types.ISpec{}
		}
		for param, v := range diff.Std {
			std[param] = v
		}
		out.Std = std
	}
	if diff.VCPURatio != nil {
		r := *diff.VCPURatio
		out.VCPURatio = &r
	}
	if diff.SpindleRatio != nil {
		r := *diff.SpindleRatio
		out.SpindleRatio = &r
	}
	if diff.DiskTemplates != nil {
		out.DiskTemplates = slices.Clone(diff.DiskTemplates)
	}
	if len(diff.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]any, len(diff.Extra))
		}
		for k, v := range diff.Extra {
			out.Extra[k] = record.DeepCopy(v)
		}
	}
	return out
}

// ClusterIPolicy returns the cluster policy filled up from the built-in
// defaults, so that a cluster with a partial or missing policy still yields
// a full one.
func ClusterIPolicy(cluster *types.Cluster) *types.InstancePolicy {
	return FillIPolicy(types.DefaultIPolicy(), cluster.IPolicy)
}

// GroupIPolicy resolves the effective policy of a node group.
func GroupIPolicy(cluster *types.Cluster, group *types.NodeGroup) *types.InstancePolicy {
	base := ClusterIPolicy(cluster)
	if group == nil {
		return base
	}
	return FillIPolicy(base, group.IPolicy)
}
