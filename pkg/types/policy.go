package types

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cuemby/hutch/pkg/record"
	"github.com/spf13/cast"
)

// ISpec is an instance spec: a value per spec parameter. A complete spec
// has exactly the six ISpecParameters; diffs may carry fewer.
type ISpec map[string]int

// Copy returns a copy of s. A nil spec copies to nil.
func (s ISpec) Copy() ISpec {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// MinMaxISpecs is one min/max pair of an instance policy
type MinMaxISpecs struct {
	Min ISpec
	Max ISpec
}

// InstancePolicy constrains the instances a cluster or group accepts.
// On a node group it is a diff over the cluster policy, so every field may
// be unset.
type InstancePolicy struct {
	MinMax        []*MinMaxISpecs
	Std           ISpec
	VCPURatio     *float64
	SpindleRatio  *float64
	DiskTemplates []DiskTemplate

	// Extra holds unrecognized keys verbatim
	Extra map[string]any
}

func ispecField[T any](name string, get func(v *T) *ISpec) record.Field[T] {
	return record.Field[T]{
		Name: name,
		Encode: func(v *T) (any, bool) {
			spec := *get(v)
			if spec == nil {
				return nil, false
			}
			out := make(map[string]any, len(spec))
			for k, n := range spec {
				out[k] = n
			}
			return out, true
		},
		Decode: func(v *T, raw any) error {
			m, err := record.ToMap(raw)
			if err != nil {
				return err
			}
			spec := make(ISpec, len(m))
			for k, item := range m {
				n, err := ispecValue(item)
				if err != nil {
					return fmt.Errorf("parameter %q: %w", k, err)
				}
				spec[k] = n
			}
			*get(v) = spec
			return nil
		},
	}
}

// ispecValue reads one spec value. Numeric strings are accepted; numbers
// must be integral and fit in an int.
func ispecValue(raw any) (int, error) {
	if s, ok := raw.(string); ok {
		return cast.ToIntE(s)
	}
	n, ok := record.Integer(raw)
	if !ok {
		return 0, fmt.Errorf("expected an integer, got %v", raw)
	}
	return n, nil
}

var minMaxSchema = record.NewSchema("minmax",
	ispecField(ISpecMin, func(m *MinMaxISpecs) *ISpec { return &m.Min }),
	ispecField(ISpecMax, func(m *MinMaxISpecs) *ISpec { return &m.Max }),
)

var policySchema = record.NewSchema("ipolicy",
	record.ObjectList(IPolicyMinMax, func() *record.Schema[MinMaxISpecs] { return minMaxSchema },
		func(p *InstancePolicy) *[]*MinMaxISpecs { return &p.MinMax }),
	ispecField(IPolicyStd, func(p *InstancePolicy) *ISpec { return &p.Std }),
	record.Float(IPolicyVCPURatio, func(p *InstancePolicy) **float64 { return &p.VCPURatio }),
	record.Float(IPolicySpindleRatio, func(p *InstancePolicy) **float64 { return &p.SpindleRatio }),
	record.Strings(IPolicyDiskTemplates, func(p *InstancePolicy) *[]DiskTemplate { return &p.DiskTemplates }),
).WithExtras(func(p *InstancePolicy) *map[string]any { return &p.Extra })

// ToDict encodes the policy to its wire form
func (p *InstancePolicy) ToDict() map[string]any {
	return policySchema.ToDict(p)
}

// Clone returns a deep copy of the policy. Nil clones to nil.
func (p *InstancePolicy) Clone() *InstancePolicy {
	if p == nil {
		return nil
	}
	out := &InstancePolicy{
		Std:           p.Std.Copy(),
		DiskTemplates: slices.Clone(p.DiskTemplates),
		Extra:         record.CopyMap(p.Extra),
	}
	if p.MinMax != nil {
		out.MinMax = make([]*MinMaxISpecs, len(p.MinMax))
		for i, mm := range p.MinMax {
			if mm != nil {
				out.MinMax[i] = &MinMaxISpecs{Min: mm.Min.Copy(), Max: mm.Max.Copy()}
			}
		}
	}
	if p.VCPURatio != nil {
		r := *p.VCPURatio
		out.VCPURatio = &r
	}
	if p.SpindleRatio != nil {
		r := *p.SpindleRatio
		out.SpindleRatio = &r
	}
	return out
}

// Equal compares two policies by wire form
func (p *InstancePolicy) Equal(other *InstancePolicy) bool {
	return policySchema.Equal(p, other)
}

// IsEmpty reports whether no key at all is set
func (p *InstancePolicy) IsEmpty() bool {
	return p == nil || len(policySchema.ToDict(p)) == 0
}

// InstancePolicyFromDict decodes a policy from its wire form
func InstancePolicyFromDict(m map[string]any) (*InstancePolicy, error) {
	return policySchema.FromDict(m)
}
