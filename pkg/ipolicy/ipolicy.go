package ipolicy

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/cuemby/hutch/pkg/record"
	"github.com/cuemby/hutch/pkg/types"
)

// CheckParameterSyntax validates a policy in wire form. Every key must be a
// recognized policy key with a value of the right shape. An empty policy is
// valid; with checkStd a policy that carries min/max specs must also carry a
// complete std spec.
func CheckParameterSyntax(policy map[string]any, checkStd bool) error {
	var unknown []string
	for key := range policy {
		if !types.IsIPolicyKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return types.NewConfigurationError("invalid keys in ipolicy: %s", strings.Join(unknown, ", "))
	}

	for _, key := range types.IPolicyRatioKeys {
		raw, ok := policy[key]
		if !ok {
			continue
		}
		if !isNumber(raw) {
			return types.NewConfigurationError("invalid value for ipolicy parameter %s: expected a number, got %s", key, describe(raw))
		}
	}

	if raw, ok := policy[types.IPolicyDiskTemplates]; ok {
		templates, err := decodeTemplates(raw)
		if err != nil {
			return err
		}
		if err := CheckDiskTemplates(templates); err != nil {
			return err
		}
	}

	rawMinMax, hasMinMax := policy[types.IPolicyMinMax]
	rawStd, hasStd := policy[types.IPolicyStd]
	if !hasMinMax && !hasStd {
		return nil
	}

	p := &types.InstancePolicy{}
	if hasMinMax {
		minmax, err := decodeMinMax(rawMinMax)
		if err != nil {
			return err
		}
		p.MinMax = minmax
	}
	if hasStd {
		std, err := decodeISpec(rawStd, types.IPolicyStd)
		if err != nil {
			return err
		}
		p.Std = std
	}
	return CheckISpecSyntax(p, checkStd)
}

// CheckISpecSyntax validates the min/max and std specs of a policy.
//
// A policy without min/max specs is a partial diff and only has its std
// parameter names checked. Otherwise the min/max list must be non-empty and
// every entry must have min and max specs with exactly the six spec
// parameters; with checkStd so must std. Only once the structure is sound
// are values compared: min <= max for every entry and parameter, and with
// checkStd min <= std <= max against every entry.
func CheckISpecSyntax(p *types.InstancePolicy, checkStd bool) error {
	if p == nil {
		return nil
	}
	if p.MinMax == nil {
		for param := range p.Std {
			if !types.IsISpecParameter(param) {
				return types.NewConfigurationError("invalid parameter %q in std spec", param)
			}
		}
		return nil
	}

	if len(p.MinMax) == 0 {
		return types.NewConfigurationError("empty minmax list in ipolicy")
	}
	for i, mm := range p.MinMax {
		if mm == nil {
			return types.NewConfigurationError("missing min and max specs in minmax entry %d", i)
		}
		if err := checkComplete(mm.Min, fmt.Sprintf("min spec of minmax entry %d", i)); err != nil {
			return err
		}
		if err := checkComplete(mm.Max, fmt.Sprintf("max spec of minmax entry %d", i)); err != nil {
			return err
		}
	}
	if checkStd {
		if err := checkComplete(p.Std, "std spec"); err != nil {
			return err
		}
	}

	for i, mm := range p.MinMax {
		for _, param := range types.ISpecParameters {
			if mm.Min[param] > mm.Max[param] {
				return types.NewConfigurationError(
					"invalid ipolicy: %s min value (%d) is greater than max value (%d) in minmax entry %d",
					param, mm.Min[param], mm.Max[param], i)
			}
		}
	}
	if !checkStd {
		return nil
	}
	for i, mm := range p.MinMax {
		for _, param := range types.ISpecParameters {
			std := p.Std[param]
			if std < mm.Min[param] || std > mm.Max[param] {
				return types.NewConfigurationError(
					"invalid ipolicy: %s std value (%d) is not between min (%d) and max (%d) of minmax entry %d",
					param, std, mm.Min[param], mm.Max[param], i)
			}
		}
	}
	return nil
}

// CheckDiskTemplates validates a list of allowed disk templates. A nil or
// empty list fails, as does any unknown template.
func CheckDiskTemplates(templates []types.DiskTemplate) error {
	if len(templates) == 0 {
		return types.NewConfigurationError("ipolicy disk templates must contain at least one entry")
	}
	var invalid []string
	for _, dt := range templates {
		if !types.ValidDiskTemplate(dt) {
			invalid = append(invalid, string(dt))
		}
	}
	if len(invalid) > 0 {
		return types.NewConfigurationError("invalid disk template(s) in ipolicy: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// CheckPolicy validates a typed policy through its wire form, so unknown
// keys kept in Extra are reported too.
func CheckPolicy(p *types.InstancePolicy, checkStd bool) error {
	if p == nil {
		return nil
	}
	return CheckParameterSyntax(p.ToDict(), checkStd)
}

func checkComplete(spec types.ISpec, what string) error {
	if spec == nil {
		return types.NewConfigurationError("missing %s", what)
	}
	var missing, extra []string
	for _, param := range types.ISpecParameters {
		if _, ok := spec[param]; !ok {
			missing = append(missing, param)
		}
	}
	for param := range spec {
		if !types.IsISpecParameter(param) {
			extra = append(extra, param)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	slices.Sort(extra)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		parts = append(parts, "unknown "+strings.Join(extra, ", "))
	}
	return types.NewConfigurationError("invalid %s: %s", what, strings.Join(parts, "; "))
}

func decodeTemplates(raw any) ([]types.DiskTemplate, error) {
	if raw == nil {
		return nil, types.NewConfigurationError("invalid value for ipolicy parameter %s: expected a list, got null", types.IPolicyDiskTemplates)
	}
	items, err := record.ToList(raw)
	if err != nil {
		return nil, types.NewConfigurationError("invalid value for ipolicy parameter %s: %v", types.IPolicyDiskTemplates, err)
	}
	out := make([]types.DiskTemplate, 0, len(items))
	for i, item := range items {
		if item == nil || reflect.TypeOf(item).Kind() != reflect.String {
			return nil, types.NewConfigurationError("invalid disk template at position %d: expected a string, got %s", i, describe(item))
		}
		out = append(out, types.DiskTemplate(reflect.ValueOf(item).String()))
	}
	return out, nil
}

func decodeMinMax(raw any) ([]*types.MinMaxISpecs, error) {
	if raw == nil {
		return nil, types.NewConfigurationError("invalid value for %s: expected a list, got null", types.IPolicyMinMax)
	}
	items, err := record.ToList(raw)
	if err != nil {
		return nil, types.NewConfigurationError("invalid value for %s: %v", types.IPolicyMinMax, err)
	}
	out := make([]*types.MinMaxISpecs, 0, len(items))
	for i, item := range items {
		what := fmt.Sprintf("minmax entry %d", i)
		if item == nil {
			return nil, types.NewConfigurationError("invalid %s: expected a mapping, got null", what)
		}
		m, err := record.ToMap(item)
		if err != nil {
			return nil, types.NewConfigurationError("invalid %s: %v", what, err)
		}
		var unknown []string
		for key := range m {
			if key != types.ISpecMin && key != types.ISpecMax {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			slices.Sort(unknown)
			return nil, types.NewConfigurationError("invalid keys in %s: %s", what, strings.Join(unknown, ", "))
		}

		mm := &types.MinMaxISpecs{}
		if rawMin, ok := m[types.ISpecMin]; ok {
			if mm.Min, err = decodeISpec(rawMin, fmt.Sprintf("min spec of %s", what)); err != nil {
				return nil, err
			}
		}
		if rawMax, ok := m[types.ISpecMax]; ok {
			if mm.Max, err = decodeISpec(rawMax, fmt.Sprintf("max spec of %s", what)); err != nil {
				return nil, err
			}
		}
		out = append(out, mm)
	}
	return out, nil
}

func decodeISpec(raw any, what string) (types.ISpec, error) {
	if raw == nil {
		return nil, types.NewConfigurationError("invalid %s: expected a mapping, got null", what)
	}
	m, err := record.ToMap(raw)
	if err != nil {
		return nil, types.NewConfigurationError("invalid %s: %v", what, err)
	}
	spec := make(types.ISpec, len(m))
	for param, v := range m {
		n, ok := toInt(v)
		if !ok {
			return nil, types.NewConfigurationError("invalid value for %s in %s: expected an integer, got %s", param, what, describe(v))
		}
		spec[param] = n
	}
	return spec, nil
}

// isNumber accepts Go numeric kinds and json.Number. Booleans, strings and
// null are not numbers.
func isNumber(v any) bool {
	if v == nil {
		return false
	}
	if n, ok := v.(json.Number); ok {
		_, err := n.Float64()
		return err == nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// toInt accepts integer kinds and integral floats, as JSON decoding yields,
// within the range of int.
func toInt(v any) (int, bool) {
	return record.Integer(v)
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
