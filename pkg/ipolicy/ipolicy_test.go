package ipolicy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cuemby/hutch/pkg/params"
	"github.com/cuemby/hutch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spec(mem, cpu, diskCount, diskSize, nics, spindles int) types.ISpec {
	return types.ISpec{
		types.ISpecMemSize:    mem,
		types.ISpecCPUCount:   cpu,
		types.ISpecDiskCount:  diskCount,
		types.ISpecDiskSize:   diskSize,
		types.ISpecNICCount:   nics,
		types.ISpecSpindleUse: spindles,
	}
}

// goodPolicy has two overlapping min/max entries and a std spec inside both
func goodPolicy() *types.InstancePolicy {
	return &types.InstancePolicy{
		MinMax: []*types.MinMaxISpecs{
			{Min: spec(64, 1, 1, 64, 1, 1), Max: spec(16384, 5, 12, 1024, 9, 18)},
			{Min: spec(128, 1, 1, 512, 1, 1), Max: spec(65536, 10, 5, 1024*1024, 3, 12)},
		},
		Std: spec(1024, 2, 2, 1024, 1, 1),
	}
}

func assertConfigError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration), "unexpected error kind: %v", err)
	var cfgErr *types.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func assertPolicyIsBad(t *testing.T, p *types.InstancePolicy, checkStd ...bool) {
	t.Helper()
	if len(checkStd) == 0 {
		checkStd = []bool{false, true}
	}
	for _, cs := range checkStd {
		assertConfigError(t, CheckISpecSyntax(p, cs))
	}
}

// TestDefaultPolicyIsValid tests the built-in policy against the validator
func TestDefaultPolicyIsValid(t *testing.T) {
	require.NoError(t, CheckPolicy(types.DefaultIPolicy(), true))
	require.NoError(t, CheckParameterSyntax(types.DefaultIPolicy().ToDict(), true))
}

// TestCheckISpecSyntaxIncomplete tests structurally incomplete policies
func TestCheckISpecSyntaxIncomplete(t *testing.T) {
	std := types.DefaultIPolicy().Std
	incomplete := []struct {
		name   string
		policy *types.InstancePolicy
	}{
		{"empty minmax", &types.InstancePolicy{MinMax: []*types.MinMaxISpecs{}, Std: std}},
		{"empty entry", &types.InstancePolicy{MinMax: []*types.MinMaxISpecs{{}}, Std: std}},
		{"nil entry", &types.InstancePolicy{MinMax: []*types.MinMaxISpecs{nil}, Std: std}},
		{"min only", &types.InstancePolicy{MinMax: []*types.MinMaxISpecs{{Min: spec(1, 1, 1, 1, 1, 1)}}, Std: std}},
		{"max only", &types.InstancePolicy{MinMax: []*types.MinMaxISpecs{{Max: spec(1, 1, 1, 1, 1, 1)}}, Std: std}},
		{"missing std", &types.InstancePolicy{MinMax: []*types.MinMaxISpecs{types.DefaultMinMax()}}},
	}

	for _, tt := range incomplete {
		t.Run(tt.name, func(t *testing.T) {
			assertConfigError(t, CheckISpecSyntax(tt.policy, true))

			if len(tt.policy.MinMax) > 0 {
				// Prepending a valid entry must not hide the failure
				tt.policy.MinMax = append([]*types.MinMaxISpecs{types.DefaultMinMax()}, tt.policy.MinMax...)
				assertConfigError(t, CheckISpecSyntax(tt.policy, true))
			}
		})
	}

	// Without std checking a complete min/max list suffices
	require.NoError(t, CheckISpecSyntax(&types.InstancePolicy{MinMax: []*types.MinMaxISpecs{types.DefaultMinMax()}}, false))
}

// TestCheckISpecSyntax tests missing parameters and ordering violations
func TestCheckISpecSyntax(t *testing.T) {
	good := goodPolicy()
	require.NoError(t, CheckISpecSyntax(good, true))
	require.NoError(t, CheckISpecSyntax(good, false))

	for i := range good.MinMax {
		for _, which := range []string{types.ISpecMin, types.ISpecMax} {
			for _, param := range types.ISpecParameters {
				bad := goodPolicy()
				target := bad.MinMax[i].Min
				if which == types.ISpecMax {
					target = bad.MinMax[i].Max
				}

				delete(target, param)
				assertPolicyIsBad(t, bad)

				if which == types.ISpecMin {
					bad = goodPolicy()
					bad.MinMax[i].Min[param] = bad.MinMax[i].Max[param] + 1
					assertPolicyIsBad(t, bad)
				}
			}
		}
	}

	for _, param := range types.ISpecParameters {
		bad := goodPolicy()
		delete(bad.Std, param)
		assertPolicyIsBad(t, bad, true)
		require.NoError(t, CheckISpecSyntax(bad, false))

		bad = goodPolicy()
		bad.Std[param] = bad.MinMax[0].Max[param] + 1
		assertPolicyIsBad(t, bad, true)
		require.NoError(t, CheckISpecSyntax(bad, false))
	}

	assert.Equal(t, goodPolicy(), good, "checks must not modify the policy")
}

// TestCheckISpecSyntaxStdAgainstEveryEntry tests that std must fit all min/max entries
func TestCheckISpecSyntaxStdAgainstEveryEntry(t *testing.T) {
	p := goodPolicy()
	// Valid for entry 0, below the memory minimum of entry 1
	p.Std[types.ISpecMemSize] = 100
	err := CheckISpecSyntax(p, true)
	assertConfigError(t, err)
	assert.Contains(t, err.Error(), types.ISpecMemSize)
	assert.Contains(t, err.Error(), "entry 1")

	require.NoError(t, CheckISpecSyntax(p, false))
}

// TestCheckISpecSyntaxStructureFirst tests that missing keys win over ordering errors
func TestCheckISpecSyntaxStructureFirst(t *testing.T) {
	p := goodPolicy()
	p.MinMax[0].Min[types.ISpecCPUCount] = 100
	delete(p.MinMax[1].Max, types.ISpecNICCount)

	err := CheckISpecSyntax(p, false)
	assertConfigError(t, err)
	assert.Contains(t, err.Error(), "missing "+types.ISpecNICCount)

	p = goodPolicy()
	p.MinMax[0].Min[types.ISpecCPUCount] = 100
	delete(p.Std, types.ISpecDiskSize)
	err = CheckISpecSyntax(p, true)
	assertConfigError(t, err)
	assert.Contains(t, err.Error(), "std spec")
}

// TestCheckISpecSyntaxExtraParameter tests that unknown spec parameters fail
func TestCheckISpecSyntaxExtraParameter(t *testing.T) {
	p := goodPolicy()
	p.MinMax[1].Max["gpu-count"] = 1
	assertPolicyIsBad(t, p)

	p = goodPolicy()
	p.Std["gpu-count"] = 1
	assertPolicyIsBad(t, p, true)
}

// TestCheckISpecParamOrdering tests single-parameter min/std/max combinations
func TestCheckISpecParamOrdering(t *testing.T) {
	const param = types.ISpecDiskCount
	build := func(mn, st, mx int) *types.InstancePolicy {
		p := &types.InstancePolicy{
			MinMax: []*types.MinMaxISpecs{{Min: spec(1, 1, 1, 1, 1, 1), Max: spec(1, 1, 1, 1, 1, 1)}},
			Std:    spec(1, 1, 1, 1, 1, 1),
		}
		p.MinMax[0].Min[param] = mn
		p.MinMax[0].Max[param] = mx
		p.Std[param] = st
		return p
	}

	for _, checkStd := range []bool{true, false} {
		for _, v := range [][2]int{{11, 11}, {11, 40}, {0, 0}} {
			require.NoError(t, CheckISpecSyntax(build(v[0], v[0], v[1]), checkStd))
		}
		assertConfigError(t, CheckISpecSyntax(build(11, 11, 5), checkStd))
	}

	for _, v := range [][3]int{{11, 11, 11}, {11, 11, 40}, {11, 40, 40}} {
		require.NoError(t, CheckISpecSyntax(build(v[0], v[1], v[2]), true))
	}

	bad := []struct {
		mn, st, mx    int
		failsWithoutS bool
	}{
		{11, 11, 5, true},
		{40, 11, 11, true},
		{11, 80, 40, false},
		{11, 5, 40, false},
		{11, 5, 5, true},
		{40, 40, 11, true},
	}
	for _, b := range bad {
		assertConfigError(t, CheckISpecSyntax(build(b.mn, b.st, b.mx), true))
		err := CheckISpecSyntax(build(b.mn, b.st, b.mx), false)
		if b.failsWithoutS {
			assertConfigError(t, err)
		} else {
			assert.NoError(t, err)
		}
	}
}

// TestCheckISpecSyntaxPartialDiff tests policies without min/max specs
func TestCheckISpecSyntaxPartialDiff(t *testing.T) {
	require.NoError(t, CheckISpecSyntax(nil, true))
	require.NoError(t, CheckISpecSyntax(&types.InstancePolicy{}, true))
	require.NoError(t, CheckISpecSyntax(&types.InstancePolicy{Std: types.ISpec{types.ISpecDiskCount: 3}}, true))
	assertConfigError(t, CheckISpecSyntax(&types.InstancePolicy{Std: types.ISpec{"bogus": 3}}, false))
}

// TestCheckDiskTemplates tests the disk template list check
func TestCheckDiskTemplates(t *testing.T) {
	const invalid = types.DiskTemplate("this_is_not_a_good_template")

	for _, dt := range types.DiskTemplatePreference {
		require.NoError(t, CheckDiskTemplates([]types.DiskTemplate{dt}))
	}
	require.NoError(t, CheckDiskTemplates(types.DiskTemplatePreference))

	bad := [][]types.DiskTemplate{
		{invalid},
		{types.DiskTemplateDRBD, invalid},
		append(append([]types.DiskTemplate{}, types.DiskTemplatePreference...), invalid),
		{},
		nil,
	}
	for _, dtl := range bad {
		assertConfigError(t, CheckDiskTemplates(dtl))
	}
}

// TestCheckParameterSyntax tests key and value shape checks on wire policies
func TestCheckParameterSyntax(t *testing.T) {
	for _, checkStd := range []bool{true, false} {
		require.NoError(t, CheckParameterSyntax(map[string]any{}, checkStd))
		require.NoError(t, CheckParameterSyntax(nil, checkStd))

		err := CheckParameterSyntax(map[string]any{"this_key_shouldnt_be_here": nil}, checkStd)
		assertConfigError(t, err)
		assert.Contains(t, err.Error(), "this_key_shouldnt_be_here")

		for _, par := range types.IPolicyRatioKeys {
			for _, val := range []any{"blah", nil, map[string]any{}, []any{42}, true} {
				assertConfigError(t, CheckParameterSyntax(map[string]any{par: val}, checkStd))
			}
			for _, val := range []any{3, 3.14, json.Number("2.5"), uint8(1)} {
				require.NoError(t, CheckParameterSyntax(map[string]any{par: val}, checkStd))
			}
		}
	}
}

// TestCheckParameterSyntaxDiskTemplates tests the disk-templates value shape
func TestCheckParameterSyntaxDiskTemplates(t *testing.T) {
	good := []any{"drbd", "plain"}
	require.NoError(t, CheckParameterSyntax(map[string]any{types.IPolicyDiskTemplates: good}, true))
	require.NoError(t, CheckParameterSyntax(map[string]any{types.IPolicyDiskTemplates: []string{"file"}}, true))

	for _, val := range []any{nil, []any{}, "drbd", []any{1}, []any{"drbd", nil}, []any{"bogus"}, map[string]any{}} {
		assertConfigError(t, CheckParameterSyntax(map[string]any{types.IPolicyDiskTemplates: val}, true))
	}
}

// TestCheckParameterSyntaxSpecs tests strict decoding of min/max and std values
func TestCheckParameterSyntaxSpecs(t *testing.T) {
	wire := goodPolicy().ToDict()
	require.NoError(t, CheckParameterSyntax(wire, true))

	var fromJSON map[string]any
	raw, err := json.Marshal(wire)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &fromJSON))
	require.NoError(t, CheckParameterSyntax(fromJSON, true))

	minSpec := func(v any) map[string]any {
		m := map[string]any{}
		for _, p := range types.ISpecParameters {
			m[p] = 1
		}
		m[types.ISpecMemSize] = v
		return m
	}
	maxSpec := minSpec(1)

	bad := []map[string]any{
		{types.IPolicyMinMax: nil},
		{types.IPolicyMinMax: "x"},
		{types.IPolicyMinMax: []any{}},
		{types.IPolicyMinMax: []any{nil}},
		{types.IPolicyMinMax: []any{map[string]any{}}},
		{types.IPolicyMinMax: []any{map[string]any{types.ISpecMin: "x", types.ISpecMax: maxSpec}}},
		{types.IPolicyMinMax: []any{map[string]any{types.ISpecMin: minSpec("1"), types.ISpecMax: maxSpec}}},
		{types.IPolicyMinMax: []any{map[string]any{types.ISpecMin: minSpec(1.5), types.ISpecMax: maxSpec}}},
		{types.IPolicyMinMax: []any{map[string]any{types.ISpecMin: minSpec(nil), types.ISpecMax: maxSpec}}},
		{types.IPolicyMinMax: []any{map[string]any{types.ISpecMin: maxSpec, types.ISpecMax: maxSpec, "avg": maxSpec}}},
		{types.IPolicyStd: nil},
		{types.IPolicyStd: []any{42}},
	}
	for _, policy := range bad {
		assertConfigError(t, CheckParameterSyntax(policy, false))
	}

	ok := map[string]any{
		types.IPolicyMinMax: []any{map[string]any{types.ISpecMin: minSpec(1.0), types.ISpecMax: maxSpec}},
	}
	require.NoError(t, CheckParameterSyntax(ok, false))
	assertConfigError(t, CheckParameterSyntax(ok, true))
}

// TestCheckParameterSyntaxHugeNumbers tests that values beyond int range
// never wrap around into a passing min <= max comparison
func TestCheckParameterSyntaxHugeNumbers(t *testing.T) {
	hugeMin := func(mem, disk any) map[string]any {
		m := map[string]any{}
		for _, p := range types.ISpecParameters {
			m[p] = 1
		}
		m[types.ISpecMemSize] = mem
		m[types.ISpecDiskSize] = disk
		return m
	}
	maxSpec := map[string]any{}
	for _, p := range types.ISpecParameters {
		maxSpec[p] = 100
	}

	tests := []struct {
		name string
		mem  any
		disk any
	}{
		{"float beyond int", 1e19, 1},
		{"uint64 beyond int", 1, uint64(1 << 63)},
		{"negative float beyond int", -1e19, 1},
		{"json number beyond int", json.Number("10000000000000000000"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := map[string]any{
				types.IPolicyMinMax: []any{map[string]any{
					types.ISpecMin: hugeMin(tt.mem, tt.disk),
					types.ISpecMax: maxSpec,
				}},
			}
			assertConfigError(t, CheckParameterSyntax(policy, false))
		})
	}

	fits := map[string]any{
		types.IPolicyMinMax: []any{map[string]any{
			types.ISpecMin: hugeMin(uint64(1), json.Number("2")),
			types.ISpecMax: maxSpec,
		}},
	}
	require.NoError(t, CheckParameterSyntax(fits, false))
}

// TestFilledPoliciesAreValid tests that resolved policies pass the full check
func TestFilledPoliciesAreValid(t *testing.T) {
	vcpu := 3.14
	diffs := []*types.InstancePolicy{
		{},
		{VCPURatio: &vcpu},
		{DiskTemplates: []types.DiskTemplate{types.DiskTemplateFile}},
		{Std: types.ISpec{types.ISpecDiskCount: 3}},
		{MinMax: []*types.MinMaxISpecs{types.DefaultMinMax(), types.DefaultMinMax()}},
	}
	for _, diff := range diffs {
		require.NoError(t, CheckPolicy(params.FillIPolicy(types.DefaultIPolicy(), diff), true))
	}

	withUnknown := params.FillIPolicy(types.DefaultIPolicy(), &types.InstancePolicy{
		Extra: map[string]any{"invalid_ipolicy_key": nil},
	})
	assertConfigError(t, CheckPolicy(withUnknown, true))
	require.NoError(t, CheckPolicy(nil, true))
}
