package record

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name     string
	Count    int
	Ratio    *float64
	Enabled  bool
	Capable  *bool
	Tags     []string
	Ports    IntSet
	Params   map[string]any
	Children []*widget
	Extra    map[string]any
}

var widgetSchema *Schema[widget]

func init() {
	widgetSchema = NewSchema("widget",
		String("name", func(w *widget) *string { return &w.Name }),
		Int("count", func(w *widget) *int { return &w.Count }),
		Float("ratio", func(w *widget) **float64 { return &w.Ratio }),
		Bool("enabled", func(w *widget) *bool { return &w.Enabled }),
		OptBool("capable", func(w *widget) **bool { return &w.Capable }),
		Strings("tags", func(w *widget) *[]string { return &w.Tags }),
		Set("ports", func(w *widget) *IntSet { return &w.Ports }),
		Params("params", func(w *widget) *map[string]any { return &w.Params }),
		ObjectList("children", func() *Schema[widget] { return widgetSchema }, func(w *widget) *[]*widget { return &w.Children }),
	).WithExtras(func(w *widget) *map[string]any { return &w.Extra })
}

// TestToDictFreshRecord tests that only the set-valued field is emitted for a zero record
func TestToDictFreshRecord(t *testing.T) {
	out := widgetSchema.ToDict(&widget{})
	assert.Equal(t, map[string]any{"ports": []int{}}, out)
}

// TestSetFieldConvergence tests absent vs empty handling of IntSet fields
func TestSetFieldConvergence(t *testing.T) {
	fresh := &widget{}
	assert.Nil(t, fresh.Ports)

	once, err := widgetSchema.FromDict(widgetSchema.ToDict(fresh))
	require.NoError(t, err)
	require.NotNil(t, once.Ports)
	assert.Empty(t, once.Ports)

	twice, err := widgetSchema.FromDict(widgetSchema.ToDict(once))
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	absent, err := widgetSchema.FromDict(map[string]any{})
	require.NoError(t, err)
	assert.NotNil(t, absent.Ports)
}

// TestRoundTrip tests that FromDict(ToDict(x)) preserves every settable attribute
func TestRoundTrip(t *testing.T) {
	ratio := 2.5
	capable := false
	w := &widget{
		Name:    "w1",
		Count:   3,
		Ratio:   &ratio,
		Enabled: true,
		Capable: &capable,
		Tags:    []string{"a", "b"},
		Ports:   NewIntSet(11000, 11001),
		Params:  map[string]any{"k": "v", "nested": map[string]any{"x": 1}},
		Children: []*widget{
			{Name: "child", Ports: NewIntSet()},
		},
		Extra: map[string]any{"future": "value"},
	}

	got, err := widgetSchema.FromDict(widgetSchema.ToDict(w))
	require.NoError(t, err)
	assert.Equal(t, w, got)
	assert.True(t, widgetSchema.Equal(w, got))
	assert.Empty(t, widgetSchema.Diff(w, got))
}

// TestRoundTripThroughJSON tests that the wire form survives JSON encoding
func TestRoundTripThroughJSON(t *testing.T) {
	w := &widget{Name: "w1", Count: 7, Tags: []string{}, Ports: NewIntSet(5, 1)}

	data, err := json.Marshal(widgetSchema.ToDict(w))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"w1","count":7,"tags":[],"ports":[1,5]}`, string(data))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	got, err := widgetSchema.FromDict(raw)
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

// TestExtrasRetained tests that unknown keys survive a round trip
func TestExtrasRetained(t *testing.T) {
	got, err := widgetSchema.FromDict(map[string]any{
		"name":    "w1",
		"unknown": []any{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"unknown": []any{1, 2}}, got.Extra)

	out := widgetSchema.ToDict(got)
	assert.Equal(t, []any{1, 2}, out["unknown"])
}

// TestUnknownKeysDroppedWithoutExtras tests a schema without an extras bag
func TestUnknownKeysDroppedWithoutExtras(t *testing.T) {
	type plain struct{ Name string }
	schema := NewSchema("plain", String("name", func(p *plain) *string { return &p.Name }))

	got, err := schema.FromDict(map[string]any{"name": "x", "other": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x"}, schema.ToDict(got))
}

// TestLenientDecoding tests scalar coercion
func TestLenientDecoding(t *testing.T) {
	got, err := widgetSchema.FromDict(map[string]any{
		"count":   "42",
		"ratio":   "1.5",
		"enabled": "true",
		"ports":   []any{"80", 443.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got.Count)
	require.NotNil(t, got.Ratio)
	assert.Equal(t, 1.5, *got.Ratio)
	assert.True(t, got.Enabled)
	assert.Equal(t, []int{80, 443}, got.Ports.Sorted())
}

// TestNullIsUnset tests that null wire values behave like absent keys
func TestNullIsUnset(t *testing.T) {
	got, err := widgetSchema.FromDict(map[string]any{"name": nil, "ports": nil})
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.NotNil(t, got.Ports)
}

// TestDecodeErrors tests that impossible coercions fail with a DecodeError
func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		field string
	}{
		{name: "int from word", input: map[string]any{"count": "many"}, field: "count"},
		{name: "list from scalar", input: map[string]any{"tags": "a"}, field: "tags"},
		{name: "set from map", input: map[string]any{"ports": map[string]any{}}, field: "ports"},
		{name: "params from list", input: map[string]any{"params": []any{}}, field: "params"},
		{name: "child not a map", input: map[string]any{"children": []any{"x"}}, field: "children"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := widgetSchema.FromDict(tt.input)
			require.Error(t, err)

			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, "widget", decErr.Record)
			assert.Equal(t, tt.field, decErr.Field)
		})
	}
}

// TestEncodedMapsAreCopies tests that mutating ToDict output leaves the record alone
func TestEncodedMapsAreCopies(t *testing.T) {
	w := &widget{Params: map[string]any{"k": "v"}}
	out := widgetSchema.ToDict(w)
	out["params"].(map[string]any)["k"] = "changed"
	assert.Equal(t, "v", w.Params["k"])
}

// TestKeys tests schema introspection
func TestKeys(t *testing.T) {
	keys := widgetSchema.Keys()
	assert.Equal(t, "name", keys[0])
	assert.Len(t, keys, 9)
	assert.True(t, widgetSchema.Known("ports"))
	assert.False(t, widgetSchema.Known("unknown"))
}

// TestDuplicateFieldPanics tests schema construction guards
func TestDuplicateFieldPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewSchema("dup",
			Int("n", func(w *widget) *int { return &w.Count }),
			Int("n", func(w *widget) *int { return &w.Count }),
		)
	})
}

// TestIntSet tests set helpers
func TestIntSet(t *testing.T) {
	s := NewIntSet(3, 1, 3)
	assert.Len(t, s, 2)
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(2))
	s.Add(2)
	assert.Equal(t, []int{1, 2, 3}, s.Sorted())

	var empty IntSet
	assert.Equal(t, []int{}, empty.Sorted())
}

// TestDeepCopy tests that nested containers are not shared
func TestDeepCopy(t *testing.T) {
	src := map[string]any{"list": []any{map[string]any{"a": 1}}}
	dst := CopyMap(src)
	dst["list"].([]any)[0].(map[string]any)["a"] = 2
	assert.Equal(t, 1, src["list"].([]any)[0].(map[string]any)["a"])
	assert.Nil(t, CopyMap[map[string]any](nil))
}

func TestInteger(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"int", 42, 42, true},
		{"int8", int8(-3), -3, true},
		{"uint64", uint64(7), 7, true},
		{"integral float", 128.0, 128, true},
		{"json integer", json.Number("12"), 12, true},
		{"json integral float", json.Number("1e3"), 1000, true},
		{"fractional float", 127.9, 0, false},
		{"fractional json", json.Number("1.5"), 0, false},
		{"uint64 beyond int", uint64(1 << 63), 0, false},
		{"float beyond int", 1e19, 0, false},
		{"negative float beyond int", -1e19, 0, false},
		{"json beyond int", json.Number("10000000000000000000"), 0, false},
		{"string", "12", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Integer(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
