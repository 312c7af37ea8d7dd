package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildSplit tests known packing vectors in both directions
func TestBuildSplit(t *testing.T) {
	tests := []struct {
		major, minor, revision int
		packed                 int
	}{
		{0, 0, 0, 0},
		{10, 10, 1010, 10101010},
		{12, 34, 5678, 12345678},
		{99, 99, 9999, 99999999},
		{2, 10, 0, 2100000},
		{0, 0, 1, 1},
	}

	for _, tt := range tests {
		got, err := Build(tt.major, tt.minor, tt.revision)
		require.NoError(t, err)
		assert.Equal(t, tt.packed, got)

		major, minor, revision, err := Split(tt.packed)
		require.NoError(t, err)
		assert.Equal(t, tt.major, major)
		assert.Equal(t, tt.minor, minor)
		assert.Equal(t, tt.revision, revision)
	}
}

// TestRoundTripAllComponents tests Split(Build(x)) == x across the range
func TestRoundTripAllComponents(t *testing.T) {
	for major := 0; major <= 99; major += 7 {
		for minor := 0; minor <= 99; minor += 3 {
			for _, revision := range []int{0, 1, 9, 10, 999, 1000, 5000, 9999} {
				v, err := Build(major, minor, revision)
				require.NoError(t, err)

				gotMajor, gotMinor, gotRevision, err := Split(v)
				require.NoError(t, err)
				assert.Equal(t, [3]int{major, minor, revision}, [3]int{gotMajor, gotMinor, gotRevision})
			}
		}
	}
}

// TestOutOfRange tests rejection of unrepresentable values
func TestOutOfRange(t *testing.T) {
	tests := []struct {
		name                   string
		major, minor, revision int
	}{
		{"negative major", -1, 0, 0},
		{"major too large", 100, 0, 0},
		{"minor too large", 0, 100, 0},
		{"revision too large", 0, 0, 10000},
		{"negative revision", 0, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.major, tt.minor, tt.revision)
			assert.True(t, errors.Is(err, ErrOutOfRange))
		})
	}

	_, _, _, err := Split(100_000_000)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, _, _, err = Split(-5)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	assert.Panics(t, func() { MustBuild(0, 0, 10000) })
}

// TestCurrent tests the version constants and helpers
func TestCurrent(t *testing.T) {
	assert.Equal(t, 2100000, Current)
	assert.Equal(t, "2.10.0", String(Current))
	assert.Equal(t, "invalid(-1)", String(-1))

	assert.True(t, Compatible(Current))
	assert.True(t, Compatible(MustBuild(ConfigMajor, ConfigMinor, 7)))
	assert.False(t, Compatible(MustBuild(ConfigMajor, ConfigMinor+1, 0)))
	assert.False(t, Compatible(MustBuild(ConfigMajor-1, ConfigMinor, 0)))
	assert.False(t, Compatible(-1))
}
