package storageunit

import (
	"errors"
	"testing"

	"github.com/cuemby/hutch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfig struct {
	vg      string
	cluster *types.Cluster
}

func (f *fakeConfig) GetVGName() string              { return f.vg }
func (f *fakeConfig) GetClusterInfo() *types.Cluster { return f.cluster }

func newFakeConfig(templates ...types.DiskTemplate) *fakeConfig {
	return &fakeConfig{
		vg: "some_vg_name",
		cluster: &types.Cluster{
			FileStorageDir:       "my/file/storage/dir",
			EnabledDiskTemplates: templates,
		},
	}
}

// TestDefaultUnitForTemplate tests the template to storage mapping
func TestDefaultUnitForTemplate(t *testing.T) {
	cfg := newFakeConfig()

	tests := []struct {
		template types.DiskTemplate
		want     Unit
	}{
		{types.DiskTemplateDRBD, Unit{Type: types.StorageLVMVG, Key: "some_vg_name"}},
		{types.DiskTemplatePlain, Unit{Type: types.StorageLVMVG, Key: "some_vg_name"}},
		{types.DiskTemplateFile, Unit{Type: types.StorageFile, Key: "my/file/storage/dir"}},
		{types.DiskTemplateSharedFile, Unit{Type: types.StorageFile, Key: types.DefaultSharedFileStorageDir}},
		{types.DiskTemplateDiskless, Unit{Type: types.StorageDiskless}},
		{types.DiskTemplateBlockDev, Unit{Type: types.StorageBlockDev}},
		{types.DiskTemplateRBD, Unit{Type: types.StorageRados}},
		{types.DiskTemplateExt, Unit{Type: types.StorageExt}},
	}

	for _, tt := range tests {
		t.Run(string(tt.template), func(t *testing.T) {
			got, err := DefaultUnitForTemplate(cfg, tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DefaultUnitForTemplate(cfg, "bogus")
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}

// TestDefaultUnitForTemplateIsTotal tests every known template resolves
func TestDefaultUnitForTemplateIsTotal(t *testing.T) {
	cfg := newFakeConfig()
	for _, dt := range types.DiskTemplatePreference {
		u, err := DefaultUnitForTemplate(cfg, dt)
		require.NoError(t, err, dt)
		assert.Equal(t, types.DiskTemplateStorageType[dt], u.Type)
	}
}

// TestDefaultUnitForSpindles tests the spindle unit
func TestDefaultUnitForSpindles(t *testing.T) {
	assert.Equal(t, Unit{Type: types.StorageLVMPV, Key: "some_vg_name"}, DefaultUnitForSpindles(newFakeConfig()))
}

// TestUnitsOfCluster tests one unit per enabled template without dedup
func TestUnitsOfCluster(t *testing.T) {
	cfg := newFakeConfig(types.DiskTemplateDRBD, types.DiskTemplatePlain, types.DiskTemplateFile, types.DiskTemplateSharedFile)

	units, err := UnitsOfCluster(cfg, false)
	require.NoError(t, err)
	assert.Equal(t, []Unit{
		{Type: types.StorageLVMVG, Key: "some_vg_name"},
		{Type: types.StorageLVMVG, Key: "some_vg_name"},
		{Type: types.StorageFile, Key: "my/file/storage/dir"},
		{Type: types.StorageFile, Key: types.DefaultSharedFileStorageDir},
	}, units)

	units, err = UnitsOfCluster(cfg, true)
	require.NoError(t, err)
	require.Len(t, units, 5)
	assert.Equal(t, types.StorageLVMPV, units[4].Type)

	units, err = UnitsOfCluster(newFakeConfig(), false)
	require.NoError(t, err)
	assert.Empty(t, units)
}

// TestUnitsOfClusterErrors tests resolution failures
func TestUnitsOfClusterErrors(t *testing.T) {
	_, err := UnitsOfCluster(&fakeConfig{}, false)
	assert.True(t, errors.Is(err, types.ErrConfiguration))

	_, err = UnitsOfCluster(newFakeConfig(types.DiskTemplatePlain, "bogus"), false)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}

// TestConfigDataIsAccessor tests the snapshot as resolver input
func TestConfigDataIsAccessor(t *testing.T) {
	data := &types.ConfigData{Cluster: &types.Cluster{
		VolumeGroupName:      "xenvg",
		EnabledDiskTemplates: []types.DiskTemplate{types.DiskTemplatePlain},
	}}
	units, err := UnitsOfCluster(data, true)
	require.NoError(t, err)
	assert.Equal(t, []Unit{
		{Type: types.StorageLVMVG, Key: "xenvg"},
		{Type: types.StorageLVMPV, Key: "xenvg"},
	}, units)
}

// TestUnitString tests unit formatting
func TestUnitString(t *testing.T) {
	assert.Equal(t, "lvm-vg:xenvg", Unit{Type: types.StorageLVMVG, Key: "xenvg"}.String())
	assert.Equal(t, "diskless", Unit{Type: types.StorageDiskless}.String())
}

func allTypesReport() []SpaceInfo {
	infos := make([]SpaceInfo, 0, len(types.StorageTypes))
	for _, st := range types.StorageTypes {
		infos = append(infos, SpaceInfo{Type: st, Name: string(st) + "_key"})
	}
	return infos
}

// TestLookupByType tests first-match lookup in a capacity report
func TestLookupByType(t *testing.T) {
	infos := allTypesReport()

	got, ok := LookupByType(infos, types.StorageLVMPV)
	require.True(t, ok)
	assert.Equal(t, types.StorageLVMPV, got.Type)

	_, ok = LookupByType(infos, "non_existing_type")
	assert.False(t, ok)

	_, ok = LookupByType(nil, types.StorageFile)
	assert.False(t, ok)

	dup := append(infos, SpaceInfo{Type: types.StorageFile, Name: "second"})
	got, ok = LookupByType(dup, types.StorageFile)
	require.True(t, ok)
	assert.Equal(t, "file_key", got.Name)
}

// TestParseSpaceInfo tests decoding a wire capacity report
func TestParseSpaceInfo(t *testing.T) {
	infos, err := ParseSpaceInfo([]map[string]any{
		{"type": "file", "name": "mynode", "storage_size": 42.0, "storage_free": 23},
	})
	require.NoError(t, err)
	assert.Equal(t, []SpaceInfo{{Type: types.StorageFile, Name: "mynode", StorageSize: 42, StorageFree: 23}}, infos)
	assert.Equal(t, map[string]any{
		"type": "file", "name": "mynode", "storage_size": int64(42), "storage_free": int64(23),
	}, infos[0].ToDict())

	_, err = ParseSpaceInfo([]map[string]any{{"storage_size": "lots"}})
	assert.Error(t, err)
}

func nodeReport() []SpaceInfo {
	return []SpaceInfo{
		{Name: "mynode", Type: types.StorageFile, StorageFree: 23, StorageSize: 42},
		{Name: "mynode", Type: types.StorageLVMVG, StorageFree: 69, StorageSize: 666},
		{Name: "mynode", Type: types.StorageLVMPV, StorageFree: 33, StorageSize: 44},
	}
}

// TestComputeStorageData tests capacity derivation from a node report
func TestComputeStorageData(t *testing.T) {
	got, err := ComputeStorageData(nodeReport(), "mynode", false)
	require.NoError(t, err)
	assert.Equal(t, StorageData{}, got)

	got, err = ComputeStorageData(nodeReport(), "mynode", true)
	require.NoError(t, err)
	assert.Equal(t, StorageData{TotalDisk: 666, FreeDisk: 69, TotalSpindles: 44, FreeSpindles: 33}, got)

	_, err = ComputeStorageData(nodeReport()[:1], "mynode", true)
	assert.True(t, errors.Is(err, ErrMissingSpaceInfo))
	_, err = ComputeStorageData(nodeReport()[:2], "mynode", true)
	assert.True(t, errors.Is(err, ErrMissingSpaceInfo))
}
