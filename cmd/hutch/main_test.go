package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/hutch/pkg/storage"
	"github.com/cuemby/hutch/pkg/types"
	"github.com/cuemby/hutch/pkg/version"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadDocument(t *testing.T) {
	doc, err := readDocument(writeFile(t, "p.yaml", "vcpu-ratio: 4\nstd:\n  cpu-count: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, doc["vcpu-ratio"])
	assert.Equal(t, map[string]any{"cpu-count": 2}, doc["std"])

	doc, err = readDocument(writeFile(t, "p.json", `{"vcpu-ratio": 2.5, "disk-templates": ["plain"]}`))
	require.NoError(t, err)
	assert.Equal(t, 2.5, doc["vcpu-ratio"])
	assert.Equal(t, []any{"plain"}, doc["disk-templates"])

	_, err = readDocument(writeFile(t, "empty.yaml", ""))
	assert.Error(t, err)

	_, err = readDocument(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPrintValue(t *testing.T) {
	value := map[string]any{"a": 1, "b": []string{"x"}}

	tests := []struct {
		format string
		decode func([]byte, any) error
	}{
		{"json", json.Unmarshal},
		{"yaml", yaml.Unmarshal},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().String("output", tt.format, "")

			var buf bytes.Buffer
			require.NoError(t, printValue(cmd, &buf, value))

			var got map[string]any
			require.NoError(t, tt.decode(buf.Bytes(), &got))
			assert.Len(t, got, 2)
		})
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("output", "xml", "")
	assert.Error(t, printValue(cmd, &bytes.Buffer{}, value))
}

// TestInitAndVerify tests a freshly initialized cluster verifies clean
func TestInitAndVerify(t *testing.T) {
	dataDir := t.TempDir()
	configFile := writeFile(t, "hutch.yaml", "cluster:\n  volume_group: vg0\n")
	global := []string{"--config", configFile, "--data-dir", dataDir}

	rootCmd.SetArgs(append(global, "init", "--name", "cluster.example.com", "--master", "node1.example.com"))
	require.NoError(t, rootCmd.Execute())

	store, err := storage.NewBoltStore(dataDir)
	require.NoError(t, err)
	data, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.Equal(t, version.Current, data.Version)
	assert.Equal(t, "vg0", data.Cluster.VolumeGroupName)
	assert.Equal(t, "node1.example.com", data.Cluster.MasterNode)
	assert.Contains(t, data.Nodes, "node1.example.com")
	assert.NotEmpty(t, data.Nodes["node1.example.com"].Group)

	rootCmd.SetArgs(append(global, "verify"))
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs(append(global, "init", "--name", "cluster.example.com", "--master", "node1.example.com"))
	assert.Error(t, rootCmd.Execute(), "init must refuse to overwrite")
}

func TestIPolicyCheck(t *testing.T) {
	configFile := writeFile(t, "hutch.yaml", "")
	global := []string{"--config", configFile, "--data-dir", t.TempDir()}

	good := writeFile(t, "good.yaml", "vcpu-ratio: 2\ndisk-templates: [plain]\n")
	rootCmd.SetArgs(append(global, "ipolicy", "check", "-f", good))
	assert.NoError(t, rootCmd.Execute())

	bad := writeFile(t, "bad.yaml", "vcpu-ratio: lots\n")
	rootCmd.SetArgs(append(global, "ipolicy", "check", "-f", bad))
	assert.Error(t, rootCmd.Execute())
}

// TestObjectCommands tests the per-object commands against a stored cluster
func TestObjectCommands(t *testing.T) {
	dataDir := t.TempDir()
	configFile := writeFile(t, "hutch.yaml", "cluster:\n  volume_group: vg0\n")
	global := []string{"--config", configFile, "--data-dir", dataDir}
	run := func(args ...string) error {
		rootCmd.SetArgs(append(append([]string{}, global...), args...))
		return rootCmd.Execute()
	}

	require.NoError(t, run("init", "--name", "cluster.example.com", "--master", "node1"))

	store, err := storage.NewBoltStore(dataDir)
	require.NoError(t, err)
	for _, name := range []string{"node2", "node3"} {
		require.NoError(t, store.PutNode(&types.Node{Name: name, Group: "default"}))
	}
	require.NoError(t, store.PutInstance(&types.Instance{
		Name:        "inst1",
		PrimaryNode: "node1",
		Hypervisor:  types.HypervisorKVM,
		Disks: []*types.Disk{{
			Size:      1024,
			LogicalID: types.DRBDLogicalID{PrimaryNode: "node1", SecondaryNode: "node2", Port: 11000},
		}},
	}))
	cluster, err := store.GetCluster()
	require.NoError(t, err)
	serial := cluster.SerialNo
	require.NoError(t, store.Close())

	// Reads
	assert.NoError(t, run("instance", "hvparams", "inst1"))
	assert.NoError(t, run("instance", "nodes", "inst1"))
	assert.NoError(t, run("node", "ndparams", "node3"))
	assert.NoError(t, run("node", "list"))
	assert.NoError(t, run("group", "ipolicy", "default"))
	assert.NoError(t, run("group", "list"))

	err = run("instance", "hvparams", "missing")
	assert.True(t, errors.Is(err, types.ErrPrecondition), err)
	err = run("node", "ndparams", "missing")
	assert.True(t, errors.Is(err, types.ErrPrecondition), err)

	// Writes
	require.NoError(t, run("instance", "modify", "inst1", "--hvparam", "cpu_cap=50", "--hvparam", "kernel_path=/boot/vmlinuz"))
	require.NoError(t, run("node", "modify", "node3", "--drained"))
	require.NoError(t, run("group", "add", "rack2"))
	assert.Error(t, run("group", "add", "rack2"))

	for _, args := range [][]string{
		{"node", "remove", "node2"},
		{"node", "remove", "node1"},
		{"group", "remove", "default"},
	} {
		err := run(args...)
		assert.True(t, errors.Is(err, types.ErrPrecondition), "%v: %v", args, err)
	}

	require.NoError(t, run("group", "remove", "rack2"))
	require.NoError(t, run("instance", "remove", "inst1"))
	require.NoError(t, run("node", "remove", "node2"))

	store, err = storage.NewBoltStore(dataDir)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetInstance("inst1")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	_, err = store.GetNode("node2")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	_, err = store.GetNodeGroup("rack2")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	node3, err := store.GetNode("node3")
	require.NoError(t, err)
	assert.True(t, node3.Drained)
	assert.Equal(t, 1, node3.SerialNo)

	cluster, err = store.GetCluster()
	require.NoError(t, err)
	assert.Equal(t, serial+6, cluster.SerialNo)
}

// TestInstanceModifyOverrides tests typed overrides are set and cleared
func TestInstanceModifyOverrides(t *testing.T) {
	dataDir := t.TempDir()
	configFile := writeFile(t, "hutch.yaml", "")
	global := []string{"--config", configFile, "--data-dir", dataDir}

	rootCmd.SetArgs(append(global, "init", "--name", "c.example.com", "--master", "node1"))
	require.NoError(t, rootCmd.Execute())

	store, err := storage.NewBoltStore(dataDir)
	require.NoError(t, err)
	require.NoError(t, store.PutInstance(&types.Instance{
		Name:        "inst1",
		PrimaryNode: "node1",
		Hypervisor:  types.HypervisorKVM,
		HVParams:    types.Params{"acpi": true},
	}))
	require.NoError(t, store.Close())

	rootCmd.SetArgs(append(global, "instance", "modify", "inst1", "--hvparam", "cpu_cap=50", "--clear-hvparam", "acpi"))
	require.NoError(t, rootCmd.Execute())

	store, err = storage.NewBoltStore(dataDir)
	require.NoError(t, err)
	defer store.Close()
	inst, err := store.GetInstance("inst1")
	require.NoError(t, err)
	assert.NotContains(t, inst.HVParams, "acpi")
	assert.Equal(t, 50, inst.HVParams["cpu_cap"])
	assert.Equal(t, 1, inst.SerialNo)
}

func TestParseScalar(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"50", 50},
		{"true", true},
		{"1.5", 1.5},
		{"/boot/vmlinuz", "/boot/vmlinuz"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseScalar(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseScalar("[a, b]")
	assert.Error(t, err)
	_, err = parseScalar("{a: b}")
	assert.Error(t, err)
}
