package upgrade

import (
	"maps"
	"slices"
	"strings"

	"github.com/cuemby/hutch/pkg/log"
	"github.com/cuemby/hutch/pkg/metrics"
	"github.com/cuemby/hutch/pkg/params"
	"github.com/cuemby/hutch/pkg/record"
	"github.com/cuemby/hutch/pkg/types"
	"github.com/cuemby/hutch/pkg/version"
	"github.com/google/uuid"
)

// DefaultNodeGroupName is the group created for configurations that have none
const DefaultNodeGroupName = "default"

// UpgradeCluster brings a cluster object up to the current schema. It fails
// if the cluster policy carries keys no policy may have.
func UpgradeCluster(c *types.Cluster) error {
	if c.IPolicy != nil && len(c.IPolicy.Extra) > 0 {
		keys := slices.Sorted(maps.Keys(c.IPolicy.Extra))
		return types.NewConfigurationError("invalid keys in cluster-level ipolicy (%s)", strings.Join(keys, ", "))
	}
	c.IPolicy = params.ClusterIPolicy(c)

	c.NDParams = params.FillDict(types.NDDefaults(), c.NDParams)

	if c.HVParams == nil {
		c.HVParams = make(map[types.HypervisorType]types.Params)
	}
	for hv, p := range c.HVParams {
		if types.ValidHypervisor(hv) {
			c.HVParams[hv] = params.FillDict(types.HVDefaults(hv), p)
		}
	}
	if c.OSHVP == nil {
		c.OSHVP = make(map[string]map[types.HypervisorType]types.Params)
	}

	if len(c.EnabledHypervisors) == 0 {
		c.EnabledHypervisors = []types.HypervisorType{types.DefaultEnabledHypervisor}
	}
	if len(c.EnabledDiskTemplates) == 0 {
		c.EnabledDiskTemplates = slices.Clone(types.DefaultEnabledDiskTemplates)
	}
	if c.TCPUDPPortPool == nil {
		c.TCPUDPPortPool = record.NewIntSet()
	}
	return nil
}

// UpgradeNode brings a node up to the current schema. exclusive_storage is
// a group or cluster level parameter and is dropped from the node.
func UpgradeNode(n *types.Node) {
	if n.NDParams == nil {
		n.NDParams = types.Params{}
	}
	delete(n.NDParams, types.NDExclusiveStorage)

	if n.HVState == nil {
		n.HVState = make(map[types.HypervisorType]*types.NodeHvState)
	}
	if n.DiskState == nil {
		n.DiskState = make(map[types.StorageType]map[string]*types.NodeDiskState)
	}
}

// UpgradeNodeGroup brings a node group up to the current schema
func UpgradeNodeGroup(g *types.NodeGroup) {
	if g.NDParams == nil {
		g.NDParams = types.Params{}
	}
	if g.IPolicy == nil {
		g.IPolicy = &types.InstancePolicy{}
	}
	if g.AllocPolicy == "" {
		g.AllocPolicy = types.AllocPolicyPreferred
	}
}

// UpgradeInstance brings an instance and its disk tree up to the current
// schema
func UpgradeInstance(inst *types.Instance) {
	if inst.HVParams == nil {
		inst.HVParams = types.Params{}
	}
	if inst.AdminState == "" {
		inst.AdminState = types.AdminStateDown
	}
	for _, disk := range inst.Disks {
		disk.Walk(upgradeDisk)
	}
}

func upgradeDisk(d *types.Disk) {
	if d.Mode == "" {
		d.Mode = types.DiskModeReadWrite
	}
}

// UpgradeConfig upgrades a whole snapshot in place and stamps it with the
// current configuration version. Snapshots written by a newer release are
// refused.
func UpgradeConfig(data *types.ConfigData) (err error) {
	defer func() {
		metrics.ConfigUpgradesTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()
	logger := log.WithComponent("upgrade")

	if err := checkVersion(data.Version); err != nil {
		return err
	}
	if data.Cluster == nil {
		return types.NewConfigurationError("configuration has no cluster object")
	}

	if data.NodeGroups == nil {
		data.NodeGroups = make(map[string]*types.NodeGroup)
	}
	if data.Nodes == nil {
		data.Nodes = make(map[string]*types.Node)
	}
	if data.Instances == nil {
		data.Instances = make(map[string]*types.Instance)
	}

	if err := UpgradeCluster(data.Cluster); err != nil {
		return err
	}
	assignUUID(&data.Cluster.UUID)

	if len(data.NodeGroups) == 0 {
		logger.Info().Str("group", DefaultNodeGroupName).Msg("Creating default node group")
		data.NodeGroups[DefaultNodeGroupName] = &types.NodeGroup{Name: DefaultNodeGroupName}
	}
	for _, name := range data.NodeGroupNames() {
		g := data.NodeGroups[name]
		UpgradeNodeGroup(g)
		if assignUUID(&g.UUID) {
			groupLogger := log.WithGroup(name)
			groupLogger.Debug().Str("uuid", g.UUID).Msg("Assigned UUID")
		}
	}

	for _, name := range data.NodeNames() {
		n := data.Nodes[name]
		nodeLogger := log.WithNode(name)
		UpgradeNode(n)
		if assignUUID(&n.UUID) {
			nodeLogger.Debug().Str("uuid", n.UUID).Msg("Assigned UUID")
		}
		if n.Group != "" {
			continue
		}
		if len(data.NodeGroups) != 1 {
			return types.NewConfigurationError("node %q has no group and the group to assign is ambiguous", name)
		}
		n.Group = data.NodeGroupNames()[0]
		nodeLogger.Debug().Str("group", n.Group).Msg("Assigned node to the only group")
	}

	for _, name := range data.InstanceNames() {
		inst := data.Instances[name]
		UpgradeInstance(inst)
		if assignUUID(&inst.UUID) {
			instLogger := log.WithInstance(name)
			instLogger.Debug().Str("uuid", inst.UUID).Msg("Assigned UUID")
		}
	}

	from := data.Version
	data.Version = version.Current
	logger.Info().
		Str("from", version.String(from)).
		Str("to", version.String(data.Version)).
		Int("nodegroups", len(data.NodeGroups)).
		Int("nodes", len(data.Nodes)).
		Int("instances", len(data.Instances)).
		Msg("Configuration upgraded")
	return nil
}

func checkVersion(v int) error {
	major, minor, _, err := version.Split(v)
	if err != nil {
		return types.NewConfigurationError("invalid configuration version %d: %v", v, err)
	}
	if major > version.ConfigMajor || (major == version.ConfigMajor && minor > version.ConfigMinor) {
		return types.NewConfigurationError("configuration version %s is newer than supported %s",
			version.String(v), version.String(version.Current))
	}
	return nil
}

func assignUUID(id *string) bool {
	if *id != "" {
		return false
	}
	*id = uuid.NewString()
	return true
}
