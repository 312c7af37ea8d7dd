package verify

import (
	"fmt"
	"slices"

	"github.com/cuemby/hutch/pkg/ipolicy"
	"github.com/cuemby/hutch/pkg/log"
	"github.com/cuemby/hutch/pkg/metrics"
	"github.com/cuemby/hutch/pkg/params"
	"github.com/cuemby/hutch/pkg/storageunit"
	"github.com/cuemby/hutch/pkg/types"
	"github.com/cuemby/hutch/pkg/upgrade"
	"github.com/cuemby/hutch/pkg/version"
	"github.com/rs/zerolog"
)

// Severity grades a finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Check names, used as metric labels
const (
	CheckVersion       = "version"
	CheckCluster       = "cluster"
	CheckClusterPolicy = "cluster-ipolicy"
	CheckGroupPolicy   = "group-ipolicy"
	CheckDiskTemplates = "disk-templates"
	CheckHypervisors   = "hypervisors"
	CheckStorageUnits  = "storage-units"
	CheckMaster        = "master-node"
	CheckNodeGroup     = "node-group"
	CheckInstanceNodes = "instance-nodes"
	CheckInstanceDisks = "instance-disks"
	CheckInstanceHV    = "instance-hypervisor"
	CheckDrift         = "upgrade-drift"
)

// Finding is one problem found in a configuration
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Check    string   `json:"check" yaml:"check"`
	Object   string   `json:"object,omitempty" yaml:"object,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func (f Finding) String() string {
	if f.Object == "" {
		return fmt.Sprintf("%s [%s] %s", f.Severity, f.Check, f.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", f.Severity, f.Check, f.Object, f.Message)
}

// Report is the result of one verification
type Report struct {
	Findings []Finding `json:"findings" yaml:"findings"`

	// Drift is the difference an upgrade pass would make, or ""
	Drift string `json:"drift,omitempty" yaml:"drift,omitempty"`
}

// Count returns the number of findings of severity s
func (r *Report) Count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// OK reports whether the configuration has no errors. Warnings are allowed.
func (r *Report) OK() bool {
	return r.Count(SeverityError) == 0
}

// Verifier checks a configuration snapshot for consistency, in the manner
// of a cluster verify: every check runs and every problem is collected
// instead of stopping at the first.
type Verifier struct {
	logger zerolog.Logger
}

// New creates a verifier
func New() *Verifier {
	return &Verifier{logger: log.WithComponent("verify")}
}

type run struct {
	report *Report
	logger zerolog.Logger
}

func (r *run) add(sev Severity, check, object, format string, args ...any) {
	f := Finding{Severity: sev, Check: check, Object: object, Message: fmt.Sprintf(format, args...)}
	r.report.Findings = append(r.report.Findings, f)
	r.logger.Debug().Str("check", check).Str("object", object).Str("severity", string(sev)).Msg(f.Message)
}

// check records the outcome of one check in metrics and, on failure, as a
// finding
func (r *run) check(check, object string, err error) {
	metrics.ValidationChecksTotal.WithLabelValues(check, metrics.Result(err)).Inc()
	if err != nil {
		r.add(SeverityError, check, object, "%v", err)
	}
}

// Verify runs every check against data. data is not modified.
func (v *Verifier) Verify(data *types.ConfigData) *Report {
	timer := metrics.NewTimer()
	r := &run{report: &Report{}, logger: v.logger}

	metrics.ConfigObjects.WithLabelValues("nodegroup").Set(float64(len(data.NodeGroups)))
	metrics.ConfigObjects.WithLabelValues("node").Set(float64(len(data.Nodes)))
	metrics.ConfigObjects.WithLabelValues("instance").Set(float64(len(data.Instances)))
	metrics.ConfigSerial.Set(float64(data.SerialNo))

	if !version.Compatible(data.Version) {
		metrics.ValidationChecksTotal.WithLabelValues(CheckVersion, metrics.ResultFail).Inc()
		r.add(SeverityWarning, CheckVersion, "", "configuration version %s differs from current %s",
			version.String(data.Version), version.String(version.Current))
	} else {
		metrics.ValidationChecksTotal.WithLabelValues(CheckVersion, metrics.ResultOK).Inc()
	}

	if data.Cluster == nil {
		r.check(CheckCluster, "", types.NewConfigurationError("configuration has no cluster object"))
	} else {
		r.checkCluster(data)
		r.checkGroups(data)
		r.checkNodes(data)
		r.checkInstances(data)
		r.checkDrift(data)
	}

	report := r.report
	metrics.VerifyFindings.WithLabelValues(string(SeverityError)).Set(float64(report.Count(SeverityError)))
	metrics.VerifyFindings.WithLabelValues(string(SeverityWarning)).Set(float64(report.Count(SeverityWarning)))
	timer.ObserveDuration(metrics.ValidationDuration)

	v.logger.Info().
		Int("errors", report.Count(SeverityError)).
		Int("warnings", report.Count(SeverityWarning)).
		Dur("duration", timer.Duration()).
		Msg("Configuration verified")
	return report
}

func (r *run) checkCluster(data *types.ConfigData) {
	cluster := data.Cluster

	r.check(CheckClusterPolicy, cluster.Name, ipolicy.CheckPolicy(params.ClusterIPolicy(cluster), true))
	r.check(CheckDiskTemplates, cluster.Name, ipolicy.CheckDiskTemplates(cluster.EnabledDiskTemplates))
	r.check(CheckHypervisors, cluster.Name, checkHypervisors(cluster.EnabledHypervisors))

	_, err := storageunit.UnitsOfCluster(data, true)
	r.check(CheckStorageUnits, cluster.Name, err)

	var masterErr error
	if cluster.MasterNode != "" {
		_, masterErr = data.Node(cluster.MasterNode)
	}
	r.check(CheckMaster, cluster.Name, masterErr)
}

func checkHypervisors(hvs []types.HypervisorType) error {
	if len(hvs) == 0 {
		return types.NewConfigurationError("no hypervisors enabled")
	}
	for _, hv := range hvs {
		if !types.ValidHypervisor(hv) {
			return types.NewConfigurationError("invalid enabled hypervisor %q", hv)
		}
	}
	return nil
}

func (r *run) checkGroups(data *types.ConfigData) {
	for _, name := range data.NodeGroupNames() {
		group := data.NodeGroups[name]
		policy := params.GroupIPolicy(data.Cluster, group)
		r.check(CheckGroupPolicy, name, ipolicy.CheckPolicy(policy, true))
	}
}

func (r *run) checkNodes(data *types.ConfigData) {
	for _, name := range data.NodeNames() {
		_, err := data.GroupOf(data.Nodes[name])
		r.check(CheckNodeGroup, name, err)
	}
}

func (r *run) checkInstances(data *types.ConfigData) {
	cluster := data.Cluster
	for _, name := range data.InstanceNames() {
		inst := data.Instances[name]

		var nodeErr error
		for _, node := range inst.AllNodes() {
			if _, err := data.Node(node); err != nil {
				nodeErr = err
				break
			}
		}
		r.check(CheckInstanceNodes, name, nodeErr)

		var diskErr error
		if len(inst.Disks) > types.MaxDisks {
			diskErr = types.NewConfigurationError("%d disks exceed the maximum of %d", len(inst.Disks), types.MaxDisks)
		}
		r.check(CheckInstanceDisks, name, diskErr)

		hvOK := inst.Hypervisor == "" || cluster.IsHypervisorEnabled(inst.Hypervisor)
		dtOK := inst.DiskTemplate == "" || cluster.IsDiskTemplateEnabled(inst.DiskTemplate)
		metrics.ValidationChecksTotal.WithLabelValues(CheckInstanceHV, resultOf(hvOK && dtOK)).Inc()
		if !hvOK {
			r.add(SeverityWarning, CheckInstanceHV, name, "hypervisor %q is not enabled on the cluster", inst.Hypervisor)
		}
		if !dtOK {
			r.add(SeverityWarning, CheckInstanceHV, name, "disk template %q is not enabled on the cluster", inst.DiskTemplate)
		}
	}
}

// checkDrift upgrades a copy and reports what would change
func (r *run) checkDrift(data *types.ConfigData) {
	upgraded, err := data.Clone()
	if err == nil {
		err = upgrade.UpgradeConfig(upgraded)
	}
	if err != nil {
		r.check(CheckDrift, "", err)
		return
	}

	// UUIDs and the version stamp are not drift worth reporting on their own
	upgraded.Version = data.Version
	restoreUUIDs(data, upgraded)

	diff := data.Diff(upgraded)
	metrics.ValidationChecksTotal.WithLabelValues(CheckDrift, resultOf(diff == "")).Inc()
	if diff != "" {
		r.report.Drift = diff
		r.add(SeverityWarning, CheckDrift, "", "configuration is not up to date; run hutch-migrate")
	}
}

func restoreUUIDs(orig, upgraded *types.ConfigData) {
	upgraded.Cluster.UUID = orig.Cluster.UUID
	for name, g := range upgraded.NodeGroups {
		if o, ok := orig.NodeGroups[name]; ok {
			g.UUID = o.UUID
		}
	}
	for name, n := range upgraded.Nodes {
		if o, ok := orig.Nodes[name]; ok {
			n.UUID = o.UUID
		}
	}
	for name, inst := range upgraded.Instances {
		if o, ok := orig.Instances[name]; ok {
			inst.UUID = o.UUID
		}
	}
}

func resultOf(ok bool) string {
	if ok {
		return metrics.ResultOK
	}
	return metrics.ResultFail
}

// Errors returns the error findings, in check order
func (r *Report) Errors() []Finding {
	return slices.DeleteFunc(slices.Clone(r.Findings), func(f Finding) bool {
		return f.Severity != SeverityError
	})
}
