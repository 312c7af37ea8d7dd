/*
Package verify checks a configuration snapshot for consistency.

Verification collects findings instead of failing fast, so one run shows
everything that is wrong:

	check                 severity   what
	───────────────────   ────────   ─────────────────────────────────────
	version               warning    stored version differs from current
	cluster               error      snapshot has no cluster object
	cluster-ipolicy       error      filled cluster policy fails validation
	group-ipolicy         error      filled group policy fails validation
	disk-templates        error      enabled template list empty or unknown
	hypervisors           error      enabled hypervisor list empty or unknown
	storage-units         error      enabled templates do not map to storage
	master-node           error      master is not a known node
	node-group            error      node points at an unknown group
	instance-nodes        error      primary or DRBD peer is not a known node
	instance-disks        error      more disks than types.MaxDisks
	instance-hypervisor   warning    hypervisor or template not enabled
	upgrade-drift         warning    an upgrade pass would change the data

The drift check upgrades a clone and diffs it against the input with
go-cmp; the diff is kept in Report.Drift. New UUIDs and the version stamp
are not counted as drift.

Every check outcome is counted in metrics.ValidationChecksTotal and the
finding totals are published in metrics.VerifyFindings.
*/
package verify
