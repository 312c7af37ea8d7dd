/*
Package upgrade brings stored configuration up to the current schema.

Objects written by older releases lack fields that were added later, or
carry fields that moved elsewhere. The upgrade pass fills the gaps from the
built-in defaults so the rest of hutch can assume a complete object.

	UpgradeConfig(data)
	  │
	  ├─ refuse versions newer than version.Current (major.minor)
	  ├─ UpgradeCluster      ipolicy, ndparams, hvparams, enabled lists
	  ├─ UpgradeNodeGroup    (creates "default" if there is no group)
	  ├─ UpgradeNode         drops node-level exclusive_storage,
	  │                      assigns groupless nodes to the only group
	  ├─ UpgradeInstance     disk modes default to rw, recursively
	  ├─ assign a UUID to every object lacking one
	  └─ stamp data.Version = version.Current

The pass is idempotent: running it on an upgraded snapshot changes nothing.
It mutates in place; callers wanting a preview upgrade a Clone and Diff.
*/
package upgrade
