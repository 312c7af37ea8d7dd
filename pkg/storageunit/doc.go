/*
Package storageunit maps disk templates to the storage units that back them.

A storage unit is a (backend type, key) pair naming one pool of capacity.
The key is backend specific: a volume group for LVM, a directory for file
storage, nothing at all for diskless or externally managed backends.

	template      storage type   key
	─────────     ────────────   ──────────────────────────────
	plain, drbd   lvm-vg         cluster volume group
	file          file           cluster file storage dir
	sharedfile    file           DefaultSharedFileStorageDir
	diskless      diskless       -
	blockdev      blockdev       -
	rbd           rados          -
	ext           ext            -
	(spindles)    lvm-pv         cluster volume group

UnitsOfCluster returns one unit per enabled template in order. Templates that
share a backend (plain and drbd) produce duplicate units on purpose:
capacity accounting downstream counts per template.

Capacity reports come back from nodes as SpaceInfo lists; LookupByType picks
the entry for one backend and ComputeStorageData turns a report into disk and
spindle totals.
*/
package storageunit
