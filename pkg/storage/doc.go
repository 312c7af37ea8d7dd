/*
Package storage provides BoltDB-backed persistence for the hutch
configuration snapshot.

The snapshot is split across buckets so single objects can be read and
written without decoding the rest. Every value is the JSON encoding of the
object's wire form (ToDict), so the stored shape is the same one the codec
accepts from files and older releases.

# Architecture

	┌──────────────── <dataDir>/hutch.db ────────────────┐
	│                                                     │
	│  meta         version     "2100000"                 │
	│               serial_no   "7"                       │
	│  cluster      cluster     {cluster wire form}       │
	│  nodegroups   <name>      {group wire form}         │
	│  nodes        <name>      {node wire form}          │
	│  instances    <name>      {instance wire form}      │
	│                                                     │
	└─────────────────────────────────────────────────────┘

Load reads every bucket inside one read transaction and hands the assembled
document to types.ConfigDataFromDict. Save rewrites the whole snapshot in one
write transaction: entity buckets are recreated, so objects missing from the
snapshot disappear. Readers never observe a half-written snapshot.

# Numbers

JSON has one number type. Values are decoded back to int when integral and
float64 otherwise. Typed fields do not care, but free-form parameter maps
will read an integral float such as 1.0 back as the int 1.

# Usage

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := store.Load()
	if errors.Is(err, storage.ErrNotFound) {
		// nothing initialized yet
	}

	node, err := store.GetNode("node1.example.com")
	node.Drained = true
	err = store.PutNode(node)

The file is created with mode 0600. bbolt holds an exclusive file lock while
a store is open, so a second process blocks in NewBoltStore until the first
closes it.
*/
package storage
