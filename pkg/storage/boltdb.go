package storage

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/cuemby/hutch/pkg/log"
	"github.com/cuemby/hutch/pkg/types"
	bolt "go.etcd.io/bbolt"
)

// DBFile is the name of the database file inside the data directory
const DBFile = "hutch.db"

var (
	// Bucket names
	bucketMeta       = []byte("meta")
	bucketCluster    = []byte("cluster")
	bucketNodeGroups = []byte("nodegroups")
	bucketNodes      = []byte("nodes")
	bucketInstances  = []byte("instances")

	keyVersion  = []byte("version")
	keySerialNo = []byte("serial_no")
	keyCluster  = []byte("cluster")
)

var entityBuckets = [][]byte{bucketNodeGroups, bucketNodes, bucketInstances}

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db   *bolt.DB
	path string
}

var _ Store = (*BoltStore)(nil)

// DBPath returns the database path for a data directory
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := DBPath(dataDir)

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketMeta,
			bucketCluster,
			bucketNodeGroups,
			bucketNodes,
			bucketInstances,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	logger := log.WithComponent("storage")
	logger.Debug().Str("path", dbPath).Msg("Opened configuration store")

	return &BoltStore{db: db, path: dbPath}, nil
}

// Path returns the database file path
func (s *BoltStore) Path() string {
	return s.path
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func put(tx *bolt.Tx, bucket []byte, key string, m map[string]any) error {
	data, err := encode(m)
	if err != nil {
		return fmt.Errorf("%s %s: %w", bucket, key, err)
	}
	return tx.Bucket(bucket).Put([]byte(key), data)
}

func get(tx *bolt.Tx, bucket []byte, key string) (map[string]any, error) {
	data := tx.Bucket(bucket).Get([]byte(key))
	if data == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, bucket, key)
	}
	m, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", bucket, key, err)
	}
	return m, nil
}

func list(tx *bolt.Tx, bucket []byte) (map[string]any, error) {
	out := make(map[string]any)
	err := tx.Bucket(bucket).ForEach(func(k, v []byte) error {
		m, err := decode(v)
		if err != nil {
			return fmt.Errorf("%s %s: %w", bucket, k, err)
		}
		out[string(k)] = m
		return nil
	})
	return out, err
}

func deleteKey(s *BoltStore, bucket []byte, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(name))
	})
}

// Cluster operations
func (s *BoltStore) GetCluster() (*types.Cluster, error) {
	var cluster *types.Cluster
	err := s.db.View(func(tx *bolt.Tx) error {
		m, err := get(tx, bucketCluster, string(keyCluster))
		if err != nil {
			return err
		}
		cluster, err = types.ClusterFromDict(m)
		return err
	})
	return cluster, err
}

func (s *BoltStore) PutCluster(cluster *types.Cluster) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketCluster, string(keyCluster), cluster.ToDict())
	})
}

// Node group operations
func (s *BoltStore) GetNodeGroup(name string) (*types.NodeGroup, error) {
	var group *types.NodeGroup
	err := s.db.View(func(tx *bolt.Tx) error {
		m, err := get(tx, bucketNodeGroups, name)
		if err != nil {
			return err
		}
		group, err = types.NodeGroupFromDict(m)
		return err
	})
	return group, err
}

func (s *BoltStore) ListNodeGroups() ([]*types.NodeGroup, error) {
	var groups []*types.NodeGroup
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodeGroups).ForEach(func(k, v []byte) error {
			m, err := decode(v)
			if err != nil {
				return fmt.Errorf("nodegroup %s: %w", k, err)
			}
			group, err := types.NodeGroupFromDict(m)
			if err != nil {
				return err
			}
			groups = append(groups, group)
			return nil
		})
	})
	return groups, err
}

func (s *BoltStore) PutNodeGroup(group *types.NodeGroup) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketNodeGroups, group.Name, group.ToDict())
	})
}

func (s *BoltStore) DeleteNodeGroup(name string) error {
	return deleteKey(s, bucketNodeGroups, name)
}

// Node operations
func (s *BoltStore) GetNode(name string) (*types.Node, error) {
	var node *types.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		m, err := get(tx, bucketNodes, name)
		if err != nil {
			return err
		}
		node, err = types.NodeFromDict(m)
		return err
	})
	return node, err
}

func (s *BoltStore) ListNodes() ([]*types.Node, error) {
	var nodes []*types.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).ForEach(func(k, v []byte) error {
			m, err := decode(v)
			if err != nil {
				return fmt.Errorf("node %s: %w", k, err)
			}
			node, err := types.NodeFromDict(m)
			if err != nil {
				return err
			}
			nodes = append(nodes, node)
			return nil
		})
	})
	return nodes, err
}

func (s *BoltStore) PutNode(node *types.Node) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketNodes, node.Name, node.ToDict())
	})
}

func (s *BoltStore) DeleteNode(name string) error {
	return deleteKey(s, bucketNodes, name)
}

// Instance operations
func (s *BoltStore) GetInstance(name string) (*types.Instance, error) {
	var inst *types.Instance
	err := s.db.View(func(tx *bolt.Tx) error {
		m, err := get(tx, bucketInstances, name)
		if err != nil {
			return err
		}
		inst, err = types.InstanceFromDict(m)
		return err
	})
	return inst, err
}

func (s *BoltStore) ListInstances() ([]*types.Instance, error) {
	var instances []*types.Instance
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInstances).ForEach(func(k, v []byte) error {
			m, err := decode(v)
			if err != nil {
				return fmt.Errorf("instance %s: %w", k, err)
			}
			inst, err := types.InstanceFromDict(m)
			if err != nil {
				return err
			}
			instances = append(instances, inst)
			return nil
		})
	})
	return instances, err
}

func (s *BoltStore) PutInstance(inst *types.Instance) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketInstances, inst.Name, inst.ToDict())
	})
}

func (s *BoltStore) DeleteInstance(name string) error {
	return deleteKey(s, bucketInstances, name)
}

// Snapshot operations

// Version returns the stored configuration version, or ErrNotFound when no
// snapshot was ever saved
func (s *BoltStore) Version() (int, error) {
	var v int
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		v, err = readInt(tx, keyVersion)
		return err
	})
	return v, err
}

func readInt(tx *bolt.Tx, key []byte) (int, error) {
	data := tx.Bucket(bucketMeta).Get(key)
	if data == nil {
		return 0, fmt.Errorf("%w: meta %s", ErrNotFound, key)
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("invalid meta %s: %w", key, err)
	}
	return v, nil
}

// Load reads the whole snapshot in one transaction
func (s *BoltStore) Load() (*types.ConfigData, error) {
	raw := make(map[string]any)
	err := s.db.View(func(tx *bolt.Tx) error {
		v, err := readInt(tx, keyVersion)
		if err != nil {
			return err
		}
		raw["version"] = v
		if serial, err := readInt(tx, keySerialNo); err == nil {
			raw["serial_no"] = serial
		}

		cluster, err := get(tx, bucketCluster, string(keyCluster))
		if err != nil {
			return err
		}
		raw["cluster"] = cluster

		for _, bucket := range entityBuckets {
			entries, err := list(tx, bucket)
			if err != nil {
				return err
			}
			raw[string(bucket)] = entries
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := types.ConfigDataFromDict(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return data, nil
}

// Save replaces the stored snapshot with data in one transaction. Objects
// absent from data are removed.
func (s *BoltStore) Save(data *types.ConfigData) error {
	if data.Cluster == nil {
		return types.NewConfigurationError("configuration has no cluster object")
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range entityBuckets {
			if err := tx.DeleteBucket(bucket); err != nil {
				return fmt.Errorf("failed to clear bucket %s: %w", bucket, err)
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keyVersion, []byte(strconv.Itoa(data.Version))); err != nil {
			return err
		}
		if err := meta.Put(keySerialNo, []byte(strconv.Itoa(data.SerialNo))); err != nil {
			return err
		}

		if err := put(tx, bucketCluster, string(keyCluster), data.Cluster.ToDict()); err != nil {
			return err
		}
		for name, g := range data.NodeGroups {
			if err := put(tx, bucketNodeGroups, name, g.ToDict()); err != nil {
				return err
			}
		}
		for name, n := range data.Nodes {
			if err := put(tx, bucketNodes, name, n.ToDict()); err != nil {
				return err
			}
		}
		for name, inst := range data.Instances {
			if err := put(tx, bucketInstances, name, inst.ToDict()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger := log.WithComponent("storage")
	logger.Debug().
		Int("serial_no", data.SerialNo).
		Int("nodes", len(data.Nodes)).
		Int("instances", len(data.Instances)).
		Msg("Saved configuration")
	return nil
}
