package storage

import (
	"errors"

	"github.com/cuemby/hutch/pkg/types"
)

// ErrNotFound is returned when a requested object is not stored
var ErrNotFound = errors.New("not found")

// Store defines the interface for configuration storage.
// Objects are keyed by name and written as upserts.
type Store interface {
	// Cluster
	GetCluster() (*types.Cluster, error)
	PutCluster(cluster *types.Cluster) error

	// Node groups
	GetNodeGroup(name string) (*types.NodeGroup, error)
	ListNodeGroups() ([]*types.NodeGroup, error)
	PutNodeGroup(group *types.NodeGroup) error
	DeleteNodeGroup(name string) error

	// Nodes
	GetNode(name string) (*types.Node, error)
	ListNodes() ([]*types.Node, error)
	PutNode(node *types.Node) error
	DeleteNode(name string) error

	// Instances
	GetInstance(name string) (*types.Instance, error)
	ListInstances() ([]*types.Instance, error)
	PutInstance(inst *types.Instance) error
	DeleteInstance(name string) error

	// Snapshot
	Version() (int, error)
	Load() (*types.ConfigData, error)
	Save(data *types.ConfigData) error

	// Utility
	Close() error
}
