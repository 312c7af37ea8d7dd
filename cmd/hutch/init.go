package main

import (
	"errors"
	"fmt"

	"github.com/cuemby/hutch/pkg/storage"
	"github.com/cuemby/hutch/pkg/types"
	"github.com/cuemby/hutch/pkg/upgrade"
	"github.com/cuemby/hutch/pkg/version"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new cluster configuration",
	Long: `Initialize a new cluster configuration in the data directory.

The cluster object is seeded from the "cluster" section of the hutch
configuration file; the master node is registered in the default group.

Examples:
  hutch init --name cluster.example.com --master node1.example.com --master-ip 192.0.2.10`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "Cluster name (default from config)")
	initCmd.Flags().String("master", "", "Name of the master node (required)")
	initCmd.Flags().String("master-ip", "", "Primary IP of the master node")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	_ = initCmd.MarkFlagRequired("master")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	master, _ := cmd.Flags().GetString("master")
	masterIP, _ := cmd.Flags().GetString("master-ip")
	force, _ := cmd.Flags().GetBool("force")

	if name == "" {
		name = cfg.Cluster.Name
	}
	if name == "" {
		return fmt.Errorf("cluster name is required: pass --name or set cluster.name")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Version(); err == nil && !force {
		return fmt.Errorf("configuration already exists in %s; use --force to overwrite", storage.DBPath(cfg.DataDir))
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	data := &types.ConfigData{
		Version: version.Current,
		Cluster: &types.Cluster{
			Name:                 name,
			MasterNode:           master,
			VolumeGroupName:      cfg.Cluster.VolumeGroup,
			FileStorageDir:       cfg.Cluster.FileStorageDir,
			EnabledHypervisors:   cfg.Cluster.Hypervisors(),
			EnabledDiskTemplates: cfg.Cluster.DiskTemplates(),
		},
		Nodes: map[string]*types.Node{
			master: {
				Name:            master,
				PrimaryIP:       masterIP,
				MasterCandidate: true,
			},
		},
	}
	if err := upgrade.UpgradeConfig(data); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	data.SerialNo = 1

	if err := store.Save(data); err != nil {
		return err
	}

	fmt.Printf("✓ Cluster %s initialized\n", name)
	fmt.Printf("  UUID: %s\n", data.Cluster.UUID)
	fmt.Printf("  Master: %s (group %s)\n", master, data.Nodes[master].Group)
	fmt.Printf("  Database: %s\n", storage.DBPath(cfg.DataDir))
	return nil
}
