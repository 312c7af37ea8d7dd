package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cuemby/hutch/pkg/config"
	"github.com/cuemby/hutch/pkg/log"
	"github.com/cuemby/hutch/pkg/storage"
	"github.com/cuemby/hutch/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// cfg is loaded before any subcommand runs
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hutch",
	Short: "hutch - cluster configuration model and parameter resolution",
	Long: `hutch keeps the configuration of a virtual machine cluster: the
cluster, its node groups, nodes and instances, and resolves the effective
parameters each object ends up with after cluster, group, OS and object
level overrides are layered.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"hutch version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file (default /etc/hutch/hutch.yaml or ./hutch.yaml)")
	flags.String("data-dir", "", "Data directory holding hutch.db (overrides config)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.Bool("log-json", false, "Log as JSON lines")
	flags.StringP("output", "o", "yaml", "Output format: yaml or json")
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		loaded.DataDir = dataDir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		loaded.Logging.Level = level
	}
	if jsonLogs, _ := cmd.Flags().GetBool("log-json"); jsonLogs {
		loaded.Logging.Format = "json"
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.Logging.Level),
		JSONOutput: cfg.Logging.Format == "json",
		Output:     os.Stderr,
	})
	return nil
}

// openStore opens the configuration database of the configured data dir
func openStore() (storage.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return storage.NewBoltStore(cfg.DataDir)
}

func errNoConfig() error {
	return fmt.Errorf("no configuration in %s; run 'hutch init' or 'hutch import' first", storage.DBPath(cfg.DataDir))
}

// loadConfigData reads the stored snapshot
func loadConfigData() (*types.ConfigData, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	data, err := store.Load()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errNoConfig()
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// getCluster reads the cluster object, which every other object hangs off
func getCluster(store storage.Store) (*types.Cluster, error) {
	cluster, err := store.GetCluster()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errNoConfig()
	}
	return cluster, err
}

// notFound maps a missing stored object to an unknown entity error
func notFound(kind, name string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return types.NewPrereqError(types.ErrCodeUnknownEntity, "%s %q not found", kind, name)
	}
	return err
}

// touchCluster bumps the cluster serial number after an object write
func touchCluster(store storage.Store, cluster *types.Cluster) error {
	cluster.SerialNo++
	if err := store.PutCluster(cluster); err != nil {
		return fmt.Errorf("failed to update cluster: %w", err)
	}
	return nil
}

// printValue writes v to w in the format selected by --output
func printValue(cmd *cobra.Command, w io.Writer, v any) error {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
