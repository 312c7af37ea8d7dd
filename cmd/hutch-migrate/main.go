package main

import (
	"fmt"
	"os"

	"github.com/cuemby/hutch/pkg/log"
	"github.com/cuemby/hutch/pkg/storage"
	"github.com/cuemby/hutch/pkg/upgrade"
	"github.com/cuemby/hutch/pkg/version"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hutch-migrate",
	Short: "Upgrade a stored hutch configuration to the current schema",
	Long: `hutch-migrate loads the configuration stored in <data-dir>/hutch.db,
runs the upgrade pass over it and writes it back stamped with the current
configuration version. The database is backed up first.

Examples:
  # Show what would change
  hutch-migrate --data-dir /var/lib/hutch --dry-run

  # Migrate, keeping a backup next to the database
  hutch-migrate --data-dir /var/lib/hutch`,
	SilenceUsage: true,
	RunE:         runMigrate,
}

func init() {
	rootCmd.Flags().String("data-dir", "/var/lib/hutch", "hutch data directory")
	rootCmd.Flags().Bool("dry-run", false, "Show what would be migrated without making changes")
	rootCmd.Flags().String("backup", "", "Path to backup the database before migration (default: <data-dir>/hutch.db.backup)")
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().Bool("log-json", false, "Log as JSON lines")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	backupPath, _ := cmd.Flags().GetString("backup")
	level, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("log-json")

	log.Init(log.Config{Level: log.ParseLevel(level), JSONOutput: jsonLogs, Output: os.Stderr})
	logger := log.WithComponent("migrate")

	dbPath := storage.DBPath(dataDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database not found at %s", dbPath)
	}
	logger.Info().Str("database", dbPath).Bool("dry_run", dryRun).Msg("Starting configuration migration")

	if !dryRun {
		if backupPath == "" {
			backupPath = dbPath + ".backup"
		}
		if err := copyFile(dbPath, backupPath); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		logger.Info().Str("backup", backupPath).Msg("Backup created")
	}

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	from := data.Version

	before, err := data.Clone()
	if err != nil {
		return err
	}
	if err := upgrade.UpgradeConfig(data); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	diff := before.Diff(data)
	if diff == "" {
		logger.Info().Str("version", version.String(from)).Msg("Configuration is already up to date")
		return nil
	}

	if dryRun {
		fmt.Printf("[DRY RUN] Would migrate %s → %s with the following changes:\n\n",
			version.String(from), version.String(data.Version))
		fmt.Println(diff)
		fmt.Println("Run without --dry-run to perform the migration.")
		return nil
	}

	data.SerialNo++
	if err := store.Save(data); err != nil {
		return fmt.Errorf("failed to write migrated configuration: %w", err)
	}

	logger.Info().
		Str("from", version.String(from)).
		Str("to", version.String(data.Version)).
		Int("serial_no", data.SerialNo).
		Msg("Migration completed")
	fmt.Printf("✓ Migrated %s → %s. Backup kept at %s\n", version.String(from), version.String(data.Version), backupPath)
	return nil
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, input, 0600)
}
