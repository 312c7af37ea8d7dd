package main

import (
	"fmt"
	"os"

	"github.com/cuemby/hutch/pkg/metrics"
	"github.com/cuemby/hutch/pkg/verify"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the stored configuration for consistency",
	Long: `Run every consistency check against the stored configuration and
print the findings. Exits non-zero when any error is found.

Examples:
  hutch verify
  hutch verify --show-drift
  hutch verify --metrics-textfile /var/lib/node_exporter/hutch.prom`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("metrics-textfile", "", "Write metrics to this file (overrides config)")
	verifyCmd.Flags().Bool("show-drift", false, "Print the changes an upgrade would make")
	verifyCmd.Flags().Bool("report", false, "Print the full report in the --output format")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	textfile, _ := cmd.Flags().GetString("metrics-textfile")
	showDrift, _ := cmd.Flags().GetBool("show-drift")
	full, _ := cmd.Flags().GetBool("report")
	if textfile == "" {
		textfile = cfg.Metrics.TextfilePath
	}

	data, err := loadConfigData()
	if err != nil {
		return err
	}

	report := verify.New().Verify(data)

	if textfile != "" {
		if err := metrics.WriteTextfile(textfile); err != nil {
			return err
		}
	}

	if full {
		if err := printValue(cmd, os.Stdout, report); err != nil {
			return err
		}
	} else {
		for _, f := range report.Findings {
			fmt.Println(f.String())
		}
		if showDrift && report.Drift != "" {
			fmt.Println()
			fmt.Println(report.Drift)
		}
		fmt.Printf("%d errors, %d warnings\n",
			report.Count(verify.SeverityError), report.Count(verify.SeverityWarning))
	}

	if !report.OK() {
		return fmt.Errorf("verification failed")
	}
	return nil
}
