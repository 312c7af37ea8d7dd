package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Configuration metrics
	ConfigObjects = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hutch_config_objects",
			Help: "Number of configuration objects by kind",
		},
		[]string{"kind"},
	)

	ConfigSerial = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hutch_config_serial_no",
			Help: "Serial number of the loaded configuration",
		},
	)

	ConfigUpgradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hutch_config_upgrades_total",
			Help: "Total number of configuration upgrade passes by result",
		},
		[]string{"result"},
	)

	// Validation metrics
	ValidationChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hutch_validation_checks_total",
			Help: "Total number of validation checks by check and result",
		},
		[]string{"check", "result"},
	)

	ValidationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hutch_validation_duration_seconds",
			Help:    "Time taken to verify a configuration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	VerifyFindings = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hutch_verify_findings",
			Help: "Findings of the last verification by severity",
		},
		[]string{"severity"},
	)

	// Resolution metrics
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hutch_resolutions_total",
			Help: "Total number of parameter resolutions by kind",
		},
		[]string{"kind"},
	)

	ResolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hutch_resolution_duration_seconds",
			Help:    "Parameter resolution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(ConfigObjects)
	prometheus.MustRegister(ConfigSerial)
	prometheus.MustRegister(ConfigUpgradesTotal)
	prometheus.MustRegister(ValidationChecksTotal)
	prometheus.MustRegister(ValidationDuration)
	prometheus.MustRegister(VerifyFindings)
	prometheus.MustRegister(ResolutionsTotal)
	prometheus.MustRegister(ResolutionDuration)
}

// Result label values
const (
	ResultOK   = "ok"
	ResultFail = "fail"
)

// Result maps an error to a result label value
func Result(err error) string {
	if err != nil {
		return ResultFail
	}
	return ResultOK
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
