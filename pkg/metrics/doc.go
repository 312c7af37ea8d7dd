/*
Package metrics defines the Prometheus metrics hutch records.

All collectors are registered on the default registry at package init.
hutch is a command line tool rather than a daemon, so instead of serving
/metrics it writes the registry to a file for a node exporter textfile
collector to pick up:

	hutch verify ─┬─► ValidationChecksTotal{check,result}
	              ├─► ValidationDuration
	              ├─► VerifyFindings{severity}
	              ├─► ConfigObjects{kind}, ConfigSerial
	              └─► WriteTextfile(--metrics-textfile)

	hutch instance hvparams / node ndparams / group ipolicy
	              └─► ResolutionsTotal{kind}, ResolutionDuration{kind}

	upgrade.UpgradeConfig
	              └─► ConfigUpgradesTotal{result}

# Metrics Catalog

hutch_config_objects{kind}: gauge, objects in the loaded configuration by
kind (nodegroup, node, instance).

hutch_config_serial_no: gauge, serial number of the loaded configuration.

hutch_config_upgrades_total{result}: counter, upgrade passes, ok or fail.

hutch_validation_checks_total{check,result}: counter, one increment per
check run by the verifier.

hutch_validation_duration_seconds: histogram, wall time of a full verify.

hutch_verify_findings{severity}: gauge, findings of the last verify.

hutch_resolutions_total{kind} and hutch_resolution_duration_seconds{kind}:
parameter resolutions (hv, nd, ipolicy).

# Timer

	timer := metrics.NewTimer()
	filled := params.FillHV(cluster, inst)
	timer.ObserveDurationVec(metrics.ResolutionDuration, "hv")
*/
package metrics
