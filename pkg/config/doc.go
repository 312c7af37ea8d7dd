/*
Package config loads the hutch tool configuration.

Sources are layered, later ones winning:

	built-in defaults ─► YAML file ─► HUTCH_* environment ─► validation

The file is the one passed with --config, or hutch.yaml from /etc/hutch or
the working directory. Nested keys map to environment variables with dots
replaced by underscores: logging.level is HUTCH_LOGGING_LEVEL.

	data_dir: /var/lib/hutch
	logging:
	  level: info          # debug | info | warn | error
	  format: console      # console | json
	metrics:
	  textfile_path: ""    # written by "hutch verify" when set
	cluster:               # seeds "hutch init"
	  name: cluster.example.com
	  volume_group: xenvg
	  file_storage_dir: /srv/hutch/file-storage
	  enabled_hypervisors: [kvm]
	  enabled_disk_templates: [drbd, plain]

Validation failures are *types.ConfigurationError values naming every
offending field.
*/
package config
