/*
Package log provides structured logging for hutch using zerolog.

A single global Logger is configured once by Init from the command line or
the configuration file. Until Init runs the logger discards everything, so
library code may log freely from tests.

	┌──────────── Init(Config) ────────────┐
	│ Level: debug / info / warn / error   │
	│ JSONOutput: JSON lines or console    │
	│ Output: io.Writer (default stderr)   │
	└──────────────────┬───────────────────┘
	                   │
	     ┌─────────────┼──────────────┬───────────────┐
	     ▼             ▼              ▼               ▼
	WithComponent   WithNode      WithGroup      WithInstance
	("upgrade")    ("node1")     ("default")    ("inst1")

The core model packages (record, types, params, ipolicy, storageunit) do not
log: they are pure and report through returned errors. Logging happens at the
edges: the upgrade pass, the bbolt store, the verifier, and the binaries.

# Usage

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.Logging.Level),
		JSONOutput: cfg.Logging.Format == "json",
	})

	logger := log.WithComponent("storage")
	logger.Info().Str("path", path).Msg("Opened configuration store")

	log.Errorf("Failed to load configuration", err)

JSON output:

	{"level":"info","component":"storage","path":"/var/lib/hutch/hutch.db",
	 "time":"2026-10-19T10:30:00Z","message":"Opened configuration store"}

Console output:

	2026-10-19T10:30:00Z INF Opened configuration store component=storage path=...
*/
package log
