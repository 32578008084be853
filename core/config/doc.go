// Package config loads the application configuration from environment
// variables and an optional .env file.
//
// Defaults come from `default` struct tags on the partial config structs,
// which live next to the packages they configure (database, storage, logger,
// server, scan). Environment variables map to nested keys by replacing dots
// with underscores, e.g. SCAN_MODS_DIR sets scan.mods_dir.
package config
