// Package config loads runtime configuration for the biobank CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (see parseFile) selected via -c or -config,
//     or $BIOBANK_CONFIG.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the biobank server
//	-r int      request timeout (seconds)
//	-s string   path of the local session database
//	-l string   log level (debug, info, warn, error)
//
// # File format
//
// Durations use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	server_url: http://127.0.0.1:9000
//	request_timeout: 10s
//	session_db: /home/ann/.biobank.db
//	log_level: warn
package config
