package config

import (
	"flag"
	"os"
	"time"

	"github.com/cbsr/biobank/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":9000")
//	-m string   store backend, memory or postgres
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-t int      session validity, minutes
//	-l string   log level
//	-f string   log format, text or json
//	-o string   OTLP/HTTP trace endpoint
//	-x bool     expose /metrics
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-s", "-t", "-l", "-f", "-o", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.Store, "m", config.Store, "store backend (memory or postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session validity (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (text or json)")
	fs.StringVar(&config.TraceEndpoint, "o", config.TraceEndpoint, "OTLP/HTTP trace endpoint")
	fs.BoolVar(&config.MetricsEnabled, "x", config.MetricsEnabled, "expose prometheus metrics")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
}
