package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cbsr/biobank/internal/flagx"
	"github.com/cbsr/biobank/internal/timex"
)

// FileConfig is a DTO used only for decoding the config file. Durations
// accept both strings such as "30m" and integer nanoseconds. Absent fields
// leave the corresponding Config field unchanged.
type FileConfig struct {
	ListenAddr     string          `json:"listen_addr" yaml:"listen_addr"`
	Store          string          `json:"store" yaml:"store"`
	DatabaseDSN    string          `json:"database_dsn" yaml:"database_dsn"`
	SecretKey      string          `json:"secret_key" yaml:"secret_key"`
	SessionTTL     *timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	LogLevel       string          `json:"log_level" yaml:"log_level"`
	LogFormat      string          `json:"log_format" yaml:"log_format"`
	TraceEndpoint  string          `json:"trace_endpoint" yaml:"trace_endpoint"`
	MetricsEnabled *bool           `json:"metrics_enabled" yaml:"metrics_enabled"`
	CORSOrigins    []string        `json:"cors_origins" yaml:"cors_origins"`
	AdminEmail     string          `json:"admin_email" yaml:"admin_email"`
	AdminPassword  string          `json:"admin_password" yaml:"admin_password"`
}

// parseFile overlays config with the file named by -c/-config or
// $BIOBANK_CONFIG. It panics on read or decode errors.
func parseFile(config *Config) {
	path := flagx.ConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}
	fc.apply(config)
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.ListenAddr, fc.ListenAddr)
	setString(&config.Store, fc.Store)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.SecretKey, fc.SecretKey)
	if fc.SessionTTL != nil {
		config.SessionTTL = fc.SessionTTL.Duration
	}
	setString(&config.LogLevel, fc.LogLevel)
	setString(&config.LogFormat, fc.LogFormat)
	setString(&config.TraceEndpoint, fc.TraceEndpoint)
	if fc.MetricsEnabled != nil {
		config.MetricsEnabled = *fc.MetricsEnabled
	}
	if fc.CORSOrigins != nil {
		config.CORSOrigins = fc.CORSOrigins
	}
	setString(&config.AdminEmail, fc.AdminEmail)
	setString(&config.AdminPassword, fc.AdminPassword)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
