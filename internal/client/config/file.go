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

// FileConfig is a DTO used only for decoding the config file. Absent
// fields leave the corresponding Config field unchanged.
type FileConfig struct {
	ServerURL      string          `json:"server_url" yaml:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SessionDB      string          `json:"session_db" yaml:"session_db"`
	LogLevel       string          `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config or
// $BIOBANK_CONFIG. Files ending in .yaml or .yml are YAML, anything else is
// JSON. It panics on read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if err := decodeFile(path, data, &fc); err != nil {
		panic(err)
	}
	fc.apply(cfg)
}

func decodeFile(path string, data []byte, fc *FileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, fc)
	}
	return json.Unmarshal(data, fc)
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.SessionDB != "" {
		cfg.SessionDB = fc.SessionDB
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
