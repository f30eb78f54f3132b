package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("BIOBANK_CONFIG", "")

	t.Run("json", func(t *testing.T) {
		os.Args = []string{"bbcli", "-config", writeTemp(t, "cfg.json",
			`{"server_url":"http://json:1","request_timeout":"3s"}`)}

		cfg := &Config{LogLevel: "warn"}
		parseFile(cfg)

		assert.Equal(t, "http://json:1", cfg.ServerURL)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "warn", cfg.LogLevel, "absent fields keep their value")
	})

	t.Run("yaml", func(t *testing.T) {
		os.Args = []string{"bbcli", "-c", writeTemp(t, "cfg.yaml",
			"server_url: http://yaml:2\nsession_db: /tmp/x.db\nlog_level: debug\n")}

		cfg := &Config{RequestTimeout: time.Second}
		parseFile(cfg)

		assert.Equal(t, "http://yaml:2", cfg.ServerURL)
		assert.Equal(t, "/tmp/x.db", cfg.SessionDB)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, time.Second, cfg.RequestTimeout)
	})

	t.Run("environment", func(t *testing.T) {
		os.Args = []string{"bbcli"}
		t.Setenv("BIOBANK_CONFIG", writeTemp(t, "env.yml", "server_url: http://env:3\n"))

		cfg := &Config{}
		parseFile(cfg)
		assert.Equal(t, "http://env:3", cfg.ServerURL)
	})

	t.Run("no file leaves config alone", func(t *testing.T) {
		os.Args = []string{"bbcli"}

		cfg := &Config{ServerURL: "http://defaults:1"}
		parseFile(cfg)
		assert.Equal(t, "http://defaults:1", cfg.ServerURL)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"bbcli", "-c", filepath.Join(t.TempDir(), "absent.json")}
		assert.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("bad json panics", func(t *testing.T) {
		os.Args = []string{"bbcli", "-c", writeTemp(t, "bad.json", "{")}
		assert.Panics(t, func() { parseFile(&Config{}) })
	})
}
