package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:9000", c.ServerURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.True(t, strings.HasSuffix(c.SessionDB, "biobank-session.db"))
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"bbcli"}
	t.Setenv("BIOBANK_CONFIG", "")

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:9000", cfg.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
