package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "http://bb:9090", "-r", "30", "-s", "/tmp/s.db", "-l", "debug"},
			expected: &Config{
				ServerURL:      "http://bb:9090",
				RequestTimeout: 30 * time.Second,
				SessionDB:      "/tmp/s.db",
				LogLevel:       "debug",
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"cmd", "-z", "1", "-a", "http://bb:1"},
			expected: &Config{ServerURL: "http://bb:1"},
		},
		{name: "bad timeout", args: []string{"cmd", "-r", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
