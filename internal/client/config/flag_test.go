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
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd", "-a", "http://api:9090", "-t", "10", "-o", "out"},
			expected: &Config{APIBaseURL: "http://api:9090", DownloadDir: "out", RequestTimeout: 10 * time.Second}},
		{name: "Test2 identity", args: []string{"cmd", "-i", "https://id", "-k", "anon", "--l", "debug"},
			expected: &Config{IdentityURL: "https://id", IdentityKey: "anon", LogLevel: "debug"}},
		{name: "Test3 unrelated flags ignored", args: []string{"cmd", "-c", "cfg.json", "-d", "x.db", "-verbose"},
			expected: &Config{DatabasePath: "x.db"}},
		{name: "Test4 incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
