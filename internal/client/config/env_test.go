package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	parseEnv(&c, mapLookup(map[string]string{
		"DOCPRO_API_URL":            "http://api",
		"VITE_SUPABASE_URL":         "https://id.example",
		"DOCPRO_IDENTITY_KEY":       " key ",
		"VITE_SUPABASE_ANON_KEY":    "ignored",
		"DOCPRO_MAX_FILES":          "7",
		"DOCPRO_ALLOWED_EXTENSIONS": "docx,doc,rtf",
		"DOCPRO_REQUEST_TIMEOUT":    "45s",
		"DOCPRO_DB":                 "",
	}))

	assert.Equal(t, "http://api", c.APIBaseURL)
	assert.Equal(t, "https://id.example", c.IdentityURL)
	assert.Equal(t, "key", c.IdentityKey)
	assert.Equal(t, 7, c.MaxFiles)
	assert.Equal(t, []string{"docx", "doc", "rtf"}, c.AllowedExtensions)
	assert.Equal(t, 45*time.Second, c.RequestTimeout)
	assert.Equal(t, "docpro.db", c.DatabasePath, "blank values are ignored")
}

func TestParseEnv_Panics(t *testing.T) {
	var c Config
	assert.Panics(t, func() { parseEnv(&c, mapLookup(map[string]string{"DOCPRO_MAX_FILES": "many"})) })
	assert.Panics(t, func() { parseEnv(&c, mapLookup(map[string]string{"DOCPRO_REQUEST_TIMEOUT": "soon"})) })
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(p, []byte("DOCPRO_S3_PREFIX=dotenv\nDOCPRO_S3_BUCKET=from-file\n"), 0o600))

	t.Setenv("DOCPRO_S3_PREFIX", "process")
	t.Cleanup(func() { os.Unsetenv("DOCPRO_S3_BUCKET") })

	loadDotEnv(p)

	assert.Equal(t, "process", os.Getenv("DOCPRO_S3_PREFIX"))
	assert.Equal(t, "from-file", os.Getenv("DOCPRO_S3_BUCKET"))

	assert.NotPanics(t, func() { loadDotEnv(filepath.Join(t.TempDir(), "missing.env")) })
}
