package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var lookupEnv = os.LookupEnv

// loadDotEnv loads path (".env" when empty) into the process environment.
// Variables already set win, and a missing file is fine.
func loadDotEnv(path string) {
	if path == "" {
		_ = godotenv.Load()
		return
	}
	_ = godotenv.Load(path)
}

// parseEnv overlays cfg with DOCPRO_* variables. The web client's VITE_*
// names are accepted as fallbacks so an existing .env keeps working.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	strs := []struct {
		dst  *string
		keys []string
	}{
		{&cfg.APIBaseURL, []string{"DOCPRO_API_URL", "VITE_API_URL"}},
		{&cfg.IdentityURL, []string{"DOCPRO_IDENTITY_URL", "VITE_SUPABASE_URL"}},
		{&cfg.IdentityKey, []string{"DOCPRO_IDENTITY_KEY", "VITE_SUPABASE_ANON_KEY"}},
		{&cfg.DatabasePath, []string{"DOCPRO_DB"}},
		{&cfg.DownloadDir, []string{"DOCPRO_DOWNLOAD_DIR"}},
		{&cfg.RegistrationMode, []string{"DOCPRO_REGISTRATION_MODE"}},
		{&cfg.LogLevel, []string{"DOCPRO_LOG_LEVEL"}},
		{&cfg.LogFormat, []string{"DOCPRO_LOG_FORMAT"}},
		{&cfg.ArtifactSink, []string{"DOCPRO_ARTIFACT_SINK"}},
		{&cfg.S3Bucket, []string{"DOCPRO_S3_BUCKET"}},
		{&cfg.S3Region, []string{"DOCPRO_S3_REGION"}},
		{&cfg.S3BaseEndpoint, []string{"DOCPRO_S3_ENDPOINT"}},
		{&cfg.S3AccessKey, []string{"DOCPRO_S3_ACCESS_KEY"}},
		{&cfg.S3SecretKey, []string{"DOCPRO_S3_SECRET_KEY"}},
		{&cfg.S3Prefix, []string{"DOCPRO_S3_PREFIX"}},
	}
	for _, s := range strs {
		if v, ok := get(s.keys...); ok {
			*s.dst = v
		}
	}

	if v, ok := get("DOCPRO_MAX_FILES"); ok {
		cfg.MaxFiles = mustAtoi("DOCPRO_MAX_FILES", v)
	}
	if v, ok := get("DOCPRO_ALLOWED_EXTENSIONS"); ok {
		cfg.AllowedExtensions = strings.Split(v, ",")
	}
	if v, ok := get("DOCPRO_REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
}

func mustAtoi(name, v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(name + ": " + err.Error())
	}
	return n
}
