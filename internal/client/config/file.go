package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/aidocpro/internal/flagx"
	"github.com/dmitrijs2005/aidocpro/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the DTO for JSON and YAML config files. Zero values leave
// the corresponding Config field untouched.
type FileConfig struct {
	APIBaseURL          string         `json:"api_url" yaml:"api_url"`
	IdentityURL         string         `json:"identity_url" yaml:"identity_url"`
	IdentityKey         string         `json:"identity_key" yaml:"identity_key"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	DownloadDir         string         `json:"download_dir" yaml:"download_dir"`
	MaxFiles            int            `json:"max_files" yaml:"max_files"`
	AllowedExtensions   []string       `json:"allowed_extensions" yaml:"allowed_extensions"`
	PreviewMaxColumns   int            `json:"preview_max_columns" yaml:"preview_max_columns"`
	PreviewMaxRows      int            `json:"preview_max_rows" yaml:"preview_max_rows"`
	AnonymousAllowance  *int           `json:"anonymous_allowance" yaml:"anonymous_allowance"`
	RegistrationMode    string         `json:"registration_mode" yaml:"registration_mode"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
	LogFormat           string         `json:"log_format" yaml:"log_format"`
	ArtifactSink        string         `json:"artifact_sink" yaml:"artifact_sink"`
	S3                  struct {
		Bucket       string `json:"bucket" yaml:"bucket"`
		Region       string `json:"region" yaml:"region"`
		BaseEndpoint string `json:"base_endpoint" yaml:"base_endpoint"`
		AccessKey    string `json:"access_key" yaml:"access_key"`
		SecretKey    string `json:"secret_key" yaml:"secret_key"`
		Prefix       string `json:"prefix" yaml:"prefix"`
	} `json:"s3" yaml:"s3"`
}

// parseFile overlays cfg with the file named by -c/-config, if any. The
// format follows the extension: .yaml/.yml for YAML, anything else JSON.
// Read or decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	fc, err := readFileConfig(path)
	if err != nil {
		panic(err)
	}
	fc.apply(cfg)
}

func readFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &fc, nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.IdentityURL, fc.IdentityURL)
	setString(&cfg.IdentityKey, fc.IdentityKey)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.DownloadDir, fc.DownloadDir)
	setString(&cfg.RegistrationMode, fc.RegistrationMode)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.ArtifactSink, fc.ArtifactSink)
	setString(&cfg.S3Bucket, fc.S3.Bucket)
	setString(&cfg.S3Region, fc.S3.Region)
	setString(&cfg.S3BaseEndpoint, fc.S3.BaseEndpoint)
	setString(&cfg.S3AccessKey, fc.S3.AccessKey)
	setString(&cfg.S3SecretKey, fc.S3.SecretKey)
	setString(&cfg.S3Prefix, fc.S3.Prefix)

	if fc.MaxFiles != 0 {
		cfg.MaxFiles = fc.MaxFiles
	}
	if fc.PreviewMaxColumns != 0 {
		cfg.PreviewMaxColumns = fc.PreviewMaxColumns
	}
	if fc.PreviewMaxRows != 0 {
		cfg.PreviewMaxRows = fc.PreviewMaxRows
	}
	if fc.AnonymousAllowance != nil {
		cfg.AnonymousAllowance = *fc.AnonymousAllowance
	}
	if fc.AllowedExtensions != nil {
		cfg.AllowedExtensions = fc.AllowedExtensions
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
