package config

import (
	"fmt"
	"strings"
	"time"
)

// Registration modes: how the auth flow treats a successful sign-up.
const (
	// RegistrationAuto signs the user in when the provider returned a
	// session and shows the confirmation notice otherwise.
	RegistrationAuto = "auto"
	// RegistrationConfirm always shows the confirmation notice.
	RegistrationConfirm = "confirm"
)

// Artifact sinks.
const (
	SinkLocal = "local"
	SinkS3    = "s3"
)

// Config holds runtime settings for the AI Doc Pro CLI.
type Config struct {
	APIBaseURL  string
	IdentityURL string
	IdentityKey string

	DatabasePath string
	DownloadDir  string

	MaxFiles           int
	AllowedExtensions  []string
	PreviewMaxColumns  int
	PreviewMaxRows     int
	AnonymousAllowance int
	RegistrationMode   string

	// RequestTimeout bounds each API call; zero means no client-side limit.
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration

	LogLevel  string
	LogFormat string

	ArtifactSink   string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	S3Prefix       string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.IdentityURL = ""
	c.IdentityKey = ""
	c.DatabasePath = "docpro.db"
	c.DownloadDir = "downloads"
	c.MaxFiles = 10
	c.AllowedExtensions = []string{".docx", ".doc"}
	c.PreviewMaxColumns = 6
	c.PreviewMaxRows = 4
	c.AnonymousAllowance = 5
	c.RegistrationMode = RegistrationAuto
	c.RequestTimeout = 0
	c.OnlineCheckInterval = 30 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
	c.ArtifactSink = SinkLocal
	c.S3Region = "us-east-1"
	c.S3Prefix = "docpro"
}

// Validate rejects combinations the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api url is empty")
	}
	if c.MaxFiles <= 0 {
		return fmt.Errorf("max files must be positive, got %d", c.MaxFiles)
	}
	if c.PreviewMaxColumns <= 0 || c.PreviewMaxRows <= 0 {
		return fmt.Errorf("preview caps must be positive, got %dx%d", c.PreviewMaxColumns, c.PreviewMaxRows)
	}
	if c.AnonymousAllowance < 0 {
		return fmt.Errorf("anonymous allowance must not be negative")
	}
	switch c.RegistrationMode {
	case RegistrationAuto, RegistrationConfirm:
	default:
		return fmt.Errorf("unknown registration mode %q", c.RegistrationMode)
	}
	switch c.ArtifactSink {
	case SinkLocal:
	case SinkS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 sink requires a bucket")
		}
	default:
		return fmt.Errorf("unknown artifact sink %q", c.ArtifactSink)
	}
	return nil
}

// NormalizeExtensions lower-cases extensions and adds the leading dot.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

// LoadConfig builds a Config from defaults, then the optional config file,
// then the environment (.env included), then command-line flags. Later
// sources win. Invalid input panics, as with a malformed flag.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	loadDotEnv("")
	parseEnv(cfg, lookupEnv)
	parseFlags(cfg)
	cfg.AllowedExtensions = NormalizeExtensions(cfg.AllowedExtensions)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
