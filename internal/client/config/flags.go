package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/aidocpro/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   document API base URL
//	-i string   identity service URL
//	-k string   identity service public key
//	-d string   local store path
//	-o string   download directory
//	-l string   log level
//	-t int      request timeout in seconds (0 = none)
//
// Only these flags are read from os.Args, so -c/-config and anything else
// is left alone.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"a", "i", "k", "d", "o", "l", "t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "document API base URL")
	fs.StringVar(&cfg.IdentityURL, "i", cfg.IdentityURL, "identity service URL")
	fs.StringVar(&cfg.IdentityKey, "k", cfg.IdentityKey, "identity service public key")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local store path")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout in seconds, 0 for none")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
