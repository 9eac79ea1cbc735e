package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/aidocpro/internal/client/artifacts"
	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/config"
	"github.com/dmitrijs2005/aidocpro/internal/client/identity"
	"github.com/dmitrijs2005/aidocpro/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aidocpro/internal/client/services"
	"github.com/dmitrijs2005/aidocpro/internal/common"
	"github.com/dmitrijs2005/aidocpro/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the workflows to the terminal.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	api        client.Client
	identity   identity.Service
	quota      *services.QuotaCoordinator
	generation *services.GenerationWorkflow
	autofill   *services.AutofillWorkflow
	gallery    *services.TemplateGallery
	auth       *services.AuthFlow
	shortcuts  *services.ShortcutStore

	reader *bufio.Reader
	out    io.Writer

	stopWatch func()

	mu   sync.Mutex
	mode Mode

	// limitShown is set when the limit interrupt rendered the limit text
	// during the current command.
	limitShown atomic.Bool
}

// deps are the outside-world pieces an App is assembled from.
type deps struct {
	api      client.Client
	identity identity.Service
	store    metadata.Repository
	sink     artifacts.Sink
	http     *http.Client
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the local store and builds the API, identity and artifact
// clients from c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	httpClient := &http.Client{Timeout: c.RequestTimeout}
	store := metadata.NewSQLiteRepository(db)

	if c.IdentityURL == "" {
		logger.Warn(ctx, "identity url is not configured, sign-in will fail")
	}
	ident := identity.NewGoTrueClient(c.IdentityURL, c.IdentityKey, httpClient, store, logger.With("component", "identity"))

	api, err := client.NewHTTPClient(c.APIBaseURL, httpClient, ident, logger.With("component", "api"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sink, err := newSink(c, httpClient)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := assemble(c, deps{
		api:      api,
		identity: ident,
		store:    store,
		sink:     sink,
		http:     httpClient,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	})
	a.db = db
	return a, nil
}

func newSink(c *config.Config, httpClient *http.Client) (artifacts.Sink, error) {
	switch c.ArtifactSink {
	case config.SinkS3:
		return artifacts.NewS3Sink(artifacts.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Prefix:       c.S3Prefix,
		}, httpClient), nil
	case config.SinkLocal, "":
		return artifacts.NewLocalSink(c.DownloadDir), nil
	}
	return nil, fmt.Errorf("unknown artifact sink %q", c.ArtifactSink)
}

func assemble(c *config.Config, d deps) *App {
	quota := services.NewQuotaCoordinator(d.api, d.identity, c.AnonymousAllowance, d.logger.With("component", "quota"))

	a := &App{
		config:   c,
		logger:   d.logger,
		api:      d.api,
		identity: d.identity,
		quota:    quota,
		generation: services.NewGenerationWorkflow(d.api, quota, d.sink,
			d.logger.With("component", "generation")),
		autofill: services.NewAutofillWorkflow(d.api, quota, d.sink, services.AutofillOptions{
			MaxFiles:          c.MaxFiles,
			AllowedExtensions: c.AllowedExtensions,
		}, d.logger.With("component", "autofill")),
		gallery:   services.NewTemplateGallery(d.api, d.identity, d.http, d.sink, d.logger.With("component", "templates")),
		auth:      services.NewAuthFlow(d.identity, c.RegistrationMode == config.RegistrationConfirm),
		shortcuts: services.NewShortcutStore(d.store),
		reader:    d.reader,
		out:       d.out,
	}

	quota.OnLimitReached(a.limitInterrupt)
	return a
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// limitInterrupt is the CLI's auth/upgrade prompt: it explains the limit and
// points anonymous users at sign-in.
func (a *App) limitInterrupt() {
	a.limitShown.Store(true)
	a.println(common.MsgLimitReached)
	if !a.isLoggedIn() {
		a.println("Kirish: login | Ro'yxatdan o'tish: register")
	}
}

// takeLimitNotice reports whether the limit interrupt already spoke since
// the last call, and clears the mark.
func (a *App) takeLimitNotice() bool {
	return a.limitShown.Swap(false)
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "switched mode", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.identity.Current() != nil
}

// probe checks the API health endpoint and updates the mode.
func (a *App) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := a.api.Health(ctx)
	if err != nil {
		a.setMode(ctx, ModeOffline)
		return err
	}
	a.setMode(ctx, ModeOnline)
	return nil
}

// StartOnlineStatusWatcher probes the API every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Start resolves the persisted session, loads the initial quota and the
// template list, and probes the API once.
func (a *App) Start(ctx context.Context) {
	if _, err := a.identity.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
	}
	a.quota.Start(ctx)
	a.stopWatch = a.gallery.Watch(ctx)
	a.gallery.List(ctx)

	if err := a.probe(ctx); err != nil {
		a.logger.Warn(ctx, "api is unreachable", "error", err)
	}
}

// Run starts the app and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	a.println("AI Doc Pro CLI (buyruqlar uchun 'help' yozing)")
	a.Start(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the local store.
func (a *App) Close() error {
	a.quota.Stop()
	if a.stopWatch != nil {
		a.stopWatch()
	}
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) getStatus() string {
	s := ""
	if sess := a.identity.Current(); sess != nil {
		s = sess.Email + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m) + " "
	}
	q := a.quota.Quota()
	s += common.QuotaLine(q.Remaining, q.IsPremium)
	return fmt.Sprintf("(%s)", s)
}
