package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/aidocpro/internal/client/artifacts"
	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/config"
	"github.com/dmitrijs2005/aidocpro/internal/client/identity"
	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/logging"
)

type stubAPI struct {
	mu        sync.Mutex
	healthErr error
	quota     models.UsageQuota
	limitN    int

	preview     *models.SpreadsheetPreview
	generated   *models.Artifact
	generateErr error
	prompt      string

	analysis     *models.AnalysisResult
	applied      *models.Artifact
	appliedReps  []models.Replacement
	processed    *models.Artifact
	processFiles []models.UploadedFile

	templates []models.Template
	deleted   string
}

func (s *stubAPI) Health(ctx context.Context) (*models.Health, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.healthErr != nil {
		return nil, s.healthErr
	}
	return &models.Health{Status: "healthy", Timestamp: "2026-10-16T10:00:00"}, nil
}

func (s *stubAPI) setHealthErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthErr = err
}

func (s *stubAPI) CheckLimit(ctx context.Context) (models.UsageQuota, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limitN++
	return s.quota, nil
}

func (s *stubAPI) Preview(ctx context.Context, prompt string) (*models.SpreadsheetPreview, error) {
	if s.preview == nil {
		return nil, errors.New("no preview")
	}
	return s.preview, nil
}

func (s *stubAPI) Generate(ctx context.Context, prompt string) (*models.Artifact, error) {
	s.prompt = prompt
	return s.generated, s.generateErr
}

func (s *stubAPI) Analyze(ctx context.Context, file models.UploadedFile, instruction string) (*models.AnalysisResult, error) {
	return s.analysis, nil
}

func (s *stubAPI) Apply(ctx context.Context, file models.UploadedFile, replacements []models.Replacement) (*models.Artifact, error) {
	s.appliedReps = replacements
	return s.applied, nil
}

func (s *stubAPI) Process(ctx context.Context, files []models.UploadedFile, instruction string) (*models.Artifact, error) {
	s.processFiles = files
	return s.processed, nil
}

func (s *stubAPI) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return s.templates, nil
}

func (s *stubAPI) CreateTemplate(ctx context.Context, in client.TemplateUpload) (*models.Template, error) {
	t := models.Template{ID: "t-new", Name: in.Name, Category: in.Category, OwnerUserID: "u1"}
	s.templates = append(s.templates, t)
	return &t, nil
}

func (s *stubAPI) DeleteTemplate(ctx context.Context, id string) error {
	s.deleted = id
	return nil
}

type stubIdentity struct {
	mu      sync.Mutex
	current *models.Session
	signIn  *models.Session
	subs    []func(*models.Session)
}

func (s *stubIdentity) set(sess *models.Session) {
	s.mu.Lock()
	s.current = sess
	subs := append([]func(*models.Session){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(sess)
	}
}

func (s *stubIdentity) SignIn(ctx context.Context, email string, password []byte) (*models.Session, error) {
	if s.signIn == nil {
		return nil, &identity.ProviderError{StatusCode: 400, Message: "Invalid login credentials"}
	}
	s.set(s.signIn)
	return s.signIn, nil
}

func (s *stubIdentity) SignUp(ctx context.Context, email string, password []byte) (*models.Session, error) {
	return nil, nil
}

func (s *stubIdentity) ResetPassword(ctx context.Context, email string) error { return nil }

func (s *stubIdentity) SignOut(ctx context.Context) error {
	if s.Current() == nil {
		return identity.ErrNoSession
	}
	s.set(nil)
	return nil
}

func (s *stubIdentity) Restore(ctx context.Context) (*models.Session, error) {
	return s.Current(), nil
}

func (s *stubIdentity) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *stubIdentity) Subscribe(fn func(*models.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {}
}

func (s *stubIdentity) Credentials(ctx context.Context) (string, string) {
	if c := s.Current(); c != nil {
		return c.UserID, c.AccessToken
	}
	return "", ""
}

var _ identity.Service = (*stubIdentity)(nil)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type testApp struct {
	*App
	stub  *stubAPI
	ident *stubIdentity
	buf   *bytes.Buffer
	dir   string
}

// newTestApp assembles an App over stubs with stdin taken from input.
func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.DownloadDir = t.TempDir()

	api := &stubAPI{quota: models.UsageQuota{Remaining: 3}}
	ident := &stubIdentity{}
	out := &bytes.Buffer{}

	a := assemble(&cfg, deps{
		api:      api,
		identity: ident,
		store:    &memStore{data: map[string][]byte{}},
		sink:     artifacts.NewLocalSink(cfg.DownloadDir),
		logger:   logging.Discard(),
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      out,
	})
	return &testApp{App: a, stub: api, ident: ident, buf: out, dir: cfg.DownloadDir}
}
