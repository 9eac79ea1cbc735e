package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/models"
)

// ---- fake document API ----

type fakeAPI struct {
	mu sync.Mutex

	limits   []models.UsageQuota
	limitErr error
	limitN   int

	previewRet *models.SpreadsheetPreview
	previewErr error
	previewN   int

	generateRet *models.Artifact
	generateErr error
	generateN   int

	analyzeRet  *models.AnalysisResult
	analyzeErr  error
	analyzeFile models.UploadedFile

	applyRet  *models.Artifact
	applyErr  error
	applyReps []models.Replacement

	processRet   *models.Artifact
	processErr   error
	processN     int
	processFiles []models.UploadedFile

	// block, when set, is received from before Generate/Process/Analyze return.
	block chan struct{}

	templates []models.Template
	listErr   error
	listN     int
	created   *client.TemplateUpload
	createErr error
	deletedID string
	deleteErr error
}

func (f *fakeAPI) Health(ctx context.Context) (*models.Health, error) {
	return &models.Health{Status: "healthy"}, nil
}

func (f *fakeAPI) CheckLimit(ctx context.Context) (models.UsageQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limitN++
	if f.limitErr != nil {
		return models.UsageQuota{}, f.limitErr
	}
	if len(f.limits) == 0 {
		return models.UsageQuota{Remaining: 5}, nil
	}
	q := f.limits[0]
	if len(f.limits) > 1 {
		f.limits = f.limits[1:]
	}
	return q, nil
}

func (f *fakeAPI) limitCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limitN
}

func (f *fakeAPI) wait() {
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAPI) Preview(ctx context.Context, prompt string) (*models.SpreadsheetPreview, error) {
	f.mu.Lock()
	f.previewN++
	f.mu.Unlock()
	return f.previewRet, f.previewErr
}

func (f *fakeAPI) Generate(ctx context.Context, prompt string) (*models.Artifact, error) {
	f.mu.Lock()
	f.generateN++
	f.mu.Unlock()
	f.wait()
	return f.generateRet, f.generateErr
}

func (f *fakeAPI) Analyze(ctx context.Context, file models.UploadedFile, instruction string) (*models.AnalysisResult, error) {
	f.analyzeFile = file
	f.wait()
	return f.analyzeRet, f.analyzeErr
}

func (f *fakeAPI) Apply(ctx context.Context, file models.UploadedFile, replacements []models.Replacement) (*models.Artifact, error) {
	f.applyReps = replacements
	return f.applyRet, f.applyErr
}

func (f *fakeAPI) Process(ctx context.Context, files []models.UploadedFile, instruction string) (*models.Artifact, error) {
	f.mu.Lock()
	f.processN++
	f.processFiles = files
	f.mu.Unlock()
	f.wait()
	return f.processRet, f.processErr
}

func (f *fakeAPI) ListTemplates(ctx context.Context) ([]models.Template, error) {
	f.listN++
	return f.templates, f.listErr
}

func (f *fakeAPI) CreateTemplate(ctx context.Context, in client.TemplateUpload) (*models.Template, error) {
	f.created = &in
	if f.createErr != nil {
		return nil, f.createErr
	}
	t := models.Template{ID: "new", Name: in.Name, Category: in.Category, OwnerUserID: "u1"}
	f.templates = append(f.templates, t)
	return &t, nil
}

func (f *fakeAPI) DeleteTemplate(ctx context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

var _ client.Client = (*fakeAPI)(nil)

// ---- fake session source ----

type fakeSessions struct {
	mu      sync.Mutex
	current *models.Session
	subs    map[int]func(*models.Session)
	next    int
}

func newFakeSessions(s *models.Session) *fakeSessions {
	return &fakeSessions{current: s, subs: map[int]func(*models.Session){}}
}

func (f *fakeSessions) Current() *models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSessions) Subscribe(fn func(*models.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *fakeSessions) emit(s *models.Session) {
	f.mu.Lock()
	f.current = s
	fns := make([]func(*models.Session), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// ---- in-memory sink ----

type savedArtifact struct {
	Name        string
	ContentType string
	Data        []byte
}

type memSink struct {
	saved []savedArtifact
	err   error
}

func (m *memSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, savedArtifact{Name: name, ContentType: contentType, Data: data})
	return "/downloads/" + name, nil
}

// ---- in-memory metadata repo ----

type memRepo struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemRepo() *memRepo { return &memRepo{data: map[string][]byte{}} }

func (m *memRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (m *memRepo) Set(ctx context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memRepo) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}
