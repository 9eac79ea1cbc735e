package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/dmitrijs2005/aidocpro/internal/client/artifacts"
	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/filex"
	"github.com/dmitrijs2005/aidocpro/internal/logging"
	"github.com/dmitrijs2005/aidocpro/internal/netx"
)

// TemplateAPI is the part of the document API used by TemplateGallery.
type TemplateAPI interface {
	ListTemplates(ctx context.Context) ([]models.Template, error)
	CreateTemplate(ctx context.Context, in client.TemplateUpload) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

type TemplateListState int

const (
	TemplatesLoading TemplateListState = iota
	TemplatesEmpty
	TemplatesLoaded
	TemplatesError
)

func (s TemplateListState) String() string {
	switch s {
	case TemplatesLoading:
		return "loading"
	case TemplatesEmpty:
		return "empty"
	case TemplatesLoaded:
		return "loaded"
	case TemplatesError:
		return "error"
	}
	return "unknown"
}

// TemplateList is the outcome of a listing. A failed fetch is Error, never
// Empty.
type TemplateList struct {
	State     TemplateListState
	Templates []models.Template
	Err       error
}

type CreateTemplateInput struct {
	Path        string
	Name        string
	Description string
	Category    string
}

// TemplateGallery lists, creates, deletes and downloads templates. The
// owner check on delete is a display guard; the server decides.
type TemplateGallery struct {
	api      TemplateAPI
	sessions SessionSource
	http     *http.Client
	sink     artifacts.Sink
	logger   logging.Logger

	mu      sync.Mutex
	current TemplateList
}

func NewTemplateGallery(api TemplateAPI, sessions SessionSource, httpClient *http.Client, sink artifacts.Sink, logger logging.Logger) *TemplateGallery {
	if logger == nil {
		logger = logging.Discard()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TemplateGallery{
		api:      api,
		sessions: sessions,
		http:     httpClient,
		sink:     sink,
		logger:   logger,
		current:  TemplateList{State: TemplatesLoading},
	}
}

// List fetches the templates visible to the current identity.
func (g *TemplateGallery) List(ctx context.Context) TemplateList {
	g.mu.Lock()
	g.current = TemplateList{State: TemplatesLoading}
	g.mu.Unlock()

	ts, err := g.api.ListTemplates(ctx)

	var l TemplateList
	switch {
	case err != nil:
		g.logger.Warn(ctx, "template list failed", "error", err)
		l = TemplateList{State: TemplatesError, Err: err}
	case len(ts) == 0:
		l = TemplateList{State: TemplatesEmpty}
	default:
		l = TemplateList{State: TemplatesLoaded, Templates: ts}
	}

	g.mu.Lock()
	g.current = l
	g.mu.Unlock()
	return copyList(l)
}

// Current returns the last listing without fetching.
func (g *TemplateGallery) Current() TemplateList {
	g.mu.Lock()
	defer g.mu.Unlock()
	return copyList(g.current)
}

func copyList(l TemplateList) TemplateList {
	l.Templates = append([]models.Template(nil), l.Templates...)
	return l
}

// Watch reloads the list on every identity change until the returned
// function is called.
func (g *TemplateGallery) Watch(ctx context.Context) (stop func()) {
	return g.sessions.Subscribe(func(*models.Session) {
		g.List(ctx)
	})
}

// Create uploads a new template owned by the signed-in user and reloads the
// list.
func (g *TemplateGallery) Create(ctx context.Context, in CreateTemplateInput) (*models.Template, error) {
	if g.sessions.Current() == nil {
		return nil, ErrAuthRequired
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	cat, err := models.ParseTemplateCategory(in.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}

	file, err := models.DescribeFile(in.Path)
	if err != nil {
		return nil, fmt.Errorf("template file: %w", err)
	}

	t, err := g.api.CreateTemplate(ctx, client.TemplateUpload{
		File:        file,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Category:    cat,
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info(ctx, "template created", "id", t.ID, "name", t.Name)
	g.List(ctx)
	return t, nil
}

// CanDelete reports whether the current identity owns t.
func (g *TemplateGallery) CanDelete(t models.Template) bool {
	s := g.sessions.Current()
	return s != nil && t.OwnerUserID != "" && t.OwnerUserID == s.UserID
}

func (g *TemplateGallery) find(ctx context.Context, id string) (models.Template, error) {
	l := g.Current()
	if l.State != TemplatesLoaded {
		l = g.List(ctx)
	}
	if l.State == TemplatesError {
		return models.Template{}, l.Err
	}
	for _, t := range l.Templates {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Template{}, fmt.Errorf("template %s: %w", id, client.ErrNotFound)
}

// Delete removes a template the current user owns and reloads the list.
func (g *TemplateGallery) Delete(ctx context.Context, id string) error {
	if g.sessions.Current() == nil {
		return ErrAuthRequired
	}

	t, err := g.find(ctx, id)
	if err != nil {
		return err
	}
	if !g.CanDelete(t) {
		return ErrNotOwner
	}

	if err := g.api.DeleteTemplate(ctx, id); err != nil {
		return err
	}

	g.logger.Info(ctx, "template deleted", "id", id)
	g.List(ctx)
	return nil
}

// Get downloads the template's file into the sink and returns its location.
func (g *TemplateGallery) Get(ctx context.Context, id string) (string, error) {
	t, err := g.find(ctx, id)
	if err != nil {
		return "", err
	}
	if t.FileURL == "" {
		return "", ErrNoTemplateFile
	}

	data, ctype, name, err := netx.Download(ctx, g.http, t.FileURL)
	if err != nil {
		return "", fmt.Errorf("download template %s: %w", id, err)
	}

	return g.sink.Save(ctx, templateFileName(t, name), ctype, data)
}

// templateFileName prefers the server's filename, then the URL's last path
// segment, then the template name with a .docx extension.
func templateFileName(t models.Template, served string) string {
	if n := filex.SafeName(served); n != "" {
		return n
	}
	if u, err := url.Parse(t.FileURL); err == nil {
		if n := filex.SafeName(path.Base(u.Path)); n != "" && path.Ext(n) != "" {
			return n
		}
	}
	if n := filex.SafeName(t.Name); n != "" {
		if path.Ext(n) == "" {
			n += ".docx"
		}
		return n
	}
	return t.ID + ".docx"
}
