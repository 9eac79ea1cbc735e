package client

import (
	"context"

	"github.com/dmitrijs2005/aidocpro/internal/client/models"
)

// Client is the document API surface used by the services.
type Client interface {
	Health(ctx context.Context) (*models.Health, error)
	CheckLimit(ctx context.Context) (models.UsageQuota, error)

	Preview(ctx context.Context, prompt string) (*models.SpreadsheetPreview, error)
	Generate(ctx context.Context, prompt string) (*models.Artifact, error)

	Analyze(ctx context.Context, file models.UploadedFile, instruction string) (*models.AnalysisResult, error)
	Apply(ctx context.Context, file models.UploadedFile, replacements []models.Replacement) (*models.Artifact, error)
	Process(ctx context.Context, files []models.UploadedFile, instruction string) (*models.Artifact, error)

	ListTemplates(ctx context.Context) ([]models.Template, error)
	CreateTemplate(ctx context.Context, in TemplateUpload) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// Credentials supplies the identity attached to each request. Both values
// are empty for anonymous callers.
type Credentials interface {
	Credentials(ctx context.Context) (userID, accessToken string)
}

// TemplateUpload is the multipart body of POST /api/templates.
type TemplateUpload struct {
	File        models.UploadedFile
	Name        string
	Description string
	Category    models.TemplateCategory
}
