package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/aidocpro/internal/client/artifacts"
	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/common"
	"github.com/dmitrijs2005/aidocpro/internal/filex"
	"github.com/dmitrijs2005/aidocpro/internal/logging"
	"golang.org/x/sync/errgroup"
)

const spreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GenerationAPI is the part of the document API used by GenerationWorkflow.
type GenerationAPI interface {
	Preview(ctx context.Context, prompt string) (*models.SpreadsheetPreview, error)
	Generate(ctx context.Context, prompt string) (*models.Artifact, error)
}

type GenerationState int

const (
	GenerationIdle GenerationState = iota
	GenerationGenerating
	GenerationSuccess
	GenerationFailed
)

func (s GenerationState) String() string {
	switch s {
	case GenerationIdle:
		return "idle"
	case GenerationGenerating:
		return "generating"
	case GenerationSuccess:
		return "success"
	case GenerationFailed:
		return "failed"
	}
	return "unknown"
}

// GenerationResult describes a saved spreadsheet.
type GenerationResult struct {
	Filename string
	Location string
	Size     int
	// Preview is nil when the preview call failed.
	Preview *models.SpreadsheetPreview
}

type GenerationSnapshot struct {
	State   GenerationState
	Prompt  string
	Result  *GenerationResult
	Err     error
	Message string
}

// GenerationWorkflow turns a prompt into a saved spreadsheet.
// Idle → Generating → Success | Failed, back to Idle on the next Edit.
type GenerationWorkflow struct {
	api    GenerationAPI
	quota  *QuotaCoordinator
	sink   artifacts.Sink
	logger logging.Logger

	mu     sync.Mutex
	state  GenerationState
	prompt string
	result *GenerationResult
	err    error
}

func NewGenerationWorkflow(api GenerationAPI, quota *QuotaCoordinator, sink artifacts.Sink, logger logging.Logger) *GenerationWorkflow {
	if logger == nil {
		logger = logging.Discard()
	}
	return &GenerationWorkflow{api: api, quota: quota, sink: sink, logger: logger}
}

// CanGenerate is false for blank prompts and while a generation is running.
func (w *GenerationWorkflow) CanGenerate(prompt string) bool {
	if strings.TrimSpace(prompt) == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state != GenerationGenerating
}

// Generate runs the best-effort preview and the authoritative generation
// concurrently and saves the spreadsheet through the sink. Identical prompts
// are not deduplicated.
func (w *GenerationWorkflow) Generate(ctx context.Context, prompt string) (*GenerationResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	w.mu.Lock()
	if w.state == GenerationGenerating {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	prev := w.state
	w.state = GenerationGenerating
	w.mu.Unlock()

	// The limit interrupt may render state, so it runs unlocked.
	if err := w.quota.Guard(ctx); err != nil {
		w.mu.Lock()
		w.state = prev
		w.mu.Unlock()
		return nil, err
	}

	w.mu.Lock()
	w.prompt = prompt
	w.result = nil
	w.err = nil
	w.mu.Unlock()

	res, err := w.run(ctx, prompt)

	w.quota.AfterAttempt(ctx, err)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = GenerationFailed
		w.err = err
		w.logger.Warn(ctx, "generation failed", "error", err)
		return nil, err
	}
	w.state = GenerationSuccess
	w.result = res
	w.logger.Info(ctx, "spreadsheet saved", "filename", res.Filename, "location", res.Location)
	return res, nil
}

func (w *GenerationWorkflow) run(ctx context.Context, prompt string) (*GenerationResult, error) {
	var (
		preview  *models.SpreadsheetPreview
		artifact *models.Artifact
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := w.api.Preview(gctx, prompt)
		if err != nil {
			w.logger.Debug(gctx, "preview unavailable", "error", err)
			return nil
		}
		preview = p
		return nil
	})
	g.Go(func() error {
		a, err := w.api.Generate(gctx, prompt)
		if err != nil {
			return err
		}
		artifact = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, fmt.Errorf("generate: %w", client.ErrBadResponse)
	}

	name := spreadsheetName(preview, artifact.Filename)
	ctype := artifact.ContentType
	if ctype == "" {
		ctype = spreadsheetContentType
	}

	loc, err := w.sink.Save(ctx, name, ctype, artifact.Data)
	if err != nil {
		return nil, err
	}

	return &GenerationResult{Filename: name, Location: loc, Size: len(artifact.Data), Preview: preview}, nil
}

// spreadsheetName picks the preview title, then the server filename, then
// the fixed default.
func spreadsheetName(preview *models.SpreadsheetPreview, serverName string) string {
	if preview != nil {
		if title := filex.SafeName(strings.TrimSpace(preview.Title)); title != "" {
			if !strings.HasSuffix(strings.ToLower(title), ".xlsx") {
				title += ".xlsx"
			}
			return title
		}
	}
	if name := filex.SafeName(serverName); name != "" {
		return name
	}
	return common.DefaultSpreadsheetName
}

// Edit returns a finished workflow to Idle. It is a no-op while generating.
func (w *GenerationWorkflow) Edit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == GenerationGenerating {
		return
	}
	w.state = GenerationIdle
	w.result = nil
	w.err = nil
}

func (w *GenerationWorkflow) Snapshot() GenerationSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := GenerationSnapshot{State: w.state, Prompt: w.prompt, Err: w.err, Message: UserMessage(w.err)}
	if w.result != nil {
		r := *w.result
		s.Result = &r
	}
	return s
}
