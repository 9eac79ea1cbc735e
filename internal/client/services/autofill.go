package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/aidocpro/internal/client/artifacts"
	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/common"
	"github.com/dmitrijs2005/aidocpro/internal/filex"
	"github.com/dmitrijs2005/aidocpro/internal/logging"
)

// AutofillAPI is the part of the document API used by AutofillWorkflow.
type AutofillAPI interface {
	Analyze(ctx context.Context, file models.UploadedFile, instruction string) (*models.AnalysisResult, error)
	Apply(ctx context.Context, file models.UploadedFile, replacements []models.Replacement) (*models.Artifact, error)
	Process(ctx context.Context, files []models.UploadedFile, instruction string) (*models.Artifact, error)
}

type AutofillState int

const (
	AutofillCollecting AutofillState = iota
	AutofillAnalyzing
	AutofillEditing
	AutofillApplying
	AutofillDone
	AutofillFailed
)

func (s AutofillState) String() string {
	switch s {
	case AutofillCollecting:
		return "collecting"
	case AutofillAnalyzing:
		return "analyzing"
	case AutofillEditing:
		return "editing"
	case AutofillApplying:
		return "applying"
	case AutofillDone:
		return "done"
	case AutofillFailed:
		return "failed"
	}
	return "unknown"
}

// AutofillResult describes a saved document or archive. Count is the number
// of changes reported by the server, else the number of filled values for
// Apply or the batch size for Process.
type AutofillResult struct {
	Filename string
	Location string
	Count    int
}

type AutofillSnapshot struct {
	State        AutofillState
	Files        []models.UploadedFile
	Instruction  string
	Analysis     *models.AnalysisResult
	Replacements []models.Replacement
	// NoPlaceholders marks an analysis that found nothing to fill. It is an
	// outcome, not an error.
	NoPlaceholders bool
	Result         *AutofillResult
	Err            error
	Message        string
}

type AutofillOptions struct {
	MaxFiles          int
	AllowedExtensions []string
}

// AutofillWorkflow collects documents and fills their placeholders, either
// detect-then-fill (Analyze, SetValue, Apply) or directly from an
// instruction (Process).
//
// Collecting → [Analyzing → Editing]? → Applying → Done | Failed.
// Failed keeps files, instruction and replacements so the user can retry.
type AutofillWorkflow struct {
	api     AutofillAPI
	quota   *QuotaCoordinator
	sink    artifacts.Sink
	logger  logging.Logger
	max     int
	allowed map[string]struct{}

	mu             sync.Mutex
	epoch          uint64
	state          AutofillState
	files          []models.UploadedFile
	instruction    string
	analysis       *models.AnalysisResult
	replacements   []models.Replacement
	noPlaceholders bool
	result         *AutofillResult
	err            error
}

func NewAutofillWorkflow(api AutofillAPI, quota *QuotaCoordinator, sink artifacts.Sink, opts AutofillOptions, logger logging.Logger) *AutofillWorkflow {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 10
	}
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = []string{".docx", ".doc"}
	}

	allowed := make(map[string]struct{}, len(opts.AllowedExtensions))
	for _, e := range opts.AllowedExtensions {
		allowed[strings.ToLower(e)] = struct{}{}
	}

	return &AutofillWorkflow{api: api, quota: quota, sink: sink, logger: logger, max: opts.MaxFiles, allowed: allowed}
}

func (w *AutofillWorkflow) busy() bool {
	return w.state == AutofillAnalyzing || w.state == AutofillApplying
}

// Allowed reports whether f passes the extension filter.
func (w *AutofillWorkflow) Allowed(f models.UploadedFile) bool {
	_, ok := w.allowed[strings.ToLower(f.Extension)]
	return ok
}

// AddFiles appends the allowed files in order until the batch is full and
// returns how many were taken. Disallowed files are dropped silently and
// files beyond the cap are ignored, so the earliest ones are kept.
func (w *AutofillWorkflow) AddFiles(files ...models.UploadedFile) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy() {
		return 0
	}

	added := 0
	for _, f := range files {
		if len(w.files) >= w.max {
			break
		}
		if !w.Allowed(f) {
			continue
		}
		w.files = append(w.files, f)
		added++
	}

	if added > 0 && w.state == AutofillDone {
		w.state = AutofillCollecting
		w.result = nil
	}
	return added
}

func (w *AutofillWorkflow) RemoveFile(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy() {
		return ErrBusy
	}
	if i < 0 || i >= len(w.files) {
		return fmt.Errorf("remove file %d: %w", i, ErrIndexOutOfRange)
	}
	w.files = append(w.files[:i:i], w.files[i+1:]...)
	return nil
}

func (w *AutofillWorkflow) Files() []models.UploadedFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.UploadedFile(nil), w.files...)
}

func (w *AutofillWorkflow) SetInstruction(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.instruction = s
}

// begin moves to a busy state and returns the epoch the call belongs to.
func (w *AutofillWorkflow) begin(next AutofillState) (uint64, error) {
	if w.busy() {
		return 0, ErrBusy
	}
	if len(w.files) == 0 {
		return 0, ErrNoFiles
	}
	w.state = next
	w.err = nil
	w.result = nil
	return w.epoch, nil
}

// Analyze asks the server for the placeholders of the first file. An empty
// list ends in Editing with NoPlaceholders set and nothing to apply.
func (w *AutofillWorkflow) Analyze(ctx context.Context) (*models.AnalysisResult, error) {
	w.mu.Lock()
	epoch, err := w.begin(AutofillAnalyzing)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	file, instruction := w.files[0], strings.TrimSpace(w.instruction)
	w.mu.Unlock()

	res, err := w.api.Analyze(ctx, file, instruction)
	if err == nil && res == nil {
		err = fmt.Errorf("analyze: %w", client.ErrBadResponse)
	}
	w.afterFreeCall(ctx, err)

	w.mu.Lock()
	defer w.mu.Unlock()
	if epoch != w.epoch {
		return res, err
	}
	if err != nil {
		w.fail(ctx, err)
		return nil, err
	}

	w.analysis = res
	w.replacements = append([]models.Replacement(nil), res.Replacements...)
	w.noPlaceholders = len(w.replacements) == 0
	w.state = AutofillEditing
	w.logger.Info(ctx, "document analyzed", "file", file.Name, "placeholders", len(w.replacements))
	return res, nil
}

// SetValue sets the new value of replacement i.
func (w *AutofillWorkflow) SetValue(i int, v string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy() {
		return ErrBusy
	}
	if w.analysis == nil {
		return ErrNotAnalyzed
	}
	if i < 0 || i >= len(w.replacements) {
		return fmt.Errorf("set value %d: %w", i, ErrIndexOutOfRange)
	}
	w.replacements[i].NewValue = v
	return nil
}

// CanApply is true once at least one replacement has a non-blank value.
func (w *AutofillWorkflow) CanApply() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.busy() && len(w.files) > 0 && filledCount(w.replacements) > 0
}

func filledCount(rs []models.Replacement) int {
	n := 0
	for _, r := range rs {
		if r.Filled() {
			n++
		}
	}
	return n
}

// Apply sends the filled replacements for the first file. Blank values are
// left out so the server does not erase the original text.
func (w *AutofillWorkflow) Apply(ctx context.Context) (*AutofillResult, error) {
	w.mu.Lock()
	if !w.busy() && filledCount(w.replacements) == 0 {
		w.mu.Unlock()
		return nil, ErrNothingToApply
	}
	epoch, err := w.begin(AutofillApplying)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	file := w.files[0]
	filled := make([]models.Replacement, 0, len(w.replacements))
	for _, r := range w.replacements {
		if r.Filled() {
			filled = append(filled, r)
		}
	}
	w.mu.Unlock()

	res, err := w.finish(ctx, epoch, func() (*models.Artifact, error) {
		return w.api.Apply(ctx, file, filled)
	}, filledDocName(file), len(filled))

	w.afterFreeCall(ctx, err)
	return res, err
}

// afterFreeCall handles a 429 from an endpoint that does not consume quota
// the same way as one from Process: the interrupt opens and the allowance is
// re-fetched. Other outcomes leave the quota alone.
func (w *AutofillWorkflow) afterFreeCall(ctx context.Context, err error) {
	if errors.Is(err, client.ErrLimitReached) {
		w.quota.AfterAttempt(ctx, err)
	}
}

// Process sends the whole batch with the instruction. It consumes quota.
func (w *AutofillWorkflow) Process(ctx context.Context) (*AutofillResult, error) {
	w.mu.Lock()
	instruction := strings.TrimSpace(w.instruction)
	if len(w.files) > 0 && !w.busy() && instruction == "" {
		w.mu.Unlock()
		return nil, ErrEmptyInstruction
	}
	prev := w.state
	epoch, err := w.begin(AutofillApplying)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	files := append([]models.UploadedFile(nil), w.files...)
	w.mu.Unlock()

	if err := w.quota.Guard(ctx); err != nil {
		w.mu.Lock()
		if epoch == w.epoch {
			w.state = prev
		}
		w.mu.Unlock()
		return nil, err
	}

	fallback := common.DefaultFilledZipName
	if len(files) == 1 {
		fallback = filledDocName(files[0])
	}

	res, err := w.finish(ctx, epoch, func() (*models.Artifact, error) {
		return w.api.Process(ctx, files, instruction)
	}, fallback, len(files))

	w.quota.AfterAttempt(ctx, err)
	return res, err
}

// finish runs call, saves its artifact and records the outcome unless a
// Reset happened meanwhile.
func (w *AutofillWorkflow) finish(ctx context.Context, epoch uint64, call func() (*models.Artifact, error), fallbackName string, count int) (*AutofillResult, error) {
	art, err := call()
	if err == nil && art == nil {
		err = fmt.Errorf("empty artifact: %w", client.ErrBadResponse)
	}

	var res *AutofillResult
	if err == nil {
		name := filex.SafeName(art.Filename)
		if name == "" {
			name = fallbackName
		}
		if art.HasChanges {
			count = art.ChangesCount
		}

		var loc string
		loc, err = w.sink.Save(ctx, name, art.ContentType, art.Data)
		if err == nil {
			res = &AutofillResult{Filename: name, Location: loc, Count: count}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if epoch != w.epoch {
		return res, err
	}
	if err != nil {
		w.fail(ctx, err)
		return nil, err
	}
	w.state = AutofillDone
	w.result = res
	w.logger.Info(ctx, "document saved", "filename", res.Filename, "location", res.Location, "count", res.Count)
	return res, nil
}

func (w *AutofillWorkflow) fail(ctx context.Context, err error) {
	w.state = AutofillFailed
	w.err = err
	w.logger.Warn(ctx, "autofill failed", "error", err)
}

func filledDocName(f models.UploadedFile) string {
	if name := filex.SafeName(f.Name); name != "" {
		return common.FilledDocPrefix + name
	}
	return common.DefaultFilledDocName
}

// Reset returns to Collecting with everything cleared, from any state. The
// outcome of a call still in flight is discarded.
func (w *AutofillWorkflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.epoch++
	w.state = AutofillCollecting
	w.files = nil
	w.instruction = ""
	w.analysis = nil
	w.replacements = nil
	w.noPlaceholders = false
	w.result = nil
	w.err = nil
}

func (w *AutofillWorkflow) Snapshot() AutofillSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := AutofillSnapshot{
		State:          w.state,
		Files:          append([]models.UploadedFile(nil), w.files...),
		Instruction:    w.instruction,
		Replacements:   append([]models.Replacement(nil), w.replacements...),
		NoPlaceholders: w.noPlaceholders,
		Err:            w.err,
		Message:        UserMessage(w.err),
	}
	if w.noPlaceholders && w.state == AutofillEditing {
		s.Message = common.MsgNoPlaceholders
	}
	if w.analysis != nil {
		a := *w.analysis
		a.Replacements = append([]models.Replacement(nil), w.analysis.Replacements...)
		s.Analysis = &a
	}
	if w.result != nil {
		r := *w.result
		s.Result = &r
	}
	return s
}
