package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/common"
	"github.com/dmitrijs2005/aidocpro/internal/logging"
	"github.com/dmitrijs2005/aidocpro/internal/netx"
	"github.com/google/uuid"
)

// HTTPClient implements Client over the JSON/multipart HTTP API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	creds   Credentials
	logger  logging.Logger
}

// NewHTTPClient validates baseURL and builds a client. creds may be nil for
// a purely anonymous client.
func NewHTTPClient(baseURL string, httpClient *http.Client, creds Credentials, logger logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: api url %q", ErrInvalidConfig, baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPClient{baseURL: u, http: httpClient, creds: creds, logger: logger}, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *HTTPClient) credentials(ctx context.Context) (string, string) {
	if c.creds == nil {
		return "", ""
	}
	return c.creds.Credentials(ctx)
}

// do sends req with identity and tracing headers and maps failures to the
// package sentinels. On success the caller owns resp.Body.
func (c *HTTPClient) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)

	userID, token := c.credentials(ctx)
	if userID != "" {
		req.Header.Set(common.UserIDHeaderName, userID)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Debug(ctx, "api call failed", "method", req.Method, "path", req.URL.Path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "api call", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
	}
	return resp, nil
}

// parseDetail reads FastAPI style {"detail": "..."} bodies. Validation
// errors arrive as a list of {"msg": "..."} objects and are joined.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func (c *HTTPClient) newJSONRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// multipartBody collects form fields and file parts in order.
type multipartBody struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

func newMultipartBody() *multipartBody {
	m := &multipartBody{}
	m.w = multipart.NewWriter(&m.buf)
	return m
}

func (m *multipartBody) field(name, value string) error {
	return m.w.WriteField(name, value)
}

func (m *multipartBody) file(field string, f models.UploadedFile) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	part, err := m.w.CreateFormFile(field, f.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	return nil
}

func (c *HTTPClient) newMultipartRequest(ctx context.Context, path string, m *multipartBody) (*http.Request, error) {
	if err := m.w.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), &m.buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", m.w.FormDataContentType())
	return req, nil
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

func readArtifact(resp *http.Response) (*models.Artifact, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	a := &models.Artifact{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	a.Filename, _ = netx.FilenameFromContentDisposition(resp.Header.Get(common.ContentDisposition))

	if v := strings.TrimSpace(resp.Header.Get(common.ChangesCountHeaderName)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			a.ChangesCount, a.HasChanges = n, true
		}
	}
	return a, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*models.Health, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/api/health", nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var h models.Health
	if err := decodeJSON(resp, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// CheckLimit asks for the caller's remaining allowance. The user id goes in
// the query as well as the header because older deployments read only one.
func (c *HTTPClient) CheckLimit(ctx context.Context) (models.UsageQuota, error) {
	var q url.Values
	if userID, _ := c.credentials(ctx); userID != "" {
		q = url.Values{"user_id": {userID}}
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/check-limit", q, nil)
	if err != nil {
		return models.UsageQuota{}, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return models.UsageQuota{}, err
	}

	var quota models.UsageQuota
	if err := decodeJSON(resp, &quota); err != nil {
		return models.UsageQuota{}, err
	}
	if quota.Remaining < 0 {
		quota.Remaining = 0
	}
	return quota, nil
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// Preview accepts both the bare structure and the {"structure": ...}
// envelope.
func (c *HTTPClient) Preview(ctx context.Context, prompt string) (*models.SpreadsheetPreview, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/excel/preview", nil, promptRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var body struct {
		models.SpreadsheetPreview
		Structure *models.SpreadsheetPreview `json:"structure"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	if body.Structure != nil {
		return body.Structure, nil
	}
	return &body.SpreadsheetPreview, nil
}

func (c *HTTPClient) Generate(ctx context.Context, prompt string) (*models.Artifact, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/excel/generate", nil, promptRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return readArtifact(resp)
}

func (c *HTTPClient) Analyze(ctx context.Context, file models.UploadedFile, instruction string) (*models.AnalysisResult, error) {
	m := newMultipartBody()
	if err := m.file("file", file); err != nil {
		return nil, err
	}
	if strings.TrimSpace(instruction) != "" {
		if err := m.field("instruction", instruction); err != nil {
			return nil, err
		}
	}

	req, err := c.newMultipartRequest(ctx, "/api/autofill/analyze", m)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var res models.AnalysisResult
	if err := decodeJSON(resp, &res); err != nil {
		return nil, err
	}
	if res.Replacements == nil {
		res.Replacements = []models.Replacement{}
	}
	return &res, nil
}

func (c *HTTPClient) Apply(ctx context.Context, file models.UploadedFile, replacements []models.Replacement) (*models.Artifact, error) {
	payload, err := json.Marshal(replacements)
	if err != nil {
		return nil, fmt.Errorf("marshal replacements: %w", err)
	}

	m := newMultipartBody()
	if err := m.file("file", file); err != nil {
		return nil, err
	}
	if err := m.field("replacements", string(payload)); err != nil {
		return nil, err
	}

	req, err := c.newMultipartRequest(ctx, "/api/autofill/apply", m)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return readArtifact(resp)
}

func (c *HTTPClient) Process(ctx context.Context, files []models.UploadedFile, instruction string) (*models.Artifact, error) {
	m := newMultipartBody()
	for _, f := range files {
		if err := m.file("files", f); err != nil {
			return nil, err
		}
	}
	if err := m.field("instruction", instruction); err != nil {
		return nil, err
	}

	req, err := c.newMultipartRequest(ctx, "/api/autofill/process", m)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return readArtifact(resp)
}

func (c *HTTPClient) ListTemplates(ctx context.Context) ([]models.Template, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/api/templates", nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var body struct {
		Templates []models.Template `json:"templates"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	if body.Templates == nil {
		body.Templates = []models.Template{}
	}
	return body.Templates, nil
}

func (c *HTTPClient) CreateTemplate(ctx context.Context, in TemplateUpload) (*models.Template, error) {
	m := newMultipartBody()
	if err := m.file("file", in.File); err != nil {
		return nil, err
	}
	fields := [][2]string{
		{"name", in.Name},
		{"description", in.Description},
		{"category", string(in.Category)},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := m.field(f[0], f[1]); err != nil {
			return nil, err
		}
	}

	req, err := c.newMultipartRequest(ctx, "/api/templates", m)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	// Some deployments wrap the row as {"template": {...}}.
	var body struct {
		models.Template
		Wrapped *models.Template `json:"template"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	if body.Wrapped != nil {
		return body.Wrapped, nil
	}
	return &body.Template, nil
}

func (c *HTTPClient) DeleteTemplate(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("template id is empty")
	}
	req, err := c.newJSONRequest(ctx, http.MethodDelete, "/api/templates/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
