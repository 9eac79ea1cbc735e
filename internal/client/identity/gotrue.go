package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aidocpro/internal/common"
	"github.com/dmitrijs2005/aidocpro/internal/logging"
)

// refreshLeeway is how long before expiry an access token is renewed.
const refreshLeeway = 30 * time.Second

// GoTrueClient implements Service against the GoTrue REST API
// (/auth/v1/...), as exposed by Supabase.
type GoTrueClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	store   metadata.Repository
	logger  logging.Logger
	now     func() time.Time

	mu      sync.RWMutex
	session *models.Session
	// refreshed is the access token issued by the last refresh. It is used
	// until it really expires, even when its lifetime is below the leeway.
	refreshed string

	subsMu sync.Mutex
	subs   map[int]func(*models.Session)
	nextID int

	refreshMu sync.Mutex
}

// NewGoTrueClient builds the identity client. store may be nil, in which
// case sessions live only as long as the process.
func NewGoTrueClient(baseURL, apiKey string, httpClient *http.Client, store metadata.Repository, logger logging.Logger) *GoTrueClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &GoTrueClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		store:   store,
		logger:  logger,
		now:     time.Now,
		subs:    make(map[int]func(*models.Session)),
	}
}

// tokenResponse covers both the token grant answer and the sign-up answer,
// which is a bare user object when confirmation is required.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// persistedSession is what goes into the local store.
type persistedSession struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (c *GoTrueClient) call(ctx context.Context, path string, query url.Values, body any, bearer string) (*tokenResponse, error) {
	var rdr io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}

	u := c.baseURL + "/auth/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: providerMessage(raw, resp.StatusCode)}
	}

	var tr tokenResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &tr); err != nil {
			return nil, fmt.Errorf("decode identity response: %w", err)
		}
	}
	return &tr, nil
}

// providerMessage picks the human message out of the several error shapes
// GoTrue has used over time.
func providerMessage(raw []byte, status int) string {
	var body struct {
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, m := range []string{body.Msg, body.ErrorDescription, body.Message, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}

// sessionFrom turns a token answer into a Session, falling back to the JWT
// claims for anything the answer left out.
func (c *GoTrueClient) sessionFrom(tr *tokenResponse) (*models.Session, error) {
	if tr.AccessToken == "" {
		return nil, nil
	}

	claims, err := ParseAccessToken(tr.AccessToken)
	if err != nil {
		return nil, err
	}

	s := &models.Session{
		UserID:       claims.Subject,
		Email:        claims.Email,
		IsPremium:    claims.IsPremium(),
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	if tr.User != nil {
		if tr.User.ID != "" {
			s.UserID = tr.User.ID
		}
		if tr.User.Email != "" {
			s.Email = tr.User.Email
		}
	}

	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case claims.ExpiresAt != nil:
		s.ExpiresAt = claims.ExpiresAt.Time
	case tr.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return s, nil
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *GoTrueClient) SignIn(ctx context.Context, email string, password []byte) (*models.Session, error) {
	tr, err := c.call(ctx, "/token", url.Values{"grant_type": {"password"}}, credentialsBody{Email: email, Password: string(password)}, "")
	if err != nil {
		return nil, err
	}

	s, err := c.sessionFrom(tr)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &ProviderError{StatusCode: http.StatusOK, Message: "identity service returned no session"}
	}

	if err := c.setSession(ctx, s); err != nil {
		return nil, err
	}
	c.logger.Info(ctx, "signed in", "user_id", s.UserID)
	return s, nil
}

func (c *GoTrueClient) SignUp(ctx context.Context, email string, password []byte) (*models.Session, error) {
	tr, err := c.call(ctx, "/signup", nil, credentialsBody{Email: email, Password: string(password)}, "")
	if err != nil {
		return nil, err
	}

	s, err := c.sessionFrom(tr)
	if err != nil {
		return nil, err
	}
	if s == nil {
		c.logger.Info(ctx, "sign-up awaiting email confirmation", "email", email)
		return nil, nil
	}

	if err := c.setSession(ctx, s); err != nil {
		return nil, err
	}
	c.logger.Info(ctx, "signed up", "user_id", s.UserID)
	return s, nil
}

func (c *GoTrueClient) ResetPassword(ctx context.Context, email string) error {
	_, err := c.call(ctx, "/recover", nil, map[string]string{"email": email}, "")
	return err
}

// SignOut revokes the session at the provider when possible and always
// forgets it locally.
func (c *GoTrueClient) SignOut(ctx context.Context) error {
	s := c.Current()
	if s == nil {
		return ErrNoSession
	}

	if _, err := c.call(ctx, "/logout", nil, nil, s.AccessToken); err != nil {
		c.logger.Warn(ctx, "remote sign-out failed", "error", err)
	}

	if err := c.setSession(ctx, nil); err != nil {
		return err
	}
	c.logger.Info(ctx, "signed out", "user_id", s.UserID)
	return nil
}

func (c *GoTrueClient) Restore(ctx context.Context) (*models.Session, error) {
	s, err := c.restore(ctx)

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	c.notify(s)

	return s, err
}

func (c *GoTrueClient) restore(ctx context.Context) (*models.Session, error) {
	if c.store == nil {
		return nil, nil
	}

	raw, err := c.store.Get(ctx, common.SessionMetadataKey)
	if err != nil {
		return nil, fmt.Errorf("load session error: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var p persistedSession
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn(ctx, "discarding unreadable stored session", "error", err)
		return nil, c.store.Delete(ctx, common.SessionMetadataKey)
	}

	s := &models.Session{
		UserID:       p.UserID,
		Email:        p.Email,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.ExpiresAt,
	}
	if claims, err := ParseAccessToken(p.AccessToken); err == nil {
		s.IsPremium = claims.IsPremium()
	}

	if !s.Expired(c.now(), refreshLeeway) {
		return s, nil
	}

	fresh, err := c.refresh(ctx, s.RefreshToken)
	var perr *ProviderError
	if errors.As(err, &perr) {
		c.logger.Info(ctx, "stored session rejected, signing out locally", "error", err)
		return nil, c.store.Delete(ctx, common.SessionMetadataKey)
	}
	if err != nil {
		return nil, err
	}
	if err := c.persist(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (c *GoTrueClient) refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	if refreshToken == "" {
		return nil, &ProviderError{StatusCode: http.StatusUnauthorized, Message: "refresh token missing"}
	}
	tr, err := c.call(ctx, "/token", url.Values{"grant_type": {"refresh_token"}}, map[string]string{"refresh_token": refreshToken}, "")
	if err != nil {
		return nil, err
	}
	s, err := c.sessionFrom(tr)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &ProviderError{StatusCode: http.StatusOK, Message: "identity service returned no session"}
	}
	return s, nil
}

func (c *GoTrueClient) Current() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	cp := *c.session
	return &cp
}

// Credentials returns the user id and a usable access token, refreshing it
// first when it is about to expire. A failed refresh keeps the old token;
// the API will answer 401 and the user can sign in again.
func (c *GoTrueClient) Credentials(ctx context.Context) (string, string) {
	s := c.Current()
	if s == nil {
		return "", ""
	}
	if !c.needsRefresh(s) {
		return s.UserID, s.AccessToken
	}

	c.refreshMu.Lock()

	// another caller may have refreshed or signed out while we waited
	cur := c.Current()
	if cur == nil {
		c.refreshMu.Unlock()
		return "", ""
	}
	if cur.AccessToken != s.AccessToken || !c.needsRefresh(cur) {
		c.refreshMu.Unlock()
		return cur.UserID, cur.AccessToken
	}

	fresh, err := c.refresh(ctx, s.RefreshToken)
	if err != nil {
		c.refreshMu.Unlock()
		c.logger.Warn(ctx, "access token refresh failed", "error", err)
		return s.UserID, s.AccessToken
	}
	if err := c.storeSession(ctx, fresh); err != nil {
		c.logger.Warn(ctx, "persist refreshed session failed", "error", err)
	}
	c.mu.Lock()
	c.refreshed = fresh.AccessToken
	c.mu.Unlock()
	c.refreshMu.Unlock()

	// Subscribers may call back into Credentials, so they run unlocked.
	c.notify(fresh)
	return fresh.UserID, fresh.AccessToken
}

// needsRefresh reports whether s is close enough to expiry to be renewed.
// A token that came from the last refresh is renewed only once expired.
func (c *GoTrueClient) needsRefresh(s *models.Session) bool {
	now := c.now()
	if !s.Expired(now, refreshLeeway) {
		return false
	}
	c.mu.RLock()
	recent := s.AccessToken != "" && s.AccessToken == c.refreshed
	c.mu.RUnlock()
	return !recent || s.Expired(now, 0)
}

func (c *GoTrueClient) Subscribe(fn func(*models.Session)) func() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs[id] = fn

	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *GoTrueClient) notify(s *models.Session) {
	c.subsMu.Lock()
	fns := make([]func(*models.Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		if s == nil {
			fn(nil)
			continue
		}
		cp := *s
		fn(&cp)
	}
}

// setSession swaps the in-memory session, persists it and notifies
// subscribers. A nil s signs out.
func (c *GoTrueClient) setSession(ctx context.Context, s *models.Session) error {
	err := c.storeSession(ctx, s)
	c.notify(s)
	return err
}

// storeSession swaps the in-memory session and persists it without
// notifying anyone.
func (c *GoTrueClient) storeSession(ctx context.Context, s *models.Session) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	var err error
	if s == nil {
		if c.store != nil {
			err = c.store.Delete(ctx, common.SessionMetadataKey)
		}
	} else {
		err = c.persist(ctx, s)
	}

	if err != nil {
		return fmt.Errorf("persist session error: %w", err)
	}
	return nil
}

func (c *GoTrueClient) persist(ctx context.Context, s *models.Session) error {
	if c.store == nil {
		return nil
	}
	b, err := json.Marshal(persistedSession{
		UserID:       s.UserID,
		Email:        s.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.store.Set(ctx, common.SessionMetadataKey, b)
}
