// Package provider implements the session.Provider interface against the
// identity provider's REST API (password sign-in, signup, logout, current
// user). Session-change notifications are synthesized locally after each
// state-changing call, the same contract a push channel would deliver.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/negocehub/marketplace-api/pkg/session"
)

var ErrInvalidCredentials = errors.New("provider rejected credentials")

const requestTimeout = 30 * time.Second

// Config carries the provider endpoint settings.
type Config struct {
	// BaseURL is the provider's API root, e.g. https://id.example.com/auth/v1.
	BaseURL string
	// APIKey is sent on every request as the provider's public API key.
	APIKey string
}

// TokenStore persists the access token between process runs so a previously
// established session can be restored on cold start.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// HTTPProvider talks to the identity provider over HTTP.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	store   TokenStore
	logger  zerolog.Logger

	mu   sync.Mutex
	subs map[uuid.UUID]func(*session.Session)
}

func NewHTTPProvider(cfg Config, store TokenStore, logger zerolog.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: requestTimeout},
		store:   store,
		logger:  logger,
		subs:    make(map[uuid.UUID]func(*session.Session)),
	}
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   int64   `json:"expires_in"`
	User        userDoc `json:"user"`
}

type userDoc struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsSeller bool   `json:"is_seller"`
}

func (d userDoc) identity() session.Identity {
	return session.Identity{ID: d.ID, Name: d.Name, Email: d.Email, IsSeller: d.IsSeller}
}

// SignIn exchanges credentials for a session. The new session reaches
// consumers through OnSessionChange, not the return value.
func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) error {
	var tok tokenResponse
	status, err := p.do(ctx, http.MethodPost, "/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &tok)
	if err != nil {
		return err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return ErrInvalidCredentials
	}
	if status != http.StatusOK {
		return fmt.Errorf("provider sign-in: unexpected status %d", status)
	}

	if err := p.store.Save(tok.AccessToken); err != nil {
		p.logger.Warn().Err(err).Msg("failed to persist session token")
	}

	p.notify(&session.Session{
		Identity:  tok.User.identity(),
		Token:     tok.AccessToken,
		ExpiresAt: time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	})
	return nil
}

// SignUp creates an identity and returns it with the provider-assigned id.
func (p *HTTPProvider) SignUp(ctx context.Context, email, password string) (*session.Identity, error) {
	var doc userDoc
	status, err := p.do(ctx, http.MethodPost, "/signup", "",
		map[string]string{"email": email, "password": password}, &doc)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("provider sign-up: unexpected status %d", status)
	}
	identity := doc.identity()
	return &identity, nil
}

// SignOut invalidates the provider session and drops the persisted token.
func (p *HTTPProvider) SignOut(ctx context.Context) error {
	token, err := p.store.Load()
	if err != nil || token == "" {
		return nil
	}

	status, err := p.do(ctx, http.MethodPost, "/logout", token, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("provider sign-out: unexpected status %d", status)
	}

	if err := p.store.Clear(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to clear persisted token")
	}
	p.notify(nil)
	return nil
}

// CurrentSession restores the persisted session, validating the token against
// the provider's current-user endpoint.
func (p *HTTPProvider) CurrentSession(ctx context.Context) (*session.Session, error) {
	token, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load persisted token: %w", err)
	}
	if token == "" {
		return nil, session.ErrNoSession
	}

	var doc userDoc
	status, err := p.do(ctx, http.MethodGet, "/user", token, nil, &doc)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		_ = p.store.Clear()
		return nil, session.ErrNoSession
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("provider current session: unexpected status %d", status)
	}

	return &session.Session{
		Identity:  doc.identity(),
		Token:     token,
		ExpiresAt: tokenExpiry(token),
	}, nil
}

// OnSessionChange registers fn for session-change notifications.
func (p *HTTPProvider) OnSessionChange(fn func(*session.Session)) func() {
	id := uuid.New()

	p.mu.Lock()
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *HTTPProvider) notify(sess *session.Session) {
	p.mu.Lock()
	fns := make([]func(*session.Session), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
}

// do performs one JSON round-trip. A non-2xx status is not an error here;
// callers decide how to map it.
func (p *HTTPProvider) do(ctx context.Context, method, path, bearer string, body any, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the client
// only needs the horizon, the provider remains the authority on validity.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
