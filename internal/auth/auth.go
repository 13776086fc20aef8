// Package auth exchanges the long-lived Alor refresh token for short-lived
// JWT access tokens.
//
// The OAuth server hands out a JWT valid for roughly a minute, so every
// consumer (REST client, websocket manager) draws tokens from a shared
// TokenSource that caches the current JWT and refreshes it past its TTL.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ErrNoRefreshToken is returned when the source was built without a token.
var ErrNoRefreshToken = errors.New("refresh token is empty (set ALOR_REFRESH_TOKEN)")

// TokenConfig configures a TokenSource.
type TokenConfig struct {
	OAuthURL     string        // e.g. https://oauth.alor.ru
	RefreshToken string        // Long-lived token from alor.dev
	TTL          time.Duration // How long an issued JWT is reused (default 60s)
	Timeout      time.Duration // HTTP timeout for the refresh call
}

// TokenSource issues JWT access tokens, caching them for the configured TTL.
// Safe for concurrent use.
type TokenSource struct {
	cfg        TokenConfig
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	token    string
	issuedAt time.Time

	now func() time.Time // Overridable for tests
}

// refreshResponse is the OAuth server's reply to POST /refresh.
type refreshResponse struct {
	AccessToken string `json:"AccessToken"`
}

// NewTokenSource creates a TokenSource.
func NewTokenSource(cfg TokenConfig, logger *slog.Logger) *TokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL == 0 {
		cfg.TTL = 60 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &TokenSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Token returns a valid JWT, refreshing it when the cached one is past TTL.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if s.cfg.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Sub(s.issuedAt) <= s.cfg.TTL {
		return s.token, nil
	}

	token, err := s.refresh(ctx)
	if err != nil {
		// A failed refresh clears the cache so the next call retries.
		s.token = ""
		s.issuedAt = time.Time{}
		return "", err
	}

	s.token = token
	s.issuedAt = s.now()

	s.logger.Debug("jwt refreshed", "ttl", s.cfg.TTL)
	return token, nil
}

// Invalidate drops the cached token, forcing a refresh on the next call.
// The websocket manager calls this after an unauthorized response.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.issuedAt = time.Time{}
	s.mu.Unlock()
}

// refresh performs the actual token exchange. Caller holds the lock.
func (s *TokenSource) refresh(ctx context.Context) (string, error) {
	refreshURL := s.cfg.OAuthURL + "/refresh?" + url.Values{
		"token": {s.cfg.RefreshToken},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, refreshURL, nil)
	if err != nil {
		return "", fmt.Errorf("create refresh request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh token: oauth server returned %d: %s",
			resp.StatusCode, string(body))
	}

	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return "", fmt.Errorf("parse refresh response: %w", err)
	}

	if rr.AccessToken == "" {
		return "", errors.New("refresh response contains no AccessToken")
	}

	return rr.AccessToken, nil
}
