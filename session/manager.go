package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/rjvdw/oidc-demo/cookie"
	"github.com/rjvdw/oidc-demo/seal"
)

// The distinguished token-endpoint error a provider returns when the
// session behind a refresh token no longer exists. It is handled as a
// normal logout, not a failure.
const (
	errInvalidGrant     = "invalid_grant"
	errSessionNotActive = "Session not active"
)

// Manager drives the OIDC authorization code flow and the lifecycle of
// the resulting token pair. It is safe for concurrent use; per-request
// state lives in browser cookies, and the only shared mutable state is
// the memoized realm configuration.
type Manager struct {
	config *Config
	client *http.Client
	store  *cookie.Store
	logger hclog.Logger

	mu    sync.Mutex
	memo  *realmConfig
	group singleflight.Group
}

// New creates a Manager for the configured provider. The suite seals the
// refresh-token cookie and must outlive the manager.
// Supported options: WithLogger, WithHTTPClient.
func New(c *Config, suite *seal.Suite, opt ...Option) (*Manager, error) {
	const op = "session.New"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if suite == nil {
		return nil, fmt.Errorf("%s: sealing suite is nil: %w", op, ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	opts := getManagerOpts(opt...)
	client := opts.withHTTPClient
	if client == nil {
		client = &http.Client{Transport: cleanhttp.DefaultPooledTransport()}
	}
	store, err := cookie.NewStore(suite, tokenExpiry, cookie.WithLogger(opts.withLogger))
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create cookie store: %w", op, err)
	}
	return &Manager{
		config: c,
		client: client,
		store:  store,
		logger: opts.withLogger,
	}, nil
}

// StartLoginFlow begins a login attempt: it generates an unpredictable
// state token, persists it in the state cookie, and returns the
// provider's authorization URL to redirect the browser to. Any state from
// an earlier unfinished attempt is overwritten.
func (m *Manager) StartLoginFlow(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	const op = "Manager.StartLoginFlow"
	state, err := uuid.GenerateUUID()
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate state: %w", op, err)
	}
	if err := m.store.State.Set(w, state); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	realm, err := m.realm(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	m.logger.Debug("starting login flow", "client_id", m.config.ClientID)
	return m.oauthConfig(realm).AuthCodeURL(state), nil
}

// HandleLoginFlow dispatches a request to the login route: a request
// carrying an authorization code completes the flow, anything else starts
// one. Both paths return a URL or path for the caller to redirect to.
func (m *Manager) HandleLoginFlow(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	if r.FormValue("code") != "" {
		return m.CompleteLoginFlow(ctx, w, r)
	}
	return m.StartLoginFlow(ctx, w, r)
}

// CompleteLoginFlow processes the provider's callback. The request's
// state parameter must equal the state cookie or the flow aborts with
// ErrStateMismatch and no tokens are issued. On a successful exchange
// both token cookies are written and the internal post-login path is
// returned.
func (m *Manager) CompleteLoginFlow(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	const op = "Manager.CompleteLoginFlow"
	reqState := r.FormValue("state")
	storedState, ok := m.store.State.Get(r)
	if reqState == "" || !ok || reqState != storedState {
		return "", fmt.Errorf("%s: callback state and login state are not equal: %w", op, ErrStateMismatch)
	}

	realm, err := m.realm(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	tok, err := m.oauthConfig(realm).Exchange(oidc.ClientContext(ctx, m.client), r.FormValue("code"))
	if err != nil {
		return "", fmt.Errorf("%s: unable to exchange authorization code: %w: %w", op, ErrTokenExchangeFailed, err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return "", fmt.Errorf("%s: token response is missing a token: %w", op, ErrTokenExchangeFailed)
	}
	if err := m.writeTokens(w, tok); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	m.logger.Debug("completed login flow", "client_id", m.config.ClientID)
	return m.config.postLoginPath(), nil
}

// AccessToken returns the access token for the request, refreshing once
// if no access token is cached but a refresh token is. It returns ""
// without touching the network when the session is logged out.
func (m *Manager) AccessToken(ctx context.Context, w http.ResponseWriter, r *http.Request) (AccessToken, error) {
	const op = "Manager.AccessToken"
	if tok, ok := m.store.AccessToken.Get(r); ok {
		return AccessToken(tok), nil
	}
	tok, err := m.refresh(ctx, w, r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if tok == nil {
		return "", nil
	}
	return AccessToken(tok.AccessToken), nil
}

// Refresh exchanges the stored refresh token for a new token pair,
// rotating both cookies. It is a no-op when no refresh token is stored.
// When the provider reports the session is no longer active, both token
// cookies are deleted and Refresh returns nil: that outcome is a normal
// logout, not a failure. Every other rejection returns ErrRefreshFailed
// and leaves the stored cookies untouched.
func (m *Manager) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	_, err := m.refresh(ctx, w, r)
	return err
}

func (m *Manager) refresh(ctx context.Context, w http.ResponseWriter, r *http.Request) (*oauth2.Token, error) {
	const op = "Manager.refresh"
	refreshToken, ok := m.store.RefreshToken.Get(r)
	if !ok {
		return nil, nil
	}
	realm, err := m.realm(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	src := m.oauthConfig(realm).TokenSource(oidc.ClientContext(ctx, m.client), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		if sessionEnded(err) {
			m.logger.Info("provider reports session is no longer active, logging out")
			m.clearTokens(w)
			return nil, nil
		}
		return nil, fmt.Errorf("%s: unable to refresh token: %w: %w", op, ErrRefreshFailed, err)
	}
	// tok.RefreshToken is carried forward from the request when the
	// response omits one, so inspect the raw response instead.
	if raw, _ := tok.Extra("refresh_token").(string); tok.AccessToken == "" || raw == "" {
		return nil, fmt.Errorf("%s: token response is missing a token: %w", op, ErrRefreshFailed)
	}
	if err := m.writeTokens(w, tok); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, err)
	}
	return tok, nil
}

// IsLoggedIn reports whether the request carries a refresh-token cookie
// that decrypts successfully. The refresh token, not the access token, is
// the source of truth for session presence: access tokens are short-lived
// and routinely absent while logged in.
func (m *Manager) IsLoggedIn(r *http.Request) bool {
	_, ok := m.store.RefreshToken.Get(r)
	return ok
}

// TokenExpirations decodes the unverified expiry claims of the stored
// token pair, for display purposes only.
func (m *Manager) TokenExpirations(r *http.Request) Expirations {
	var e Expirations
	if tok, ok := m.store.AccessToken.Get(r); ok {
		e.AccessToken = tokenExpiry(tok)
	}
	if tok, ok := m.store.RefreshToken.Get(r); ok {
		e.RefreshToken = tokenExpiry(tok)
	}
	return e
}

// Logout deletes both token cookies and returns the provider's
// end-session URL to redirect the browser to. The cookies are deleted
// unconditionally before the realm lookup, so the user is logged out
// locally even when building the redirect fails.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	const op = "Manager.Logout"
	m.clearTokens(w)
	realm, err := m.realm(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	u, err := url.Parse(realm.EndSessionEndpoint)
	if err != nil {
		return "", fmt.Errorf("%s: invalid end-session endpoint: %w: %w", op, ErrConfigUnavailable, err)
	}
	q := u.Query()
	q.Set("post_logout_redirect_uri", m.config.BaseURL)
	q.Set("client_id", m.config.ClientID)
	u.RawQuery = q.Encode()
	m.logger.Debug("logging out", "client_id", m.config.ClientID)
	return u.String(), nil
}

// oauthConfig builds the oauth2 client configuration from the realm's
// endpoints. Client credentials go in the request body, the way the
// token endpoint contract is specified.
func (m *Manager) oauthConfig(realm *realmConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     m.config.ClientID,
		ClientSecret: string(m.config.ClientSecret),
		RedirectURL:  m.config.redirectURL(),
		Endpoint: oauth2.Endpoint{
			AuthURL:   realm.AuthorizationEndpoint,
			TokenURL:  realm.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: m.config.Scopes,
	}
}

// writeTokens stores the pair as a unit; access and refresh tokens are
// never written (or cleared) one without the other.
func (m *Manager) writeTokens(w http.ResponseWriter, tok *oauth2.Token) error {
	if err := m.store.AccessToken.Set(w, tok.AccessToken); err != nil {
		return err
	}
	return m.store.RefreshToken.Set(w, tok.RefreshToken)
}

func (m *Manager) clearTokens(w http.ResponseWriter) {
	m.store.AccessToken.Clear(w)
	m.store.RefreshToken.Clear(w)
}

// sessionEnded recognizes the provider's "session no longer active"
// rejection of a refresh: HTTP 400 with error=invalid_grant and the
// matching description.
func sessionEnded(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return false
	}
	if retrieveErr.Response == nil || retrieveErr.Response.StatusCode != http.StatusBadRequest {
		return false
	}
	return retrieveErr.ErrorCode == errInvalidGrant && retrieveErr.ErrorDescription == errSessionNotActive
}
