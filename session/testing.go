package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TestRefreshResponse selects how a TestProvider answers refresh_token
// grant requests.
type TestRefreshResponse int

const (
	// TestRefreshOK issues a fresh token pair.
	TestRefreshOK TestRefreshResponse = iota

	// TestRefreshSessionNotActive answers HTTP 400 with
	// error=invalid_grant and error_description="Session not active",
	// the provider's signal that the session ended server-side.
	TestRefreshSessionNotActive

	// TestRefreshServerError answers HTTP 500.
	TestRefreshServerError
)

// TestProvider is a local server impersonating the subset of an OIDC
// provider this package talks to: discovery, authorization, token and
// end-session endpoints. It makes writing tests against the full flow
// much easier.
type TestProvider struct {
	httpServer *httptest.Server
	t          *testing.T

	mu               sync.Mutex
	clientID         string
	clientSecret     string
	expectedAuthCode string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	omitRefreshToken bool
	omitAccessToken  bool
	refreshResponse  TestRefreshResponse
	disableDiscovery bool
	omitEndSession   bool
	discoveryCount   int
	tokenCount       int
	issued           int
}

// StartTestProvider creates and starts a disposable TestProvider. It is
// stopped automatically when the test ends.
func StartTestProvider(t *testing.T) *TestProvider {
	t.Helper()
	p := &TestProvider{
		t:               t,
		accessTokenTTL:  5 * time.Minute,
		refreshTokenTTL: 30 * time.Minute,
	}
	p.httpServer = httptest.NewServer(p)
	t.Cleanup(p.httpServer.Close)
	return p
}

// Addr returns the provider's base URL, which doubles as its issuer.
func (p *TestProvider) Addr() string {
	return p.httpServer.URL
}

// SetClientCreds configures the client credentials the token endpoint
// requires. Zero values disable the check.
func (p *TestProvider) SetClientCreds(clientID, clientSecret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clientID = clientID
	p.clientSecret = clientSecret
}

// SetExpectedAuthCode configures the only authorization code the token
// endpoint accepts.
func (p *TestProvider) SetExpectedAuthCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expectedAuthCode = code
}

// SetTokenTTLs configures the exp claims of issued tokens.
func (p *TestProvider) SetTokenTTLs(access, refresh time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessTokenTTL = access
	p.refreshTokenTTL = refresh
}

// SetOmitRefreshToken makes token responses schema-invalid by leaving out
// the refresh_token member.
func (p *TestProvider) SetOmitRefreshToken(omit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitRefreshToken = omit
}

// SetOmitAccessToken makes token responses schema-invalid by leaving out
// the access_token member.
func (p *TestProvider) SetOmitAccessToken(omit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitAccessToken = omit
}

// SetRefreshResponse selects the outcome of refresh_token grants.
func (p *TestProvider) SetRefreshResponse(r TestRefreshResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshResponse = r
}

// SetDisableDiscovery makes the discovery endpoint answer HTTP 500.
func (p *TestProvider) SetDisableDiscovery(disable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disableDiscovery = disable
}

// SetOmitEndSessionEndpoint drops end_session_endpoint from the
// discovery document.
func (p *TestProvider) SetOmitEndSessionEndpoint(omit bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitEndSession = omit
}

// TokenRequestCount reports how many requests the token endpoint has
// seen, regardless of grant or outcome.
func (p *TestProvider) TokenRequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenCount
}

// DiscoveryRequestCount reports how many requests the discovery document
// endpoint has seen.
func (p *TestProvider) DiscoveryRequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.discoveryCount
}

// ServeHTTP implements the provider's endpoints.
func (p *TestProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.URL.Path {
	case "/.well-known/openid-configuration":
		p.discoveryCount++
		if p.disableDiscovery {
			http.Error(w, "discovery disabled", http.StatusInternalServerError)
			return
		}
		doc := map[string]interface{}{
			"issuer":                 p.httpServer.URL,
			"authorization_endpoint": p.httpServer.URL + "/auth",
			"token_endpoint":         p.httpServer.URL + "/token",
		}
		if !p.omitEndSession {
			doc["end_session_endpoint"] = p.httpServer.URL + "/logout"
		}
		writeTestJSON(p.t, w, http.StatusOK, doc)

	case "/auth":
		q := r.URL.Query()
		redirect := fmt.Sprintf("%s?state=%s&code=%s", q.Get("redirect_uri"), q.Get("state"), p.expectedAuthCode)
		http.Redirect(w, r, redirect, http.StatusFound)

	case "/token":
		p.tokenCount++
		p.handleToken(w, r)

	case "/logout":
		w.WriteHeader(http.StatusNoContent)

	default:
		http.NotFound(w, r)
	}
}

func (p *TestProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	p.t.Helper()
	require := require.New(p.t)
	require.NoError(r.ParseForm())

	if p.clientID != "" && (r.FormValue("client_id") != p.clientID || r.FormValue("client_secret") != p.clientSecret) {
		writeTestJSON(p.t, w, http.StatusUnauthorized, map[string]interface{}{
			"error": "invalid_client",
		})
		return
	}

	switch r.FormValue("grant_type") {
	case "authorization_code":
		if r.FormValue("code") != p.expectedAuthCode {
			writeTestJSON(p.t, w, http.StatusBadRequest, map[string]interface{}{
				"error":             "invalid_grant",
				"error_description": "Code not valid",
			})
			return
		}
	case "refresh_token":
		switch p.refreshResponse {
		case TestRefreshSessionNotActive:
			writeTestJSON(p.t, w, http.StatusBadRequest, map[string]interface{}{
				"error":             "invalid_grant",
				"error_description": "Session not active",
			})
			return
		case TestRefreshServerError:
			http.Error(w, "upstream failure", http.StatusInternalServerError)
			return
		}
		if r.FormValue("refresh_token") == "" {
			writeTestJSON(p.t, w, http.StatusBadRequest, map[string]interface{}{
				"error": "invalid_request",
			})
			return
		}
	default:
		writeTestJSON(p.t, w, http.StatusBadRequest, map[string]interface{}{
			"error": "unsupported_grant_type",
		})
		return
	}

	p.issued++
	resp := map[string]interface{}{
		"token_type":         "Bearer",
		"expires_in":         int(p.accessTokenTTL.Seconds()),
		"refresh_expires_in": int(p.refreshTokenTTL.Seconds()),
		"scope":              "openid",
		"session_state":      "test-session-state",
	}
	if !p.omitAccessToken {
		resp["access_token"] = testJWT(p.t, "access", p.issued, time.Now().Add(p.accessTokenTTL))
	}
	if !p.omitRefreshToken {
		resp["refresh_token"] = testJWT(p.t, "refresh", p.issued, time.Now().Add(p.refreshTokenTTL))
	}
	writeTestJSON(p.t, w, http.StatusOK, resp)
}

// testJWT mints a JWT-shaped token whose exp claim is readable without
// verification. The serial makes successive tokens distinguishable, so
// rotation is observable in tests.
func testJWT(t *testing.T, typ string, serial int, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"typ":    typ,
		"serial": serial,
		"exp":    exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}
