package session

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

type ClientSecret string

// RedactedClientSecret is the redacted string or json for an oauth client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// Default paths used when the Config leaves them empty.
const (
	DefaultLoginPath     = "/login"
	DefaultPostLoginPath = "/"
)

// Config represents the configuration for a relying party driving the
// OIDC authorization code flow against one provider.
type Config struct {
	// Issuer is a case-sensitive URL using the https (or http) scheme.
	// The provider's discovery document is fetched from
	// {Issuer}/.well-known/openid-configuration.
	Issuer string

	// ClientID is the relying party id registered with the provider.
	ClientID string

	// ClientSecret is the relying party secret.
	ClientSecret ClientSecret

	// BaseURL is the public base URL of this relying party. It is
	// combined with LoginPath to form the redirect_uri, and doubles as
	// the post_logout_redirect_uri.
	BaseURL string

	// LoginPath is the path of the login callback route, relative to
	// BaseURL. Defaults to DefaultLoginPath.
	LoginPath string

	// PostLoginPath is the internal path a completed login lands on.
	// Defaults to DefaultPostLoginPath.
	PostLoginPath string

	// Scopes is an optional list of additional scopes to request.
	Scopes []string
}

// Validate the relying party configuration. It verifies the required
// fields are present and that Issuer and BaseURL parse as http(s) URLs,
// but it doesn't verify the Issuer is discoverable via an http request.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if c.ClientID == "" {
		return fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("%s: client secret is empty: %w", op, ErrInvalidParameter)
	}
	if err := validHTTPURL(c.Issuer); err != nil {
		return fmt.Errorf("%s: issuer: %w", op, err)
	}
	if err := validHTTPURL(c.BaseURL); err != nil {
		return fmt.Errorf("%s: base URL: %w", op, err)
	}
	return nil
}

func validHTTPURL(s string) error {
	if s == "" {
		return fmt.Errorf("URL is empty: %w", ErrInvalidParameter)
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%q is not a URL: %w", s, ErrInvalidParameter)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%q scheme is not http or https: %w", s, ErrInvalidParameter)
	}
	return nil
}

// redirectURL is the registered redirect_uri for the authorization code
// flow: the login callback route under the relying party's base URL.
func (c *Config) redirectURL() string {
	path := c.LoginPath
	if path == "" {
		path = DefaultLoginPath
	}
	return strings.TrimSuffix(c.BaseURL, "/") + path
}

func (c *Config) postLoginPath() string {
	if c.PostLoginPath == "" {
		return DefaultPostLoginPath
	}
	return c.PostLoginPath
}
