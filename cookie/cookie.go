// Package cookie implements the browser-side persistence used by the
// session package: three cookie slots sharing one set of hardened base
// attributes, with a per-slot codec deciding how values are stored.
package cookie

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/rjvdw/oidc-demo/seal"
)

// Names of the cookies managed by a Store.
const (
	StateCookie        = "auth-state"
	AccessTokenCookie  = "access-token"
	RefreshTokenCookie = "refresh-token"
)

// Codec transforms a value on its way into and out of a cookie.
type Codec interface {
	Encode(value string) (string, error)
	Decode(value string) (string, error)
}

// ExpiryFunc derives a cookie expiry from the value being stored. A zero
// time means the cookie gets no explicit expiry (a session cookie).
type ExpiryFunc func(value string) time.Time

// Slot is one named cookie. Every write applies the same base attributes:
// SameSite=Lax, HttpOnly, Secure, Path=/.
type Slot struct {
	name   string
	codec  Codec
	expiry ExpiryFunc
	logger hclog.Logger
}

// Name returns the cookie name the slot reads and writes.
func (s *Slot) Name() string {
	return s.name
}

// Get reads the slot's cookie from the request. A missing cookie, or a
// value the codec cannot decode, yields ("", false). Decode failures are
// logged and never propagated: a cookie written under a different key must
// look the same as no cookie at all.
func (s *Slot) Get(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.name)
	if err != nil {
		return "", false
	}
	value, err := s.codec.Decode(c.Value)
	if err != nil {
		s.logger.Warn("discarding undecodable cookie", "cookie", s.name, "error", err)
		return "", false
	}
	return value, true
}

// Set encodes the value and writes the slot's cookie to the response.
func (s *Slot) Set(w http.ResponseWriter, value string) error {
	const op = "Slot.Set"
	encoded, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("%s: unable to encode cookie %q: %w", op, s.name, err)
	}
	c := s.newCookie(encoded)
	if s.expiry != nil {
		// Derived from the value itself, so the cookie cannot outlive
		// the token it carries.
		c.Expires = s.expiry(value)
	}
	http.SetCookie(w, c)
	return nil
}

// Clear writes an expired cookie, deleting the slot in the browser.
func (s *Slot) Clear(w http.ResponseWriter) {
	c := s.newCookie("")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func (s *Slot) newCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Store groups the three slots the session package works with. The state
// and access-token slots store plain values; the refresh-token slot runs
// every value through the sealing suite. The token slots pin their cookie
// expiry to the stored token via tokenExpiry.
type Store struct {
	State        *Slot
	AccessToken  *Slot
	RefreshToken *Slot
}

// NewStore creates a Store. Supported options: WithLogger.
func NewStore(suite *seal.Suite, tokenExpiry ExpiryFunc, opt ...Option) (*Store, error) {
	const op = "cookie.NewStore"
	if suite == nil {
		return nil, fmt.Errorf("%s: sealing suite is nil", op)
	}
	opts := getStoreOpts(opt...)
	logger := opts.withLogger
	return &Store{
		State:        &Slot{name: StateCookie, codec: identity{}, logger: logger},
		AccessToken:  &Slot{name: AccessTokenCookie, codec: identity{}, expiry: tokenExpiry, logger: logger},
		RefreshToken: &Slot{name: RefreshTokenCookie, codec: sealed{suite: suite}, expiry: tokenExpiry, logger: logger},
	}, nil
}
