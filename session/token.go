package session

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is an oauth access_token
type AccessToken string

// RedactedAccessToken is the redacted string or json for an oauth access_token
const RedactedAccessToken = "[REDACTED: access_token]"

// String will redact the token
func (t AccessToken) String() string {
	return RedactedAccessToken
}

// MarshalJSON will redact the token
func (t AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedAccessToken)
}

// Expirations carries the unverified expiry claims of the stored token
// pair. The values are decoded for display only and must never feed a
// trust decision; a zero time means the token is absent or carries no
// readable expiry.
type Expirations struct {
	AccessToken  time.Time
	RefreshToken time.Time
}

// tokenExpiry decodes the exp claim of a JWT-shaped token without
// verifying its signature. Opaque tokens yield a zero time.
func tokenExpiry(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
