package session

import (
	"errors"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNilParameter     = errors.New("nil parameter")

	// ErrStateMismatch aborts a login callback whose state parameter is
	// absent or does not match the state cookie. No tokens are issued.
	ErrStateMismatch = errors.New("state mismatch")

	// ErrTokenExchangeFailed reports a rejected or malformed
	// authorization-code exchange.
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrRefreshFailed reports a rejected or malformed refresh. It is not
	// returned when the provider signals the session has ended; that case
	// is absorbed as a normal logout.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrConfigUnavailable reports that the provider's discovery document
	// could not be fetched or did not validate.
	ErrConfigUnavailable = errors.New("realm configuration unavailable")
)
