package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-multierror"
)

// realmConfig is the subset of the provider's discovery document this
// package uses. All of it is required.
type realmConfig struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	EndSessionEndpoint    string `json:"end_session_endpoint"`
}

// validate aggregates every missing field instead of reporting the first,
// so one log line names everything the provider's document lacks.
func (c *realmConfig) validate() error {
	var result *multierror.Error
	if c.Issuer == "" {
		result = multierror.Append(result, errors.New("issuer is missing"))
	}
	if c.AuthorizationEndpoint == "" {
		result = multierror.Append(result, errors.New("authorization_endpoint is missing"))
	}
	if c.TokenEndpoint == "" {
		result = multierror.Append(result, errors.New("token_endpoint is missing"))
	}
	if c.EndSessionEndpoint == "" {
		result = multierror.Append(result, errors.New("end_session_endpoint is missing"))
	}
	return result.ErrorOrNil()
}

// realm returns the provider's realm configuration, fetching it on first
// use. Successful fetches are memoized for the manager's lifetime; there
// is no TTL or invalidation. Concurrent first uses are coalesced into a
// single fetch, and failures are not cached, so the next call retries.
func (m *Manager) realm(ctx context.Context) (*realmConfig, error) {
	m.mu.Lock()
	memo := m.memo
	m.mu.Unlock()
	if memo != nil {
		return memo, nil
	}

	v, err, _ := m.group.Do("realm", func() (interface{}, error) {
		// Re-check under the flight: a caller that lost the race to an
		// already-completed fetch must not fetch again.
		m.mu.Lock()
		memo := m.memo
		m.mu.Unlock()
		if memo != nil {
			return memo, nil
		}
		// Coalesced callers share this fetch, so it must not die with
		// the winning caller's context.
		rc, err := m.fetchRealm(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.memo = rc
		m.mu.Unlock()
		return rc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*realmConfig), nil
}

// fetchRealm retrieves {issuer}/.well-known/openid-configuration and
// validates the fields this package depends on.
func (m *Manager) fetchRealm(ctx context.Context) (*realmConfig, error) {
	const op = "Manager.fetchRealm"
	ctx = oidc.ClientContext(ctx, m.client)
	provider, err := oidc.NewProvider(ctx, m.config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to fetch discovery document: %w: %w", op, ErrConfigUnavailable, err)
	}
	var rc realmConfig
	if err := provider.Claims(&rc); err != nil {
		return nil, fmt.Errorf("%s: malformed discovery document: %w: %w", op, ErrConfigUnavailable, err)
	}
	if err := rc.validate(); err != nil {
		return nil, fmt.Errorf("%s: incomplete discovery document: %w: %w", op, ErrConfigUnavailable, err)
	}
	m.logger.Debug("fetched realm configuration", "issuer", rc.Issuer)
	return &rc, nil
}
