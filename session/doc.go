// Package session implements relying-party session management for the
// OpenID Connect authorization code flow. A Manager drives logins against
// a provider, keeps the resulting access/refresh token pair in hardened
// browser cookies (the refresh token encrypted at rest), transparently
// refreshes expired access tokens, recognizes provider-side session
// invalidation, and builds the provider's end-session redirect on logout.
//
// The package deliberately treats tokens as opaque: it never verifies
// token signatures and only decodes the unverified expiry claim for
// display and cookie lifetimes. Trust in token content comes from the
// TLS-protected exchange with the provider's token endpoint.
package session
