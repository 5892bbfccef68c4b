package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	valid := func() *Config {
		return &Config{
			Issuer:       "https://idp.example.com/realms/demo",
			ClientID:     "demo",
			ClientSecret: "demo-secret",
			BaseURL:      "https://app.example.com",
		}
	}
	tests := []struct {
		name      string
		config    *Config
		wantErr   bool
		wantIsErr error
	}{
		{
			name:   "valid",
			config: valid(),
		},
		{
			name: "valid-http-issuer",
			config: func() *Config {
				c := valid()
				c.Issuer = "http://localhost:8180/realms/demo"
				return c
			}(),
		},
		{
			name:      "nil-config",
			config:    nil,
			wantErr:   true,
			wantIsErr: ErrNilParameter,
		},
		{
			name: "missing-client-id",
			config: func() *Config {
				c := valid()
				c.ClientID = ""
				return c
			}(),
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "missing-client-secret",
			config: func() *Config {
				c := valid()
				c.ClientSecret = ""
				return c
			}(),
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "missing-issuer",
			config: func() *Config {
				c := valid()
				c.Issuer = ""
				return c
			}(),
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "issuer-scheme-not-http",
			config: func() *Config {
				c := valid()
				c.Issuer = "ldap://idp.example.com"
				return c
			}(),
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
		{
			name: "missing-base-url",
			config: func() *Config {
				c := valid()
				c.BaseURL = ""
				return c
			}(),
			wantErr:   true,
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert, require := assert.New(t), require.New(t)
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
		})
	}
}

func TestConfig_redirectURL(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	c := &Config{BaseURL: "https://app.example.com"}
	assert.Equal("https://app.example.com/login", c.redirectURL())

	c.BaseURL = "https://app.example.com/"
	assert.Equal("https://app.example.com/login", c.redirectURL())

	c.LoginPath = "/auth/callback"
	assert.Equal("https://app.example.com/auth/callback", c.redirectURL())
}

func TestClientSecret_String(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert := assert.New(t)
		const want = RedactedClientSecret
		secret := ClientSecret("super secret")
		assert.Equalf(want, secret.String(), "ClientSecret.String() = %v, want %v", secret.String(), want)
	})
}

func TestClientSecret_MarshalJSON(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		want := fmt.Sprintf(`"%s"`, RedactedClientSecret)
		secret := ClientSecret("super secret")
		got, err := secret.MarshalJSON()
		require.NoError(err)
		assert.Equalf([]byte(want), got, "ClientSecret.MarshalJSON() = %s, want %s", got, want)
	})
}
