package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_String(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert := assert.New(t)
		const want = RedactedAccessToken
		tk := AccessToken("super secret token")
		assert.Equalf(want, tk.String(), "AccessToken.String() = %v, want %v", tk.String(), want)
	})
}

func TestAccessToken_MarshalJSON(t *testing.T) {
	t.Parallel()
	t.Run("redacted", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		want := fmt.Sprintf(`"%s"`, RedactedAccessToken)
		tk := AccessToken("super secret token")
		got, err := tk.MarshalJSON()
		require.NoError(err)
		assert.Equalf([]byte(want), got, "AccessToken.MarshalJSON() = %s, want %s", got, want)
	})
}

func Test_tokenExpiry(t *testing.T) {
	t.Parallel()
	t.Run("jwt-with-exp", func(t *testing.T) {
		assert := assert.New(t)
		exp := time.Now().Add(5 * time.Minute)
		got := tokenExpiry(testJWT(t, "access", 1, exp))
		assert.WithinDuration(exp, got, time.Second)
	})
	t.Run("opaque-token", func(t *testing.T) {
		assert := assert.New(t)
		assert.True(tokenExpiry("not-a-jwt").IsZero())
	})
	t.Run("empty", func(t *testing.T) {
		assert := assert.New(t)
		assert.True(tokenExpiry("").IsZero())
	})
}
