package cookie

import (
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjvdw/oidc-demo/seal"
)

func testStore(t *testing.T, opt ...Option) *Store {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	suite, err := seal.New(key)
	require.NoError(t, err)
	store, err := NewStore(suite, nil, opt...)
	require.NoError(t, err)
	return store
}

// requestWith carries the cookies written to rec into a fresh request, the
// way a browser would on its next visit.
func requestWith(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "https://app.example.com/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return r
}

func TestNewStore(t *testing.T) {
	t.Parallel()
	t.Run("nil-suite", func(t *testing.T) {
		require := require.New(t)
		_, err := NewStore(nil, nil)
		require.Error(err)
	})
	t.Run("slot-names", func(t *testing.T) {
		assert := assert.New(t)
		store := testStore(t)
		assert.Equal(StateCookie, store.State.Name())
		assert.Equal(AccessTokenCookie, store.AccessToken.Name())
		assert.Equal(RefreshTokenCookie, store.RefreshToken.Name())
	})
}

func TestSlot_Set_attributes(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	store := testStore(t)

	rec := httptest.NewRecorder()
	require.NoError(store.State.Set(rec, "some-state"))

	cookies := rec.Result().Cookies()
	require.Len(cookies, 1)
	c := cookies[0]
	assert.Equal(StateCookie, c.Name)
	assert.Equal("some-state", c.Value)
	assert.Equal("/", c.Path)
	assert.True(c.HttpOnly)
	assert.True(c.Secure)
	assert.Equal(http.SameSiteLaxMode, c.SameSite)
}

func TestSlot_expiry(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	want := time.Now().Add(5 * time.Minute).Truncate(time.Second).UTC()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(err)
	suite, err := seal.New(key)
	require.NoError(err)
	store, err := NewStore(suite, func(string) time.Time { return want })
	require.NoError(err)

	rec := httptest.NewRecorder()
	require.NoError(store.AccessToken.Set(rec, "token"))
	cookies := rec.Result().Cookies()
	require.Len(cookies, 1)
	assert.WithinDuration(want, cookies[0].Expires, time.Second)

	// The state slot takes no expiry from the value.
	rec = httptest.NewRecorder()
	require.NoError(store.State.Set(rec, "state"))
	cookies = rec.Result().Cookies()
	require.Len(cookies, 1)
	assert.True(cookies[0].Expires.IsZero())
}

func TestSlot_roundTrip(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	store := testStore(t)

	rec := httptest.NewRecorder()
	require.NoError(store.State.Set(rec, "some-state"))
	require.NoError(store.AccessToken.Set(rec, "the-access-token"))
	require.NoError(store.RefreshToken.Set(rec, "the-refresh-token"))

	r := requestWith(t, rec)
	got, ok := store.State.Get(r)
	require.True(ok)
	assert.Equal("some-state", got)
	got, ok = store.AccessToken.Get(r)
	require.True(ok)
	assert.Equal("the-access-token", got)
	got, ok = store.RefreshToken.Get(r)
	require.True(ok)
	assert.Equal("the-refresh-token", got)
}

func TestSlot_sealed(t *testing.T) {
	t.Parallel()
	t.Run("ciphertext-on-the-wire", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := testStore(t)
		rec := httptest.NewRecorder()
		require.NoError(store.RefreshToken.Set(rec, "the-refresh-token"))
		cookies := rec.Result().Cookies()
		require.Len(cookies, 1)
		assert.NotContains(cookies[0].Value, "the-refresh-token")
	})
	t.Run("corrupted-cookie-reads-as-absent", func(t *testing.T) {
		assert := assert.New(t)
		store := testStore(t)
		r := httptest.NewRequest(http.MethodGet, "https://app.example.com/", nil)
		r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "not.a.ciphertext"})
		got, ok := store.RefreshToken.Get(r)
		assert.False(ok)
		assert.Empty(got)
	})
	t.Run("cookie-from-another-key-reads-as-absent", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		store := testStore(t)
		other := testStore(t)
		rec := httptest.NewRecorder()
		require.NoError(other.RefreshToken.Set(rec, "the-refresh-token"))
		got, ok := store.RefreshToken.Get(requestWith(t, rec))
		assert.False(ok)
		assert.Empty(got)
	})
}

func TestSlot_Get_missing(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	store := testStore(t)
	r := httptest.NewRequest(http.MethodGet, "https://app.example.com/", nil)
	got, ok := store.AccessToken.Get(r)
	assert.False(ok)
	assert.Empty(got)
}

func TestSlot_Clear(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	store := testStore(t)

	rec := httptest.NewRecorder()
	store.AccessToken.Clear(rec)
	cookies := rec.Result().Cookies()
	require.Len(cookies, 1)
	assert.Equal(AccessTokenCookie, cookies[0].Name)
	assert.Negative(cookies[0].MaxAge)
	assert.Empty(cookies[0].Value)
	assert.Equal("/", cookies[0].Path)
}
