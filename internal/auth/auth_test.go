package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahFrank/pollify/internal/config"
	"github.com/NoahFrank/pollify/internal/session"
)

func testHandler() *Handler {
	cfg := &config.Config{
		SpotifyClientID:     "client-id",
		SpotifyClientSecret: "client-secret",
		SpotifyRedirectURL:  "http://localhost:3000/auth/spotify/callback",
	}
	return NewHandler(OAuthConfig(cfg), session.NewManager("test-secret"), nil, nil, nil)
}

func TestHandleLogin(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	loc := rr.Header().Get("Location")
	assert.Contains(t, loc, "accounts.spotify.com")
	assert.Contains(t, loc, "client_id=client-id")
	assert.Contains(t, loc, "user-modify-playback-state")

	var state string
	for _, c := range rr.Result().Cookies() {
		if c.Name == stateCookieName {
			state = c.Value
		}
	}
	require.NotEmpty(t, state, "state cookie must be set")
	assert.Contains(t, loc, "state="+state)
}

func TestHandleCallbackStateMismatch(t *testing.T) {
	h := testHandler()

	t.Run("missing state cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/callback?state=abc&code=xyz", nil)
		rr := httptest.NewRecorder()
		h.Router().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("mismatched state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/callback?state=evil&code=xyz", nil)
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "expected"})
		rr := httptest.NewRecorder()
		h.Router().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("denied authorization has no code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/callback?state=good", nil)
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "good"})
		rr := httptest.NewRecorder()
		h.Router().ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
