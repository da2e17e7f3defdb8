package middleware

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/sweeper/internal/config"
)

func TestWrapOrder(t *testing.T) {
	var trace []string
	tag := func(name string) Middleware {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trace = append(trace, name)
				h.ServeHTTP(w, r)
			})
		}
	}
	h := Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			trace = append(trace, "handler")
		}),
		tag("inner"), nil, tag("outer"),
	)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/game?rows=3", nil))

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"uri":"/game?rows=3"`)
	assert.Contains(t, out, `"method":"POST"`)
}

func TestAuth(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cookies, err := config.NewCookies(config.NewJWTFromKeys(key, &key.PublicKey))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen *config.PlayerClaims
	h := Auth(logger, cookies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PlayerClaims(r.Context())
	}))

	t.Run("anonymous", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Nil(t, seen)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("logged in", func(t *testing.T) {
		login := httptest.NewRecorder()
		require.NoError(t, cookies.Refresh(login, config.NewPlayerClaims(5, "bob")))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, seen)
		assert.Equal(t, int64(5), seen.PlayerId)
	})

	t.Run("garbage cookies are cleared", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "auth", Value: "x.y"})
		req.AddCookie(&http.Cookie{Name: "sign", Value: "z"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Nil(t, seen)
		assert.Len(t, rec.Result().Cookies(), 2)
	})
}
