package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/repository"
)

type memPlayers struct {
	mu      sync.Mutex
	players map[string]*repository.Player
}

func (m *memPlayers) CreatePlayer(
	_ context.Context, params repository.CreatePlayerParams,
) (*repository.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[params.Username]; ok {
		return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	p := &repository.Player{
		PlayerID:     int64(len(m.players) + 1),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
	}
	m.players[p.Username] = p
	return p, nil
}

func (m *memPlayers) FetchPlayer(_ context.Context, username string) (*repository.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func newAuthServer(t *testing.T) http.Handler {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cookies, err := config.NewCookies(config.NewJWTFromKeys(key, &key.PublicKey))
	require.NoError(t, err)

	auth := NewAuth(discard, &memPlayers{players: map[string]*repository.Player{}}, cookies)
	auth.cost = bcrypt.MinCost

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/status", auth.Status)
	mux.HandleFunc("POST /auth/register", auth.Register)
	mux.HandleFunc("POST /auth/login", auth.Login)
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	return middleware.Auth(discard, cookies)(mux)
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func credentialsForm(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestRegisterAndLogin(t *testing.T) {
	h := newAuthServer(t)

	rec := postForm(h, "/auth/register", credentialsForm("alice", "hunter2"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.LoggedIn)
	require.NotNil(t, status.Player)
	assert.Equal(t, "alice", status.Player.Username)
	assert.Len(t, rec.Result().Cookies(), 2)

	// the issued cookies authenticate later requests
	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	statusRec := httptest.NewRecorder()
	h.ServeHTTP(statusRec, req)
	require.Equal(t, http.StatusOK, statusRec.Code)
	status = Status{}
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &status))
	assert.True(t, status.LoggedIn)
	assert.Equal(t, int64(1), status.Player.PlayerId)

	assert.Equal(t, http.StatusConflict,
		postForm(h, "/auth/register", credentialsForm("alice", "other")).Code)

	assert.Equal(t, http.StatusOK,
		postForm(h, "/auth/login", credentialsForm("alice", "hunter2")).Code)
	assert.Equal(t, http.StatusUnauthorized,
		postForm(h, "/auth/login", credentialsForm("alice", "wrong")).Code)
	assert.Equal(t, http.StatusUnauthorized,
		postForm(h, "/auth/login", credentialsForm("bob", "hunter2")).Code)
}

func TestCredentialsValidation(t *testing.T) {
	h := newAuthServer(t)

	assert.Equal(t, http.StatusBadRequest,
		postForm(h, "/auth/register", credentialsForm("alice", "")).Code)
	assert.Equal(t, http.StatusBadRequest,
		postForm(h, "/auth/register", credentialsForm("alice", strings.Repeat("x", 73))).Code)
	assert.Equal(t, http.StatusBadRequest,
		postForm(h, "/auth/login", url.Values{}).Code)
}

func TestAnonymousStatusAndLogout(t *testing.T) {
	h := newAuthServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"logged_in":false}`, rec.Body.String())

	rec = postForm(h, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	assert.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Negative(t, c.MaxAge, c.Name)
	}
}
