package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/repository"
)

type PlayerStore interface {
	CreatePlayer(context.Context, repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
}

type Auth struct {
	logger  *slog.Logger
	players PlayerStore
	cookies *config.Cookies
	cost    int
}

func NewAuth(logger *slog.Logger, players PlayerStore, cookies *config.Cookies) *Auth {
	return &Auth{
		logger:  logger,
		players: players,
		cookies: cookies,
		cost:    bcrypt.DefaultCost,
	}
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = fmt.Errorf("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = fmt.Errorf("password too long")
	ErrUsernameTaken      = fmt.Errorf("username taken")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrNotLoggedIn        = fmt.Errorf("not logged in")
)

func (a Auth) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		sendJSONOrLog(w, a.logger, Status{LoggedIn: false})
		return
	}

	if err := a.cookies.Refresh(w, config.NewPlayerClaims(claims.PlayerId, claims.Username)); err != nil {
		internalError(w, a.logger, "unable to refresh cookies", err)
		return
	}
	sendJSONOrLog(w, a.logger, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerId, claims.Username},
	})
}

func credentials(r *http.Request) (username, password string, err error) {
	if err := r.ParseForm(); err != nil {
		return "", "", ErrBadAuthBody
	}
	username = r.FormValue("username")
	password = r.FormValue("password")
	if username == "" || password == "" {
		return "", "", ErrBadAuthBody
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return "", "", ErrBadPasswordTooLong
	}
	return username, password, nil
}

func (a Auth) Register(w http.ResponseWriter, r *http.Request) {
	username, password, err := credentials(r)
	if err != nil {
		sendErrorOrLog(w, a.logger, http.StatusBadRequest, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		internalError(w, a.logger, "unable to hash password", err)
		return
	}

	player, err := a.players.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		sendErrorOrLog(w, a.logger, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		internalError(w, a.logger, "unable to insert player", err)
		return
	}

	a.login(w, player)
}

func (a Auth) Login(w http.ResponseWriter, r *http.Request) {
	username, password, err := credentials(r)
	if err != nil {
		sendErrorOrLog(w, a.logger, http.StatusBadRequest, err)
		return
	}

	player, err := a.players.FetchPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendErrorOrLog(w, a.logger, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}
	if err != nil {
		internalError(w, a.logger, "unable to fetch player", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(player.PasswordHash, []byte(password)); err != nil {
		sendErrorOrLog(w, a.logger, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}

	a.login(w, player)
}

func (a Auth) login(w http.ResponseWriter, player *repository.Player) {
	claims := config.NewPlayerClaims(player.PlayerID, player.Username)
	if err := a.cookies.Refresh(w, claims); err != nil {
		internalError(w, a.logger, "unable to create a jwt token", err)
		return
	}
	sendJSONOrLog(w, a.logger, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{player.PlayerID, player.Username},
	})
}

func (a Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
