package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vancomm/sweeper/internal/board"
	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/repository"
	"github.com/vancomm/sweeper/internal/session"
)

// Recorder stores the outcome of finished games.
type Recorder interface {
	CreateGameRecord(context.Context, repository.CreateGameRecordParams) (*repository.GameRecord, error)
}

type GameHandler struct {
	logger   *slog.Logger
	sessions *session.Store
	defaults config.Board
	ws       *config.WebSocket
	recorder Recorder
}

// NewGameHandler builds the game endpoints. recorder may be nil, in which
// case finished games are not persisted.
func NewGameHandler(
	logger *slog.Logger,
	sessions *session.Store,
	defaults config.Board,
	ws *config.WebSocket,
	recorder Recorder,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		sessions: sessions,
		defaults: defaults,
		ws:       ws,
		recorder: recorder,
	}
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrConfiguration), errors.Is(err, board.ErrOutOfBounds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (g GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, errors.New("invalid game session id"))
		return nil, false
	}
	s, ok := g.sessions.Get(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseNewGameDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	rows, cols, mines := g.defaults.Rows, g.defaults.Cols, g.defaults.MineCount
	if dto.Rows != nil {
		rows = *dto.Rows
	}
	if dto.Cols != nil {
		cols = *dto.Cols
	}
	if dto.MineCount != nil {
		mines = *dto.MineCount
	}

	if !g.defaults.Allows(rows, cols) {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, fmt.Errorf(
			"board must not exceed %dx%d", g.defaults.MaxRows, g.defaults.MaxCols,
		))
		return
	}

	var playerID *int64
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		playerID = &claims.PlayerId
	}

	s, err := g.sessions.Create(rows, cols, mines, playerID)
	if err != nil {
		sendErrorOrLog(w, g.logger, statusFor(err), err)
		return
	}

	sendJSONOrLog(w, g.logger, newSessionDTO(s))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, g.logger, newSessionDTO(s))
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}

	move, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	if err := g.apply(r.Context(), s, move); err != nil {
		sendErrorOrLog(w, g.logger, statusFor(err), err)
		return
	}

	sendJSONOrLog(w, g.logger, newSessionDTO(s))
}

func (g GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	s.Reset()
	sendJSONOrLog(w, g.logger, newSessionDTO(s))
}

func (g GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}
	g.sessions.Delete(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

// apply performs one move and records the game if that move finished it.
func (g GameHandler) apply(ctx context.Context, s *session.Session, move MoveDTO) error {
	ended, err := s.Do(func(b *board.Board) error {
		switch move.Move {
		case Open:
			return b.Reveal(move.Row, move.Col)
		case Flag:
			return b.ToggleFlag(move.Row, move.Col)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if ended {
		g.record(ctx, s)
	}
	return nil
}

func (g GameHandler) record(ctx context.Context, s *session.Session) {
	var (
		params   repository.CreateGameRecordParams
		finished bool
	)
	s.View(func(snap session.Snapshot, b *board.Board) {
		// a reset may have slipped in since the finishing move
		if snap.EndedAt == nil {
			return
		}
		finished = true
		params = repository.CreateGameRecordParams{
			SessionID:   snap.ID,
			PlayerID:    snap.PlayerID,
			RowCount:    b.Rows(),
			ColCount:    b.Cols(),
			MineCount:   b.MineCount(),
			Status:      b.Status().String(),
			OpenedCount: b.OpenedCount(),
			StartedAt:   snap.StartedAt,
			EndedAt:     *snap.EndedAt,
		}
	})
	if !finished {
		return
	}

	g.logger.Info(
		"game finished",
		slog.String("session", params.SessionID.String()),
		slog.String("status", params.Status),
		slog.Duration("playtime", params.EndedAt.Sub(params.StartedAt)),
	)

	if g.recorder == nil {
		return
	}
	if _, err := g.recorder.CreateGameRecord(ctx, params); err != nil {
		g.logger.Error("unable to record finished game", slog.Any("error", err))
	}
}
