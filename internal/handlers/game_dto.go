package handlers

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/schema"

	"github.com/vancomm/sweeper/internal/board"
	"github.com/vancomm/sweeper/internal/session"
	"github.com/vancomm/sweeper/internal/view"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

// NewGameDTO carries optional board parameters; missing ones fall back to
// the configured defaults.
type NewGameDTO struct {
	Rows      *int `schema:"rows"`
	Cols      *int `schema:"cols"`
	MineCount *int `schema:"mine_count"`
}

func ParseNewGameDTO(src url.Values) (NewGameDTO, error) {
	var dto NewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type Move string

const (
	Open Move = "open"
	Flag Move = "flag"
)

type MoveDTO struct {
	Move Move `schema:"move,required"`
	Row  int  `schema:"row,required"`
	Col  int  `schema:"col,required"`
}

func ParseMoveDTO(src url.Values) (MoveDTO, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	switch dto.Move {
	case Open, Flag:
		return dto, nil
	}
	return dto, fmt.Errorf("unknown move %q", dto.Move)
}

type HistoryDTO struct {
	Status    *string `schema:"status"`
	Rows      *int    `schema:"rows"`
	Cols      *int    `schema:"cols"`
	MineCount *int    `schema:"mine_count"`
	Limit     int     `schema:"limit"`
}

func ParseHistoryDTO(src url.Values) (HistoryDTO, error) {
	var dto HistoryDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if dto.Status != nil && *dto.Status != "won" && *dto.Status != "lost" {
		return dto, fmt.Errorf("status must be won or lost")
	}
	if dto.Limit < 0 || dto.Limit > 500 {
		return dto, fmt.Errorf("limit must be between 0 and 500")
	}
	return dto, nil
}

type SessionDTO struct {
	GameSessionID string    `json:"game_session_id"`
	StartedAt     int64     `json:"started_at"`
	EndedAt       *int64    `json:"ended_at,omitempty"`
	Game          view.Game `json:"game"`
}

func newSessionDTO(s *session.Session) *SessionDTO {
	var dto *SessionDTO
	s.View(func(snap session.Snapshot, b *board.Board) {
		dto = &SessionDTO{
			GameSessionID: snap.ID.String(),
			StartedAt:     snap.StartedAt.UnixMilli(),
			EndedAt:       unixMilli(snap.EndedAt),
			Game:          view.New(b),
		}
	})
	return dto
}

func unixMilli(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
