package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/repository"
)

type HistoryStore interface {
	ListGameRecords(context.Context, repository.HistoryFilter) ([]repository.GameRecord, error)
}

type History struct {
	logger  *slog.Logger
	records HistoryStore
}

func NewHistory(logger *slog.Logger, records HistoryStore) *History {
	return &History{logger: logger, records: records}
}

type GameRecordDTO struct {
	GameSessionID string `json:"game_session_id"`
	Rows          int    `json:"rows"`
	Cols          int    `json:"cols"`
	MineCount     int    `json:"mine_count"`
	Status        string `json:"status"`
	OpenedCount   int    `json:"opened_count"`
	StartedAt     int64  `json:"started_at"`
	EndedAt       int64  `json:"ended_at"`
	PlaytimeMs    int64  `json:"playtime_ms"`
}

func newGameRecordDTO(r repository.GameRecord) GameRecordDTO {
	return GameRecordDTO{
		GameSessionID: r.SessionID.String(),
		Rows:          r.RowCount,
		Cols:          r.ColCount,
		MineCount:     r.MineCount,
		Status:        r.Status,
		OpenedCount:   r.OpenedCount,
		StartedAt:     r.StartedAt.UnixMilli(),
		EndedAt:       r.EndedAt.UnixMilli(),
		PlaytimeMs:    r.EndedAt.Sub(r.StartedAt).Milliseconds(),
	}
}

// List returns the logged in player's finished games.
func (h History) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		sendErrorOrLog(w, h.logger, http.StatusUnauthorized, ErrNotLoggedIn)
		return
	}

	dto, err := ParseHistoryDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	records, err := h.records.ListGameRecords(r.Context(), repository.HistoryFilter{
		PlayerID:  claims.PlayerId,
		Status:    dto.Status,
		RowCount:  dto.Rows,
		ColCount:  dto.Cols,
		MineCount: dto.MineCount,
		Limit:     dto.Limit,
	})
	if err != nil {
		internalError(w, h.logger, "unable to list game records", err)
		return
	}

	out := make([]GameRecordDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, newGameRecordDTO(rec))
	}
	sendJSONOrLog(w, h.logger, out)
}
