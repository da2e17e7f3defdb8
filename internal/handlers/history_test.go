package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/repository"
)

type fakeHistory struct {
	filter  repository.HistoryFilter
	records []repository.GameRecord
}

func (f *fakeHistory) ListGameRecords(
	_ context.Context, filter repository.HistoryFilter,
) ([]repository.GameRecord, error) {
	f.filter = filter
	return f.records, nil
}

func TestHistoryList(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeHistory{records: []repository.GameRecord{{
		SessionID:   uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		RowCount:    9,
		ColCount:    9,
		MineCount:   10,
		Status:      "won",
		OpenedCount: 71,
		StartedAt:   started,
		EndedAt:     started.Add(83 * time.Second),
	}}}
	history := NewHistory(discard, store)

	list := func(query string, claims *config.PlayerClaims) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/history"+query, nil)
		if claims != nil {
			req = req.WithContext(middleware.WithPlayerClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		history.List(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, list("", nil).Code)

	claims := config.NewPlayerClaims(3, "carol")
	rec := list("?status=won&rows=9&limit=5", claims)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out []GameRecordDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "7d444840-9dc0-11d1-b245-5ffdce74fad2", out[0].GameSessionID)
	assert.Equal(t, int64(83000), out[0].PlaytimeMs)
	assert.Equal(t, started.UnixMilli(), out[0].StartedAt)

	assert.Equal(t, int64(3), store.filter.PlayerID)
	require.NotNil(t, store.filter.Status)
	assert.Equal(t, "won", *store.filter.Status)
	require.NotNil(t, store.filter.RowCount)
	assert.Equal(t, 9, *store.filter.RowCount)
	assert.Nil(t, store.filter.ColCount)
	assert.Equal(t, 5, store.filter.Limit)

	assert.Equal(t, http.StatusBadRequest, list("?status=abandoned", claims).Code)
	assert.Equal(t, http.StatusBadRequest, list("?limit=1000", claims).Code)
}

func TestHistoryEmpty(t *testing.T) {
	history := NewHistory(discard, &fakeHistory{})
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req = req.WithContext(middleware.WithPlayerClaims(req.Context(), config.NewPlayerClaims(1, "dave")))
	rec := httptest.NewRecorder()
	history.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
