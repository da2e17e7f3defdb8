package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GameRecord is the outcome of one finished board. Live boards are never
// written to the database.
type GameRecord struct {
	GameRecordID int64     `db:"game_record_id"`
	SessionID    uuid.UUID `db:"session_id"`
	PlayerID     *int64    `db:"player_id"`
	RowCount     int       `db:"row_count"`
	ColCount     int       `db:"col_count"`
	MineCount    int       `db:"mine_count"`
	Status       string    `db:"status"`
	OpenedCount  int       `db:"opened_count"`
	StartedAt    time.Time `db:"started_at"`
	EndedAt      time.Time `db:"ended_at"`
	CreatedAt    time.Time `db:"created_at"`
}

type CreateGameRecordParams struct {
	SessionID   uuid.UUID
	PlayerID    *int64
	RowCount    int
	ColCount    int
	MineCount   int
	Status      string
	OpenedCount int
	StartedAt   time.Time
	EndedAt     time.Time
}

func (q *Queries) CreateGameRecord(
	ctx context.Context, params CreateGameRecordParams,
) (*GameRecord, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_record (
			session_id, player_id, row_count, col_count, mine_count,
			status, opened_count, started_at, ended_at
		)
		VALUES (
			@session_id, @player_id, @row_count, @col_count, @mine_count,
			@status, @opened_count, @started_at, @ended_at
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"session_id":   params.SessionID,
			"player_id":    params.PlayerID,
			"row_count":    params.RowCount,
			"col_count":    params.ColCount,
			"mine_count":   params.MineCount,
			"status":       params.Status,
			"opened_count": params.OpenedCount,
			"started_at":   params.StartedAt,
			"ended_at":     params.EndedAt,
		},
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameRecord],
	)
}

type HistoryFilter struct {
	PlayerID  int64
	Status    *string
	RowCount  *int
	ColCount  *int
	MineCount *int
	Limit     int
}

func (f HistoryFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := []string{"player_id = @player_id"}
	args := pgx.NamedArgs{"player_id": f.PlayerID}
	if f.Status != nil {
		clauses = append(clauses, "status = @status")
		args["status"] = *f.Status
	}
	if f.RowCount != nil {
		clauses = append(clauses, "row_count = @row_count")
		args["row_count"] = *f.RowCount
	}
	if f.ColCount != nil {
		clauses = append(clauses, "col_count = @col_count")
		args["col_count"] = *f.ColCount
	}
	if f.MineCount != nil {
		clauses = append(clauses, "mine_count = @mine_count")
		args["mine_count"] = *f.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

const defaultHistoryLimit = 50

// ListGameRecords returns the player's finished games, newest first.
func (q *Queries) ListGameRecords(
	ctx context.Context, filter HistoryFilter,
) ([]GameRecord, error) {
	whereClause, args := filter.WhereClause()
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	args["limit"] = limit

	rows, err := q.db.Query(
		ctx,
		"SELECT * FROM game_record WHERE "+whereClause+
			" ORDER BY ended_at DESC LIMIT @limit;",
		args,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[GameRecord])
}
