package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vancomm/sweeper/internal/board"
)

const (
	defaultMaxRows = 100
	defaultMaxCols = 100
)

// Board holds the parameters used when a new game does not specify its own,
// and the largest shape a client may ask for.
type Board struct {
	Rows      int
	Cols      int
	MineCount int
	MaxRows   int
	MaxCols   int
}

// Allows reports whether a client may request a rows x cols board.
func (b Board) Allows(rows, cols int) bool {
	return rows <= b.MaxRows && cols <= b.MaxCols
}

func envInt(name string, fallback int) (int, error) {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return n, nil
}

func NewBoard() (*Board, error) {
	rows, err := envInt("BOARD_ROWS", board.DefaultRows)
	if err != nil {
		return nil, err
	}
	cols, err := envInt("BOARD_COLS", board.DefaultCols)
	if err != nil {
		return nil, err
	}
	mines, err := envInt("BOARD_MINES", board.DefaultMineCount)
	if err != nil {
		return nil, err
	}
	maxRows, err := envInt("BOARD_MAX_ROWS", defaultMaxRows)
	if err != nil {
		return nil, err
	}
	maxCols, err := envInt("BOARD_MAX_COLS", defaultMaxCols)
	if err != nil {
		return nil, err
	}
	if err := board.Validate(maxRows, maxCols, 0); err != nil {
		return nil, fmt.Errorf("invalid board size limit: %w", err)
	}
	if err := board.Validate(rows, cols, mines); err != nil {
		return nil, fmt.Errorf("invalid default board: %w", err)
	}
	if rows > maxRows || cols > maxCols {
		return nil, fmt.Errorf(
			"default board %dx%d exceeds the %dx%d limit", rows, cols, maxRows, maxCols,
		)
	}
	return &Board{
		Rows:      rows,
		Cols:      cols,
		MineCount: mines,
		MaxRows:   maxRows,
		MaxCols:   maxCols,
	}, nil
}

type Session struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

func NewSession() (*Session, error) {
	cfg := &Session{
		IdleTimeout:   time.Hour,
		SweepInterval: time.Minute,
	}
	if s, ok := os.LookupEnv("SESSION_IDLE_TIMEOUT"); ok && s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be a duration: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
		}
		cfg.IdleTimeout = d
		cfg.SweepInterval = min(cfg.SweepInterval, d)
	}
	return cfg, nil
}
