// Package view projects a board into what a player is allowed to see.
package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/sweeper/internal/board"
)

type CellState string

const (
	Hidden    CellState = "hidden"
	Flagged   CellState = "flagged"
	Opened    CellState = "opened"
	Mine      CellState = "mine"       // unflagged mine shown after a loss
	Exploded  CellState = "exploded"   // the mine that lost the game
	WrongFlag CellState = "wrong_flag" // flag on a safe cell, shown after a loss
)

type Cell struct {
	State CellState `json:"state"`
	Count *int      `json:"count,omitempty"`
}

type Game struct {
	Rows           int          `json:"rows"`
	Cols           int          `json:"cols"`
	MineCount      int          `json:"mine_count"`
	OpenedCount    int          `json:"opened_count"`
	FlagCount      int          `json:"flag_count"`
	MinesRemaining int          `json:"mines_remaining"`
	Status         board.Status `json:"status"`
	Cells          [][]Cell     `json:"cells"`
}

func cellState(c board.Cell, status board.Status) Cell {
	switch {
	case c.IsOpen() && c.IsMine():
		return Cell{State: Exploded}
	case c.IsOpen():
		n := c.Adjacent()
		return Cell{State: Opened, Count: &n}
	case status == board.Lost && c.IsFlagged() && !c.IsMine():
		return Cell{State: WrongFlag}
	case c.IsFlagged():
		return Cell{State: Flagged}
	case status == board.Lost && c.IsMine():
		return Cell{State: Mine}
	case status == board.Won && c.IsMine():
		return Cell{State: Flagged}
	default:
		return Cell{State: Hidden}
	}
}

func New(b *board.Board) Game {
	status := b.Status()
	cells := make([][]Cell, b.Rows())
	for r := range b.Rows() {
		cells[r] = make([]Cell, b.Cols())
		for c := range b.Cols() {
			cell, _ := b.Cell(r, c)
			cells[r][c] = cellState(cell, status)
		}
	}
	return Game{
		Rows:           b.Rows(),
		Cols:           b.Cols(),
		MineCount:      b.MineCount(),
		OpenedCount:    b.OpenedCount(),
		FlagCount:      b.FlagCount(),
		MinesRemaining: b.Remaining(),
		Status:         status,
		Cells:          cells,
	}
}

func (c Cell) String() string {
	switch c.State {
	case Hidden:
		return "-"
	case Flagged:
		return "F"
	case Mine:
		return "*"
	case Exploded:
		return "X"
	case WrongFlag:
		return "x"
	case Opened:
		if c.Count == nil || *c.Count == 0 {
			return "."
		}
		return strconv.Itoa(*c.Count)
	default:
		return "?"
	}
}

// Text renders the board as a monospace grid with row and column indices.
func Text(b *board.Board) string {
	g := New(b)
	var sb strings.Builder
	width := len(strconv.Itoa(max(g.Rows, g.Cols) - 1))

	fmt.Fprintf(&sb, "%*s ", width, "")
	for c := range g.Cols {
		fmt.Fprintf(&sb, " %*d", width, c)
	}
	sb.WriteByte('\n')
	for r, row := range g.Cells {
		fmt.Fprintf(&sb, "%*d ", width, r)
		for _, cell := range row {
			fmt.Fprintf(&sb, " %*s", width, cell)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%s, %d mines left\n", g.Status, g.MinesRemaining)
	return sb.String()
}
