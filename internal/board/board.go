// Package board implements the minesweeper board engine: lazy mine placement
// with a safe first click, adjacency numbers, flood-fill reveal, flags and
// win/loss detection. A Board is a plain value owned by its caller and is not
// safe for concurrent use.
package board

import (
	"fmt"
	"hash/maphash"
	"log/slog"
	"math/rand/v2"

	"github.com/zyedidia/generic/mapset"
)

var Log *slog.Logger = slog.Default()

const (
	DefaultRows      = 10
	DefaultCols      = 10
	DefaultMineCount = 10

	// MaxCells bounds rows*cols for any board.
	MaxCells = 1 << 22
)

type Point struct {
	Row, Col int
}

// Cell is a snapshot of one grid position. Values returned by [Board.Cell]
// are copies; mutating them has no effect on the board.
type Cell struct {
	mine     bool
	open     bool
	flagged  bool
	adjacent int8
}

func (c Cell) IsMine() bool    { return c.mine }
func (c Cell) IsOpen() bool    { return c.open }
func (c Cell) IsFlagged() bool { return c.flagged }

// Adjacent is the number of mines around the cell. It is only meaningful for
// open cells that are not mines.
func (c Cell) Adjacent() int { return int(c.adjacent) }

type Board struct {
	rows, cols  int
	mineCount   int
	cells       []Cell
	flags       mapset.Set[Point]
	openedCount int
	status      Status
	minesPlaced bool
	rnd         *rand.Rand
}

type Option func(*Board)

// WithRand sets the random source used for mine placement. The source is
// carried over by [Board.Reset].
func WithRand(r *rand.Rand) Option {
	return func(b *Board) {
		b.rnd = r
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// maxMines is the number of cells left over by the largest possible safe zone.
func maxMines(rows, cols int) int {
	return rows*cols - min(rows, 3)*min(cols, 3)
}

// Validate checks whether a board of the given shape can be built.
func Validate(rows, cols, mineCount int) error {
	fail := func(reason string) error {
		return &ConfigurationError{
			Rows: rows, Cols: cols, MineCount: mineCount, Reason: reason,
		}
	}
	switch {
	case rows <= 0:
		return fail("rows must be positive")
	case cols <= 0:
		return fail("cols must be positive")
	case rows > MaxCells/cols:
		return fail(fmt.Sprintf("board must not have more than %d cells", MaxCells))
	case mineCount < 0:
		return fail("mine count must not be negative")
	case mineCount > maxMines(rows, cols):
		return fail("not enough cells outside of the first-click safe zone")
	}
	return nil
}

func New(rows, cols, mineCount int, opts ...Option) (*Board, error) {
	if err := Validate(rows, cols, mineCount); err != nil {
		return nil, err
	}
	b := &Board{
		rows:      rows,
		cols:      cols,
		mineCount: mineCount,
		cells:     make([]Cell, rows*cols),
		flags:     mapset.New[Point](),
		status:    Ongoing,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rnd == nil {
		b.rnd = newRand()
	}
	return b, nil
}

// NewDefault builds a 10x10 board with 10 mines.
func NewDefault(opts ...Option) *Board {
	b, err := New(DefaultRows, DefaultCols, DefaultMineCount, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Reset returns a fresh board with the same dimensions, mine count and random
// source. The receiver is left untouched.
func (b *Board) Reset() *Board {
	fresh, err := New(b.rows, b.cols, b.mineCount, WithRand(b.rnd))
	if err != nil {
		// dimensions were validated when b was built
		panic(err)
	}
	return fresh
}

func (b *Board) Rows() int        { return b.rows }
func (b *Board) Cols() int        { return b.cols }
func (b *Board) MineCount() int   { return b.mineCount }
func (b *Board) OpenedCount() int { return b.openedCount }
func (b *Board) Status() Status   { return b.status }
func (b *Board) MinesPlaced() bool {
	return b.minesPlaced
}

func (b *Board) InBounds(row, col int) bool {
	return 0 <= row && row < b.rows && 0 <= col && col < b.cols
}

func (b *Board) Cell(row, col int) (Cell, error) {
	if err := b.checkBounds(row, col); err != nil {
		return Cell{}, err
	}
	return b.cells[b.index(row, col)], nil
}

// Mines lists mine coordinates in row-major order. It is empty until the
// first reveal places the mines.
func (b *Board) Mines() []Point {
	if !b.minesPlaced {
		return nil
	}
	mines := make([]Point, 0, b.mineCount)
	for i, c := range b.cells {
		if c.mine {
			mines = append(mines, b.point(i))
		}
	}
	return mines
}

func (b *Board) checkBounds(row, col int) error {
	if !b.InBounds(row, col) {
		return &OutOfBoundsError{Row: row, Col: col, Rows: b.rows, Cols: b.cols}
	}
	return nil
}

func (b *Board) index(row, col int) int {
	return row*b.cols + col
}

func (b *Board) point(i int) Point {
	return Point{Row: i / b.cols, Col: i % b.cols}
}

// neighbors calls fn with the index of every in-bounds cell of the 3x3 block
// centered on i, excluding i itself.
func (b *Board) neighbors(i int, fn func(j int)) {
	p := b.point(i)
	for r := max(p.Row-1, 0); r <= min(p.Row+1, b.rows-1); r++ {
		for c := max(p.Col-1, 0); c <= min(p.Col+1, b.cols-1); c++ {
			if j := b.index(r, c); j != i {
				fn(j)
			}
		}
	}
}
