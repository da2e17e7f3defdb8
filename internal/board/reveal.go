package board

import "github.com/gammazero/deque"

// Reveal opens the cell at (row, col). Revealing an open or flagged cell, or
// any cell once the game is over, does nothing. The first reveal on a board
// places the mines so that the 3x3 block around the clicked cell is clear.
//
// Opening a mine loses the game immediately. Opening a cell with no adjacent
// mines opens its unflagged neighbors, and so on across the whole zero
// region and its numbered border.
func (b *Board) Reveal(row, col int) error {
	if err := b.checkBounds(row, col); err != nil {
		return err
	}
	if b.status != Ongoing {
		return nil
	}
	i := b.index(row, col)
	if b.cells[i].open || b.cells[i].flagged {
		return nil
	}

	if !b.minesPlaced {
		b.placeMines(row, col)
	}

	if b.cells[i].mine {
		b.open(i)
		b.status = Lost
		return nil
	}

	b.floodOpen(i)
	b.checkWin()
	return nil
}

func (b *Board) open(i int) {
	b.cells[i].open = true
	b.openedCount++
}

// floodOpen opens start and expands breadth-first through zero cells. A cell
// is marked open as it is queued so no cell enters the queue twice.
func (b *Board) floodOpen(start int) {
	var todo deque.Deque[int]
	b.open(start)
	todo.PushBack(start)

	for todo.Len() > 0 {
		i := todo.PopFront()
		if b.cells[i].adjacent != 0 {
			continue
		}
		b.neighbors(i, func(j int) {
			c := &b.cells[j]
			if c.open || c.flagged || c.mine {
				return
			}
			b.open(j)
			todo.PushBack(j)
		})
	}
}

func (b *Board) checkWin() {
	if b.status == Ongoing && b.openedCount == len(b.cells)-b.mineCount {
		b.status = Won
	}
}
