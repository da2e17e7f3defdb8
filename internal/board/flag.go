package board

import "slices"

// ToggleFlag flips the flag on a closed cell. Open cells and finished games
// are left alone.
func (b *Board) ToggleFlag(row, col int) error {
	if err := b.checkBounds(row, col); err != nil {
		return err
	}
	if b.status != Ongoing {
		return nil
	}
	i := b.index(row, col)
	c := &b.cells[i]
	if c.open {
		return nil
	}

	c.flagged = !c.flagged
	if c.flagged {
		b.flags.Put(Point{row, col})
	} else {
		b.flags.Remove(Point{row, col})
	}
	return nil
}

func (b *Board) IsFlagged(row, col int) bool {
	return b.flags.Has(Point{row, col})
}

func (b *Board) FlagCount() int {
	return b.flags.Size()
}

// Flags lists flagged coordinates in row-major order.
func (b *Board) Flags() []Point {
	flags := make([]Point, 0, b.flags.Size())
	b.flags.Each(func(p Point) {
		flags = append(flags, p)
	})
	slices.SortFunc(flags, func(p, q Point) int {
		if p.Row != q.Row {
			return p.Row - q.Row
		}
		return p.Col - q.Col
	})
	return flags
}

// Remaining is the mine count minus the number of flags. It goes negative
// when the player places more flags than there are mines.
func (b *Board) Remaining() int {
	return b.mineCount - b.flags.Size()
}
