package board

import "log/slog"

// placeMines lays mineCount mines uniformly at random outside of the 3x3
// block around (safeRow, safeCol), then fills in adjacency numbers. It runs
// once per board, on the first reveal.
func (b *Board) placeMines(safeRow, safeCol int) {
	/*
	 * Write down every cell that is not within one square of the first
	 * click, then pick mineCount of them without replacement.
	 */
	candidates := make([]int, 0, len(b.cells))
	for i := range b.cells {
		p := b.point(i)
		if absDiff(p.Row, safeRow) > 1 || absDiff(p.Col, safeCol) > 1 {
			candidates = append(candidates, i)
		}
	}

	k := len(candidates)
	for range b.mineCount {
		j := b.rnd.IntN(k)
		b.cells[candidates[j]].mine = true
		k--
		candidates[j] = candidates[k]
	}

	b.minesPlaced = true
	b.computeAdjacency()

	Log.Debug(
		"placed mines",
		slog.Int("rows", b.rows),
		slog.Int("cols", b.cols),
		slog.Int("mines", b.mineCount),
		slog.Any("safe", Point{safeRow, safeCol}),
	)
}

func (b *Board) computeAdjacency() {
	for i := range b.cells {
		if b.cells[i].mine {
			continue
		}
		var n int8
		b.neighbors(i, func(j int) {
			if b.cells[j].mine {
				n++
			}
		})
		b.cells[i].adjacent = n
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
