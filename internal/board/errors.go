package board

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("invalid board configuration")
	ErrOutOfBounds   = errors.New("coordinate out of bounds")
)

// ConfigurationError is returned by [New] when the requested dimensions or
// mine count cannot produce a playable board.
type ConfigurationError struct {
	Rows, Cols, MineCount int
	Reason                string
}

// [ConfigurationError] implements [error]
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(
		"cannot create %dx%d board with %d mines: %s",
		e.Rows, e.Cols, e.MineCount, e.Reason,
	)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

type OutOfBoundsError struct {
	Row, Col   int
	Rows, Cols int
}

// [OutOfBoundsError] implements [error]
func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"cell (%d, %d) is outside of %dx%d board",
		e.Row, e.Col, e.Rows, e.Cols,
	)
}

func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}
