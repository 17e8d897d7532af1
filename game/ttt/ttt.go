package ttt

import (
	"fmt"

	"github.com/gorgonia/tictac/game"
	"github.com/pkg/errors"
)

var (
	Cross  = game.SideX
	Nought = game.SideO
)

// Lines are the 8 winning triples: rows first, then columns, then diagonals.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 tic-tac-toe board. The zero value is an empty board.
type Board struct {
	cells  [game.Cells]game.Mark
	result game.Result
}

// New creates a new empty board.
func New() *Board { return new(Board) }

func (b *Board) Format(s fmt.State, c rune) {
	for i, m := range b.cells {
		if i%3 == 0 {
			fmt.Fprint(s, "⎢ ")
		}
		fmt.Fprintf(s, "%s ", m)
		if (i+1)%3 == 0 {
			fmt.Fprint(s, "⎥\n")
		}
	}
}

// Reset clears every cell and the result.
func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = game.Empty
	}
	b.result = game.None
}

// Validate returns an error wrapping game.ErrInvalidArgument if i is not a cell index.
func (b *Board) Validate(i int) error {
	if i < 0 || i >= game.Cells {
		return errors.Wrapf(game.ErrInvalidArgument, "cell %d is outside [0, %d)", i, game.Cells)
	}
	return nil
}

// Move places side's mark on cell i. It returns false and leaves the board untouched
// if the game has ended or the cell is occupied.
//
// A cell index outside the board or a side other than X or O is a programming error and panics.
func (b *Board) Move(side game.Side, i int) bool {
	if err := b.Validate(i); err != nil {
		panic(err)
	}
	if !side.Valid() {
		panic(errors.Wrapf(game.ErrInvalidArgument, "cannot move for side %v", side))
	}
	if b.result.Ended() || b.cells[i] != game.Empty {
		return false
	}
	b.cells[i] = game.Mark(side)
	b.result = b.Check()
	return true
}

// Check evaluates the cells. It does not use nor update the cached result.
func (b *Board) Check() game.Result {
	for _, l := range Lines {
		m := b.cells[l[0]]
		if m != game.Empty && m == b.cells[l[1]] && m == b.cells[l[2]] {
			return game.Winner(game.Side(m))
		}
	}
	if b.Full() {
		return game.Draw
	}
	return game.None
}

// Result returns the result recorded by the last successful Move.
func (b *Board) Result() game.Result { return b.result }

// State returns a copy of the cells.
func (b *Board) State() [game.Cells]game.Mark { return b.cells }

// At returns the mark on cell i.
func (b *Board) At(i int) game.Mark { return b.cells[i] }

// Set replaces all cells and recomputes the result. It is meant for setting up positions.
func (b *Board) Set(cells [game.Cells]game.Mark) {
	b.cells = cells
	b.result = b.Check()
}

// Full returns true if there are no empty cells.
func (b *Board) Full() bool {
	for _, m := range b.cells {
		if m == game.Empty {
			return false
		}
	}
	return true
}

// Empty returns the indices of the empty cells in ascending order.
func (b *Board) Empty() []int {
	retVal := make([]int, 0, game.Cells)
	for i, m := range b.cells {
		if m == game.Empty {
			retVal = append(retVal, i)
		}
	}
	return retVal
}

// Key returns the canonical key of the board: one byte per cell, '-' for empty.
func (b *Board) Key() string {
	var buf [game.Cells]byte
	for i, m := range b.cells {
		buf[i] = m.Byte()
	}
	return string(buf[:])
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	retVal := *b
	return &retVal
}

// Eq returns true if both boards hold the same cells.
func (b *Board) Eq(other *Board) bool { return b.cells == other.cells }

// Place and Unplace write a cell directly, bypassing legality checks and the result cache.
// Searches use them to explore hypothetical moves; every Place must be undone by Unplace.
func (b *Board) Place(side game.Side, i int) { b.cells[i] = game.Mark(side) }
func (b *Board) Unplace(i int)               { b.cells[i] = game.Empty }
