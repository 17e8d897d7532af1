package game

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidArgument is returned (or panicked with) when a caller passes a malformed argument,
// such as a cell index outside the board.
var ErrInvalidArgument = errors.New("invalid argument")

// Cells is the number of cells on a tic-tac-toe board.
const Cells = 9

// Mark is the content of a single cell.
type Mark int32

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) Format(s fmt.State, c rune) {
	switch c {
	case 'v': // used in debug
		switch m {
		case Empty:
			fmt.Fprint(s, "Empty")
		case X:
			fmt.Fprint(s, "X")
		case O:
			fmt.Fprint(s, "O")
		}
	case 's': // used in board rendering
		switch m {
		case Empty:
			fmt.Fprint(s, "·")
		case X:
			fmt.Fprint(s, "X")
		case O:
			fmt.Fprint(s, "O")
		}
	}
}

// Byte returns the single byte used for the mark in board keys.
func (m Mark) Byte() byte {
	switch m {
	case X:
		return 'X'
	case O:
		return 'O'
	}
	return '-'
}

// Side represents a player. It's also a mark.
type Side Mark

const (
	NoSide = Side(Empty)
	SideX  = Side(X)
	SideO  = Side(O)
)

func (p Side) Format(s fmt.State, c rune) { Mark(p).Format(s, c) }

// Valid returns true for X and O.
func (p Side) Valid() bool { return p == SideX || p == SideO }

// Opponent returns the other side.
func Opponent(p Side) Side {
	switch p {
	case SideX:
		return SideO
	case SideO:
		return SideX
	}
	panic("Unreachable")
}

// Result is the outcome of a board: no result yet, a winner, or a draw.
type Result int32

const (
	None Result = iota
	XWins
	OWins
	Draw
)

// Winner returns the result that represents a win for p.
func Winner(p Side) Result {
	switch p {
	case SideX:
		return XWins
	case SideO:
		return OWins
	}
	panic("Unreachable")
}

// Ended returns true when the result is terminal.
func (r Result) Ended() bool { return r != None }

// Side returns the winning side, or NoSide for None and Draw.
func (r Result) Side() Side {
	switch r {
	case XWins:
		return SideX
	case OWins:
		return SideO
	}
	return NoSide
}

func (r Result) Format(s fmt.State, c rune) {
	switch r {
	case None:
		fmt.Fprint(s, "None")
	case XWins:
		fmt.Fprint(s, "X")
	case OWins:
		fmt.Fprint(s, "O")
	case Draw:
		fmt.Fprint(s, "Draw")
	}
}

// PlayerMove is a tuple indicating the side and the cell played.
type PlayerMove struct {
	Side
	Index int
}

func (p PlayerMove) Format(s fmt.State, c rune) { fmt.Fprintf(s, "%v@%d", p.Side, p.Index) }

// MetaState is the state of an episode, as seen by an OutputEncoder.
type MetaState interface {
	Name() string // name of the run
	Episode() int
	LastMove() PlayerMove
	Board() [Cells]Mark
	Result() Result
}
