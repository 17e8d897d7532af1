// Package negamax implements exhaustive optimal play for tic-tac-toe.
package negamax

import (
	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
)

const (
	Win  = 1
	Loss = -1

	noScore = Loss - 1
)

// Result is a scored move. Score is from the perspective of the side to move.
type Result struct {
	Score int
	Index int
}

// Search finds the game-theoretically optimal move for side.
//
// Cells are tried in ascending order. The first immediate win ends the search. Otherwise the first move with
// the strictly greatest score is kept. The board is left as it was found.
//
// Searching a terminal board is a programming error; the returned Index is then -1.
func Search(b *ttt.Board, side game.Side) Result {
	best := Result{Score: noScore, Index: -1}
	opp := game.Opponent(side)
	for i := 0; i < game.Cells; i++ {
		if b.At(i) != game.Empty {
			continue
		}

		b.Place(side, i)
		var score int
		switch b.Check() {
		case game.Winner(side):
			b.Unplace(i)
			return Result{Score: Win, Index: i}
		case game.Draw:
			score = 0
		default:
			score = -Search(b, opp).Score
		}
		b.Unplace(i)

		if score > best.Score {
			best = Result{Score: score, Index: i}
		}
	}
	if best.Index < 0 {
		best.Score = 0
	}
	return best
}

// Best searches and plays the optimal move for side. It returns false if no move could be made.
func Best(b *ttt.Board, side game.Side) (Result, bool) {
	if b.Result().Ended() {
		return Result{Index: -1}, false
	}
	res := Search(b, side)
	if res.Index < 0 {
		return res, false
	}
	return res, b.Move(side, res.Index)
}
