// Package agent holds the players of a tic-tac-toe episode: a uniform random mover, a negamax optimal player,
// and two learners, one backed by a value table and one by a neural network.
package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
	"github.com/pkg/errors"
)

// ErrGameOver is returned when a player is asked to act on a board that has no legal move.
var ErrGameOver = errors.New("game has ended")

// Kind is a decision strategy.
type Kind int

const (
	Random Kind = iota
	Optimal
	Tabular
	Approximate
	MAXKIND
)

var kindNames = [...]string{"random", "optimal", "tabular", "approximate"}

func (k Kind) String() string {
	if k < 0 || k >= MAXKIND {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses the name of a strategy, case insensitively.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return Random, errors.Wrapf(game.ErrInvalidArgument, "unknown strategy %q", s)
}

// Learns returns true for the strategies that learn from episodes.
func (k Kind) Learns() bool { return k == Tabular || k == Approximate }

// Player is anything that can take a side in an episode.
type Player interface {
	Side() game.Side
	Kind() Kind

	// Bind sets the board of the current episode.
	Bind(b *ttt.Board)
	// Reset clears the per-episode trajectory.
	Reset()
	// Act chooses a move on the bound board, records it and plays it.
	Act() (int, error)
	// Choose returns the move the player would make on b, without recording it or touching b.
	Choose(b *ttt.Board) (int, error)

	Opponent() Player
	SetOpponent(Player)
}

// Learner is a Player that learns from the outcome of an episode.
type Learner interface {
	Player

	// Final consumes the trajectory of the episode, given the reward the learner received.
	Final(ctx context.Context, reward float32) error
	// SetTraining switches exploration on or off.
	SetTraining(bool)
	// Moves returns the number of moves recorded in the current episode.
	Moves() int
	// Epsilon returns the current exploration probability.
	Epsilon() float32
}

// Link wires two players as each other's opponent.
func Link(a, b Player) {
	a.SetOpponent(b)
	b.SetOpponent(a)
}

// New creates a player of the given kind. Learners are created with their own fresh state; Approximate
// players need an initialized network and are created with NewApprox instead.
func New(kind Kind, side game.Side, conf Config, r *rand.Rand) (Player, error) {
	if !side.Valid() {
		return nil, errors.Wrapf(game.ErrInvalidArgument, "invalid side %v", side)
	}
	switch kind {
	case Random:
		return NewRandom(side, r), nil
	case Optimal:
		return NewOptimal(side), nil
	case Tabular:
		return NewTabular(side, conf, r), nil
	}
	return nil, errors.Wrapf(game.ErrInvalidArgument, "cannot create a %v player with New", kind)
}

type base struct {
	side     game.Side
	board    *ttt.Board
	opponent Player
}

func (b *base) Side() game.Side      { return b.side }
func (b *base) Bind(board *ttt.Board) { b.board = board }
func (b *base) Opponent() Player      { return b.opponent }
func (b *base) SetOpponent(p Player)  { b.opponent = p }

func (b *base) check(board *ttt.Board) error {
	if board == nil {
		return errors.New("no board bound")
	}
	if board.Result().Ended() || board.Full() {
		return ErrGameOver
	}
	return nil
}

// play applies a chosen move to the bound board.
func (b *base) play(i int) (int, error) {
	if !b.board.Move(b.side, i) {
		return i, errors.Errorf("%v could not play %d on\n%v", b.side, i, b.board)
	}
	return i, nil
}

// bestLegal returns the first legal index with the greatest value.
func bestLegal(v []float32, legal []int) int {
	best := legal[0]
	for _, i := range legal[1:] {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
