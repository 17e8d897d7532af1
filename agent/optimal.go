package agent

import (
	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
	"github.com/gorgonia/tictac/negamax"
	"github.com/pkg/errors"
)

// OptimalPlayer plays the negamax move. It does not learn.
type OptimalPlayer struct {
	base
}

func NewOptimal(side game.Side) *OptimalPlayer {
	return &OptimalPlayer{base: base{side: side}}
}

func (p *OptimalPlayer) Kind() Kind { return Optimal }
func (p *OptimalPlayer) Reset()     {}

func (p *OptimalPlayer) Choose(b *ttt.Board) (int, error) {
	if err := p.check(b); err != nil {
		return -1, err
	}
	return negamax.Search(b.Clone(), p.side).Index, nil
}

func (p *OptimalPlayer) Act() (int, error) {
	if err := p.check(p.board); err != nil {
		return -1, err
	}
	res, ok := negamax.Best(p.board, p.side)
	if !ok {
		return res.Index, errors.Errorf("%v found no move on\n%v", p.side, p.board)
	}
	return res.Index, nil
}
