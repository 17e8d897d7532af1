package agent

import (
	"math/rand"

	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
)

// RandomPlayer picks uniformly among the legal cells. It does not learn.
type RandomPlayer struct {
	base
	r *rand.Rand
}

func NewRandom(side game.Side, r *rand.Rand) *RandomPlayer {
	return &RandomPlayer{base: base{side: side}, r: r}
}

func (p *RandomPlayer) Kind() Kind { return Random }
func (p *RandomPlayer) Reset()     {}

func (p *RandomPlayer) Choose(b *ttt.Board) (int, error) {
	if err := p.check(b); err != nil {
		return -1, err
	}
	legal := b.Empty()
	return legal[p.r.Intn(len(legal))], nil
}

func (p *RandomPlayer) Act() (int, error) {
	i, err := p.Choose(p.board)
	if err != nil {
		return i, err
	}
	return p.play(i)
}
