package agent

import (
	"context"
	"math/rand"

	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
	"github.com/gorgonia/tictac/qtable"
)

// TabularPlayer learns a value per (board, cell) pair in a qtable.Table.
type TabularPlayer struct {
	base
	Config

	table *qtable.Table
	r     *rand.Rand

	stateLog  []string
	actionLog []int

	epsilon  float32
	training bool
}

func NewTabular(side game.Side, conf Config, r *rand.Rand) *TabularPlayer {
	return &TabularPlayer{
		base:     base{side: side},
		Config:   conf,
		table:    qtable.New(),
		r:        r,
		epsilon:  conf.Epsilon,
		training: true,
	}
}

func (p *TabularPlayer) Kind() Kind             { return Tabular }
func (p *TabularPlayer) Table() *qtable.Table   { return p.table }
func (p *TabularPlayer) Moves() int             { return len(p.actionLog) }
func (p *TabularPlayer) Epsilon() float32       { return p.epsilon }
func (p *TabularPlayer) SetTraining(train bool) { p.training = train }

func (p *TabularPlayer) Reset() {
	p.stateLog = p.stateLog[:0]
	p.actionLog = p.actionLog[:0]
}

// Choose returns the greedy move on b.
func (p *TabularPlayer) Choose(b *ttt.Board) (int, error) {
	if err := p.check(b); err != nil {
		return -1, err
	}
	return p.greedy(b), nil
}

func (p *TabularPlayer) greedy(b *ttt.Board) int {
	return p.table.Get(b.Key()).Masked(b.State(), p.Mask).Argmax()
}

func (p *TabularPlayer) Act() (int, error) {
	if err := p.check(p.board); err != nil {
		return -1, err
	}
	var i int
	if p.training && p.r.Float32() < p.epsilon {
		legal := p.board.Empty()
		i = legal[p.r.Intn(len(legal))]
	} else {
		i = p.greedy(p.board)
	}
	p.stateLog = append(p.stateLog, p.board.Key())
	p.actionLog = append(p.actionLog, i)
	return p.play(i)
}

// Final sweeps the episode backwards. The last move takes the reward, each earlier move is blended towards the
// value just written.
func (p *TabularPlayer) Final(ctx context.Context, reward float32) error {
	defer p.Reset()
	if err := ctx.Err(); err != nil {
		return err
	}
	var last float32
	for i := len(p.actionLog) - 1; i >= 0; i-- {
		key, a := p.stateLog[i], p.actionLog[i]
		v := reward
		if i != len(p.actionLog)-1 {
			v = p.blend(p.table.Get(key)[a], last)
		}
		p.table.SetAction(key, a, v)
		last = v
	}
	if p.training {
		p.epsilon *= p.TableDecay
	}
	return nil
}
