package agent

import (
	"context"
	"math/rand"

	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
	"github.com/gorgonia/tictac/qnet"
	"github.com/gorgonia/tictac/qtable"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Board encoding fed to the network.
const (
	encEmpty = 1
	encOwn   = 2
	encOther = 3
)

// ApproxPlayer learns action values with a neural network. The values of the last move of every episode are
// also memoized in an exact-match cache, which takes precedence over the network.
type ApproxPlayer struct {
	base
	Config

	net   *qnet.Net
	cache *qtable.Table
	r     *rand.Rand

	stateLog  [][]float32
	actionLog []int
	targetLog []qtable.Values

	epsilon  float32
	training bool
}

// NewApprox creates a network learner. The network must be initialized with 9 inputs and 9 outputs, and a batch
// size large enough to hold all the moves of one episode.
func NewApprox(side game.Side, conf Config, net *qnet.Net, r *rand.Rand) (*ApproxPlayer, error) {
	if !side.Valid() {
		return nil, errors.Wrapf(game.ErrInvalidArgument, "invalid side %v", side)
	}
	if net == nil {
		return nil, errors.New("nil network")
	}
	if net.Inputs != game.Cells || net.Outputs != game.Cells {
		return nil, errors.Errorf("network maps %d inputs to %d outputs, expected %d to %d", net.Inputs, net.Outputs, game.Cells, game.Cells)
	}
	if net.BatchSize < (game.Cells+1)/2 {
		return nil, errors.Errorf("network batch size %d cannot hold an episode", net.BatchSize)
	}
	return &ApproxPlayer{
		base:     base{side: side},
		Config:   conf,
		net:      net,
		cache:    qtable.New(),
		r:        r,
		epsilon:  conf.Epsilon,
		training: true,
	}, nil
}

func (p *ApproxPlayer) Kind() Kind             { return Approximate }
func (p *ApproxPlayer) Cache() *qtable.Table   { return p.cache }
func (p *ApproxPlayer) Net() *qnet.Net         { return p.net }
func (p *ApproxPlayer) Moves() int             { return len(p.actionLog) }
func (p *ApproxPlayer) Epsilon() float32       { return p.epsilon }
func (p *ApproxPlayer) SetTraining(train bool) { p.training = train }

func (p *ApproxPlayer) Reset() {
	p.stateLog = p.stateLog[:0]
	p.actionLog = p.actionLog[:0]
	p.targetLog = p.targetLog[:0]
}

// encode maps the board to the network input, from the point of view of p.
func (p *ApproxPlayer) encode(b *ttt.Board) []float32 {
	retVal := make([]float32, game.Cells)
	for i, m := range b.State() {
		switch m {
		case game.Empty:
			retVal[i] = encEmpty
		case game.Mark(p.side):
			retVal[i] = encOwn
		default:
			retVal[i] = encOther
		}
	}
	return retVal
}

// encKey is the cache key of an encoded board.
func encKey(enc []float32) string {
	buf := make([]byte, len(enc))
	for i, v := range enc {
		buf[i] = '0' + byte(v)
	}
	return string(buf)
}

// values returns the masked action values for b and whether they came from the cache.
func (p *ApproxPlayer) values(b *ttt.Board, enc []float32) (qtable.Values, bool, error) {
	var v qtable.Values
	if cached, ok := p.cache.Lookup(encKey(enc)); ok {
		return cached.Masked(b.State(), p.Mask), true, nil
	}
	pred, err := p.net.Predict(enc)
	if err != nil {
		return v, false, errors.WithMessage(err, "unable to predict")
	}
	copy(v[:], pred)
	return v.Masked(b.State(), p.Mask), false, nil
}

// Choose returns the greedy move on b.
func (p *ApproxPlayer) Choose(b *ttt.Board) (int, error) {
	if err := p.check(b); err != nil {
		return -1, err
	}
	v, _, err := p.values(b, p.encode(b))
	if err != nil {
		return -1, err
	}
	return bestLegal(v[:], b.Empty()), nil
}

func (p *ApproxPlayer) Act() (int, error) {
	if err := p.check(p.board); err != nil {
		return -1, err
	}
	enc := p.encode(p.board)
	v, cached, err := p.values(p.board, enc)
	if err != nil {
		return -1, err
	}

	legal := p.board.Empty()
	var i int
	if !cached && p.training && p.r.Float32() < p.epsilon {
		i = legal[p.r.Intn(len(legal))]
	} else {
		i = bestLegal(v[:], legal)
	}

	p.stateLog = append(p.stateLog, enc)
	p.actionLog = append(p.actionLog, i)
	p.targetLog = append(p.targetLog, v)
	return p.play(i)
}

// Final builds one target per recorded move, most recent first, and trains the network on all of them in a
// single batch. The most recent target is also written to the cache.
func (p *ApproxPlayer) Final(ctx context.Context, reward float32) error {
	defer p.Reset()
	n := len(p.actionLog)
	if n == 0 {
		return nil
	}

	xs, ys := p.targets(reward)

	// Final must not return before Train does; the next episode reads the updated weights.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := p.net.Train(gctx, xs, ys)
		return err
	})
	if err := g.Wait(); err != nil {
		return errors.WithMessage(err, "unable to update the network")
	}

	if p.training {
		p.epsilon *= p.Decay
	}
	return nil
}

// targets walks the trajectory most recent first and returns the training batch in that order. The most recent
// move's target is exactly reward and is written to the cache. Each earlier target is blended towards the value
// of the move after it. Cells other than the action keep their logged values.
func (p *ApproxPlayer) targets(reward float32) (xs, ys [][]float32) {
	n := len(p.actionLog)
	xs = make([][]float32, 0, n)
	ys = make([][]float32, 0, n)
	last := reward
	for i := n - 1; i >= 0; i-- {
		target := p.targetLog[i]
		a := p.actionLog[i]
		if i == n-1 {
			target[a] = reward
			p.cache.Set(encKey(p.stateLog[i]), target)
		} else {
			target[a] = p.blend(target[a], last)
		}
		last = target[a]

		y := make([]float32, game.Cells)
		copy(y, target[:])
		xs = append(xs, p.stateLog[i])
		ys = append(ys, y)
	}
	return xs, ys
}
