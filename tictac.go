// Package tictac is a tic-tac-toe play and learning engine. A learner, backed either by a value table or by a
// neural network, plays O against a fixed opponent and improves from the outcome of every episode.
package tictac

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/gorgonia/tictac/agent"
	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
	"github.com/gorgonia/tictac/qnet"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Engine is the top level structure and the entry point of the API.
//
// RunEpisodes and Decide are serialized; an Engine may be shared between goroutines.
type Engine struct {
	sync.Mutex

	// state
	Arena
	Statistics
	r  *rand.Rand
	nn *qnet.Net

	// config
	conf Config
}

// New creates an engine with a fresh learner.
func New(conf Config) (*Engine, error) {
	if !conf.IsValid() {
		return nil, errors.Wrapf(game.ErrInvalidArgument, "invalid config: learner %v, opponent %v", conf.Learner, conf.Opponent)
	}
	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	fixed, learner, nn, err := newPlayers(conf, r)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Arena:      MakeArena(fixed, learner, conf.AgentConf, conf.Name, conf.Logger),
		Statistics: makeStatistics(),
		r:          r,
		nn:         nn,
		conf:       conf,
	}, nil
}

// Learner returns the learning player.
func (e *Engine) Learner() agent.Learner { return e.learner }

// RunEpisodes plays count episodes. Every BatchSize episodes, and once more for a trailing partial batch, the
// learner's record is logged and handed to every Reporter.
//
// Cancellation is observed between episodes. The returned Summary covers the episodes that were played.
func (e *Engine) RunEpisodes(ctx context.Context, count int, mode Mode) (Summary, error) {
	e.Lock()
	defer e.Unlock()

	var sum Summary
	if count < 0 {
		return sum, errors.Wrapf(game.ErrInvalidArgument, "negative episode count %d", count)
	}
	if mode != Train && mode != Evaluate {
		return sum, errors.Wrapf(game.ErrInvalidArgument, "unknown mode %v", mode)
	}

	train := mode == Train
	batch := e.newBatch(mode)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := e.Play(ctx, train, e.conf.OutputEncoder)
		if err != nil {
			return sum, err
		}
		batch.add(res, e.learner.Side())
		switch {
		case res == game.Draw:
			sum.Draws++
		case res.Side() == e.learner.Side():
			sum.Wins++
		default:
			sum.Losses++
		}

		if batch.Games == e.conf.BatchSize {
			if err := e.closeBatch(ctx, batch); err != nil {
				return sum, err
			}
			sum.Batches++
			batch = e.newBatch(mode)
		}
	}
	if batch.Games > 0 {
		if err := e.closeBatch(ctx, batch); err != nil {
			return sum, err
		}
		sum.Batches++
	}
	return sum, nil
}

func (e *Engine) newBatch(mode Mode) Batch {
	return Batch{Index: len(e.Batches), Mode: mode.String()}
}

func (e *Engine) closeBatch(ctx context.Context, b Batch) error {
	e.update(b)
	ev := e.conf.Logger.Debug().
		Str("name", e.name).
		Int("batch", b.Index).
		Str("mode", b.Mode).
		Int("wins", b.Wins).
		Int("draws", b.Draws).
		Int("losses", b.Losses).
		Float32("epsilon", e.learner.Epsilon())
	if t, ok := e.learner.(*agent.TabularPlayer); ok {
		ev = ev.Int("states", t.Table().Len())
	}
	ev.Msg("batch-done")

	if len(e.conf.Reporters) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range e.conf.Reporters {
		r := r
		g.Go(func() error { return r.Report(gctx, b) })
	}
	return errors.WithMessagef(g.Wait(), "unable to report batch %d", b.Index)
}

// Decide returns the move the strategy of the given kind would play for side on cells. Neither the board nor any
// player's episode state is modified. Learned kinds are only available for the learner's own kind and side.
func (e *Engine) Decide(cells []game.Mark, side game.Side, kind agent.Kind) (int, error) {
	e.Lock()
	defer e.Unlock()

	if len(cells) != game.Cells {
		return -1, errors.Wrapf(game.ErrInvalidArgument, "board of %d cells", len(cells))
	}
	if !side.Valid() {
		return -1, errors.Wrapf(game.ErrInvalidArgument, "invalid side %v", side)
	}
	var state [game.Cells]game.Mark
	for i, m := range cells {
		if m != game.Empty && m != game.X && m != game.O {
			return -1, errors.Wrapf(game.ErrInvalidArgument, "invalid mark %d at %d", int32(m), i)
		}
		state[i] = m
	}
	b := ttt.New()
	b.Set(state)

	var p agent.Player
	switch kind {
	case agent.Random:
		p = agent.NewRandom(side, e.r)
	case agent.Optimal:
		p = agent.NewOptimal(side)
	case agent.Tabular, agent.Approximate:
		if kind != e.learner.Kind() || side != e.learner.Side() {
			return -1, errors.Wrapf(game.ErrInvalidArgument, "no %v learner plays %v", kind, side)
		}
		p = e.learner
	default:
		return -1, errors.Wrapf(game.ErrInvalidArgument, "unknown strategy %v", kind)
	}
	return p.Choose(b)
}

// Snapshot returns the board of the last episode.
func (e *Engine) Snapshot() Snapshot {
	e.Lock()
	defer e.Unlock()
	return Snapshot{State: e.board.State(), Result: e.board.Result()}
}

// Close flushes the output encoder and releases the network.
func (e *Engine) Close() error {
	e.Lock()
	defer e.Unlock()

	var allErrs manyErr
	if e.conf.OutputEncoder != nil {
		if err := e.conf.OutputEncoder.Flush(); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	if e.nn != nil {
		if err := e.nn.Close(); err != nil {
			allErrs = append(allErrs, err)
		}
		e.nn = nil
	}
	if len(allErrs) > 0 {
		return allErrs
	}
	return nil
}
