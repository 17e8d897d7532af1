package tictac

import (
	"context"

	"github.com/gorgonia/tictac/agent"
	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Arena plays episodes between a fixed mover and a learner on a single board.
type Arena struct {
	board   *ttt.Board
	fixed   agent.Player
	learner agent.Learner
	rewards agent.Config

	// state
	currentPlayer agent.Player
	lastMove      game.PlayerMove
	logger        zerolog.Logger

	name    string
	episode int // which episode is this in
}

// MakeArena makes an arena given the two players. Both are bound to the arena's board.
func MakeArena(fixed agent.Player, learner agent.Learner, rewards agent.Config, name string, logger zerolog.Logger) Arena {
	if name == "" {
		name = "UNKNOWN GAME"
	}
	b := ttt.New()
	fixed.Bind(b)
	learner.Bind(b)
	return Arena{
		board:    b,
		fixed:    fixed,
		learner:  learner,
		rewards:  rewards,
		lastMove: game.PlayerMove{Side: game.NoSide, Index: -1},
		logger:   logger,
		name:     name,
	}
}

// Play plays one episode and returns its result. In training mode the learner is handed its reward once the
// episode ends. enc, if not nil, is given the arena after every half move.
func (a *Arena) Play(ctx context.Context, train bool, enc OutputEncoder) (game.Result, error) {
	a.board.Reset()
	a.fixed.Reset()
	a.learner.Reset()
	a.learner.SetTraining(train)
	a.lastMove = game.PlayerMove{Side: game.NoSide, Index: -1}
	a.currentPlayer = a.fixed

	for !a.board.Result().Ended() {
		idx, err := a.currentPlayer.Act()
		if err != nil {
			return game.None, errors.WithMessagef(err, "episode %d: %v failed to move", a.episode, a.currentPlayer.Side())
		}
		a.lastMove = game.PlayerMove{Side: a.currentPlayer.Side(), Index: idx}
		if enc != nil {
			if err = enc.Encode(a); err != nil {
				return game.None, errors.WithMessage(err, "unable to encode the episode")
			}
		}
		a.switchPlayer()
	}

	res := a.board.Result()
	if train {
		reward := a.rewards.Reward(res, a.learner.Side())
		moves := a.learner.Moves()
		if err := a.learner.Final(ctx, reward); err != nil {
			return res, errors.WithMessagef(err, "episode %d: learning update failed", a.episode)
		}
		a.logger.Debug().
			Int("episode", a.episode).
			Str("result", resultString(res)).
			Float32("reward", reward).
			Int("moves", moves).
			Float32("epsilon", a.learner.Epsilon()).
			Msg("episode-done")
	} else {
		a.logger.Debug().Int("episode", a.episode).Str("result", resultString(res)).Msg("episode-done")
	}
	a.episode++
	return res, nil
}

func (a *Arena) Name() string                  { return a.name }
func (a *Arena) Episode() int                  { return a.episode }
func (a *Arena) LastMove() game.PlayerMove     { return a.lastMove }
func (a *Arena) Board() [game.Cells]game.Mark { return a.board.State() }
func (a *Arena) Result() game.Result           { return a.board.Result() }

func (a *Arena) switchPlayer() {
	switch a.currentPlayer {
	case a.fixed:
		a.currentPlayer = a.learner
	default:
		a.currentPlayer = a.fixed
	}
}

func resultString(r game.Result) string {
	switch r {
	case game.XWins:
		return "X"
	case game.OWins:
		return "O"
	case game.Draw:
		return "draw"
	}
	return "none"
}
