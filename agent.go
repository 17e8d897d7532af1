package tictac

import (
	"bytes"
	"fmt"
	"math/rand"

	"github.com/gorgonia/tictac/agent"
	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/qnet"
	"github.com/pkg/errors"
)

// newPlayers creates the fixed mover (X) and the learner (O), and links them.
// The returned network is nil unless the learner is Approximate.
func newPlayers(conf Config, r *rand.Rand) (fixed agent.Player, learner agent.Learner, nn *qnet.Net, err error) {
	if fixed, err = agent.New(conf.Opponent, game.SideX, conf.AgentConf, r); err != nil {
		return nil, nil, nil, errors.WithMessage(err, "unable to create the opponent")
	}

	switch conf.Learner {
	case agent.Tabular:
		learner = agent.NewTabular(game.SideO, conf.AgentConf, r)
	case agent.Approximate:
		nn = qnet.New(conf.NNConf)
		if err = nn.Init(); err != nil {
			return nil, nil, nil, errors.WithMessage(err, "unable to initialize the network")
		}
		if learner, err = agent.NewApprox(game.SideO, conf.AgentConf, nn, r); err != nil {
			nn.Close()
			return nil, nil, nil, err
		}
	default:
		return nil, nil, nil, errors.Wrapf(game.ErrInvalidArgument, "%v does not learn", conf.Learner)
	}
	agent.Link(fixed, learner)
	return fixed, learner, nn, nil
}

type manyErr []error

func (err manyErr) Error() string {
	var buf bytes.Buffer
	for _, e := range err {
		fmt.Fprintln(&buf, e.Error())
	}
	return buf.String()
}
