package agent

import "github.com/gorgonia/tictac/game"

// Config holds the learning constants shared by the learners.
type Config struct {
	Rate     float32 // blend factor of the backward update
	Discount float32 // discount applied to the value propagated backwards

	Epsilon    float32 // initial exploration probability
	Decay      float32 // per episode decay of Epsilon for the network learner
	TableDecay float32 // per episode decay of Epsilon for the table learner

	Win, Draw, Loss float32 // rewards

	Mask float32 // value given to occupied cells before choosing
}

// DefaultConfig returns the stock learning constants.
func DefaultConfig() Config {
	return Config{
		Rate:       0.9,
		Discount:   0.9,
		Epsilon:    0.95,
		Decay:      0.95,
		TableDecay: 0.9995,
		Win:        10,
		Draw:       5,
		Loss:       0,
		Mask:       -1,
	}
}

func (c Config) IsValid() bool {
	return c.Rate >= 0 && c.Rate <= 1 &&
		c.Discount >= 0 && c.Discount <= 1 &&
		c.Epsilon >= 0 && c.Epsilon <= 1 &&
		c.Decay > 0 && c.Decay <= 1 &&
		c.TableDecay > 0 && c.TableDecay <= 1 &&
		c.Mask < c.Loss
}

// Reward returns the reward side receives for a terminal result. Non terminal results get the loss reward.
func (c Config) Reward(res game.Result, side game.Side) float32 {
	switch {
	case res == game.Draw:
		return c.Draw
	case res.Ended() && res.Side() == side:
		return c.Win
	}
	return c.Loss
}

// blend is the backward update: the old value moves towards the discounted value of the following move.
func (c Config) blend(old, next float32) float32 {
	return old*(1-c.Rate) + c.Rate*c.Discount*next
}
