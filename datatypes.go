package tictac

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorgonia/tictac/agent"
	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/qnet"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultBatchSize is the number of episodes aggregated into one reported Batch.
const DefaultBatchSize = 1000

type Config struct {
	Name     string
	Learner  agent.Kind // Tabular or Approximate, always plays O
	Opponent agent.Kind // Random or Optimal, always plays X and moves first

	AgentConf agent.Config
	NNConf    qnet.Config // only used by the Approximate learner

	BatchSize int   // episodes per reported batch
	Seed      int64 // 0 seeds from the clock

	Logger zerolog.Logger

	// extensions
	OutputEncoder OutputEncoder
	Reporters     []Reporter
}

// DefaultConfig is a tabular learner against a random opponent.
func DefaultConfig() Config {
	return Config{
		Name:      "tictac",
		Learner:   agent.Tabular,
		Opponent:  agent.Random,
		AgentConf: agent.DefaultConfig(),
		NNConf:    qnet.DefaultConf(game.Cells),
		BatchSize: DefaultBatchSize,
		Logger:    zerolog.Nop(),
	}
}

func (c Config) IsValid() bool {
	if !c.Learner.Learns() || c.Opponent.Learns() || c.Opponent < 0 || c.Opponent >= agent.MAXKIND {
		return false
	}
	if c.Learner == agent.Approximate && !c.NNConf.IsValid() {
		return false
	}
	return c.AgentConf.IsValid() && c.BatchSize > 0
}

// OutputEncoder encodes the entire meta state as whatever.
//
// An example OutputEncoder is the GifEncoder. Another example would be a logger.
type OutputEncoder interface {
	Encode(ms game.MetaState) error
	Flush() error
}

// Reporter receives every completed Batch.
type Reporter interface {
	Report(ctx context.Context, b Batch) error
}

// Mode selects whether the learner explores and learns during episodes.
type Mode int

const (
	Train Mode = iota
	Evaluate
)

func (m Mode) String() string {
	switch m {
	case Train:
		return "train"
	case Evaluate:
		return "evaluate"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "train" or "evaluate", case insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "train":
		return Train, nil
	case "evaluate", "eval":
		return Evaluate, nil
	}
	return Train, errors.Wrapf(game.ErrInvalidArgument, "unknown mode %q", s)
}

// Batch is the learner's record over a run of consecutive episodes.
type Batch struct {
	Index  int    `json:"index"`
	Mode   string `json:"mode"`
	Games  int    `json:"games"`
	Wins   int    `json:"wins"`
	Draws  int    `json:"draws"`
	Losses int    `json:"losses"`
}

// Rate is the share of games that were not lost.
func (b Batch) Rate() float64 {
	if b.Games == 0 {
		return 0
	}
	return float64(b.Wins+b.Draws) / float64(b.Games)
}

func (b *Batch) add(res game.Result, learner game.Side) {
	b.Games++
	switch {
	case res == game.Draw:
		b.Draws++
	case res.Side() == learner:
		b.Wins++
	default:
		b.Losses++
	}
}

// Summary is the learner's record over one RunEpisodes call.
type Summary struct {
	Wins, Draws, Losses int
	Batches             int // number of batches reported
}

func (s Summary) Games() int { return s.Wins + s.Draws + s.Losses }

// Rate is the share of games that were not lost.
func (s Summary) Rate() float64 {
	if s.Games() == 0 {
		return 0
	}
	return float64(s.Wins+s.Draws) / float64(s.Games())
}

// Snapshot is the board of the last episode, for rendering.
type Snapshot struct {
	State  [game.Cells]game.Mark
	Result game.Result
}
