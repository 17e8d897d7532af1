package tictac

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorgonia/tictac/agent"
	"github.com/gorgonia/tictac/game"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sync.Mutex
	batches []Batch
	err     error
}

func (r *recorder) Report(ctx context.Context, b Batch) error {
	r.Lock()
	defer r.Unlock()
	r.batches = append(r.batches, b)
	return r.err
}

type countingEncoder struct {
	moves   int
	flushed bool
	last    game.MetaState
	lastMv  game.PlayerMove
}

func (c *countingEncoder) Encode(ms game.MetaState) error {
	c.moves++
	c.last = ms
	c.lastMv = ms.LastMove()
	return nil
}

func (c *countingEncoder) Flush() error {
	c.flushed = true
	return nil
}

func newTestEngine(t *testing.T, conf Config) *Engine {
	t.Helper()
	e, err := New(conf)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestTabularLearnsAgainstRandom(t *testing.T) {
	if testing.Short() {
		t.Skip("long running")
	}
	conf := DefaultConfig()
	conf.Seed = 1337
	e := newTestEngine(t, conf)
	ctx := context.Background()

	sum, err := e.RunEpisodes(ctx, 10000, Train)
	require.NoError(t, err)
	assert.Equal(t, 10000, sum.Games())
	assert.Equal(t, 10, sum.Batches)

	sum, err = e.RunEpisodes(ctx, 500, Evaluate)
	require.NoError(t, err)
	assert.Equal(t, 500, sum.Games())
	assert.Equal(t, 1, sum.Batches)
	t.Logf("wins %d, draws %d, losses %d", sum.Wins, sum.Draws, sum.Losses)
	assert.Greater(t, sum.Rate(), 0.70)

	mean, _ := e.RateStats(Evaluate)
	assert.InDelta(t, sum.Rate(), mean, 1e-9)
}

func TestOptimalOpponentNeverLoses(t *testing.T) {
	conf := DefaultConfig()
	conf.Seed = 1
	conf.Opponent = agent.Optimal
	e := newTestEngine(t, conf)

	sum, err := e.RunEpisodes(context.Background(), 300, Train)
	require.NoError(t, err)
	assert.Zero(t, sum.Wins, "the learner cannot beat perfect play")
	assert.Equal(t, 300, sum.Draws+sum.Losses)
}

func TestApproximateRuns(t *testing.T) {
	conf := DefaultConfig()
	conf.Seed = 1
	conf.Learner = agent.Approximate
	conf.BatchSize = 50
	e := newTestEngine(t, conf)

	sum, err := e.RunEpisodes(context.Background(), 120, Train)
	require.NoError(t, err)
	assert.Equal(t, 120, sum.Games())
	assert.Equal(t, 3, sum.Batches, "two full batches and a partial one")

	ap, ok := e.Learner().(*agent.ApproxPlayer)
	require.True(t, ok)
	assert.NotZero(t, ap.Cache().Len())
	assert.Less(t, ap.Epsilon(), conf.AgentConf.Epsilon)

	sum, err = e.RunEpisodes(context.Background(), 20, Evaluate)
	require.NoError(t, err)
	assert.Equal(t, 20, sum.Games())
}

func TestBatchReporting(t *testing.T) {
	rec := new(recorder)
	conf := DefaultConfig()
	conf.Seed = 7
	conf.BatchSize = 10
	conf.Reporters = []Reporter{rec}
	e := newTestEngine(t, conf)

	sum, err := e.RunEpisodes(context.Background(), 25, Train)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Batches)
	require.Len(t, rec.batches, 3)
	assert.Equal(t, []int{10, 10, 5}, []int{rec.batches[0].Games, rec.batches[1].Games, rec.batches[2].Games})

	var wins, draws, losses int
	for i, b := range rec.batches {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, "train", b.Mode)
		assert.Equal(t, b.Games, b.Wins+b.Draws+b.Losses)
		wins += b.Wins
		draws += b.Draws
		losses += b.Losses
	}
	assert.Equal(t, Summary{Wins: wins, Draws: draws, Losses: losses, Batches: 3}, sum)
	assert.Equal(t, rec.batches, e.Batches)

	rec.err = errors.New("sink is down")
	_, err = e.RunEpisodes(context.Background(), 10, Evaluate)
	assert.Error(t, err)
}

func TestCancellation(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := e.RunEpisodes(ctx, 100, Train)
	assert.Equal(t, context.Canceled, err)
	assert.Zero(t, sum.Games())
}

func TestRunEpisodesErrors(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	_, err := e.RunEpisodes(context.Background(), -1, Train)
	assert.True(t, errors.Is(err, game.ErrInvalidArgument))
	_, err = e.RunEpisodes(context.Background(), 1, Mode(5))
	assert.True(t, errors.Is(err, game.ErrInvalidArgument))

	sum, err := e.RunEpisodes(context.Background(), 0, Train)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestOutputEncoder(t *testing.T) {
	enc := new(countingEncoder)
	conf := DefaultConfig()
	conf.Name = "encoded"
	conf.OutputEncoder = enc
	e, err := New(conf)
	require.NoError(t, err)

	_, err = e.RunEpisodes(context.Background(), 1, Evaluate)
	require.NoError(t, err)

	snap := e.Snapshot()
	var filled int
	for _, m := range snap.State {
		if m != game.Empty {
			filled++
		}
	}
	assert.Equal(t, filled, enc.moves, "one encoding per half move")
	assert.True(t, snap.Result.Ended())
	assert.Equal(t, "encoded", enc.last.Name())
	assert.Equal(t, snap.State, enc.last.Board())
	assert.Equal(t, snap.Result, enc.last.Result())
	assert.Equal(t, snap.State[enc.lastMv.Index], game.Mark(enc.lastMv.Side))

	require.NoError(t, e.Close())
	assert.True(t, enc.flushed)
}

func TestDecide(t *testing.T) {
	conf := DefaultConfig()
	conf.Seed = 3
	e := newTestEngine(t, conf)

	cells := []game.Mark{
		game.X, game.Empty, game.Empty,
		game.X, game.O, game.Empty,
		game.Empty, game.Empty, game.Empty,
	}
	orig := append([]game.Mark(nil), cells...)

	idx, err := e.Decide(cells, game.SideO, agent.Optimal)
	require.NoError(t, err)
	assert.Equal(t, 6, idx)

	idx, err = e.Decide(cells, game.SideX, agent.Random)
	require.NoError(t, err)
	assert.Equal(t, game.Empty, cells[idx])

	idx, err = e.Decide(cells, game.SideO, agent.Tabular)
	require.NoError(t, err)
	assert.Equal(t, game.Empty, cells[idx])
	assert.Equal(t, 0, e.Learner().Moves(), "Decide does not record moves")
	assert.Equal(t, orig, cells)

	_, err = e.Decide(cells, game.SideX, agent.Tabular)
	assert.True(t, errors.Is(err, game.ErrInvalidArgument), "learned kinds only play the learner's side")
	_, err = e.Decide(cells, game.SideO, agent.Approximate)
	assert.True(t, errors.Is(err, game.ErrInvalidArgument), "no approximate learner")
	_, err = e.Decide(cells[:4], game.SideO, agent.Optimal)
	assert.True(t, errors.Is(err, game.ErrInvalidArgument))
	_, err = e.Decide(cells, game.NoSide, agent.Optimal)
	assert.True(t, errors.Is(err, game.ErrInvalidArgument))

	won := []game.Mark{
		game.X, game.X, game.X,
		game.O, game.O, game.Empty,
		game.Empty, game.Empty, game.Empty,
	}
	_, err = e.Decide(won, game.SideO, agent.Optimal)
	assert.Equal(t, agent.ErrGameOver, err)
}

func TestStatisticsDump(t *testing.T) {
	conf := DefaultConfig()
	conf.BatchSize = 4
	e := newTestEngine(t, conf)
	_, err := e.RunEpisodes(context.Background(), 10, Train)
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, e.Dump(filename))

	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"2", "train", "2"}, records[3][:3])
}

func TestConfig(t *testing.T) {
	conf := DefaultConfig()
	assert.True(t, conf.IsValid())

	bad := conf
	bad.Learner = agent.Random
	assert.False(t, bad.IsValid())
	_, err := New(bad)
	assert.True(t, errors.Is(err, game.ErrInvalidArgument))

	bad = conf
	bad.Opponent = agent.Tabular
	assert.False(t, bad.IsValid())

	bad = conf
	bad.BatchSize = 0
	assert.False(t, bad.IsValid())

	m, err := ParseMode("EVAL")
	require.NoError(t, err)
	assert.Equal(t, Evaluate, m)
	_, err = ParseMode("play")
	assert.Error(t, err)
}
