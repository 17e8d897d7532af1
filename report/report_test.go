package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/gorgonia/tictac"
	"github.com/gorgonia/tictac/internal/suite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(zerolog.New(&buf))
	b := tictac.Batch{Index: 3, Mode: "evaluate", Games: 4, Wins: 2, Draws: 1, Losses: 1}
	require.NoError(t, l.Report(context.Background(), b))

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "batch-report", ev["message"])
	assert.Equal(t, float64(3), ev["batch"])
	assert.Equal(t, "evaluate", ev["mode"])
	assert.Equal(t, 0.75, ev["rate"])
}

func TestPublisher(t *testing.T) {
	ctx, s := suite.New(t)

	p := WithClient(s.Storage, "")
	assert.Equal(t, DefaultKey, p.Key())

	conf := tictac.DefaultConfig()
	conf.Seed = 11
	conf.BatchSize = 5
	conf.Logger = s.Logger
	conf.Reporters = []tictac.Reporter{p, NewLogger(s.Logger)}
	e, err := tictac.New(conf)
	require.NoError(t, err)
	defer e.Close()

	_, err = e.RunEpisodes(ctx, 12, tictac.Train)
	require.NoError(t, err)

	got, err := p.Batches(ctx)
	require.NoError(t, err)
	assert.Equal(t, e.Batches, got)
}

func TestNewPublisherUnreachable(t *testing.T) {
	_, err := NewPublisher(context.Background(), "127.0.0.1:1", "")
	assert.Error(t, err)
}
