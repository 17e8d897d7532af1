// Package report provides sinks for the batches produced by a tictac.Engine.
package report

import (
	"context"
	"encoding/json"

	"github.com/gorgonia/tictac"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Logger writes every batch as a structured log event.
type Logger struct {
	zerolog.Logger
}

func NewLogger(l zerolog.Logger) Logger { return Logger{l} }

func (l Logger) Report(ctx context.Context, b tictac.Batch) error {
	l.Info().
		Int("batch", b.Index).
		Str("mode", b.Mode).
		Int("games", b.Games).
		Int("wins", b.Wins).
		Int("draws", b.Draws).
		Int("losses", b.Losses).
		Float64("rate", b.Rate()).
		Msg("batch-report")
	return nil
}

// DefaultKey is the Redis list the Publisher appends to.
const DefaultKey = "tictac:batches"

// Publisher appends every batch, JSON encoded, to a Redis list. A dashboard can read the list back with Batches.
type Publisher struct {
	client *redis.Client
	key    string
}

// NewPublisher connects to the Redis server at addr.
func NewPublisher(ctx context.Context, addr, key string) (*Publisher, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "failed to connect to Redis at %s", addr)
	}
	return WithClient(conn, key), nil
}

// WithClient creates a Publisher on an existing connection.
func WithClient(client *redis.Client, key string) *Publisher {
	if key == "" {
		key = DefaultKey
	}
	return &Publisher{client: client, key: key}
}

func (p *Publisher) Key() string { return p.key }

func (p *Publisher) Report(ctx context.Context, b tictac.Batch) error {
	data, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(err, "failed to marshal batch")
	}
	if err = p.client.RPush(ctx, p.key, data).Err(); err != nil {
		return errors.Wrapf(err, "failed to publish batch %d", b.Index)
	}
	return nil
}

// Batches reads back every published batch, oldest first.
func (p *Publisher) Batches(ctx context.Context) ([]tictac.Batch, error) {
	vals, err := p.client.LRange(ctx, p.key, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read batches")
	}
	retVal := make([]tictac.Batch, 0, len(vals))
	for _, v := range vals {
		var b tictac.Batch
		if err := json.Unmarshal([]byte(v), &b); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal batch")
		}
		retVal = append(retVal, b)
	}
	return retVal, nil
}

func (p *Publisher) Close() error { return p.client.Close() }
