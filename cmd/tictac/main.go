package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gorgonia/tictac"
	"github.com/gorgonia/tictac/agent"
	"github.com/gorgonia/tictac/encoding/gif"
	"github.com/gorgonia/tictac/game"
	"github.com/gorgonia/tictac/game/ttt"
	"github.com/gorgonia/tictac/negamax"
	"github.com/gorgonia/tictac/report"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// main - trains a learner, evaluates it, and plays one commented game against the opponent.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := initConfig()
	logger := initLogger(conf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, conf); err != nil {
		logger.Error().Err(err).Msg("run-failed")
		os.Exit(1)
	}
}

// initialize config. TICTAC_CONFIG overrides the default config.yml in the working directory.
func initConfig() *Config {
	if path := os.Getenv("TICTAC_CONFIG"); path != "" {
		return MustLoad(path)
	}
	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}
	return MustLoad(filepath.Join(baseDir, "./config.yml"))
}

// initialize logger.
func initLogger(conf *Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func engineConfig(ctx context.Context, logger zerolog.Logger, conf *Config) (tictac.Config, func() error, error) {
	var err error
	ec := tictac.DefaultConfig()
	ec.Name = conf.Name
	ec.Seed = conf.Seed
	ec.BatchSize = conf.BatchSize
	ec.Logger = logger
	if ec.Learner, err = agent.ParseKind(conf.Learner); err != nil {
		return ec, nil, err
	}
	if ec.Opponent, err = agent.ParseKind(conf.Opponent); err != nil {
		return ec, nil, err
	}
	ec.Reporters = append(ec.Reporters, report.NewLogger(logger))

	var closers []func() error
	cleanup := func() error {
		var retErr error
		for _, c := range closers {
			if err := c(); err != nil && retErr == nil {
				retErr = err
			}
		}
		return retErr
	}

	if conf.Redis.Enabled {
		pub, err := report.NewPublisher(ctx, conf.Redis.Addr(), conf.Redis.Key)
		if err != nil {
			return ec, cleanup, err
		}
		logger.Info().Str("addr", conf.Redis.Addr()).Str("key", pub.Key()).Msg("publishing-batches")
		ec.Reporters = append(ec.Reporters, pub)
		closers = append(closers, pub.Close)
	}

	if conf.Output.GIF != "" {
		f, err := os.Create(conf.Output.GIF)
		if err != nil {
			return ec, cleanup, errors.WithStack(err)
		}
		enc := gif.NewGifEncoder(300, 500)
		enc.Writer = f
		enc.Every = conf.Output.GIFEvery
		ec.OutputEncoder = enc
		closers = append(closers, f.Close)
	}
	return ec, cleanup, nil
}

func run(ctx context.Context, logger zerolog.Logger, conf *Config) error {
	ec, cleanup, err := engineConfig(ctx, logger, conf)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return err
	}

	e, err := tictac.New(ec)
	if err != nil {
		return err
	}

	start := time.Now()
	trained, err := e.RunEpisodes(ctx, conf.TrainEpisodes, tictac.Train)
	if err != nil {
		e.Close()
		return errors.WithMessage(err, "training stopped")
	}
	logger.Info().
		Int("wins", trained.Wins).
		Int("draws", trained.Draws).
		Int("losses", trained.Losses).
		Dur("took", time.Since(start)).
		Msg("training-done")

	evaluated, err := e.RunEpisodes(ctx, conf.EvalEpisodes, tictac.Evaluate)
	if err != nil {
		e.Close()
		return errors.WithMessage(err, "evaluation stopped")
	}
	mean, std := e.RateStats(tictac.Evaluate)

	p := newPrinter(os.Stdout)
	fmt.Printf("%v (O) against %v (X) after %d training episodes\n", ec.Learner, ec.Opponent, conf.TrainEpisodes)
	fmt.Printf("Wins %d, Draws %d, Losses %d: %.1f%% not lost (batch mean %.3f, stddev %.3f)\n\n",
		evaluated.Wins, evaluated.Draws, evaluated.Losses, 100*evaluated.Rate(), mean, std)

	if err = demo(e, ec, p); err != nil {
		e.Close()
		return err
	}

	if conf.Output.StatsCSV != "" {
		if err = e.Dump(conf.Output.StatsCSV); err != nil {
			e.Close()
			return errors.WithMessage(err, "unable to dump statistics")
		}
	}
	if conf.Output.Dot != "" {
		dot, err := negamax.ToDot(ttt.New(), game.SideX)
		if err != nil {
			e.Close()
			return err
		}
		if err = os.WriteFile(conf.Output.Dot, []byte(dot), 0644); err != nil {
			e.Close()
			return errors.WithStack(err)
		}
	}
	return e.Close()
}

// demo plays one game between the opponent and the trained learner, printing every move.
func demo(e *tictac.Engine, ec tictac.Config, p printer) error {
	b := ttt.New()
	side := game.SideX
	for !b.Result().Ended() {
		kind := ec.Opponent
		if side == e.Learner().Side() {
			kind = ec.Learner
		}
		state := b.State()
		idx, err := e.Decide(state[:], side, kind)
		if err != nil {
			return errors.WithMessagef(err, "%v (%v) could not decide", side, kind)
		}
		b.Move(side, idx)
		fmt.Printf("%v (%v) plays %d\n%s\n", side, kind, idx, p.board(b.State(), idx))
		side = game.Opponent(side)
	}
	fmt.Println(p.result(b.Result()))
	return nil
}
