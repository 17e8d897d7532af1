package ttt

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gorgonia/tictac/game"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	X = game.X
	O = game.O
	Z = game.Empty
)

func TestCheck(t *testing.T) {
	cases := []struct {
		name  string
		cells [9]game.Mark
		want  game.Result
	}{
		{"empty", [9]game.Mark{}, game.None},
		{"diagonal X", [9]game.Mark{
			X, O, X,
			O, X, O,
			O, O, X,
		}, game.XWins},
		{"anti-diagonal O", [9]game.Mark{
			X, O, O,
			X, O, X,
			O, X, X,
		}, game.OWins},
		{"column X", [9]game.Mark{
			O, Z, X,
			Z, Z, X,
			Z, O, X,
		}, game.XWins},
		{"top row O", [9]game.Mark{
			O, O, O,
			Z, Z, X,
			X, O, X,
		}, game.OWins},
		{"bottom row O", [9]game.Mark{
			Z, Z, X,
			X, O, X,
			O, O, O,
		}, game.OWins},
		{"draw", [9]game.Mark{
			X, O, X,
			X, O, O,
			O, X, X,
		}, game.Draw},
		{"in progress", [9]game.Mark{
			X, O, Z,
			Z, Z, Z,
			Z, Z, Z,
		}, game.None},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := New()
			b.Set(c.cells)
			assert.Equal(t, c.want, b.Check())
			assert.Equal(t, c.want, b.Result())
		})
	}
}

func TestMove(t *testing.T) {
	b := New()
	require.True(t, b.Move(Cross, 4))
	require.True(t, b.Move(Nought, 0))

	t.Run("occupied cell", func(t *testing.T) {
		before := b.State()
		assert.False(t, b.Move(Cross, 4))
		assert.False(t, b.Move(Nought, 0))
		if diff := cmp.Diff(before, b.State()); diff != "" {
			t.Errorf("board mutated (-before +after):\n%s", diff)
		}
	})

	t.Run("terminal board", func(t *testing.T) {
		b := New()
		for _, m := range []game.PlayerMove{{Side: Cross, Index: 0}, {Side: Nought, Index: 3}, {Side: Cross, Index: 1}, {Side: Nought, Index: 4}, {Side: Cross, Index: 2}} {
			require.True(t, b.Move(m.Side, m.Index), "%v", m)
		}
		require.Equal(t, game.XWins, b.Result())

		before := b.State()
		assert.False(t, b.Move(Nought, 5))
		assert.Equal(t, before, b.State())
		assert.Equal(t, game.XWins, b.Result())
	})

	t.Run("out of range", func(t *testing.T) {
		b := New()
		assert.Error(t, b.Validate(9))
		assert.True(t, errors.Is(b.Validate(-1), game.ErrInvalidArgument))
		assert.NoError(t, b.Validate(8))
		assert.Panics(t, func() { b.Move(Cross, 9) })
		assert.Panics(t, func() { b.Move(game.NoSide, 0) })
	})
}

// TestAtMostOneWinner plays every reachable game and checks that no position has two winners.
func TestAtMostOneWinner(t *testing.T) {
	var positions int
	var walk func(b *Board, side game.Side)
	walk = func(b *Board, side game.Side) {
		positions++
		var xLine, oLine bool
		for _, l := range Lines {
			m := b.At(l[0])
			if m != Z && m == b.At(l[1]) && m == b.At(l[2]) {
				xLine = xLine || m == X
				oLine = oLine || m == O
			}
		}
		if xLine && oLine {
			t.Fatalf("both sides won:\n%v", b)
		}
		if b.Result().Ended() {
			return
		}
		for _, i := range b.Empty() {
			next := b.Clone()
			if !next.Move(side, i) {
				t.Fatalf("legal move %d rejected:\n%v", i, b)
			}
			walk(next, game.Opponent(side))
		}
	}
	walk(New(), Cross)
	t.Logf("visited %d positions", positions)
}

func TestReset(t *testing.T) {
	b := New()
	b.Move(Cross, 0)
	b.Move(Nought, 1)
	b.Reset()
	assert.Equal(t, [9]game.Mark{}, b.State())
	assert.Equal(t, game.None, b.Result())
	assert.Len(t, b.Empty(), 9)
}

func TestKeyAndFormat(t *testing.T) {
	b := New()
	b.Set([9]game.Mark{
		X, Z, O,
		Z, X, Z,
		Z, Z, Z,
	})
	assert.Equal(t, "X-O-X----", b.Key())
	assert.Equal(t, []int{1, 3, 5, 6, 7, 8}, b.Empty())
	assert.Equal(t, "⎢ X · O ⎥\n⎢ · X · ⎥\n⎢ · · · ⎥\n", fmt.Sprintf("%v", b))

	c := b.Clone()
	c.Move(Nought, 8)
	assert.False(t, b.Eq(c))
	assert.Equal(t, Z, b.At(8))
}
