// Package qtable is a sparse store of action values, keyed by an exact board configuration.
//
// Tables grow without eviction. That is fine for tic-tac-toe, which has fewer than 5478 reachable
// non-terminal positions, but would not be for a larger game.
package qtable

import "github.com/gorgonia/tictac/game"

// Values holds one score per cell.
type Values [game.Cells]float32

// Masked returns a copy of v where every cell that is not Empty in board is set to sentinel.
func (v Values) Masked(board [game.Cells]game.Mark, sentinel float32) Values {
	for i, m := range board {
		if m != game.Empty {
			v[i] = sentinel
		}
	}
	return v
}

// Argmax returns the index of the first maximum.
func (v Values) Argmax() int {
	var retVal int
	max := v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > max {
			max = v[i]
			retVal = i
		}
	}
	return retVal
}

// Table maps board keys to action values. Absent keys read as all zeros.
//
// A Table is not safe for concurrent use. It is owned by a single learner.
type Table struct {
	m map[string]Values
}

// New creates an empty table.
func New() *Table { return &Table{m: make(map[string]Values)} }

// Get returns a copy of the values for key.
func (t *Table) Get(key string) Values { return t.m[key] }

// Lookup returns the values for key and whether they were ever written.
func (t *Table) Lookup(key string) (Values, bool) {
	v, ok := t.m[key]
	return v, ok
}

// Set replaces the values for key.
func (t *Table) Set(key string, v Values) { t.m[key] = v }

// SetAction writes a single action value for key, creating the entry if needed.
func (t *Table) SetAction(key string, action int, value float32) {
	v := t.m[key]
	v[action] = value
	t.m[key] = v
}

// Len returns the number of keys ever written.
func (t *Table) Len() int { return len(t.m) }
