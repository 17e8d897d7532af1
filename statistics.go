package tictac

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Statistics is the history of every batch reported by an Engine.
type Statistics struct {
	Batches []Batch
}

func makeStatistics() Statistics {
	return Statistics{
		Batches: make([]Batch, 0, 64),
	}
}

func (s *Statistics) update(b Batch) { s.Batches = append(s.Batches, b) }

// RateStats returns the mean and the standard deviation of the non-loss rate of the batches played in mode.
func (s *Statistics) RateStats(mode Mode) (mean, std float64) {
	var rates, weights []float64
	for _, b := range s.Batches {
		if b.Mode != mode.String() {
			continue
		}
		rates = append(rates, b.Rate())
		weights = append(weights, float64(b.Games))
	}
	if len(rates) == 0 {
		return 0, 0
	}
	if len(rates) == 1 {
		return rates[0], 0
	}
	return stat.MeanStdDev(rates, weights)
}

var header = []string{"batch", "mode", "games", "wins", "draws", "losses", "rate"}

// Dump writes the batch history as CSV to filename.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	records := make([][]string, 0, len(s.Batches))
	for _, b := range s.Batches {
		records = append(records, []string{
			strconv.Itoa(b.Index),
			b.Mode,
			strconv.Itoa(b.Games),
			strconv.Itoa(b.Wins),
			strconv.Itoa(b.Draws),
			strconv.Itoa(b.Losses),
			strconv.FormatFloat(b.Rate(), 'f', 3, 64),
		})
	}
	// WriteAll flushes.
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}
