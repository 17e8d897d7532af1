package qnet

// Config configures the neural network
type Config struct {
	Inputs  int // encoded board size
	Outputs int // one value per action
	Hidden  int // hidden layer width
	Layers  int // number of hidden layers

	BatchSize int     // maximum number of examples in a single Train call
	LearnRate float64 // SGD step size
	Clip      float64 // gradient clipping, 0 disables

	FwdOnly bool // is this a fwd only graph?
}

// DefaultConf returns a configuration for boards of the given cell count.
func DefaultConf(cells int) Config {
	return Config{
		Inputs:  cells,
		Outputs: cells,
		Hidden:  round(4 * cells),
		Layers:  1,

		BatchSize: cells,
		LearnRate: 0.01,
		Clip:      5,
	}
}

func (conf Config) IsValid() bool {
	return conf.Inputs >= 1 &&
		conf.Outputs >= 1 &&
		conf.Hidden >= 1 &&
		conf.Layers >= 0 &&
		conf.BatchSize >= 1 &&
		conf.LearnRate > 0 &&
		conf.Clip >= 0
}

func round(a int) int {
	n := a - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++

	lt := n / 2
	if (a - lt) < (n - a) {
		return lt
	}
	return n
}
