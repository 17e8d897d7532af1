package qnet

import (
	"fmt"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

var Float = G.Float32

// Net is a fully connected regression network mapping an encoded board to one value per action.
//
// The training graph has a fixed batch of Config.BatchSize rows; smaller batches are padded and masked out
// of the loss. Predictions run on a separate single-row forward graph whose weights are synced after every
// training step.
type Net struct {
	Config

	g      *G.ExprGraph
	input  *G.Node // BatchSize × Inputs
	target *G.Node // BatchSize × Outputs
	mask   *G.Node // BatchSize × Outputs

	output *G.Node
	outVal G.Value // predicted values
	cost   G.Value // cost, for training recording

	vm     G.VM
	solver G.Solver

	xs, ys, ms *tensor.Dense // preallocated inputs

	inf *Inferencer
	err error // graph construction error
}

// New returns a new, uninitialized *Net.
func New(conf Config) *Net {
	return &Net{
		Config: conf,
	}
}

// Init builds the graphs. It must be called before Predict or Train.
func (n *Net) Init() error {
	if !n.IsValid() {
		return errors.Errorf("invalid network config %+v", n.Config)
	}
	n.reset()
	n.g = G.NewGraph()
	n.fwd()
	if err := n.bwd(); err != nil {
		return err
	}
	if n.FwdOnly {
		n.vm = G.NewTapeMachine(n.g)
		return nil
	}

	n.vm = G.NewTapeMachine(n.g, G.BindDualValues(n.Model()...))
	opts := []G.SolverOpt{G.WithLearnRate(n.LearnRate)}
	if n.Clip > 0 {
		opts = append(opts, G.WithClip(n.Clip))
	}
	n.solver = G.NewVanillaSolver(opts...)

	n.xs = tensor.New(tensor.WithShape(n.BatchSize, n.Inputs), tensor.Of(Float))
	n.ys = tensor.New(tensor.WithShape(n.BatchSize, n.Outputs), tensor.Of(Float))
	n.ms = tensor.New(tensor.WithShape(n.BatchSize, n.Outputs), tensor.Of(Float))

	var err error
	if n.inf, err = newInferencer(n); err != nil {
		return err
	}
	return nil
}

func (n *Net) fwd() {
	n.input = G.NewMatrix(n.g, Float, G.WithShape(n.BatchSize, n.Inputs), G.WithName("Input"))

	var m maebe
	hidden := n.input
	for i := 0; i < n.Layers; i++ {
		hidden = m.rectify(m.linear(hidden, n.Hidden, fmt.Sprintf("Hidden%d", i)))
	}
	n.output = m.linear(hidden, n.Outputs, "Output")
	if m.err == nil {
		G.Read(n.output, &n.outVal)
	}
	n.err = m.err
}

func (n *Net) bwd() error {
	if n.err != nil {
		return n.err
	}
	if n.FwdOnly {
		return nil
	}
	n.target = G.NewMatrix(n.g, Float, G.WithShape(n.BatchSize, n.Outputs), G.WithName("Target"))
	n.mask = G.NewMatrix(n.g, Float, G.WithShape(n.BatchSize, n.Outputs), G.WithName("Mask"))

	var m maebe
	cost := m.mse(n.output, n.target, n.mask)
	if m.err != nil {
		return m.err
	}
	G.Read(cost, &n.cost)

	if _, err := G.Grad(cost, n.Model()...); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Model returns the learnable parameters in construction order.
func (n *Net) Model() G.Nodes {
	retVal := make(G.Nodes, 0, 2*(n.Layers+1))
	for _, node := range n.g.AllNodes() {
		if node.IsVar() && node != n.input && node != n.target && node != n.mask {
			retVal = append(retVal, node)
		}
	}
	return retVal
}

func (n *Net) reset() {
	n.g = nil
	n.input = nil
	n.target = nil
	n.mask = nil
	n.output = nil
	n.err = nil
}

// Close implements a closer, because well, a gorgonia VM is a resource.
func (n *Net) Close() error {
	var allErrs manyErr
	if n.inf != nil {
		if err := n.inf.Close(); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	if n.vm != nil {
		if err := n.vm.Close(); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	if len(allErrs) > 0 {
		return allErrs
	}
	return nil
}
