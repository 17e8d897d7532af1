package qnet

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"
)

// Train performs one batched gradient descent step minimising the mean squared error between the predictions
// for xs and the targets ys. It returns the cost before the step.
//
// len(xs) must equal len(ys) and must not exceed BatchSize.
func (n *Net) Train(ctx context.Context, xs, ys [][]float32) (cost float32, err error) {
	if n.FwdOnly || n.solver == nil {
		return 0, errors.New("cannot train an uninitialized or forward only network")
	}
	if len(xs) != len(ys) {
		return 0, errors.Errorf("got %d inputs but %d targets", len(xs), len(ys))
	}
	if len(xs) == 0 || len(xs) > n.BatchSize {
		return 0, errors.Errorf("batch of %d examples, expected between 1 and %d", len(xs), n.BatchSize)
	}
	if err = ctx.Err(); err != nil {
		return 0, err
	}

	xsData := n.xs.Data().([]float32)
	ysData := n.ys.Data().([]float32)
	msData := n.ms.Data().([]float32)
	n.xs.Zero()
	n.ys.Zero()
	n.ms.Zero()
	for i := range xs {
		if len(xs[i]) != n.Inputs || len(ys[i]) != n.Outputs {
			return 0, errors.Errorf("example %d has shape (%d, %d), expected (%d, %d)", i, len(xs[i]), len(ys[i]), n.Inputs, n.Outputs)
		}
		copy(xsData[i*n.Inputs:], xs[i])
		copy(ysData[i*n.Outputs:], ys[i])
	}
	rows := msData[:len(xs)*n.Outputs]
	for i := range rows {
		rows[i] = 1
	}
	vecf32.Scale(rows, 1/float32(len(rows)))

	if err = G.Let(n.input, n.xs); err != nil {
		return 0, errors.WithStack(err)
	}
	if err = G.Let(n.target, n.ys); err != nil {
		return 0, errors.WithStack(err)
	}
	if err = G.Let(n.mask, n.ms); err != nil {
		return 0, errors.WithStack(err)
	}

	defer n.vm.Reset()
	if err = n.vm.RunAll(); err != nil {
		return 0, errors.Wrap(err, "forward/backward pass failed")
	}
	cost = n.cost.Data().(float32)
	if math32.IsNaN(cost) || math32.IsInf(cost, 0) {
		return cost, errors.Errorf("training diverged, cost %v", cost)
	}
	if err = n.solver.Step(G.NodesToValueGrads(n.Model())); err != nil {
		return cost, errors.Wrap(err, "solver step failed")
	}
	return cost, n.inf.sync(n)
}

// Predict runs a single encoded board through the network.
func (n *Net) Predict(x []float32) ([]float32, error) {
	if n.inf == nil {
		return nil, errors.New("network is not initialized")
	}
	return n.inf.Infer(x)
}

// Inferencer is a struct that holds the state for a forward only *Net of batch size 1 and its VM. By using an
// Inferencer, there is no longer a need to pad a whole training batch to predict a single board.
type Inferencer struct {
	n     *Net
	input *tensor.Dense
}

func newInferencer(trained *Net) (*Inferencer, error) {
	conf := trained.Config
	conf.FwdOnly = true
	conf.BatchSize = 1
	retVal := &Inferencer{
		n:     New(conf),
		input: tensor.New(tensor.WithShape(1, conf.Inputs), tensor.Of(Float)),
	}
	if err := retVal.n.Init(); err != nil {
		return nil, err
	}
	if err := retVal.sync(trained); err != nil {
		return nil, err
	}
	return retVal, nil
}

// sync copies the learnt parameters of trained into the inference graph.
func (m *Inferencer) sync(trained *Net) error {
	infModel := m.n.Model()
	model := trained.Model()
	if len(infModel) != len(model) {
		return errors.Errorf("model mismatch: %d learnables, inference graph has %d", len(model), len(infModel))
	}
	for i, node := range model {
		original := node.Value().Data().([]float32)
		cloned := infModel[i].Value().Data().([]float32)
		copy(cloned, original)
	}
	return nil
}

// Infer takes the encoded board and returns a fresh slice of predicted values.
func (m *Inferencer) Infer(board []float32) ([]float32, error) {
	if len(board) != m.n.Inputs {
		return nil, errors.Errorf("input of length %d, expected %d", len(board), m.n.Inputs)
	}
	data := m.input.Data().([]float32)
	copy(data, board)

	m.n.vm.Reset()
	if err := G.Let(m.n.input, m.input); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := m.n.vm.RunAll(); err != nil {
		return nil, errors.WithStack(err)
	}
	out := m.n.outVal.Data().([]float32)
	retVal := make([]float32, len(out))
	copy(retVal, out)
	if !valid(retVal) {
		return retVal, errors.Errorf("prediction is not finite: %v", retVal)
	}
	return retVal, nil
}

// Close closes the VM.
func (m *Inferencer) Close() error { return m.n.vm.Close() }

func valid(a []float32) bool {
	for _, v := range a {
		if math32.IsInf(v, 0) {
			return false
		}
		if math32.IsNaN(v) {
			return false
		}
	}
	return true
}
