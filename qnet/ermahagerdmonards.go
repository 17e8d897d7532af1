package qnet

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	nnops "gorgonia.org/gorgonia/ops/nn"
)

type maebe struct {
	err error
}

// generic monad... may be useful
func (m *maebe) do(f func() (*G.Node, error)) (retVal *G.Node) {
	if m.err != nil {
		return nil
	}
	if retVal, m.err = f(); m.err != nil {
		m.err = errors.WithStack(m.err)
	}
	return
}

// linear is a fully connected layer. The bias is a single row broadcast over the batch.
func (m *maebe) linear(input *G.Node, units int, name string) *G.Node {
	if m.err != nil {
		return nil
	}
	w := G.NewMatrix(input.Graph(), Float, G.WithShape(input.Shape()[1], units), G.WithInit(G.GlorotN(1.0)), G.WithName(name+"_w"))
	xw := m.do(func() (*G.Node, error) { return G.Mul(input, w) })
	if m.err != nil {
		return nil
	}
	b := G.NewMatrix(input.Graph(), Float, G.WithShape(1, units), G.WithName(name+"_b"), G.WithInit(G.Zeroes()))
	return m.do(func() (*G.Node, error) { return G.BroadcastAdd(xw, b, nil, []byte{0}) })
}

func (m *maebe) rectify(input *G.Node) (retVal *G.Node) {
	if m.err != nil {
		return nil
	}
	if retVal, m.err = nnops.Rectify(input); m.err != nil {
		m.err = errors.WithStack(m.err)
	}
	return
}

// mse is the mean squared error between output and target. The mask carries 1/(rows*cols) for
// every real example and 0 for padding, so padded rows neither count towards the mean nor get gradients.
func (m *maebe) mse(output, target, mask *G.Node) *G.Node {
	diff := m.do(func() (*G.Node, error) { return G.Sub(output, target) })
	sq := m.do(func() (*G.Node, error) { return G.Square(diff) })
	weighted := m.do(func() (*G.Node, error) { return G.HadamardProd(mask, sq) })
	return m.do(func() (*G.Node, error) { return G.Sum(weighted) })
}
