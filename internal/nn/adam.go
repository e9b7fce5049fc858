package nn

import (
	"fmt"
	"math"
)

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// Adam holds first/second moment estimates for one network's parameters and
// applies bias-corrected updates. An Adam instance is bound to the shape of
// the network it was created for.
type Adam struct {
	lr   float64
	step int

	mW1, vW1 [][]float64
	mB1, vB1 []float64
	mW2, vW2 [][]float64
	mB2, vB2 []float64
}

func NewAdam(n *Network, learningRate float64) (*Adam, error) {
	if learningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be > 0, got %f", learningRate)
	}
	return &Adam{
		lr:  learningRate,
		mW1: newMatrix(n.hiddenDim, n.inDim),
		vW1: newMatrix(n.hiddenDim, n.inDim),
		mB1: make([]float64, n.hiddenDim),
		vB1: make([]float64, n.hiddenDim),
		mW2: newMatrix(n.outDim, n.hiddenDim),
		vW2: newMatrix(n.outDim, n.hiddenDim),
		mB2: make([]float64, n.outDim),
		vB2: make([]float64, n.outDim),
	}, nil
}

// Apply performs one optimizer step in place on the network's parameters.
func (a *Adam) Apply(n *Network, g *Gradients) error {
	if len(a.mB1) != n.hiddenDim || len(a.mB2) != n.outDim || len(a.mW1[0]) != n.inDim {
		return fmt.Errorf("optimizer bound to a different network shape")
	}

	a.step++
	for j := range n.w1 {
		a.applyRow(n.w1[j], g.w1[j], a.mW1[j], a.vW1[j])
	}
	a.applyRow(n.b1, g.b1, a.mB1, a.vB1)
	for i := range n.w2 {
		a.applyRow(n.w2[i], g.w2[i], a.mW2[i], a.vW2[i])
	}
	a.applyRow(n.b2, g.b2, a.mB2, a.vB2)
	return nil
}

func (a *Adam) applyRow(params, grads, m, v []float64) {
	correction1 := 1 - math.Pow(adamBeta1, float64(a.step))
	correction2 := 1 - math.Pow(adamBeta2, float64(a.step))
	for i := range params {
		m[i] = adamBeta1*m[i] + (1-adamBeta1)*grads[i]
		v[i] = adamBeta2*v[i] + (1-adamBeta2)*grads[i]*grads[i]
		mHat := m[i] / correction1
		vHat := v[i] / correction2
		params[i] -= a.lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}
