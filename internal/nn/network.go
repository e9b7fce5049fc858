package nn

import (
	"fmt"
	"math"
	"math/rand"
)

// Network is a dense one-hidden-layer ReLU network mapping a state vector to
// one estimated value per action. Parameter layout: w1 is hidden x in, w2 is
// out x hidden.
type Network struct {
	inDim     int
	hiddenDim int
	outDim    int

	w1 [][]float64
	b1 []float64
	w2 [][]float64
	b2 []float64
}

func NewNetwork(inDim, hiddenDim, outDim int, rng *rand.Rand) (*Network, error) {
	if inDim <= 0 || hiddenDim <= 0 || outDim <= 0 {
		return nil, fmt.Errorf("network dims must be > 0, got in=%d hidden=%d out=%d", inDim, hiddenDim, outDim)
	}
	if rng == nil {
		return nil, fmt.Errorf("rng is required")
	}

	n := &Network{
		inDim:     inDim,
		hiddenDim: hiddenDim,
		outDim:    outDim,
		w1:        newMatrix(hiddenDim, inDim),
		b1:        make([]float64, hiddenDim),
		w2:        newMatrix(outDim, hiddenDim),
		b2:        make([]float64, outDim),
	}
	initUniform(n.w1, inDim, hiddenDim, rng)
	initUniform(n.w2, hiddenDim, outDim, rng)
	return n, nil
}

func (n *Network) Dims() (in, hidden, out int) {
	return n.inDim, n.hiddenDim, n.outDim
}

// Forward returns the estimated value for each action at the given state.
func (n *Network) Forward(input []float64) ([]float64, error) {
	_, out, err := n.forward(input)
	return out, err
}

func (n *Network) forward(input []float64) (hidden, out []float64, err error) {
	if len(input) != n.inDim {
		return nil, nil, fmt.Errorf("input size mismatch: got=%d want=%d", len(input), n.inDim)
	}

	hidden = make([]float64, n.hiddenDim)
	for j := 0; j < n.hiddenDim; j++ {
		sum := n.b1[j]
		for k := 0; k < n.inDim; k++ {
			sum += n.w1[j][k] * input[k]
		}
		if sum > 0 {
			hidden[j] = sum
		}
	}

	out = make([]float64, n.outDim)
	for a := 0; a < n.outDim; a++ {
		sum := n.b2[a]
		for j := 0; j < n.hiddenDim; j++ {
			sum += n.w2[a][j] * hidden[j]
		}
		out[a] = sum
	}
	return hidden, out, nil
}

// TrainBatch performs one gradient step on the mean squared error between the
// value of each sample's taken action and its target, applied through the
// optimizer. Returns the pre-step batch loss.
func (n *Network) TrainBatch(states [][]float64, actions []int, targets []float64, opt *Adam) (float64, error) {
	if len(states) == 0 {
		return 0, fmt.Errorf("batch must not be empty")
	}
	if len(actions) != len(states) || len(targets) != len(states) {
		return 0, fmt.Errorf("batch shape mismatch: states=%d actions=%d targets=%d", len(states), len(actions), len(targets))
	}
	if opt == nil {
		return 0, fmt.Errorf("optimizer is required")
	}

	grads := NewGradients(n)
	loss := 0.0
	scale := 1.0 / float64(len(states))

	for i, state := range states {
		action := actions[i]
		if action < 0 || action >= n.outDim {
			return 0, fmt.Errorf("action %d outside output range [0, %d)", action, n.outDim)
		}

		hidden, out, err := n.forward(state)
		if err != nil {
			return 0, err
		}

		diff := out[action] - targets[i]
		loss += diff * diff * scale

		// d(loss)/d(out[action]) for the mean squared error.
		delta := 2 * diff * scale
		grads.b2[action] += delta
		for j := 0; j < n.hiddenDim; j++ {
			grads.w2[action][j] += delta * hidden[j]
			if hidden[j] > 0 {
				dz := delta * n.w2[action][j]
				grads.b1[j] += dz
				for k := 0; k < n.inDim; k++ {
					grads.w1[j][k] += dz * state[k]
				}
			}
		}
	}

	if err := opt.Apply(n, grads); err != nil {
		return 0, err
	}
	return loss, nil
}

// Clone returns a deep copy, used for frozen target networks.
func (n *Network) Clone() *Network {
	out := &Network{
		inDim:     n.inDim,
		hiddenDim: n.hiddenDim,
		outDim:    n.outDim,
		w1:        copyMatrix(n.w1),
		b1:        append([]float64(nil), n.b1...),
		w2:        copyMatrix(n.w2),
		b2:        append([]float64(nil), n.b2...),
	}
	return out
}

// CopyFrom overwrites this network's parameters with those of src. Both
// networks must share the same shape.
func (n *Network) CopyFrom(src *Network) error {
	if src.inDim != n.inDim || src.hiddenDim != n.hiddenDim || src.outDim != n.outDim {
		return fmt.Errorf("network shape mismatch: %dx%dx%d vs %dx%dx%d",
			n.inDim, n.hiddenDim, n.outDim, src.inDim, src.hiddenDim, src.outDim)
	}
	for j := range n.w1 {
		copy(n.w1[j], src.w1[j])
	}
	copy(n.b1, src.b1)
	for a := range n.w2 {
		copy(n.w2[a], src.w2[a])
	}
	copy(n.b2, src.b2)
	return nil
}

// Gradients accumulates one batch worth of parameter gradients, shaped
// exactly like the network's parameters.
type Gradients struct {
	w1 [][]float64
	b1 []float64
	w2 [][]float64
	b2 []float64
}

func NewGradients(n *Network) *Gradients {
	return &Gradients{
		w1: newMatrix(n.hiddenDim, n.inDim),
		b1: make([]float64, n.hiddenDim),
		w2: newMatrix(n.outDim, n.hiddenDim),
		b2: make([]float64, n.outDim),
	}
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func copyMatrix(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func initUniform(m [][]float64, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	for i := range m {
		for j := range m[i] {
			m[i][j] = (rng.Float64()*2 - 1) * limit
		}
	}
}
