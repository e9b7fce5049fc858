package nn

import (
	"math/rand"
	"testing"
)

func TestForwardWithHandSetWeights(t *testing.T) {
	n, err := NewNetwork(2, 2, 2, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new network: %v", err)
	}

	// Identity-ish wiring: hidden j passes input j through, output a reads
	// hidden a with weight 1.
	n.w1 = [][]float64{{1, 0}, {0, 1}}
	n.b1 = []float64{0, 0}
	n.w2 = [][]float64{{1, 0}, {0, 1}}
	n.b2 = []float64{0.5, -0.5}

	out, err := n.Forward([]float64{2, 3})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if out[0] != 2.5 || out[1] != 2.5 {
		t.Fatalf("unexpected outputs: %v", out)
	}
}

func TestForwardRejectsShapeMismatch(t *testing.T) {
	n, err := NewNetwork(2, 4, 2, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	if _, err := n.Forward([]float64{1}); err == nil {
		t.Fatal("expected shape mismatch error")
	}
	if _, err := n.Forward([]float64{1, 2, 3}); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestTrainBatchReducesLossOnFixedBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n, err := NewNetwork(2, 16, 2, rng)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	opt, err := NewAdam(n, 1e-2)
	if err != nil {
		t.Fatalf("new adam: %v", err)
	}

	states := [][]float64{{0.2, 0}, {0.8, 0}, {0.5, 10}, {0.9, 5}}
	actions := []int{0, 1, 1, 0}
	targets := []float64{-1, 1, 1, -1}

	first, err := n.TrainBatch(states, actions, targets, opt)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	var last float64
	for i := 0; i < 300; i++ {
		last, err = n.TrainBatch(states, actions, targets, opt)
		if err != nil {
			t.Fatalf("train step %d: %v", i, err)
		}
	}
	if last >= first {
		t.Fatalf("expected loss to decrease, first=%f last=%f", first, last)
	}
}

func TestCloneAndCopyFromKeepTargetFrozen(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	policy, err := NewNetwork(2, 8, 2, rng)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	target := policy.Clone()

	state := []float64{0.4, 2}
	before, err := target.Forward(state)
	if err != nil {
		t.Fatalf("target forward: %v", err)
	}

	opt, err := NewAdam(policy, 1e-2)
	if err != nil {
		t.Fatalf("new adam: %v", err)
	}
	for i := 0; i < 50; i++ {
		if _, err := policy.TrainBatch([][]float64{state}, []int{0}, []float64{5}, opt); err != nil {
			t.Fatalf("train: %v", err)
		}
	}

	after, err := target.Forward(state)
	if err != nil {
		t.Fatalf("target forward: %v", err)
	}
	if before[0] != after[0] || before[1] != after[1] {
		t.Fatal("training the policy must not move the cloned target")
	}

	if err := target.CopyFrom(policy); err != nil {
		t.Fatalf("copy from: %v", err)
	}
	synced, err := target.Forward(state)
	if err != nil {
		t.Fatalf("target forward: %v", err)
	}
	want, err := policy.Forward(state)
	if err != nil {
		t.Fatalf("policy forward: %v", err)
	}
	if synced[0] != want[0] || synced[1] != want[1] {
		t.Fatalf("target not synced: %v vs %v", synced, want)
	}
}

func TestArgmaxPrefersLowestIndexOnTies(t *testing.T) {
	idx, err := Argmax([]float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("argmax: %v", err)
	}
	if idx != 0 {
		t.Fatalf("tie must resolve to index 0, got %d", idx)
	}

	idx, err = Argmax([]float64{-1, 3, 3, 2})
	if err != nil {
		t.Fatalf("argmax: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected first maximum index 1, got %d", idx)
	}

	if _, err := Argmax(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
