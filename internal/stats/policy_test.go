package stats

import (
	"math/rand"
	"testing"

	"credence/internal/agent"
)

func newTestAgent(t *testing.T, id, inputDim int) *agent.Recommender {
	t.Helper()
	a, err := agent.NewRecommender(agent.Config{
		ID:             id,
		InputDim:       inputDim,
		ActionDim:      2,
		HiddenUnits:    8,
		LearningRate:   1e-3,
		Discount:       0.99,
		Epsilon:        0.5,
		EpsilonDecay:   0.995,
		EpsilonMin:     0.01,
		BufferCapacity: 10,
		BatchSize:      2,
	}, rand.New(rand.NewSource(int64(id+1))))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return a
}

func TestComputePolicyProbesShapes(t *testing.T) {
	agents := []*agent.Recommender{newTestAgent(t, 0, 2), newTestAgent(t, 1, 2)}

	probes, err := ComputePolicyProbes(agents, 2)
	if err != nil {
		t.Fatalf("compute probes: %v", err)
	}
	if len(probes) != 2 {
		t.Fatalf("expected one probe per agent, got %d", len(probes))
	}
	for i, probe := range probes {
		if probe.AgentID != i {
			t.Fatalf("probe %d has agent id %d", i, probe.AgentID)
		}
		if probe.Epsilon != 0.5 {
			t.Fatalf("probe %d epsilon %f, want 0.5", i, probe.Epsilon)
		}
		if len(probe.QValuesSample) != len(ProbeStates)*2 {
			t.Fatalf("probe %d sample length %d", i, len(probe.QValuesSample))
		}
		if len(probe.GreedyActions) != len(ProbeStates) {
			t.Fatalf("probe %d greedy length %d", i, len(probe.GreedyActions))
		}
		for _, action := range probe.GreedyActions {
			if action != 0 && action != 1 {
				t.Fatalf("probe %d greedy action out of range: %d", i, action)
			}
		}
	}
}

func TestComputePolicyProbesNarrowVariant(t *testing.T) {
	agents := []*agent.Recommender{newTestAgent(t, 0, 1)}

	probes, err := ComputePolicyProbes(agents, 1)
	if err != nil {
		t.Fatalf("compute probes: %v", err)
	}
	if len(probes[0].QValuesSample) != len(ProbeStates)*2 {
		t.Fatalf("sample length %d", len(probes[0].QValuesSample))
	}
}

func TestComputePolicyProbesRejectsBadInputDim(t *testing.T) {
	agents := []*agent.Recommender{newTestAgent(t, 0, 2)}
	if _, err := ComputePolicyProbes(agents, 0); err == nil {
		t.Fatal("expected error for zero input dim")
	}
	if _, err := ComputePolicyProbes(agents, 5); err == nil {
		t.Fatal("expected error for oversized input dim")
	}
}
