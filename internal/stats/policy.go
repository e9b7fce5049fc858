package stats

import (
	"fmt"

	"credence/internal/agent"
	"credence/internal/model"
	"credence/internal/nn"
)

// ProbeStates are the fixed representative states each agent's value
// estimates are sampled at: low p at episode start, mid p mid-episode, high
// p at episode start. Agents with a narrower state shape see a prefix.
var ProbeStates = [][]float64{
	{0.25, 0},
	{0.50, 10},
	{0.75, 0},
}

// ComputePolicyProbes samples every agent's value estimates and greedy
// action at the probe states. Read-only with respect to the agents.
func ComputePolicyProbes(agents []*agent.Recommender, inputDim int) ([]model.PolicyProbe, error) {
	if inputDim <= 0 || inputDim > len(ProbeStates[0]) {
		return nil, fmt.Errorf("input dim %d outside probe shape [1, %d]", inputDim, len(ProbeStates[0]))
	}

	probes := make([]model.PolicyProbe, len(agents))
	for i, a := range agents {
		sample := make([]float64, 0, len(ProbeStates)*2)
		greedy := make([]int, 0, len(ProbeStates))
		for _, state := range ProbeStates {
			values, err := a.QValues(state[:inputDim])
			if err != nil {
				return nil, fmt.Errorf("agent %d probe: %w", a.ID(), err)
			}
			sample = append(sample, values...)
			action, err := nn.Argmax(values)
			if err != nil {
				return nil, err
			}
			greedy = append(greedy, action)
		}
		probes[i] = model.PolicyProbe{
			AgentID:       a.ID(),
			Epsilon:       a.Epsilon(),
			QValuesSample: sample,
			GreedyActions: greedy,
		}
	}
	return probes, nil
}
