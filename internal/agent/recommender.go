package agent

import (
	"fmt"
	"math/rand"

	"credence/internal/nn"
)

// Config holds one agent's hyperparameters. All fields are fixed at
// construction; only the exploration rate evolves afterwards, and only
// through DecayEpsilon.
type Config struct {
	ID             int
	InputDim       int
	ActionDim      int
	HiddenUnits    int
	LearningRate   float64
	Discount       float64
	Epsilon        float64
	EpsilonDecay   float64
	EpsilonMin     float64
	BufferCapacity int
	BatchSize      int
}

// Recommender is a value-learning agent. The same type serves every variant
// in the game: the basic recommender observes [p], the extended recommender
// observes [p, t], and the self-play human proxy observes the recommendation
// vector — variants differ only in the state shape they consume.
//
// The policy network, target network, optimizer state and replay buffer are
// exclusively owned; nothing outside this type reads or mutates them.
type Recommender struct {
	id        int
	inputDim  int
	actionDim int
	discount  float64
	batchSize int

	epsilon      float64
	epsilonDecay float64
	epsilonMin   float64

	policy *nn.Network
	target *nn.Network
	opt    *nn.Adam
	buffer *Replay
	rng    *rand.Rand
}

func NewRecommender(cfg Config, rng *rand.Rand) (*Recommender, error) {
	if rng == nil {
		return nil, fmt.Errorf("rng is required")
	}
	if cfg.InputDim <= 0 {
		return nil, fmt.Errorf("input dim must be > 0, got %d", cfg.InputDim)
	}
	if cfg.ActionDim <= 0 {
		return nil, fmt.Errorf("action dim must be > 0, got %d", cfg.ActionDim)
	}
	if cfg.Epsilon < 0 || cfg.Epsilon > 1 {
		return nil, fmt.Errorf("epsilon must be in [0,1], got %f", cfg.Epsilon)
	}
	if cfg.EpsilonDecay <= 0 || cfg.EpsilonDecay > 1 {
		return nil, fmt.Errorf("epsilon decay must be in (0,1], got %f", cfg.EpsilonDecay)
	}
	if cfg.EpsilonMin < 0 || cfg.EpsilonMin > cfg.Epsilon {
		return nil, fmt.Errorf("epsilon floor must be in [0, %f], got %f", cfg.Epsilon, cfg.EpsilonMin)
	}
	if cfg.Discount < 0 || cfg.Discount > 1 {
		return nil, fmt.Errorf("discount must be in [0,1], got %f", cfg.Discount)
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > cfg.BufferCapacity {
		return nil, fmt.Errorf("batch size must be in [1, %d], got %d", cfg.BufferCapacity, cfg.BatchSize)
	}

	hidden := cfg.HiddenUnits
	if hidden <= 0 {
		hidden = 64
	}

	policy, err := nn.NewNetwork(cfg.InputDim, hidden, cfg.ActionDim, rng)
	if err != nil {
		return nil, err
	}
	opt, err := nn.NewAdam(policy, cfg.LearningRate)
	if err != nil {
		return nil, err
	}
	buffer, err := NewReplay(cfg.BufferCapacity)
	if err != nil {
		return nil, err
	}

	return &Recommender{
		id:           cfg.ID,
		inputDim:     cfg.InputDim,
		actionDim:    cfg.ActionDim,
		discount:     cfg.Discount,
		batchSize:    cfg.BatchSize,
		epsilon:      cfg.Epsilon,
		epsilonDecay: cfg.EpsilonDecay,
		epsilonMin:   cfg.EpsilonMin,
		policy:       policy,
		target:       policy.Clone(),
		opt:          opt,
		buffer:       buffer,
		rng:          rng,
	}, nil
}

func (r *Recommender) ID() int { return r.id }

// Epsilon returns the current exploration rate.
func (r *Recommender) Epsilon() float64 { return r.epsilon }

// BufferLen returns the number of stored transitions.
func (r *Recommender) BufferLen() int { return r.buffer.Len() }

// Recommend maps a state to an action: with probability epsilon a uniformly
// random action, otherwise the greedy action under the current parameters.
// Greedy ties resolve to action 0, so behavior is reproducible under a fixed
// seed.
func (r *Recommender) Recommend(state []float64) (int, error) {
	if len(state) != r.inputDim {
		return 0, fmt.Errorf("state size mismatch: got=%d want=%d", len(state), r.inputDim)
	}
	if r.rng.Float64() < r.epsilon {
		return r.rng.Intn(r.actionDim), nil
	}
	values, err := r.policy.Forward(state)
	if err != nil {
		return 0, err
	}
	return nn.Argmax(values)
}

// QValues returns the current value estimates for a state without acting.
func (r *Recommender) QValues(state []float64) ([]float64, error) {
	return r.policy.Forward(state)
}

// ObserveAndLearn appends the transition to the replay buffer and, once the
// buffer holds a full minibatch, performs one gradient step. This is the only
// path that mutates the agent's learned parameters.
func (r *Recommender) ObserveAndLearn(state []float64, action int, reward float64, nextState []float64, done bool) error {
	if err := r.Observe(state, action, reward, nextState, done); err != nil {
		return err
	}
	return r.Update()
}

// Observe appends the transition without training. Used by callers that
// batch their gradient steps at episode boundaries instead of per step.
func (r *Recommender) Observe(state []float64, action int, reward float64, nextState []float64, done bool) error {
	if len(state) != r.inputDim || len(nextState) != r.inputDim {
		return fmt.Errorf("transition state size mismatch: got=%d/%d want=%d", len(state), len(nextState), r.inputDim)
	}
	r.buffer.Push(Transition{
		State:     append([]float64(nil), state...),
		Action:    action,
		Reward:    reward,
		NextState: append([]float64(nil), nextState...),
		Done:      done,
	})
	return nil
}

// Update performs one minibatch gradient step toward the bootstrapped target
// reward + discount * max_a Q_target(next, a), or the bare reward on terminal
// transitions. A no-op until the buffer holds a full minibatch.
func (r *Recommender) Update() error {
	if r.buffer.Len() < r.batchSize {
		return nil
	}

	batch, err := r.buffer.Sample(r.rng, r.batchSize)
	if err != nil {
		return err
	}

	states := make([][]float64, len(batch))
	actions := make([]int, len(batch))
	targets := make([]float64, len(batch))
	for i, tr := range batch {
		states[i] = tr.State
		actions[i] = tr.Action
		target := tr.Reward
		if !tr.Done {
			next, err := r.target.Forward(tr.NextState)
			if err != nil {
				return err
			}
			best, err := nn.Max(next)
			if err != nil {
				return err
			}
			target += r.discount * best
		}
		targets[i] = target
	}

	_, err = r.policy.TrainBatch(states, actions, targets, r.opt)
	return err
}

// SyncTarget copies the policy parameters into the frozen target network.
// Called at episode boundaries.
func (r *Recommender) SyncTarget() error {
	return r.target.CopyFrom(r.policy)
}

// DecayEpsilon applies one multiplicative decay, floored at the configured
// minimum. Called exactly once per episode close.
func (r *Recommender) DecayEpsilon() {
	r.epsilon = nn.Sat(r.epsilon*r.epsilonDecay, r.epsilon, r.epsilonMin)
}
