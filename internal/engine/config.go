package engine

import "fmt"

// Config holds every simulation hyperparameter. It is validated once at
// construction and immutable afterwards.
type Config struct {
	// Agent hyperparameters.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
	Discount     float64 `json:"discount_factor" yaml:"discount_factor"`
	Epsilon      float64 `json:"initial_exploration_rate" yaml:"initial_exploration_rate"`
	EpsilonDecay float64 `json:"exploration_decay" yaml:"exploration_decay"`
	EpsilonMin   float64 `json:"exploration_rate_floor" yaml:"exploration_rate_floor"`

	// Architecture. InputDim selects the agent variant: 1 observes [p],
	// 2 observes [p, t].
	NumAgents   int `json:"num_agents" yaml:"num_agents"`
	InputDim    int `json:"input_dim" yaml:"input_dim"`
	ActionDim   int `json:"action_dim" yaml:"action_dim"`
	HiddenUnits int `json:"hidden_units" yaml:"hidden_units"`

	// Training.
	ReplayCapacity int `json:"replay_capacity" yaml:"replay_capacity"`
	BatchSize      int `json:"minibatch_size" yaml:"minibatch_size"`

	// Environment.
	StepsPerEpisode int `json:"steps_per_episode" yaml:"steps_per_episode"`

	// Seed drives every stochastic draw in the session. Zero means derive
	// from the clock at construction.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the standard two-agent game setup.
func DefaultConfig() Config {
	return Config{
		LearningRate:    1e-3,
		Discount:        0.99,
		Epsilon:         1.0,
		EpsilonDecay:    0.995,
		EpsilonMin:      0.01,
		NumAgents:       2,
		InputDim:        2,
		ActionDim:       2,
		HiddenUnits:     64,
		ReplayCapacity:  10000,
		BatchSize:       64,
		StepsPerEpisode: 20,
	}
}

// Validate checks every hyperparameter against its documented domain. A
// config that fails validation never constructs a session.
func (c Config) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0, got %g", c.LearningRate)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("discount_factor must be in [0,1], got %g", c.Discount)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("initial_exploration_rate must be in [0,1], got %g", c.Epsilon)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("exploration_decay must be in (0,1], got %g", c.EpsilonDecay)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.Epsilon {
		return fmt.Errorf("exploration_rate_floor must be in [0, %g], got %g", c.Epsilon, c.EpsilonMin)
	}
	if c.NumAgents != 2 {
		return fmt.Errorf("num_agents is fixed at 2, got %d", c.NumAgents)
	}
	if c.InputDim != 1 && c.InputDim != 2 {
		return fmt.Errorf("input_dim must be 1 ([p]) or 2 ([p, t]), got %d", c.InputDim)
	}
	if c.ActionDim != 2 {
		return fmt.Errorf("action_dim is fixed at 2, got %d", c.ActionDim)
	}
	if c.HiddenUnits <= 0 {
		return fmt.Errorf("hidden_units must be > 0, got %d", c.HiddenUnits)
	}
	if c.ReplayCapacity <= 0 {
		return fmt.Errorf("replay_capacity must be > 0, got %d", c.ReplayCapacity)
	}
	if c.BatchSize <= 0 || c.BatchSize > c.ReplayCapacity {
		return fmt.Errorf("minibatch_size must be in [1, %d], got %d", c.ReplayCapacity, c.BatchSize)
	}
	if c.StepsPerEpisode <= 0 {
		return fmt.Errorf("steps_per_episode must be > 0, got %d", c.StepsPerEpisode)
	}
	return nil
}
