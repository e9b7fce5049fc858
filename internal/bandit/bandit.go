package bandit

import (
	"fmt"
	"math/rand"

	"credence/internal/model"
)

// Environment is the stochastic coin game. Each step it holds one hidden
// probability p; the coin resolves Heads with probability p after the human
// has committed to one agent's recommendation. A fresh p is drawn for every
// step and never reused.
type Environment struct {
	maxSteps int
	steps    int
	p        float64
	rng      *rand.Rand

	history map[int][]Transition
}

// Transition is one replay-buffer quintuple, also archived per agent in the
// environment's episode history.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// StepOutcome is what one environment step resolves to, before any learning.
type StepOutcome struct {
	HumanReward  float64
	AgentRewards []float64
	Outcome      model.Outcome
	Done         bool
	NextObs      []float64
}

func New(maxSteps int, rng *rand.Rand) (*Environment, error) {
	if maxSteps <= 0 {
		return nil, fmt.Errorf("max steps must be > 0, got %d", maxSteps)
	}
	if rng == nil {
		return nil, fmt.Errorf("rng is required")
	}
	return &Environment{maxSteps: maxSteps, rng: rng}, nil
}

// Reset starts a fresh episode and returns the initial observation [p, 0].
func (e *Environment) Reset() []float64 {
	e.steps = 0
	e.p = e.DrawProbability()
	e.history = map[int][]Transition{}
	return e.observation()
}

// DrawProbability returns a fresh hidden probability, uniform in [0, 1].
func (e *Environment) DrawProbability() float64 {
	return e.rng.Float64()
}

// ReferenceRecommendation is the non-learning yardstick policy: recommend
// exactly when p >= 0.5. Used only for accuracy bookkeeping, never for
// training.
func ReferenceRecommendation(p float64) int {
	if p >= 0.5 {
		return 1
	}
	return 0
}

// Resolve realizes the coin for the given probability.
func (e *Environment) Resolve(p float64) model.Outcome {
	if e.rng.Float64() < p {
		return model.OutcomeHeads
	}
	return model.OutcomeTails
}

// HumanReward is the human payoff rule: 1 for Heads+Recommend or
// Tails+NotRecommend, 0 otherwise. There is no partial credit.
func HumanReward(outcome model.Outcome, chosenRecommendation int) float64 {
	heads := outcome == model.OutcomeHeads
	if heads && chosenRecommendation == 1 {
		return 1
	}
	if !heads && chosenRecommendation == 0 {
		return 1
	}
	return 0
}

// TrainingRewards is the agent payoff rule: +1 for the agent the human
// selected, -1 for every other agent, regardless of the coin outcome. The
// agents learn to be selected, not to be right.
func TrainingRewards(numAgents, humanChoice int) []float64 {
	rewards := make([]float64, numAgents)
	for i := range rewards {
		if i == humanChoice {
			rewards[i] = 1
		} else {
			rewards[i] = -1
		}
	}
	return rewards
}

// Step resolves the current p into an outcome, computes the human and agent
// payoffs for the committed recommendations, advances the step counter and
// draws the next p. The episode is done once maxSteps steps have resolved.
func (e *Environment) Step(humanChoice int, recommendations []int) (StepOutcome, error) {
	if humanChoice < 0 || humanChoice >= len(recommendations) {
		return StepOutcome{}, fmt.Errorf("human choice %d outside agent range [0, %d)", humanChoice, len(recommendations))
	}
	for i, rec := range recommendations {
		if rec != 0 && rec != 1 {
			return StepOutcome{}, fmt.Errorf("recommendation for agent %d must be 0 or 1, got %d", i, rec)
		}
	}

	e.steps++
	outcome := e.Resolve(e.p)
	humanReward := HumanReward(outcome, recommendations[humanChoice])
	agentRewards := TrainingRewards(len(recommendations), humanChoice)
	done := e.steps >= e.maxSteps

	if !done {
		e.p = e.DrawProbability()
	}

	return StepOutcome{
		HumanReward:  humanReward,
		AgentRewards: agentRewards,
		Outcome:      outcome,
		Done:         done,
		NextObs:      e.observation(),
	}, nil
}

// StoreTransition archives a transition in the per-agent episode history.
func (e *Environment) StoreTransition(agentID int, tr Transition) {
	if e.history == nil {
		e.history = map[int][]Transition{}
	}
	e.history[agentID] = append(e.history[agentID], tr)
}

// History returns the per-agent transition archive for the current episode.
func (e *Environment) History() map[int][]Transition {
	return e.history
}

// P exposes the hidden probability backing the current observation.
func (e *Environment) P() float64 { return e.p }

// Steps returns the number of resolved steps in the current episode.
func (e *Environment) Steps() int { return e.steps }

func (e *Environment) observation() []float64 {
	return []float64{e.p, float64(e.steps)}
}
