package engine

import (
	"fmt"
	"math/rand"
	"time"

	"credence/internal/agent"
	"credence/internal/bandit"
	"credence/internal/model"
	"credence/internal/stats"
)

// System is the episode controller for one session: one environment, two
// learning agents, and the bookkeeping the external caller reads. A System
// is not safe for concurrent use; the session layer serializes access.
type System struct {
	cfg Config
	rng *rand.Rand

	env    *bandit.Environment
	agents []*agent.Recommender

	phase         Phase
	episodeCount  int
	stepInEpisode int
	totalSteps    int
	active        bool

	currentObs  []float64
	currentRecs []int

	recommendationCounts []int
	selectionCounts      []int

	cumulativeHumanReward  float64
	cumulativeAgentRewards []float64
	episodeReward          float64
	agentSuccesses         []int

	accTP          []int
	accRecCount    []int
	accTN          []int
	accNotRecCount []int

	episodeSteps []model.StepRecord
}

// StepResult is everything one step resolves to. FinishedEpisode is non-nil
// exactly when the step closed an episode, and carries that episode's full
// behavioral log.
type StepResult struct {
	P               float64       `json:"p"`
	Recommendations []int         `json:"recommendations"`
	HumanChoice     int           `json:"human_choice"`
	Outcome         model.Outcome `json:"outcome"`
	HumanReward     float64       `json:"human_reward"`
	AgentRewards    []float64     `json:"agent_rewards"`
	AgentCorrect    []bool        `json:"agent_correct"`

	Done          bool `json:"done"`
	NewEpisode    bool `json:"new_episode"`
	EpisodeCount  int  `json:"episode_count"`
	StepInEpisode int  `json:"step_in_episode"`

	NextP               float64 `json:"next_p"`
	NextRecommendations []int   `json:"next_recommendations"`

	CumulativeHumanReward  float64   `json:"cumulative_human_reward"`
	CumulativeAgentRewards []float64 `json:"cumulative_agent_rewards"`
	EpisodeReward          float64   `json:"episode_reward"`
	AverageReward          float64   `json:"average_reward"`
	AgentSuccesses         []int     `json:"agent_successes"`

	FinishedEpisode []model.StepRecord `json:"finished_episode_history,omitempty"`
}

// New validates the config, seeds the session RNG and constructs the
// environment and both agents. The initial episode is started and the first
// recommendations are drawn, so the caller can present them before the first
// human choice.
func New(cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	env, err := bandit.New(cfg.StepsPerEpisode, rng)
	if err != nil {
		return nil, err
	}

	agents := make([]*agent.Recommender, cfg.NumAgents)
	for i := range agents {
		agents[i], err = agent.NewRecommender(agent.Config{
			ID:             i,
			InputDim:       cfg.InputDim,
			ActionDim:      cfg.ActionDim,
			HiddenUnits:    cfg.HiddenUnits,
			LearningRate:   cfg.LearningRate,
			Discount:       cfg.Discount,
			Epsilon:        cfg.Epsilon,
			EpsilonDecay:   cfg.EpsilonDecay,
			EpsilonMin:     cfg.EpsilonMin,
			BufferCapacity: cfg.ReplayCapacity,
			BatchSize:      cfg.BatchSize,
		}, rng)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
	}

	s := &System{
		cfg:                    cfg,
		rng:                    rng,
		env:                    env,
		agents:                 agents,
		phase:                  PhaseInEpisode,
		recommendationCounts:   make([]int, cfg.NumAgents),
		selectionCounts:        make([]int, cfg.NumAgents),
		cumulativeAgentRewards: make([]float64, cfg.NumAgents),
		agentSuccesses:         make([]int, cfg.NumAgents),
		accTP:                  make([]int, cfg.NumAgents),
		accRecCount:            make([]int, cfg.NumAgents),
		accTN:                  make([]int, cfg.NumAgents),
		accNotRecCount:         make([]int, cfg.NumAgents),
	}
	if err := s.startEpisode(); err != nil {
		return nil, err
	}
	s.active = true
	return s, nil
}

func (s *System) Config() Config { return s.cfg }

// Recommendations returns the recommendations standing for the current step.
func (s *System) Recommendations() []int {
	return append([]int(nil), s.currentRecs...)
}

// Step runs one full game tick for the given human choice: resolve the coin
// on the current p, pay the human and both agents, train both agents on the
// transition, update rolling accuracy, and draw the next state. On the
// episode's last step the sealed episode history is returned and the next
// episode begins.
//
// An invalid choice is rejected before anything mutates; either the whole
// sequence runs or the session state is untouched.
func (s *System) Step(humanChoice int) (*StepResult, error) {
	if !s.active {
		return nil, fmt.Errorf("simulation is not active")
	}
	if humanChoice < 0 || humanChoice >= s.cfg.NumAgents {
		return nil, fmt.Errorf("%w: choice %d outside [0, %d)", ErrInvalidChoice, humanChoice, s.cfg.NumAgents)
	}

	if s.phase == PhaseEpisodeClosed {
		s.phase = PhaseInEpisode
	}

	obs := s.currentObs
	recs := s.currentRecs
	p := obs[0]
	t := int(obs[1])

	out, err := s.env.Step(humanChoice, recs)
	if err != nil {
		return nil, err
	}

	s.stepInEpisode++
	s.totalSteps++
	s.cumulativeHumanReward += out.HumanReward
	s.episodeReward += out.HumanReward
	s.selectionCounts[humanChoice]++

	// Correctness is judged against the reference policy on this p, never
	// against the realized coin outcome.
	reference := bandit.ReferenceRecommendation(p)
	correct := make([]bool, s.cfg.NumAgents)
	for i, rec := range recs {
		s.cumulativeAgentRewards[i] += out.AgentRewards[i]
		if rec == 1 {
			s.recommendationCounts[i]++
			s.accRecCount[i]++
			if reference == 1 {
				s.accTP[i]++
			}
		} else {
			s.accNotRecCount[i]++
			if reference == 0 {
				s.accTN[i]++
			}
		}
		if rec == reference {
			correct[i] = true
			s.agentSuccesses[i]++
		}
	}

	s.episodeSteps = append(s.episodeSteps, model.StepRecord{
		T:            t,
		P:            p,
		RecAgent0:    recs[0],
		RecAgent1:    recs[1],
		HumanChoice:  humanChoice,
		Agent0Payoff: out.AgentRewards[0],
		Agent1Payoff: out.AgentRewards[1],
		Outcome:      out.Outcome,
		HumanPayoff:  out.HumanReward,
		TNext:        int(out.NextObs[1]),
		Done:         out.Done,
	})

	for i, a := range s.agents {
		s.env.StoreTransition(i, bandit.Transition{
			State:     append([]float64(nil), obs...),
			Action:    recs[i],
			Reward:    out.AgentRewards[i],
			NextState: append([]float64(nil), out.NextObs...),
			Done:      out.Done,
		})
		if err := a.ObserveAndLearn(s.agentView(obs), recs[i], out.AgentRewards[i], s.agentView(out.NextObs), out.Done); err != nil {
			return nil, fmt.Errorf("agent %d learn: %w", i, err)
		}
	}

	s.currentObs = out.NextObs

	// Episode-scoped totals are captured before a close resets them, so the
	// closing step's result still reports the episode it sealed.
	result := &StepResult{
		P:               p,
		Recommendations: append([]int(nil), recs...),
		HumanChoice:     humanChoice,
		Outcome:         out.Outcome,
		HumanReward:     out.HumanReward,
		AgentRewards:    append([]float64(nil), out.AgentRewards...),
		AgentCorrect:    correct,
		Done:            out.Done,
		EpisodeReward:   s.episodeReward,
		AgentSuccesses:  append([]int(nil), s.agentSuccesses...),
	}

	if out.Done {
		sealed := make([]model.StepRecord, len(s.episodeSteps))
		copy(sealed, s.episodeSteps)
		result.FinishedEpisode = sealed
		result.NewEpisode = true

		s.episodeCount++
		s.stepInEpisode = 0
		s.phase = PhaseEpisodeClosed

		for i, a := range s.agents {
			if err := a.SyncTarget(); err != nil {
				return nil, fmt.Errorf("agent %d target sync: %w", i, err)
			}
			a.DecayEpsilon()
		}

		if err := s.startEpisode(); err != nil {
			return nil, err
		}
	} else {
		recs, err := s.drawRecommendations()
		if err != nil {
			return nil, err
		}
		s.currentRecs = recs
	}

	result.EpisodeCount = s.episodeCount
	result.StepInEpisode = s.stepInEpisode
	result.NextP = s.currentObs[0]
	result.NextRecommendations = append([]int(nil), s.currentRecs...)
	result.CumulativeHumanReward = s.cumulativeHumanReward
	result.CumulativeAgentRewards = append([]float64(nil), s.cumulativeAgentRewards...)
	result.AverageReward = s.averageReward()
	return result, nil
}

// Snapshot builds the current SimulationState, including per-agent belief
// probes and rolling accuracy rates.
func (s *System) Snapshot() (State, error) {
	beliefs, err := stats.ComputePolicyProbes(s.agents, s.cfg.InputDim)
	if err != nil {
		return State{}, err
	}

	accuracy := make([]AgentAccuracy, s.cfg.NumAgents)
	for i := range accuracy {
		acc := AgentAccuracy{
			TP:          s.accTP[i],
			RecCount:    s.accRecCount[i],
			TN:          s.accTN[i],
			NotRecCount: s.accNotRecCount[i],
		}
		if acc.RecCount > 0 {
			acc.TPR = float64(acc.TP) / float64(acc.RecCount)
		}
		if acc.NotRecCount > 0 {
			acc.TNR = float64(acc.TN) / float64(acc.NotRecCount)
		}
		accuracy[i] = acc
	}

	return State{
		Phase:                  s.phase,
		EpisodeCount:           s.episodeCount,
		StepInEpisode:          s.stepInEpisode,
		TotalSteps:             s.totalSteps,
		CurrentP:               s.currentObs[0],
		Active:                 s.active,
		Recommendations:        append([]int(nil), s.currentRecs...),
		RecommendationCounts:   append([]int(nil), s.recommendationCounts...),
		SelectionCounts:        append([]int(nil), s.selectionCounts...),
		CumulativeHumanReward:  s.cumulativeHumanReward,
		CumulativeAgentRewards: append([]float64(nil), s.cumulativeAgentRewards...),
		EpisodeReward:          s.episodeReward,
		AverageReward:          s.averageReward(),
		AgentSuccesses:         append([]int(nil), s.agentSuccesses...),
		Accuracy:               accuracy,
		Beliefs:                beliefs,
	}, nil
}

func (s *System) startEpisode() error {
	s.currentObs = s.env.Reset()
	s.episodeSteps = s.episodeSteps[:0]
	s.episodeReward = 0
	for i := range s.agentSuccesses {
		s.agentSuccesses[i] = 0
	}
	recs, err := s.drawRecommendations()
	if err != nil {
		return err
	}
	s.currentRecs = recs
	return nil
}

func (s *System) drawRecommendations() ([]int, error) {
	recs := make([]int, len(s.agents))
	view := s.agentView(s.currentObs)
	for i, a := range s.agents {
		action, err := a.Recommend(view)
		if err != nil {
			return nil, fmt.Errorf("agent %d recommend: %w", i, err)
		}
		recs[i] = action
	}
	return recs, nil
}

// agentView narrows the full [p, t] observation to the configured agent
// variant's state shape.
func (s *System) agentView(obs []float64) []float64 {
	return obs[:s.cfg.InputDim]
}

func (s *System) averageReward() float64 {
	if s.episodeCount == 0 {
		return 0
	}
	return s.cumulativeHumanReward / float64(s.episodeCount)
}
