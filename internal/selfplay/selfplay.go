// Package selfplay runs the recommendation game without an external human:
// two learning recommenders face a learning proxy chooser, so long training
// runs can explore the trust dynamics the interactive game exposes one click
// at a time.
package selfplay

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"credence/internal/agent"
	"credence/internal/bandit"
	"credence/internal/engine"
	"credence/internal/model"
	"credence/internal/nn"
	"credence/internal/stats"
	"credence/internal/storage"
)

// proxyInputDim is the proxy chooser's state shape: both standing
// recommendations, the step index, and each recommender's success count so
// far this episode.
const proxyInputDim = 5

// Config drives one self-play run. Simulation supplies the recommenders'
// hyperparameters; the proxy reuses them over its own state shape.
type Config struct {
	RunID      string
	Episodes   int
	Simulation engine.Config
}

// Result summarizes a finished run.
type Result struct {
	RunID         string
	Episodes      int
	RewardHistory []float64 // mean human reward per episode
	FinalProbes   []model.PolicyProbe
}

// Runner owns one self-play bundle: environment, two recommenders, one
// proxy chooser. Not safe for concurrent use.
type Runner struct {
	cfg Config

	env          *bandit.Environment
	recommenders []*agent.Recommender
	proxy        *agent.Recommender

	archive storage.Store
}

func New(cfg Config, archive storage.Store) (*Runner, error) {
	if cfg.Episodes <= 0 {
		return nil, fmt.Errorf("episodes must be > 0, got %d", cfg.Episodes)
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.RunID == "" {
		cfg.RunID = "selfplay-" + uuid.NewString()
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	env, err := bandit.New(cfg.Simulation.StepsPerEpisode, rng)
	if err != nil {
		return nil, err
	}

	sim := cfg.Simulation
	recommenders := make([]*agent.Recommender, sim.NumAgents)
	for i := range recommenders {
		recommenders[i], err = agent.NewRecommender(agent.Config{
			ID:             i,
			InputDim:       sim.InputDim,
			ActionDim:      sim.ActionDim,
			HiddenUnits:    sim.HiddenUnits,
			LearningRate:   sim.LearningRate,
			Discount:       sim.Discount,
			Epsilon:        sim.Epsilon,
			EpsilonDecay:   sim.EpsilonDecay,
			EpsilonMin:     sim.EpsilonMin,
			BufferCapacity: sim.ReplayCapacity,
			BatchSize:      sim.BatchSize,
		}, rng)
		if err != nil {
			return nil, fmt.Errorf("recommender %d: %w", i, err)
		}
	}

	proxy, err := agent.NewRecommender(agent.Config{
		ID:             sim.NumAgents,
		InputDim:       proxyInputDim,
		ActionDim:      sim.NumAgents,
		HiddenUnits:    sim.HiddenUnits,
		LearningRate:   sim.LearningRate,
		Discount:       sim.Discount,
		Epsilon:        sim.Epsilon,
		EpsilonDecay:   sim.EpsilonDecay,
		EpsilonMin:     sim.EpsilonMin,
		BufferCapacity: sim.ReplayCapacity,
		BatchSize:      sim.BatchSize,
	}, rng)
	if err != nil {
		return nil, fmt.Errorf("proxy: %w", err)
	}

	return &Runner{
		cfg:          cfg,
		env:          env,
		recommenders: recommenders,
		proxy:        proxy,
		archive:      archive,
	}, nil
}

// Run plays the configured number of episodes. The recommenders train per
// step; the proxy banks its transitions and takes its gradient steps at each
// episode close, one per step of the episode.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	sim := r.cfg.Simulation
	rewardHistory := make([]float64, 0, r.cfg.Episodes)

	for episode := 0; episode < r.cfg.Episodes; episode++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obs := r.env.Reset()
		successCounts := []float64{0, 0}
		episodeRewards := make([]float64, 0, sim.StepsPerEpisode)

		recs, err := r.recommend(obs)
		if err != nil {
			return nil, err
		}

		done := false
		for !done {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			proxyObs := proxyObservation(recs, obs[1], successCounts)
			choice, err := r.proxy.Recommend(proxyObs)
			if err != nil {
				return nil, fmt.Errorf("proxy choose: %w", err)
			}

			out, err := r.env.Step(choice, recs)
			if err != nil {
				return nil, err
			}
			done = out.Done
			episodeRewards = append(episodeRewards, out.HumanReward)

			// The proxy's success signal is the realized coin face: a
			// recommendation "worked" when it matched the outcome.
			heads := out.Outcome == model.OutcomeHeads
			for i, rec := range recs {
				if (rec == 1 && heads) || (rec == 0 && !heads) {
					successCounts[i]++
				}
			}

			nextRecs := []int{0, 0}
			if !done {
				nextRecs, err = r.recommend(out.NextObs)
				if err != nil {
					return nil, err
				}
			}
			nextProxyObs := proxyObservation(nextRecs, out.NextObs[1], successCounts)

			for i, a := range r.recommenders {
				r.env.StoreTransition(i, bandit.Transition{
					State:     append([]float64(nil), obs...),
					Action:    recs[i],
					Reward:    out.AgentRewards[i],
					NextState: append([]float64(nil), out.NextObs...),
					Done:      done,
				})
				if err := a.ObserveAndLearn(obs[:sim.InputDim], recs[i], out.AgentRewards[i], out.NextObs[:sim.InputDim], done); err != nil {
					return nil, fmt.Errorf("recommender %d learn: %w", i, err)
				}
			}

			if err := r.proxy.Observe(proxyObs, choice, out.HumanReward, nextProxyObs, done); err != nil {
				return nil, fmt.Errorf("proxy observe: %w", err)
			}

			obs = out.NextObs
			recs = nextRecs
		}

		for i := 0; i < sim.StepsPerEpisode; i++ {
			if err := r.proxy.Update(); err != nil {
				return nil, fmt.Errorf("proxy update: %w", err)
			}
		}

		for i, a := range r.recommenders {
			if err := a.SyncTarget(); err != nil {
				return nil, fmt.Errorf("recommender %d target sync: %w", i, err)
			}
			a.DecayEpsilon()
		}
		if err := r.proxy.SyncTarget(); err != nil {
			return nil, fmt.Errorf("proxy target sync: %w", err)
		}
		r.proxy.DecayEpsilon()

		mean, err := nn.Avg(episodeRewards)
		if err != nil {
			return nil, err
		}
		rewardHistory = append(rewardHistory, mean)
	}

	probes, err := stats.ComputePolicyProbes(r.recommenders, sim.InputDim)
	if err != nil {
		return nil, err
	}

	if r.archive != nil {
		if err := r.archive.SaveRewardHistory(ctx, r.cfg.RunID, rewardHistory); err != nil {
			return nil, fmt.Errorf("archive reward history: %w", err)
		}
		if err := r.archive.SavePolicyProbes(ctx, r.cfg.RunID, probes); err != nil {
			return nil, fmt.Errorf("archive policy probes: %w", err)
		}
	}

	return &Result{
		RunID:         r.cfg.RunID,
		Episodes:      r.cfg.Episodes,
		RewardHistory: rewardHistory,
		FinalProbes:   probes,
	}, nil
}

func (r *Runner) recommend(obs []float64) ([]int, error) {
	view := obs[:r.cfg.Simulation.InputDim]
	recs := make([]int, len(r.recommenders))
	for i, a := range r.recommenders {
		action, err := a.Recommend(view)
		if err != nil {
			return nil, fmt.Errorf("recommender %d: %w", i, err)
		}
		recs[i] = action
	}
	return recs, nil
}

func proxyObservation(recs []int, t float64, successCounts []float64) []float64 {
	return []float64{float64(recs[0]), float64(recs[1]), t, successCounts[0], successCounts[1]}
}
