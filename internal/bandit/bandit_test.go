package bandit

import (
	"math/rand"
	"testing"

	"credence/internal/model"
)

func TestDrawProbabilityStaysInUnitInterval(t *testing.T) {
	env, err := New(20, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	for i := 0; i < 10000; i++ {
		p := env.DrawProbability()
		if p < 0 || p > 1 {
			t.Fatalf("draw %d out of [0,1]: %f", i, p)
		}
	}
}

func TestReferenceRecommendationBoundary(t *testing.T) {
	cases := []struct {
		p    float64
		want int
	}{
		{0.0, 0},
		{0.49, 0},
		{0.5, 1},
		{0.51, 1},
		{1.0, 1},
	}
	for _, tc := range cases {
		if got := ReferenceRecommendation(tc.p); got != tc.want {
			t.Fatalf("reference(%f) = %d, want %d", tc.p, got, tc.want)
		}
	}
}

func TestHumanRewardTruthTable(t *testing.T) {
	cases := []struct {
		outcome model.Outcome
		rec     int
		want    float64
	}{
		{model.OutcomeHeads, 1, 1},
		{model.OutcomeHeads, 0, 0},
		{model.OutcomeTails, 0, 1},
		{model.OutcomeTails, 1, 0},
	}
	for _, tc := range cases {
		if got := HumanReward(tc.outcome, tc.rec); got != tc.want {
			t.Fatalf("human reward(%s, %d) = %f, want %f", tc.outcome, tc.rec, got, tc.want)
		}
	}
}

func TestTrainingRewardsIgnoreOutcome(t *testing.T) {
	for choice := 0; choice < 2; choice++ {
		rewards := TrainingRewards(2, choice)
		if rewards[choice] != 1 {
			t.Fatalf("chosen agent %d expected +1, got %f", choice, rewards[choice])
		}
		if rewards[1-choice] != -1 {
			t.Fatalf("unchosen agent %d expected -1, got %f", 1-choice, rewards[1-choice])
		}
	}
}

func TestStepForcedOutcomeAtProbabilityExtremes(t *testing.T) {
	env, err := New(100, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	env.Reset()

	// p = 1 resolves Heads with certainty, p = 0 Tails with certainty.
	if got := env.Resolve(1.0); got != model.OutcomeHeads {
		t.Fatalf("resolve(1.0) = %s, want Heads", got)
	}
	if got := env.Resolve(0.0); got != model.OutcomeTails {
		t.Fatalf("resolve(0.0) = %s, want Tails", got)
	}

	if got := HumanReward(model.OutcomeHeads, 1); got != 1 {
		t.Fatalf("heads + recommend should pay 1, got %f", got)
	}
	if got := HumanReward(model.OutcomeHeads, 0); got != 0 {
		t.Fatalf("heads + not-recommend should pay 0, got %f", got)
	}
}

func TestStepRejectsInvalidChoiceWithoutAdvancing(t *testing.T) {
	env, err := New(20, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	obs := env.Reset()
	before := env.Steps()
	pBefore := obs[0]

	if _, err := env.Step(2, []int{0, 1}); err == nil {
		t.Fatal("expected error for out-of-range choice")
	}
	if _, err := env.Step(-1, []int{0, 1}); err == nil {
		t.Fatal("expected error for negative choice")
	}
	if env.Steps() != before {
		t.Fatalf("step counter moved on invalid choice: %d", env.Steps())
	}
	if env.P() != pBefore {
		t.Fatalf("p redrawn on invalid choice: %f != %f", env.P(), pBefore)
	}
}

func TestEpisodeEndsAfterMaxSteps(t *testing.T) {
	env, err := New(5, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	env.Reset()

	for i := 0; i < 5; i++ {
		out, err := env.Step(0, []int{1, 0})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		wantDone := i == 4
		if out.Done != wantDone {
			t.Fatalf("step %d done = %v, want %v", i, out.Done, wantDone)
		}
		if len(out.NextObs) != 2 {
			t.Fatalf("observation must be [p, t], got %v", out.NextObs)
		}
	}
	if env.Steps() != 5 {
		t.Fatalf("expected 5 resolved steps, got %d", env.Steps())
	}
}

func TestStoreTransitionAccumulatesPerAgent(t *testing.T) {
	env, err := New(20, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	env.Reset()

	env.StoreTransition(0, Transition{State: []float64{0.3, 0}, Action: 1, Reward: 1})
	env.StoreTransition(0, Transition{State: []float64{0.6, 1}, Action: 0, Reward: -1})
	env.StoreTransition(1, Transition{State: []float64{0.3, 0}, Action: 0, Reward: -1})

	history := env.History()
	if len(history[0]) != 2 || len(history[1]) != 1 {
		t.Fatalf("unexpected history sizes: %d / %d", len(history[0]), len(history[1]))
	}

	env.Reset()
	if len(env.History()) != 0 {
		t.Fatal("reset must clear episode history")
	}
}
