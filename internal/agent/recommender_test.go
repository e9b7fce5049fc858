package agent

import (
	"math/rand"
	"testing"
)

func testConfig() Config {
	return Config{
		ID:             0,
		InputDim:       2,
		ActionDim:      2,
		HiddenUnits:    8,
		LearningRate:   1e-3,
		Discount:       0.99,
		Epsilon:        1.0,
		EpsilonDecay:   0.995,
		EpsilonMin:     0.01,
		BufferCapacity: 100,
		BatchSize:      4,
	}
}

func TestRecommendAlwaysReturnsValidAction(t *testing.T) {
	r, err := NewRecommender(testConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new recommender: %v", err)
	}
	for i := 0; i < 200; i++ {
		action, err := r.Recommend([]float64{rand.Float64(), float64(i % 20)})
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if action != 0 && action != 1 {
			t.Fatalf("action out of range: %d", action)
		}
	}
}

func TestRecommendGreedyIsDeterministicWhenEpsilonZero(t *testing.T) {
	cfg := testConfig()
	cfg.Epsilon = 0
	cfg.EpsilonMin = 0
	r, err := NewRecommender(cfg, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("new recommender: %v", err)
	}

	state := []float64{0.7, 3}
	first, err := r.Recommend(state)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	for i := 0; i < 20; i++ {
		action, err := r.Recommend(state)
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if action != first {
			t.Fatalf("greedy action changed without learning: %d vs %d", action, first)
		}
	}
}

func TestRecommendRejectsShapeMismatch(t *testing.T) {
	r, err := NewRecommender(testConfig(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("new recommender: %v", err)
	}
	if _, err := r.Recommend([]float64{0.5}); err == nil {
		t.Fatal("expected state shape error")
	}
	if err := r.ObserveAndLearn([]float64{0.5}, 0, 1, []float64{0.5, 1}, false); err == nil {
		t.Fatal("expected transition shape error")
	}
}

func TestObserveAndLearnFillsBufferAndTrains(t *testing.T) {
	r, err := NewRecommender(testConfig(), rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("new recommender: %v", err)
	}
	for i := 0; i < 10; i++ {
		state := []float64{float64(i) / 10, float64(i)}
		next := []float64{float64(i+1) / 10, float64(i + 1)}
		if err := r.ObserveAndLearn(state, i%2, 1, next, i == 9); err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
	}
	if r.BufferLen() != 10 {
		t.Fatalf("expected 10 buffered transitions, got %d", r.BufferLen())
	}
}

func TestDecayEpsilonMultiplicativeWithFloor(t *testing.T) {
	cfg := testConfig()
	cfg.Epsilon = 0.5
	cfg.EpsilonDecay = 0.5
	cfg.EpsilonMin = 0.1
	r, err := NewRecommender(cfg, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("new recommender: %v", err)
	}

	r.DecayEpsilon()
	if r.Epsilon() != 0.25 {
		t.Fatalf("expected 0.25 after one decay, got %f", r.Epsilon())
	}
	r.DecayEpsilon()
	if r.Epsilon() != 0.125 {
		t.Fatalf("expected 0.125 after two decays, got %f", r.Epsilon())
	}
	r.DecayEpsilon()
	if r.Epsilon() != 0.1 {
		t.Fatalf("expected floor 0.1, got %f", r.Epsilon())
	}
	r.DecayEpsilon()
	if r.Epsilon() != 0.1 {
		t.Fatalf("floor must hold, got %f", r.Epsilon())
	}
}

func TestNewRecommenderValidatesHyperparameters(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero input dim", func(c *Config) { c.InputDim = 0 }},
		{"epsilon above one", func(c *Config) { c.Epsilon = 1.5 }},
		{"zero decay", func(c *Config) { c.EpsilonDecay = 0 }},
		{"floor above epsilon", func(c *Config) { c.Epsilon = 0.1; c.EpsilonMin = 0.5 }},
		{"discount above one", func(c *Config) { c.Discount = 1.1 }},
		{"batch above capacity", func(c *Config) { c.BatchSize = c.BufferCapacity + 1 }},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }},
	}
	for _, tc := range cases {
		cfg := testConfig()
		tc.mutate(&cfg)
		if _, err := NewRecommender(cfg, rng); err == nil {
			t.Fatalf("%s: expected construction error", tc.name)
		}
	}
}
