package agent

import (
	"fmt"
	"math/rand"
)

// Transition is one replay entry: the state the agent saw, the action it
// took, the training reward it was paid, the state that followed, and whether
// the episode ended on this step.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// Replay is a bounded first-in-first-out transition buffer. When full, the
// oldest transition is evicted. Owned by exactly one agent.
type Replay struct {
	capacity int
	entries  []Transition
	start    int
	length   int
}

func NewReplay(capacity int) (*Replay, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("replay capacity must be > 0, got %d", capacity)
	}
	return &Replay{
		capacity: capacity,
		entries:  make([]Transition, capacity),
	}, nil
}

func (r *Replay) Len() int { return r.length }

func (r *Replay) Capacity() int { return r.capacity }

// Push appends a transition, evicting the oldest when at capacity.
func (r *Replay) Push(tr Transition) {
	if r.length < r.capacity {
		r.entries[(r.start+r.length)%r.capacity] = tr
		r.length++
		return
	}
	r.entries[r.start] = tr
	r.start = (r.start + 1) % r.capacity
}

// At returns the i-th oldest transition.
func (r *Replay) At(i int) (Transition, error) {
	if i < 0 || i >= r.length {
		return Transition{}, fmt.Errorf("replay index %d outside [0, %d)", i, r.length)
	}
	return r.entries[(r.start+i)%r.capacity], nil
}

// Sample draws n transitions uniformly at random with replacement.
func (r *Replay) Sample(rng *rand.Rand, n int) ([]Transition, error) {
	if r.length == 0 {
		return nil, fmt.Errorf("replay buffer is empty")
	}
	if n <= 0 {
		return nil, fmt.Errorf("sample size must be > 0, got %d", n)
	}
	out := make([]Transition, n)
	for i := 0; i < n; i++ {
		out[i] = r.entries[(r.start+rng.Intn(r.length))%r.capacity]
	}
	return out, nil
}
