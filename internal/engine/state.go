package engine

import "credence/internal/model"

// Phase is the engine's position in its episode state machine. The closed
// phase is transient: it is reported on the closing step's snapshot and
// collapses back to in-episode when the next step runs.
type Phase string

const (
	PhaseInEpisode     Phase = "in_episode"
	PhaseEpisodeClosed Phase = "episode_closed"
)

// AgentAccuracy is a rolling confusion count comparing one agent's
// recommendations against the reference policy (recommend iff p >= 0.5),
// accumulated across the whole session. It never looks at the coin outcome.
type AgentAccuracy struct {
	TP          int     `json:"tp"`
	RecCount    int     `json:"rec_count"`
	TN          int     `json:"tn"`
	NotRecCount int     `json:"not_rec_count"`
	TPR         float64 `json:"tpr"`
	TNR         float64 `json:"tnr"`
}

// State is a point-in-time snapshot of one session's simulation.
type State struct {
	Phase         Phase   `json:"phase"`
	EpisodeCount  int     `json:"episode_count"`
	StepInEpisode int     `json:"step_in_episode"`
	TotalSteps    int     `json:"total_steps"`
	CurrentP      float64 `json:"current_p"`
	Active        bool    `json:"active"`

	Recommendations      []int `json:"recommendations"`
	RecommendationCounts []int `json:"recommendation_counts"`
	SelectionCounts      []int `json:"selection_counts"`

	CumulativeHumanReward  float64   `json:"cumulative_human_reward"`
	CumulativeAgentRewards []float64 `json:"cumulative_agent_rewards"`
	EpisodeReward          float64   `json:"episode_reward"`
	AverageReward          float64   `json:"average_reward"`
	AgentSuccesses         []int     `json:"agent_successes"`

	Accuracy []AgentAccuracy     `json:"agent_accuracy"`
	Beliefs  []model.PolicyProbe `json:"agent_beliefs"`
}
