package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Outcome is the resolved coin face for one step.
type Outcome string

const (
	OutcomeHeads Outcome = "Heads"
	OutcomeTails Outcome = "Tails"
)

// StepRecord is one row of the behavioral log: everything observable about a
// single step of the game, in the order the step unfolded.
type StepRecord struct {
	T            int     `json:"t"`
	P            float64 `json:"p"`
	RecAgent0    int     `json:"rec_agent_0"`
	RecAgent1    int     `json:"rec_agent_1"`
	HumanChoice  int     `json:"human_choice"`
	Agent0Payoff float64 `json:"agent_0_payoff"`
	Agent1Payoff float64 `json:"agent_1_payoff"`
	Outcome      Outcome `json:"outcome"`
	HumanPayoff  float64 `json:"human_payoff"`
	TNext        int     `json:"t_next"`
	Done         bool    `json:"done"`
}

// EpisodeArchive is one sealed episode: exactly steps-per-episode records.
type EpisodeArchive struct {
	VersionedRecord
	SessionID string       `json:"session_id"`
	Episode   int          `json:"episode"`
	Steps     []StepRecord `json:"steps"`
}

// SessionMeta identifies one game session for persistence and export.
type SessionMeta struct {
	VersionedRecord
	SessionID   string `json:"session_id"`
	Participant string `json:"participant,omitempty"`
	StartedAt   string `json:"started_at"`
	ConfigJSON  []byte `json:"config_json,omitempty"`
}

// SessionLog is the export shape: session metadata plus every sealed episode,
// keyed by episode index order.
type SessionLog struct {
	Meta     SessionMeta      `json:"meta"`
	Episodes []EpisodeArchive `json:"episodes"`
}

// PolicyProbe samples one agent's value estimates at fixed representative
// states so learning progress can be inspected without touching the agent's
// parameters directly.
type PolicyProbe struct {
	AgentID       int       `json:"agent_id"`
	Epsilon       float64   `json:"epsilon"`
	QValuesSample []float64 `json:"q_values_sample"`
	GreedyActions []int     `json:"greedy_actions"`
}
