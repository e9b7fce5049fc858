// Package credence is the embedding surface for the recommendation game:
// interactive sessions, self-play training runs, and the artifacts both
// produce.
package credence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"credence/internal/engine"
	"credence/internal/model"
	"credence/internal/nn"
	"credence/internal/selfplay"
	"credence/internal/session"
	"credence/internal/stats"
	"credence/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "credence.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

type Client struct {
	store    storage.Store
	sessions *session.Store

	artifactsDir string
}

type CreateSessionRequest struct {
	// Config overrides the defaults when non-nil.
	Config      *engine.Config
	Participant string
}

type SelfPlayRequest struct {
	RunID    string
	Episodes int
	// Config overrides the defaults when non-nil.
	Config *engine.Config
}

type SelfPlaySummary struct {
	RunID           string
	Episodes        int
	RewardHistory   []float64
	FinalProbes     []model.PolicyProbe
	RewardsPath     string
	MeanHumanReward float64
	RewardStdDev    float64
}

type ExportSessionRequest struct {
	SessionID string
	OutDir    string
}

type ExportSessionSummary struct {
	SessionID string
	Path      string
	Episodes  int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = "memory"
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		sessions:     session.NewStore(store),
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// CreateSession starts a fresh isolated simulation and returns its id plus
// the initial state.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (session.Snapshot, error) {
	cfg := engine.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}
	return c.sessions.Create(ctx, cfg, req.Participant)
}

// Step advances one session by one human choice.
func (c *Client) Step(ctx context.Context, sessionID string, humanChoice int) (*engine.StepResult, error) {
	return c.sessions.Step(ctx, sessionID, humanChoice)
}

// SessionState returns a point-in-time snapshot of one session.
func (c *Client) SessionState(ctx context.Context, sessionID string) (session.Snapshot, error) {
	return c.sessions.State(ctx, sessionID)
}

// DeleteSession drops a live session. Archived episodes survive the delete.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.sessions.Delete(ctx, sessionID)
}

// Sessions lists the ids of all live sessions.
func (c *Client) Sessions(ctx context.Context) []string {
	return c.sessions.List(ctx)
}

// ExportSession writes one session's archived behavioral log as a JSON file
// under the artifacts directory and records it in the run index.
func (c *Client) ExportSession(ctx context.Context, req ExportSessionRequest) (ExportSessionSummary, error) {
	if req.SessionID == "" {
		return ExportSessionSummary{}, errors.New("session id is required")
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.artifactsDir
	}

	meta, ok, err := c.store.GetSessionMeta(ctx, req.SessionID)
	if err != nil {
		return ExportSessionSummary{}, err
	}
	if !ok {
		return ExportSessionSummary{}, fmt.Errorf("no archived session: %s", req.SessionID)
	}
	episodes, _, err := c.store.GetEpisodes(ctx, req.SessionID)
	if err != nil {
		return ExportSessionSummary{}, err
	}

	path, err := stats.WriteSessionLog(outDir, model.SessionLog{Meta: meta, Episodes: episodes})
	if err != nil {
		return ExportSessionSummary{}, err
	}
	if err := stats.AppendRunIndex(outDir, stats.RunIndexEntry{
		RunID:        req.SessionID,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Kind:         "session",
		Episodes:     len(episodes),
	}); err != nil {
		return ExportSessionSummary{}, err
	}

	return ExportSessionSummary{
		SessionID: req.SessionID,
		Path:      filepath.Clean(path),
		Episodes:  len(episodes),
	}, nil
}

// RunSelfPlay trains two recommenders against the learning human proxy for
// the requested number of episodes, archives the reward history and policy
// probes, and writes the reward curve under the artifacts directory.
func (c *Client) RunSelfPlay(ctx context.Context, req SelfPlayRequest) (SelfPlaySummary, error) {
	if req.Episodes <= 0 {
		req.Episodes = 100
	}
	cfg := engine.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	runner, err := selfplay.New(selfplay.Config{
		RunID:      req.RunID,
		Episodes:   req.Episodes,
		Simulation: cfg,
	}, c.store)
	if err != nil {
		return SelfPlaySummary{}, err
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return SelfPlaySummary{}, err
	}

	rewardsPath, err := stats.WriteRewardHistory(c.artifactsDir, result.RunID, result.RewardHistory)
	if err != nil {
		return SelfPlaySummary{}, err
	}
	mean, err := nn.Avg(result.RewardHistory)
	if err != nil {
		return SelfPlaySummary{}, err
	}
	stddev, err := nn.Std(result.RewardHistory)
	if err != nil {
		return SelfPlaySummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:           result.RunID,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		Kind:            "selfplay",
		Episodes:        result.Episodes,
		MeanHumanReward: mean,
		RewardStdDev:    stddev,
	}); err != nil {
		return SelfPlaySummary{}, err
	}

	return SelfPlaySummary{
		RunID:           result.RunID,
		Episodes:        result.Episodes,
		RewardHistory:   result.RewardHistory,
		FinalProbes:     result.FinalProbes,
		RewardsPath:     filepath.Clean(rewardsPath),
		MeanHumanReward: mean,
		RewardStdDev:    stddev,
	}, nil
}

// RewardHistory returns a self-play run's archived per-episode mean rewards.
func (c *Client) RewardHistory(ctx context.Context, runID string) ([]float64, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	history, ok, err := c.store.GetRewardHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("reward history not found for run id: %s", runID)
	}
	return history, nil
}

// PolicyProbes returns a self-play run's archived final policy probes.
func (c *Client) PolicyProbes(ctx context.Context, runID string) ([]model.PolicyProbe, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	probes, ok, err := c.store.GetPolicyProbes(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("policy probes not found for run id: %s", runID)
	}
	return probes, nil
}
