package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"credence/internal/model"
)

const runIndexFile = "run_index.json"

// RunIndexEntry is one line of the artifacts directory's index: enough to
// find a run or session export without opening it.
type RunIndexEntry struct {
	RunID           string  `json:"run_id"`
	CreatedAtUTC    string  `json:"created_at_utc"`
	Kind            string  `json:"kind"`
	Episodes        int     `json:"episodes"`
	MeanHumanReward float64 `json:"mean_human_reward"`
	RewardStdDev    float64 `json:"reward_std_dev"`
}

// WriteSessionLog exports one session's full behavioral log as
// {dir}/{session_id}.json and returns the written path.
func WriteSessionLog(dir string, log model.SessionLog) (string, error) {
	if log.Meta.SessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, log.Meta.SessionID+".json")
	if err := writeJSON(path, log); err != nil {
		return "", err
	}
	return path, nil
}

// WriteRewardHistory exports a self-play run's per-episode mean human
// rewards as {dir}/{run_id}_rewards.json and returns the written path.
func WriteRewardHistory(dir, runID string, rewards []float64) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, runID+"_rewards.json")
	if err := writeJSON(path, rewards); err != nil {
		return "", err
	}
	return path, nil
}

// AppendRunIndex adds one entry to the directory's run index, creating the
// index on first use.
func AppendRunIndex(dir string, entry RunIndexEntry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, runIndexFile)

	var entries []RunIndexEntry
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("corrupt run index %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return err
	}

	entries = append(entries, entry)
	return writeJSON(path, entries)
}

// ReadRunIndex loads the run index, returning an empty slice when none
// exists yet.
func ReadRunIndex(dir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, runIndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
