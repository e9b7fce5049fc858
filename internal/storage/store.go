package storage

import (
	"context"

	"credence/internal/model"
)

// Store defines persistence operations for the behavioral record of the
// game: session metadata, sealed episodes, and self-play run artifacts.
// The live learning state is deliberately not persisted.
type Store interface {
	Init(ctx context.Context) error
	SaveSessionMeta(ctx context.Context, meta model.SessionMeta) error
	GetSessionMeta(ctx context.Context, sessionID string) (model.SessionMeta, bool, error)
	AppendEpisode(ctx context.Context, episode model.EpisodeArchive) error
	GetEpisodes(ctx context.Context, sessionID string) ([]model.EpisodeArchive, bool, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SaveRewardHistory(ctx context.Context, runID string, history []float64) error
	GetRewardHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SavePolicyProbes(ctx context.Context, runID string, probes []model.PolicyProbe) error
	GetPolicyProbes(ctx context.Context, runID string) ([]model.PolicyProbe, bool, error)
}
