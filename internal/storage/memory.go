package storage

import (
	"context"
	"sync"

	"credence/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	metas       map[string]model.SessionMeta
	episodes    map[string][]model.EpisodeArchive
	rewards     map[string][]float64
	probes      map[string][]model.PolicyProbe
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.metas = make(map[string]model.SessionMeta)
	s.episodes = make(map[string][]model.EpisodeArchive)
	s.rewards = make(map[string][]float64)
	s.probes = make(map[string][]model.PolicyProbe)
	return nil
}

func (s *MemoryStore) SaveSessionMeta(_ context.Context, meta model.SessionMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metas[meta.SessionID] = meta
	return nil
}

func (s *MemoryStore) GetSessionMeta(_ context.Context, sessionID string) (model.SessionMeta, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.metas[sessionID]
	return meta, ok, nil
}

func (s *MemoryStore) AppendEpisode(_ context.Context, episode model.EpisodeArchive) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := episode
	copied.Steps = append([]model.StepRecord(nil), episode.Steps...)
	s.episodes[episode.SessionID] = append(s.episodes[episode.SessionID], copied)
	return nil
}

func (s *MemoryStore) GetEpisodes(_ context.Context, sessionID string) ([]model.EpisodeArchive, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	episodes, ok := s.episodes[sessionID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.EpisodeArchive, 0, len(episodes))
	for _, episode := range episodes {
		e := episode
		e.Steps = append([]model.StepRecord(nil), episode.Steps...)
		copied = append(copied, e)
	}
	return copied, true, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.metas, sessionID)
	delete(s.episodes, sessionID)
	return nil
}

func (s *MemoryStore) SaveRewardHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rewards[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetRewardHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.rewards[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SavePolicyProbes(_ context.Context, runID string, probes []model.PolicyProbe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.PolicyProbe, len(probes))
	copy(copied, probes)
	s.probes[runID] = copied
	return nil
}

func (s *MemoryStore) GetPolicyProbes(_ context.Context, runID string) ([]model.PolicyProbe, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	probes, ok := s.probes[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.PolicyProbe, len(probes))
	copy(copied, probes)
	return copied, true, nil
}
