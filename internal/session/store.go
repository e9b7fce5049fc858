package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"credence/internal/engine"
	"credence/internal/model"
	"credence/internal/storage"
)

// ErrSessionNotFound marks an operation against an unknown session id. A
// normal, recoverable condition for the caller; the session map is untouched.
var ErrSessionNotFound = errors.New("session not found")

// Store owns the mapping from session id to live simulation. Operations on
// the map are safe under concurrent create/step/state/delete; operations on
// the same session are mutually exclusive while distinct sessions proceed
// independently.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	// archive receives sealed episodes and session metadata; may be nil.
	archive storage.Store
}

type entry struct {
	mu  sync.Mutex
	sys *engine.System
}

// Snapshot pairs a session id with its simulation state.
type Snapshot struct {
	SessionID string       `json:"session_id"`
	State     engine.State `json:"state"`
}

func NewStore(archive storage.Store) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		archive:  archive,
	}
}

// Create validates the config, builds a fresh isolated simulation and
// registers it under a new uuid. Nothing is registered when construction
// fails.
func (s *Store) Create(ctx context.Context, cfg engine.Config, participant string) (Snapshot, error) {
	sys, err := engine.New(cfg)
	if err != nil {
		return Snapshot{}, err
	}

	id := uuid.NewString()

	if s.archive != nil {
		configJSON, err := json.Marshal(cfg)
		if err != nil {
			return Snapshot{}, fmt.Errorf("encode config: %w", err)
		}
		meta := model.SessionMeta{
			VersionedRecord: model.VersionedRecord{
				SchemaVersion: storage.CurrentSchemaVersion,
				CodecVersion:  storage.CurrentCodecVersion,
			},
			SessionID:   id,
			Participant: participant,
			StartedAt:   time.Now().UTC().Format(time.RFC3339),
			ConfigJSON:  configJSON,
		}
		if err := s.archive.SaveSessionMeta(ctx, meta); err != nil {
			return Snapshot{}, fmt.Errorf("archive session meta: %w", err)
		}
	}

	// Snapshot before publishing: once the id is in the map a concurrent
	// caller can step the engine, and nothing guards this read.
	state, err := sys.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.sessions[id] = &entry{sys: sys}
	s.mu.Unlock()

	return Snapshot{SessionID: id, State: state}, nil
}

// Step advances one session by one tick. The entry's own lock serializes
// same-session steps without blocking unrelated sessions.
func (s *Store) Step(ctx context.Context, sessionID string, humanChoice int) (*engine.StepResult, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.sys.Step(humanChoice)
	if err != nil {
		return nil, err
	}

	if s.archive != nil && result.FinishedEpisode != nil {
		episode := model.EpisodeArchive{
			VersionedRecord: model.VersionedRecord{
				SchemaVersion: storage.CurrentSchemaVersion,
				CodecVersion:  storage.CurrentCodecVersion,
			},
			SessionID: sessionID,
			Episode:   result.EpisodeCount - 1,
			Steps:     result.FinishedEpisode,
		}
		if err := s.archive.AppendEpisode(ctx, episode); err != nil {
			return nil, fmt.Errorf("archive episode: %w", err)
		}
	}
	return result, nil
}

// State returns a point-in-time snapshot of one session.
func (s *Store) State(_ context.Context, sessionID string) (Snapshot, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.sys.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{SessionID: sessionID, State: state}, nil
}

// Delete removes a session. The simulation and its agents are dropped;
// archived episodes, if any, remain in the archive store.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	delete(s.sessions, sessionID)
	return nil
}

// List returns the ids of all live sessions.
func (s *Store) List(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return e, nil
}
