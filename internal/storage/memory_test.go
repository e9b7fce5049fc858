package storage

import (
	"context"
	"testing"

	"credence/internal/model"
)

func TestMemoryStoreSessionMetaRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	meta := model.SessionMeta{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		SessionID:       "s1",
		Participant:     "anon",
		StartedAt:       "2026-01-01T00:00:00Z",
	}
	if err := store.SaveSessionMeta(ctx, meta); err != nil {
		t.Fatalf("save meta: %v", err)
	}

	out, ok, err := store.GetSessionMeta(ctx, "s1")
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted session meta")
	}
	if out.Participant != "anon" {
		t.Fatalf("unexpected meta: %+v", out)
	}
}

func TestMemoryStoreAppendsEpisodesInOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for episode := 0; episode < 3; episode++ {
		err := store.AppendEpisode(ctx, model.EpisodeArchive{
			VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
			SessionID:       "s1",
			Episode:         episode,
			Steps:           []model.StepRecord{{T: 0, P: 0.5, Outcome: model.OutcomeHeads}},
		})
		if err != nil {
			t.Fatalf("append episode %d: %v", episode, err)
		}
	}

	episodes, ok, err := store.GetEpisodes(ctx, "s1")
	if err != nil {
		t.Fatalf("get episodes: %v", err)
	}
	if !ok || len(episodes) != 3 {
		t.Fatalf("expected 3 episodes, got ok=%v len=%d", ok, len(episodes))
	}
	for i, episode := range episodes {
		if episode.Episode != i {
			t.Fatalf("episode %d out of order: %d", i, episode.Episode)
		}
	}

	if _, ok, _ := store.GetEpisodes(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown session")
	}
}

func TestMemoryStoreDeleteSessionDropsEpisodes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveSessionMeta(ctx, model.SessionMeta{SessionID: "s1"}); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := store.AppendEpisode(ctx, model.EpisodeArchive{SessionID: "s1", Episode: 0}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok, _ := store.GetSessionMeta(ctx, "s1"); ok {
		t.Fatal("meta survived delete")
	}
	if _, ok, _ := store.GetEpisodes(ctx, "s1"); ok {
		t.Fatal("episodes survived delete")
	}
}

func TestMemoryStoreRewardHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []float64{0.4, 0.55, 0.6}
	if err := store.SaveRewardHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}
	output, ok, err := store.GetRewardHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted reward history")
	}
	if len(output) != len(input) || output[2] != input[2] {
		t.Fatalf("unexpected history: %+v", output)
	}
}

func TestMemoryStorePolicyProbesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.PolicyProbe{{AgentID: 0, Epsilon: 0.3, QValuesSample: []float64{0.1, -0.1}}}
	if err := store.SavePolicyProbes(ctx, "run-1", input); err != nil {
		t.Fatalf("save probes: %v", err)
	}
	output, ok, err := store.GetPolicyProbes(ctx, "run-1")
	if err != nil {
		t.Fatalf("get probes: %v", err)
	}
	if !ok || len(output) != 1 || output[0].Epsilon != 0.3 {
		t.Fatalf("unexpected probes: ok=%v %+v", ok, output)
	}
}
