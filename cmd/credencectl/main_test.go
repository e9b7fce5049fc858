package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if err := run(context.Background(), nil); err == nil {
		t.Fatal("expected usage error")
	}
}

func TestRunInitMemoryStore(t *testing.T) {
	if err := run(context.Background(), []string{"init", "-store", "memory"}); err != nil {
		t.Fatalf("init: %v", err)
	}
}

func TestRunDemoWritesSessionLog(t *testing.T) {
	artifacts := filepath.Join(t.TempDir(), "artifacts")
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	contents := "steps_per_episode: 5\nhidden_units: 8\nreplay_capacity: 200\nminibatch_size: 8\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := run(context.Background(), []string{
		"demo",
		"-config", configPath,
		"-episodes", "2",
		"-seed", "9",
		"-artifacts", artifacts,
	})
	if err != nil {
		t.Fatalf("demo: %v", err)
	}

	entries, err := os.ReadDir(artifacts)
	if err != nil {
		t.Fatalf("read artifacts dir: %v", err)
	}
	var sawLog bool
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".json") && entry.Name() != "run_index.json" {
			sawLog = true
		}
	}
	if !sawLog {
		t.Fatal("expected a session log in the artifacts directory")
	}
}

func TestRunSelfPlayCommand(t *testing.T) {
	artifacts := filepath.Join(t.TempDir(), "artifacts")
	err := run(context.Background(), []string{
		"selfplay",
		"-run-id", "run-cli",
		"-episodes", "2",
		"-seed", "11",
		"-artifacts", artifacts,
	})
	if err != nil {
		t.Fatalf("selfplay: %v", err)
	}

	if _, err := os.Stat(filepath.Join(artifacts, "run-cli_rewards.json")); err != nil {
		t.Fatalf("rewards artifact missing: %v", err)
	}
}

func TestRunExportRequiresSession(t *testing.T) {
	if err := run(context.Background(), []string{"export"}); err == nil {
		t.Fatal("expected usage error for missing session id")
	}
}
