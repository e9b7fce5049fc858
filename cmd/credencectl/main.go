package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	credapi "credence/pkg/credence"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "play":
		return runPlay(ctx, args[1:])
	case "demo":
		return runDemo(ctx, args[1:])
	case "selfplay":
		return runSelfPlay(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "credence.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := credapi.New(credapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

// runPlay is the interactive loop: each tick prints the standing
// recommendations, reads the human's pick from stdin, and reports the
// resolved outcome and payoffs.
func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional simulation config YAML path")
	participant := fs.String("participant", "", "participant label recorded in the session archive")
	episodes := fs.Int("episodes", 1, "episodes to play before exiting")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "credence.db", "sqlite database path")
	artifactsDir := fs.String("artifacts", "artifacts", "artifacts directory for session exports")
	seed := fs.Int64("seed", 0, "rng seed (0 derives from the clock)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *episodes <= 0 {
		return usageError("episodes must be > 0")
	}

	cfg, err := loadOrDefaultConfig(*configPath)
	if err != nil {
		return err
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	client, err := credapi.New(credapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ArtifactsDir: *artifactsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	snap, err := client.CreateSession(ctx, credapi.CreateSessionRequest{Config: &cfg, Participant: *participant})
	if err != nil {
		return err
	}
	fmt.Printf("session=%s episodes=%d steps-per-episode=%d\n", snap.SessionID, *episodes, cfg.StepsPerEpisode)

	recommendations := snap.State.Recommendations
	reader := bufio.NewReader(os.Stdin)
	for episode := 0; episode < *episodes; episode++ {
		for {
			fmt.Printf("[episode %d step %d] agent 0 says %s, agent 1 says %s. pick an agent (0/1): ",
				episode, stepOf(ctx, client, snap.SessionID), verdict(recommendations[0]), verdict(recommendations[1]))

			choice, err := readChoice(reader)
			if err != nil {
				return err
			}

			result, err := client.Step(ctx, snap.SessionID, choice)
			if err != nil {
				fmt.Printf("rejected: %v\n", err)
				continue
			}

			fmt.Printf("coin=%s your-payoff=%.0f cumulative=%.0f\n", result.Outcome, result.HumanReward, result.CumulativeHumanReward)
			recommendations = result.NextRecommendations
			if result.Done {
				fmt.Printf("episode %d closed: episode-reward=%.0f average-reward=%.3f\n",
					episode, result.EpisodeReward, result.AverageReward)
				break
			}
		}
	}

	summary, err := client.ExportSession(ctx, credapi.ExportSessionRequest{SessionID: snap.SessionID})
	if err != nil {
		return err
	}
	fmt.Printf("session log written to %s (%d episodes)\n", summary.Path, summary.Episodes)
	return nil
}

// runDemo plays a scripted session with an alternating chooser, for smoke
// testing the full pipeline without a human at the keyboard.
func runDemo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional simulation config YAML path")
	episodes := fs.Int("episodes", 2, "episodes to simulate")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "credence.db", "sqlite database path")
	artifactsDir := fs.String("artifacts", "artifacts", "artifacts directory for session exports")
	seed := fs.Int64("seed", 1, "rng seed (0 derives from the clock)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *episodes <= 0 {
		return usageError("episodes must be > 0")
	}

	cfg, err := loadOrDefaultConfig(*configPath)
	if err != nil {
		return err
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	client, err := credapi.New(credapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ArtifactsDir: *artifactsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	snap, err := client.CreateSession(ctx, credapi.CreateSessionRequest{Config: &cfg, Participant: "demo"})
	if err != nil {
		return err
	}

	steps := *episodes * cfg.StepsPerEpisode
	for i := 0; i < steps; i++ {
		result, err := client.Step(ctx, snap.SessionID, i%2)
		if err != nil {
			return err
		}
		if result.NewEpisode {
			fmt.Printf("episode %d closed: episode-reward=%.0f average-reward=%.3f successes=%v\n",
				result.EpisodeCount-1, result.EpisodeReward, result.AverageReward, result.AgentSuccesses)
		}
	}

	summary, err := client.ExportSession(ctx, credapi.ExportSessionRequest{SessionID: snap.SessionID})
	if err != nil {
		return err
	}
	fmt.Printf("session=%s log=%s episodes=%d\n", snap.SessionID, summary.Path, summary.Episodes)
	return nil
}

func runSelfPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("selfplay", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional simulation config YAML path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	episodes := fs.Int("episodes", 100, "training episodes")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "credence.db", "sqlite database path")
	artifactsDir := fs.String("artifacts", "artifacts", "artifacts directory for reward curves")
	seed := fs.Int64("seed", 0, "rng seed (0 derives from the clock)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadOrDefaultConfig(*configPath)
	if err != nil {
		return err
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	client, err := credapi.New(credapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ArtifactsDir: *artifactsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.RunSelfPlay(ctx, credapi.SelfPlayRequest{
		RunID:    *runID,
		Episodes: *episodes,
		Config:   &cfg,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run=%s episodes=%d mean-human-reward=%.3f reward-std=%.3f rewards=%s\n",
		summary.RunID, summary.Episodes, summary.MeanHumanReward, summary.RewardStdDev, summary.RewardsPath)
	for _, probe := range summary.FinalProbes {
		fmt.Printf("agent=%d epsilon=%.3f greedy=%v\n", probe.AgentID, probe.Epsilon, probe.GreedyActions)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	sessionID := fs.String("session", "", "session id to export")
	outDir := fs.String("out", "", "output directory (defaults to the artifacts directory)")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "credence.db", "sqlite database path")
	artifactsDir := fs.String("artifacts", "artifacts", "artifacts directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sessionID == "" {
		return usageError("export requires -session")
	}

	client, err := credapi.New(credapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ArtifactsDir: *artifactsDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.ExportSession(ctx, credapi.ExportSessionRequest{SessionID: *sessionID, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported session=%s path=%s episodes=%d\n", summary.SessionID, summary.Path, summary.Episodes)
	return nil
}

func readChoice(reader *bufio.Reader) (int, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return 0, err
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return -1, nil
	}
	return choice, nil
}

func verdict(recommendation int) string {
	if recommendation == 1 {
		return "recommend"
	}
	return "not recommend"
}

func stepOf(ctx context.Context, client *credapi.Client, sessionID string) int {
	snap, err := client.SessionState(ctx, sessionID)
	if err != nil {
		return -1
	}
	return snap.State.StepInEpisode
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: credencectl <init|play|demo|selfplay|export> [flags]", msg)
}
