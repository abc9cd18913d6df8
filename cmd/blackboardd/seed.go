package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/external/factcheck"
	"github.com/Samarth061/wolf-trace-backend/internal/external/llm"
	"github.com/Samarth061/wolf-trace-backend/internal/external/media"
	"github.com/Samarth061/wolf-trace-backend/internal/fanout"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
	"github.com/Samarth061/wolf-trace-backend/internal/knowledge"
	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

var seedCmd = &cobra.Command{
	Use:   "seed-demo-case",
	Short: "Drive a handful of mutations through a wired engine for manual verification",
	Long: `seed-demo-case wires up a Graph Store, Fan-Out and Controller exactly
like "serve" does, then submits two close-in-time, nearby reports
against one case and waits for the reactive cascade (clustering,
classification) to settle. Useful for watching §8's "two close
reports cluster" scenario happen without an HTTP client.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logging.Config{Level: logging.DEBUG}); err != nil {
		return err
	}
	log := logging.With("component", "cmd.blackboardd.seed")

	store := graphstore.NewStore()
	caseboard := fanout.NewCaseboard(store, 16, time.Second)

	controller := blackboard.NewController(blackboard.DefaultConfig())
	controller.Register(knowledge.NewClustering(store))
	controller.Register(knowledge.NewForensics(store, media.NoopAnalyzer{}))
	controller.Register(knowledge.NewReclusterDebunk(store))
	controller.Register(knowledge.NewNetwork(store, llm.NoneCompleter{}, factcheck.NewGitHubLookup("", "civic-tip-intake", "fact-check-ledger", time.Hour)))
	controller.Register(knowledge.NewForensicsXref(store, media.NoopAnalyzer{}))
	controller.Register(knowledge.NewClassifier(store))
	controller.Register(knowledge.NewCaseSynthesizer(store, llm.NoneCompleter{}))

	store.AddListener(caseboard)
	store.AddListener(controller)
	controller.Start()
	defer controller.Stop()

	const caseID = "demo-case-1"
	now := time.Now()

	firstData := map[string]any{
		"text":      "suspicious person near the library loading dock",
		"timestamp": now.Format(time.RFC3339),
		"location":  map[string]any{"lat": 37.8719, "lng": -122.2585},
	}
	first, err := store.AddNode(graphstore.KindReport, caseID, firstData, "")
	if err != nil {
		return fmt.Errorf("seed first report: %w", err)
	}
	if err := store.AddReport(caseID, "report-1", firstData, first.ID); err != nil {
		return fmt.Errorf("index first report: %w", err)
	}
	log.Info("submitted report", "id", first.ID)

	// Let the first report's cascade finish and each source's default
	// 2s per-case cooldown lapse, so the second report's node:report
	// trigger is not suppressed and clustering runs on it.
	time.Sleep(2500 * time.Millisecond)

	secondData := map[string]any{
		"text":      "someone loitering by the library loading dock, acting suspicious",
		"timestamp": now.Add(2 * time.Minute).Format(time.RFC3339),
		"location":  map[string]any{"lat": 37.8720, "lng": -122.2586},
	}
	second, err := store.AddNode(graphstore.KindReport, caseID, secondData, "")
	if err != nil {
		return fmt.Errorf("seed second report: %w", err)
	}
	if err := store.AddReport(caseID, "report-2", secondData, second.ID); err != nil {
		return fmt.Errorf("index second report: %w", err)
	}
	log.Info("submitted report", "id", second.ID)

	// Give the worker loop a moment to drain the reactive cascade
	// (clustering -> classifier) before printing the result; this is a
	// demo convenience, not a synchronization guarantee the engine
	// itself makes.
	time.Sleep(500 * time.Millisecond)

	snapshot := store.CaseSnapshot(caseID)
	fmt.Printf("case %s: %d nodes, %d edges\n", caseID, len(snapshot.Nodes), len(snapshot.Edges))
	for _, n := range snapshot.Nodes {
		fmt.Printf("  node %s (%s) data=%v\n", n.ID, n.Kind, n.Data)
	}
	for _, e := range snapshot.Edges {
		fmt.Printf("  edge %s (%s) %s -> %s data=%v\n", e.ID, e.Kind, e.SourceNodeID, e.TargetNodeID, e.Data)
	}
	return nil
}
