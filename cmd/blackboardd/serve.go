package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/eventbus"
	"github.com/Samarth061/wolf-trace-backend/internal/external/factcheck"
	"github.com/Samarth061/wolf-trace-backend/internal/external/llm"
	"github.com/Samarth061/wolf-trace-backend/internal/external/media"
	"github.com/Samarth061/wolf-trace-backend/internal/fanout"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
	"github.com/Samarth061/wolf-trace-backend/internal/httpapi"
	"github.com/Samarth061/wolf-trace-backend/internal/knowledge"
	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the blackboard engine and its HTTP boundary",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", getEnvOrDefault("BLACKBOARD_ADDR", ":8088"), "address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Initialize the process-wide logger from config.
	if err := logging.Initialize(logging.Config{
		Level:        parseLogLevel(cfg.Logging.Level),
		OutputFile:   cfg.Logging.OutputFile,
		JSONFormat:   cfg.Logging.JSONFormat,
		MaxSizeBytes: cfg.Logging.MaxSizeBytes,
		MaxBackups:   cfg.Logging.MaxBackups,
	}); err != nil {
		return err
	}
	log := logging.With("component", "cmd.blackboardd")
	log.Info("starting blackboard engine")

	// 2. Construct the Graph Store.
	store := graphstore.NewStore()

	// 3. Construct the Subscriber Fan-Out streams.
	caseboard := fanout.NewCaseboard(store, cfg.Fanout.SubscriberBuf, cfg.Fanout.SendTimeout)
	alertStream := fanout.NewAlertStream(cfg.Fanout.SubscriberBuf, cfg.Fanout.SendTimeout)

	// 4. Construct the Event Bus (non-graph domain events).
	bus := eventbus.New()
	bus.Start()

	// 5. Construct the external collaborators the knowledge sources need.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completer, err := llm.NewFromConfig(ctx, llm.Options{
		Provider:    cfg.LLM.Provider,
		OpenAIKey:   cfg.LLM.OpenAIKey,
		OpenAIModel: cfg.LLM.OpenAIModel,
		GeminiKey:   cfg.LLM.GeminiKey,
		GeminiModel: cfg.LLM.GeminiModel,
		RedisAddr:   cfg.LLM.RedisAddr,
	})
	if err != nil {
		log.Warn("llm collaborator unavailable, falling back to none", "error", err)
		completer = llm.NoneCompleter{}
	}

	lookup := factcheck.NewGitHubLookup(cfg.FactCheck.GitHubToken, "civic-tip-intake", "fact-check-ledger", cfg.FactCheck.CacheTTL)

	analyzer := media.Analyzer(media.NoopAnalyzer{})
	if mediaURL := os.Getenv("MEDIA_ANALYZER_URL"); mediaURL != "" {
		analyzer = media.NewHTTPAnalyzer(mediaURL)
	}

	// 6. Construct the Blackboard Controller and register all seven
	// Knowledge Sources, priority order enforced by the scheduler
	// itself rather than registration order.
	controller := blackboard.NewController(blackboard.Config{
		MaxTriggersPerCase:    cfg.Blackboard.MaxTriggersPerCase,
		HandlerTimeout:        cfg.Blackboard.HandlerTimeout,
		WorkerConcurrency:     cfg.Blackboard.WorkerConcurrency,
		CaseIdleResetInterval: cfg.Blackboard.CaseIdleResetInterval,
	})
	controller.Register(knowledge.NewClustering(store))
	controller.Register(knowledge.NewForensics(store, analyzer))
	controller.Register(knowledge.NewReclusterDebunk(store))
	controller.Register(knowledge.NewNetwork(store, completer, lookup))
	controller.Register(knowledge.NewForensicsXref(store, analyzer))
	controller.Register(knowledge.NewClassifier(store))
	controller.Register(knowledge.NewCaseSynthesizer(store, completer))

	// 7. Wire mutation delivery order: fan-out first, controller
	// second (§4.2 invariant 3).
	store.AddListener(caseboard)
	store.AddListener(controller)

	// 8. Start the controller's worker loop.
	controller.Start()

	// 9. Build the thin HTTP boundary.
	server := &http.Server{
		Addr:    serveAddr,
		Handler: httpapi.New(store, caseboard, alertStream, bus),
	}

	go func() {
		log.Info("http boundary listening", "addr", serveAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
		}
	}()

	// 10. Handle shutdown gracefully.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	bus.Stop()
	controller.Stop()
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logging.DEBUG
	case "warn", "warning":
		return logging.WARN
	case "error", "fatal":
		return logging.ERROR
	default:
		return logging.INFO
	}
}
