// Package main provides the Weaver travel concierge application. Weaver
// runs an LLM-driven travel agent whose tool calls pass through a payment
// policy gate, either as an interactive terminal chat or as an HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/travelweaver/weaver/pkg/agent"
	"github.com/travelweaver/weaver/pkg/agent/policy"
	"github.com/travelweaver/weaver/pkg/agent/tools"
	"github.com/travelweaver/weaver/pkg/config"
	"github.com/travelweaver/weaver/pkg/executor/tui"
	"github.com/travelweaver/weaver/pkg/flights"
	"github.com/travelweaver/weaver/pkg/llm"
	"github.com/travelweaver/weaver/pkg/llm/openai"
	"github.com/travelweaver/weaver/pkg/llm/tokenizer"
	"github.com/travelweaver/weaver/pkg/logging"
	"github.com/travelweaver/weaver/pkg/payments"
	"github.com/travelweaver/weaver/pkg/server"
)

const version = "0.1.0"

type appFlags struct {
	configPath  string
	serve       bool
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Printf("Weaver v%s\n", version)
		return
	}

	// Secrets come from the environment; .env is a development convenience.
	_ = godotenv.Load()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cfg, flags.serve); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func parseFlags() *appFlags {
	flags := &appFlags{}

	flag.StringVar(&flags.configPath, "config", "", "Path to YAML config file (optional)")
	flag.BoolVar(&flags.serve, "serve", false, "Run the HTTP API instead of the terminal chat")
	flag.BoolVar(&flags.showVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Weaver - A policy-gated travel concierge\n\n")
		fmt.Fprintf(os.Stderr, "Usage: weaver [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     LLM API key (override via llm.api_key_env)\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    LLM API base URL for compatible runtimes\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  weaver                          # terminal chat with demo wallet\n")
		fmt.Fprintf(os.Stderr, "  weaver -config weaver.yaml\n")
		fmt.Fprintf(os.Stderr, "  weaver -serve                   # HTTP API on the configured addr\n")
	}

	flag.Parse()
	return flags
}

// buildDeps wires the shared runtime pieces from configuration.
type deps struct {
	provider llm.Provider
	gate     *policy.Gate
	toolset  []tools.Tool
	counter  *tokenizer.Counter
	logger   *logging.Logger
}

func buildDeps(cfg *config.Config) (*deps, error) {
	provider, err := openai.NewProvider(cfg.APIKey(),
		openai.WithModel(cfg.LLM.Model),
		openai.WithBaseURL(cfg.LLM.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	gate, err := policy.NewGate(policy.Config{
		DestinationAddress: cfg.Policy.DestinationAddress,
		FixedAmount:        cfg.Policy.FixedAmount,
		PaymentNamespace:   cfg.Policy.PaymentNamespace,
		FlightNamespace:    cfg.Policy.FlightNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create policy gate: %w", err)
	}

	wallet, err := buildWallet(cfg)
	if err != nil {
		return nil, err
	}

	toolset := []tools.Tool{
		tools.NewConverseTool(),
		tools.NewSendToAddressTool(wallet),
		tools.NewSendToContactTool(wallet),
		tools.NewSendToEmailTool(wallet),
		tools.NewSearchFlightsTool(flights.NewCatalog()),
	}

	// Token counting is best effort; an unknown model just disables the
	// context display.
	counter, err := tokenizer.NewCounter(cfg.LLM.Model)
	if err != nil {
		counter = nil
	}

	logger, err := logging.NewLogger("weaver")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &deps{
		provider: provider,
		gate:     gate,
		toolset:  toolset,
		counter:  counter,
		logger:   logger,
	}, nil
}

func buildWallet(cfg *config.Config) (payments.Client, error) {
	switch cfg.Payments.Mode {
	case config.PaymentModeHTTP:
		var opts []payments.HTTPClientOption
		if cfg.Payments.APIKeyEnv != "" {
			opts = append(opts, payments.WithAPIKey(os.Getenv(cfg.Payments.APIKeyEnv)))
		}
		client, err := payments.NewHTTPClient(cfg.Payments.Endpoint, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create wallet client: %w", err)
		}
		return client, nil
	default:
		return payments.NewDemoWallet(), nil
	}
}

func sessionOptions(cfg *config.Config, d *deps) []agent.SessionOption {
	opts := []agent.SessionOption{
		agent.WithLogger(d.logger),
		agent.WithTurnTimeout(cfg.TurnTimeout),
	}
	if d.counter != nil {
		opts = append(opts, agent.WithTokenCounter(d.counter))
	}
	return opts
}

func run(ctx context.Context, cfg *config.Config, serve bool) error {
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.logger.Close()

	if serve {
		return runServer(ctx, cfg, d)
	}
	return runTUI(ctx, cfg, d)
}

func runTUI(ctx context.Context, cfg *config.Config, d *deps) error {
	executor := tui.NewExecutor(func(sink agent.EventSink) *agent.Session {
		opts := append(sessionOptions(cfg, d), agent.WithEventSink(sink))
		return agent.NewSession(d.provider, d.gate, d.toolset, opts...)
	})

	fmt.Printf("Weaver v%s - Travel Concierge\n", version)
	fmt.Printf("Model: %s\n", cfg.LLM.Model)
	fmt.Printf("Wallet: %s\n", cfg.Payments.Mode)
	fmt.Println("\nStarting chat...")

	if err := executor.Run(ctx); err != nil {
		return fmt.Errorf("executor error: %w", err)
	}
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, d *deps) error {
	broadcaster := server.NewBroadcaster()

	manager := agent.NewManager(func(id string) *agent.Session {
		opts := append(sessionOptions(cfg, d),
			agent.WithSessionID(id),
			agent.WithEventSink(broadcaster.SinkFor(id)),
		)
		return agent.NewSession(d.provider, d.gate, d.toolset, opts...)
	})

	handler := server.NewHandler(manager, broadcaster,
		server.WithRateLimit(cfg.Server.RateLimitPerMinute),
		server.WithServerLogger(d.logger),
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.Router(),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	d.logger.Infof("serving HTTP API on %s", cfg.Server.Addr)
	fmt.Printf("Weaver v%s - HTTP API on %s\n", version, cfg.Server.Addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
