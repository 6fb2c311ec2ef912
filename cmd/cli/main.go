// Package main provides the CLI for artrogue. Uses Cobra for command
// parsing — the same search and chat pipeline as the server, but printed to
// stdout instead of served over HTTP.
//
// Run with: go run ./cmd/cli search --museum met "sunflowers"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/config"
	"github.com/artrogue/artrogue/internal/llm"
	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/museum"
	"github.com/artrogue/artrogue/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "artrogue",
		Short: "Search museum collections and ask an LLM about art",
	}

	root.AddCommand(searchCmd())
	root.AddCommand(askCmd())
	return root
}

func searchCmd() *cobra.Command {
	var museumTag string
	var highlight bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search a museum collection and print normalized results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(museumTag, args[0], highlight)
		},
	}

	cmd.Flags().StringVar(&museumTag, "museum", "cma", "Museum to search: met, cma")
	cmd.Flags().BoolVar(&highlight, "highlight", false, "Only collection highlights")
	return cmd
}

func runSearch(museumTag, query string, highlight bool) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !model.ValidMuseum(museumTag) {
		return fmt.Errorf("invalid museum %q: must be met or cma", museumTag)
	}

	artService := service.NewArtService(buildRegistry(cfg, logger), nil, logger)

	ctx, cancel := signalContext()
	defer cancel()

	result, err := artService.Search(ctx, model.Museum(museumTag), query, highlight)
	if err != nil {
		return err
	}

	if result.Notice != "" {
		fmt.Println(result.Notice)
	}
	for i, art := range result.Artworks {
		fmt.Printf("%d. %s\n", i+1, orUntitled(art.Title))
		if art.Artist != "" || art.CreationDate != "" {
			fmt.Printf("   %s — %s\n", art.Artist, art.CreationDate)
		}
		if art.ImageURL != "" {
			fmt.Printf("   %s\n", art.ImageURL)
		}
	}
	return nil
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the ArtRogue assistant a one-shot question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(strings.Join(args, " "))
		},
	}
	return cmd
}

func runAsk(question string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	streamer := llm.NewStreamer(buildChatClients(cfg, logger), cfg.LLM.RatePerMinute, nil, logger)

	ctx, cancel := signalContext()
	defer cancel()

	messages := []model.ChatMessage{
		{Role: model.RoleSystem, Content: llm.SystemPrompt()},
		{Role: model.RoleUser, Content: question},
	}

	state := streamer.Stream(ctx, "cli", messages, func(fragment string) error {
		fmt.Print(fragment)
		return nil
	})
	fmt.Println()

	if state == llm.StateFailed {
		return fmt.Errorf("chat stream failed")
	}
	return nil
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(os.Getenv("ARTROGUE_CONFIG_PATH"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	// Always use development logging for the CLI
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}

func buildRegistry(cfg *config.Config, logger *zap.Logger) museum.Registry {
	timeout := time.Duration(cfg.Museum.TimeoutSeconds) * time.Second
	return museum.Registry{
		model.MuseumMET: museum.NewMETProvider(cfg.Museum.METBaseURL, cfg.Museum.SampleSize, timeout, logger),
		model.MuseumCMA: museum.NewCMAProvider(cfg.Museum.CMABaseURL, cfg.Museum.SampleSize, timeout, logger),
	}
}

func buildChatClients(cfg *config.Config, logger *zap.Logger) []llm.Client {
	var clients []llm.Client
	for _, name := range cfg.LLM.ProviderOrder {
		switch name {
		case "openai":
			if cfg.LLM.OpenAI.APIKey != "" {
				clients = append(clients, llm.NewOpenAIClient(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
			}
		case "anthropic":
			if cfg.LLM.Anthropic.APIKey != "" {
				clients = append(clients, llm.NewAnthropicClient(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
			}
		default:
			logger.Warn("unknown chat provider in provider_order", zap.String("provider", name))
		}
	}
	return clients
}

// signalContext returns a context cancelled on Ctrl+C.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func orUntitled(title string) string {
	if title == "" {
		return "(untitled)"
	}
	return title
}
