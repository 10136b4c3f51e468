// Package main provides the promptforge CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joss/promptforge/internal/analytics"
	"github.com/joss/promptforge/internal/autosave"
	"github.com/joss/promptforge/internal/config"
	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/generate"
	"github.com/joss/promptforge/internal/logging"
	"github.com/joss/promptforge/internal/metrics"
	"github.com/joss/promptforge/internal/notify"
	"github.com/joss/promptforge/internal/provider"
	"github.com/joss/promptforge/internal/render"
	"github.com/joss/promptforge/internal/session"
	"github.com/joss/promptforge/internal/storage"
	"github.com/joss/promptforge/internal/tui"
	"github.com/joss/promptforge/pkg/llm"
)

var (
	version = "0.1.0"
	pretty  = true
)

// app bundles the wired core shared by all commands.
type app struct {
	store     *storage.KV
	manager   *session.Manager
	analytics *analytics.Aggregator
	provider  llm.Provider
	generator *generate.Service
	saver     *session.Saver
	notifier  *notify.Notifier
	renderer  *render.Renderer
}

func main() {
	pretty = term.IsTerminal(int(os.Stdout.Fd()))

	rootCmd := &cobra.Command{
		Use:   "promptforge",
		Short: "PromptForge - iterative prompt drafting studio",
		Long: `PromptForge: draft, optimize, and version prompts in the terminal.

Usage modes:
  promptforge              Start the interactive editor
  promptforge <command>    Run a specific command (see below)

Sessions hold a newest-first history of saved versions. Autosave
silently refreshes the latest version; manual saves are checkpoints.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			// The TUI owns the terminal; logs go to a file instead of stderr.
			logFile, lerr := os.OpenFile(
				config.GetPaths().Home+"/promptforge.log",
				os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if lerr == nil {
				logging.SetOutput(logFile)
				defer logFile.Close()
			}

			if port := config.Env().MetricsPort; port > 0 {
				srv := metrics.NewServer(port)
				srv.Start()
				defer srv.Stop(context.Background())
			}

			return tui.Run(tui.Deps{
				Manager:   a.manager,
				Saver:     a.saver,
				Generator: a.generator,
				Analytics: a.analytics,
				Notifier:  a.notifier,
				Clock:     autosave.SystemClock{},
			})
		},
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", pretty, "Pretty print output")

	rootCmd.AddCommand(
		generateCmd(),
		sessionsCmd(),
		statsCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openApp opens the store and wires the core components.
func openApp() (*app, error) {
	paths := config.GetPaths()
	if err := config.EnsureDir(paths.Data); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.Open(paths.Data)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ctx := context.Background()
	model := storedModel(ctx, store)

	agg := analytics.NewAggregator(store)
	if err := agg.Load(ctx); err != nil {
		logging.New("main").Warn("usage_log_load_failed", nil, err)
	}

	mgr := session.NewManager(store)
	mgr.Load(ctx, model)

	prov, err := buildProvider(storedProvider(ctx, store))
	if err != nil {
		store.Close()
		return nil, err
	}
	gen := generate.NewService(prov, model, agg.Ingest)

	notifier := notify.New()
	saver := session.NewSaver(mgr, gen, notifier)

	return &app{
		store:     store,
		manager:   mgr,
		analytics: agg,
		provider:  prov,
		generator: gen,
		saver:     saver,
		notifier:  notifier,
		renderer:  render.New(pretty),
	}, nil
}

func (a *app) close() {
	a.store.Close()
}

// modelConfig is the separately-scoped model configuration blob.
type modelConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// storedModel resolves the generation model: explicit environment wins,
// then the persisted configuration, then the built-in default.
func storedModel(ctx context.Context, store *storage.KV) string {
	env := config.Env()
	if os.Getenv("PROMPTFORGE_MODEL") != "" {
		return env.Model
	}
	if data, err := store.Get(ctx, storage.KeyModelConfig); err == nil {
		var mc modelConfig
		if json.Unmarshal(data, &mc) == nil && mc.Model != "" {
			return mc.Model
		}
	}
	return env.Model
}

// storedProvider resolves the provider id the same way.
func storedProvider(ctx context.Context, store *storage.KV) string {
	env := config.Env()
	if os.Getenv("PROMPTFORGE_PROVIDER") != "" {
		return env.Provider
	}
	if data, err := store.Get(ctx, storage.KeyModelConfig); err == nil {
		var mc modelConfig
		if json.Unmarshal(data, &mc) == nil && mc.Provider != "" {
			return mc.Provider
		}
	}
	return env.Provider
}

// buildProvider constructs the configured streaming provider.
func buildProvider(id string) (llm.Provider, error) {
	env := config.Env()

	registry := llm.NewRegistry()
	registry.Register(provider.NewOpenAI(env.OpenAIKey, env.OpenAIBaseURL))
	registry.Register(provider.NewAnthropic(env.AnthropicKey, env.AnthropicBaseURL))

	p, ok := registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (want openai or anthropic)", id)
	}
	return p, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the promptforge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("promptforge", version)
		},
	}
}

// findSession resolves a session by id or exact name.
func findSession(mgr *session.Manager, ref string) (*domain.Session, error) {
	if s := mgr.Find(ref); s != nil {
		return s, nil
	}
	for _, s := range mgr.Sessions() {
		if s.Name == ref {
			return s, nil
		}
	}
	return nil, errors.New("session not found: " + ref)
}
