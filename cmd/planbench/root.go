package main

import (
	"fmt"
	"os"

	"github.com/rahul/planbench/internal/agent"
	"github.com/rahul/planbench/internal/experiment"
	"github.com/rahul/planbench/internal/langsmith"
	"github.com/rahul/planbench/internal/llm"
	"github.com/rahul/planbench/internal/observability"
	"github.com/rahul/planbench/internal/store"
	"github.com/rahul/planbench/pkg/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	backend    string
	provider   string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "planbench",
	Short: "Task planning with LLMs, scored and tracked",
	Long: `planbench breaks a task into numbered steps with a hosted LLM
(Groq, OpenAI or Anthropic), scores plans with an LLM judge and runs
experiments over stored datasets.

With no arguments, starts the interactive planner.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./planbench.yaml)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "tracking store: sqlite or langsmith")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider: groq, openai or anthropic")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	addChatFlags(rootCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(reactCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(experimentCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(telegramCmd)
}

// app carries everything a command needs. It is built once per invocation.
type app struct {
	cfg     *config.Config
	logger  *observability.Logger
	prompts *agent.PromptCatalog
}

// loadApp reads configuration and applies flag overrides. quietLevel is
// the log level used when neither a flag nor the environment picked one.
func loadApp(cmd *cobra.Command, quietLevel string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if provider != "" {
		cfg.Provider = config.Provider(provider)
	}
	if backend != "" {
		cfg.Store.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	switch {
	case logLevel != "":
		level = logLevel
	case quietLevel != "" && os.Getenv("PLANBENCH_LOG_LEVEL") == "":
		level = quietLevel
	}

	return &app{
		cfg:     cfg,
		logger:  observability.NewLogger(cmd.ErrOrStderr(), level, cfg.Log.LLMLogPath),
		prompts: agent.NewPromptCatalog(),
	}, nil
}

func (a *app) client() (llm.Client, error) {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return llm.New(a.cfg, a.logger)
}

func (a *app) planner() (*agent.TaskPlanner, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return agent.NewTaskPlanner(client, a.prompts, a.logger), nil
}

func (a *app) evaluator() (*agent.PlanEvaluator, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return agent.NewPlanEvaluator(client, a.prompts, a.logger), nil
}

func (a *app) reactLoop() (*agent.ReactLoop, error) {
	if a.cfg.Reasoning.Provider == "" {
		if err := a.cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
	}
	client, err := llm.NewReasoning(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	return agent.NewReactLoop(client, a.prompts, a.logger), nil
}

// tracker opens the configured tracking store. The returned func releases it.
func (a *app) tracker() (experiment.Tracker, func(), error) {
	switch a.cfg.Store.Backend {
	case "langsmith":
		c, err := langsmith.New(a.cfg.LangSmith.Endpoint, a.cfg.LangSmith.APIKey)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	default:
		s, err := store.NewSQLiteStore(a.cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening store %s: %w", a.cfg.Store.Path, err)
		}
		return s, func() { s.Close() }, nil
	}
}

// sqliteStore opens the local store for commands only it supports.
func (a *app) sqliteStore() (*store.SQLiteStore, error) {
	if a.cfg.Store.Backend != "sqlite" {
		return nil, fmt.Errorf("this command needs the sqlite backend (have %s)", a.cfg.Store.Backend)
	}
	return store.NewSQLiteStore(a.cfg.Store.Path)
}

func datasetName(a *app, flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Store.Dataset
}
