package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shayc/aimon/internal/agent"
	"github.com/shayc/aimon/internal/arbiter"
	"github.com/shayc/aimon/internal/config"
	"github.com/shayc/aimon/internal/orchestrator"
	"github.com/shayc/aimon/internal/pipeline"
	"github.com/shayc/aimon/internal/tokenopt"
	"github.com/shayc/aimon/pkg/models"
)

// newInvokerFactory builds the per-agent invoker constructor from the
// supervisor configuration.
func newInvokerFactory(cfg *config.Config) (pipeline.InvokerFactory, error) {
	if cfg.Supervisor.UseAPI {
		apiCfg := agent.APIConfig{APIKey: cfg.Supervisor.APIKey, Model: cfg.Supervisor.Model}
		if apiCfg.APIKey == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("supervisor.use_api is set but no API key is configured")
		}
		return func(spec models.AgentSpec) agent.Invoker {
			inv, err := agent.NewAPIInvoker(spec, apiCfg)
			if err != nil {
				// Key presence was checked above, so this only fires if
				// the environment changed underneath us.
				return agent.NewProcessInvoker(spec, cfg.Supervisor.Command, cfg.Supervisor.Args...)
			}
			return inv
		}, nil
	}
	return func(spec models.AgentSpec) agent.Invoker {
		return agent.NewProcessInvoker(spec, cfg.Supervisor.Command, cfg.Supervisor.Args...)
	}, nil
}

// newOrchestrator wires config, invoker factory, token optimization,
// and debug logging into an orchestrator. The caller must Close the
// returned logger.
func newOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, *orchestrator.DebugLogger, error) {
	factory, err := newInvokerFactory(cfg)
	if err != nil {
		return nil, nil, err
	}

	var opt *tokenopt.OptimizationContext
	if cfg.TokenOptimize {
		opt = tokenopt.NewOptimizationContext()
	}

	logger := orchestrator.NopLogger()
	if cfg.Orchestrator.LogPath != "" {
		l, err := orchestrator.NewDebugLogger(cfg.Orchestrator.LogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: debug log unavailable: %v\n", err)
		} else {
			logger = l
		}
	}

	orch := orchestrator.New(orchestrator.Options{
		ConfigPath:      cfg.Orchestrator.ConfigPath,
		DefaultPipeline: cfg.Orchestrator.DefaultPipeline,
		Factory:         factory,
		Optimize:        opt,
		Logger:          logger,
	})
	return orch, logger, nil
}

// openArbiter opens the decision store and wraps it in an arbiter.
// The caller must Close the returned store.
func openArbiter(cfg *config.Config) (*arbiter.Arbiter, *arbiter.SQLiteStore, error) {
	store, err := arbiter.Open(cfg.Memory.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open decision store: %w", err)
	}
	return arbiter.New(store), store, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
