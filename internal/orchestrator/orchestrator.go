// Package orchestrator selects and runs agent pipelines. It owns the
// pipeline registry, loads it from the JSON configuration file with
// built-in fallbacks, and dispatches execution requests to the
// pipeline engine.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/shayc/aimon/internal/pipeline"
	"github.com/shayc/aimon/internal/tokenopt"
	"github.com/shayc/aimon/pkg/models"
)

// stageMapping drives the "auto" pipeline selection.
var stageMapping = map[string]string{
	"reviewing": "vote",
	"testing":   "sequential",
}

// Options configures an Orchestrator.
type Options struct {
	// ConfigPath is the pipelines.json location. Missing or invalid
	// files fall back to the built-in defaults.
	ConfigPath string
	// DefaultPipeline is used when a run names no pipeline.
	DefaultPipeline string
	// Factory builds the invoker for each configured agent.
	Factory pipeline.InvokerFactory
	// Optimize enables token optimization when non-nil.
	Optimize *tokenopt.OptimizationContext
	// Logger receives debug output. Nil disables logging.
	Logger *DebugLogger
}

// Orchestrator holds the pipeline registry and runs executions
// against it. Safe for concurrent use; the registry can be reloaded
// while runs are in flight.
type Orchestrator struct {
	mu          sync.RWMutex
	pipelines   map[string]models.PipelineSpec
	configPath  string
	defaultName string
	factory     pipeline.InvokerFactory
	opt         *tokenopt.OptimizationContext
	logger      *DebugLogger
}

// New builds an orchestrator and loads its pipeline registry. Loading
// never fails: a missing or malformed configuration file is logged and
// replaced with the built-in defaults.
func New(opts Options) *Orchestrator {
	defaultName := opts.DefaultPipeline
	if defaultName == "" {
		defaultName = "tiered"
	}

	o := &Orchestrator{
		configPath:  opts.ConfigPath,
		defaultName: defaultName,
		factory:     opts.Factory,
		opt:         opts.Optimize,
		logger:      opts.Logger,
	}
	o.pipelines = o.loadPipelines()
	return o
}

// loadPipelines reads the configuration file, falling back to the
// defaults on any failure.
func (o *Orchestrator) loadPipelines() map[string]models.PipelineSpec {
	if o.configPath == "" {
		return DefaultPipelines()
	}

	data, err := os.ReadFile(o.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			o.logger.Log("error reading pipeline config %s: %v", o.configPath, err)
			fmt.Fprintf(os.Stderr, "[orchestrator] Error loading config: %v\n", err)
		}
		return DefaultPipelines()
	}

	var specs map[string]models.PipelineSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		o.logger.Log("error parsing pipeline config %s: %v", o.configPath, err)
		fmt.Fprintf(os.Stderr, "[orchestrator] Error loading config: %v\n", err)
		return DefaultPipelines()
	}

	o.logger.Log("loaded %d pipelines from %s", len(specs), o.configPath)
	return specs
}

// Reload re-reads the configuration file and swaps the registry.
func (o *Orchestrator) Reload() {
	specs := o.loadPipelines()

	o.mu.Lock()
	o.pipelines = specs
	o.mu.Unlock()
}

// Select resolves a pipeline by name. An empty name means the
// configured default; the name "auto" maps the current stage to a
// pipeline. Unknown names fall back to "default"; if that is missing
// too, ok is false.
func (o *Orchestrator) Select(name, stage string) (models.PipelineSpec, bool) {
	if name == "" {
		name = o.defaultName
	}
	if name == "auto" && stage != "" {
		mapped, ok := stageMapping[stage]
		if !ok {
			mapped = "default"
		}
		name = mapped
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if spec, ok := o.pipelines[name]; ok {
		return spec, true
	}
	spec, ok := o.pipelines["default"]
	return spec, ok
}

// Run selects a pipeline and executes it over the given context.
func (o *Orchestrator) Run(ctx context.Context, input, pipelineName, stage string) models.PipelineResult {
	spec, ok := o.Select(pipelineName, stage)
	if !ok {
		return models.PipelineResult{
			FinalResponse: models.WaitResponse,
			Reason:        "No pipeline found",
		}
	}
	return o.RunSpec(ctx, spec, input)
}

// RunSpec executes an explicit pipeline spec with the orchestrator's
// invoker factory and optimization settings. Callers that adjust a
// selected spec (for example to swap an agent role) go through here.
func (o *Orchestrator) RunSpec(ctx context.Context, spec models.PipelineSpec, input string) models.PipelineResult {
	o.logger.Log("run pipeline=%s mode=%s agents=%d", spec.Name, spec.Mode, len(spec.Agents))

	p := pipeline.New(spec, o.factory, o.opt)
	result := p.Execute(ctx, input)

	o.logger.Log("result response=%q reason=%q", result.FinalResponse, result.Reason)
	return result
}

// PipelineInfo is one registry entry summary.
type PipelineInfo struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Mode     string `json:"mode"`
	Agents   int    `json:"agents"`
	TimeoutS int    `json:"timeout"`
}

// List summarizes the registry, sorted by key for stable output.
func (o *Orchestrator) List() []PipelineInfo {
	o.mu.RLock()
	defer o.mu.RUnlock()

	infos := make([]PipelineInfo, 0, len(o.pipelines))
	for key, spec := range o.pipelines {
		timeoutS := spec.TimeoutPerAgentS
		if timeoutS <= 0 {
			timeoutS = int(spec.Timeout().Seconds())
		}
		infos = append(infos, PipelineInfo{
			Key:      key,
			Name:     spec.Name,
			Mode:     string(spec.Mode),
			Agents:   len(spec.Agents),
			TimeoutS: timeoutS,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// ConfigPath returns where the registry is persisted.
func (o *Orchestrator) ConfigPath() string { return o.configPath }

// SaveConfig writes the current registry to the configuration file,
// creating parent directories as needed.
func (o *Orchestrator) SaveConfig() error {
	if o.configPath == "" {
		return fmt.Errorf("no config path configured")
	}

	o.mu.RLock()
	data, err := json.MarshalIndent(o.pipelines, "", "  ")
	o.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal pipeline config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(o.configPath), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(o.configPath, data, 0644); err != nil {
		return fmt.Errorf("write pipeline config: %w", err)
	}
	return nil
}
