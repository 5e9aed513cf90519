// Package pipeline executes a configured agent pipeline in one of four
// modes: single, sequential, vote, or tiered. A pipeline owns one
// invoker per configured agent and an optional token-optimization
// context that shrinks input and short-circuits cheap cases.
package pipeline

import (
	"context"
	"time"

	"github.com/shayc/aimon/internal/agent"
	"github.com/shayc/aimon/internal/tokenopt"
	"github.com/shayc/aimon/pkg/models"
)

// InvokerFactory builds the invoker for one configured agent. The
// orchestrator decides whether that is a subprocess or a direct API
// call.
type InvokerFactory func(spec models.AgentSpec) agent.Invoker

// strategy is one execution mode. Strategies receive the pipeline for
// its spec and invokers and must not retain either.
type strategy interface {
	execute(ctx context.Context, p *Pipeline, input string) models.PipelineResult
}

// Pipeline is an executable pipeline bound to its agents.
type Pipeline struct {
	spec     models.PipelineSpec
	invokers []agent.Invoker
	opt      *tokenopt.OptimizationContext
	strategy strategy
}

// New binds a pipeline spec to invokers. opt may be nil to disable
// token optimization.
func New(spec models.PipelineSpec, factory InvokerFactory, opt *tokenopt.OptimizationContext) *Pipeline {
	invokers := make([]agent.Invoker, len(spec.Agents))
	for i, a := range spec.Agents {
		invokers[i] = factory(a)
	}

	p := &Pipeline{spec: spec, invokers: invokers, opt: opt}
	switch spec.Mode {
	case models.ModeSequential:
		p.strategy = sequentialStrategy{}
	case models.ModeVote:
		p.strategy = &voteStrategy{grace: defaultVoteGrace}
	case models.ModeTiered:
		p.strategy = tieredStrategy{}
	default:
		p.strategy = singleStrategy{}
	}
	return p
}

// Spec returns the pipeline's configuration.
func (p *Pipeline) Spec() models.PipelineSpec { return p.spec }

// Execute runs the pipeline over the given terminal context. When
// token optimization is enabled the context is filtered and folded
// before any agent sees it. The result always carries a non-empty
// final response, WAIT in the degenerate cases.
func (p *Pipeline) Execute(ctx context.Context, input string) models.PipelineResult {
	if p.opt != nil {
		input = p.opt.Filter.FoldRepetitive(p.opt.Filter.Filter(input))
	}

	result := p.strategy.execute(ctx, p, input)
	if result.FinalResponse == "" {
		result.FinalResponse = models.WaitResponse
	}
	result.Timestamp = time.Now().Unix()
	return result
}

func newResult(responses []models.AgentResponse, final, reason string) models.PipelineResult {
	return models.PipelineResult{
		Responses:     responses,
		FinalResponse: final,
		Reason:        reason,
	}
}
