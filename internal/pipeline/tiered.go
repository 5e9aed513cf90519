package pipeline

import (
	"context"

	"github.com/shayc/aimon/pkg/models"
)

// tieredStrategy tries to answer without paying for an agent call:
// first the rule classifier, then the response cache, and only then a
// real single-agent invocation whose answer is written through to the
// cache. Without an optimization context it degrades to single mode.
type tieredStrategy struct{}

func (tieredStrategy) execute(ctx context.Context, p *Pipeline, input string) models.PipelineResult {
	single := singleStrategy{}

	if p.opt == nil {
		return single.execute(ctx, p, input)
	}
	if len(p.spec.Agents) == 0 {
		return newResult(nil, models.WaitResponse, "No agents configured")
	}

	if need, quick := p.opt.Tiered.ShouldInvokeFullAgent(input); !need {
		return newResult(nil, quick, "Tiered: quick classification (no LLM call)")
	}

	role := p.spec.Agents[0].Role
	if cached, _, ok := p.opt.Cache.Get(input, role); ok {
		return newResult(nil, cached, "Tiered: cache hit")
	}

	result := single.execute(ctx, p, input)
	if result.FinalResponse != "" && agentSucceeded(result) {
		stage := ""
		if len(result.Responses) > 0 {
			stage = result.Responses[0].StageHint
		}
		p.opt.Cache.Set(input, role, result.FinalResponse, stage)
	}
	return result
}

// agentSucceeded reports whether the single invocation behind a result
// completed without an error. Failed calls must not poison the cache.
func agentSucceeded(result models.PipelineResult) bool {
	for _, r := range result.Responses {
		if r.Error != "" {
			return false
		}
	}
	return len(result.Responses) > 0
}
