package pipeline

import (
	"context"
	"fmt"

	"github.com/shayc/aimon/pkg/models"
)

// singleStrategy invokes only the first configured agent.
type singleStrategy struct{}

func (singleStrategy) execute(ctx context.Context, p *Pipeline, input string) models.PipelineResult {
	if len(p.spec.Agents) == 0 {
		return newResult(nil, models.WaitResponse, "No agents configured")
	}

	resp := p.invokers[0].Invoke(ctx, input, p.spec.Timeout())

	final := resp.Response
	if final == "" {
		final = models.WaitResponse
	}
	return newResult(
		[]models.AgentResponse{resp},
		final,
		fmt.Sprintf("Single agent: %s", p.spec.Agents[0].Role),
	)
}
