package pipeline

import (
	"context"
	"fmt"

	"github.com/shayc/aimon/pkg/models"
)

// sequentialStrategy invokes enabled agents one at a time in list
// order. The first agent that answers with a real command wins and the
// remaining agents are never invoked. Agent priority does not reorder
// the list; list order is authoritative.
type sequentialStrategy struct{}

func (sequentialStrategy) execute(ctx context.Context, p *Pipeline, input string) models.PipelineResult {
	var responses []models.AgentResponse

	for _, i := range p.spec.EnabledAgents() {
		spec := p.spec.Agents[i]
		resp := p.invokers[i].Invoke(ctx, input, p.spec.Timeout())
		responses = append(responses, resp)

		if !resp.IsWait && resp.Error == "" {
			return newResult(
				responses,
				resp.Response,
				fmt.Sprintf("Sequential winner: %s (%s)", spec.ID, spec.Role),
			)
		}
	}

	return newResult(responses, models.WaitResponse, "All agents returned WAIT")
}
