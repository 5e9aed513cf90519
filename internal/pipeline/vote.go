package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shayc/aimon/pkg/models"
)

// defaultVoteGrace is how long past the per-agent timeout the batch
// waits before dropping stragglers.
const defaultVoteGrace = 5 * time.Second

// voteReasonResponseLen caps the winning response shown in the reason.
const voteReasonResponseLen = 30

// voteStrategy invokes every enabled agent concurrently and picks the
// most common real answer. The batch is bounded by the per-agent
// timeout plus a grace period; when that deadline fires, outstanding
// invocations are cancelled and their replies discarded.
type voteStrategy struct {
	grace time.Duration
}

func (v *voteStrategy) execute(ctx context.Context, p *Pipeline, input string) models.PipelineResult {
	if len(p.spec.Agents) == 0 {
		return newResult(nil, models.WaitResponse, "No agents configured")
	}
	enabled := p.spec.EnabledAgents()
	if len(enabled) == 0 {
		return newResult(nil, models.WaitResponse, "No enabled agents")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so stragglers cancelled after the deadline can still
	// send and exit.
	results := make(chan models.AgentResponse, len(enabled))
	for _, i := range enabled {
		go func(i int) {
			results <- p.invokers[i].Invoke(ctx, input, p.spec.Timeout())
		}(i)
	}

	deadline := time.NewTimer(p.spec.Timeout() + v.grace)
	defer deadline.Stop()

	var responses []models.AgentResponse
collect:
	for range enabled {
		select {
		case resp := <-results:
			responses = append(responses, resp)
		case <-deadline.C:
			cancel()
			break collect
		}
	}

	final, reason := v.aggregate(p.spec, responses)
	return newResult(responses, final, reason)
}

// aggregate tallies identical real answers. WAIT replies and erroring
// agents do not vote. Ties go to the answer backed by the
// highest-priority agent, then to the answer seen first.
func (v *voteStrategy) aggregate(spec models.PipelineSpec, responses []models.AgentResponse) (final, reason string) {
	var valid []models.AgentResponse
	waits, errors := 0, 0
	for _, r := range responses {
		if r.IsWait {
			waits++
		}
		if r.Error != "" {
			errors++
		}
		if r.Response != "" && !r.IsWait && r.Error == "" {
			valid = append(valid, r)
		}
	}

	if len(valid) == 0 {
		return models.WaitResponse,
			fmt.Sprintf("No valid responses (WAIT:%d, Error:%d)", waits, errors)
	}

	priorities := make(map[string]int, len(spec.Agents))
	for _, a := range spec.Agents {
		priorities[a.ID] = a.Priority
	}

	type tally struct {
		count   int
		topPrio int
		roles   []string
	}
	tallies := make(map[string]*tally, len(valid))
	var order []string
	for _, r := range valid {
		tl := tallies[r.Response]
		if tl == nil {
			tl = &tally{topPrio: -1}
			tallies[r.Response] = tl
			order = append(order, r.Response)
		}
		tl.count++
		tl.roles = append(tl.roles, r.Role)
		if prio := priorities[r.AgentID]; prio > tl.topPrio {
			tl.topPrio = prio
		}
	}

	winner := order[0]
	for _, candidate := range order[1:] {
		c, w := tallies[candidate], tallies[winner]
		if c.count > w.count || (c.count == w.count && c.topPrio > w.topPrio) {
			winner = candidate
		}
	}

	wt := tallies[winner]
	display := winner
	if len(display) > voteReasonResponseLen {
		display = display[:voteReasonResponseLen]
	}
	return winner, fmt.Sprintf("Vote: %s (%d/%d agents: %s)",
		display, wt.count, len(responses), strings.Join(wt.roles, ", "))
}
