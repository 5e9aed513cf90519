// Package agent invokes external decision agents and normalizes their
// replies into AgentResponse values. Invocation never returns a Go error:
// every failure mode is encoded into the response's Error field so the
// pipeline can treat an erroring agent exactly like a non-answer.
package agent

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shayc/aimon/pkg/models"
)

// Invoker runs one decision request against an external agent.
type Invoker interface {
	// Invoke sends input to the agent and waits up to timeout for a
	// reply. Failures are reported via AgentResponse.Error.
	Invoke(ctx context.Context, input string, timeout time.Duration) models.AgentResponse
}

// ProcessInvoker spawns the supervisor subprocess once per invocation.
// The input is written to the child's stdin as UTF-8 and the stream is
// closed; the child must exit 0 and write its single-line answer to
// stdout, optionally prefixed STAGE=<stage>;CMD=<command>.
type ProcessInvoker struct {
	spec     models.AgentSpec
	command  string
	baseArgs []string
}

// NewProcessInvoker creates an invoker for one configured agent.
// baseArgs are passed to the command before the per-agent flags.
func NewProcessInvoker(spec models.AgentSpec, command string, baseArgs ...string) *ProcessInvoker {
	return &ProcessInvoker{
		spec:     spec,
		command:  command,
		baseArgs: append([]string{}, baseArgs...),
	}
}

// Invoke runs the supervisor subprocess with the agent's role and model.
// Latency is measured end to end regardless of outcome.
func (p *ProcessInvoker) Invoke(ctx context.Context, input string, timeout time.Duration) models.AgentResponse {
	start := time.Now()
	resp := models.AgentResponse{
		AgentID: p.spec.ID,
		Role:    p.spec.Role,
		IsWait:  true,
	}

	if !p.spec.Enabled {
		resp.Error = "Agent disabled"
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{}, p.baseArgs...)
	args = append(args, "--role", p.spec.Role)
	if p.spec.Model != "" {
		args = append(args, "--model", p.spec.Model)
	}

	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	resp.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			// CommandContext already killed the process.
			resp.Error = fmt.Sprintf("Timeout after %ds", int(timeout.Seconds()))
		} else if exitErr, ok := err.(*exec.ExitError); ok {
			resp.Error = fmt.Sprintf("Exit code: %d", exitErr.ExitCode())
		} else {
			resp.Error = err.Error()
		}
		return resp
	}

	stage, answer := ParseStructured(strings.TrimSpace(stdout.String()))
	resp.StageHint = stage
	resp.Response = answer
	resp.IsWait = models.IsWaitResponse(answer)
	return resp
}
