package pipeline

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shayc/aimon/internal/agent"
	"github.com/shayc/aimon/pkg/models"
)

// stubInvoker returns a canned response and counts invocations. With
// block set it parks until the context is cancelled, standing in for a
// hung subprocess.
type stubInvoker struct {
	resp  models.AgentResponse
	calls int32
	block bool
}

func (s *stubInvoker) Invoke(ctx context.Context, input string, timeout time.Duration) models.AgentResponse {
	atomic.AddInt32(&s.calls, 1)
	if s.block {
		<-ctx.Done()
		return models.AgentResponse{
			AgentID: s.resp.AgentID,
			Role:    s.resp.Role,
			Error:   "Timeout after 1s",
			IsWait:  true,
		}
	}
	return s.resp
}

func (s *stubInvoker) callCount() int { return int(atomic.LoadInt32(&s.calls)) }

func answer(id, role, response string) models.AgentResponse {
	return models.AgentResponse{
		AgentID:  id,
		Role:     role,
		Response: response,
		IsWait:   models.IsWaitResponse(response),
	}
}

func failure(id, role, errMsg string) models.AgentResponse {
	return models.AgentResponse{AgentID: id, Role: role, Error: errMsg, IsWait: true}
}

// stubFactory hands out pre-built invokers by agent ID.
func stubFactory(invokers map[string]*stubInvoker) InvokerFactory {
	return func(spec models.AgentSpec) agent.Invoker {
		return invokers[spec.ID]
	}
}

func enabledAgent(id, role string, priority int) models.AgentSpec {
	return models.AgentSpec{ID: id, Role: role, Priority: priority, Enabled: true}
}

func TestSingleMode(t *testing.T) {
	inv := &stubInvoker{resp: answer("mon-1", "monitor", "git status")}
	p := New(models.PipelineSpec{
		Name:   "solo",
		Mode:   models.ModeSingle,
		Agents: []models.AgentSpec{enabledAgent("mon-1", "monitor", 50)},
	}, stubFactory(map[string]*stubInvoker{"mon-1": inv}), nil)

	result := p.Execute(context.Background(), "some output")

	if result.FinalResponse != "git status" {
		t.Errorf("FinalResponse = %q, want %q", result.FinalResponse, "git status")
	}
	if result.Reason != "Single agent: monitor" {
		t.Errorf("Reason = %q", result.Reason)
	}
	if len(result.Responses) != 1 {
		t.Errorf("Responses = %d, want 1", len(result.Responses))
	}
	if result.Timestamp == 0 {
		t.Error("Timestamp should be set")
	}
}

func TestSingleModeNoAgents(t *testing.T) {
	p := New(models.PipelineSpec{Mode: models.ModeSingle}, stubFactory(nil), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != models.WaitResponse {
		t.Errorf("FinalResponse = %q, want WAIT", result.FinalResponse)
	}
	if result.Reason != "No agents configured" {
		t.Errorf("Reason = %q", result.Reason)
	}
}

func TestSingleModeEmptyAnswerBecomesWait(t *testing.T) {
	inv := &stubInvoker{resp: failure("mon-1", "monitor", "Exit code: 1")}
	p := New(models.PipelineSpec{
		Mode:   models.ModeSingle,
		Agents: []models.AgentSpec{enabledAgent("mon-1", "monitor", 50)},
	}, stubFactory(map[string]*stubInvoker{"mon-1": inv}), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != models.WaitResponse {
		t.Errorf("FinalResponse = %q, want WAIT", result.FinalResponse)
	}
}

func TestSequentialFirstRealAnswerWins(t *testing.T) {
	invokers := map[string]*stubInvoker{
		"eng-1":  {resp: answer("eng-1", "senior-engineer", "WAIT")},
		"arch-1": {resp: answer("arch-1", "architect", "ls -la")},
		"mon-1":  {resp: answer("mon-1", "monitor", "never asked")},
	}
	p := New(models.PipelineSpec{
		Mode: models.ModeSequential,
		Agents: []models.AgentSpec{
			enabledAgent("eng-1", "senior-engineer", 100),
			enabledAgent("arch-1", "architect", 50),
			enabledAgent("mon-1", "monitor", 30),
		},
	}, stubFactory(invokers), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != "ls -la" {
		t.Errorf("FinalResponse = %q, want %q", result.FinalResponse, "ls -la")
	}
	if result.Reason != "Sequential winner: arch-1 (architect)" {
		t.Errorf("Reason = %q", result.Reason)
	}
	if len(result.Responses) != 2 {
		t.Errorf("Responses = %d, want 2", len(result.Responses))
	}
	if invokers["mon-1"].callCount() != 0 {
		t.Error("agents after the winner must not be invoked")
	}
}

func TestSequentialErrorDoesNotWin(t *testing.T) {
	invokers := map[string]*stubInvoker{
		"eng-1": {resp: failure("eng-1", "senior-engineer", "Exit code: 2")},
		"mon-1": {resp: answer("mon-1", "monitor", "npm test")},
	}
	p := New(models.PipelineSpec{
		Mode: models.ModeSequential,
		Agents: []models.AgentSpec{
			enabledAgent("eng-1", "senior-engineer", 100),
			enabledAgent("mon-1", "monitor", 30),
		},
	}, stubFactory(invokers), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != "npm test" {
		t.Errorf("FinalResponse = %q, want %q", result.FinalResponse, "npm test")
	}
}

func TestSequentialAllWait(t *testing.T) {
	invokers := map[string]*stubInvoker{
		"a": {resp: answer("a", "monitor", "WAIT")},
		"b": {resp: answer("b", "architect", "WAIT")},
	}
	p := New(models.PipelineSpec{
		Mode: models.ModeSequential,
		Agents: []models.AgentSpec{
			enabledAgent("a", "monitor", 50),
			enabledAgent("b", "architect", 50),
		},
	}, stubFactory(invokers), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != models.WaitResponse {
		t.Errorf("FinalResponse = %q, want WAIT", result.FinalResponse)
	}
	if result.Reason != "All agents returned WAIT" {
		t.Errorf("Reason = %q", result.Reason)
	}
}

func TestSequentialSkipsDisabled(t *testing.T) {
	invokers := map[string]*stubInvoker{
		"off": {resp: answer("off", "monitor", "should not run")},
		"on":  {resp: answer("on", "architect", "go vet ./...")},
	}
	disabled := enabledAgent("off", "monitor", 50)
	disabled.Enabled = false
	p := New(models.PipelineSpec{
		Mode:   models.ModeSequential,
		Agents: []models.AgentSpec{disabled, enabledAgent("on", "architect", 50)},
	}, stubFactory(invokers), nil)

	result := p.Execute(context.Background(), "output")

	if invokers["off"].callCount() != 0 {
		t.Error("disabled agents must be skipped")
	}
	if result.FinalResponse != "go vet ./..." {
		t.Errorf("FinalResponse = %q", result.FinalResponse)
	}
}

func TestVoteMajorityWins(t *testing.T) {
	invokers := map[string]*stubInvoker{
		"arch-1": {resp: answer("arch-1", "architect", "fix the bug")},
		"eng-1":  {resp: answer("eng-1", "senior-engineer", "fix the bug")},
		"test-1": {resp: answer("test-1", "test-manager", "run tests")},
	}
	p := New(models.PipelineSpec{
		Mode: models.ModeVote,
		Agents: []models.AgentSpec{
			enabledAgent("arch-1", "architect", 80),
			enabledAgent("eng-1", "senior-engineer", 70),
			enabledAgent("test-1", "test-manager", 60),
		},
	}, stubFactory(invokers), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != "fix the bug" {
		t.Errorf("FinalResponse = %q, want %q", result.FinalResponse, "fix the bug")
	}
	if !strings.Contains(result.Reason, "Vote: fix the bug (2/3 agents:") {
		t.Errorf("Reason = %q", result.Reason)
	}
	if len(result.Responses) != 3 {
		t.Errorf("Responses = %d, want 3", len(result.Responses))
	}
}

func TestVoteNoValidResponses(t *testing.T) {
	invokers := map[string]*stubInvoker{
		"a": {resp: answer("a", "monitor", "WAIT")},
		"b": {resp: answer("b", "architect", "WAIT")},
		"c": {resp: failure("c", "test-manager", "Exit code: 1")},
	}
	p := New(models.PipelineSpec{
		Mode: models.ModeVote,
		Agents: []models.AgentSpec{
			enabledAgent("a", "monitor", 50),
			enabledAgent("b", "architect", 50),
			enabledAgent("c", "test-manager", 50),
		},
	}, stubFactory(invokers), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != models.WaitResponse {
		t.Errorf("FinalResponse = %q, want WAIT", result.FinalResponse)
	}
	if result.Reason != "No valid responses (WAIT:3, Error:1)" {
		t.Errorf("Reason = %q", result.Reason)
	}
}

func TestVoteTieBrokenByPriority(t *testing.T) {
	invokers := map[string]*stubInvoker{
		"low":  {resp: answer("low", "monitor", "option a")},
		"high": {resp: answer("high", "architect", "option b")},
	}
	p := New(models.PipelineSpec{
		Mode: models.ModeVote,
		Agents: []models.AgentSpec{
			enabledAgent("low", "monitor", 30),
			enabledAgent("high", "architect", 90),
		},
	}, stubFactory(invokers), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != "option b" {
		t.Errorf("FinalResponse = %q, want the higher-priority agent's answer", result.FinalResponse)
	}
}

func TestVoteNoEnabledAgents(t *testing.T) {
	off := enabledAgent("a", "monitor", 50)
	off.Enabled = false
	p := New(models.PipelineSpec{
		Mode:   models.ModeVote,
		Agents: []models.AgentSpec{off},
	}, stubFactory(map[string]*stubInvoker{"a": {}}), nil)

	result := p.Execute(context.Background(), "output")

	if result.Reason != "No enabled agents" {
		t.Errorf("Reason = %q", result.Reason)
	}
}

func TestVoteReasonTruncatesLongResponse(t *testing.T) {
	long := strings.Repeat("x", 80)
	invokers := map[string]*stubInvoker{
		"a": {resp: answer("a", "monitor", long)},
	}
	p := New(models.PipelineSpec{
		Mode:   models.ModeVote,
		Agents: []models.AgentSpec{enabledAgent("a", "monitor", 50)},
	}, stubFactory(invokers), nil)

	result := p.Execute(context.Background(), "output")

	if result.FinalResponse != long {
		t.Error("FinalResponse must carry the full answer")
	}
	if !strings.Contains(result.Reason, strings.Repeat("x", 30)+" (1/1") {
		t.Errorf("Reason = %q, want the answer truncated to 30 chars", result.Reason)
	}
}

func TestVoteDropsStragglers(t *testing.T) {
	invokers := map[string]*stubInvoker{
		"fast": {resp: answer("fast", "monitor", "quick answer")},
		"slow": {resp: answer("slow", "architect", ""), block: true},
	}
	p := New(models.PipelineSpec{
		Mode:             models.ModeVote,
		TimeoutPerAgentS: 1,
		Agents: []models.AgentSpec{
			enabledAgent("fast", "monitor", 50),
			enabledAgent("slow", "architect", 50),
		},
	}, stubFactory(invokers), nil)
	p.strategy.(*voteStrategy).grace = 100 * time.Millisecond

	start := time.Now()
	result := p.Execute(context.Background(), "output")
	elapsed := time.Since(start)

	if elapsed > 3*time.Second {
		t.Fatalf("vote took %s, the batch deadline did not fire", elapsed)
	}
	if result.FinalResponse != "quick answer" {
		t.Errorf("FinalResponse = %q, want the fast agent's answer", result.FinalResponse)
	}
	if len(result.Responses) != 1 {
		t.Errorf("Responses = %d, want the straggler dropped", len(result.Responses))
	}
}
