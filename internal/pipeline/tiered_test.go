package pipeline

import (
	"context"
	"testing"

	"github.com/shayc/aimon/internal/tokenopt"
	"github.com/shayc/aimon/pkg/models"
)

func newTieredPipeline(inv *stubInvoker) (*Pipeline, *tokenopt.OptimizationContext) {
	opt := tokenopt.NewOptimizationContext()
	p := New(models.PipelineSpec{
		Mode:   models.ModeTiered,
		Agents: []models.AgentSpec{enabledAgent("mon-1", "monitor", 50)},
	}, stubFactory(map[string]*stubInvoker{"mon-1": inv}), opt)
	return p, opt
}

func TestTieredQuickClassification(t *testing.T) {
	inv := &stubInvoker{resp: answer("mon-1", "monitor", "should not run")}
	p, _ := newTieredPipeline(inv)

	result := p.Execute(context.Background(), "Compiling 42 files...")

	if result.FinalResponse != models.WaitResponse {
		t.Errorf("FinalResponse = %q, want WAIT", result.FinalResponse)
	}
	if result.Reason != "Tiered: quick classification (no LLM call)" {
		t.Errorf("Reason = %q", result.Reason)
	}
	if inv.callCount() != 0 {
		t.Error("a quick classification must not invoke the agent")
	}
}

func TestTieredCacheHit(t *testing.T) {
	inv := &stubInvoker{resp: answer("mon-1", "monitor", "should not run")}
	p, opt := newTieredPipeline(inv)

	uncertain := "completely unrecognizable session output"
	opt.Cache.Set(uncertain, "monitor", "cat README.md", "reviewing")

	result := p.Execute(context.Background(), uncertain)

	if result.FinalResponse != "cat README.md" {
		t.Errorf("FinalResponse = %q, want the cached answer", result.FinalResponse)
	}
	if result.Reason != "Tiered: cache hit" {
		t.Errorf("Reason = %q", result.Reason)
	}
	if inv.callCount() != 0 {
		t.Error("a cache hit must not invoke the agent")
	}
}

func TestTieredWritesThrough(t *testing.T) {
	inv := &stubInvoker{resp: answer("mon-1", "monitor", "git diff")}
	p, _ := newTieredPipeline(inv)

	uncertain := "completely unrecognizable session output"

	first := p.Execute(context.Background(), uncertain)
	if first.FinalResponse != "git diff" {
		t.Fatalf("FinalResponse = %q, want %q", first.FinalResponse, "git diff")
	}
	if inv.callCount() != 1 {
		t.Fatalf("calls = %d, want 1", inv.callCount())
	}

	second := p.Execute(context.Background(), uncertain)
	if second.Reason != "Tiered: cache hit" {
		t.Errorf("Reason = %q, want a cache hit on the repeat", second.Reason)
	}
	if inv.callCount() != 1 {
		t.Error("the repeat must be served from cache")
	}
}

func TestTieredErrorNotCached(t *testing.T) {
	inv := &stubInvoker{resp: failure("mon-1", "monitor", "Exit code: 1")}
	p, _ := newTieredPipeline(inv)

	uncertain := "completely unrecognizable session output"

	p.Execute(context.Background(), uncertain)
	p.Execute(context.Background(), uncertain)

	if inv.callCount() != 2 {
		t.Errorf("calls = %d, failed invocations must not be cached", inv.callCount())
	}
}

func TestTieredWithoutOptimizationFallsBackToSingle(t *testing.T) {
	inv := &stubInvoker{resp: answer("mon-1", "monitor", "git diff")}
	p := New(models.PipelineSpec{
		Mode:   models.ModeTiered,
		Agents: []models.AgentSpec{enabledAgent("mon-1", "monitor", 50)},
	}, stubFactory(map[string]*stubInvoker{"mon-1": inv}), nil)

	result := p.Execute(context.Background(), "Compiling 42 files...")

	if result.FinalResponse != "git diff" {
		t.Errorf("FinalResponse = %q, want the agent's answer", result.FinalResponse)
	}
	if inv.callCount() != 1 {
		t.Error("without optimization the agent must be invoked")
	}
}
