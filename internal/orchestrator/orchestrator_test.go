package orchestrator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shayc/aimon/internal/agent"
	"github.com/shayc/aimon/pkg/models"
)

// cannedInvoker answers every invocation with the same response.
type cannedInvoker struct {
	resp models.AgentResponse
}

func (c cannedInvoker) Invoke(ctx context.Context, input string, timeout time.Duration) models.AgentResponse {
	return c.resp
}

func cannedFactory(response string) func(models.AgentSpec) agent.Invoker {
	return func(spec models.AgentSpec) agent.Invoker {
		return cannedInvoker{resp: models.AgentResponse{
			AgentID:  spec.ID,
			Role:     spec.Role,
			Response: response,
			IsWait:   models.IsWaitResponse(response),
		}}
	}
}

func TestNewFallsBackToDefaults(t *testing.T) {
	o := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.json"),
		Factory:    cannedFactory("WAIT"),
	})

	infos := o.List()
	if len(infos) != 4 {
		t.Fatalf("List = %d pipelines, want the 4 built-ins", len(infos))
	}
	keys := map[string]bool{}
	for _, info := range infos {
		keys[info.Key] = true
	}
	for _, want := range []string{"default", "tiered", "vote", "sequential"} {
		if !keys[want] {
			t.Errorf("missing built-in pipeline %q", want)
		}
	}
}

func TestNewFallsBackOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipelines.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	o := New(Options{ConfigPath: path, Factory: cannedFactory("WAIT")})
	if len(o.List()) != 4 {
		t.Error("a malformed config must fall back to the built-ins")
	}
}

func TestLoadAppliesAgentDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipelines.json")
	doc := `{
  "custom": {
    "name": "custom",
    "mode": "sequential",
    "agents": [{"id": "a-1", "role": "architect"}],
    "timeout_per_agent_s": 5
  }
}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	o := New(Options{ConfigPath: path, Factory: cannedFactory("WAIT")})

	spec, ok := o.Select("custom", "")
	if !ok {
		t.Fatal("custom pipeline not loaded")
	}
	if len(spec.Agents) != 1 {
		t.Fatalf("agents = %d, want 1", len(spec.Agents))
	}
	a := spec.Agents[0]
	if !a.Enabled || a.Priority != 50 {
		t.Errorf("agent defaults not applied: enabled=%v priority=%d", a.Enabled, a.Priority)
	}
}

func TestSelect(t *testing.T) {
	o := New(Options{DefaultPipeline: "vote", Factory: cannedFactory("WAIT")})

	tests := []struct {
		name     string
		pipeline string
		stage    string
		wantMode models.Mode
	}{
		{"empty name uses default", "", "", models.ModeVote},
		{"explicit name", "sequential", "", models.ModeSequential},
		{"auto maps reviewing to vote", "auto", "reviewing", models.ModeVote},
		{"auto maps testing to sequential", "auto", "testing", models.ModeSequential},
		{"auto with unknown stage", "auto", "coding", models.ModeSingle},
		{"unknown name falls back to default entry", "no-such", "", models.ModeSingle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := o.Select(tt.pipeline, tt.stage)
			if !ok {
				t.Fatal("Select returned no pipeline")
			}
			if spec.Mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", spec.Mode, tt.wantMode)
			}
		})
	}
}

func TestRun(t *testing.T) {
	o := New(Options{
		DefaultPipeline: "default",
		Factory:         cannedFactory("git status"),
	})

	result := o.Run(context.Background(), "some output", "", "")

	if result.FinalResponse != "git status" {
		t.Errorf("FinalResponse = %q", result.FinalResponse)
	}
	if result.Reason != "Single agent: monitor" {
		t.Errorf("Reason = %q", result.Reason)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pipelines.json")
	o := New(Options{ConfigPath: path, Factory: cannedFactory("WAIT")})

	if err := o.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	var specs map[string]models.PipelineSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		t.Fatalf("parse saved config: %v", err)
	}

	reloaded := New(Options{ConfigPath: path, Factory: cannedFactory("WAIT")})
	if len(reloaded.List()) != len(o.List()) {
		t.Error("round-tripped registry differs in size")
	}
	vote, ok := reloaded.Select("vote", "")
	if !ok || len(vote.Agents) != 3 {
		t.Errorf("vote pipeline did not survive the round trip: %+v", vote)
	}
	if vote.Agents[0].Priority != 80 {
		t.Errorf("priority = %d, want 80", vote.Agents[0].Priority)
	}
}

func TestReloadPicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipelines.json")
	o := New(Options{ConfigPath: path, Factory: cannedFactory("WAIT")})
	if len(o.List()) != 4 {
		t.Fatal("expected built-ins before the file exists")
	}

	doc := `{"only": {"name": "only", "mode": "single", "agents": [], "timeout_per_agent_s": 15}}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	o.Reload()

	infos := o.List()
	if len(infos) != 1 || infos[0].Key != "only" {
		t.Errorf("List after reload = %+v", infos)
	}
}
