package agent

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/shayc/aimon/pkg/models"
)

// defaultAPIModel is the model used when neither the agent spec nor the
// config names one. Supervision calls are small and frequent, so the
// cheapest current model is the default.
const defaultAPIModel = anthropic.ModelClaude3_5Haiku20241022

// APIConfig contains settings for creating an APIInvoker.
type APIConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// Model is the default model when the agent spec has no override.
	Model string
}

// APIInvoker calls the Anthropic API directly instead of spawning the
// supervisor subprocess. It speaks the same single-line protocol.
type APIInvoker struct {
	client anthropic.Client
	model  anthropic.Model
	spec   models.AgentSpec
	system string
}

// NewAPIInvoker creates an API-backed invoker for one configured agent.
func NewAPIInvoker(spec models.AgentSpec, cfg APIConfig) (*APIInvoker, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}

	model := anthropic.Model(spec.Model)
	if model == "" {
		model = anthropic.Model(cfg.Model)
	}
	if model == "" {
		model = defaultAPIModel
	}

	return &APIInvoker{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		spec:   spec,
		system: RolePrompt(spec.Role),
	}, nil
}

// Invoke makes a single API call and normalizes the reply.
// Latency is measured end to end regardless of outcome.
func (a *APIInvoker) Invoke(ctx context.Context, input string, timeout time.Duration) models.AgentResponse {
	start := time.Now()
	resp := models.AgentResponse{
		AgentID: a.spec.ID,
		Role:    a.spec.Role,
		IsWait:  true,
	}

	if !a.spec.Enabled {
		resp.Error = "Agent disabled"
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: a.system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	})
	resp.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			resp.Error = fmt.Sprintf("Timeout after %ds", int(timeout.Seconds()))
		} else {
			resp.Error = err.Error()
		}
		return resp
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}

	stage, answer := ParseStructured(Sanitize(sb.String()))
	resp.StageHint = stage
	resp.Response = answer
	resp.IsWait = models.IsWaitResponse(answer)
	return resp
}

// Verify both invokers satisfy the interface at compile time.
var (
	_ Invoker = (*ProcessInvoker)(nil)
	_ Invoker = (*APIInvoker)(nil)
)
