package models

import "strings"

// WaitResponse is the sentinel reply meaning "take no action".
const WaitResponse = "WAIT"

// IsWaitResponse reports whether a raw agent reply means WAIT.
// An empty reply counts as WAIT.
func IsWaitResponse(s string) bool {
	return s == "" || strings.EqualFold(s, WaitResponse)
}

// AgentResponse is the outcome of one agent invocation. Failures are
// carried in Error rather than returned as Go errors, so a pipeline can
// treat an erroring agent exactly like a non-answer.
type AgentResponse struct {
	// AgentID identifies the configured agent that was invoked.
	AgentID string `json:"agent_id"`
	// Role is the agent's supervisor role.
	Role string `json:"role"`
	// Response is the agent's reply, empty on failure.
	Response string `json:"response"`
	// StageHint is the stage the agent reported via the STAGE= prefix.
	StageHint string `json:"stage_hint,omitempty"`
	// LatencyMS is the end-to-end invocation latency, measured on every
	// outcome including failures.
	LatencyMS int64 `json:"latency_ms"`
	// Error describes the failure mode, empty on success.
	Error string `json:"error,omitempty"`
	// IsWait is true when the reply is absent or equals WAIT.
	IsWait bool `json:"is_wait"`
}

// PipelineResult is the outcome of one pipeline execution.
// FinalResponse is never empty; it defaults to WAIT.
type PipelineResult struct {
	Responses     []AgentResponse `json:"responses"`
	FinalResponse string          `json:"final_response"`
	Reason        string          `json:"reason"`
	Timestamp     int64           `json:"timestamp"`
}
