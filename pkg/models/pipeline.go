package models

import (
	"encoding/json"
	"time"
)

// Mode selects how a pipeline executes its agents.
type Mode string

const (
	// ModeSingle invokes only the first agent.
	ModeSingle Mode = "single"
	// ModeSequential invokes agents in list order until one answers.
	ModeSequential Mode = "sequential"
	// ModeVote invokes all enabled agents in parallel and tallies replies.
	ModeVote Mode = "vote"
	// ModeTiered tries the quick classifier and cache before paying for
	// a full agent call.
	ModeTiered Mode = "tiered"
)

// Valid returns true if the mode is a known value.
func (m Mode) Valid() bool {
	switch m {
	case ModeSingle, ModeSequential, ModeVote, ModeTiered:
		return true
	default:
		return false
	}
}

// ParseMode coerces a raw string to a Mode. Empty or unknown values fall
// back to ModeSingle.
func ParseMode(raw string) Mode {
	m := Mode(raw)
	if !m.Valid() {
		return ModeSingle
	}
	return m
}

// AgentSpec is the immutable configuration of one agent in a pipeline.
type AgentSpec struct {
	// ID is the unique identifier within the pipeline.
	ID string `json:"id"`
	// Role selects the supervisor role prompt.
	Role string `json:"role"`
	// Model optionally overrides the default model.
	Model string `json:"model,omitempty"`
	// Priority breaks vote ties; higher wins.
	Priority int `json:"priority"`
	// Enabled excludes the agent from execution when false.
	Enabled bool `json:"enabled"`
}

// UnmarshalJSON applies the configuration defaults: agents are enabled
// unless the document says otherwise, and carry priority 50.
func (a *AgentSpec) UnmarshalJSON(data []byte) error {
	type raw struct {
		ID       string `json:"id"`
		Role     string `json:"role"`
		Model    string `json:"model"`
		Priority *int   `json:"priority"`
		Enabled  *bool  `json:"enabled"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	a.ID = r.ID
	if a.ID == "" {
		a.ID = "agent-1"
	}
	a.Role = r.Role
	if a.Role == "" {
		a.Role = "monitor"
	}
	a.Model = r.Model
	a.Priority = 50
	if r.Priority != nil {
		a.Priority = *r.Priority
	}
	a.Enabled = true
	if r.Enabled != nil {
		a.Enabled = *r.Enabled
	}
	return nil
}

// PipelineSpec is one named pipeline configuration: an execution mode,
// an ordered agent list, and a per-agent timeout.
type PipelineSpec struct {
	Name             string      `json:"name"`
	Mode             Mode        `json:"mode"`
	Agents           []AgentSpec `json:"agents"`
	TimeoutPerAgentS int         `json:"timeout_per_agent_s"`
}

// Timeout returns the per-agent timeout as a duration.
// A missing value defaults to 15 seconds.
func (p PipelineSpec) Timeout() time.Duration {
	if p.TimeoutPerAgentS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(p.TimeoutPerAgentS) * time.Second
}

// EnabledAgents returns the indices of enabled agents in list order.
func (p PipelineSpec) EnabledAgents() []int {
	var idx []int
	for i, a := range p.Agents {
		if a.Enabled {
			idx = append(idx, i)
		}
	}
	return idx
}
