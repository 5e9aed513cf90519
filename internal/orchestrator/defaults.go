package orchestrator

import "github.com/shayc/aimon/pkg/models"

// DefaultPipelines returns the built-in pipeline set used when no
// configuration file exists or it fails to parse.
func DefaultPipelines() map[string]models.PipelineSpec {
	return map[string]models.PipelineSpec{
		"default": {
			Name: "single-monitor",
			Mode: models.ModeSingle,
			Agents: []models.AgentSpec{
				{ID: "monitor-1", Role: "monitor", Priority: 50, Enabled: true},
			},
			TimeoutPerAgentS: 15,
		},
		"tiered": {
			Name: "tiered-monitor",
			Mode: models.ModeTiered,
			Agents: []models.AgentSpec{
				{ID: "monitor-1", Role: "monitor", Priority: 50, Enabled: true},
			},
			TimeoutPerAgentS: 15,
		},
		"vote": {
			Name: "multi-vote",
			Mode: models.ModeVote,
			Agents: []models.AgentSpec{
				{ID: "arch-1", Role: "architect", Priority: 80, Enabled: true},
				{ID: "eng-1", Role: "senior-engineer", Priority: 70, Enabled: true},
				{ID: "test-1", Role: "test-manager", Priority: 60, Enabled: true},
			},
			TimeoutPerAgentS: 15,
		},
		"sequential": {
			Name: "sequential-fallback",
			Mode: models.ModeSequential,
			Agents: []models.AgentSpec{
				{ID: "eng-1", Role: "senior-engineer", Priority: 100, Enabled: true},
				{ID: "arch-1", Role: "architect", Priority: 50, Enabled: true},
				{ID: "mon-1", Role: "monitor", Priority: 30, Enabled: true},
			},
			TimeoutPerAgentS: 15,
		},
	}
}
