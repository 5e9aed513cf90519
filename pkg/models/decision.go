package models

// Decision is the single arbitrated, audited action for a session at a
// point in time. It is created by arbitration and mutated only by an
// override or an outcome record.
type Decision struct {
	// ID is the short unique identifier for this decision.
	ID string `json:"decision_id"`
	// SessionID identifies the monitored session the decision applies to.
	SessionID string `json:"session_id"`
	// ActionType is the arbitrated action.
	ActionType ActionType `json:"action_type"`
	// Content is the action payload.
	Content string `json:"action_content"`
	// Confidence is the final ranked confidence of the winning suggestion.
	Confidence float64 `json:"confidence"`
	// Explanation is a human-readable account of why this action won.
	Explanation string `json:"explanation"`
	// ContributingSources names the sources of the top-ranked survivors.
	ContributingSources []string `json:"contributing_sources"`
	// ConflictsResolved lists the conflict types detected during arbitration.
	ConflictsResolved []string `json:"conflicts_resolved"`
	// SafetyVerified is true when every contributing suggestion passed
	// the safety gate.
	SafetyVerified bool `json:"safety_verified"`
	// Overridden is true once a human replaced the arbitrated action.
	Overridden bool `json:"overridden"`
	// OverrideReason records why the decision was overridden.
	OverrideReason string `json:"override_reason,omitempty"`
	// CreatedAt is the unix timestamp of arbitration.
	CreatedAt int64 `json:"created_at"`
	// ExecutedAt is the unix timestamp the action was carried out, if known.
	ExecutedAt *int64 `json:"executed_at,omitempty"`
	// Outcome is "success", "failure" or "ignored" once recorded.
	Outcome string `json:"outcome,omitempty"`
}

// ArbitrationResult is the full outcome of one arbitration call.
type ArbitrationResult struct {
	Decision            Decision   `json:"decision"`
	SuggestionsReceived int        `json:"suggestions_received"`
	ConflictsDetected   []Conflict `json:"conflicts_detected"`
	SelectionReasoning  string     `json:"selection_reasoning"`
}
