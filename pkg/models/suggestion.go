// Package models defines the shared value types for the aimon decision
// pipeline: agent responses, pipeline configurations, suggestions, and
// arbitrated decisions.
package models

// SuggestionSource identifies the advisory component that produced a suggestion.
type SuggestionSource string

const (
	// SourcePattern is the pattern learner.
	SourcePattern SuggestionSource = "pattern"
	// SourceLLM is a language-model agent.
	SourceLLM SuggestionSource = "llm"
	// SourcePlanner is the plan generator.
	SourcePlanner SuggestionSource = "planner"
	// SourceHuman is a human operator.
	SourceHuman SuggestionSource = "human"
	// SourceProactive is the proactive engine.
	SourceProactive SuggestionSource = "proactive"
	// SourceStrategy is the strategy optimizer.
	SourceStrategy SuggestionSource = "strategy"
	// SourceHeuristic is a rule-based heuristic.
	SourceHeuristic SuggestionSource = "heuristic"
)

// Valid returns true if the source is a known value.
func (s SuggestionSource) Valid() bool {
	switch s {
	case SourcePattern, SourceLLM, SourcePlanner, SourceHuman,
		SourceProactive, SourceStrategy, SourceHeuristic:
		return true
	default:
		return false
	}
}

// ParseSource coerces a raw string to a SuggestionSource.
// Unknown values fall back to SourceHeuristic rather than failing,
// so one malformed suggestion cannot reject a whole batch.
func ParseSource(raw string) SuggestionSource {
	s := SuggestionSource(raw)
	if !s.Valid() {
		return SourceHeuristic
	}
	return s
}

// ActionType is the kind of action a suggestion or decision proposes.
type ActionType string

const (
	// ActionWait takes no action and waits for more output.
	ActionWait ActionType = "wait"
	// ActionNudge sends a gentle reminder to the monitored session.
	ActionNudge ActionType = "nudge"
	// ActionCommand sends a concrete command to the monitored session.
	ActionCommand ActionType = "command"
	// ActionAsk asks the human operator a question.
	ActionAsk ActionType = "ask"
	// ActionNotify sends a notification without intervening.
	ActionNotify ActionType = "notify"
	// ActionEscalate hands the situation to a human for review.
	ActionEscalate ActionType = "escalate"
	// ActionAbort stops the monitored session.
	ActionAbort ActionType = "abort"
)

// Valid returns true if the action type is a known value.
func (a ActionType) Valid() bool {
	switch a {
	case ActionWait, ActionNudge, ActionCommand, ActionAsk,
		ActionNotify, ActionEscalate, ActionAbort:
		return true
	default:
		return false
	}
}

// ParseAction coerces a raw string to an ActionType.
// Unknown values fall back to ActionWait, the safe default.
func ParseAction(raw string) ActionType {
	a := ActionType(raw)
	if !a.Valid() {
		return ActionWait
	}
	return a
}

// ConflictType classifies a disagreement detected between suggestions.
type ConflictType string

const (
	// ConflictActionMismatch means contradictory actions were suggested
	// (wait vs command).
	ConflictActionMismatch ConflictType = "action_mismatch"
	// ConflictTimingConflict means suggestions disagree on when to act.
	ConflictTimingConflict ConflictType = "timing_conflict"
	// ConflictSafetyOverride means a suggestion raised a safety concern.
	ConflictSafetyOverride ConflictType = "safety_override"
	// ConflictConfidenceGap means the top suggestions differ widely in
	// confidence.
	ConflictConfidenceGap ConflictType = "confidence_gap"
)

// Suggestion is one candidate action offered to the arbiter.
// Suggestions are ephemeral inputs to a single arbitration call.
type Suggestion struct {
	// Source is the advisory component that produced this suggestion.
	Source SuggestionSource `json:"source"`
	// ActionType is the proposed action.
	ActionType ActionType `json:"action_type"`
	// Content is the action payload (e.g. the command to send).
	Content string `json:"content"`
	// Confidence is the source's confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Priority boosts ranking; higher is more important.
	Priority int `json:"priority"`
	// SafetyScore is 1.0 for safe, 0.0 for dangerous.
	SafetyScore float64 `json:"safety_score"`
	// Reasoning is the source's rationale, if any.
	Reasoning string `json:"reasoning,omitempty"`
	// Metadata carries source-specific extras.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Conflict describes one detected disagreement between suggestions.
// Conflicts are informational; they never block selection.
type Conflict struct {
	Type    ConflictType `json:"type"`
	Details string       `json:"details"`
	Sources []string     `json:"sources"`
}
