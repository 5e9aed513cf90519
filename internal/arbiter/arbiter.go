package arbiter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shayc/aimon/pkg/models"
)

// sourcePriorities weighs how much each advisory source is trusted.
// Human input always outranks automation.
var sourcePriorities = map[models.SuggestionSource]int{
	models.SourceHuman:     100,
	models.SourceLLM:       80,
	models.SourceProactive: 70,
	models.SourceStrategy:  60,
	models.SourcePlanner:   50,
	models.SourcePattern:   40,
	models.SourceHeuristic: 30,
}

// safetyCriticalActions require extra confidence to pass the safety
// gate.
var safetyCriticalActions = map[models.ActionType]bool{
	models.ActionCommand:  true,
	models.ActionAbort:    true,
	models.ActionEscalate: true,
}

// dangerousPatterns flag content that needs an explicit safety score to
// go through.
var dangerousPatterns = []string{
	"rm -rf", "delete", "drop", "force push",
	"sudo", "production", "master", "main branch",
}

// Arbiter merges suggestions into decisions and persists every one.
type Arbiter struct {
	store DecisionStore
	now   func() int64
	newID func() string
}

// New creates an arbiter over the given store.
func New(store DecisionStore) *Arbiter {
	return &Arbiter{
		store: store,
		now:   func() int64 { return time.Now().Unix() },
		newID: func() string { return uuid.New().String()[:8] },
	}
}

// Arbitrate merges the suggestions for one session into a single
// decision. It never fails on suggestion content: an empty batch
// defaults to wait and an all-unsafe batch escalates. Only store
// errors propagate.
func (a *Arbiter) Arbitrate(sessionID string, suggestions []models.Suggestion) (models.ArbitrationResult, error) {
	if len(suggestions) == 0 {
		decision := models.Decision{
			ID:                  a.newID(),
			SessionID:           sessionID,
			ActionType:          models.ActionWait,
			Confidence:          0.5,
			Explanation:         "No suggestions provided, defaulting to wait",
			ContributingSources: []string{},
			ConflictsResolved:   []string{},
			SafetyVerified:      true,
			CreatedAt:           a.now(),
		}
		if err := a.store.SaveDecision(decision); err != nil {
			return models.ArbitrationResult{}, err
		}
		return models.ArbitrationResult{
			Decision:            decision,
			SuggestionsReceived: 0,
			ConflictsDetected:   []models.Conflict{},
			SelectionReasoning:  "No suggestions provided, defaulting to wait",
		}, nil
	}

	conflicts := detectConflicts(suggestions)
	ranked := resolveAndRank(suggestions)
	safe := verifySafety(ranked)

	conflictTypes := make([]string, len(conflicts))
	for i, c := range conflicts {
		conflictTypes[i] = string(c.Type)
	}

	if len(safe) == 0 {
		decision := models.Decision{
			ID:                  a.newID(),
			SessionID:           sessionID,
			ActionType:          models.ActionEscalate,
			Content:             "Safety verification failed - manual review required",
			Confidence:          0.9,
			Explanation:         fmt.Sprintf("Rejected %d unsafe suggestions, escalating for review", len(ranked)),
			ContributingSources: []string{},
			ConflictsResolved:   []string{},
			SafetyVerified:      true,
			CreatedAt:           a.now(),
		}
		if err := a.store.SaveDecision(decision); err != nil {
			return models.ArbitrationResult{}, err
		}
		return models.ArbitrationResult{
			Decision:            decision,
			SuggestionsReceived: len(suggestions),
			ConflictsDetected:   conflicts,
			SelectionReasoning:  "All suggestions failed safety verification, using safe fallback",
		}, nil
	}

	best := safe[0]
	contributing := make([]string, 0, 3)
	for _, s := range safe {
		if len(contributing) == 3 {
			break
		}
		contributing = append(contributing, string(s.Source))
	}

	decision := models.Decision{
		ID:                  a.newID(),
		SessionID:           sessionID,
		ActionType:          best.ActionType,
		Content:             best.Content,
		Confidence:          best.Confidence,
		Explanation:         explain(best, suggestions, conflictTypes),
		ContributingSources: contributing,
		ConflictsResolved:   conflictTypes,
		SafetyVerified:      true,
		CreatedAt:           a.now(),
	}

	if err := a.store.SaveDecision(decision); err != nil {
		return models.ArbitrationResult{}, err
	}
	if err := a.store.AppendAudit(decision.ID, "created", map[string]any{
		"suggestions_count": len(suggestions),
		"conflicts_count":   len(conflicts),
	}); err != nil {
		return models.ArbitrationResult{}, err
	}

	return models.ArbitrationResult{
		Decision:            decision,
		SuggestionsReceived: len(suggestions),
		ConflictsDetected:   conflicts,
		SelectionReasoning:  selectionReasoning(best, safe),
	}, nil
}

// detectConflicts reports disagreements between suggestions. Conflicts
// are informational; they never block selection.
func detectConflicts(suggestions []models.Suggestion) []models.Conflict {
	conflicts := []models.Conflict{}

	hasWait, hasCommand := false, false
	for _, s := range suggestions {
		switch s.ActionType {
		case models.ActionWait:
			hasWait = true
		case models.ActionCommand:
			hasCommand = true
		}
	}
	if hasWait && hasCommand {
		var sources []string
		for _, s := range suggestions {
			if s.ActionType == models.ActionWait || s.ActionType == models.ActionCommand {
				sources = append(sources, string(s.Source))
			}
		}
		conflicts = append(conflicts, models.Conflict{
			Type:    models.ConflictActionMismatch,
			Details: "Conflict between WAIT and COMMAND suggestions",
			Sources: sources,
		})
	}

	if len(suggestions) >= 2 {
		byConf := make([]models.Suggestion, len(suggestions))
		copy(byConf, suggestions)
		sort.SliceStable(byConf, func(i, j int) bool {
			return byConf[i].Confidence > byConf[j].Confidence
		})
		if gap := byConf[0].Confidence - byConf[1].Confidence; gap > 0.4 {
			conflicts = append(conflicts, models.Conflict{
				Type: models.ConflictConfidenceGap,
				Details: fmt.Sprintf("Large confidence gap: %.2f vs %.2f",
					byConf[0].Confidence, byConf[1].Confidence),
				Sources: []string{string(byConf[0].Source), string(byConf[1].Source)},
			})
		}
	}

	for _, s := range suggestions {
		if s.SafetyScore < 0.5 {
			conflicts = append(conflicts, models.Conflict{
				Type: models.ConflictSafetyOverride,
				Details: fmt.Sprintf("Safety concern from %s: score %.2f",
					s.Source, s.SafetyScore),
				Sources: []string{string(s.Source)},
			})
		}
	}

	return conflicts
}

// resolveAndRank scores every suggestion and returns them sorted best
// first. Each returned suggestion carries its final score as its
// confidence.
func resolveAndRank(suggestions []models.Suggestion) []models.Suggestion {
	ranked := make([]models.Suggestion, len(suggestions))
	copy(ranked, suggestions)

	for i, s := range ranked {
		weight, ok := sourcePriorities[s.Source]
		if !ok {
			weight = 50
		}
		score := s.Confidence*0.5 + float64(weight)/100*0.3 + s.SafetyScore*0.2
		score += float64(s.Priority) * 0.05
		if score > 1.0 {
			score = 1.0
		}
		ranked[i].Confidence = score
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// verifySafety drops suggestions that fail the safety gate.
func verifySafety(ranked []models.Suggestion) []models.Suggestion {
	safe := make([]models.Suggestion, 0, len(ranked))
	for _, s := range ranked {
		if isSafe(s) {
			safe = append(safe, s)
		}
	}
	return safe
}

// isSafe applies the three safety rules: an explicit low safety score
// rejects outright, dangerous content needs a high safety score to
// pass, and safety-critical actions need high post-ranking confidence.
func isSafe(s models.Suggestion) bool {
	if s.SafetyScore < 0.3 {
		return false
	}

	content := strings.ToLower(s.Content)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(content, pattern) {
			if s.SafetyScore < 0.8 {
				return false
			}
		}
	}

	if safetyCriticalActions[s.ActionType] && s.Confidence < 0.6 {
		return false
	}

	return true
}

// explain composes the decision's human-readable explanation.
func explain(selected models.Suggestion, all []models.Suggestion, conflictTypes []string) string {
	parts := []string{
		fmt.Sprintf("Selected %s from %s", selected.ActionType, selected.Source),
		fmt.Sprintf("(confidence: %.0f%%)", selected.Confidence*100),
	}

	if selected.Reasoning != "" {
		parts = append(parts, fmt.Sprintf("Reason: %s", selected.Reasoning))
	}
	if len(conflictTypes) > 0 {
		parts = append(parts, fmt.Sprintf("Resolved conflicts: %s", strings.Join(conflictTypes, ", ")))
	}

	var others []string
	for _, s := range all {
		if len(others) == 2 {
			break
		}
		if s.Source == selected.Source && s.ActionType == selected.ActionType && s.Content == selected.Content {
			continue
		}
		others = append(others, string(s.Source))
	}
	if len(others) > 0 {
		parts = append(parts, fmt.Sprintf("Also considered: %s", strings.Join(others, ", ")))
	}

	return strings.Join(parts, ". ")
}

// selectionReasoning explains why the winner beat the alternatives.
func selectionReasoning(selected models.Suggestion, ranked []models.Suggestion) string {
	var reasons []string

	weight, ok := sourcePriorities[selected.Source]
	if !ok {
		weight = 50
	}
	if weight >= 80 {
		reasons = append(reasons, fmt.Sprintf("High-authority source (%s)", selected.Source))
	}

	switch {
	case selected.Confidence >= 0.8:
		reasons = append(reasons, "High confidence score")
	case selected.Confidence >= 0.6:
		reasons = append(reasons, "Moderate confidence score")
	}

	if selected.SafetyScore >= 0.9 {
		reasons = append(reasons, "Verified safe")
	}

	if len(ranked) > 1 {
		if margin := selected.Confidence - ranked[1].Confidence; margin > 0.2 {
			reasons = append(reasons, fmt.Sprintf("Clear winner (margin: %.0f%%)", margin*100))
		}
	}

	if len(reasons) == 0 {
		return "Default selection"
	}
	return strings.Join(reasons, "; ")
}

// Override replaces a stored decision's action, logging the prior
// action in the audit trail. Returns the updated decision.
func (a *Arbiter) Override(decisionID string, newAction models.ActionType, newContent, reason string) (models.Decision, error) {
	prior, err := a.store.GetDecision(decisionID)
	if err != nil {
		return models.Decision{}, err
	}

	if err := a.store.OverrideDecision(decisionID, newAction, newContent, reason); err != nil {
		return models.Decision{}, err
	}
	if err := a.store.AppendAudit(decisionID, "overridden", map[string]any{
		"original_action": string(prior.ActionType),
		"new_action":      string(newAction),
		"reason":          reason,
	}); err != nil {
		return models.Decision{}, err
	}

	return a.store.GetDecision(decisionID)
}

// RecordOutcome stamps a decision as executed with the given outcome
// (success, failure, or ignored).
func (a *Arbiter) RecordOutcome(decisionID, outcome string) error {
	if err := a.store.SetOutcome(decisionID, outcome, a.now()); err != nil {
		return err
	}
	return a.store.AppendAudit(decisionID, "outcome_recorded", map[string]any{
		"outcome": outcome,
	})
}

// Explanation is the detailed account of one decision.
type Explanation struct {
	Decision   models.Decision   `json:"decision"`
	Detailed   map[string]string `json:"detailed_explanation"`
	AuditTrail []AuditEvent      `json:"audit_trail"`
}

// Explain returns a decision with its expanded explanation and full
// audit trail.
func (a *Arbiter) Explain(decisionID string) (Explanation, error) {
	d, err := a.store.GetDecision(decisionID)
	if err != nil {
		return Explanation{}, err
	}

	trail, err := a.store.AuditTrail(decisionID)
	if err != nil {
		return Explanation{}, err
	}

	detailed := map[string]string{
		"action":  fmt.Sprintf("Take action: %s", d.ActionType),
		"content": d.Content,
		"sources": fmt.Sprintf("Based on: %s", strings.Join(d.ContributingSources, ", ")),
		"safety":  "Verified safe",
	}
	if d.Content == "" {
		detailed["content"] = "(no specific content)"
	}
	if len(d.ConflictsResolved) > 0 {
		detailed["conflicts"] = fmt.Sprintf("Resolved: %s", strings.Join(d.ConflictsResolved, ", "))
	} else {
		detailed["conflicts"] = "No conflicts"
	}
	if !d.SafetyVerified {
		detailed["safety"] = "Safety concerns present"
	}
	if d.Overridden {
		detailed["override"] = fmt.Sprintf("Overridden: %s", d.OverrideReason)
	}

	return Explanation{Decision: d, Detailed: detailed, AuditTrail: trail}, nil
}

// DecisionSummary is one row of a session's audit listing.
type DecisionSummary struct {
	DecisionID     string   `json:"decision_id"`
	Action         string   `json:"action"`
	ContentPreview string   `json:"content_preview"`
	Confidence     float64  `json:"confidence"`
	Sources        []string `json:"sources"`
	Overridden     bool     `json:"overridden"`
	Outcome        string   `json:"outcome,omitempty"`
	CreatedAt      int64    `json:"created_at"`
}

// Audit summarizes a session's most recent decisions, newest first.
func (a *Arbiter) Audit(sessionID string, limit int) ([]DecisionSummary, error) {
	decisions, err := a.store.SessionDecisions(sessionID, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]DecisionSummary, 0, len(decisions))
	for _, d := range decisions {
		preview := d.Content
		if len(preview) > 50 {
			preview = preview[:50]
		}
		summaries = append(summaries, DecisionSummary{
			DecisionID:     d.ID,
			Action:         string(d.ActionType),
			ContentPreview: preview,
			Confidence:     d.Confidence,
			Sources:        d.ContributingSources,
			Overridden:     d.Overridden,
			Outcome:        d.Outcome,
			CreatedAt:      d.CreatedAt,
		})
	}
	return summaries, nil
}

// Stats aggregates decision statistics, optionally for one session.
func (a *Arbiter) Stats(sessionID string) (Stats, error) {
	return a.store.Stats(sessionID)
}
