// Package arbiter merges suggestions from multiple advisory sources
// into one audited decision per call. Ranking weighs source authority,
// confidence, and safety; unsafe suggestions are filtered and an
// all-unsafe batch escalates instead of failing.
package arbiter

import (
	"errors"

	"github.com/shayc/aimon/pkg/models"
)

// ErrNotFound is returned when a decision ID does not exist.
var ErrNotFound = errors.New("decision not found")

// AuditEvent is one entry in a decision's audit trail.
type AuditEvent struct {
	ID         string         `json:"audit_id"`
	DecisionID string         `json:"decision_id"`
	EventType  string         `json:"event"`
	Data       map[string]any `json:"data"`
	CreatedAt  int64          `json:"time"`
}

// Stats summarizes decisions, optionally filtered to one session.
type Stats struct {
	TotalDecisions int            `json:"total_decisions"`
	ByAction       map[string]int `json:"by_action"`
	ByOutcome      map[string]int `json:"by_outcome"`
	OverrideCount  int            `json:"override_count"`
	OverrideRate   float64        `json:"override_rate"`
}

// DecisionStore persists decisions and their audit trails. The SQLite
// implementation is the default; anything transactional works.
type DecisionStore interface {
	// SaveDecision inserts a new decision.
	SaveDecision(d models.Decision) error
	// GetDecision returns a decision by ID, or ErrNotFound.
	GetDecision(id string) (models.Decision, error)
	// OverrideDecision replaces the action of a stored decision and
	// marks it overridden.
	OverrideDecision(id string, action models.ActionType, content, reason string) error
	// SetOutcome records the decision's outcome and execution time.
	SetOutcome(id, outcome string, executedAt int64) error
	// SessionDecisions returns the most recent decisions for a session,
	// newest first.
	SessionDecisions(sessionID string, limit int) ([]models.Decision, error)
	// AppendAudit logs one audit event against a decision.
	AppendAudit(decisionID, eventType string, data map[string]any) error
	// AuditTrail returns a decision's audit events, oldest first.
	AuditTrail(decisionID string) ([]AuditEvent, error)
	// Stats aggregates decision counts. An empty sessionID means all
	// sessions.
	Stats(sessionID string) (Stats, error)
}
