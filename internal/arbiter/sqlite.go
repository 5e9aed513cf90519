package arbiter

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shayc/aimon/pkg/models"
)

// SQLiteStore is the default decision store, backed by a single SQLite
// file shared with the rest of the monitor's memory.
type SQLiteStore struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens (or creates) the decision database at the given path and
// applies pending migrations. WAL mode is enabled for concurrent reads.
func Open(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

// migrate applies all pending schema migrations.
func (s *SQLiteStore) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Decisions},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Decisions = `
CREATE TABLE IF NOT EXISTS arbiter_decisions (
	decision_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	action_type TEXT NOT NULL,
	action_content TEXT,
	confidence REAL DEFAULT 0.5,
	explanation TEXT,
	contributing_sources TEXT,
	conflicts_resolved TEXT,
	safety_verified INTEGER DEFAULT 1,
	overridden INTEGER DEFAULT 0,
	override_reason TEXT,
	created_at INTEGER NOT NULL,
	executed_at INTEGER,
	outcome TEXT
);

CREATE TABLE IF NOT EXISTS decision_audit (
	audit_id TEXT PRIMARY KEY,
	decision_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	event_data TEXT,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (decision_id) REFERENCES arbiter_decisions(decision_id)
);

CREATE INDEX IF NOT EXISTS idx_decisions_session ON arbiter_decisions(session_id);
CREATE INDEX IF NOT EXISTS idx_decisions_action ON arbiter_decisions(action_type);
CREATE INDEX IF NOT EXISTS idx_audit_decision ON decision_audit(decision_id);
`

// SaveDecision inserts a new decision.
func (s *SQLiteStore) SaveDecision(d models.Decision) error {
	sources, err := json.Marshal(d.ContributingSources)
	if err != nil {
		return fmt.Errorf("marshal contributing sources: %w", err)
	}
	conflicts, err := json.Marshal(d.ConflictsResolved)
	if err != nil {
		return fmt.Errorf("marshal conflicts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.conn.Exec(`
		INSERT INTO arbiter_decisions (
			decision_id, session_id, action_type, action_content,
			confidence, explanation, contributing_sources,
			conflicts_resolved, safety_verified, overridden,
			override_reason, created_at, executed_at, outcome
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.SessionID, string(d.ActionType), d.Content,
		d.Confidence, d.Explanation, string(sources),
		string(conflicts), boolToInt(d.SafetyVerified), boolToInt(d.Overridden),
		d.OverrideReason, d.CreatedAt, d.ExecutedAt, nullString(d.Outcome),
	)
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	return nil
}

// GetDecision returns a decision by ID, or ErrNotFound.
func (s *SQLiteStore) GetDecision(id string) (models.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.conn.QueryRow(`
		SELECT decision_id, session_id, action_type, action_content,
			confidence, explanation, contributing_sources,
			conflicts_resolved, safety_verified, overridden,
			override_reason, created_at, executed_at, outcome
		FROM arbiter_decisions WHERE decision_id = ?
	`, id)
	return scanDecision(row)
}

// OverrideDecision replaces the stored action and marks the decision
// overridden.
func (s *SQLiteStore) OverrideDecision(id string, action models.ActionType, content, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.conn.Exec(`
		UPDATE arbiter_decisions SET
			action_type = ?,
			action_content = ?,
			overridden = 1,
			override_reason = ?
		WHERE decision_id = ?
	`, string(action), content, reason, id)
	if err != nil {
		return fmt.Errorf("override decision: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetOutcome records the outcome and execution timestamp.
func (s *SQLiteStore) SetOutcome(id, outcome string, executedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.conn.Exec(`
		UPDATE arbiter_decisions SET
			outcome = ?,
			executed_at = ?
		WHERE decision_id = ?
	`, outcome, executedAt, id)
	if err != nil {
		return fmt.Errorf("set outcome: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SessionDecisions returns the most recent decisions for a session,
// newest first.
func (s *SQLiteStore) SessionDecisions(sessionID string, limit int) ([]models.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT decision_id, session_id, action_type, action_content,
			confidence, explanation, contributing_sources,
			conflicts_resolved, safety_verified, overridden,
			override_reason, created_at, executed_at, outcome
		FROM arbiter_decisions
		WHERE session_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query session decisions: %w", err)
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// AppendAudit logs one audit event against a decision.
func (s *SQLiteStore) AppendAudit(decisionID, eventType string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal audit data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.conn.Exec(`
		INSERT INTO decision_audit (
			audit_id, decision_id, event_type, event_data, created_at
		) VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String()[:8], decisionID, eventType, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// AuditTrail returns a decision's audit events, oldest first.
func (s *SQLiteStore) AuditTrail(decisionID string) ([]AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT audit_id, decision_id, event_type, event_data, created_at
		FROM decision_audit
		WHERE decision_id = ?
		ORDER BY created_at ASC
	`, decisionID)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var payload sql.NullString
		if err := rows.Scan(&e.ID, &e.DecisionID, &e.EventType, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Data = map[string]any{}
		if payload.Valid && payload.String != "" {
			if err := json.Unmarshal([]byte(payload.String), &e.Data); err != nil {
				return nil, fmt.Errorf("parse audit data: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Stats aggregates decision counts, optionally for one session.
func (s *SQLiteStore) Stats(sessionID string) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		ByAction:  map[string]int{},
		ByOutcome: map[string]int{},
	}

	where := ""
	var params []any
	if sessionID != "" {
		where = "WHERE session_id = ?"
		params = append(params, sessionID)
	}

	row := s.conn.QueryRow("SELECT COUNT(*) FROM arbiter_decisions "+where, params...)
	if err := row.Scan(&stats.TotalDecisions); err != nil {
		return Stats{}, fmt.Errorf("count decisions: %w", err)
	}

	rows, err := s.conn.Query(
		"SELECT action_type, COUNT(*) FROM arbiter_decisions "+where+" GROUP BY action_type",
		params...)
	if err != nil {
		return Stats{}, fmt.Errorf("count by action: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return Stats{}, fmt.Errorf("scan action count: %w", err)
		}
		stats.ByAction[action] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	outcomeWhere := "WHERE outcome IS NOT NULL"
	if sessionID != "" {
		outcomeWhere = "WHERE session_id = ? AND outcome IS NOT NULL"
	}
	outcomeRows, err := s.conn.Query(
		"SELECT outcome, COUNT(*) FROM arbiter_decisions "+outcomeWhere+" GROUP BY outcome",
		params...)
	if err != nil {
		return Stats{}, fmt.Errorf("count by outcome: %w", err)
	}
	defer outcomeRows.Close()
	for outcomeRows.Next() {
		var outcome string
		var count int
		if err := outcomeRows.Scan(&outcome, &count); err != nil {
			return Stats{}, fmt.Errorf("scan outcome count: %w", err)
		}
		stats.ByOutcome[outcome] = count
	}
	if err := outcomeRows.Err(); err != nil {
		return Stats{}, err
	}

	overrideWhere := "WHERE overridden = 1"
	if sessionID != "" {
		overrideWhere = "WHERE session_id = ? AND overridden = 1"
	}
	row = s.conn.QueryRow("SELECT COUNT(*) FROM arbiter_decisions "+overrideWhere, params...)
	if err := row.Scan(&stats.OverrideCount); err != nil {
		return Stats{}, fmt.Errorf("count overrides: %w", err)
	}

	total := stats.TotalDecisions
	if total < 1 {
		total = 1
	}
	stats.OverrideRate = float64(stats.OverrideCount) / float64(total)
	return stats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDecision(row scanner) (models.Decision, error) {
	var d models.Decision
	var action string
	var content, explanation, sources, conflicts, overrideReason, outcome sql.NullString
	var safetyVerified, overridden int
	var executedAt sql.NullInt64

	err := row.Scan(
		&d.ID, &d.SessionID, &action, &content,
		&d.Confidence, &explanation, &sources,
		&conflicts, &safetyVerified, &overridden,
		&overrideReason, &d.CreatedAt, &executedAt, &outcome,
	)
	if err == sql.ErrNoRows {
		return models.Decision{}, ErrNotFound
	}
	if err != nil {
		return models.Decision{}, fmt.Errorf("scan decision: %w", err)
	}

	d.ActionType = models.ActionType(action)
	d.Content = content.String
	d.Explanation = explanation.String
	d.SafetyVerified = safetyVerified != 0
	d.Overridden = overridden != 0
	d.OverrideReason = overrideReason.String
	d.Outcome = outcome.String
	if executedAt.Valid {
		d.ExecutedAt = &executedAt.Int64
	}

	d.ContributingSources = []string{}
	if sources.Valid && sources.String != "" {
		if err := json.Unmarshal([]byte(sources.String), &d.ContributingSources); err != nil {
			return models.Decision{}, fmt.Errorf("parse contributing sources: %w", err)
		}
	}
	d.ConflictsResolved = []string{}
	if conflicts.Valid && conflicts.String != "" {
		if err := json.Unmarshal([]byte(conflicts.String), &d.ConflictsResolved); err != nil {
			return models.Decision{}, fmt.Errorf("parse conflicts: %w", err)
		}
	}

	return d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ DecisionStore = (*SQLiteStore)(nil)
