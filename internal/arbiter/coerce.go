package arbiter

import (
	"encoding/json"
	"fmt"

	"github.com/shayc/aimon/pkg/models"
)

// rawSuggestion is the tolerant wire form of a suggestion. Sources
// feed the arbiter loosely structured JSON, so every field is optional
// and content goes by several names.
type rawSuggestion struct {
	Source        string         `json:"source"`
	ActionType    string         `json:"action_type"`
	Content       *string        `json:"content"`
	ActionContent *string        `json:"action_content"`
	Action        *string        `json:"action"`
	Confidence    *float64       `json:"confidence"`
	Priority      *int           `json:"priority"`
	SafetyScore   *float64       `json:"safety_score"`
	Reasoning     string         `json:"reasoning"`
	Metadata      map[string]any `json:"metadata"`
}

// ParseSuggestions decodes a JSON array of suggestions, coercing
// malformed entries to safe defaults instead of rejecting the batch.
// Unknown sources become heuristic, unknown actions become wait, and
// entries that are not objects are skipped.
func ParseSuggestions(data []byte) ([]models.Suggestion, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(entries))
	for _, entry := range entries {
		var raw rawSuggestion
		if err := json.Unmarshal(entry, &raw); err != nil {
			continue
		}

		content := ""
		switch {
		case raw.Content != nil:
			content = *raw.Content
		case raw.ActionContent != nil:
			content = *raw.ActionContent
		case raw.Action != nil:
			content = *raw.Action
		}

		confidence := 0.5
		if raw.Confidence != nil {
			confidence = *raw.Confidence
		}
		priority := 0
		if raw.Priority != nil {
			priority = *raw.Priority
		}
		safety := 1.0
		if raw.SafetyScore != nil {
			safety = *raw.SafetyScore
		}

		suggestions = append(suggestions, models.Suggestion{
			Source:      models.ParseSource(raw.Source),
			ActionType:  models.ParseAction(raw.ActionType),
			Content:     content,
			Confidence:  confidence,
			Priority:    priority,
			SafetyScore: safety,
			Reasoning:   raw.Reasoning,
			Metadata:    raw.Metadata,
		})
	}
	return suggestions, nil
}
