// Package tokenopt reduces LLM token spend during supervision. It
// provides rule-based output classification, tiered agent invocation,
// terminal output filtering, and a short-lived response cache. All
// pieces are plain values wired together through OptimizationContext so
// callers control their lifetime.
package tokenopt

import (
	"regexp"
	"strings"
)

// Label is the outcome of classifying a window of terminal output.
type Label string

const (
	// LabelWait means the session is visibly mid-task.
	LabelWait Label = "wait"
	// LabelActionNeeded means something requires intervention.
	LabelActionNeeded Label = "action_needed"
	// LabelIdle means the session finished or sits at an empty prompt.
	LabelIdle Label = "idle"
	// LabelUncertain means no rule matched.
	LabelUncertain Label = "uncertain"
)

// Classifier maps terminal output to a label with a confidence score.
type Classifier interface {
	Classify(output string) (Label, float64)
}

// classifierWindow is how many trailing lines the rules look at.
const classifierWindow = 20

var (
	waitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Compiling\s+\d+`),
		regexp.MustCompile(`(?i)Building\s+\[`),
		regexp.MustCompile(`(?i)Installing\s+`),
		regexp.MustCompile(`(?i)Downloading\s+`),
		regexp.MustCompile(`(?im)^\s*\.\.\.\s*$`),
		regexp.MustCompile(`(?i)Running\s+\d+\s+tests?`),
		regexp.MustCompile(`(?i)waiting\s+for`),
		regexp.MustCompile(`(?i)\d+%\s*\|`),
	}

	actionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)error\s*:`),
		regexp.MustCompile(`(?i)failed`),
		regexp.MustCompile(`(?i)panic:`),
		regexp.MustCompile(`(?i)exception`),
		regexp.MustCompile(`(?i)\?\s*\[y/n\]`),
		regexp.MustCompile(`(?i)Press\s+.*\s+to\s+continue`),
		regexp.MustCompile(`(?i)Enter\s+.*:`),
	}

	idlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*\$\s*$`),
		regexp.MustCompile(`(?i)Successfully`),
		regexp.MustCompile(`(?i)Done\s*[.!]?$`),
		regexp.MustCompile(`(?i)Finished`),
		regexp.MustCompile(`(?i)All\s+\d+\s+tests?\s+passed`),
	}
)

// RuleClassifier classifies output with fixed regex tables and no LLM
// call. Wait rules win over action rules, which win over idle rules.
type RuleClassifier struct{}

// NewRuleClassifier returns the stock rule-based classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Classify inspects the last lines of output and returns a label with
// its confidence. Empty output is idle at 0.9; an unmatched window is
// uncertain at 0.3.
func (c *RuleClassifier) Classify(output string) (Label, float64) {
	if strings.TrimSpace(output) == "" {
		return LabelIdle, 0.9
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > classifierWindow {
		lines = lines[len(lines)-classifierWindow:]
	}
	window := strings.Join(lines, "\n")

	for _, re := range waitPatterns {
		if re.MatchString(window) {
			return LabelWait, 0.85
		}
	}
	for _, re := range actionPatterns {
		if re.MatchString(window) {
			return LabelActionNeeded, 0.75
		}
	}
	for _, re := range idlePatterns {
		if re.MatchString(window) {
			return LabelIdle, 0.80
		}
	}

	return LabelUncertain, 0.3
}

var _ Classifier = (*RuleClassifier)(nil)
