package tokenopt

// defaultConfidenceThreshold gates quick answers: below it, the full
// agent always runs.
const defaultConfidenceThreshold = 0.75

// idleConfidenceFloor is the stricter bar for skipping the agent on an
// idle classification. Idle sessions may need a push, so only a very
// confident idle verdict short-circuits.
const idleConfidenceFloor = 0.85

// TieredExecutor decides whether a full agent invocation is worth its
// tokens, answering cheap cases from the classifier alone.
type TieredExecutor struct {
	classifier Classifier
	threshold  float64
}

// NewTieredExecutor builds an executor around the given classifier.
// A nil classifier gets the stock rule-based one.
func NewTieredExecutor(classifier Classifier) *TieredExecutor {
	if classifier == nil {
		classifier = NewRuleClassifier()
	}
	return &TieredExecutor{classifier: classifier, threshold: defaultConfidenceThreshold}
}

// ShouldInvokeFullAgent reports whether context warrants a real agent
// call. When it does not, the quick response to use instead is
// returned.
func (t *TieredExecutor) ShouldInvokeFullAgent(context string) (bool, string) {
	label, confidence := t.classifier.Classify(context)

	if confidence >= t.threshold {
		switch label {
		case LabelWait:
			return false, "WAIT"
		case LabelIdle:
			if confidence >= idleConfidenceFloor {
				return false, "WAIT"
			}
		}
	}

	return true, ""
}
