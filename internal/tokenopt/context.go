package tokenopt

// OptimizationContext bundles the token-saving components one pipeline
// run needs. Construct one per orchestrator and pass it down; the
// components carry their own synchronization where they need it.
type OptimizationContext struct {
	Classifier Classifier
	Tiered     *TieredExecutor
	Filter     *OutputFilter
	Cache      *ResponseCache
}

// NewOptimizationContext wires the stock components together.
func NewOptimizationContext() *OptimizationContext {
	classifier := NewRuleClassifier()
	return &OptimizationContext{
		Classifier: classifier,
		Tiered:     NewTieredExecutor(classifier),
		Filter:     NewOutputFilter(),
		Cache:      NewResponseCache(),
	}
}
