package ui

// Unicode symbols for status indicators.
const (
	SymbolFail     = "✗" // Task failed
	SymbolPending  = "○" // Task not yet started
	SymbolComplete = "●" // Task done
)
