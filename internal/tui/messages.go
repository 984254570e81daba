package tui

// applyFinishedMsg reports the outcome of an apply call for one step.
type applyFinishedMsg struct {
	newValue string
	errMsg   string
	splitIdx int
	stepIdx  int
	success  bool
}
