package merge

// DisablePTY forces the pipe fallback.
func (e *Engine) DisablePTY() {
	e.usePTY = false
}
