package contracts

// FormulaEvaluator computes the numeric value of a token formula against a
// cell lookup. Evaluate resets the latched state, so one instance is
// reusable, but not concurrently: callers pool or serialize instances.
type FormulaEvaluator interface {
	Evaluate(formula Formula, cells CellGetter) float64

	// Error returns the message latched by the last Evaluate call,
	// or "" when it succeeded.
	Error() string

	// Result returns the value computed by the last Evaluate call.
	Result() float64

	// LastResult mirrors Result on success; malformed tokens and reference
	// errors latch NaN, a zero divisor latches +Inf.
	LastResult() float64
}
