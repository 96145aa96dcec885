package main

import (
	"math"
	"strconv"

	"sheetCalc/contracts"
)

// FormulaEvaluator is a recursive-descent evaluator over token formulas:
//
//	expression := term ( ('+' | '-') term )*
//	term       := factor ( ('*' | '/') factor )*
//	factor     := NUMBER | CELL_REFERENCE | '(' expression ')'
//
// Errors never abort the descent: they are latched (most recent message
// wins) while parsing continues with fallback values. The single exception
// is a zero divisor, which abandons the whole evaluation and propagates
// +Inf through every enclosing term and expression.
//
// One instance is reusable across calls but not concurrently; Evaluate
// resets all per-call state.
type FormulaEvaluator struct {
	references contracts.ReferenceValidator

	tokens        contracts.Formula
	cursor        int
	errorOccurred bool
	errorMessage  string
	aborted       bool
	result        float64
	lastResult    float64
}

func NewFormulaEvaluator(references contracts.ReferenceValidator) *FormulaEvaluator {
	return &FormulaEvaluator{references: references}
}

func (e *FormulaEvaluator) Evaluate(formula contracts.Formula, cells contracts.CellGetter) float64 {
	e.tokens = formula
	e.cursor = 0
	e.errorOccurred = false
	e.errorMessage = ""
	e.aborted = false

	if len(formula) == 0 {
		e.errorMessage = contracts.EmptyFormulaMessage
		e.result = 0
		return 0
	}

	value := e.expression(cells)

	// A structurally complete parse with leftover tokens is trailing
	// garbage: the intermediate value is discarded.
	if !e.errorOccurred && e.cursor < len(e.tokens) {
		e.latchError(contracts.InvalidFormulaMessage)
		e.result = 0
		return 0
	}

	e.result = value
	if !e.errorOccurred {
		e.lastResult = value
	}
	return value
}

// Error returns the message latched by the last Evaluate call, or "".
func (e *FormulaEvaluator) Error() string {
	return e.errorMessage
}

// Result returns the value computed by the last Evaluate call.
func (e *FormulaEvaluator) Result() float64 {
	return e.result
}

// LastResult equals Result after a clean evaluation; malformed tokens and
// reference errors latch NaN, a zero divisor latches +Inf.
func (e *FormulaEvaluator) LastResult() float64 {
	return e.lastResult
}

func (e *FormulaEvaluator) expression(cells contracts.CellGetter) float64 {
	value := e.term(cells)
	if e.aborted {
		return value
	}

	for e.cursor < len(e.tokens) {
		switch e.tokens[e.cursor] {
		case "+":
			e.cursor++
			operand := e.term(cells)
			if e.aborted {
				return operand
			}
			value += operand
		case "-":
			e.cursor++
			operand := e.term(cells)
			if e.aborted {
				return operand
			}
			value -= operand
		default:
			return value
		}
	}

	return value
}

func (e *FormulaEvaluator) term(cells contracts.CellGetter) float64 {
	value := e.factor(cells)
	if e.aborted {
		return value
	}

	for e.cursor < len(e.tokens) {
		switch e.tokens[e.cursor] {
		case "*":
			e.cursor++
			operand := e.factor(cells)
			if e.aborted {
				return operand
			}
			value *= operand
		case "/":
			e.cursor++
			operand := e.factor(cells)
			if e.aborted {
				return operand
			}
			if operand == 0 {
				e.errorOccurred = true
				e.errorMessage = contracts.DivideByZeroMessage
				e.lastResult = math.Inf(1)
				e.aborted = true
				return math.Inf(1)
			}
			value /= operand
		default:
			return value
		}
	}

	return value
}

func (e *FormulaEvaluator) factor(cells contracts.CellGetter) float64 {
	if e.cursor >= len(e.tokens) {
		e.latchError(contracts.InvalidFormulaMessage)
		return 0
	}

	token := e.tokens[e.cursor]

	// Numeric classification comes first: a token that parses as a number
	// is never considered a cell reference.
	if value, err := strconv.ParseFloat(token, 64); err == nil {
		e.cursor++
		return value
	}

	if token == "(" {
		e.cursor++
		value := e.expression(cells)
		if !e.aborted {
			// A missing ")" latches an error but the inner value is kept.
			e.matchToken(")")
		}
		return value
	}

	if e.references.IsCellReference(token) {
		e.cursor++
		value, message := e.cellValue(token, cells)
		if message != "" {
			e.latchError(message)
		}
		return value
	}

	// Unknown token shape: latch and leave the token unconsumed.
	e.latchError(contracts.InvalidFormulaMessage)
	return 0
}

// matchToken consumes the current token when it equals expected. On mismatch
// the cursor does not advance and an invalid-formula error is latched.
func (e *FormulaEvaluator) matchToken(expected string) bool {
	if e.cursor < len(e.tokens) && e.tokens[e.cursor] == expected {
		e.cursor++
		return true
	}

	e.latchError(contracts.InvalidFormulaMessage)
	return false
}

// cellValue resolves a reference label through the cell store. A store error
// other than the empty-formula sentinel wins; a missing cell or a cell whose
// stored formula is empty surfaces as an invalid cell.
func (e *FormulaEvaluator) cellValue(label string, cells contracts.CellGetter) (float64, string) {
	var cell *contracts.Cell
	if cells != nil {
		cell = cells(e.references.Canonicalize(label))
	}

	if cell == nil {
		return 0, contracts.InvalidCellMessage
	}
	if cell.Error != "" && cell.Error != contracts.EmptyFormulaMessage {
		return 0, cell.Error
	}
	if len(cell.Formula) == 0 {
		return 0, contracts.InvalidCellMessage
	}
	return cell.Value, ""
}

func (e *FormulaEvaluator) latchError(message string) {
	e.errorOccurred = true
	e.errorMessage = message
	e.lastResult = math.NaN()
}
