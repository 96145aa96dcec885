package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"sheetCalc/contracts"
)

func _makeCellGetter(cells map[string]*contracts.Cell) contracts.CellGetter {
	return func(label string) *contracts.Cell {
		return cells[label]
	}
}

func TestFormulaEvaluator_Evaluate(t *testing.T) {
	t.Run("arithmetic", func(t *testing.T) {
		t.Run("single_number", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 42.5, evaluator.Evaluate(contracts.Formula{"42.5"}, nil))
			assert.Empty(t, evaluator.Error())
			assert.Equal(t, 42.5, evaluator.Result())
			assert.Equal(t, 42.5, evaluator.LastResult())
		})

		t.Run("precedence", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 11.0, evaluator.Evaluate(contracts.Formula{"3", "+", "4", "*", "2"}, nil))
			assert.Empty(t, evaluator.Error())
		})

		t.Run("left_associativity", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 5.0, evaluator.Evaluate(contracts.Formula{"10", "-", "2", "-", "3"}, nil))
			assert.Empty(t, evaluator.Error())

			assert.Equal(t, 1.0, evaluator.Evaluate(contracts.Formula{"8", "/", "4", "/", "2"}, nil))
			assert.Empty(t, evaluator.Error())
		})

		t.Run("parentheses", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 14.0, evaluator.Evaluate(contracts.Formula{"(", "3", "+", "4", ")", "*", "2"}, nil))
			assert.Empty(t, evaluator.Error())

			assert.Equal(t, 21.0, evaluator.Evaluate(contracts.Formula{"(", "(", "1", "+", "2", ")", "*", "7", ")"}, nil))
			assert.Empty(t, evaluator.Error())
		})
	})

	t.Run("empty_formula", func(t *testing.T) {
		evaluator := NewFormulaEvaluator(NewCellReference())

		assert.Equal(t, 0.0, evaluator.Evaluate(contracts.Formula{}, nil))
		assert.Equal(t, contracts.EmptyFormulaMessage, evaluator.Error())
		assert.Equal(t, 0.0, evaluator.Result())
	})

	t.Run("invalid_formula", func(t *testing.T) {
		t.Run("trailing_tokens_discard_value", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 0.0, evaluator.Evaluate(contracts.Formula{"3", "+", "4", ")"}, nil))
			assert.Equal(t, contracts.InvalidFormulaMessage, evaluator.Error())
			assert.Equal(t, 0.0, evaluator.Result())
			assert.True(t, math.IsNaN(evaluator.LastResult()))
		})

		t.Run("missing_closing_paren_keeps_value", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 7.0, evaluator.Evaluate(contracts.Formula{"(", "3", "+", "4"}, nil))
			assert.Equal(t, contracts.InvalidFormulaMessage, evaluator.Error())
			assert.Equal(t, 7.0, evaluator.Result())
			assert.True(t, math.IsNaN(evaluator.LastResult()))
		})

		t.Run("bad_token_continues_with_fallback", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 3.0, evaluator.Evaluate(contracts.Formula{"3", "+", "%"}, nil))
			assert.Equal(t, contracts.InvalidFormulaMessage, evaluator.Error())
			assert.True(t, math.IsNaN(evaluator.LastResult()))
		})

		t.Run("dangling_operator", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 3.0, evaluator.Evaluate(contracts.Formula{"3", "+"}, nil))
			assert.Equal(t, contracts.InvalidFormulaMessage, evaluator.Error())
		})
	})

	t.Run("divide_by_zero", func(t *testing.T) {
		t.Run("aborts_whole_evaluation", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			value := evaluator.Evaluate(contracts.Formula{"1", "+", "5", "/", "0"}, nil)

			assert.True(t, math.IsInf(value, 1))
			assert.Equal(t, contracts.DivideByZeroMessage, evaluator.Error())
			assert.True(t, math.IsInf(evaluator.LastResult(), 1))
		})

		t.Run("propagates_through_enclosing_terms", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			value := evaluator.Evaluate(contracts.Formula{"2", "*", "(", "1", "/", "0", ")", "-", "7"}, nil)

			assert.True(t, math.IsInf(value, 1))
			assert.Equal(t, contracts.DivideByZeroMessage, evaluator.Error())
		})

		t.Run("subtraction_still_yields_positive_infinity", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			value := evaluator.Evaluate(contracts.Formula{"3", "-", "4", "/", "0"}, nil)

			assert.True(t, math.IsInf(value, 1))
		})
	})

	t.Run("cell_references", func(t *testing.T) {
		cells := map[string]*contracts.Cell{
			"A1": {CanonicalKey: "A1", Formula: contracts.Formula{"5"}, Value: 5},
			"B2": {CanonicalKey: "B2", Formula: contracts.Formula{}},
			"C3": {CanonicalKey: "C3", Formula: contracts.Formula{"1", "/", "0"}, Error: contracts.DivideByZeroMessage},
			"D4": {CanonicalKey: "D4", Formula: contracts.Formula{}, Error: contracts.EmptyFormulaMessage},
		}

		t.Run("clean_value", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 7.0, evaluator.Evaluate(contracts.Formula{"A1", "+", "2"}, _makeCellGetter(cells)))
			assert.Empty(t, evaluator.Error())
		})

		t.Run("lower_case_label_is_canonicalized", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 5.0, evaluator.Evaluate(contracts.Formula{"a1"}, _makeCellGetter(cells)))
			assert.Empty(t, evaluator.Error())
		})

		t.Run("empty_formula_cell", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 0.0, evaluator.Evaluate(contracts.Formula{"B2"}, _makeCellGetter(cells)))
			assert.Equal(t, contracts.InvalidCellMessage, evaluator.Error())
			assert.True(t, math.IsNaN(evaluator.LastResult()))
		})

		t.Run("empty_formula_sentinel_is_not_a_store_error", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 0.0, evaluator.Evaluate(contracts.Formula{"D4"}, _makeCellGetter(cells)))
			assert.Equal(t, contracts.InvalidCellMessage, evaluator.Error())
		})

		t.Run("missing_cell", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 0.0, evaluator.Evaluate(contracts.Formula{"Z9"}, _makeCellGetter(cells)))
			assert.Equal(t, contracts.InvalidCellMessage, evaluator.Error())
		})

		t.Run("propagated_error_is_latched_verbatim", func(t *testing.T) {
			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 3.0, evaluator.Evaluate(contracts.Formula{"C3", "+", "3"}, _makeCellGetter(cells)))
			assert.Equal(t, contracts.DivideByZeroMessage, evaluator.Error())
			assert.True(t, math.IsNaN(evaluator.LastResult()))
		})

		t.Run("numeric_token_never_hits_the_store", func(t *testing.T) {
			lookups := 0
			getter := func(label string) *contracts.Cell {
				lookups++
				return nil
			}

			evaluator := NewFormulaEvaluator(NewCellReference())

			assert.Equal(t, 123.0, evaluator.Evaluate(contracts.Formula{"123"}, getter))
			assert.Empty(t, evaluator.Error())
			assert.Equal(t, 0, lookups)
		})
	})

	t.Run("idempotence", func(t *testing.T) {
		cells := map[string]*contracts.Cell{
			"A1": {CanonicalKey: "A1", Formula: contracts.Formula{"5"}, Value: 5},
		}

		evaluator := NewFormulaEvaluator(NewCellReference())
		formula := contracts.Formula{"A1", "*", "(", "2", "+", "1", ")"}

		first := evaluator.Evaluate(formula, _makeCellGetter(cells))
		firstError := evaluator.Error()
		firstLast := evaluator.LastResult()

		second := evaluator.Evaluate(formula, _makeCellGetter(cells))

		assert.Equal(t, 15.0, first)
		assert.Equal(t, first, second)
		assert.Equal(t, firstError, evaluator.Error())
		assert.Equal(t, firstLast, evaluator.LastResult())
	})

	t.Run("state_reset_between_calls", func(t *testing.T) {
		evaluator := NewFormulaEvaluator(NewCellReference())

		evaluator.Evaluate(contracts.Formula{"1", "/", "0"}, nil)
		assert.Equal(t, contracts.DivideByZeroMessage, evaluator.Error())

		assert.Equal(t, 4.0, evaluator.Evaluate(contracts.Formula{"2", "+", "2"}, nil))
		assert.Empty(t, evaluator.Error())
		assert.Equal(t, 4.0, evaluator.LastResult())
	})
}
