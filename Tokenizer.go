package main

import (
	"strings"
	"unicode"

	"sheetCalc/contracts"
)

// FormulaTokenizer splits a formula string into the token shapes the
// evaluator understands: numbers, labels, `+ - * /` and parentheses.
// It never fails; an unknown rune becomes its own token and is left for
// the evaluator to reject.
type FormulaTokenizer struct{}

func NewFormulaTokenizer() *FormulaTokenizer {
	return &FormulaTokenizer{}
}

func (t *FormulaTokenizer) Tokenize(expression string) contracts.Formula {
	formula := make(contracts.Formula, 0, len(expression))
	runes := []rune(expression)

	for pos := 0; pos < len(runes); {
		r := runes[pos]

		switch {
		case r == ' ' || r == '\t':
			pos++

		case strings.ContainsRune("+-*/()", r):
			formula = append(formula, string(r))
			pos++

		case unicode.IsDigit(r) || r == '.':
			start := pos
			for pos < len(runes) && (unicode.IsDigit(runes[pos]) || runes[pos] == '.') {
				pos++
			}
			formula = append(formula, string(runes[start:pos]))

		case unicode.IsLetter(r):
			start := pos
			for pos < len(runes) && (unicode.IsLetter(runes[pos]) || unicode.IsDigit(runes[pos])) {
				pos++
			}
			formula = append(formula, string(runes[start:pos]))

		default:
			formula = append(formula, string(r))
			pos++
		}
	}

	return formula
}
