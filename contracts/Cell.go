package contracts

import "errors"

// Formula is an ordered token sequence, the unit of work for one evaluation.
// Tokens are numeric literals, cell-reference labels, operators or
// parentheses. The evaluator never mutates it.
type Formula []string

type Cell struct {
	CanonicalKey string  `json:"cell_id"`
	Formula      Formula `json:"formula"`
	Value        float64 `json:"value"`
	Error        string  `json:"error"`
}

type CellList map[string]*Cell

// CellGetter resolves a canonical reference label to the stored cell,
// or nil when no such cell exists.
type CellGetter func(label string) *Cell

var CellNotFoundError = errors.New("cell not found")

var CellIdInvalidError = errors.New("cell id is not a valid cell reference")
