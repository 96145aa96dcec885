package main

import (
	"regexp"
	"strconv"
	"strings"

	"sheetCalc/contracts"
)

// CellReference owns the addressing format: column letters followed by a
// row number, e.g. A1, bc42. Labels are canonicalized to upper case so
// `a1` and `A1` address the same cell.
type CellReference struct {
	labelRegex *regexp.Regexp
}

func NewCellReference() *CellReference {
	return &CellReference{
		labelRegex: regexp.MustCompile(`^[A-Za-z]+[1-9][0-9]*$`),
	}
}

func (r *CellReference) IsCellReference(token string) bool {
	return r.labelRegex.MatchString(token)
}

func (r *CellReference) Canonicalize(label string) string {
	return strings.ToUpper(label)
}

func (r *CellReference) ExtractReferences(formula contracts.Formula) []string {
	references := make([]string, 0, len(formula))
	seen := map[string]bool{}

	for _, token := range formula {
		// Numbers first, same classification order as the evaluator.
		if _, err := strconv.ParseFloat(token, 64); err == nil {
			continue
		}
		if !r.IsCellReference(token) {
			continue
		}

		canonical := r.Canonicalize(token)
		if !seen[canonical] {
			seen[canonical] = true
			references = append(references, canonical)
		}
	}

	return references
}
