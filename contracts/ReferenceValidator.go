package contracts

type ReferenceValidator interface {
	// IsCellReference reports whether token is syntactically a cell label
	// (column letters followed by a row number).
	IsCellReference(token string) bool

	// Canonicalize maps a label to its canonical form, so "a1" and "A1"
	// address the same cell.
	Canonicalize(label string) string

	// ExtractReferences returns the unique canonical labels referenced by a
	// formula. Tokens that parse as numbers are never treated as labels.
	ExtractReferences(formula Formula) []string
}
