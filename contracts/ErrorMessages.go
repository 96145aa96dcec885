package contracts

// Latched evaluation error messages. Cells persist these verbatim, so the
// four kinds stay distinguishable through storage and the API.
const (
	EmptyFormulaMessage   = "#EMPTY!"
	InvalidFormulaMessage = "#ERR"
	InvalidCellMessage    = "#REF!"
	DivideByZeroMessage   = "#DIV/0!"
)
