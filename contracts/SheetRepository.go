package contracts

import "errors"

type SheetRepository interface {
	// SetCell stores a formula, evaluates it and recalculates every cell
	// depending on it. Evaluation failures are not errors here: they are
	// latched in the returned Cell's Error field.
	SetCell(sheetId string, cellId string, formula Formula) (*Cell, error)

	GetCell(sheetId string, cellId string) (*Cell, error)

	GetCellList(sheetId string) (*CellList, error)
}

var SheetNotFoundError = errors.New("sheet not found")
