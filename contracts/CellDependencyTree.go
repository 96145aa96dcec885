package contracts

import "go.etcd.io/bbolt"

type CellDependencyTree interface {
	// SetDependsOn
	/**
	 * Example, for formula `A1 = B1 + C1`:
	 * A1 depends on B1 and C1
	 *  SetDependsOn(tx, sheetId, "A1", []string{"B1", "C1"})
	 */
	SetDependsOn(tx *bbolt.Tx, sheetId []byte, dependantCellId string, dependingOnCellIds []string) error

	// GetDependants
	/**
	 * Returns the cells whose formulas reference dependingOnCellId,
	 * transitively: for `A1 = B1 + C1` and `D1 = A1 * C1`,
	 * GetDependants(tx, sheetId, "B1") returns ["A1", "D1"].
	 *
	 * Stored as a B+tree with prefixed keys, so direct dependants of a cell
	 * are fetched in O(log(n)) time.
	 */
	GetDependants(tx *bbolt.Tx, sheetId []byte, dependingOnCellId string) []string
}
