package main

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"go.etcd.io/bbolt"

	"sheetCalc/contracts"
)

// SheetRepository persists cells in one bbolt bucket per sheet and keeps
// computed values fresh: SetCell evaluates inside the write transaction and
// re-evaluates every transitive dependant of the changed cell.
type SheetRepository struct {
	db                *bbolt.DB
	references        contracts.ReferenceValidator
	serializer        contracts.CellSerializer
	dependencyTree    contracts.CellDependencyTree
	webhookDispatcher contracts.WebhookDispatcher

	// evaluators are not safe for concurrent use, one per transaction
	evaluatorPool sync.Pool
}

var errorNoChanges = fmt.Errorf("no changes")

func NewSheetRepository(
	db *bbolt.DB, references contracts.ReferenceValidator,
	serializer contracts.CellSerializer, webhookDispatcher contracts.WebhookDispatcher,
) *SheetRepository {
	return &SheetRepository{
		db:                db,
		references:        references,
		serializer:        serializer,
		dependencyTree:    &CellDependencyTree{},
		webhookDispatcher: webhookDispatcher,

		evaluatorPool: sync.Pool{
			New: func() any {
				return NewFormulaEvaluator(references)
			},
		},
	}
}

func (s *SheetRepository) SetCell(sheetId string, cellId string, formula contracts.Formula) (cell *contracts.Cell, err error) {
	sheetId = strings.ToLower(sheetId)
	sheetIdByte := []byte(sheetId)

	if !s.references.IsCellReference(cellId) {
		return nil, fmt.Errorf("cell_id `%s`: %w", cellId, contracts.CellIdInvalidError)
	}

	canonicalKey := s.references.Canonicalize(cellId)
	changed := make([]*contracts.Cell, 0, 1)

	err = s.db.Batch(func(tx *bbolt.Tx) error {
		// Batch may re-run the function
		changed = changed[:0]

		bucket, err := tx.CreateBucketIfNotExists(sheetIdByte)
		if err != nil {
			return err
		}

		getCell := s.makeCellGetter(tx, sheetIdByte)

		cell = &contracts.Cell{CanonicalKey: canonicalKey, Formula: formula}
		cell.Value, cell.Error = s.evaluateFormula(formula, getCell)

		serializedData := s.serializer.Marshal(cell)
		canonicalKeyByte := []byte(canonicalKey)
		if bytes.Equal(bucket.Get(canonicalKeyByte), serializedData) {
			return errorNoChanges
		}

		if err = bucket.Put(canonicalKeyByte, serializedData); err != nil {
			return err
		}

		err = s.dependencyTree.SetDependsOn(tx, sheetIdByte, canonicalKey, s.references.ExtractReferences(formula))
		if err != nil {
			return err
		}

		changed = append(changed, cell)
		return s.recalculateDependants(bucket, getCell, s.dependencyTree.GetDependants(tx, sheetIdByte, canonicalKey), &changed)
	})

	if err == errorNoChanges {
		return cell, nil
	}
	if err != nil {
		return nil, err
	}

	s.webhookDispatcher.Notify(sheetId, changed)
	return cell, nil
}

func (s *SheetRepository) GetCell(sheetId string, cellId string) (cell *contracts.Cell, err error) {
	sheetId = strings.ToLower(sheetId)
	sheetIdByte := []byte(sheetId)

	canonicalKey := []byte(s.references.Canonicalize(cellId))

	err = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(sheetIdByte)
		if bucket == nil {
			return fmt.Errorf("%s: %w", sheetId, contracts.SheetNotFoundError)
		}

		byteValue := bucket.Get(canonicalKey)
		if byteValue == nil {
			return fmt.Errorf("%s: %w", cellId, contracts.CellNotFoundError)
		}

		cell, err = s.serializer.Unmarshal(byteValue)
		if err != nil {
			return err
		}

		cell.Value, cell.Error = s.evaluateFormula(cell.Formula, s.makeCellGetter(tx, sheetIdByte))
		return nil
	})

	return
}

func (s *SheetRepository) GetCellList(sheetId string) (*contracts.CellList, error) {
	sheetId = strings.ToLower(sheetId)

	cellList := contracts.CellList{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sheetId))
		if bucket == nil {
			return fmt.Errorf("%s: %w", sheetId, contracts.SheetNotFoundError)
		}

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			cell, err := s.serializer.Unmarshal(v)
			if err == nil {
				cellList[cell.CanonicalKey] = cell
			}
		}
		return nil
	})

	return &cellList, err
}

// recalculateDependants re-evaluates dependants in tree order (direct
// dependants before transitive ones) and persists the ones that changed.
func (s *SheetRepository) recalculateDependants(bucket *bbolt.Bucket, getCell contracts.CellGetter, dependantIds []string, changed *[]*contracts.Cell) error {
	for _, dependantId := range dependantIds {
		byteValue := bucket.Get([]byte(dependantId))
		if byteValue == nil {
			continue
		}

		dependant, err := s.serializer.Unmarshal(byteValue)
		if err != nil {
			continue
		}

		value, errMessage := s.evaluateFormula(dependant.Formula, getCell)
		if value == dependant.Value && errMessage == dependant.Error {
			continue
		}

		dependant.Value = value
		dependant.Error = errMessage
		if err = bucket.Put([]byte(dependantId), s.serializer.Marshal(dependant)); err != nil {
			return err
		}

		*changed = append(*changed, dependant)
	}

	return nil
}

func (s *SheetRepository) evaluateFormula(formula contracts.Formula, getCell contracts.CellGetter) (float64, string) {
	evaluator := s.evaluatorPool.Get().(contracts.FormulaEvaluator)
	value := evaluator.Evaluate(formula, getCell)
	errMessage := evaluator.Error()
	s.evaluatorPool.Put(evaluator)

	return value, errMessage
}

func (s *SheetRepository) makeCellGetter(tx *bbolt.Tx, sheetId []byte) contracts.CellGetter {
	return func(label string) *contracts.Cell {
		bucket := tx.Bucket(sheetId)
		if bucket == nil {
			return nil
		}

		byteValue := bucket.Get([]byte(label))
		if byteValue == nil {
			return nil
		}

		cell, err := s.serializer.Unmarshal(byteValue)
		if err != nil {
			return nil
		}

		return cell
	}
}
