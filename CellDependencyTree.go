package main

import (
	"bytes"

	"go.etcd.io/bbolt"
)

// CellDependencyTree stores the reverse edges of the reference graph in a
// per-sheet bbolt bucket, so every cell whose formula references X is found
// with one prefix scan on X.
//
// Keys:
//
//	<dependingOn> 0x00 <dependant>  -> ""    (reverse edge, prefix-scannable)
//	0x00 0x00 <dependant>           -> joined depending-on list (for updates)
type CellDependencyTree struct{}

const Delimiter = byte(0x00)

var dependencyBucketPrefix = [4]byte{'_', '_', 'd', '_'}

func (t *CellDependencyTree) SetDependsOn(tx *bbolt.Tx, sheetId []byte, dependantCellId string, dependingOnCellIds []string) error {
	bucket, err := tx.CreateBucketIfNotExists(t.makeBucketId(sheetId))
	if err != nil {
		return err
	}

	listKey := t.makeDependingListKey(dependantCellId)

	staleEdges := map[string]bool{}
	if previous := bucket.Get(listKey); previous != nil {
		for _, oldId := range bytes.Split(previous, []byte{Delimiter}) {
			staleEdges[string(oldId)] = true
		}
	}

	addedEdges := false
	for _, dependingOnCellId := range dependingOnCellIds {
		if staleEdges[dependingOnCellId] {
			// already stored, keep it
			delete(staleEdges, dependingOnCellId)
			continue
		}

		addedEdges = true
		if err = bucket.Put(t.makeEdgeKey(dependantCellId, dependingOnCellId), []byte{}); err != nil {
			return err
		}
	}

	if !addedEdges && len(staleEdges) == 0 {
		return nil
	}

	for oldId := range staleEdges {
		if err = bucket.Delete(t.makeEdgeKey(dependantCellId, oldId)); err != nil {
			return err
		}
	}

	if len(dependingOnCellIds) == 0 {
		return bucket.Delete(listKey)
	}

	joined := make([][]byte, 0, len(dependingOnCellIds))
	for _, dependingOnCellId := range dependingOnCellIds {
		joined = append(joined, []byte(dependingOnCellId))
	}
	return bucket.Put(listKey, bytes.Join(joined, []byte{Delimiter}))
}

func (t *CellDependencyTree) GetDependants(tx *bbolt.Tx, sheetId []byte, dependingOnCellId string) []string {
	bucket := tx.Bucket(t.makeBucketId(sheetId))
	if bucket == nil {
		return []string{}
	}

	return t.fetchDependantsRecursive(bucket, dependingOnCellId, map[string]bool{
		dependingOnCellId: true,
	})
}

func (t *CellDependencyTree) fetchDependantsRecursive(bucket *bbolt.Bucket, dependingOnCellId string, visited map[string]bool) []string {
	dependants := t.fetchDirectDependants(bucket, dependingOnCellId)

	for _, dependantCellId := range dependants {
		if !visited[dependantCellId] {
			visited[dependantCellId] = true
			dependants = append(dependants, t.fetchDependantsRecursive(bucket, dependantCellId, visited)...)
		}
	}

	return dependants
}

func (t *CellDependencyTree) fetchDirectDependants(bucket *bbolt.Bucket, dependingOnCellId string) []string {
	dependants := make([]string, 0, 5)

	prefix := t.makeEdgePrefix(dependingOnCellId)
	c := bucket.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		dependants = append(dependants, string(k[len(prefix):]))
	}

	return dependants
}

func (t *CellDependencyTree) makeBucketId(sheetId []byte) []byte {
	if len(sheetId) == 0 {
		return nil
	}

	return append(dependencyBucketPrefix[:], sheetId...)
}

func (t *CellDependencyTree) makeDependingListKey(dependantCellId string) []byte {
	return append([]byte{Delimiter, Delimiter}, []byte(dependantCellId)...)
}

func (t *CellDependencyTree) makeEdgePrefix(dependingOnCellId string) []byte {
	return append([]byte(dependingOnCellId), Delimiter)
}

func (t *CellDependencyTree) makeEdgeKey(dependantCellId string, dependingOnCellId string) []byte {
	return append(t.makeEdgePrefix(dependingOnCellId), []byte(dependantCellId)...)
}
