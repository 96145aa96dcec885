package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"sheetCalc/contracts"
)

var SerializerError = errors.New("invalid serialized data")

// CellBinarySerializer encodes a cell as length-prefixed fields:
// u16 key length + key, f64 value bits, u16 error length + error,
// u16 token count, then u16 length + bytes per formula token.
// All integers are little endian.
type CellBinarySerializer struct {
}

func NewCellBinarySerializer() *CellBinarySerializer {
	return &CellBinarySerializer{}
}

func (s *CellBinarySerializer) Marshal(cell *contracts.Cell) []byte {
	keyBytes := []byte(cell.CanonicalKey)
	errBytes := []byte(cell.Error)

	size := 2 + len(keyBytes) + 8 + 2 + len(errBytes) + 2
	for _, token := range cell.Formula {
		size += 2 + len(token)
	}

	data := make([]byte, 0, size)
	data = binary.LittleEndian.AppendUint16(data, uint16(len(keyBytes)))
	data = append(data, keyBytes...)
	data = binary.LittleEndian.AppendUint64(data, math.Float64bits(cell.Value))
	data = binary.LittleEndian.AppendUint16(data, uint16(len(errBytes)))
	data = append(data, errBytes...)

	data = binary.LittleEndian.AppendUint16(data, uint16(len(cell.Formula)))
	for _, token := range cell.Formula {
		data = binary.LittleEndian.AppendUint16(data, uint16(len(token)))
		data = append(data, token...)
	}

	return data
}

func (s *CellBinarySerializer) Unmarshal(data []byte) (*contracts.Cell, error) {
	cell := &contracts.Cell{Formula: contracts.Formula{}}

	key, data, err := s.readString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: key: %s", SerializerError, err)
	}
	cell.CanonicalKey = key

	if len(data) < 8 {
		return nil, fmt.Errorf("%w: value needs 8 bytes, got %d", SerializerError, len(data))
	}
	cell.Value = math.Float64frombits(binary.LittleEndian.Uint64(data))
	data = data[8:]

	errMessage, data, err := s.readString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: error message: %s", SerializerError, err)
	}
	cell.Error = errMessage

	if len(data) < 2 {
		return nil, fmt.Errorf("%w: missing token count", SerializerError)
	}
	tokenCount := int(binary.LittleEndian.Uint16(data))
	data = data[2:]

	for i := 0; i < tokenCount; i++ {
		var token string
		token, data, err = s.readString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: %s", SerializerError, i, err)
		}
		cell.Formula = append(cell.Formula, token)
	}

	return cell, nil
}

func (s *CellBinarySerializer) readString(data []byte) (string, []byte, error) {
	if len(data) < 2 {
		return "", nil, errors.New("missing length prefix")
	}

	length := int(binary.LittleEndian.Uint16(data))
	if len(data) < 2+length {
		return "", nil, fmt.Errorf("declared %d bytes, %d available", length, len(data)-2)
	}

	return string(data[2 : 2+length]), data[2+length:], nil
}
