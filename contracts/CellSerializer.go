package contracts

type CellSerializer interface {
	Marshal(cell *Cell) []byte
	Unmarshal(data []byte) (*Cell, error)
}
