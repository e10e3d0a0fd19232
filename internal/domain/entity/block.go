package entity

// Block represents the subset of an Ethereum block the explorer aggregates over
type Block struct {
	Number       uint64         `json:"number"`
	Hash         string         `json:"hash"`
	Uncles       []string       `json:"uncles"`
	Transactions []*Transaction `json:"transactions"`
}

// UncleCount returns the number of uncles referenced by the block
func (b *Block) UncleCount() int {
	return len(b.Uncles)
}
