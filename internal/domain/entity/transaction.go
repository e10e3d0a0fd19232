package entity

import (
	"math/big"
)

// Transaction represents an Ethereum transaction as seen by the explorer
type Transaction struct {
	Hash             string   `json:"hash"`
	BlockNumber      uint64   `json:"block_number"`
	TransactionIndex uint     `json:"transaction_index"`
	From             string   `json:"from"`
	To               *string  `json:"to" rlp:"nil"` // Can be nil for contract creation
	Value            *big.Int `json:"value"`        // In wei
}

// IsContractCreation reports whether the transaction deploys a contract
func (t *Transaction) IsContractCreation() bool {
	return t.To == nil
}
