package service

import (
	"ethereum-block-explorer/internal/domain/entity"
	"math/big"
)

// AddressTotals accumulates wei amounts per address, remembering first-seen order
type AddressTotals struct {
	order  []string
	totals map[string]*big.Int
}

func newAddressTotals() *AddressTotals {
	return &AddressTotals{totals: make(map[string]*big.Int)}
}

// Add accumulates amount into the total for address
func (t *AddressTotals) Add(address string, amount *big.Int) {
	total, ok := t.totals[address]
	if !ok {
		total = new(big.Int)
		t.totals[address] = total
		t.order = append(t.order, address)
	}
	total.Add(total, amount)
}

// Get returns a copy of the total for address
func (t *AddressTotals) Get(address string) (*big.Int, bool) {
	total, ok := t.totals[address]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(total), true
}

// Len returns the number of distinct addresses
func (t *AddressTotals) Len() int {
	return len(t.order)
}

// Addresses returns the addresses in first-seen order
func (t *AddressTotals) Addresses() []string {
	addresses := make([]string, len(t.order))
	copy(addresses, t.order)
	return addresses
}

// Sum returns the sum of every address total
func (t *AddressTotals) Sum() *big.Int {
	sum := new(big.Int)
	for _, total := range t.totals {
		sum.Add(sum, total)
	}
	return sum
}

// AggregateState holds the running statistics of one exploration session.
// Amounts are kept in wei so sums are exact; ether is derived when reporting.
type AggregateState struct {
	SendingTotals         *AddressTotals
	ReceivingTotals       *AddressTotals
	ContractsCreated      int
	TotalTransferred      *big.Int
	UnclesCount           int
	ProcessedTransactions []*entity.Transaction
}

// NewAggregateState creates an empty aggregate state
func NewAggregateState() *AggregateState {
	return &AggregateState{
		SendingTotals:    newAddressTotals(),
		ReceivingTotals:  newAddressTotals(),
		TotalTransferred: new(big.Int),
	}
}

// FoldBlock folds the block's uncles and transactions into the state
func (s *AggregateState) FoldBlock(block *entity.Block) {
	s.UnclesCount += block.UncleCount()
	s.ProcessedTransactions = append(s.ProcessedTransactions, block.Transactions...)

	for _, tx := range block.Transactions {
		s.foldTransaction(tx)
	}
}

func (s *AggregateState) foldTransaction(tx *entity.Transaction) {
	if tx.IsContractCreation() {
		s.ContractsCreated++
		return
	}

	// Zero value transfers carry no ether and are left out of the totals
	if tx.Value == nil || tx.Value.Sign() == 0 {
		return
	}

	s.TotalTransferred.Add(s.TotalTransferred, tx.Value)
	s.SendingTotals.Add(tx.From, tx.Value)
	s.ReceivingTotals.Add(*tx.To, tx.Value)
}
