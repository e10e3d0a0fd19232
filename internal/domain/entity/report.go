package entity

import (
	"math/big"
	"time"
)

// SenderReportRow is one row of the ether senders report
type SenderReportRow struct {
	Address  string     `json:"address"`
	Sent     *big.Float `json:"sent"` // In ether
	SentWei  *big.Int   `json:"sent_wei"`
	Contract bool       `json:"contract"`
}

// ReceiverReportRow is one row of the ether receivers report
type ReceiverReportRow struct {
	Address     string     `json:"address"`
	Received    *big.Float `json:"received"` // In ether
	ReceivedWei *big.Int   `json:"received_wei"`
	Contract    bool       `json:"contract"`
}

// Statistics summarises an exploration session
type Statistics struct {
	TotalTransferred    *big.Float `json:"total_transferred"` // In ether
	TotalTransferredWei *big.Int   `json:"total_transferred_wei"`
	UniqueSenders       int        `json:"unique_senders"`
	UniqueReceivers     int        `json:"unique_receivers"`
	ContractsCreated    int        `json:"contracts_created"`
	Uncles              int        `json:"uncles"`
}

// ExplorationSummary is the event published once an exploration completes
type ExplorationSummary struct {
	Network          string    `json:"network"`
	StartBlock       uint64    `json:"start_block"`
	EndBlock         uint64    `json:"end_block"`
	Transactions     int       `json:"transactions"`
	TotalTransferred string    `json:"total_transferred"`
	UniqueSenders    int       `json:"unique_senders"`
	UniqueReceivers  int       `json:"unique_receivers"`
	ContractsCreated int       `json:"contracts_created"`
	Uncles           int       `json:"uncles"`
	GeneratedAt      time.Time `json:"generated_at"`
}
