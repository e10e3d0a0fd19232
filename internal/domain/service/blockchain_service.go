package service

import (
	"context"
	"ethereum-block-explorer/internal/domain/entity"
)

// BlockchainService interface for blockchain interactions
type BlockchainService interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool

	// Block operations
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
	GetBlockByNumber(ctx context.Context, blockNumber uint64) (*entity.Block, error)

	// Account operations

	// GetCode returns the bytecode deployed at address; empty for externally owned accounts
	GetCode(ctx context.Context, address string) ([]byte, error)

	// Health check
	HealthCheck(ctx context.Context) error
}
