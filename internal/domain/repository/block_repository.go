package repository

import (
	"context"
	"ethereum-block-explorer/internal/domain/entity"
)

// BlockStore is a best-effort cache of block data that shadows the blockchain provider.
// It is never a source of truth; callers fall through to the provider on any error.
type BlockStore interface {
	// RetrieveBlock returns the cached block, or nil when the block is not cached
	RetrieveBlock(ctx context.Context, blockNumber uint64) (*entity.Block, error)

	// StoreBlock writes a block fetched from the provider
	StoreBlock(ctx context.Context, block *entity.Block) error

	// HealthCheck reports whether the storage is reachable
	HealthCheck(ctx context.Context) error

	// Close releases the underlying storage
	Close(ctx context.Context) error
}
