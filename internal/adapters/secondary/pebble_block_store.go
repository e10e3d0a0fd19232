package secondary

import (
	"context"
	"encoding/binary"
	"errors"
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/domain/repository"
	apperrors "ethereum-block-explorer/pkg/errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/rlp"
)

// blockKeyPrefix prefixes block entries: "b" + big-endian block number
var blockKeyPrefix = []byte("b")

// healthKey is read by HealthCheck and never written
var healthKey = []byte("h")

// PebbleBlockStore implements BlockStore on a local Pebble database, storing RLP encoded blocks
type PebbleBlockStore struct {
	db *pebble.DB
}

// NewPebbleBlockStore opens (or creates) the Pebble database at path
func NewPebbleBlockStore(path string) (repository.BlockStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, apperrors.NewCacheError(fmt.Sprintf("failed to open pebble database at %s", path), err)
	}
	return &PebbleBlockStore{db: db}, nil
}

// BlockKey returns the Pebble key of a block number
func BlockKey(blockNumber uint64) []byte {
	key := make([]byte, len(blockKeyPrefix)+8)
	copy(key, blockKeyPrefix)
	binary.BigEndian.PutUint64(key[len(blockKeyPrefix):], blockNumber)
	return key
}

// BlockKeyBounds returns the key range covering every cached block
func BlockKeyBounds() (lower, upper []byte) {
	upper = []byte{blockKeyPrefix[0] + 1}
	return blockKeyPrefix, upper
}

// RetrieveBlock gets block by number
func (s *PebbleBlockStore) RetrieveBlock(_ context.Context, blockNumber uint64) (*entity.Block, error) {
	value, closer, err := s.db.Get(BlockKey(blockNumber))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewCacheError(fmt.Sprintf("failed to read block %d", blockNumber), err)
	}
	defer closer.Close()

	var block entity.Block
	if err := rlp.DecodeBytes(value, &block); err != nil {
		return nil, apperrors.NewCacheError(fmt.Sprintf("failed to decode block %d", blockNumber), err)
	}

	for _, tx := range block.Transactions {
		tx.BlockNumber = block.Number
	}

	return &block, nil
}

// StoreBlock writes block under its number
func (s *PebbleBlockStore) StoreBlock(_ context.Context, block *entity.Block) error {
	encoded, err := rlp.EncodeToBytes(block)
	if err != nil {
		return apperrors.NewCacheError(fmt.Sprintf("failed to encode block %d", block.Number), err)
	}

	if err := s.db.Set(BlockKey(block.Number), encoded, pebble.Sync); err != nil {
		return apperrors.NewCacheError(fmt.Sprintf("failed to write block %d", block.Number), err)
	}
	return nil
}

// HealthCheck performs a read against the database
func (s *PebbleBlockStore) HealthCheck(_ context.Context) error {
	_, closer, err := s.db.Get(healthKey)
	if err == nil {
		return closer.Close()
	}
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	return apperrors.NewCacheError("pebble block cache is unreadable", err)
}

// Close closes the Pebble database
func (s *PebbleBlockStore) Close(_ context.Context) error {
	return s.db.Close()
}
