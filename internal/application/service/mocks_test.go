package service

import (
	"context"
	"ethereum-block-explorer/internal/domain/entity"
	"math/big"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockBlockchainService for testing
type MockBlockchainService struct {
	mock.Mock
}

func (m *MockBlockchainService) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBlockchainService) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockBlockchainService) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockBlockchainService) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockBlockchainService) GetBlockByNumber(ctx context.Context, blockNumber uint64) (*entity.Block, error) {
	args := m.Called(ctx, blockNumber)
	block, _ := args.Get(0).(*entity.Block)
	return block, args.Error(1)
}

func (m *MockBlockchainService) GetCode(ctx context.Context, address string) ([]byte, error) {
	args := m.Called(ctx, address)
	code, _ := args.Get(0).([]byte)
	return code, args.Error(1)
}

func (m *MockBlockchainService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessagingService is a mock implementation of MessagingService
type MockMessagingService struct {
	mock.Mock
	connected bool
}

func (m *MockMessagingService) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	if args.Error(0) == nil {
		m.connected = true
	}
	return args.Error(0)
}

func (m *MockMessagingService) Disconnect() error {
	args := m.Called()
	m.connected = false
	return args.Error(0)
}

func (m *MockMessagingService) IsConnected() bool {
	return m.connected
}

func (m *MockMessagingService) PublishSummary(ctx context.Context, summary *entity.ExplorationSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

// MockBlockStore for testing
type MockBlockStore struct {
	mock.Mock
}

func (m *MockBlockStore) RetrieveBlock(ctx context.Context, blockNumber uint64) (*entity.Block, error) {
	args := m.Called(ctx, blockNumber)
	block, _ := args.Get(0).(*entity.Block)
	return block, args.Error(1)
}

func (m *MockBlockStore) StoreBlock(ctx context.Context, block *entity.Block) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *MockBlockStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBlockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryBlockStore is an in-memory BlockStore
type memoryBlockStore struct {
	mu     sync.Mutex
	blocks map[uint64]*entity.Block
}

func newMemoryBlockStore() *memoryBlockStore {
	return &memoryBlockStore{blocks: make(map[uint64]*entity.Block)}
}

func (s *memoryBlockStore) RetrieveBlock(_ context.Context, blockNumber uint64) (*entity.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks[blockNumber], nil
}

func (s *memoryBlockStore) StoreBlock(_ context.Context, block *entity.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[block.Number] = block
	return nil
}

func (s *memoryBlockStore) HealthCheck(context.Context) error {
	return nil
}

func (s *memoryBlockStore) Close(context.Context) error {
	return nil
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func addressPtr(address string) *string {
	return &address
}

func newTx(hash, from string, to *string, value *big.Int) *entity.Transaction {
	return &entity.Transaction{
		Hash:  hash,
		From:  from,
		To:    to,
		Value: value,
	}
}

func newBlock(number uint64, uncles int, txs ...*entity.Transaction) *entity.Block {
	block := &entity.Block{
		Number:       number,
		Hash:         big.NewInt(int64(number)).Text(16),
		Transactions: txs,
	}
	for i := 0; i < uncles; i++ {
		block.Uncles = append(block.Uncles, big.NewInt(int64(number*10+uint64(i))).Text(16))
	}
	for i, tx := range txs {
		tx.BlockNumber = number
		tx.TransactionIndex = uint(i)
	}
	return block
}
