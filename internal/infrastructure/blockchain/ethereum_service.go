package blockchain

import (
	"context"
	"encoding/json"
	"errors"
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/domain/service"
	"ethereum-block-explorer/internal/infrastructure/config"
	"ethereum-block-explorer/internal/infrastructure/logger"
	apperrors "ethereum-block-explorer/pkg/errors"
	"ethereum-block-explorer/pkg/utils"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"
)

// EthereumService implements BlockchainService for Ethereum
type EthereumService struct {
	client *ethclient.Client
	config *config.EthereumConfig
	logger *logger.Logger

	mu              sync.Mutex
	isConnected     bool
	lastRequestTime time.Time
	minRequestDelay time.Duration
}

// NewEthereumService creates new Ethereum service
func NewEthereumService(cfg *config.EthereumConfig, logger *logger.Logger) service.BlockchainService {
	return &EthereumService{
		config:          cfg,
		logger:          logger.WithComponent("ethereum-service"),
		minRequestDelay: cfg.RateLimit,
	}
}

// Connect connects to Ethereum node
func (s *EthereumService) Connect(ctx context.Context) error {
	s.logger.Debug("Connecting to Ethereum node", zap.String("network", s.config.Network))

	client, err := ethclient.DialContext(ctx, s.config.RPCURL)
	if err != nil {
		s.logger.Error("Failed to connect to Ethereum node", zap.Error(err))
		return apperrors.NewProviderError("dial", err)
	}

	s.mu.Lock()
	s.client = client
	s.isConnected = true
	s.mu.Unlock()

	// Verify connection
	if err := s.HealthCheck(ctx); err != nil {
		s.logger.Error("Health check failed after connection", zap.Error(err))
		s.Disconnect()
		return err
	}

	s.logger.Debug("Successfully connected to Ethereum node")
	return nil
}

// Disconnect disconnects from Ethereum node
func (s *EthereumService) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	s.isConnected = false
	return nil
}

// IsConnected checks if connected to Ethereum node
func (s *EthereumService) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isConnected && s.client != nil
}

// GetLatestBlockNumber gets latest block number
func (s *EthereumService) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	client, err := s.connectedClient(apperrors.MethodBlockNumber)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	s.rateLimit()
	blockNumber, err := client.BlockNumber(ctx)
	if err != nil {
		s.logger.Error("Failed to get latest block number", zap.Error(err))
		return 0, apperrors.NewProviderError(apperrors.MethodBlockNumber, err)
	}

	return blockNumber, nil
}

// rpcBlock is the subset of an eth_getBlockByNumber result the explorer uses. Uncles are
// read as hashes so no per-uncle round-trips are needed.
type rpcBlock struct {
	Number       hexutil.Uint64   `json:"number"`
	Hash         common.Hash      `json:"hash"`
	Transactions []rpcTransaction `json:"transactions"`
	Uncles       []common.Hash    `json:"uncles"`
}

// rpcTransaction is a full transaction object along with the sender reported by the node
type rpcTransaction struct {
	tx   *types.Transaction
	From *common.Address
}

func (t *rpcTransaction) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &t.tx); err != nil {
		return err
	}

	var extra struct {
		From *common.Address `json:"from"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	t.From = extra.From
	return nil
}

// GetBlockByNumber gets block by number with all its transactions. A block the node does not
// know yields nil, nil.
func (s *EthereumService) GetBlockByNumber(ctx context.Context, blockNumber uint64) (*entity.Block, error) {
	client, err := s.connectedClient(apperrors.MethodGetBlockByNumber)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	s.logger.Debug("Getting block by number", zap.Uint64("block_number", blockNumber))

	s.rateLimit()
	var raw json.RawMessage
	err = client.Client().CallContext(ctx, &raw, apperrors.MethodGetBlockByNumber, hexutil.EncodeUint64(blockNumber), true)
	if err != nil {
		s.logger.Error("Failed to get block by number",
			zap.Uint64("block_number", blockNumber),
			zap.Error(err))
		return nil, apperrors.NewProviderError(apperrors.MethodGetBlockByNumber, err)
	}

	var block *rpcBlock
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &block); err != nil {
			return nil, apperrors.NewProviderError(apperrors.MethodGetBlockByNumber,
				fmt.Errorf("failed to decode block %d: %w", blockNumber, err))
		}
	}
	if block == nil {
		return nil, nil
	}

	return s.convertBlock(ctx, client, block)
}

// GetCode gets the bytecode deployed at address at the latest block
func (s *EthereumService) GetCode(ctx context.Context, address string) ([]byte, error) {
	if !utils.ValidateEthereumAddress(address) {
		return nil, apperrors.NewProviderError(apperrors.MethodGetCode,
			fmt.Errorf("invalid address %q", address))
	}

	client, err := s.connectedClient(apperrors.MethodGetCode)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	s.rateLimit()
	code, err := client.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		s.logger.Error("Failed to get code",
			zap.String("address", address),
			zap.Error(err))
		return nil, apperrors.NewProviderError(apperrors.MethodGetCode, err)
	}

	return code, nil
}

// HealthCheck performs health check
func (s *EthereumService) HealthCheck(ctx context.Context) error {
	_, err := s.GetLatestBlockNumber(ctx)
	return err
}

func (s *EthereumService) connectedClient(method string) (*ethclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isConnected || s.client == nil {
		return nil, apperrors.NewProviderError(method, ErrNotConnected)
	}
	return s.client, nil
}

// requestContext bounds a single provider call by the configured request timeout
func (s *EthereumService) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.RequestTimeout)
}

// convertBlock converts a JSON-RPC block to entity.Block
func (s *EthereumService) convertBlock(ctx context.Context, client *ethclient.Client, block *rpcBlock) (*entity.Block, error) {
	number := uint64(block.Number)

	uncles := make([]string, len(block.Uncles))
	for i, uncle := range block.Uncles {
		uncles[i] = uncle.Hex()
	}

	transactions := make([]*entity.Transaction, 0, len(block.Transactions))
	for i, rtx := range block.Transactions {
		from, err := s.senderOf(ctx, client, block.Hash, rtx, uint(i))
		if err != nil {
			return nil, apperrors.NewProviderError(apperrors.MethodGetBlockByNumber,
				fmt.Errorf("failed to extract sender of %s: %w", rtx.tx.Hash().Hex(), err))
		}
		transactions = append(transactions, convertTransaction(rtx.tx, number, uint(i), from))
	}

	return &entity.Block{
		Number:       number,
		Hash:         block.Hash.Hex(),
		Uncles:       uncles,
		Transactions: transactions,
	}, nil
}

// senderOf prefers the sender reported by the node, then recovers it locally and only asks
// the node again when no signer matches
func (s *EthereumService) senderOf(ctx context.Context, client *ethclient.Client, blockHash common.Hash, rtx rpcTransaction, index uint) (string, error) {
	if rtx.From != nil {
		return rtx.From.Hex(), nil
	}

	tx := rtx.tx
	signers := []types.Signer{
		types.LatestSigner(params.MainnetChainConfig),
	}
	if chainID := tx.ChainId(); chainID != nil && chainID.Sign() > 0 {
		signers = append(signers, types.LatestSignerForChainID(chainID))
	}
	signers = append(signers, types.HomesteadSigner{}, types.FrontierSigner{})

	for _, signer := range signers {
		if from, err := types.Sender(signer, tx); err == nil {
			return from.Hex(), nil
		}
	}

	if client == nil {
		return "", ErrSenderUnavailable
	}

	s.logger.Debug("Falling back to node for transaction sender",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint8("tx_type", tx.Type()))

	from, err := client.TransactionSender(ctx, tx, blockHash, index)
	if err != nil {
		return "", err
	}
	return from.Hex(), nil
}

// convertTransaction converts go-ethereum Transaction to entity.Transaction
func convertTransaction(tx *types.Transaction, blockNumber uint64, txIndex uint, from string) *entity.Transaction {
	var to *string
	if tx.To() != nil {
		toAddr := tx.To().Hex()
		to = &toAddr
	}

	return &entity.Transaction{
		Hash:             tx.Hash().Hex(),
		BlockNumber:      blockNumber,
		TransactionIndex: txIndex,
		From:             from,
		To:               to,
		Value:            new(big.Int).Set(tx.Value()),
	}
}

// Common errors
var (
	ErrNotConnected      = errors.New("not connected to blockchain node")
	ErrSenderUnavailable = errors.New("transaction sender could not be recovered")
)

// rateLimit ensures minimum delay between requests
func (s *EthereumService) rateLimit() {
	if s.minRequestDelay <= 0 {
		return
	}

	s.mu.Lock()
	wait := s.minRequestDelay - time.Since(s.lastRequestTime)
	if wait < 0 {
		wait = 0
	}
	s.lastRequestTime = time.Now().Add(wait)
	s.mu.Unlock()

	time.Sleep(wait)
}
