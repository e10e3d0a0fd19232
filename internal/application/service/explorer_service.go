package service

import (
	"context"
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/domain/repository"
	"ethereum-block-explorer/internal/domain/service"
	"ethereum-block-explorer/internal/infrastructure/config"
	"ethereum-block-explorer/internal/infrastructure/logger"
	apperrors "ethereum-block-explorer/pkg/errors"
	"ethereum-block-explorer/pkg/utils"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExplorerService resolves block ranges, ingests the blocks and hands back a Session
// holding the aggregated statistics.
type ExplorerService struct {
	blockchainService service.BlockchainService
	messagingService  service.MessagingService
	blockStore        repository.BlockStore
	config            *config.Config
	logger            *logger.Logger
}

// NewExplorerService creates new explorer service. blockStore and messagingService may be nil.
func NewExplorerService(
	blockchainService service.BlockchainService,
	messagingService service.MessagingService,
	blockStore repository.BlockStore,
	config *config.Config,
	logger *logger.Logger,
) *ExplorerService {
	return &ExplorerService{
		blockchainService: blockchainService,
		messagingService:  messagingService,
		blockStore:        blockStore,
		config:            config,
		logger:            logger.WithComponent("explorer-service"),
	}
}

// Explore resolves params against the current chain height and ingests the resulting span
func (s *ExplorerService) Explore(ctx context.Context, params []string) (*Session, error) {
	currentBlock, err := s.blockchainService.GetLatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current block: %w", asProviderError(apperrors.MethodBlockNumber, err))
	}

	span := ResolveRange(params, currentBlock, s.logger)
	return s.ExploreSpan(ctx, span)
}

// ExploreSpan ingests every block of span into a fresh session. An inverted span is
// explored in ascending order. Any block that cannot be fetched fails the whole exploration.
func (s *ExplorerService) ExploreSpan(ctx context.Context, span entity.BlockSpan) (*Session, error) {
	if span.Start > span.End {
		s.logger.Debug("Normalizing inverted block span",
			zap.Uint64("start", span.Start),
			zap.Uint64("end", span.End))
		span = entity.BlockSpan{
			Start: utils.MinUint64(span.Start, span.End),
			End:   utils.MaxUint64(span.Start, span.End),
		}
	}

	start := time.Now()
	s.logger.Info("Exploring block range",
		zap.Uint64("start", span.Start),
		zap.Uint64("end", span.End),
		zap.Int("block_count", span.Len()))

	blocks, err := s.fetchBlocks(ctx, span)
	if err != nil {
		return nil, err
	}

	session := newSession(span, s.config.Ethereum.Network, s.blockchainService, s.classifyWorkers(), s.logger)
	for _, block := range blocks {
		session.ingest(block)
	}

	s.logger.Info("Block range explored",
		zap.Uint64("start", span.Start),
		zap.Uint64("end", span.End),
		zap.Int("transactions", len(session.state.ProcessedTransactions)),
		zap.String("duration", utils.FormatDuration(time.Since(start))))

	s.publishSummary(ctx, session)

	return session, nil
}

// CheckBlockStore health checks the block store. An unhealthy store is closed and caching
// is disabled for the lifetime of the service.
func (s *ExplorerService) CheckBlockStore(ctx context.Context) error {
	if s.blockStore == nil {
		return nil
	}

	if err := s.blockStore.HealthCheck(ctx); err != nil {
		s.logger.Warn("Block cache failed health check, caching disabled", zap.Error(err))
		if closeErr := s.blockStore.Close(ctx); closeErr != nil {
			s.logger.Warn("Error closing block store", zap.Error(closeErr))
		}
		s.blockStore = nil
		return err
	}
	return nil
}

// Close closes the block store, if any
func (s *ExplorerService) Close(ctx context.Context) error {
	if s.blockStore == nil {
		return nil
	}
	return s.blockStore.Close(ctx)
}

// fetchBlocks returns the blocks of span in ascending order. With more than one fetch
// worker the requests run concurrently but results are merged back in block order.
func (s *ExplorerService) fetchBlocks(ctx context.Context, span entity.BlockSpan) ([]*entity.Block, error) {
	numbers := span.Numbers()
	blocks := make([]*entity.Block, len(numbers))

	workers := s.config.Explorer.FetchWorkers
	if workers <= 1 {
		for i, number := range numbers {
			block, err := s.fetchBlock(ctx, number)
			if err != nil {
				return nil, err
			}
			blocks[i] = block
		}
		return blocks, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, number := range numbers {
		i, number := i, number
		g.Go(func() error {
			block, err := s.fetchBlock(gctx, number)
			if err != nil {
				return err
			}
			blocks[i] = block
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// fetchBlock reads through the block store; store failures only cost a provider round-trip
func (s *ExplorerService) fetchBlock(ctx context.Context, blockNumber uint64) (*entity.Block, error) {
	log := s.logger.WithBlock(blockNumber)

	if s.blockStore != nil {
		cached, err := s.blockStore.RetrieveBlock(ctx, blockNumber)
		if err != nil {
			log.Warn("Failed to read block from cache, using provider", zap.Error(err))
		} else if cached != nil {
			log.Debug("Block served from cache")
			return cached, nil
		}
	}

	block, err := s.blockchainService.GetBlockByNumber(ctx, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %d: %w", blockNumber, asProviderError(apperrors.MethodGetBlockByNumber, err))
	}
	if block == nil {
		return nil, fmt.Errorf("failed to get block %d: %w", blockNumber,
			apperrors.NewProviderError(apperrors.MethodGetBlockByNumber, ErrBlockNotFound))
	}

	if s.blockStore != nil {
		if err := s.blockStore.StoreBlock(ctx, block); err != nil {
			log.Warn("Failed to write block to cache", zap.Error(err))
		}
	}

	return block, nil
}

// publishSummary publishes the session summary when a messaging service is connected
func (s *ExplorerService) publishSummary(ctx context.Context, session *Session) {
	if s.messagingService == nil || !s.messagingService.IsConnected() {
		return
	}

	if err := s.messagingService.PublishSummary(ctx, session.Summary()); err != nil {
		s.logger.Warn("Failed to publish exploration summary", zap.Error(err))
	}
}

func (s *ExplorerService) classifyWorkers() int {
	if s.config.Explorer.ClassifyWorkers <= 0 {
		return 1
	}
	return s.config.Explorer.ClassifyWorkers
}
