package service

import (
	"context"
	"errors"
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/domain/service"
	"ethereum-block-explorer/internal/infrastructure/logger"
	"ethereum-block-explorer/pkg/utils"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrBlockNotFound is returned when the provider has no block for a requested number
var ErrBlockNotFound = errors.New("block not found")

// Session is the result of one exploration: the ingested blocks, the aggregated
// statistics and the contract classification cache used by the reports.
type Session struct {
	span    entity.BlockSpan
	network string
	blocks  []*entity.Block
	state   *AggregateState

	classifier      *ContractClassifier
	classifyWorkers int
	logger          *logger.Logger
}

func newSession(span entity.BlockSpan, network string, blockchainService service.BlockchainService, classifyWorkers int, logger *logger.Logger) *Session {
	if classifyWorkers < 1 {
		classifyWorkers = 1
	}
	return &Session{
		span:            span,
		network:         network,
		state:           NewAggregateState(),
		classifier:      NewContractClassifier(blockchainService, logger),
		classifyWorkers: classifyWorkers,
		logger:          logger,
	}
}

func (s *Session) ingest(block *entity.Block) {
	s.blocks = append(s.blocks, block)
	s.state.FoldBlock(block)
}

// Span returns the explored block span
func (s *Session) Span() entity.BlockSpan {
	return s.span
}

// Blocks returns the ingested blocks in ascending order
func (s *Session) Blocks() []*entity.Block {
	return s.blocks
}

// State returns the aggregated state
func (s *Session) State() *AggregateState {
	return s.state
}

// Classifier returns the session's contract classifier
func (s *Session) Classifier() *ContractClassifier {
	return s.classifier
}

// IsContract classifies a single address
func (s *Session) IsContract(ctx context.Context, address string) (bool, error) {
	return s.classifier.IsContract(ctx, address)
}

// Statistics returns the block statistics of the session
func (s *Session) Statistics() entity.Statistics {
	return entity.Statistics{
		TotalTransferred:    utils.WeiToEther(s.state.TotalTransferred),
		TotalTransferredWei: new(big.Int).Set(s.state.TotalTransferred),
		UniqueSenders:       s.state.SendingTotals.Len(),
		UniqueReceivers:     s.state.ReceivingTotals.Len(),
		ContractsCreated:    s.state.ContractsCreated,
		Uncles:              s.state.UnclesCount,
	}
}

// Summary returns the publishable summary of the session
func (s *Session) Summary() *entity.ExplorationSummary {
	stats := s.Statistics()
	return &entity.ExplorationSummary{
		Network:          s.network,
		StartBlock:       s.span.Start,
		EndBlock:         s.span.End,
		Transactions:     len(s.state.ProcessedTransactions),
		TotalTransferred: utils.FormatEther(stats.TotalTransferredWei),
		UniqueSenders:    stats.UniqueSenders,
		UniqueReceivers:  stats.UniqueReceivers,
		ContractsCreated: stats.ContractsCreated,
		Uncles:           stats.Uncles,
		GeneratedAt:      time.Now().UTC(),
	}
}

// SendersReport returns one row per sending address in first-seen order
func (s *Session) SendersReport(ctx context.Context) ([]entity.SenderReportRow, error) {
	addresses := s.state.SendingTotals.Addresses()
	contracts, err := s.classifyAll(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to build senders report: %w", err)
	}

	report := make([]entity.SenderReportRow, len(addresses))
	for i, address := range addresses {
		sent, _ := s.state.SendingTotals.Get(address)
		report[i] = entity.SenderReportRow{
			Address:  address,
			Sent:     utils.WeiToEther(sent),
			SentWei:  sent,
			Contract: contracts[i],
		}
	}
	return report, nil
}

// ReceiversReport returns one row per receiving address in first-seen order
func (s *Session) ReceiversReport(ctx context.Context) ([]entity.ReceiverReportRow, error) {
	addresses := s.state.ReceivingTotals.Addresses()
	contracts, err := s.classifyAll(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to build receivers report: %w", err)
	}

	report := make([]entity.ReceiverReportRow, len(addresses))
	for i, address := range addresses {
		received, _ := s.state.ReceivingTotals.Get(address)
		report[i] = entity.ReceiverReportRow{
			Address:     address,
			Received:    utils.WeiToEther(received),
			ReceivedWei: received,
			Contract:    contracts[i],
		}
	}
	return report, nil
}

// classifyAll classifies addresses concurrently; result i belongs to addresses[i]
func (s *Session) classifyAll(ctx context.Context, addresses []string) ([]bool, error) {
	contracts := make([]bool, len(addresses))
	s.logger.Debug("Classifying addresses",
		zap.Int("addresses", len(addresses)),
		zap.Int("workers", s.classifyWorkers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.classifyWorkers)

	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			isContract, err := s.classifier.IsContract(gctx, address)
			if err != nil {
				return err
			}
			contracts[i] = isContract
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contracts, nil
}
