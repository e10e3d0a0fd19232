package service

import (
	"context"
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/domain/service"
	"ethereum-block-explorer/internal/infrastructure/logger"
	apperrors "ethereum-block-explorer/pkg/errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ContractClassifier decides whether addresses hold contract code and memoizes the answer.
// Concurrent lookups of the same address share a single provider round-trip.
type ContractClassifier struct {
	blockchainService service.BlockchainService
	logger            *logger.Logger

	mu       sync.RWMutex
	statuses map[string]entity.ContractStatus
	group    singleflight.Group
}

// NewContractClassifier creates a classifier with an empty cache
func NewContractClassifier(blockchainService service.BlockchainService, logger *logger.Logger) *ContractClassifier {
	return &ContractClassifier{
		blockchainService: blockchainService,
		logger:            logger.WithComponent("contract-classifier"),
		statuses:          make(map[string]entity.ContractStatus),
	}
}

// IsContract reports whether address has code deployed. A known contract stays a contract
// on every call.
func (c *ContractClassifier) IsContract(ctx context.Context, address string) (bool, error) {
	if status := c.Status(address); status != entity.ContractStatusUnknown {
		return status == entity.ContractStatusContract, nil
	}

	// The shared lookup outlives any single caller so one cancellation cannot fail the
	// others. The provider bounds it with its request timeout.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(address, func() (interface{}, error) {
		if status := c.Status(address); status != entity.ContractStatusUnknown {
			return status, nil
		}

		code, err := c.blockchainService.GetCode(shared, address)
		if err != nil {
			return entity.ContractStatusUnknown, err
		}

		status := entity.ContractStatusAccount
		if len(code) > 0 {
			status = entity.ContractStatusContract
		}

		c.mu.Lock()
		c.statuses[address] = status
		c.mu.Unlock()

		c.logger.Debug("Classified address",
			zap.String("address", address),
			zap.String("status", status.String()))

		return status, nil
	})

	select {
	case <-ctx.Done():
		return false, asProviderError(apperrors.MethodGetCode, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return false, asProviderError(apperrors.MethodGetCode, res.Err)
		}
		return res.Val.(entity.ContractStatus) == entity.ContractStatusContract, nil
	}
}

// Status returns the cached classification of address
func (c *ContractClassifier) Status(address string) entity.ContractStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statuses[address]
}

// KnownContracts returns every address classified as a contract, sorted
func (c *ContractClassifier) KnownContracts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	contracts := make([]string, 0, len(c.statuses))
	for address, status := range c.statuses {
		if status == entity.ContractStatusContract {
			contracts = append(contracts, address)
		}
	}
	sort.Strings(contracts)
	return contracts
}

// asProviderError makes sure err carries the failed provider method
func asProviderError(method string, err error) error {
	if apperrors.IsProviderError(err) {
		return err
	}
	return apperrors.NewProviderError(method, err)
}
