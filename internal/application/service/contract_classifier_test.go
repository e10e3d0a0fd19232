package service

import (
	"context"
	"errors"
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/infrastructure/logger"
	apperrors "ethereum-block-explorer/pkg/errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestContractClassifier_Contract(t *testing.T) {
	bs := new(MockBlockchainService)
	bs.On("GetCode", mock.Anything, "0xc0de").Return([]byte{0x60, 0x80}, nil).Once()

	classifier := NewContractClassifier(bs, logger.NewNop())

	isContract, err := classifier.IsContract(context.Background(), "0xc0de")
	require.NoError(t, err)
	assert.True(t, isContract)

	// Second lookup is served from cache and stays true
	isContract, err = classifier.IsContract(context.Background(), "0xc0de")
	require.NoError(t, err)
	assert.True(t, isContract)

	assert.Equal(t, entity.ContractStatusContract, classifier.Status("0xc0de"))
	assert.Equal(t, []string{"0xc0de"}, classifier.KnownContracts())
	bs.AssertNumberOfCalls(t, "GetCode", 1)
}

func TestContractClassifier_Account(t *testing.T) {
	bs := new(MockBlockchainService)
	bs.On("GetCode", mock.Anything, "0xa11ce").Return([]byte{}, nil).Once()

	classifier := NewContractClassifier(bs, logger.NewNop())

	for i := 0; i < 2; i++ {
		isContract, err := classifier.IsContract(context.Background(), "0xa11ce")
		require.NoError(t, err)
		assert.False(t, isContract)
	}

	assert.Equal(t, entity.ContractStatusAccount, classifier.Status("0xa11ce"))
	assert.Empty(t, classifier.KnownContracts())
	bs.AssertNumberOfCalls(t, "GetCode", 1)
}

func TestContractClassifier_ProviderError(t *testing.T) {
	bs := new(MockBlockchainService)
	bs.On("GetCode", mock.Anything, "0xbad").Return(nil, errors.New("connection refused")).Once()
	bs.On("GetCode", mock.Anything, "0xbad").Return([]byte{0x01}, nil).Once()

	classifier := NewContractClassifier(bs, logger.NewNop())

	_, err := classifier.IsContract(context.Background(), "0xbad")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderError(err))
	assert.Equal(t, apperrors.MethodGetCode, apperrors.ProviderMethod(err))
	assert.Equal(t, entity.ContractStatusUnknown, classifier.Status("0xbad"))

	// Failures are not cached
	isContract, err := classifier.IsContract(context.Background(), "0xbad")
	require.NoError(t, err)
	assert.True(t, isContract)
}

func TestContractClassifier_ConcurrentLookupsShareRequest(t *testing.T) {
	bs := new(MockBlockchainService)
	bs.On("GetCode", mock.Anything, "0xc0de").
		After(50*time.Millisecond).
		Return([]byte{0x60}, nil)

	classifier := NewContractClassifier(bs, logger.NewNop())

	var wg sync.WaitGroup
	results := make([]bool, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			isContract, err := classifier.IsContract(context.Background(), "0xc0de")
			assert.NoError(t, err)
			results[i] = isContract
		}(i)
	}
	wg.Wait()

	for _, isContract := range results {
		assert.True(t, isContract)
	}
	bs.AssertNumberOfCalls(t, "GetCode", 1)
}

// blockingCodeService answers GetCode only once released, honoring the request context
type blockingCodeService struct {
	MockBlockchainService
	started     chan struct{}
	startedOnce sync.Once
	release     chan struct{}
	calls       int32
}

func newBlockingCodeService() *blockingCodeService {
	return &blockingCodeService{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *blockingCodeService) GetCode(ctx context.Context, address string) ([]byte, error) {
	atomic.AddInt32(&s.calls, 1)
	s.startedOnce.Do(func() { close(s.started) })

	select {
	case <-s.release:
		return []byte{0x60}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestContractClassifier_CancelledCallerDoesNotFailOthers(t *testing.T) {
	bs := newBlockingCodeService()
	classifier := NewContractClassifier(bs, logger.NewNop())

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	errA := make(chan error, 1)
	go func() {
		_, err := classifier.IsContract(ctxA, "0xc0de")
		errA <- err
	}()
	<-bs.started

	type result struct {
		isContract bool
		err        error
	}
	resB := make(chan result, 1)
	go func() {
		isContract, err := classifier.IsContract(context.Background(), "0xc0de")
		resB <- result{isContract, err}
	}()

	// Let the second caller join the in-flight lookup
	time.Sleep(20 * time.Millisecond)
	cancelA()

	select {
	case err := <-errA:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, apperrors.MethodGetCode, apperrors.ProviderMethod(err))
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(bs.release)

	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.True(t, res.isContract)
	case <-time.After(time.Second):
		t.Fatal("live caller did not return")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&bs.calls))
	assert.Equal(t, entity.ContractStatusContract, classifier.Status("0xc0de"))
}
