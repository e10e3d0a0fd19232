package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplorerError_Error(t *testing.T) {
	cause := stderrors.New("connection refused")

	err := NewProviderError(MethodGetBlockByNumber, cause)
	assert.Equal(t, "[PROVIDER] an error occurred when calling eth_getBlockByNumber: connection refused", err.Error())
	assert.Equal(t, MethodGetBlockByNumber, err.Method)

	err = NewValidationError("bad range", nil)
	assert.Equal(t, "[VALIDATION] bad range", err.Error())
}

func TestExplorerError_Unwrap(t *testing.T) {
	cause := stderrors.New("timeout")
	err := NewCacheError("failed to read block", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestIsProviderError(t *testing.T) {
	providerErr := NewProviderError(MethodGetCode, stderrors.New("boom"))
	wrapped := fmt.Errorf("failed to classify address: %w", providerErr)

	assert.True(t, IsProviderError(providerErr))
	assert.True(t, IsProviderError(wrapped))
	assert.False(t, IsProviderError(NewConfigurationError("missing rpc url", nil)))
	assert.False(t, IsProviderError(stderrors.New("plain")))
	assert.False(t, IsProviderError(nil))
}

func TestProviderMethod(t *testing.T) {
	wrapped := fmt.Errorf("ingest: %w", NewProviderError(MethodBlockNumber, stderrors.New("eof")))

	assert.Equal(t, MethodBlockNumber, ProviderMethod(wrapped))
	assert.Equal(t, "", ProviderMethod(NewMessagingError("publish failed", nil)))
}
