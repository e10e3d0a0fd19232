package errors

import (
	stderrors "errors"
	"fmt"
)

// ExplorerError represents base explorer error
type ExplorerError struct {
	Code    string
	Message string
	// Method is the provider operation that failed, set for provider errors only
	Method string
	Cause  error
}

func (e *ExplorerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ExplorerError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeProvider      = "PROVIDER"
	ErrCodeCache         = "CACHE"
	ErrCodeConfiguration = "CONFIGURATION"
	ErrCodeValidation    = "VALIDATION"
	ErrCodeMessaging     = "MESSAGING"
)

// Provider methods reported in provider errors
const (
	MethodBlockNumber      = "eth_blockNumber"
	MethodGetBlockByNumber = "eth_getBlockByNumber"
	MethodGetCode          = "eth_getCode"
)

// NewProviderError creates provider error for the given RPC method
func NewProviderError(method string, cause error) *ExplorerError {
	return &ExplorerError{
		Code:    ErrCodeProvider,
		Message: fmt.Sprintf("an error occurred when calling %s", method),
		Method:  method,
		Cause:   cause,
	}
}

// NewCacheError creates cache error
func NewCacheError(message string, cause error) *ExplorerError {
	return &ExplorerError{
		Code:    ErrCodeCache,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationError creates configuration error
func NewConfigurationError(message string, cause error) *ExplorerError {
	return &ExplorerError{
		Code:    ErrCodeConfiguration,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates validation error
func NewValidationError(message string, cause error) *ExplorerError {
	return &ExplorerError{
		Code:    ErrCodeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewMessagingError creates messaging error
func NewMessagingError(message string, cause error) *ExplorerError {
	return &ExplorerError{
		Code:    ErrCodeMessaging,
		Message: message,
		Cause:   cause,
	}
}

// IsProviderError reports whether err wraps a provider error
func IsProviderError(err error) bool {
	var explorerErr *ExplorerError
	return stderrors.As(err, &explorerErr) && explorerErr.Code == ErrCodeProvider
}

// ProviderMethod returns the failed provider method carried by err, or "" if none
func ProviderMethod(err error) string {
	var explorerErr *ExplorerError
	if stderrors.As(err, &explorerErr) && explorerErr.Code == ErrCodeProvider {
		return explorerErr.Method
	}
	return ""
}
