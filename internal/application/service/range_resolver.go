package service

import (
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/infrastructure/logger"
	apperrors "ethereum-block-explorer/pkg/errors"
	"ethereum-block-explorer/pkg/utils"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ResolveRange normalizes caller supplied block parameters into a concrete span.
//
// A single parameter n selects the window [currentHeight-n, currentHeight]; n == 0 selects
// the current block. Two parameters select [min(a,b), max(a,b)]. Anything else, including
// unparsable or out of range values, logs a diagnostic and falls back to the current block.
func ResolveRange(params []string, currentHeight uint64, log *logger.Logger) entity.BlockSpan {
	fallback := func(reason string, cause error) entity.BlockSpan {
		log.Warn("Invalid block range, using the current block",
			zap.Strings("params", params),
			zap.Uint64("current_block", currentHeight),
			zap.Error(apperrors.NewValidationError(reason, cause)))
		return entity.SingleBlockSpan(currentHeight)
	}

	if len(params) == 0 || len(params) > 2 {
		return fallback("expected one or two block parameters", nil)
	}

	numbers := make([]uint64, len(params))
	for i, param := range params {
		n, err := strconv.ParseUint(strings.TrimSpace(param), 10, 64)
		if err != nil {
			return fallback("block parameters must be non-negative integers", err)
		}
		numbers[i] = n
	}

	if len(numbers) == 1 {
		offset := numbers[0]
		if offset > currentHeight {
			return fallback("offset is larger than the current block number", nil)
		}
		return entity.BlockSpan{Start: currentHeight - offset, End: currentHeight}
	}

	start, end := numbers[0], numbers[1]
	if start > currentHeight || end > currentHeight {
		return fallback("block range exceeds the current block number", nil)
	}

	return entity.BlockSpan{
		Start: utils.MinUint64(start, end),
		End:   utils.MaxUint64(start, end),
	}
}
