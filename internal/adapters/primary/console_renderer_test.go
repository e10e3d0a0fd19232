package primary

import (
	"bytes"
	"errors"
	"ethereum-block-explorer/internal/domain/entity"
	apperrors "ethereum-block-explorer/pkg/errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleRenderer_RenderStatistics(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewConsoleRenderer(&buf)

	renderer.RenderStatistics(entity.BlockSpan{Start: 100, End: 102}, entity.Statistics{
		TotalTransferredWei: big.NewInt(1500000000000000000),
		UniqueSenders:       2,
		UniqueReceivers:     3,
		ContractsCreated:    1,
		Uncles:              4,
	})

	out := buf.String()
	assert.Contains(t, out, "Block Statistics")
	assert.Contains(t, out, "Total value of ether transferred")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "Number of unique addresses sent a transaction")
	assert.Contains(t, out, "Number of uncles created")
}

func TestConsoleRenderer_Reports(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewConsoleRenderer(&buf)

	renderer.RenderSenders([]entity.SenderReportRow{
		{Address: "0xaaa", SentWei: big.NewInt(1000000000000000000), Contract: false},
	})
	renderer.RenderReceivers([]entity.ReceiverReportRow{
		{Address: "0xbbb", ReceivedWei: big.NewInt(1), Contract: true},
	})

	out := buf.String()
	assert.Contains(t, out, "Ether Senders Report")
	assert.Contains(t, out, "Ether Receivers Report")

	senderLine := lineContaining(out, "0xaaa")
	assert.Contains(t, senderLine, "| 1 ")
	assert.Contains(t, senderLine, "no")

	receiverLine := lineContaining(out, "0xbbb")
	assert.Contains(t, receiverLine, "0.000000000000000001")
	assert.Contains(t, receiverLine, "yes")
}

func TestConsoleRenderer_RenderError(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewConsoleRenderer(&buf)

	err := fmt.Errorf("failed to get block 7: %w",
		apperrors.NewProviderError(apperrors.MethodGetBlockByNumber, errors.New("timeout")))
	renderer.RenderError(err)
	assert.Contains(t, buf.String(), "eth_getBlockByNumber")

	buf.Reset()
	renderer.RenderError(errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(buf.String()), "\n")+1)
}

func lineContaining(out, needle string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, needle) {
			return line
		}
	}
	return ""
}
