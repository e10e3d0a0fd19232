package primary

import (
	"ethereum-block-explorer/internal/domain/entity"
	apperrors "ethereum-block-explorer/pkg/errors"
	"ethereum-block-explorer/pkg/utils"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// ConsoleRenderer prints exploration results as text tables
type ConsoleRenderer struct {
	out io.Writer
}

// NewConsoleRenderer creates a renderer writing to out
func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{out: out}
}

func (r *ConsoleRenderer) newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// RenderStatistics prints the block statistics of span
func (r *ConsoleRenderer) RenderStatistics(span entity.BlockSpan, stats entity.Statistics) {
	fmt.Fprintf(r.out, "\n--== Block Statistics (%s) ==--\n\n", span)

	table := r.newTable("Description", "Value")
	table.AppendBulk([][]string{
		{"Total value of ether transferred", utils.FormatEther(stats.TotalTransferredWei)},
		{"Number of unique addresses sent a transaction", strconv.Itoa(stats.UniqueSenders)},
		{"Number of unique addresses received a transaction", strconv.Itoa(stats.UniqueReceivers)},
		{"Number of contracts created", strconv.Itoa(stats.ContractsCreated)},
		{"Number of uncles created", strconv.Itoa(stats.Uncles)},
	})
	table.Render()
	fmt.Fprintln(r.out)
}

// RenderSenders prints the ether senders report
func (r *ConsoleRenderer) RenderSenders(rows []entity.SenderReportRow) {
	fmt.Fprint(r.out, "--== Ether Senders Report ==--\n\n")

	table := r.newTable("Address", "Ether Sent", "Contract")
	for _, row := range rows {
		table.Append([]string{row.Address, utils.FormatEther(row.SentWei), yesNo(row.Contract)})
	}
	table.Render()
	fmt.Fprintln(r.out)
}

// RenderReceivers prints the ether receivers report
func (r *ConsoleRenderer) RenderReceivers(rows []entity.ReceiverReportRow) {
	fmt.Fprint(r.out, "--== Ether Receivers Report ==--\n\n")

	table := r.newTable("Address", "Ether Received", "Contract")
	for _, row := range rows {
		table.Append([]string{row.Address, utils.FormatEther(row.ReceivedWei), yesNo(row.Contract)})
	}
	table.Render()
	fmt.Fprintln(r.out)
}

// RenderError prints a one line failure message naming the failed provider call when known
func (r *ConsoleRenderer) RenderError(err error) {
	if method := apperrors.ProviderMethod(err); method != "" {
		fmt.Fprintf(r.out, "\n*** An error occurred when calling %s: %v\n", method, err)
		return
	}
	fmt.Fprintf(r.out, "\n*** An error occurred while processing your request: %v\n", err)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
