// Package report renders stored summaries for the terminal.
package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"peka/internal/core"
)

// PrintSummaries writes the ongoing month first when there is one, then the monthly
// summaries newest first and their total. ongoing may be nil.
func PrintSummaries(w io.Writer, monthly []core.MonthlySummary, ongoing *core.OngoingMonthSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Month", "From", "To", "Spent (PLN)", "Balance (PLN)"})

	if ongoing != nil {
		balance := text.FgHiBlack.Sprint("-")
		if ongoing.Balance != nil {
			balance = core.FormatPrice(*ongoing.Balance)
		}
		t.AppendRow(table.Row{
			ongoing.ID + " " + text.FgYellow.Sprint("(ongoing)"),
			ongoing.From.String(),
			ongoing.To.String(),
			core.FormatPrice(ongoing.Sum),
			balance,
		})
		if len(monthly) > 0 {
			t.AppendSeparator()
		}
	}

	sums := make([]float64, 0, len(monthly))
	for _, s := range monthly {
		t.AppendRow(table.Row{s.ID, s.From.String(), s.To.String(), core.FormatPrice(s.Sum), ""})
		sums = append(sums, s.Sum)
	}

	t.AppendFooter(table.Row{"", "", text.Bold.Sprint("Total"), text.Bold.Sprint(core.FormatPrice(core.SumPrices(sums...))), ""})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}
