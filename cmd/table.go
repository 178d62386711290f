package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// printSummary renders a two-column summary table on stderr when it is a
// terminal. Piped and redirected runs stay machine-clean.
func printSummary(rows [][]string) {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return
	}
	fmt.Fprintln(os.Stderr, renderRows(rows))
}

func renderRows(rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i := range row {
			r[i] = row[i]
		}
		tw.AppendRow(r)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	return tw.Render()
}

func renderHeaderedTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	h := make(table.Row, len(headers))
	for i := range headers {
		h[i] = headers[i]
	}
	tw.AppendHeader(h)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i := range row {
			r[i] = row[i]
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
