package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"chatshot/internal/api"
)

// valueWidth caps free-text columns so recognized text wraps instead of
// stretching the terminal.
const valueWidth = 72

func newTable(header ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row(header))
	return tw
}

// renderFields draws a verdict as Field/Value pairs.
func renderFields(fields [][2]string) string {
	tw := newTable("Field", "Value")
	for _, f := range fields {
		tw.AppendRow(table.Row{f[0], f[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: valueWidth, WidthMaxEnforcer: text.WrapSoft},
	})
	return tw.Render()
}

// renderChecks draws preflight rows with a centred Status column.
func renderChecks(checks []api.CheckStatus, color bool) string {
	tw := newTable("Check", "Status", "Detail")
	for _, check := range checks {
		tw.AppendRow(table.Row{check.Name, passFail(check.Passed, color), check.Detail})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 3, WidthMax: valueWidth, WidthMaxEnforcer: text.WrapSoft},
	})
	return tw.Render()
}
