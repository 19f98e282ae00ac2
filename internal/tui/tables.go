package tui

import (
	"fmt"

	"crypto-macro-dashboard/internal/domain"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const tableHeight = 12

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(tableHeight),
		table.WithFocused(true),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)
	return t
}

func formatFlow(v domain.NullableFloat) string {
	if v.IsNaN() {
		return "-"
	}
	return fmt.Sprintf("%+.1f", float64(v))
}

// newFlowTable shows the most recent days first.
func newFlowTable(points []domain.ETFFlowPoint) table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Net Flow (M USD)", Width: 18},
	}
	rows := make([]table.Row, 0, len(points))
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		rows = append(rows, table.Row{p.Date.Format("02 Jan 2006"), formatFlow(p.TotalFlow)})
	}
	return newTable(columns, rows)
}

func newBTCTreasuryTable(rows []domain.BTCTreasuryRow) table.Model {
	columns := []table.Column{
		{Title: "Ticker", Width: 8},
		{Title: "Name", Width: 24},
		{Title: "Country", Width: 10},
		{Title: "BTC", Width: 12},
		{Title: "Mkt Cap (m)", Width: 12},
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{
			r.Ticker,
			r.Name,
			r.Country,
			domain.FormatCompact(float64(r.Holdings)),
			r.MarketCapM,
		})
	}
	return newTable(columns, tableRows)
}

func newETHTreasuryTable(rows []domain.ETHTreasuryRow) table.Model {
	columns := []table.Column{
		{Title: "Company", Width: 24},
		{Title: "Ticker", Width: 10},
		{Title: "ETH", Width: 12},
		{Title: "Value (USD)", Width: 14},
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{
			r.Company,
			r.Ticker,
			domain.FormatCompact(float64(r.Held)),
			r.ValueUSD,
		})
	}
	return newTable(columns, tableRows)
}

func newSOLTreasuryTable(rows []domain.SOLTreasuryRow) table.Model {
	columns := []table.Column{
		{Title: "Company", Width: 24},
		{Title: "Type", Width: 12},
		{Title: "SOL", Width: 12},
		{Title: "Share", Width: 10},
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{
			r.Company,
			r.Type,
			domain.FormatCompact(float64(r.Held)),
			r.ShareOfSupply,
		})
	}
	return newTable(columns, tableRows)
}
