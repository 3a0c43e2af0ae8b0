// Package display renders suggestion lists and stock details as styled
// terminal text.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/dyike/stockinfo/internal/controller"
	"github.com/dyike/stockinfo/internal/models"
)

// Placeholder is shown for unknown values.
const Placeholder = "-"

const panelWidth = 96

// Tab selects which table a detail view shows.
type Tab int

const (
	TabRatios Tab = iota
	TabReturns
	// TabAll prints both tables, one after the other.
	TabAll
)

func (t Tab) Next() Tab {
	if t == TabRatios {
		return TabReturns
	}
	return TabRatios
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981")).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9CA3AF")).
				Padding(0, 1)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	errorPanelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	suggestionStyle = lipgloss.NewStyle().
			Padding(0, 1)

	highlightStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(lipgloss.Color("#3B82F6"))

	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
)

// FormatNumber renders a value with two decimals, or the placeholder.
func FormatNumber(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return d.Decimal.StringFixed(2)
}

// FormatPercent renders a percentage with two decimals and a % sign.
func FormatPercent(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return d.Decimal.StringFixed(2) + "%"
}

// FormatMarketCap renders a whole amount with thousands separators.
func FormatMarketCap(d decimal.NullDecimal) string {
	if !d.Valid {
		return Placeholder
	}
	return groupThousands(d.Decimal.Round(0).String())
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// SuggestionLine formats one suggestion as "SYMBOL  Name (EXCHANGE)".
func SuggestionLine(s models.Suggestion) string {
	line := fmt.Sprintf("%-8s %s", s.Symbol, s.Name)
	if s.Exchange != "" {
		line += " (" + s.Exchange + ")"
	}
	return line
}

// RenderSuggestions renders the visible suggestion list. highlight is the
// selected row or -1. Hidden or empty lists render as "".
func RenderSuggestions(v controller.SuggestionView, highlight int) string {
	if !v.Visible || len(v.Items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(v.Items))
	for i, s := range v.Items {
		style := suggestionStyle
		if i == highlight {
			style = highlightStyle
		}
		lines = append(lines, style.Render(SuggestionLine(s)))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderSuggestionTable renders suggestions as a plain table for
// non-interactive output.
func RenderSuggestionTable(items []models.Suggestion) string {
	if len(items) == 0 {
		return subtleStyle.Render("No matching symbols.")
	}
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{s.Symbol, s.Name, s.Exchange})
	}
	return newTable([]string{"Symbol", "Name", "Exchange"}, rows)
}

// RenderDetail renders the detail panel for a fetch state. Idle renders
// nothing.
func RenderDetail(state controller.FetchState, tab Tab) string {
	switch state.Phase {
	case controller.PhaseLoading:
		return loadingStyle.Render(fmt.Sprintf("Loading %s...", state.Symbol))
	case controller.PhaseFailed:
		msg := "Failed to fetch stock data"
		if state.Err != nil {
			msg += ": " + state.Err.Error()
		}
		return errorPanelStyle.Width(panelWidth).Render(msg)
	case controller.PhaseLoaded:
		if state.Detail == nil {
			return ""
		}
		return RenderStock(state.Detail, tab)
	default:
		return ""
	}
}

// RenderStock renders the profile, description and the selected tables.
func RenderStock(d *models.StockDetail, tab Tab) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", d.Name, d.Symbol)))
	b.WriteByte('\n')
	b.WriteString(subtleStyle.Render(d.Exchange + " • " + d.Industry))
	b.WriteByte('\n')
	b.WriteString(field("Current Price", "$"+FormatNumber(d.CurrentPrice)))
	b.WriteString(field("Market Cap", "$"+FormatMarketCap(d.MarketCap)))
	b.WriteString(field("Currency", d.Currency))

	b.WriteString(sectionStyle.Render("About the Company"))
	b.WriteByte('\n')
	b.WriteString(lipgloss.NewStyle().Width(panelWidth).Render(d.Description))
	b.WriteByte('\n')

	switch tab {
	case TabAll:
		b.WriteString(sectionStyle.Render("Financial Ratios"))
		b.WriteByte('\n')
		b.WriteString(RatioTable(d.FinancialRatios))
		b.WriteByte('\n')
		b.WriteString(sectionStyle.Render("Historical Returns"))
		b.WriteByte('\n')
		b.WriteString(ReturnTable(d.HistoricalReturns))
	default:
		b.WriteByte('\n')
		b.WriteString(tabBar(tab))
		b.WriteByte('\n')
		if tab == TabReturns {
			b.WriteString(ReturnTable(d.HistoricalReturns))
		} else {
			b.WriteString(RatioTable(d.FinancialRatios))
		}
	}
	return b.String()
}

// RatioTable renders the sixteen ratio columns, one row per year.
func RatioTable(records []models.RatioRecord) string {
	if len(records) == 0 {
		return subtleStyle.Render("No ratio history available.")
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{r.Year}
		for _, v := range r.Values() {
			row = append(row, FormatNumber(v))
		}
		rows = append(rows, row)
	}
	return newTable(models.RatioColumns, rows)
}

// ReturnTable renders the yearly returns, change coloured by sign.
func ReturnTable(records []models.ReturnRecord) string {
	if len(records) == 0 {
		return subtleStyle.Render("No price history available.")
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Year,
			FormatNumber(r.OpeningPrice),
			FormatNumber(r.ClosingPrice),
			colorChange(r.ChangePct),
		})
	}
	return newTable(models.ReturnColumns, rows)
}

func colorChange(d decimal.NullDecimal) string {
	s := FormatPercent(d)
	if !d.Valid {
		return s
	}
	if d.Decimal.IsNegative() {
		return negativeStyle.Render(s)
	}
	return positiveStyle.Render(s)
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + value + "\n"
}

func tabBar(active Tab) string {
	names := []struct {
		tab  Tab
		name string
	}{
		{TabRatios, "Financial Ratios"},
		{TabReturns, "Historical Returns"},
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n.tab == active {
			parts = append(parts, activeTabStyle.Render(n.name))
		} else {
			parts = append(parts, inactiveTabStyle.Render(n.name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + subtleStyle.Render("  (tab to switch)")
}

func newTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(subtleStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return labelStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}
