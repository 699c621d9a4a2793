package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/salesbonus/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	outputText = "text"
	outputJSON = "json"
)

func checkOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (text|json)", format)
	}
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintHeader prints a titled block header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", title)
	PrintSeparator(w)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(w, val)
		}
	}
	fmt.Fprintln(w)
}

func money(v float64) string {
	return strconv.FormatFloat(contracts.Round2(v), 'f', 2, 64)
}

func topProducts(products []contracts.TopProduct, n int) string {
	parts := make([]string, 0, n)
	for i, p := range products {
		if i == n {
			break
		}
		parts = append(parts, fmt.Sprintf("%s×%d", p.SKU, p.Quantity))
	}
	return strings.Join(parts, ", ")
}

var rankingWidths = []int{4, 12, 22, 12, 12, 6, 10, 24}

// PrintRanking prints the seller ranking table
func PrintRanking(w io.Writer, sellers []contracts.SellerReport) {
	PrintHeader(w, "Seller ranking")
	PrintTableHeader(w,
		[]string{"#", "SELLER", "NAME", "REVENUE", "PROFIT", "SALES", "BONUS", "TOP PRODUCTS"},
		rankingWidths,
	)
	for i, s := range sellers {
		PrintTableRow(w, []string{
			strconv.Itoa(i + 1),
			s.SellerID,
			s.Name,
			money(s.Revenue),
			money(s.Profit),
			strconv.Itoa(s.SalesCount),
			money(s.Bonus),
			topProducts(s.TopProducts, 3),
		}, rankingWidths)
	}
}

// PrintBonuses prints one line per special bonus category
func PrintBonuses(w io.Writer, bonuses []contracts.BonusResult) {
	PrintHeader(w, "Special bonuses")
	for _, b := range bonuses {
		if !b.HasWinner() {
			PrintKeyValue(w, b.Category, "no winner", 24)
			continue
		}
		PrintKeyValue(w, b.Category, fmt.Sprintf("%s  %s", b.SellerID, money(b.Bonus)), 24)
	}
}

// PrintRun prints a complete run
func PrintRun(w io.Writer, run *contracts.Run) {
	PrintHeader(w, "Analysis run")
	PrintKeyValue(w, "Run ID", run.ID, 12)
	PrintKeyValue(w, "Created", run.CreatedAt.Format("2006-01-02 15:04:05 MST"), 12)
	PrintKeyValue(w, "Policy", fmt.Sprintf("%s (%s)", run.PolicyID, shortHash(run.PolicyHash)), 12)
	PrintKeyValue(w, "Dataset", shortHash(run.DatasetHash), 12)
	if run.Cached {
		PrintKeyValue(w, "Cached", "yes", 12)
	}

	PrintRanking(w, run.Sellers)
	PrintBonuses(w, run.Bonuses)

	PrintDoubleSeparator(w)
	PrintKeyValue(w, "Total payout", money(run.TotalPayout()), 12)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
