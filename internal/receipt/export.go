package receipt

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	receiptsSheet = "Receipts"
	summarySheet  = "Summary"
)

// ExportXLSX renders receipts (newest first) and their summary as an XLSX workbook.
func ExportXLSX(receipts []Receipt) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("creating summary sheet: %w", err)
	}

	header := []any{"Date", "Vendor", "Category", "Currency", "Tax", "Amount"}
	if err := f.SetSheetRow(receiptsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, r := range receipts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{r.Date, r.Vendor, r.Category, r.Currency, r.Tax, r.Amount}
		if err := f.SetSheetRow(receiptsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing receipt %s: %w", r.ID, err)
		}
	}
	if err := f.SetColWidth(receiptsSheet, "A", "A", 12); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(receiptsSheet, "B", "C", 24); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	summary := Summarize(receipts)
	rows := [][]any{
		{"Total Spending", summary.TotalSpending.InexactFloat64()},
		{"Total Tax", summary.TotalTax.InexactFloat64()},
		{"Receipts", summary.ReceiptCount},
		{"Average / Receipt", summary.AveragePerReceipt.Round(2).InexactFloat64()},
		{},
		{"Category", "Total"},
	}
	for _, c := range summary.ByCategory {
		rows = append(rows, []any{c.Category, c.Total.InexactFloat64()})
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing summary: %w", err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 20); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("Exported receipts", "rows", len(receipts), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
