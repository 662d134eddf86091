package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/tonyleecn/fapiao/internal/batch"
)

const sheetName = "发票汇总"

type column struct {
	header string
	width  float64
	value  func(inv *batch.Invoice) string
}

var columns = []column{
	{"发票号码", 24, func(inv *batch.Invoice) string { return inv.InvoiceNumber }},
	{"金额", 14, func(inv *batch.Invoice) string { return inv.Amount.StringFixed(2) }},
	{"购买方名称", 32, func(inv *batch.Invoice) string { return inv.Buyer.Name }},
	{"购买方税号", 24, func(inv *batch.Invoice) string { return inv.Buyer.TaxID }},
	{"销售方名称", 32, func(inv *batch.Invoice) string { return inv.Seller.Name }},
	{"销售方税号", 24, func(inv *batch.Invoice) string { return inv.Seller.TaxID }},
	{"文件路径", 60, func(inv *batch.Invoice) string { return inv.SourcePath }},
}

// WriteXLSX writes one workbook row per invoice, in batch order. Columns for
// which no invoice carries a value are omitted entirely.
func WriteXLSX(path string, invoices []batch.Invoice, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	active := activeColumns(invoices)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("closing workbook", "error", err)
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for i, col := range active {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, col.header); err != nil {
			return fmt.Errorf("write header %q: %w", col.header, err)
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, name, name, col.width)
	}

	for row, inv := range invoices {
		for i, col := range active {
			cell, _ := excelize.CoordinatesToCellName(i+1, row+2)
			if err := f.SetCellValue(sheetName, cell, col.value(&inv)); err != nil {
				return fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	logger.Info("spreadsheet written", "path", path, "rows", len(invoices))
	return nil
}

// activeColumns drops columns that are empty for every invoice. With no
// invoices at all the full header row is kept.
func activeColumns(invoices []batch.Invoice) []column {
	if len(invoices) == 0 {
		return columns
	}
	active := make([]column, 0, len(columns))
	for _, col := range columns {
		keep := false
		for i := range invoices {
			if col.value(&invoices[i]) != "" {
				keep = true
				break
			}
		}
		if keep {
			active = append(active, col)
		}
	}
	return active
}
