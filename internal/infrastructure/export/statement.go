// Package export renders customer statements as Excel workbooks and keeps the
// generated files on disk, grouped by tenant and month.
package export

import (
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// StatementSheet is the name of the worksheet holding the statement
const StatementSheet = "Statement"

// First row of the line table; rows above it hold the header block
const statementTableRow = 6

var statementColumns = []string{"Date", "Type", "Description", "Reference", "Debit", "Credit", "Balance"}

// StatementRenderer writes statements as .xlsx workbooks
type StatementRenderer struct{}

// NewStatementRenderer creates a new StatementRenderer
func NewStatementRenderer() *StatementRenderer {
	return &StatementRenderer{}
}

// Render returns the workbook bytes of the statement. Amounts are written as
// numbers so the sheet can be summed.
func (r *StatementRenderer) Render(s *finance.Statement) ([]byte, error) {
	if s == nil {
		return nil, NewExportError(ErrCodeRenderFailed, "statement is nil", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), StatementSheet); err != nil {
		return nil, NewExportError(ErrCodeRenderFailed, "failed to name sheet", err)
	}

	w := &sheetWriter{f: f, sheet: StatementSheet}
	w.row(1, "Customer Statement")
	w.row(2, "Customer", s.CustomerName)
	w.row(3, "Period", s.Period.From.Format(time.DateOnly), s.Period.To.Format(time.DateOnly))
	w.row(4, "Opening Balance", amount(s.OpeningBalance))

	headers := make([]any, len(statementColumns))
	for i, h := range statementColumns {
		headers[i] = h
	}
	w.row(statementTableRow, headers...)

	row := statementTableRow + 1
	for _, line := range s.Lines {
		w.row(row,
			line.Date.Format(time.DateOnly),
			string(line.Type),
			line.Description,
			line.ReferenceNumber,
			amount(line.Debit),
			amount(line.Credit),
			amount(line.Balance),
		)
		row++
	}
	w.row(row, "Totals", "", "", "", amount(s.TotalDebit), amount(s.TotalCredit), amount(s.ClosingBalance))

	row += 2
	w.row(row, "Total Sales", amount(s.TotalSales))
	w.row(row+1, "Total Purchases", amount(s.TotalPurchases))
	w.row(row+2, "Payments Received", amount(s.TotalPaymentsReceived))
	w.row(row+3, "Payments Made", amount(s.TotalPaymentsMade))
	w.row(row+4, "Closing Balance", amount(s.ClosingBalance))

	if w.err == nil {
		w.err = w.bold(1, statementTableRow)
	}
	if w.err == nil {
		w.err = f.SetColWidth(StatementSheet, "A", "A", 14)
	}
	if w.err == nil {
		w.err = f.SetColWidth(StatementSheet, "C", "C", 36)
	}
	if w.err != nil {
		return nil, NewExportError(ErrCodeRenderFailed, "failed to write statement", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewExportError(ErrCodeRenderFailed, "failed to encode workbook", err)
	}
	return buf.Bytes(), nil
}

// StatementFileName is the default export name of a statement
func StatementFileName(s *finance.Statement) string {
	return fmt.Sprintf("statement_%s_%s_%s.xlsx",
		s.CustomerID.String()[:8],
		s.Period.From.Format("20060102"),
		s.Period.To.Format("20060102"))
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// sheetWriter keeps the first error so a sequence of cell writes can be checked once
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) row(row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *sheetWriter) bold(rows ...int) error {
	style, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(statementColumns))
	for _, row := range rows {
		if err := w.f.SetCellStyle(w.sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), style); err != nil {
			return err
		}
	}
	return nil
}
