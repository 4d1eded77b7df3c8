package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleStatement() *finance.Statement {
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }
	return &finance.Statement{
		CustomerID:     uuid.MustParse("0b9f1c2e-0000-0000-0000-000000000000"),
		CustomerName:   "Acme Traders",
		Period:         shared.DateRange{From: day(1), To: day(31)},
		OpeningBalance: decimal.NewFromInt(100),
		Lines: []finance.StatementLine{
			{Date: day(2), Type: finance.LineSalesOrder, Description: "Sales Order #SO-1", ReferenceNumber: "SO-1",
				Debit: decimal.NewFromInt(1000), Credit: decimal.Zero, Balance: decimal.NewFromInt(1100)},
			{Date: day(5), Type: finance.LinePayment, Description: "Payment - CASH", Debit: decimal.Zero,
				Credit: decimal.NewFromInt(400), Balance: decimal.NewFromInt(700)},
		},
		TotalSales:            decimal.NewFromInt(1000),
		TotalPurchases:        decimal.Zero,
		TotalPaymentsReceived: decimal.Zero,
		TotalPaymentsMade:     decimal.Zero,
		TotalDebit:            decimal.NewFromInt(1000),
		TotalCredit:           decimal.NewFromInt(400),
		ClosingBalance:        decimal.NewFromInt(700),
	}
}

func TestStatementRenderer_Render(t *testing.T) {
	t.Run("writes the header block, lines and totals", func(t *testing.T) {
		data, err := NewStatementRenderer().Render(sampleStatement())
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()

		cell := func(ref string) string {
			v, err := f.GetCellValue(StatementSheet, ref)
			require.NoError(t, err)
			return v
		}
		assert.Equal(t, "Customer Statement", cell("A1"))
		assert.Equal(t, "Acme Traders", cell("B2"))
		assert.Equal(t, "2024-03-01", cell("B3"))
		assert.Equal(t, "2024-03-31", cell("C3"))
		assert.Equal(t, "100", cell("B4"))

		assert.Equal(t, "Date", cell("A6"))
		assert.Equal(t, "Balance", cell("G6"))
		assert.Equal(t, "2024-03-02", cell("A7"))
		assert.Equal(t, "SALES_ORDER", cell("B7"))
		assert.Equal(t, "Sales Order #SO-1", cell("C7"))
		assert.Equal(t, "1000", cell("E7"))
		assert.Equal(t, "1100", cell("G7"))
		assert.Equal(t, "400", cell("F8"))

		assert.Equal(t, "Totals", cell("A9"))
		assert.Equal(t, "700", cell("G9"))
		assert.Equal(t, "Closing Balance", cell("A15"))
		assert.Equal(t, "700", cell("B15"))
	})

	t.Run("nil statement", func(t *testing.T) {
		_, err := NewStatementRenderer().Render(nil)
		var exportErr *ExportError
		require.ErrorAs(t, err, &exportErr)
		assert.Equal(t, ErrCodeRenderFailed, exportErr.Code)
	})
}

func TestStatementFileName(t *testing.T) {
	assert.Equal(t, "statement_0b9f1c2e_20240301_20240331.xlsx", StatementFileName(sampleStatement()))
}
