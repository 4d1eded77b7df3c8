package finance

import (
	"time"

	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountResponse represents a customer account
type AccountResponse struct {
	ID                  uuid.UUID       `json:"id"`
	CustomerID          uuid.UUID       `json:"customer_id"`
	OpeningBalance      decimal.Decimal `json:"opening_balance"`
	TotalReceivable     decimal.Decimal `json:"total_receivable"`
	TotalPayable        decimal.Decimal `json:"total_payable"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	TotalPaidOut        decimal.Decimal `json:"total_paid_out"`
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	LastTransactionDate *time.Time      `json:"last_transaction_date,omitempty"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// StatementLineResponse is one dated movement of a statement
type StatementLineResponse struct {
	Date            time.Time                 `json:"date"`
	Type            finance.StatementLineType `json:"type"`
	Description     string                    `json:"description"`
	ReferenceID     uuid.UUID                 `json:"reference_id"`
	ReferenceNumber string                    `json:"reference_number,omitempty"`
	Debit           decimal.Decimal           `json:"debit"`
	Credit          decimal.Decimal           `json:"credit"`
	Balance         decimal.Decimal           `json:"balance"`
}

// StatementResponse is a customer's activity over a period
type StatementResponse struct {
	CustomerID            uuid.UUID               `json:"customer_id"`
	CustomerName          string                  `json:"customer_name"`
	From                  time.Time               `json:"start_date"`
	To                    time.Time               `json:"end_date"`
	OpeningBalance        decimal.Decimal         `json:"opening_balance"`
	Lines                 []StatementLineResponse `json:"transactions"`
	TotalSales            decimal.Decimal         `json:"total_sales"`
	TotalPurchases        decimal.Decimal         `json:"total_purchases"`
	TotalPaymentsReceived decimal.Decimal         `json:"total_payments_received"`
	TotalPaymentsMade     decimal.Decimal         `json:"total_payments_made"`
	TotalDebit            decimal.Decimal         `json:"total_debit"`
	TotalCredit           decimal.Decimal         `json:"total_credit"`
	ClosingBalance        decimal.Decimal         `json:"closing_balance"`
}

// ExportResponse describes a stored statement workbook
type ExportResponse struct {
	Path     string `json:"path"`
	FullPath string `json:"full_path"`
	Size     int64  `json:"size"`
}

// PaymentRequest holds the fields of a new or revised payment
type PaymentRequest struct {
	CustomerID      uuid.UUID
	Type            finance.PaymentType
	Amount          decimal.Decimal
	Date            time.Time
	Mode            finance.PaymentMode
	ReferenceNumber string
	Remarks         string
	SalesOrderID    *uuid.UUID
	PurchaseOrderID *uuid.UUID
}

// Details converts the request to domain payment details
func (r PaymentRequest) Details() finance.PaymentDetails {
	return finance.PaymentDetails{
		CustomerID:      r.CustomerID,
		Type:            r.Type,
		Amount:          r.Amount,
		Date:            r.Date,
		Mode:            r.Mode,
		ReferenceNumber: r.ReferenceNumber,
		Remarks:         r.Remarks,
		SalesOrderID:    r.SalesOrderID,
		PurchaseOrderID: r.PurchaseOrderID,
	}
}

// PaymentListFilter narrows ListPayments
type PaymentListFilter struct {
	CustomerID *uuid.UUID
	Type       finance.PaymentType
	From       *time.Time
	To         *time.Time
}

// PaymentResponse represents a payment
type PaymentResponse struct {
	ID              uuid.UUID           `json:"id"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	Type            finance.PaymentType `json:"payment_type"`
	Amount          decimal.Decimal     `json:"amount"`
	Date            time.Time           `json:"payment_date"`
	Mode            finance.PaymentMode `json:"payment_mode"`
	ReferenceNumber string              `json:"reference_number,omitempty"`
	Remarks         string              `json:"remarks,omitempty"`
	SalesOrderID    *uuid.UUID          `json:"sales_order_id,omitempty"`
	PurchaseOrderID *uuid.UUID          `json:"purchase_order_id,omitempty"`
	CashEntryID     *uuid.UUID          `json:"cash_entry_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// CashEntryRequest records a manual cash movement
type CashEntryRequest struct {
	Date    time.Time
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Type    finance.CashEntryType
	Remarks string
}

// CashEntryResponse represents a cash book line
type CashEntryResponse struct {
	ID         uuid.UUID             `json:"id"`
	Date       time.Time             `json:"entry_date"`
	Sequence   int64                 `json:"sequence"`
	Debit      decimal.Decimal       `json:"debit"`
	Credit     decimal.Decimal       `json:"credit"`
	Balance    decimal.Decimal       `json:"balance"`
	Type       finance.CashEntryType `json:"entry_type"`
	PaymentID  *uuid.UUID            `json:"payment_id,omitempty"`
	CustomerID *uuid.UUID            `json:"customer_id,omitempty"`
	Remarks    string                `json:"remarks,omitempty"`
}

// CashFlowResponse is the cash book over a period
type CashFlowResponse struct {
	From           time.Time           `json:"start_date"`
	To             time.Time           `json:"end_date"`
	OpeningBalance decimal.Decimal     `json:"opening_balance"`
	Entries        []CashEntryResponse `json:"entries"`
	TotalDebit     decimal.Decimal     `json:"total_debit"`
	TotalCredit    decimal.Decimal     `json:"total_credit"`
	ClosingBalance decimal.Decimal     `json:"closing_balance"`
}

// ToAccountResponse converts a domain account
func ToAccountResponse(a *finance.CustomerAccount) AccountResponse {
	return AccountResponse{
		ID:                  a.ID,
		CustomerID:          a.CustomerID,
		OpeningBalance:      a.OpeningBalance,
		TotalReceivable:     a.TotalReceivable,
		TotalPayable:        a.TotalPayable,
		TotalPaid:           a.TotalPaid,
		TotalPaidOut:        a.TotalPaidOut,
		CurrentBalance:      a.CurrentBalance,
		LastTransactionDate: a.LastTransactionDate,
		UpdatedAt:           a.UpdatedAt,
	}
}

// ToStatementResponse converts a built statement
func ToStatementResponse(s *finance.Statement) StatementResponse {
	lines := make([]StatementLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = StatementLineResponse{
			Date:            l.Date,
			Type:            l.Type,
			Description:     l.Description,
			ReferenceID:     l.ReferenceID,
			ReferenceNumber: l.ReferenceNumber,
			Debit:           l.Debit,
			Credit:          l.Credit,
			Balance:         l.Balance,
		}
	}
	return StatementResponse{
		CustomerID:            s.CustomerID,
		CustomerName:          s.CustomerName,
		From:                  s.Period.From,
		To:                    s.Period.To,
		OpeningBalance:        s.OpeningBalance,
		Lines:                 lines,
		TotalSales:            s.TotalSales,
		TotalPurchases:        s.TotalPurchases,
		TotalPaymentsReceived: s.TotalPaymentsReceived,
		TotalPaymentsMade:     s.TotalPaymentsMade,
		TotalDebit:            s.TotalDebit,
		TotalCredit:           s.TotalCredit,
		ClosingBalance:        s.ClosingBalance,
	}
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		CustomerID:      p.CustomerID,
		Type:            p.Type,
		Amount:          p.Amount,
		Date:            p.Date,
		Mode:            p.Mode,
		ReferenceNumber: p.ReferenceNumber,
		Remarks:         p.Remarks,
		SalesOrderID:    p.SalesOrderID,
		PurchaseOrderID: p.PurchaseOrderID,
		CashEntryID:     p.CashEntryID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToPaymentResponses converts a list of payments
func ToPaymentResponses(payments []finance.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// ToCashEntryResponse converts a cash book line
func ToCashEntryResponse(e *finance.CashEntry) CashEntryResponse {
	return CashEntryResponse{
		ID:         e.ID,
		Date:       e.Date,
		Sequence:   e.Sequence,
		Debit:      e.Debit,
		Credit:     e.Credit,
		Balance:    e.Balance,
		Type:       e.Type,
		PaymentID:  e.PaymentID,
		CustomerID: e.CustomerID,
		Remarks:    e.Remarks,
	}
}
