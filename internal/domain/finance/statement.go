package finance

import (
	"sort"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementLineType tells what a statement line comes from
type StatementLineType string

const (
	LineSalesOrder    StatementLineType = "SALES_ORDER"
	LinePurchaseOrder StatementLineType = "PURCHASE_ORDER"
	LinePayment       StatementLineType = "PAYMENT"
)

// StatementLine is one dated movement of a statement
type StatementLine struct {
	Date            time.Time
	Type            StatementLineType
	Description     string
	ReferenceID     uuid.UUID
	ReferenceNumber string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Balance         decimal.Decimal
	createdAt       time.Time
}

// Statement is a customer's account activity over a date range
type Statement struct {
	CustomerID            uuid.UUID
	CustomerName          string
	Period                shared.DateRange
	OpeningBalance        decimal.Decimal
	Lines                 []StatementLine
	TotalSales            decimal.Decimal
	TotalPurchases        decimal.Decimal
	TotalPaymentsReceived decimal.Decimal
	TotalPaymentsMade     decimal.Decimal
	TotalDebit            decimal.Decimal
	TotalCredit           decimal.Decimal
	ClosingBalance        decimal.Decimal
}

// BuildStatement renders the activity of a customer over the period.
//
// The opening balance is the account's base opening balance plus the balance
// formula applied to everything dated before the period. Sales orders and received
// sales payments are debit lines; purchase orders and every other payment are
// credit lines. Lines are ordered by date, then by creation time, and carry the
// running balance.
func BuildStatement(account *CustomerAccount, activity Activity, period shared.DateRange) *Statement {
	base := decimal.Zero
	if account != nil {
		base = account.OpeningBalance
	}
	s := &Statement{
		Period:                period,
		OpeningBalance:        activity.Sum(period.From).Balance(base),
		TotalSales:            decimal.Zero,
		TotalPurchases:        decimal.Zero,
		TotalPaymentsReceived: decimal.Zero,
		TotalPaymentsMade:     decimal.Zero,
		TotalDebit:            decimal.Zero,
		TotalCredit:           decimal.Zero,
	}
	if account != nil {
		s.CustomerID = account.CustomerID
	}

	for _, o := range activity.Sales {
		if !period.Contains(o.OrderDate) {
			continue
		}
		s.TotalSales = s.TotalSales.Add(o.TotalAmount)
		s.Lines = append(s.Lines, StatementLine{
			Date:            o.OrderDate,
			Type:            LineSalesOrder,
			Description:     "Sales Order #" + o.OrderNumber,
			ReferenceID:     o.ID,
			ReferenceNumber: o.OrderNumber,
			Debit:           o.TotalAmount,
			Credit:          decimal.Zero,
			createdAt:       o.CreatedAt,
		})
	}
	for _, o := range activity.Purchases {
		if !period.Contains(o.OrderDate) {
			continue
		}
		s.TotalPurchases = s.TotalPurchases.Add(o.TotalAmount)
		s.Lines = append(s.Lines, StatementLine{
			Date:            o.OrderDate,
			Type:            LinePurchaseOrder,
			Description:     "Purchase Order #" + o.OrderNumber,
			ReferenceID:     o.ID,
			ReferenceNumber: o.OrderNumber,
			Debit:           decimal.Zero,
			Credit:          o.TotalAmount,
			createdAt:       o.CreatedAt,
		})
	}
	for _, p := range activity.Payments {
		if !period.Contains(p.Date) {
			continue
		}
		line := StatementLine{
			Date:            p.Date,
			Type:            LinePayment,
			Description:     p.Description(),
			ReferenceID:     p.ID,
			ReferenceNumber: p.ReferenceNumber,
			Debit:           decimal.Zero,
			Credit:          decimal.Zero,
			createdAt:       p.CreatedAt,
		}
		switch p.Type {
		case PaymentTypeSales:
			s.TotalPaymentsReceived = s.TotalPaymentsReceived.Add(p.Amount)
			line.Debit = p.Amount
		case PaymentTypePurchase:
			s.TotalPaymentsMade = s.TotalPaymentsMade.Add(p.Amount)
			line.Credit = p.Amount
		default:
			line.Credit = p.Amount
		}
		s.Lines = append(s.Lines, line)
	}

	sort.SliceStable(s.Lines, func(i, j int) bool {
		a, b := s.Lines[i], s.Lines[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.createdAt.Before(b.createdAt)
	})

	running := s.OpeningBalance
	for i := range s.Lines {
		line := &s.Lines[i]
		running = running.Add(line.Debit).Sub(line.Credit)
		line.Balance = running
		s.TotalDebit = s.TotalDebit.Add(line.Debit)
		s.TotalCredit = s.TotalCredit.Add(line.Credit)
	}
	s.ClosingBalance = running
	return s
}
