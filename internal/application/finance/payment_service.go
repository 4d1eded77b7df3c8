package finance

import (
	"context"
	"errors"

	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records payments. Each write settles the linked order, keeps the
// mirroring cash entry in step and recomputes the customer's account in the same
// transaction.
type PaymentService struct {
	runner         *txn.Runner
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(runner *txn.Runner, zapLogger *zap.Logger) *PaymentService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &PaymentService{runner: runner, logger: zapLogger}
}

// SetEventPublisher sets the event publisher for payment events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordPayment creates a payment
func (s *PaymentService) RecordPayment(ctx context.Context, scope shared.Scope, req PaymentRequest) (*PaymentResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	details := req.Details()
	if err := details.Validate(); err != nil {
		return nil, err
	}

	var (
		events  txn.Events
		payment *finance.Payment
	)
	err := s.runner.Run(ctx, paymentKeys(scope, details), func(repos txn.Repositories) error {
		if _, err := repos.Customers().FindByID(ctx, scope, details.CustomerID); err != nil {
			return err
		}
		var err error
		if payment, err = finance.NewPayment(scope, details); err != nil {
			return err
		}
		if err := settle(ctx, repos, scope, payment, payment.Amount); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		if err := postCashEntry(ctx, repos, scope, payment); err != nil {
			return err
		}
		if _, err := RecomputeAccount(ctx, repos, scope, payment.CustomerID); err != nil {
			return err
		}
		events.Add(finance.NewPaymentRecordedEvent(payment, true))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx, "Payment recorded", payment)
	s.publish(ctx, &events)
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// UpdatePayment revises a payment. The old amount is taken off its order before
// the new one is applied, so the payment can move between orders and customers.
func (s *PaymentService) UpdatePayment(ctx context.Context, scope shared.Scope, id uuid.UUID, req PaymentRequest) (*PaymentResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	details := req.Details()
	if err := details.Validate(); err != nil {
		return nil, err
	}
	previous, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	keys := append(paymentKeys(scope, previous.Details()), paymentKeys(scope, details)...)

	var (
		events  txn.Events
		payment *finance.Payment
	)
	err = s.runner.Run(ctx, keys, func(repos txn.Repositories) error {
		var err error
		if payment, err = repos.Payments().FindByID(ctx, scope, id); err != nil {
			return err
		}
		if !sameLinks(payment.Details(), previous.Details()) {
			return shared.Errorf(shared.ErrConcurrencyConflict, "payment %s changed while the update was being prepared", id)
		}
		if _, err := repos.Customers().FindByID(ctx, scope, details.CustomerID); err != nil {
			return err
		}

		oldCustomer := payment.CustomerID
		if err := unsettle(ctx, repos, scope, payment); err != nil {
			return err
		}
		if err := payment.Revise(details); err != nil {
			return err
		}
		if err := settle(ctx, repos, scope, payment, payment.Amount); err != nil {
			return err
		}
		if err := syncCashEntry(ctx, repos, scope, payment); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		for _, customerID := range customersOf(oldCustomer, payment.CustomerID) {
			if _, err := RecomputeAccount(ctx, repos, scope, customerID); err != nil {
				return err
			}
		}
		events.Add(finance.NewPaymentRecordedEvent(payment, false))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx, "Payment updated", payment)
	s.publish(ctx, &events)
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// DeletePayment reverses a payment on its order, removes its cash entry and deletes it
func (s *PaymentService) DeletePayment(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	previous, err := s.load(ctx, scope, id)
	if err != nil {
		return err
	}

	var (
		events  txn.Events
		payment *finance.Payment
	)
	err = s.runner.Run(ctx, paymentKeys(scope, previous.Details()), func(repos txn.Repositories) error {
		var err error
		if payment, err = repos.Payments().FindByID(ctx, scope, id); err != nil {
			return err
		}
		if !sameLinks(payment.Details(), previous.Details()) {
			return shared.Errorf(shared.ErrConcurrencyConflict, "payment %s changed while the delete was being prepared", id)
		}
		if err := unsettle(ctx, repos, scope, payment); err != nil {
			return err
		}
		if err := removeCashEntry(ctx, repos, scope, payment); err != nil {
			return err
		}
		if err := repos.Payments().Delete(ctx, scope, id); err != nil {
			return err
		}
		if _, err := RecomputeAccount(ctx, repos, scope, payment.CustomerID); err != nil {
			return err
		}
		events.Add(finance.NewPaymentDeletedEvent(payment))
		return nil
	})
	if err != nil {
		return err
	}

	s.log(ctx, "Payment deleted", payment)
	s.publish(ctx, &events)
	return nil
}

// GetPayment returns a payment by id
func (s *PaymentService) GetPayment(ctx context.Context, scope shared.Scope, id uuid.UUID) (*PaymentResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}

// PaymentsByCustomer returns the customer's payments by date
func (s *PaymentService) PaymentsByCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]PaymentResponse, error) {
	return s.list(ctx, scope, func(repos txn.Repositories) ([]finance.Payment, error) {
		if _, err := repos.Customers().FindByID(ctx, scope, customerID); err != nil {
			return nil, err
		}
		return repos.Payments().FindForCustomer(ctx, scope, customerID)
	})
}

// PaymentsByOrder returns the payments linked to an order. orderType is SALES or
// PURCHASE in any case.
func (s *PaymentService) PaymentsByOrder(ctx context.Context, scope shared.Scope, orderType string, orderID uuid.UUID) ([]PaymentResponse, error) {
	typ, err := trade.ParseOrderType(orderType)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, scope, func(repos txn.Repositories) ([]finance.Payment, error) {
		if typ == trade.OrderTypeSales {
			return repos.Payments().FindForSalesOrder(ctx, scope, orderID)
		}
		return repos.Payments().FindForPurchaseOrder(ctx, scope, orderID)
	})
}

// ListPayments returns payments matching the filter, newest first
func (s *PaymentService) ListPayments(ctx context.Context, scope shared.Scope, filter PaymentListFilter) ([]PaymentResponse, error) {
	query := finance.PaymentFilter{CustomerID: filter.CustomerID, Type: filter.Type}
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "unknown payment type %q", filter.Type)
	}
	if filter.From != nil && filter.To != nil {
		period, err := shared.NewDateRange(*filter.From, *filter.To)
		if err != nil {
			return nil, err
		}
		query.Period = &period
	}
	return s.list(ctx, scope, func(repos txn.Repositories) ([]finance.Payment, error) {
		return repos.Payments().List(ctx, scope, query)
	})
}

func (s *PaymentService) list(ctx context.Context, scope shared.Scope, fn func(repos txn.Repositories) ([]finance.Payment, error)) ([]PaymentResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var payments []finance.Payment
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		var err error
		payments, err = fn(repos)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

func (s *PaymentService) load(ctx context.Context, scope shared.Scope, id uuid.UUID) (*finance.Payment, error) {
	var p *finance.Payment
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		var err error
		p, err = repos.Payments().FindByID(ctx, scope, id)
		return err
	})
	return p, err
}

func (s *PaymentService) log(ctx context.Context, msg string, p *finance.Payment) {
	logger.WithLogger(ctx, s.logger).Info(msg,
		zap.String("payment_id", p.ID.String()),
		zap.String("customer_id", p.CustomerID.String()),
		zap.String("payment_type", string(p.Type)),
		zap.String("amount", p.Amount.String()),
	)
}

func (s *PaymentService) publish(ctx context.Context, events *txn.Events) {
	if err := events.Publish(ctx, s.eventPublisher); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to publish payment events", zap.Error(err))
	}
}

// paymentKeys are the locks a payment write holds: the customer's account, the
// cash book and the linked order
func paymentKeys(scope shared.Scope, d finance.PaymentDetails) []string {
	keys := []string{txn.AccountKey(scope, d.CustomerID), txn.CashKey(scope)}
	if d.SalesOrderID != nil {
		keys = append(keys, txn.OrderKey(scope, *d.SalesOrderID))
	}
	if d.PurchaseOrderID != nil {
		keys = append(keys, txn.OrderKey(scope, *d.PurchaseOrderID))
	}
	return keys
}

// sameLinks reports whether two versions of a payment need the same locks
func sameLinks(a, b finance.PaymentDetails) bool {
	return a.CustomerID == b.CustomerID &&
		equalIDs(a.SalesOrderID, b.SalesOrderID) &&
		equalIDs(a.PurchaseOrderID, b.PurchaseOrderID)
}

func equalIDs(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func customersOf(ids ...uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil && !containsID(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// settle applies amount to the order the payment links to
func settle(ctx context.Context, repos txn.Repositories, scope shared.Scope, p *finance.Payment, amount decimal.Decimal) error {
	switch {
	case p.SalesOrderID != nil:
		order, err := repos.SalesOrders().FindByID(ctx, scope, *p.SalesOrderID)
		if err != nil {
			return err
		}
		order.ApplyPayment(amount)
		order.Touch()
		return repos.SalesOrders().Save(ctx, order)
	case p.PurchaseOrderID != nil:
		order, err := repos.PurchaseOrders().FindByID(ctx, scope, *p.PurchaseOrderID)
		if err != nil {
			return err
		}
		order.ApplyPayment(amount)
		order.Touch()
		return repos.PurchaseOrders().Save(ctx, order)
	}
	return nil
}

// unsettle takes the payment off its order. An order deleted since keeps its
// settlement; there is nothing left to reverse on it.
func unsettle(ctx context.Context, repos txn.Repositories, scope shared.Scope, p *finance.Payment) error {
	switch {
	case p.SalesOrderID != nil:
		order, err := repos.SalesOrders().FindByID(ctx, scope, *p.SalesOrderID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		order.ReversePayment(p.Amount)
		order.Touch()
		return repos.SalesOrders().Save(ctx, order)
	case p.PurchaseOrderID != nil:
		order, err := repos.PurchaseOrders().FindByID(ctx, scope, *p.PurchaseOrderID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		order.ReversePayment(p.Amount)
		order.Touch()
		return repos.PurchaseOrders().Save(ctx, order)
	}
	return nil
}

// postCashEntry creates the payment's cash entry and links it
func postCashEntry(ctx context.Context, repos txn.Repositories, scope shared.Scope, p *finance.Payment) error {
	entry := finance.CashEntryFromPayment(scope, p)
	if err := finance.NewCashBook(repos.CashEntries()).Post(ctx, scope, entry); err != nil {
		return err
	}
	p.LinkCashEntry(entry.ID)
	return repos.Payments().Save(ctx, p)
}

// syncCashEntry rewrites the linked cash entry from the payment, creating it when
// the link is missing or dangling
func syncCashEntry(ctx context.Context, repos txn.Repositories, scope shared.Scope, p *finance.Payment) error {
	if p.CashEntryID == nil {
		return postCashEntry(ctx, repos, scope, p)
	}
	entry, err := repos.CashEntries().FindByID(ctx, scope, *p.CashEntryID)
	if errors.Is(err, shared.ErrNotFound) {
		return postCashEntry(ctx, repos, scope, p)
	}
	if err != nil {
		return err
	}
	previousDate := entry.Date
	entry.SyncPayment(p)
	return finance.NewCashBook(repos.CashEntries()).Repost(ctx, scope, entry, previousDate)
}

func removeCashEntry(ctx context.Context, repos txn.Repositories, scope shared.Scope, p *finance.Payment) error {
	if p.CashEntryID == nil {
		return nil
	}
	entry, err := repos.CashEntries().FindByID(ctx, scope, *p.CashEntryID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return finance.NewCashBook(repos.CashEntries()).Remove(ctx, scope, entry)
}
