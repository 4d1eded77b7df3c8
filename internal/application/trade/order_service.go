// Package trade records sales and purchase orders. Every order write moves stock
// on the order date and re-sums the customer's account in the same transaction.
package trade

import (
	"context"
	"slices"
	"time"

	appfinance "github.com/erp/backoffice/internal/application/finance"
	appinventory "github.com/erp/backoffice/internal/application/inventory"
	"github.com/erp/backoffice/internal/application/txn"
	"github.com/erp/backoffice/internal/domain/inventory"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService creates, replaces and deletes orders
type OrderService struct {
	runner         *txn.Runner
	clock          shared.Clock
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(runner *txn.Runner, clock shared.Clock, zapLogger *zap.Logger) *OrderService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &OrderService{runner: runner, clock: clock, logger: zapLogger}
}

// SetEventPublisher sets the event publisher for order events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// stockMoves is the quantity an order moves per stock ledger
type stockMoves map[inventory.ItemRef]decimal.Decimal

func (m stockMoves) add(ref inventory.ItemRef, qty decimal.Decimal) {
	m[ref] = m[ref].Add(qty)
}

// refs returns the ledgers in lock-key order so postings run deterministically
func (m stockMoves) refs(scope shared.Scope) []inventory.ItemRef {
	out := make([]inventory.ItemRef, 0, len(m))
	for ref := range m {
		out = append(out, ref)
	}
	slices.SortFunc(out, func(a, b inventory.ItemRef) int {
		ka, kb := a.LockKey(scope), b.LockKey(scope)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return out
}

func (m stockMoves) keys(scope shared.Scope) []string {
	keys := make([]string, 0, len(m))
	for ref := range m {
		keys = append(keys, ref.LockKey(scope))
	}
	return keys
}

// sameRefs reports whether both move sets touch the same ledgers
func (m stockMoves) sameRefs(other stockMoves) bool {
	if len(m) != len(other) {
		return false
	}
	for ref := range m {
		if _, ok := other[ref]; !ok {
			return false
		}
	}
	return true
}

func salesMoves(items []trade.SalesOrderItem) stockMoves {
	moves := stockMoves{}
	for _, it := range items {
		moves.add(inventory.ReadyItemRef(it.ReadyItemID, it.Quality), it.Quantity)
	}
	return moves
}

func salesLineMoves(lines []trade.SalesLine) stockMoves {
	moves := stockMoves{}
	for _, l := range lines {
		moves.add(inventory.ReadyItemRef(l.ReadyItemID, l.Quality), l.Quantity)
	}
	return moves
}

func purchaseMoves(items []trade.PurchaseOrderItem) stockMoves {
	moves := stockMoves{}
	for _, it := range items {
		moves.add(inventory.RawMaterialRef(it.RawMaterialID), it.StockQuantity())
	}
	return moves
}

func purchaseLineMoves(lines []trade.PurchaseLine) stockMoves {
	moves := stockMoves{}
	for _, l := range lines {
		moves.add(inventory.RawMaterialRef(l.RawMaterialID), l.Quantity)
	}
	return moves
}

// orderPlan is what a write read before taking its locks
type orderPlan struct {
	customerID uuid.UUID
	moves      stockMoves
}

func (p *orderPlan) keys(scope shared.Scope, orderID uuid.UUID) []string {
	if p == nil {
		return nil
	}
	return append(p.moves.keys(scope), txn.AccountKey(scope, p.customerID), txn.OrderKey(scope, orderID))
}

func (p *orderPlan) matches(customerID uuid.UUID, moves stockMoves) bool {
	return p.customerID == customerID && p.moves.sameRefs(moves)
}

// UpsertSalesOrder creates a sales order, or replaces the lines and header of an
// existing one. The stock drawn by the previous lines is returned first, so a
// replacement only needs stock for the difference.
func (s *OrderService) UpsertSalesOrder(ctx context.Context, scope shared.Scope, req SalesOrderRequest) (*SalesOrderResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "sales order must have at least one item")
	}

	var plan *orderPlan
	var orderID uuid.UUID
	if req.ID != nil {
		orderID = *req.ID
		previous, err := s.loadSales(ctx, scope, orderID)
		if err != nil {
			return nil, err
		}
		plan = &orderPlan{customerID: previous.CustomerID, moves: salesMoves(previous.Items)}
	}
	moves := salesLineMoves(req.Items)
	keys := append(moves.keys(scope), txn.AccountKey(scope, req.CustomerID))
	keys = append(keys, plan.keys(scope, orderID)...)

	var (
		events  txn.Events
		order   *trade.SalesOrder
		created = req.ID == nil
	)
	err := s.runner.Run(ctx, keys, func(repos txn.Repositories) error {
		if _, err := repos.Customers().FindByID(ctx, scope, req.CustomerID); err != nil {
			return err
		}
		ledger := inventory.NewLedger(repos.StockEntries())
		previousCustomer := uuid.Nil

		if created {
			var err error
			if order, err = trade.NewSalesOrder(scope, req.CustomerID, req.OrderNumber, req.OrderDate); err != nil {
				return err
			}
			order.Remarks = req.Remarks
		} else {
			var err error
			if order, err = repos.SalesOrders().FindByID(ctx, scope, orderID); err != nil {
				return err
			}
			if !plan.matches(order.CustomerID, salesMoves(order.Items)) {
				return shared.Errorf(shared.ErrConcurrencyConflict, "sales order %s changed while the update was being prepared", orderID)
			}
			previousCustomer = order.CustomerID
			if err := restock(ctx, ledger, repos, scope, salesMoves(order.Items), order.OrderDate, true); err != nil {
				return err
			}
			if err := order.Revise(req.CustomerID, req.OrderDate, req.Remarks); err != nil {
				return err
			}
			if req.OrderNumber != "" {
				order.OrderNumber = req.OrderNumber
			}
		}

		if err := order.ReplaceItems(req.Items, pricing(req.GST, req.GSTAmount, req.TotalAmount)); err != nil {
			return err
		}
		current := salesMoves(order.Items)
		units, err := stockUnits(ctx, repos, scope, current)
		if err != nil {
			return err
		}
		for _, ref := range current.refs(scope) {
			if err := ledger.EnsureAvailable(ctx, scope, ref, current[ref]); err != nil {
				return err
			}
		}
		if err := repos.SalesOrders().Save(ctx, order); err != nil {
			return err
		}
		for _, ref := range current.refs(scope) {
			if _, err := ledger.DeductStock(ctx, scope, ref, current[ref], order.OrderDate, units[ref]); err != nil {
				return err
			}
		}

		if err := recompute(ctx, repos, scope, previousCustomer, order.CustomerID); err != nil {
			return err
		}
		events.Add(trade.NewSalesOrderRecordedEvent(order, created))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logOrder(ctx, "Sales order recorded", order.ID, order.OrderNumber, order.CustomerID, order.TotalAmount, created)
	s.publish(ctx, &events)
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// UpsertPurchaseOrder creates a purchase order, or replaces the lines and header
// of an existing one. Purchased raw material enters stock at its net quantity
// when measured, otherwise at the gross quantity.
func (s *OrderService) UpsertPurchaseOrder(ctx context.Context, scope shared.Scope, req PurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "purchase order must have at least one item")
	}

	var plan *orderPlan
	var orderID uuid.UUID
	if req.ID != nil {
		orderID = *req.ID
		previous, err := s.loadPurchase(ctx, scope, orderID)
		if err != nil {
			return nil, err
		}
		plan = &orderPlan{customerID: previous.CustomerID, moves: purchaseMoves(previous.Items)}
	}
	moves := purchaseLineMoves(req.Items)
	keys := append(moves.keys(scope), txn.AccountKey(scope, req.CustomerID))
	keys = append(keys, plan.keys(scope, orderID)...)

	var (
		events  txn.Events
		order   *trade.PurchaseOrder
		created = req.ID == nil
	)
	err := s.runner.Run(ctx, keys, func(repos txn.Repositories) error {
		if _, err := repos.Customers().FindByID(ctx, scope, req.CustomerID); err != nil {
			return err
		}
		ledger := inventory.NewLedger(repos.StockEntries())
		previousCustomer := uuid.Nil

		if created {
			var err error
			if order, err = trade.NewPurchaseOrder(scope, req.CustomerID, req.OrderNumber, req.OrderDate); err != nil {
				return err
			}
			order.Remarks = req.Remarks
		} else {
			var err error
			if order, err = repos.PurchaseOrders().FindByID(ctx, scope, orderID); err != nil {
				return err
			}
			if !plan.matches(order.CustomerID, purchaseMoves(order.Items)) {
				return shared.Errorf(shared.ErrConcurrencyConflict, "purchase order %s changed while the update was being prepared", orderID)
			}
			previousCustomer = order.CustomerID
			if err := restock(ctx, ledger, repos, scope, purchaseMoves(order.Items), order.OrderDate, false); err != nil {
				return err
			}
			if err := order.Revise(req.CustomerID, req.OrderDate, req.Remarks); err != nil {
				return err
			}
			if req.OrderNumber != "" {
				order.OrderNumber = req.OrderNumber
			}
		}

		if err := order.ReplaceItems(req.Items, pricing(req.GST, req.GSTAmount, req.TotalAmount)); err != nil {
			return err
		}
		current := purchaseMoves(order.Items)
		units, err := stockUnits(ctx, repos, scope, current)
		if err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return err
		}
		for _, ref := range current.refs(scope) {
			if _, err := ledger.AddStock(ctx, scope, ref, current[ref], order.OrderDate, units[ref]); err != nil {
				return err
			}
		}

		if err := recompute(ctx, repos, scope, previousCustomer, order.CustomerID); err != nil {
			return err
		}
		events.Add(trade.NewPurchaseOrderRecordedEvent(order, created))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logOrder(ctx, "Purchase order recorded", order.ID, order.OrderNumber, order.CustomerID, order.TotalAmount, created)
	s.publish(ctx, &events)
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// DeleteSalesOrder soft deletes a sales order and returns its items to stock
func (s *OrderService) DeleteSalesOrder(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	previous, err := s.loadSales(ctx, scope, id)
	if err != nil {
		return err
	}
	plan := &orderPlan{customerID: previous.CustomerID, moves: salesMoves(previous.Items)}

	var (
		events txn.Events
		order  *trade.SalesOrder
	)
	err = s.runner.Run(ctx, plan.keys(scope, id), func(repos txn.Repositories) error {
		var err error
		if order, err = repos.SalesOrders().FindByID(ctx, scope, id); err != nil {
			return err
		}
		moves := salesMoves(order.Items)
		if !plan.matches(order.CustomerID, moves) {
			return shared.Errorf(shared.ErrConcurrencyConflict, "sales order %s changed while the delete was being prepared", id)
		}
		if err := order.SoftDelete(s.clock.Now()); err != nil {
			return err
		}
		if err := repos.SalesOrders().Save(ctx, order); err != nil {
			return err
		}
		if err := restock(ctx, inventory.NewLedger(repos.StockEntries()), repos, scope, moves, order.OrderDate, true); err != nil {
			return err
		}
		if err := recompute(ctx, repos, scope, order.CustomerID); err != nil {
			return err
		}
		events.Add(trade.NewSalesOrderDeletedEvent(order))
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithLogger(ctx, s.logger).Info("Sales order deleted",
		zap.String("order_id", id.String()),
		zap.String("order_number", order.OrderNumber),
	)
	s.publish(ctx, &events)
	return nil
}

// DeletePurchaseOrder soft deletes a purchase order and takes its material back
// out of stock
func (s *OrderService) DeletePurchaseOrder(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	previous, err := s.loadPurchase(ctx, scope, id)
	if err != nil {
		return err
	}
	plan := &orderPlan{customerID: previous.CustomerID, moves: purchaseMoves(previous.Items)}

	var (
		events txn.Events
		order  *trade.PurchaseOrder
	)
	err = s.runner.Run(ctx, plan.keys(scope, id), func(repos txn.Repositories) error {
		var err error
		if order, err = repos.PurchaseOrders().FindByID(ctx, scope, id); err != nil {
			return err
		}
		moves := purchaseMoves(order.Items)
		if !plan.matches(order.CustomerID, moves) {
			return shared.Errorf(shared.ErrConcurrencyConflict, "purchase order %s changed while the delete was being prepared", id)
		}
		if err := order.SoftDelete(s.clock.Now()); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return err
		}
		if err := restock(ctx, inventory.NewLedger(repos.StockEntries()), repos, scope, moves, order.OrderDate, false); err != nil {
			return err
		}
		if err := recompute(ctx, repos, scope, order.CustomerID); err != nil {
			return err
		}
		events.Add(trade.NewPurchaseOrderDeletedEvent(order))
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithLogger(ctx, s.logger).Info("Purchase order deleted",
		zap.String("order_id", id.String()),
		zap.String("order_number", order.OrderNumber),
	)
	s.publish(ctx, &events)
	return nil
}

// GetSalesOrder returns a sales order with its items
func (s *OrderService) GetSalesOrder(ctx context.Context, scope shared.Scope, id uuid.UUID) (*SalesOrderResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	order, err := s.loadSales(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// ListSalesOrders returns the customer's sales orders by order date
func (s *OrderService) ListSalesOrders(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]SalesOrderResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var orders []trade.SalesOrder
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := repos.Customers().FindByID(ctx, scope, customerID); err != nil {
			return err
		}
		var err error
		orders, err = repos.SalesOrders().FindForCustomer(ctx, scope, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]SalesOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToSalesOrderResponse(&orders[i])
	}
	return out, nil
}

// GetPurchaseOrder returns a purchase order with its items
func (s *OrderService) GetPurchaseOrder(ctx context.Context, scope shared.Scope, id uuid.UUID) (*PurchaseOrderResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	order, err := s.loadPurchase(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// ListPurchaseOrders returns the customer's purchase orders by order date
func (s *OrderService) ListPurchaseOrders(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]PurchaseOrderResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var orders []trade.PurchaseOrder
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		if _, err := repos.Customers().FindByID(ctx, scope, customerID); err != nil {
			return err
		}
		var err error
		orders, err = repos.PurchaseOrders().FindForCustomer(ctx, scope, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return out, nil
}

func (s *OrderService) loadSales(ctx context.Context, scope shared.Scope, id uuid.UUID) (*trade.SalesOrder, error) {
	var order *trade.SalesOrder
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.SalesOrders().FindByID(ctx, scope, id)
		return err
	})
	return order, err
}

func (s *OrderService) loadPurchase(ctx context.Context, scope shared.Scope, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order *trade.PurchaseOrder
	err := s.runner.Read(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByID(ctx, scope, id)
		return err
	})
	return order, err
}

func (s *OrderService) logOrder(ctx context.Context, msg string, id uuid.UUID, number string, customerID uuid.UUID, total decimal.Decimal, created bool) {
	logger.WithLogger(ctx, s.logger).Info(msg,
		zap.String("order_id", id.String()),
		zap.String("order_number", number),
		zap.String("customer_id", customerID.String()),
		zap.String("total_amount", total.String()),
		zap.Bool("created", created),
	)
}

func (s *OrderService) publish(ctx context.Context, events *txn.Events) {
	if err := events.Publish(ctx, s.eventPublisher); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to publish order events", zap.Error(err))
	}
}

// stockUnits resolves the stock unit of every ledger, failing with ErrNotFound for
// unknown items
func stockUnits(ctx context.Context, repos txn.Repositories, scope shared.Scope, moves stockMoves) (map[inventory.ItemRef]string, error) {
	out := make(map[inventory.ItemRef]string, len(moves))
	for _, ref := range moves.refs(scope) {
		unit, err := appinventory.ItemUnit(ctx, repos, scope, ref)
		if err != nil {
			return nil, err
		}
		out[ref] = unit
	}
	return out, nil
}

// restock reverses an order's stock postings on the date they were made. Sold
// items go back into stock; purchased material comes back out.
func restock(ctx context.Context, ledger *inventory.Ledger, repos txn.Repositories, scope shared.Scope, moves stockMoves, date time.Time, sold bool) error {
	units, err := stockUnits(ctx, repos, scope, moves)
	if err != nil {
		return err
	}
	for _, ref := range moves.refs(scope) {
		if sold {
			_, err = ledger.AddStock(ctx, scope, ref, moves[ref], date, units[ref])
		} else {
			_, err = ledger.RemoveStock(ctx, scope, ref, moves[ref], date, units[ref])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func recompute(ctx context.Context, repos txn.Repositories, scope shared.Scope, customers ...uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(customers))
	for _, id := range customers {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := appfinance.RecomputeAccount(ctx, repos, scope, id); err != nil {
			return err
		}
	}
	return nil
}
