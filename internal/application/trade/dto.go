package trade

import (
	"time"

	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderRequest creates a sales order, or replaces one when ID is set.
// A nil TotalAmount means the sum of the line totals plus GSTAmount.
type SalesOrderRequest struct {
	ID          *uuid.UUID
	CustomerID  uuid.UUID
	OrderNumber string
	OrderDate   time.Time
	Remarks     string
	GST         decimal.Decimal
	GSTAmount   decimal.Decimal
	TotalAmount *decimal.Decimal
	Items       []trade.SalesLine
}

// PurchaseOrderRequest creates a purchase order, or replaces one when ID is set
type PurchaseOrderRequest struct {
	ID          *uuid.UUID
	CustomerID  uuid.UUID
	OrderNumber string
	OrderDate   time.Time
	Remarks     string
	GST         decimal.Decimal
	GSTAmount   decimal.Decimal
	TotalAmount *decimal.Decimal
	Items       []trade.PurchaseLine
}

func pricing(gst, gstAmount decimal.Decimal, total *decimal.Decimal) trade.Pricing {
	return trade.Pricing{GST: gst, GSTAmount: gstAmount, Total: total}
}

// SettlementResponse carries the money fields of an order
type SettlementResponse struct {
	GST            decimal.Decimal     `json:"gst"`
	GSTAmount      decimal.Decimal     `json:"gst_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaidAmount     decimal.Decimal     `json:"paid_amount"`
	BalancePayment decimal.Decimal     `json:"balance_payment"`
	PaymentStatus  trade.PaymentStatus `json:"payment_status"`
}

// SalesOrderItemResponse represents a sales order line
type SalesOrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ReadyItemID uuid.UUID       `json:"ready_item_id"`
	Quality     string          `json:"quality"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Rate        decimal.Decimal `json:"rate"`
	Remarks     string          `json:"remarks,omitempty"`
}

// SalesOrderResponse represents a sales order
type SalesOrderResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	OrderDate   time.Time `json:"order_date"`
	Remarks     string    `json:"remarks,omitempty"`
	SettlementResponse
	Items     []SalesOrderItemResponse `json:"items"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// PurchaseOrderItemResponse represents a purchase order line
type PurchaseOrderItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	RawMaterialID uuid.UUID       `json:"raw_material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	NetQuantity   decimal.Decimal `json:"net_quantity"`
	FringeCost    decimal.Decimal `json:"fringe_cost"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Remarks       string          `json:"remarks,omitempty"`
}

// PurchaseOrderResponse represents a purchase order
type PurchaseOrderResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	OrderDate   time.Time `json:"order_date"`
	Remarks     string    `json:"remarks,omitempty"`
	SettlementResponse
	Items     []PurchaseOrderItemResponse `json:"items"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

func toSettlementResponse(s trade.Settlement) SettlementResponse {
	return SettlementResponse{
		GST:            s.GST,
		GSTAmount:      s.GSTAmount,
		TotalAmount:    s.TotalAmount,
		PaidAmount:     s.PaidAmount,
		BalancePayment: s.BalancePayment,
		PaymentStatus:  s.PaymentStatus,
	}
}

// ToSalesOrderResponse converts a domain sales order
func ToSalesOrderResponse(o *trade.SalesOrder) SalesOrderResponse {
	items := make([]SalesOrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = SalesOrderItemResponse{
			ID:          it.ID,
			ReadyItemID: it.ReadyItemID,
			Quality:     it.Quality,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Rate:        it.Rate,
			Remarks:     it.Remarks,
		}
	}
	return SalesOrderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerID,
		OrderDate:          o.OrderDate,
		Remarks:            o.Remarks,
		SettlementResponse: toSettlementResponse(o.Settlement),
		Items:              items,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// ToPurchaseOrderResponse converts a domain purchase order
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = PurchaseOrderItemResponse{
			ID:            it.ID,
			RawMaterialID: it.RawMaterialID,
			Quantity:      it.Quantity,
			NetQuantity:   it.NetQuantity,
			FringeCost:    it.FringeCost,
			UnitPrice:     it.UnitPrice,
			TotalPrice:    it.TotalPrice,
			Remarks:       it.Remarks,
		}
	}
	return PurchaseOrderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerID,
		OrderDate:          o.OrderDate,
		Remarks:            o.Remarks,
		SettlementResponse: toSettlementResponse(o.Settlement),
		Items:              items,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}
