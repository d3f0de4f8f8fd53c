package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusDelayed   OrderStatus = "delayed"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusDelayed:
		return true
	}
	return false
}

// Order is one sales order line. OrderNumber is the customer-facing order id;
// an order number may appear on several lines with different product/color.
type Order struct {
	BaseModel
	OrderNumber  string      `db:"order_number" json:"order_id"`
	ProductName  string      `db:"product_name" json:"product_name"`
	Color        string      `db:"color" json:"color"`
	Quantity     int         `db:"quantity" json:"quantity"`
	DeliveryDate time.Time   `db:"delivery_date" json:"delivery_date"`
	Status       OrderStatus `db:"status" json:"status"`
	BatchID      *string     `db:"batch_id" json:"batch_id"`
	PlanID       *string     `db:"plan_id" json:"plan_id"`
	Notes        *string     `db:"notes" json:"notes"`
}

// LineKey identifies a duplicate order line.
type LineKey struct {
	OrderNumber string
	ProductName string
	Color       string
}

func (o *Order) LineKey() LineKey {
	return LineKey{OrderNumber: o.OrderNumber, ProductName: o.ProductName, Color: o.Color}
}
