package model

import "github.com/lib/pq"

// GroupKey is the consolidation key: exact, case-sensitive product and color.
type GroupKey struct {
	ProductName string
	Color       string
}

type Batch struct {
	BaseModel
	ProductName   string         `db:"product_name" json:"product_name"`
	Color         string         `db:"color" json:"color"`
	TotalQuantity int            `db:"total_quantity" json:"total_quantity"`
	OrderNumbers  pq.StringArray `db:"order_numbers" json:"order_ids"`
	PlanID        *string        `db:"plan_id" json:"production_plan_id"`

	// OrderIDs holds the row ids of the orders being linked when the batch is
	// created. Not persisted; the link lives on sales_orders.batch_id.
	OrderIDs []string `db:"-" json:"-"`
}
