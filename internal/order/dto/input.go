package dto

type CreateOrderInput struct {
	OrderNumber  string `json:"order_id"`
	ProductName  string `json:"product_name"`
	Color        string `json:"color"`
	Quantity     int    `json:"quantity"`
	DeliveryDate string `json:"delivery_date"` // YYYY-MM-DD
	Notes        string `json:"notes"`
}

type UpdateStatusInput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
