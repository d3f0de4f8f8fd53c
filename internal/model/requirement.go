package model

type RequirementItem struct {
	RawMaterialName string  `json:"raw_material_name"`
	Unit            string  `json:"unit"`
	QuantityPerUnit float64 `json:"quantity_per_unit"`
	TotalQuantity   float64 `json:"total_quantity"`
}

type BatchRequirement struct {
	BatchID       string            `json:"batch_id"`
	ProductName   string            `json:"product_name"`
	Color         string            `json:"color"`
	TotalQuantity int               `json:"total_quantity"`
	Requirements  []RequirementItem `json:"requirements"`
}
