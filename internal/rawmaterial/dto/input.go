package dto

type CreateRawMaterialInput struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type CreateProductInput struct {
	Name string `json:"name"`
}

type AddProductMaterialInput struct {
	ProductID       string  `json:"product_id"`
	RawMaterialID   string  `json:"raw_material_id"`
	QuantityPerUnit float64 `json:"quantity_per_unit"`
}
