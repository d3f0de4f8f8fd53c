package model

type Product struct {
	BaseModel
	Name      string    `db:"name" json:"name"`
	Materials []BOMLine `db:"-" json:"raw_materials"`
}

type RawMaterial struct {
	BaseModel
	Name string `db:"name" json:"name"`
	Unit string `db:"unit" json:"unit"`
}

// ProductRawMaterial maps one unit of a product to a quantity of a raw material.
type ProductRawMaterial struct {
	ID              string  `db:"id" json:"id"`
	ProductID       string  `db:"product_id" json:"product_id"`
	RawMaterialID   string  `db:"raw_material_id" json:"raw_material_id"`
	QuantityPerUnit float64 `db:"quantity_per_unit" json:"quantity_per_unit"`
}

// BOMLine is a ProductRawMaterial joined with its raw material.
type BOMLine struct {
	ProductRawMaterial
	RawMaterialName string `db:"raw_material_name" json:"raw_material_name"`
	Unit            string `db:"unit" json:"unit"`
}
