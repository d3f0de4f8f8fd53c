package model

type Machine struct {
	BaseModel
	Name           string `db:"name" json:"name"`
	CapacityPerDay int    `db:"capacity_per_day" json:"capacity_per_day"`
	IsActive       bool   `db:"is_active" json:"is_active"`
}
