package model

import "time"

const PlanStatusScheduled = "scheduled"

type Plan struct {
	BaseModel
	PlannedDate     time.Time `db:"planned_date" json:"planned_date"`
	BatchID         *string   `db:"batch_id" json:"batch_id"`
	QuantityPlanned int       `db:"quantity_planned" json:"quantity_planned"`
	Status          string    `db:"status" json:"status"`
	MachineID       *string   `db:"machine_id" json:"machine_id"`
}

// PlanDetail is a plan joined with its batch for display.
type PlanDetail struct {
	Plan
	ProductName string `db:"product_name" json:"product_name"`
	Color       string `db:"color" json:"color"`
}
