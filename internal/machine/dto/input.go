package dto

type CreateMachineInput struct {
	Name           string `json:"name"`
	CapacityPerDay int    `json:"capacity_per_day"`
}

// UpdateMachineInput changes only the fields that are set.
type UpdateMachineInput struct {
	ID             string  `json:"id"`
	Name           *string `json:"name"`
	CapacityPerDay *int    `json:"capacity_per_day"`
	IsActive       *bool   `json:"is_active"`
}
