package model

import (
	"time"

	"github.com/google/uuid"
)

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewID returns a time-ordered identifier, so sorting ids ascending follows
// creation order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func NewBase(now time.Time) BaseModel {
	return BaseModel{ID: NewID(), CreatedAt: now, UpdatedAt: now}
}
