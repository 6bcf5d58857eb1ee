package returns

import "time"

// Status represents the lifecycle of a return record.
type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// Record mirrors the return_records table.
type Record struct {
	ID         string
	ShipmentID string
	Reason     string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}
