package delivery

import "time"

// Record confirms the physical handover of one shipment at destination.
type Record struct {
	ID          string
	ShipmentID  string
	ReceivedBy  string
	DeliveredAt time.Time
	Notes       *string
	CreatedAt   time.Time
}
