package shipment

import "time"

// Shipment mirrors the shipments table. TotalCharges is derived from the
// four charge fields at write time and is the gross receivable the labour
// settlement reconciles against.
type Shipment struct {
	ID           string
	BilityNumber string
	BilityDate   time.Time
	SenderID     string
	ReceiverID   string
	FromCityID   string
	ToCityID     string
	VehicleID    *string
	Description  *string
	Quantity     int
	WeightKg     float64
	Freight      float64
	LocalCharge  float64
	BilityCharge float64
	OtherCharge  float64
	TotalCharges float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams contains the registration form fields.
type CreateParams struct {
	BilityNumber string
	BilityDate   time.Time
	SenderID     string
	ReceiverID   string
	FromCityID   string
	ToCityID     string
	VehicleID    *string
	Description  *string
	Quantity     int
	WeightKg     float64
	Freight      float64
	LocalCharge  float64
	BilityCharge float64
	OtherCharge  float64
}

// ListFilters narrows and pages the shipment register.
type ListFilters struct {
	FromCityID string
	ToCityID   string
	Page       int
	PageSize   int
}
