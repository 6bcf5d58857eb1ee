package labour

import "time"

// Status represents the lifecycle state of a labour assignment.
type Status string

const (
	StatusAssigned  Status = "assigned"
	StatusDelivered Status = "delivered"
	StatusCollected Status = "collected"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
)

// Operation names a transition requested against an assignment.
type Operation string

const (
	OpDeliver Operation = "DELIVER"
	OpCollect Operation = "COLLECT"
	OpSettle  Operation = "SETTLE"
	OpCancel  Operation = "CANCEL"
)

// Expenses holds the four reimbursable cost components entered at collection
// time. The stored total is always derived from these, never entered.
type Expenses struct {
	Station       float64
	Bility        float64
	StationLabour float64
	CartLabour    float64
}

// Sum returns the derived total of the four components.
func (e Expenses) Sum() float64 {
	return e.Station + e.Bility + e.StationLabour + e.CartLabour
}

// Assignment mirrors the labour_assignments table. One row per labour person
// dispatched to deliver one shipment and collect its payment.
type Assignment struct {
	ID              string
	ShipmentID      string
	LabourerID      string
	Status          Status
	StationExpense  float64
	BilityExpense   float64
	StationLabour   float64
	CartLabour      float64
	TotalExpenses   float64
	CollectedAmount float64
	AssignedDate    time.Time
	DeliveredDate   *time.Time
	SettledDate     *time.Time
	DueDate         *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Expenses returns the four stored expense components.
func (a Assignment) Expenses() Expenses {
	return Expenses{
		Station:       a.StationExpense,
		Bility:        a.BilityExpense,
		StationLabour: a.StationLabour,
		CartLabour:    a.CartLabour,
	}
}

// Correction is the audit record written whenever an operator revises the
// collected amount of an assignment that is already COLLECTED.
type Correction struct {
	ID           string
	AssignmentID string
	OldAmount    float64
	NewAmount    float64
	Reason       *string
	CreatedAt    time.Time
}

// Event captures an immutable business event appended for an assignment.
type Event struct {
	ID           int64
	AssignmentID string
	Type         string
	ActorID      *string
	CreatedAt    time.Time
	Payload      []byte
}
