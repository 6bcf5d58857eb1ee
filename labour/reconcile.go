package labour

import "math"

// Tolerance is the margin applied to every currency comparison. It absorbs
// floating rounding only; anything beyond it is a real discrepancy the
// operator must acknowledge.
const Tolerance = 0.01

// recompute returns a copy of a with TotalExpenses derived from the four
// expense components. Invoked at every mutation boundary so the stored total
// can never drift from its parts.
func recompute(a Assignment) Assignment {
	a.TotalExpenses = a.Expenses().Sum()
	return a
}

// Reconciliation compares what is owed for an assignment against what was
// collected.
type Reconciliation struct {
	TotalDue      float64
	Remaining     float64
	RequiredTotal float64
}

// Balanced reports whether the remaining balance is within Tolerance of zero.
func (r Reconciliation) Balanced() bool {
	return math.Abs(r.Remaining) <= Tolerance
}

// Reconcile computes the balance for an assignment against the shipment's
// gross charges. RequiredTotal is the collected amount that settles the
// account exactly; it is what the correction protocol asks the operator to
// confirm.
func Reconcile(totalCharges float64, a Assignment) Reconciliation {
	due := totalCharges + a.TotalExpenses
	return Reconciliation{
		TotalDue:      due,
		Remaining:     due - a.CollectedAmount,
		RequiredTotal: due,
	}
}
