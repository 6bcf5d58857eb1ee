package labour

// Terminal reports whether no further transitions are permitted from s.
func (s Status) Terminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// Valid reports whether s is one of the five lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusAssigned, StatusDelivered, StatusCollected, StatusSettled, StatusCancelled:
		return true
	}
	return false
}

// next returns the status op leads to. Only meaningful when canTransition
// holds for the same pair.
func (op Operation) next() Status {
	switch op {
	case OpDeliver:
		return StatusDelivered
	case OpCollect:
		return StatusCollected
	case OpSettle:
		return StatusSettled
	case OpCancel:
		return StatusCancelled
	}
	return ""
}

// canTransition reports whether op is legal from the current status. Status
// only ever advances forward through assigned -> delivered -> collected ->
// settled; COLLECT from collected is the correction re-entry, and CANCEL is
// reachable from any non-terminal state.
func canTransition(from Status, op Operation) bool {
	switch op {
	case OpDeliver:
		return from == StatusAssigned
	case OpCollect:
		return from == StatusDelivered || from == StatusCollected
	case OpSettle:
		return from == StatusCollected
	case OpCancel:
		return !from.Terminal()
	}
	return false
}
