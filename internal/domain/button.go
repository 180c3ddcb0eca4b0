package domain

import "fmt"

// ButtonType identifies which physical button a Button refers to.
type ButtonType int

const (
	// CallUp is a hall button requesting upward service.
	CallUp ButtonType = iota
	// CallDown is a hall button requesting downward service.
	CallDown
	// TargetFloor is an in-cab destination button.
	TargetFloor
)

// String returns the button type name.
func (t ButtonType) String() string {
	switch t {
	case CallUp:
		return "call_up"
	case CallDown:
		return "call_down"
	case TargetFloor:
		return "target_floor"
	default:
		return "unknown"
	}
}

// Button pairs a button type with the floor it is mounted at.
type Button struct {
	Type  ButtonType
	Floor int
}

// NewButton constructs a Button, rejecting combinations that cannot
// physically exist: CallUp at the top floor, CallDown at the bottom
// floor. TargetFloor is valid at every floor.
func NewButton(t ButtonType, floor, minFloor, maxFloor int) (Button, error) {
	if floor < minFloor || floor > maxFloor {
		return Button{}, NewValidationError(
			fmt.Sprintf("floor %d outside bounds [%d, %d]", floor, minFloor, maxFloor), nil).
			WithContext("floor", floor)
	}
	if t == CallUp && floor == maxFloor {
		return Button{}, NewValidationError("CallUp is not valid at the top floor", nil).
			WithContext("floor", floor)
	}
	if t == CallDown && floor == minFloor {
		return Button{}, NewValidationError("CallDown is not valid at the bottom floor", nil).
			WithContext("floor", floor)
	}
	return Button{Type: t, Floor: floor}, nil
}
