package domain

import "math"

// ElevatorState is a snapshot of one cab: its identity, last known floor,
// direction, stop/door flags, and the three FloorSets the control engine
// maintains. It is mutated only by the control engine's own goroutine;
// every other consumer sees an immutable Clone published on a StateChange.
type ElevatorState struct {
	ID            int
	Timestamp     int64 // milliseconds since epoch
	LastFloor     int
	Direction     Direction
	Stopped       bool
	DoorOpen      bool
	InsideButtons FloorSet
	UpButtons     FloorSet
	DownButtons   FloorSet
}

// NewElevatorState builds the initial state for a cab: parked at
// minFloor, idle, door closed, stop released, no pending requests.
func NewElevatorState(id int, bounds FloorBounds) ElevatorState {
	return ElevatorState{
		ID:            id,
		LastFloor:     bounds.Min,
		Direction:     DirectionNone,
		InsideButtons: NewFloorSet(bounds),
		UpButtons:     NewFloorSet(bounds),
		DownButtons:   NewFloorSet(bounds),
	}
}

// AssertConsistency panics if any of the state's invariants are violated:
// lastFloor within bounds, direction one of the three valid variants, and
// every FloorSet consistent with bounds. This is deliberately a panic,
// not an error return — per the control engine's design, an invariant
// violation is an assertion failure that the restart wrapper recovers
// from, not a value a caller is expected to handle.
func (s ElevatorState) AssertConsistency(bounds FloorBounds) {
	if s.LastFloor < bounds.Min || s.LastFloor > bounds.Max {
		panic("elevator state: lastFloor out of bounds")
	}
	if !s.Direction.IsValid() {
		panic("elevator state: invalid direction")
	}
	if !s.InsideButtons.Consistent(bounds) || !s.UpButtons.Consistent(bounds) || !s.DownButtons.Consistent(bounds) {
		panic("elevator state: floor set inconsistent with bounds")
	}
}

// Clone returns an independent deep copy suitable for publishing on the
// outbound StateChange queue.
func (s ElevatorState) Clone() ElevatorState {
	c := s
	c.InsideButtons = s.InsideButtons.Clone()
	c.UpButtons = s.UpButtons.Clone()
	c.DownButtons = s.DownButtons.Clone()
	return c
}

// AllButtons returns the union of inside, up and down buttons.
func (s ElevatorState) AllButtons(bounds FloorBounds) FloorSet {
	return s.InsideButtons.Union(s.UpButtons, bounds).Union(s.DownButtons, bounds)
}

// ChangeType identifies the reason a StateChange was emitted.
type ChangeType int

const (
	ChangeNone ChangeType = iota
	ChangeKeepAlive
	ChangeInsideButtonPressed
	ChangeButtonDownPressed
	ChangeButtonUpPressed
	ChangeServed
	ChangeServedUp
	ChangeServedDown
	ChangeOtherChange
)

// String names the change type, used by the session relay's JSON feed.
func (c ChangeType) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeKeepAlive:
		return "keep_alive"
	case ChangeInsideButtonPressed:
		return "inside_button_pressed"
	case ChangeButtonDownPressed:
		return "button_down_pressed"
	case ChangeButtonUpPressed:
		return "button_up_pressed"
	case ChangeServed:
		return "served"
	case ChangeServedUp:
		return "served_up"
	case ChangeServedDown:
		return "served_down"
	case ChangeOtherChange:
		return "other_change"
	default:
		return "unknown"
	}
}

// UnknownFloor is the sentinel changeFloor value meaning "the cab was
// between floor sensors when this change was emitted".
const UnknownFloor = math.MinInt32

// StateChange is a typed event carrying a full ElevatorState snapshot
// plus the reason and floor that produced it.
type StateChange struct {
	Type        ChangeType
	ChangeFloor int
	State       ElevatorState
}

// NewStateChange stamps a StateChange with an immutable clone of state
// and the given timestamp. Timestamps are supplied by the caller (the
// control engine's clock) rather than taken here, keeping this type free
// of wall-clock side effects for testability.
func NewStateChange(t ChangeType, changeFloor int, state ElevatorState, timestampMillis int64) StateChange {
	snap := state.Clone()
	snap.Timestamp = timestampMillis
	return StateChange{Type: t, ChangeFloor: changeFloor, State: snap}
}
