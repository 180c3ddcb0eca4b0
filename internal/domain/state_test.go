package domain

import "testing"

func TestNewElevatorState_Defaults(t *testing.T) {
	bounds := FloorBounds{Min: 1, Max: 4}
	s := NewElevatorState(7, bounds)

	if s.LastFloor != bounds.Min {
		t.Fatalf("expected initial lastFloor %d, got %d", bounds.Min, s.LastFloor)
	}
	if s.Direction != DirectionNone {
		t.Fatalf("expected initial direction none, got %v", s.Direction)
	}
	s.AssertConsistency(bounds) // must not panic
}

func TestElevatorState_AssertConsistencyPanics(t *testing.T) {
	bounds := FloorBounds{Min: 1, Max: 4}
	s := NewElevatorState(1, bounds)
	s.LastFloor = 99

	defer func() {
		if recover() == nil {
			t.Fatal("expected AssertConsistency to panic on out-of-bounds lastFloor")
		}
	}()
	s.AssertConsistency(bounds)
}

func TestStateChange_CloneIsIndependent(t *testing.T) {
	bounds := FloorBounds{Min: 1, Max: 4}
	s := NewElevatorState(1, bounds)
	s.InsideButtons.Set(true, 3, bounds)

	sc := NewStateChange(ChangeInsideButtonPressed, 3, s, 1000)

	s.InsideButtons.Set(false, 3, bounds)
	if !sc.State.InsideButtons.Get(3, bounds) {
		t.Fatal("StateChange snapshot must not be affected by later mutation of the source state")
	}
}
