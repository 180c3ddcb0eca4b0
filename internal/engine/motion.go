package engine

import (
	"github.com/dpetrov/elevator-cab/internal/domain"
	"github.com/dpetrov/elevator-cab/internal/drv"
)

// shouldStop implements §4.5: stop if this floor was requested from
// inside, or we are moving towards a pressed hall button here, or — the
// end-stop and "only one floor left to serve" cases — the union of all
// buttons contains this floor and there is nothing else left to serve in
// a direction that would distinguish up from down.
func (e *Engine) shouldStop(currentFloor int) bool {
	s := &e.state
	if s.InsideButtons.Get(currentFloor, e.bounds) {
		return true
	}
	if s.Direction == domain.DirectionUp && s.UpButtons.Get(currentFloor, e.bounds) {
		return true
	}
	if s.Direction == domain.DirectionDown && s.DownButtons.Get(currentFloor, e.bounds) {
		return true
	}
	all := s.AllButtons(e.bounds)
	if !all.Get(currentFloor, e.bounds) {
		return false
	}
	return !all.AnyOther(currentFloor, e.bounds) ||
		all.Equal(s.UpButtons) ||
		all.Equal(s.DownButtons)
}

// hasPendingButtons reports whether any button anywhere is still pending.
func (e *Engine) hasPendingButtons() bool {
	return e.state.AllButtons(e.bounds).HasAny()
}

// startElevator implements §4.5: pick a direction (forcing Up at
// minFloor, Down at maxFloor, falling back to optimalDirection()
// otherwise), command the motor, and close the door.
func (e *Engine) startElevator(hint domain.Direction) {
	direction := hint

	if floor := e.driver.GetFloor(); floor != drv.UnknownFloor {
		e.state.LastFloor = floor
	}
	if e.state.LastFloor == e.bounds.Min {
		direction = domain.DirectionUp
	} else if e.state.LastFloor == e.bounds.Max {
		direction = domain.DirectionDown
	}
	if direction == domain.DirectionNone {
		direction = e.optimalDirection()
	}

	e.state.Direction = direction
	e.previousDirection = direction
	e.actuate("set_motor_speed", func() { e.driver.SetMotorSpeed(direction, e.cfg.Speed) })
	e.actuate("set_door_open_lamp", func() { e.driver.SetDoorOpenLamp(false) })
	e.state.DoorOpen = false
}

// optimalDirection implements §4.5: prefer serving inside buttons; if
// none are pending, serve the union of hall buttons. Count members
// strictly above and below lastFloor; ties favor Up.
func (e *Engine) optimalDirection() domain.Direction {
	floorsToServe := e.state.InsideButtons
	if !floorsToServe.HasAny() {
		floorsToServe = e.state.UpButtons.Union(e.state.DownButtons, e.bounds)
	}

	higher, lower := 0, 0
	for f := e.bounds.Min; f <= e.bounds.Max; f++ {
		if !floorsToServe.Get(f, e.bounds) {
			continue
		}
		if f > e.state.LastFloor {
			higher++
		} else if f < e.state.LastFloor {
			lower++
		}
	}

	if higher >= lower {
		return domain.DirectionUp
	}
	return domain.DirectionDown
}

// priorityFloorsInDirection reports whether insideButtons has a pending
// floor strictly in direction relative to lastFloor — used to honor an
// in-cab destination over an opportunistic hall call while a passenger
// is aboard.
func (e *Engine) priorityFloorsInDirection(direction domain.Direction) bool {
	switch direction {
	case domain.DirectionDown:
		return e.state.InsideButtons.AnyLower(e.state.LastFloor, e.bounds)
	case domain.DirectionUp:
		return e.state.InsideButtons.AnyHigher(e.state.LastFloor, e.bounds)
	default:
		return false
	}
}

// clearDirectionButtonLamp implements §4.5: at an end floor, target the
// lamp that makes physical sense there (CallDown at the top, CallUp at
// the bottom); otherwise target the hall button matching the current
// direction at lastFloor. The lamp is always turned off; ServedUp or
// ServedDown is emitted only if the FloorSet bit actually changed.
func (e *Engine) clearDirectionButtonLamp() {
	var btn domain.Button
	switch {
	case e.state.LastFloor == e.bounds.Max:
		btn = domain.Button{Type: domain.CallDown, Floor: e.bounds.Max}
	case e.state.LastFloor == e.bounds.Min:
		btn = domain.Button{Type: domain.CallUp, Floor: e.bounds.Min}
	case e.state.Direction == domain.DirectionUp:
		btn = domain.Button{Type: domain.CallUp, Floor: e.state.LastFloor}
	case e.state.Direction == domain.DirectionDown:
		btn = domain.Button{Type: domain.CallDown, Floor: e.state.LastFloor}
	default:
		return // direction None away from an end floor: no change required
	}

	var changed bool
	if btn.Type == domain.CallUp {
		changed = e.state.UpButtons.Set(false, btn.Floor, e.bounds)
	} else {
		changed = e.state.DownButtons.Set(false, btn.Floor, e.bounds)
	}

	e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(btn, false) })
	if changed {
		if btn.Type == domain.CallUp {
			e.emit(domain.ChangeServedUp, btn.Floor)
		} else {
			e.emit(domain.ChangeServedDown, btn.Floor)
		}
	}
}
