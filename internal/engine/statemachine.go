package engine

import (
	"log/slog"

	"github.com/dpetrov/elevator-cab/internal/domain"
)

// runStateMachine implements tick step 9, the state-specific action from
// §4.2 combined with the motion-start policy from §4.5. It is not called
// while the machine is Stopped — that state has no periodic action, only
// the stop-button edge transitions handled in handleStopRisingEdge.
func (e *Engine) runStateMachine(floorKnown bool) {
	switch e.machine {
	case StateNormal:
		e.runNormal(floorKnown)
	case StateWaitingForInButton:
		e.runWaitingForInButton()
	}
}

func (e *Engine) runNormal(floorKnown bool) {
	if floorKnown && e.shouldStop(e.state.LastFloor) {
		e.enterWaitingForInButton()
		return
	}

	if e.state.Direction == domain.DirectionNone && e.hasPendingButtons() {
		hint := domain.DirectionNone
		if e.priorityFloorsInDirection(e.previousDirection) {
			hint = e.previousDirection
		}
		e.startElevator(hint)
		e.clearDirectionButtonLamp()
		e.emit(domain.ChangeOtherChange, e.currentChangeFloor())
	}
}

// enterWaitingForInButton implements the Normal→WaitingForInButton
// transition: clear the target-floor lamp and inside flag at this floor,
// open the door, stop, record when the door started waiting, and emit
// Served.
func (e *Engine) enterWaitingForInButton() {
	floor := e.state.LastFloor
	btn := domain.Button{Type: domain.TargetFloor, Floor: floor}
	e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(btn, false) })
	e.state.InsideButtons.Set(false, floor, e.bounds)

	e.actuate("set_door_open_lamp", func() { e.driver.SetDoorOpenLamp(true) })
	e.state.DoorOpen = true

	e.driver.StopElevator()
	if e.state.Direction != domain.DirectionNone {
		e.previousDirection = e.state.Direction
	}
	e.state.Direction = domain.DirectionNone

	e.doorWaitingStarted = e.now()
	e.machine = StateWaitingForInButton
	e.emit(domain.ChangeServed, floor)
}

// runWaitingForInButton implements the WaitingForInButton→Normal
// transition on either edge: a passenger re-pressing an inside button,
// or the door-hold timeout expiring.
func (e *Engine) runWaitingForInButton() {
	reAdded := domain.HasAdditional(e.inFloorButtonsLast, e.inFloorButtons)
	timedOut := e.now().Sub(e.doorWaitingStarted) > e.cfg.WaitThreshold

	if !reAdded && !timedOut {
		return
	}

	e.actuate("set_door_open_lamp", func() { e.driver.SetDoorOpenLamp(false) })
	e.state.DoorOpen = false
	e.machine = StateNormal

	if timedOut {
		floor := e.state.LastFloor
		upBtn := domain.Button{Type: domain.CallUp, Floor: floor}
		downBtn := domain.Button{Type: domain.CallDown, Floor: floor}

		e.state.UpButtons.Set(false, floor, e.bounds)
		e.state.DownButtons.Set(false, floor, e.bounds)
		e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(upBtn, false) })
		e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(downBtn, false) })
		e.emit(domain.ChangeServedUp, floor)
		e.emit(domain.ChangeServedDown, floor)
		e.logger.Debug("door timeout, treating hall call as satisfied", slog.Int("floor", floor))
	}
}
