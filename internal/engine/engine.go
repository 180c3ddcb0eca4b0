// Package engine implements the per-cab control engine: the real-time
// tick loop that reads sensors and buttons, decides motion, maintains
// per-cab state, accepts dispatch commands, and emits authoritative
// state-change events.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dpetrov/elevator-cab/internal/domain"
	"github.com/dpetrov/elevator-cab/internal/drv"
	"github.com/dpetrov/elevator-cab/internal/heartbeat"
	"github.com/dpetrov/elevator-cab/internal/queue"
	"github.com/dpetrov/elevator-cab/metrics"
)

// MachineState is one of the three states the spec's state machine
// defines: Normal, WaitingForInButton, Stopped.
type MachineState int

const (
	StateNormal MachineState = iota
	StateWaitingForInButton
	StateStopped
)

func (s MachineState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateWaitingForInButton:
		return "waiting_for_in_button"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds the operational parameters the control engine is
// constructed with, distinct from its construction identity (id, queues,
// heartbeat, driver).
type Config struct {
	WaitThreshold time.Duration // door-hold duration before timeout
	KeepAlive     time.Duration // max interval between emitted state changes
	Speed         int           // motor speed setpoint
}

// Engine is the control engine for a single cab. All of its mutable
// fields are touched only by the goroutine running RunRestartable; every
// other field access (Start, Terminate, Snapshot) goes through a channel
// or an atomic, never a mutex over the whole struct, mirroring the
// "FloorSets confined to one thread, published as snapshots" design.
type Engine struct {
	id     int
	bounds domain.FloorBounds
	driver drv.Driver
	cb     *CircuitBreaker
	hb     heartbeat.Heartbeat

	inbound  *queue.CommandQueue
	outbound *queue.StateChangeQueue

	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	state              domain.ElevatorState
	machine            MachineState
	previousDirection  domain.Direction
	doorWaitingStarted time.Time
	lastStateUpdate    time.Time
	lastTimestamp      int64

	inFloorButtons     domain.FloorSet
	inFloorButtonsLast domain.FloorSet
	stopState          bool

	terminateCh chan struct{}
	doneCh      chan struct{}

	snapshotCh chan chan domain.ElevatorState
}

// New constructs an Engine and restores pending requests from whatever
// lamps are currently lit, per the restart-recovery initialization rule.
func New(id int, bounds domain.FloorBounds, driver drv.Driver, hb heartbeat.Heartbeat, inbound *queue.CommandQueue, outbound *queue.StateChangeQueue, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		id:                id,
		bounds:            bounds,
		driver:            driver,
		cb:                NewCircuitBreaker(5, 2*time.Second, 2),
		hb:                hb,
		inbound:           inbound,
		outbound:          outbound,
		cfg:               cfg,
		logger:            logger,
		now:               time.Now,
		state:             domain.NewElevatorState(id, bounds),
		machine:           StateNormal,
		previousDirection: domain.DirectionNone,
		inFloorButtons:    domain.NewFloorSet(bounds),
		inFloorButtonsLast: domain.NewFloorSet(bounds),
		terminateCh:        make(chan struct{}),
		doneCh:              make(chan struct{}),
		snapshotCh:          make(chan chan domain.ElevatorState),
	}
	e.lastStateUpdate = e.now()
	e.initializeFromLamps()
	return e
}

// initializeFromLamps restores each FloorSet entry from whatever button
// lamps are already lit, and starts in Stopped if the stop lamp is lit —
// the restart-safety behavior that lets a cab recover pending requests
// after an assertion-induced restart without any persisted file.
func (e *Engine) initializeFromLamps() {
	for f := e.bounds.Min; f <= e.bounds.Max; f++ {
		if f != e.bounds.Max {
			btn := domain.Button{Type: domain.CallUp, Floor: f}
			if e.driver.GetButtonLamp(btn) {
				e.state.UpButtons.Set(true, f, e.bounds)
			}
		}
		if f != e.bounds.Min {
			btn := domain.Button{Type: domain.CallDown, Floor: f}
			if e.driver.GetButtonLamp(btn) {
				e.state.DownButtons.Set(true, f, e.bounds)
			}
		}
		btn := domain.Button{Type: domain.TargetFloor, Floor: f}
		if e.driver.GetButtonLamp(btn) {
			e.state.InsideButtons.Set(true, f, e.bounds)
		}
	}
	if e.driver.GetStopLamp() {
		e.machine = StateStopped
		e.state.Stopped = true
	}
}

// Start spawns the control goroutine. On any exit path it guarantees the
// motor is stopped before control is released, including restart after
// an assertion failure.
func (e *Engine) Start() {
	go e.RunRestartable()
}

// Terminate signals cooperative shutdown and blocks until the control
// goroutine has exited (and stopped the motor).
func (e *Engine) Terminate() {
	close(e.terminateCh)
	<-e.doneCh
}

// Snapshot returns a copy of the current ElevatorState, safe to call from
// any goroutine. It round-trips through the control goroutine so no lock
// is ever taken over live FloorSets.
func (e *Engine) Snapshot() domain.ElevatorState {
	reply := make(chan domain.ElevatorState, 1)
	select {
	case e.snapshotCh <- reply:
		return <-reply
	case <-e.doneCh:
		return e.state.Clone()
	}
}

// CircuitBreakerState exposes the driver circuit breaker's state for
// health reporting.
func (e *Engine) CircuitBreakerState() CircuitState {
	return e.cb.State()
}

// RunRestartable is the restart wrapper described in the design notes: it
// re-enters the tick loop after a panic (standing in for an assertion
// failure), the same way the reference implementation's restartWrapper
// re-invokes the loop body after a C++ assertion trips. The loop body is
// otherwise ordinary Go; invariant violations panic and are recovered
// here, never escaping as a returned error.
func (e *Engine) RunRestartable() {
	defer close(e.doneCh)
	for {
		if e.runOnce() {
			return
		}
		e.logger.Warn("control loop restarting after assertion failure", slog.Int("cab_id", e.id))
	}
}

// runOnce runs the tick loop until termination or a panic. It always
// stops the motor before returning, the scope-guard required by the
// motor-stop-on-unwind invariant.
func (e *Engine) runOnce() (terminated bool) {
	defer func() {
		e.driver.StopElevator()
		if r := recover(); r != nil {
			e.logger.Error("control loop invariant violation", slog.Any("panic", r))
			terminated = false
		}
	}()

	for {
		select {
		case <-e.terminateCh:
			return true
		case reply := <-e.snapshotCh:
			reply <- e.state.Clone()
			continue
		default:
		}
		e.tick()
	}
}

// tick runs one cycle of the control loop, the twelve ordered steps.
func (e *Engine) tick() {
	prevFloor := e.state.LastFloor
	e.inFloorButtonsLast = e.inFloorButtons
	e.inFloorButtons = domain.NewFloorSet(e.bounds)
	stopLast := e.stopState

	e.assertConsistency()

	e.scanButtons()

	stopNow := e.driver.GetStop()
	if stopNow != stopLast && stopNow {
		e.handleStopRisingEdge()
	}
	e.stopState = stopNow

	if e.driver.GetObstruction() {
		e.driver.Shutdown()
		for e.driver.GetObstruction() {
			select {
			case <-e.terminateCh:
				return
			default:
			}
		}
		return
	}

	if cmd, ok := e.inbound.TryDequeue(); ok {
		e.applyCommand(cmd)
	}

	floorKnown := false
	if floor := e.driver.GetFloor(); floor != drv.UnknownFloor {
		floorKnown = true
		e.state.LastFloor = floor
		e.driver.SetFloorIndicator(floor)
		if (e.state.Direction == domain.DirectionUp && floor >= e.bounds.Max) ||
			(e.state.Direction == domain.DirectionDown && floor <= e.bounds.Min) {
			e.driver.StopElevator()
			e.state.Direction = domain.DirectionNone
		}
	}

	if e.state.LastFloor != prevFloor {
		e.emit(domain.ChangeOtherChange, e.currentChangeFloor())
	}

	if e.machine != StateStopped {
		e.runStateMachine(floorKnown)
	}

	if e.now().Sub(e.lastStateUpdate) >= e.cfg.KeepAlive {
		e.emit(domain.ChangeKeepAlive, e.currentChangeFloor())
	}

	metrics.IncTick(e.id)
	metrics.SetCircuitBreakerState(e.id, float64(e.cb.State()))
	metrics.SetCommandQueueDepth(e.id, float64(e.inbound.Len()))

	e.hb.Beat()
}

// assertConsistency permits previousDirection == None: that's the
// cold-boot value, and priorityFloorsInDirection(None) always reports no
// priority floors, falling through to optimalDirection()'s tie-break.
func (e *Engine) assertConsistency() {
	e.state.AssertConsistency(e.bounds)
	if !e.previousDirection.IsValid() {
		panic("engine: previousDirection must be a valid direction")
	}
}

func (e *Engine) currentChangeFloor() int {
	f := e.driver.GetFloor()
	if f == drv.UnknownFloor {
		return domain.UnknownFloor
	}
	return f
}

// emit stamps and enqueues a StateChange, enforcing the monotonic
// non-decreasing timestamp invariant across successive emissions.
func (e *Engine) emit(t domain.ChangeType, changeFloor int) {
	ts := e.now().UnixMilli()
	if ts < e.lastTimestamp {
		ts = e.lastTimestamp
	}
	e.lastTimestamp = ts
	e.outbound.Enqueue(domain.NewStateChange(t, changeFloor, e.state, ts))
	e.lastStateUpdate = e.now()

	switch t {
	case domain.ChangeServedUp:
		metrics.IncFloorServed(e.id, "up")
	case domain.ChangeServedDown:
		metrics.IncFloorServed(e.id, "down")
	case domain.ChangeServed:
		metrics.IncFloorServed(e.id, "none")
	}
}

// scanButtons implements tick step 3: for every button in the catalogue,
// a new-press edge latches the lamp, marks the FloorSet, and emits the
// matching *Pressed event; independently, every currently pressed
// TargetFloor button is recorded in inFloorButtons for edge detection.
func (e *Engine) scanButtons() {
	for f := e.bounds.Min; f <= e.bounds.Max; f++ {
		if f != e.bounds.Max {
			e.scanHallButton(domain.CallUp, f, &e.state.UpButtons, domain.ChangeButtonUpPressed)
		}
		if f != e.bounds.Min {
			e.scanHallButton(domain.CallDown, f, &e.state.DownButtons, domain.ChangeButtonDownPressed)
		}
		e.scanInsideButton(f)
	}
}

func (e *Engine) scanHallButton(t domain.ButtonType, floor int, set *domain.FloorSet, changeType domain.ChangeType) {
	btn := domain.Button{Type: t, Floor: floor}
	pressed := e.driver.GetButtonSignal(btn)
	lampOn := e.driver.GetButtonLamp(btn)
	if pressed && !lampOn {
		e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(btn, true) })
		set.Set(true, floor, e.bounds)
		e.emit(changeType, floor)
	}
}

func (e *Engine) scanInsideButton(floor int) {
	btn := domain.Button{Type: domain.TargetFloor, Floor: floor}
	pressed := e.driver.GetButtonSignal(btn)
	if pressed {
		e.inFloorButtons.Set(true, floor, e.bounds)
	}
	lampOn := e.driver.GetButtonLamp(btn)
	if pressed && !lampOn {
		e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(btn, true) })
		e.state.InsideButtons.Set(true, floor, e.bounds)
		e.emit(domain.ChangeInsideButtonPressed, floor)
	}
}

// handleStopRisingEdge implements both stop-button transitions from
// §4.2: Any→Stopped on the first rising edge, Stopped→Normal (resuming
// previousDirection) on the next one.
func (e *Engine) handleStopRisingEdge() {
	if e.machine != StateStopped {
		stopLampWas := e.driver.GetStopLamp()
		e.state.Stopped = !stopLampWas
		e.actuate("set_stop_lamp", func() { e.driver.SetStopLamp(true) })
		e.driver.StopElevator()
		if e.state.Direction != domain.DirectionNone {
			e.previousDirection = e.state.Direction
		}
		e.state.Direction = domain.DirectionNone
		e.machine = StateStopped
		e.emit(domain.ChangeOtherChange, e.currentChangeFloor())
		return
	}

	e.actuate("set_stop_lamp", func() { e.driver.SetStopLamp(false) })
	e.state.Stopped = false
	e.machine = StateNormal
	e.startElevator(e.previousDirection)
	e.emit(domain.ChangeOtherChange, e.currentChangeFloor())
}

// applyCommand implements the command semantics table in §4.4, rejecting
// anything not addressed to this cab.
func (e *Engine) applyCommand(cmd domain.Command) {
	if !cmd.AddressedTo(e.id) {
		e.logger.Debug("dropping misrouted command", slog.Int("target", cmd.TargetElevatorID), slog.Int("cab_id", e.id))
		return
	}

	switch cmd.Type {
	case domain.CommandEmpty:
		return
	case domain.CommandCallToFloorAndGoUp:
		if btn, err := domain.NewButton(domain.CallUp, cmd.TargetFloor, e.bounds.Min, e.bounds.Max); err == nil {
			e.state.UpButtons.Set(true, cmd.TargetFloor, e.bounds)
			e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(btn, true) })
		}
	case domain.CommandCallToFloorAndGoDown:
		if btn, err := domain.NewButton(domain.CallDown, cmd.TargetFloor, e.bounds.Min, e.bounds.Max); err == nil {
			e.state.DownButtons.Set(true, cmd.TargetFloor, e.bounds)
			e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(btn, true) })
		}
	case domain.CommandTurnOnLightUp, domain.CommandTurnOffLightUp:
		if btn, err := domain.NewButton(domain.CallUp, cmd.TargetFloor, e.bounds.Min, e.bounds.Max); err == nil {
			on := cmd.Type == domain.CommandTurnOnLightUp
			e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(btn, on) })
		}
	case domain.CommandTurnOnLightDown, domain.CommandTurnOffLightDown:
		if btn, err := domain.NewButton(domain.CallDown, cmd.TargetFloor, e.bounds.Min, e.bounds.Max); err == nil {
			on := cmd.Type == domain.CommandTurnOnLightDown
			e.actuate("set_button_lamp", func() { e.driver.SetButtonLamp(btn, on) })
		}
	}
}

// actuate runs a driver actuator call through the circuit breaker,
// converting a panicking driver call into a recorded failure instead of
// tearing down the whole tick loop. It is never used for StopElevator —
// the safety stop always executes directly, breaker state notwithstanding.
func (e *Engine) actuate(name string, op func()) {
	err := e.cb.Execute(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: %v", name, r)
			}
		}()
		op()
		return nil
	})
	if err != nil {
		e.logger.Warn("driver actuation failed", slog.String("op", name), slog.Any("error", err))
	}
}
