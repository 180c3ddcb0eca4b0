package drv

import (
	"sync"
	"time"

	"github.com/dpetrov/elevator-cab/internal/domain"
)

// SimulatedDriver is an in-memory stand-in for the hardware driver
// described in the external driver contract: it tracks lamp state,
// button-signal state, the stop/obstruction switches and a simulated
// floor sensor that reports UnknownFloor while "between floors", the
// same blindness window a real four-sensor floor detector has while a
// cab transits between two landings.
//
// All mutable state is guarded by one mutex; test code and the HTTP
// command-injection surface call the Press*/SetObstruction/SetStop
// setters from outside the control goroutine, while the control engine
// itself only calls the Driver interface methods.
type SimulatedDriver struct {
	mu sync.Mutex

	minFloor, maxFloor int
	floor              int
	betweenFloors      bool
	transitPerFloor    time.Duration

	moving    bool
	direction domain.Direction
	stopCh    chan struct{}

	lamps   map[domain.Button]bool
	signals map[domain.Button]bool

	stopLamp      bool
	doorOpenLamp  bool

	stopSwitch        bool
	obstructionSwitch bool
}

// NewSimulatedDriver creates a driver parked at minFloor with every lamp
// off and every switch released. transitPerFloor controls how long a
// single-floor move takes to simulate, scaled down from the reference
// motor speed so tests run fast.
func NewSimulatedDriver(minFloor, maxFloor int, transitPerFloor time.Duration) *SimulatedDriver {
	return &SimulatedDriver{
		minFloor:        minFloor,
		maxFloor:        maxFloor,
		floor:           minFloor,
		transitPerFloor: transitPerFloor,
		lamps:           make(map[domain.Button]bool),
		signals:         make(map[domain.Button]bool),
	}
}

func (d *SimulatedDriver) MinFloor() int { return d.minFloor }
func (d *SimulatedDriver) MaxFloor() int { return d.maxFloor }

// SetMotorSpeed starts (or redirects) simulated motion towards the given
// direction. Motion continues, one floor at a time, until StopElevator
// is called or an end stop is reached.
func (d *SimulatedDriver) SetMotorSpeed(dir domain.Direction, speed int) {
	d.mu.Lock()
	if d.moving && d.direction == dir {
		d.mu.Unlock()
		return
	}
	if d.moving {
		close(d.stopCh)
	}
	d.moving = true
	d.direction = dir
	stopCh := make(chan struct{})
	d.stopCh = stopCh
	d.mu.Unlock()

	go d.runMotion(dir, stopCh)
}

func (d *SimulatedDriver) runMotion(dir domain.Direction, stopCh chan struct{}) {
	ticker := time.NewTicker(d.transitPerFloor)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			d.mu.Lock()
			d.betweenFloors = true
			d.mu.Unlock()

			time.Sleep(d.transitPerFloor / 4)

			d.mu.Lock()
			if dir == domain.DirectionUp {
				if d.floor < d.maxFloor {
					d.floor++
				}
			} else if dir == domain.DirectionDown {
				if d.floor > d.minFloor {
					d.floor--
				}
			}
			d.betweenFloors = false
			reachedEnd := (dir == domain.DirectionUp && d.floor >= d.maxFloor) ||
				(dir == domain.DirectionDown && d.floor <= d.minFloor)
			d.mu.Unlock()

			if reachedEnd {
				return
			}
		}
	}
}

// StopElevator halts simulated motion immediately.
func (d *SimulatedDriver) StopElevator() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.moving {
		close(d.stopCh)
		d.moving = false
	}
	d.betweenFloors = false
}

func (d *SimulatedDriver) SetButtonLamp(btn domain.Button, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lamps[btn] = on
}

func (d *SimulatedDriver) SetStopLamp(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLamp = on
}

func (d *SimulatedDriver) SetDoorOpenLamp(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doorOpenLamp = on
}

func (d *SimulatedDriver) SetFloorIndicator(floor int) {
	// Purely cosmetic in simulation; no state to track.
	_ = floor
}

func (d *SimulatedDriver) Shutdown() {
	d.StopElevator()
}

func (d *SimulatedDriver) GetFloor() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.betweenFloors {
		return UnknownFloor
	}
	return d.floor
}

func (d *SimulatedDriver) GetButtonSignal(btn domain.Button) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.signals[btn]
}

func (d *SimulatedDriver) GetButtonLamp(btn domain.Button) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lamps[btn]
}

func (d *SimulatedDriver) GetStop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopSwitch
}

func (d *SimulatedDriver) GetObstruction() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.obstructionSwitch
}

func (d *SimulatedDriver) GetStopLamp() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLamp
}

// --- test / simulation control surface, not part of the Driver interface ---

// PressButton latches a button signal as pressed or released, as if a
// passenger had pushed it.
func (d *SimulatedDriver) PressButton(btn domain.Button, pressed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signals[btn] = pressed
}

// SetStopSwitch simulates the physical stop switch toggling.
func (d *SimulatedDriver) SetStopSwitch(pressed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopSwitch = pressed
}

// SetObstructionSwitch simulates the door obstruction switch toggling.
func (d *SimulatedDriver) SetObstructionSwitch(obstructed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.obstructionSwitch = obstructed
}

// SetFloor forces the simulated floor directly, used to seed restart-
// recovery scenarios without waiting out simulated transit time.
func (d *SimulatedDriver) SetFloor(floor int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.floor = floor
	d.betweenFloors = false
}
