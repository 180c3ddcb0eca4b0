// Package drv defines the hardware driver capability the control engine
// consumes, and a simulated implementation standing in for the real
// bit-level I/O driver (motor, lamps, sensors, buttons).
package drv

import "github.com/dpetrov/elevator-cab/internal/domain"

// UnknownFloor is returned by GetFloor when the cab is between floor
// sensors — never a real floor number.
const UnknownFloor = -1

// Driver is the narrow capability set the control engine consumes. A real
// implementation maps these calls onto channel-addressed analog/digital
// I/O; SimulatedDriver models the same surface in memory.
type Driver interface {
	MinFloor() int
	MaxFloor() int

	SetMotorSpeed(dir domain.Direction, speed int)
	StopElevator()
	SetButtonLamp(btn domain.Button, on bool)
	SetStopLamp(on bool)
	SetDoorOpenLamp(on bool)
	SetFloorIndicator(floor int)
	Shutdown()

	GetFloor() int // UnknownFloor sentinel when between sensors
	GetButtonSignal(btn domain.Button) bool
	GetButtonLamp(btn domain.Button) bool
	GetStop() bool
	GetObstruction() bool
	GetStopLamp() bool
}
