package engine

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dpetrov/elevator-cab/internal/domain"
	"github.com/dpetrov/elevator-cab/internal/drv"
	"github.com/dpetrov/elevator-cab/internal/heartbeat"
	"github.com/dpetrov/elevator-cab/internal/queue"
)

func newTestEngine(t *testing.T) (*Engine, *drv.SimulatedDriver) {
	t.Helper()
	d := drv.NewSimulatedDriver(1, 4, 5*time.Millisecond)
	e := New(1, domain.FloorBounds{Min: 1, Max: 4}, d, heartbeat.NewWatchdog(time.Second),
		queue.NewCommandQueue(4), queue.NewStateChangeQueue(),
		Config{WaitThreshold: 50 * time.Millisecond, KeepAlive: time.Hour, Speed: 300},
		slog.Default())
	return e, d
}

func TestShouldStop_InsideButton(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.InsideButtons.Set(true, 3, e.bounds)
	if !e.shouldStop(3) {
		t.Fatal("expected shouldStop=true for a pending inside button at this floor")
	}
	if e.shouldStop(2) {
		t.Fatal("expected shouldStop=false for a floor with no pending button")
	}
}

func TestShouldStop_HallButtonMatchesDirection(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.Direction = domain.DirectionUp
	e.state.UpButtons.Set(true, 3, e.bounds)
	// A second pending floor keeps floor 3 from being the only one left,
	// which would stop the cab regardless of direction.
	e.state.DownButtons.Set(true, 1, e.bounds)

	if !e.shouldStop(3) {
		t.Fatal("expected shouldStop=true: moving up into a pending up-call")
	}

	e.state.Direction = domain.DirectionDown
	if e.shouldStop(3) {
		t.Fatal("expected shouldStop=false: moving down past a pending up-call")
	}
}

func TestShouldStop_SingleRemainingFloor(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.Direction = domain.DirectionDown
	e.state.UpButtons.Set(true, 3, e.bounds)

	if !e.shouldStop(3) {
		t.Fatal("expected shouldStop=true: only one floor left to serve, regardless of direction")
	}
}

func TestOptimalDirection_PrefersInsideButtons(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.LastFloor = 2
	e.state.InsideButtons.Set(true, 1, e.bounds)
	if dir := e.optimalDirection(); dir != domain.DirectionDown {
		t.Fatalf("expected Down towards the only inside button, got %v", dir)
	}
}

func TestOptimalDirection_TieBreaksUp(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.LastFloor = 2
	e.state.UpButtons.Set(true, 3, e.bounds) // one above
	e.state.DownButtons.Set(true, 1, e.bounds) // one below
	if dir := e.optimalDirection(); dir != domain.DirectionUp {
		t.Fatalf("expected tie to break Up, got %v", dir)
	}
}

func TestPriorityFloorsInDirection(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.LastFloor = 3
	e.state.InsideButtons.Set(true, 2, e.bounds)

	if e.priorityFloorsInDirection(domain.DirectionUp) {
		t.Fatal("inside button is below lastFloor, expected priority in Up to be false")
	}
	if !e.priorityFloorsInDirection(domain.DirectionDown) {
		t.Fatal("inside button is below lastFloor, expected priority in Down to be true")
	}
}

func TestClearDirectionButtonLamp_TopFloorTargetsCallDown(t *testing.T) {
	e, d := newTestEngine(t)
	e.state.LastFloor = e.bounds.Max
	e.state.DownButtons.Set(true, e.bounds.Max, e.bounds)

	e.clearDirectionButtonLamp()

	if e.state.DownButtons.Get(e.bounds.Max, e.bounds) {
		t.Fatal("expected CallDown at top floor to be cleared")
	}
	if d.GetButtonLamp(domain.Button{Type: domain.CallDown, Floor: e.bounds.Max}) {
		t.Fatal("expected CallDown lamp at top floor to be off")
	}
}

func TestClearDirectionButtonLamp_NoChangeWhenAlreadyClear(t *testing.T) {
	e, _ := newTestEngine(t)
	e.state.LastFloor = 2
	e.state.Direction = domain.DirectionUp
	// Nothing set; Set(false, ...) on an already-clear bit returns changed=false.
	e.clearDirectionButtonLamp()
	if e.state.UpButtons.HasAny() {
		t.Fatal("expected no spurious UpButtons membership")
	}
}
