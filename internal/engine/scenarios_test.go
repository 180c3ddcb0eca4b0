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

// newScenarioEngine builds a 4-floor cab (minFloor=1, maxFloor=4,
// speed=300, waitThreshold scaled down for fast tests) against a
// SimulatedDriver, started and ready to accept button presses.
func newScenarioEngine(t *testing.T, waitThreshold time.Duration) (*Engine, *drv.SimulatedDriver, *queue.StateChangeQueue) {
	t.Helper()
	d := drv.NewSimulatedDriver(1, 4, 8*time.Millisecond)
	outbound := queue.NewStateChangeQueue()
	e := New(1, domain.FloorBounds{Min: 1, Max: 4}, d, heartbeat.NewWatchdog(time.Second),
		queue.NewCommandQueue(8), outbound,
		Config{WaitThreshold: waitThreshold, KeepAlive: time.Hour, Speed: 300},
		slog.Default())
	e.Start()
	t.Cleanup(e.Terminate)
	return e, d, outbound
}

// waitForChange drains outbound until pred matches or timeout elapses.
func waitForChange(t *testing.T, outbound *queue.StateChangeQueue, timeout time.Duration, pred func(domain.StateChange) bool) domain.StateChange {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resultCh := make(chan domain.StateChange, 1)
		okCh := make(chan bool, 1)
		go func() {
			sc, ok := outbound.Dequeue()
			resultCh <- sc
			okCh <- ok
		}()
		select {
		case sc := <-resultCh:
			if <-okCh && pred(sc) {
				return sc
			}
		case <-time.After(time.Until(deadline)):
			t.Fatalf("timed out waiting for expected state change")
		}
	}
	t.Fatalf("timed out waiting for expected state change")
	return domain.StateChange{}
}

// Scenario 1: a single inside call from the parked floor takes the cab to
// the requested floor and serves it.
func TestScenario_SingleInsideCall(t *testing.T) {
	_, d, outbound := newScenarioEngine(t, time.Second)

	d.PressButton(domain.Button{Type: domain.TargetFloor, Floor: 3}, true)

	sc := waitForChange(t, outbound, 3*time.Second, func(sc domain.StateChange) bool {
		return sc.Type == domain.ChangeServed && sc.ChangeFloor == 3
	})
	if sc.State.LastFloor != 3 {
		t.Fatalf("expected lastFloor=3 at service time, got %d", sc.State.LastFloor)
	}
	if sc.State.InsideButtons.Get(3, domain.FloorBounds{Min: 1, Max: 4}) {
		t.Fatal("expected the served inside button to be cleared")
	}
}

// Scenario 2: a down-call pressed while the cab is parked at the top floor
// is served once the cab heads back down, with the cab stopped at the
// calling floor.
func TestScenario_HallCallOppositeToMotion(t *testing.T) {
	_, d, outbound := newScenarioEngine(t, 200*time.Millisecond)

	// Send the cab up to floor 4 first.
	d.PressButton(domain.Button{Type: domain.TargetFloor, Floor: 4}, true)
	waitForChange(t, outbound, 3*time.Second, func(sc domain.StateChange) bool {
		return sc.Type == domain.ChangeServed && sc.ChangeFloor == 4
	})
	// Release the inside button: a held button is latched again every time
	// its lamp is cleared, which would keep the cab serving floor 4.
	d.PressButton(domain.Button{Type: domain.TargetFloor, Floor: 4}, false)

	// While parked (door timeout will return to Normal), a down-call at
	// floor 2 should eventually be served once the cab heads down.
	d.PressButton(domain.Button{Type: domain.CallDown, Floor: 2}, true)
	sc := waitForChange(t, outbound, 3*time.Second, func(sc domain.StateChange) bool {
		return sc.Type == domain.ChangeServedDown && sc.ChangeFloor == 2
	})
	if sc.State.Direction != domain.DirectionNone {
		t.Fatalf("expected the cab to have stopped to serve the call, got direction %v", sc.State.Direction)
	}
}

// Scenario 3: an "adversarial" hall call pressed ahead of the climbing cab,
// against its direction of travel, is passed without stopping.
func TestScenario_AdversarialHallCall(t *testing.T) {
	_, d, outbound := newScenarioEngine(t, 200*time.Millisecond)

	d.PressButton(domain.Button{Type: domain.TargetFloor, Floor: 4}, true)
	waitForChange(t, outbound, 3*time.Second, func(sc domain.StateChange) bool {
		return sc.Type == domain.ChangeButtonUpPressed || sc.Type == domain.ChangeOtherChange
	})

	// A down-call at floor 2 (opposite the cab's climb) must not be served
	// until the cab later travels down to floor 2.
	d.PressButton(domain.Button{Type: domain.CallDown, Floor: 2}, true)

	sc := waitForChange(t, outbound, 5*time.Second, func(sc domain.StateChange) bool {
		return sc.Type == domain.ChangeServed && sc.ChangeFloor == 4
	})
	if sc.State.DownButtons.Get(2, domain.FloorBounds{Min: 1, Max: 4}) == false {
		t.Fatal("expected the adversarial down-call at floor 2 to still be pending when floor 4 was served")
	}
}

// Scenario 4: the door-hold timeout expires with no re-press; any pending
// hall calls at that floor are treated as satisfied.
func TestScenario_DoorTimeout(t *testing.T) {
	_, d, outbound := newScenarioEngine(t, 40*time.Millisecond)

	d.PressButton(domain.Button{Type: domain.TargetFloor, Floor: 2}, true)
	d.PressButton(domain.Button{Type: domain.CallUp, Floor: 2}, true)
	d.PressButton(domain.Button{Type: domain.CallDown, Floor: 2}, true)

	waitForChange(t, outbound, 3*time.Second, func(sc domain.StateChange) bool {
		return sc.Type == domain.ChangeServed && sc.ChangeFloor == 2
	})

	waitForChange(t, outbound, 2*time.Second, func(sc domain.StateChange) bool {
		return sc.Type == domain.ChangeServedUp && sc.ChangeFloor == 2
	})
	waitForChange(t, outbound, 2*time.Second, func(sc domain.StateChange) bool {
		return sc.Type == domain.ChangeServedDown && sc.ChangeFloor == 2
	})
}

// Scenario 5: pressing the stop button parks the cab and clears direction;
// pressing it again resumes travel.
func TestScenario_StopButton(t *testing.T) {
	_, d, outbound := newScenarioEngine(t, time.Second)

	d.PressButton(domain.Button{Type: domain.TargetFloor, Floor: 4}, true)
	waitForChange(t, outbound, 2*time.Second, func(sc domain.StateChange) bool {
		return sc.State.Direction == domain.DirectionUp
	})

	d.SetStopSwitch(true)
	sc := waitForChange(t, outbound, 2*time.Second, func(sc domain.StateChange) bool {
		return sc.State.Stopped
	})
	if sc.State.Direction != domain.DirectionNone {
		t.Fatalf("expected direction None while stopped, got %v", sc.State.Direction)
	}
	if !d.GetStopLamp() {
		t.Fatal("expected stop lamp lit while stopped")
	}

	d.SetStopSwitch(false)
	d.SetStopSwitch(true)
	sc = waitForChange(t, outbound, 2*time.Second, func(sc domain.StateChange) bool {
		return !sc.State.Stopped
	})
	if d.GetStopLamp() {
		t.Fatal("expected stop lamp off after resuming")
	}
	if sc.State.Direction == domain.DirectionNone {
		t.Fatal("expected the cab to resume its previous direction")
	}
}

// Scenario 6: a fresh engine restarted against a driver whose lamps are
// already lit (simulating an assertion-induced restart) recovers the
// pending requests instead of starting from a blank slate.
func TestScenario_RestartRecovery(t *testing.T) {
	d := drv.NewSimulatedDriver(1, 4, 8*time.Millisecond)
	d.SetButtonLamp(domain.Button{Type: domain.TargetFloor, Floor: 3}, true)
	d.SetButtonLamp(domain.Button{Type: domain.CallUp, Floor: 2}, true)
	d.SetStopLamp(true)

	e := New(2, domain.FloorBounds{Min: 1, Max: 4}, d, heartbeat.NewWatchdog(time.Second),
		queue.NewCommandQueue(4), queue.NewStateChangeQueue(),
		Config{WaitThreshold: time.Second, KeepAlive: time.Hour, Speed: 300},
		slog.Default())

	bounds := domain.FloorBounds{Min: 1, Max: 4}
	if !e.state.InsideButtons.Get(3, bounds) {
		t.Fatal("expected inside button at floor 3 to be recovered from its lit lamp")
	}
	if !e.state.UpButtons.Get(2, bounds) {
		t.Fatal("expected up-call at floor 2 to be recovered from its lit lamp")
	}
	if e.machine != StateStopped || !e.state.Stopped {
		t.Fatal("expected the cab to recover into Stopped because the stop lamp was lit")
	}
}
