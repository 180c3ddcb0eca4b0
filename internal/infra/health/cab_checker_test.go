package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dpetrov/elevator-cab/internal/domain"
	"github.com/dpetrov/elevator-cab/internal/drv"
	"github.com/dpetrov/elevator-cab/internal/engine"
	"github.com/dpetrov/elevator-cab/internal/heartbeat"
	"github.com/dpetrov/elevator-cab/internal/queue"
)

func newCabCheckerFixture(t *testing.T) (*CabChecker, *engine.Engine) {
	t.Helper()
	bounds := domain.FloorBounds{Min: 1, Max: 4}
	d := drv.NewSimulatedDriver(bounds.Min, bounds.Max, 5*time.Millisecond)
	hb := heartbeat.NewWatchdog(time.Second)
	eng := engine.New(1, bounds, d, hb, queue.NewCommandQueue(4), queue.NewStateChangeQueue(),
		engine.Config{WaitThreshold: 50 * time.Millisecond, KeepAlive: time.Hour, Speed: 300}, nil)
	eng.Start()
	t.Cleanup(eng.Terminate)
	return NewCabChecker(1, hb, eng), eng
}

func TestCabChecker_HealthyWhenTicking(t *testing.T) {
	checker, _ := newCabCheckerFixture(t)
	time.Sleep(20 * time.Millisecond)

	result := checker.Check(context.Background())

	assert.Equal(t, "cab_1", result.Name)
	assert.Equal(t, StatusHealthy, result.Status)
}

func TestCabChecker_ReportsDetailFields(t *testing.T) {
	checker, _ := newCabCheckerFixture(t)
	// A closed circuit with zero failures never opens on its own within
	// this test's short window; this asserts the reported fields exist
	// rather than forcing an open trip through the private circuit breaker.
	result := checker.Check(context.Background())

	assert.Contains(t, result.Details, "heartbeat_age_ms")
	assert.Contains(t, result.Details, "circuit_breaker")
	assert.Contains(t, result.Details, "direction")
}
