package health

import (
	"context"
	"fmt"
	"time"

	"github.com/dpetrov/elevator-cab/internal/engine"
	"github.com/dpetrov/elevator-cab/internal/heartbeat"
	"github.com/dpetrov/elevator-cab/metrics"
)

// CabChecker reports the control engine's liveness: whether the tick
// loop's heartbeat is still within its threshold, and the driver circuit
// breaker's current state. A watchdog reporting dead means the tick loop
// is wedged (the obstruction busy-loop with no heartbeat, per the
// obstruction failure mode) and the process should be restarted
// externally — this checker only surfaces the condition, it never acts
// on it.
type CabChecker struct {
	cabID int
	hb    heartbeat.Heartbeat
	eng   *engine.Engine
}

// NewCabChecker creates a checker for one cab's engine and heartbeat.
func NewCabChecker(cabID int, hb heartbeat.Heartbeat, eng *engine.Engine) *CabChecker {
	return &CabChecker{cabID: cabID, hb: hb, eng: eng}
}

func (c *CabChecker) Name() string {
	return fmt.Sprintf("cab_%d", c.cabID)
}

func (c *CabChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	age := time.Since(c.hb.LastBeat())
	cbState := c.eng.CircuitBreakerState()
	metrics.SetHeartbeatAge(c.cabID, age.Seconds())

	status := StatusHealthy
	message := "cab is ticking"
	if cbState == engine.CircuitOpen {
		status = StatusDegraded
		message = "driver circuit breaker open"
	}
	if w, ok := c.hb.(interface{ Alive() bool }); ok && !w.Alive() {
		status = StatusUnhealthy
		message = "heartbeat missed: tick loop is not beating"
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"heartbeat_age_ms": age.Milliseconds(),
			"circuit_breaker":  cbState.String(),
			"direction":        c.eng.Snapshot().Direction.String(),
		},
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}
}
