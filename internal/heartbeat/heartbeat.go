// Package heartbeat implements the liveness handle the control engine
// pokes once per tick. The watchdog itself is external (it would kill
// the process on timeout); this package provides the in-process side the
// engine calls and the health reporter reads.
package heartbeat

import (
	"sync/atomic"
	"time"
)

// Heartbeat is the liveness handle the control engine pokes once per
// tick, last in the cycle. Beat must be idempotent and cheap — it is
// called on the hot path of every tick.
type Heartbeat interface {
	Beat()
	LastBeat() time.Time
}

// Watchdog is a concrete Heartbeat that records the last beat time with
// an atomic int64 of UnixNano, avoiding a mutex on the tick loop's most
// frequently hit line.
type Watchdog struct {
	lastBeatNano atomic.Int64
	threshold    time.Duration
}

// NewWatchdog creates a Watchdog considered unhealthy once threshold has
// elapsed since the last Beat.
func NewWatchdog(threshold time.Duration) *Watchdog {
	w := &Watchdog{threshold: threshold}
	w.lastBeatNano.Store(time.Now().UnixNano())
	return w
}

// Beat records the current time as the last liveness signal.
func (w *Watchdog) Beat() {
	w.lastBeatNano.Store(time.Now().UnixNano())
}

// LastBeat returns the time of the most recent Beat.
func (w *Watchdog) LastBeat() time.Time {
	return time.Unix(0, w.lastBeatNano.Load())
}

// Age returns how long it has been since the last Beat.
func (w *Watchdog) Age() time.Duration {
	return time.Since(w.LastBeat())
}

// Alive reports whether the last Beat happened within threshold — the
// same check an external watchdog process would perform before killing
// this process.
func (w *Watchdog) Alive() bool {
	return w.Age() < w.threshold
}
