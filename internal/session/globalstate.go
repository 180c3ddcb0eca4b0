// Package session implements the peer-facing collaborator the control
// engine publishes StateChange events to: an in-memory aggregate of the
// latest known state per cab, and a WebSocket relay that forwards updates
// to connected observers. Neither is part of the control engine itself —
// spec.md explicitly scopes the session/peer layer as an external
// collaborator, not core engine logic.
package session

import (
	"sync"

	"github.com/dpetrov/elevator-cab/internal/domain"
)

// GlobalState aggregates the latest ElevatorState per cab id and the
// union of each cab's hall-call buttons, mirroring the reference
// implementation's GlobalState: a map update plus a derived union kept in
// sync under the same lock, so a reader never observes a button union
// computed from a different snapshot than the map it came from.
type GlobalState struct {
	mu         sync.RWMutex
	bounds     domain.FloorBounds
	elevators  map[int]domain.ElevatorState
	upButtons  domain.FloorSet
	downButtons domain.FloorSet
}

// NewGlobalState creates an aggregate with no cabs registered yet.
func NewGlobalState(bounds domain.FloorBounds) *GlobalState {
	return &GlobalState{
		bounds:      bounds,
		elevators:   make(map[int]domain.ElevatorState),
		upButtons:   domain.NewFloorSet(bounds),
		downButtons: domain.NewFloorSet(bounds),
	}
}

// Update records a cab's latest state and recomputes the button unions.
func (g *GlobalState) Update(state domain.ElevatorState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.elevators[state.ID] = state.Clone()
	g.recomputeButtons()
}

func (g *GlobalState) recomputeButtons() {
	up := domain.NewFloorSet(g.bounds)
	down := domain.NewFloorSet(g.bounds)
	for _, s := range g.elevators {
		up = up.Union(s.UpButtons, g.bounds)
		down = down.Union(s.DownButtons, g.bounds)
	}
	g.upButtons = up
	g.downButtons = down
}

// UpButtons returns the union of every tracked cab's pending up-calls.
func (g *GlobalState) UpButtons() domain.FloorSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.upButtons.Clone()
}

// DownButtons returns the union of every tracked cab's pending down-calls.
func (g *GlobalState) DownButtons() domain.FloorSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.downButtons.Clone()
}

// Has reports whether a cab with this id has ever reported state.
func (g *GlobalState) Has(id int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.elevators[id]
	return ok
}

// Get returns a cab's last known state and whether it was found.
func (g *GlobalState) Get(id int) (domain.ElevatorState, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.elevators[id]
	return s, ok
}

// Snapshot returns a copy of every tracked cab's state, keyed by id.
func (g *GlobalState) Snapshot() map[int]domain.ElevatorState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[int]domain.ElevatorState, len(g.elevators))
	for id, s := range g.elevators {
		out[id] = s.Clone()
	}
	return out
}
