package session

import (
	"testing"

	"github.com/dpetrov/elevator-cab/internal/domain"
)

var sessionBounds = domain.FloorBounds{Min: 1, Max: 4}

func TestGlobalState_UpdateAndGet(t *testing.T) {
	g := NewGlobalState(sessionBounds)
	state := domain.NewElevatorState(1, sessionBounds)
	state.LastFloor = 3
	g.Update(state)

	if !g.Has(1) {
		t.Fatal("expected cab 1 to be tracked after Update")
	}
	got, ok := g.Get(1)
	if !ok || got.LastFloor != 3 {
		t.Fatalf("expected lastFloor=3, got %+v (ok=%v)", got, ok)
	}
}

func TestGlobalState_ButtonUnionAcrossCabs(t *testing.T) {
	g := NewGlobalState(sessionBounds)

	s1 := domain.NewElevatorState(1, sessionBounds)
	s1.UpButtons.Set(true, 2, sessionBounds)
	g.Update(s1)

	s2 := domain.NewElevatorState(2, sessionBounds)
	s2.DownButtons.Set(true, 3, sessionBounds)
	g.Update(s2)

	if !g.UpButtons().Get(2, sessionBounds) {
		t.Fatal("expected the up-call from cab 1 to appear in the union")
	}
	if !g.DownButtons().Get(3, sessionBounds) {
		t.Fatal("expected the down-call from cab 2 to appear in the union")
	}
}

func TestGlobalState_SnapshotIsIndependent(t *testing.T) {
	g := NewGlobalState(sessionBounds)
	g.Update(domain.NewElevatorState(1, sessionBounds))

	snap := g.Snapshot()
	s := snap[1]
	s.InsideButtons.Set(true, 2, sessionBounds)

	got, _ := g.Get(1)
	if got.InsideButtons.Get(2, sessionBounds) {
		t.Fatal("mutating a snapshot entry must not affect GlobalState")
	}
}
