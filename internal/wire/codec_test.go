package wire

import (
	"testing"

	"github.com/dpetrov/elevator-cab/internal/domain"
)

var testBounds = domain.FloorBounds{Min: 1, Max: 4}

func TestFloorSet_RoundTrip(t *testing.T) {
	fs := domain.NewFloorSet(testBounds)
	fs.Set(true, 1, testBounds)
	fs.Set(true, 4, testBounds)

	encoded := EncodeFloorSet(fs, testBounds)
	decoded, err := DecodeFloorSet(encoded, testBounds)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(fs) {
		t.Fatalf("round-trip mismatch: want %v have %v", fs.Floors(testBounds), decoded.Floors(testBounds))
	}
}

func TestFloorSet_RoundTrip_Empty(t *testing.T) {
	fs := domain.NewFloorSet(testBounds)
	encoded := EncodeFloorSet(fs, testBounds)
	decoded, err := DecodeFloorSet(encoded, testBounds)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.HasAny() {
		t.Fatal("expected an empty round-trip to decode with no members")
	}
}

func TestStateChange_RoundTrip(t *testing.T) {
	state := domain.NewElevatorState(7, testBounds)
	state.LastFloor = 3
	state.Direction = domain.DirectionUp
	state.DoorOpen = true
	state.InsideButtons.Set(true, 3, testBounds)
	state.UpButtons.Set(true, 4, testBounds)
	state.DownButtons.Set(true, 2, testBounds)

	sc := domain.NewStateChange(domain.ChangeServed, 3, state, 1_700_000_000_000)

	encoded, err := EncodeStateChange(sc, testBounds)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeStateChange(encoded, testBounds)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Type != sc.Type || decoded.ChangeFloor != sc.ChangeFloor {
		t.Fatalf("header mismatch: want %+v have %+v", sc, decoded)
	}
	if decoded.State.ID != sc.State.ID || decoded.State.LastFloor != sc.State.LastFloor ||
		decoded.State.Direction != sc.State.Direction || decoded.State.DoorOpen != sc.State.DoorOpen ||
		decoded.State.Timestamp != sc.State.Timestamp {
		t.Fatalf("state scalar mismatch: want %+v have %+v", sc.State, decoded.State)
	}
	if !decoded.State.InsideButtons.Equal(sc.State.InsideButtons) ||
		!decoded.State.UpButtons.Equal(sc.State.UpButtons) ||
		!decoded.State.DownButtons.Equal(sc.State.DownButtons) {
		t.Fatal("floor set mismatch after round-trip")
	}
}

func TestStateChange_RoundTrip_UnknownFloor(t *testing.T) {
	state := domain.NewElevatorState(1, testBounds)
	sc := domain.NewStateChange(domain.ChangeOtherChange, domain.UnknownFloor, state, 1)

	encoded, err := EncodeStateChange(sc, testBounds)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeStateChange(encoded, testBounds)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ChangeFloor != domain.UnknownFloor {
		t.Fatalf("expected the unknown-floor sentinel to round-trip, got %d", decoded.ChangeFloor)
	}
}

func TestDecodeStateChange_RejectsUnknownSignature(t *testing.T) {
	_, err := DecodeStateChange([]byte{0xFF}, testBounds)
	if err == nil {
		t.Fatal("expected an error for an unrecognized type signature")
	}
}
