// Package wire implements the bit-compatible binary encoding of
// StateChange and ElevatorState values exchanged between a cab's control
// engine and the session/peer layer. The encoding is deliberately a flat,
// fixed-field binary.Write layout rather than a general-purpose codec
// (JSON, gob, protobuf), so peers need not be written in Go. No other
// package in this module calls it; the session relay's WebSocket feed
// uses its own JSON shape.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dpetrov/elevator-cab/internal/domain"
)

// TypeSignature tags a payload so a multiplexed peer connection can tell
// frames apart before parsing their body.
type TypeSignature byte

// ElevatorStateSignature is the only TypeSignature this version defines;
// further tags are reserved for future payload kinds.
const ElevatorStateSignature TypeSignature = 0x01

var byteOrder = binary.BigEndian

// directionByte/byteDirection round-trip domain.Direction through a single
// byte, since the wire format has no notion of Go string constants.
func directionByte(d domain.Direction) byte {
	switch d {
	case domain.DirectionUp:
		return 1
	case domain.DirectionDown:
		return 2
	default:
		return 0
	}
}

func byteDirection(b byte) (domain.Direction, error) {
	switch b {
	case 0:
		return domain.DirectionNone, nil
	case 1:
		return domain.DirectionUp, nil
	case 2:
		return domain.DirectionDown, nil
	default:
		return domain.DirectionNone, fmt.Errorf("wire: invalid direction byte %d", b)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// EncodeFloorSet packs one bit per floor into a fixed ceil(width/8)-byte
// bitmap, bit i of byte i/8 corresponding to bounds.Min+i. This is
// independent of bitset.BitSet's internal word layout so the wire format
// stays stable across changes to that library's representation.
func EncodeFloorSet(fs domain.FloorSet, bounds domain.FloorBounds) []byte {
	width := bounds.Width()
	out := make([]byte, (width+7)/8)
	for i := uint(0); i < width; i++ {
		floor := bounds.Min + int(i)
		if fs.Get(floor, bounds) {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// DecodeFloorSet is the inverse of EncodeFloorSet.
func DecodeFloorSet(data []byte, bounds domain.FloorBounds) (domain.FloorSet, error) {
	width := bounds.Width()
	want := int((width + 7) / 8)
	if len(data) != want {
		return domain.FloorSet{}, fmt.Errorf("wire: floor set bitmap expected %d bytes, got %d", want, len(data))
	}
	fs := domain.NewFloorSet(bounds)
	for i := uint(0); i < width; i++ {
		if data[i/8]&(1<<(i%8)) != 0 {
			fs.Set(true, bounds.Min+int(i), bounds)
		}
	}
	return fs, nil
}

// EncodeElevatorState writes the fixed layout described in the external
// interfaces contract: id, timestamp, lastFloor, direction, stopped,
// doorOpen, then the three FloorSet bitmaps in insideButtons/upButtons/
// downButtons order.
func EncodeElevatorState(buf *bytes.Buffer, s domain.ElevatorState, bounds domain.FloorBounds) error {
	if err := binary.Write(buf, byteOrder, int32(s.ID)); err != nil {
		return err
	}
	if err := binary.Write(buf, byteOrder, s.Timestamp); err != nil {
		return err
	}
	if err := binary.Write(buf, byteOrder, int32(s.LastFloor)); err != nil {
		return err
	}
	buf.WriteByte(directionByte(s.Direction))
	buf.WriteByte(boolByte(s.Stopped))
	buf.WriteByte(boolByte(s.DoorOpen))
	buf.Write(EncodeFloorSet(s.InsideButtons, bounds))
	buf.Write(EncodeFloorSet(s.UpButtons, bounds))
	buf.Write(EncodeFloorSet(s.DownButtons, bounds))
	return nil
}

// DecodeElevatorState is the inverse of EncodeElevatorState.
func DecodeElevatorState(r *bytes.Reader, bounds domain.FloorBounds) (domain.ElevatorState, error) {
	var s domain.ElevatorState
	var id32, lastFloor32 int32
	if err := binary.Read(r, byteOrder, &id32); err != nil {
		return s, err
	}
	if err := binary.Read(r, byteOrder, &s.Timestamp); err != nil {
		return s, err
	}
	if err := binary.Read(r, byteOrder, &lastFloor32); err != nil {
		return s, err
	}
	dirByte, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	stoppedByte, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	doorByte, err := r.ReadByte()
	if err != nil {
		return s, err
	}

	direction, err := byteDirection(dirByte)
	if err != nil {
		return s, err
	}

	width := bounds.Width()
	bitmapLen := int((width + 7) / 8)
	raw := make([]byte, bitmapLen)

	inside, err := readFloorSet(r, raw, bounds)
	if err != nil {
		return s, fmt.Errorf("wire: insideButtons: %w", err)
	}
	up, err := readFloorSet(r, raw, bounds)
	if err != nil {
		return s, fmt.Errorf("wire: upButtons: %w", err)
	}
	down, err := readFloorSet(r, raw, bounds)
	if err != nil {
		return s, fmt.Errorf("wire: downButtons: %w", err)
	}

	s.ID = int(id32)
	s.LastFloor = int(lastFloor32)
	s.Direction = direction
	s.Stopped = stoppedByte != 0
	s.DoorOpen = doorByte != 0
	s.InsideButtons = inside
	s.UpButtons = up
	s.DownButtons = down
	return s, nil
}

func readFloorSet(r *bytes.Reader, scratch []byte, bounds domain.FloorBounds) (domain.FloorSet, error) {
	if _, err := r.Read(scratch); err != nil {
		return domain.FloorSet{}, err
	}
	return DecodeFloorSet(scratch, bounds)
}

// EncodeStateChange serializes a TypeSignature-tagged StateChange frame:
// the tag, changeType, changeFloor (math.MinInt32 sentinel for unknown),
// then the ElevatorState payload.
func EncodeStateChange(sc domain.StateChange, bounds domain.FloorBounds) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(ElevatorStateSignature))
	buf.WriteByte(byte(sc.Type))
	if err := binary.Write(&buf, byteOrder, int32(sc.ChangeFloor)); err != nil {
		return nil, err
	}
	if err := EncodeElevatorState(&buf, sc.State, bounds); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeStateChange is the inverse of EncodeStateChange.
func DecodeStateChange(data []byte, bounds domain.FloorBounds) (domain.StateChange, error) {
	var sc domain.StateChange
	r := bytes.NewReader(data)

	sig, err := r.ReadByte()
	if err != nil {
		return sc, err
	}
	if TypeSignature(sig) != ElevatorStateSignature {
		return sc, fmt.Errorf("wire: unknown type signature 0x%02x", sig)
	}
	changeTypeByte, err := r.ReadByte()
	if err != nil {
		return sc, err
	}
	var changeFloor32 int32
	if err := binary.Read(r, byteOrder, &changeFloor32); err != nil {
		return sc, err
	}
	state, err := DecodeElevatorState(r, bounds)
	if err != nil {
		return sc, err
	}

	changeFloor := int(changeFloor32)
	if changeFloor32 == math.MinInt32 {
		changeFloor = domain.UnknownFloor
	}

	sc.Type = domain.ChangeType(changeTypeByte)
	sc.ChangeFloor = changeFloor
	sc.State = state
	return sc, nil
}
