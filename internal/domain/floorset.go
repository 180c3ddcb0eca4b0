package domain

import "github.com/bits-and-blooms/bitset"

// FloorBounds describes the closed floor range [Min, Max] a FloorSet is
// confined to. Every FloorSet operation that needs to convert a floor
// number to a bit index takes bounds explicitly rather than storing them,
// so a single FloorSet literal can be reused against different bounds in
// tests without re-allocation.
type FloorBounds struct {
	Min, Max int
}

// Width returns the number of floors in the range.
func (b FloorBounds) Width() uint {
	if b.Max < b.Min {
		return 0
	}
	return uint(b.Max - b.Min + 1)
}

func (b FloorBounds) idx(floor int) uint {
	return uint(floor - b.Min)
}

// FloorSet is a compact set of floor numbers backed by a bitmap, the same
// approach used for per-direction stop tracking in conventional elevator
// simulators: one bit per floor instead of a map or slice of bools.
type FloorSet struct {
	bits *bitset.BitSet
}

// NewFloorSet allocates an empty FloorSet sized for bounds.
func NewFloorSet(bounds FloorBounds) FloorSet {
	return FloorSet{bits: bitset.New(bounds.Width())}
}

func (fs *FloorSet) ensure(bounds FloorBounds) {
	if fs.bits == nil {
		fs.bits = bitset.New(bounds.Width())
	}
}

// Set sets or clears the bit for floor. It returns whether the bit
// actually changed value, so callers can detect edges (a re-press of an
// already-lit button is a no-op, not a new event).
func (fs *FloorSet) Set(value bool, floor int, bounds FloorBounds) bool {
	fs.ensure(bounds)
	i := bounds.idx(floor)
	was := fs.bits.Test(i)
	if was == value {
		return false
	}
	if value {
		fs.bits.Set(i)
	} else {
		fs.bits.Clear(i)
	}
	return true
}

// Get reports whether floor is a member.
func (fs FloorSet) Get(floor int, bounds FloorBounds) bool {
	if fs.bits == nil {
		return false
	}
	return fs.bits.Test(bounds.idx(floor))
}

// Reset empties the set.
func (fs *FloorSet) Reset() {
	if fs.bits != nil {
		fs.bits.ClearAll()
	}
}

// HasAny reports whether the set has any member.
func (fs FloorSet) HasAny() bool {
	return fs.bits != nil && fs.bits.Any()
}

// AnyLower reports whether the set contains a floor strictly below floor.
func (fs FloorSet) AnyLower(floor int, bounds FloorBounds) bool {
	if fs.bits == nil {
		return false
	}
	cur := bounds.idx(floor)
	if cur == 0 {
		return false
	}
	next, ok := fs.bits.NextSet(0)
	return ok && next < cur
}

// AnyHigher reports whether the set contains a floor strictly above floor.
func (fs FloorSet) AnyHigher(floor int, bounds FloorBounds) bool {
	if fs.bits == nil {
		return false
	}
	next, ok := fs.bits.NextSet(bounds.idx(floor) + 1)
	return ok && next < bounds.Width()
}

// AnyOther reports whether the set contains any floor distinct from floor.
func (fs FloorSet) AnyOther(floor int, bounds FloorBounds) bool {
	if fs.bits == nil {
		return false
	}
	count := fs.bits.Count()
	if count == 0 {
		return false
	}
	if fs.Get(floor, bounds) {
		return count > 1
	}
	return true
}

// Union returns a new FloorSet containing every member of fs or other.
func (fs FloorSet) Union(other FloorSet, bounds FloorBounds) FloorSet {
	out := NewFloorSet(bounds)
	if fs.bits != nil {
		out.bits.InPlaceUnion(fs.bits)
	}
	if other.bits != nil {
		out.bits.InPlaceUnion(other.bits)
	}
	return out
}

// Equal reports whether fs and other contain the same members.
func (fs FloorSet) Equal(other FloorSet) bool {
	switch {
	case fs.bits == nil && other.bits == nil:
		return true
	case fs.bits == nil:
		return !other.bits.Any()
	case other.bits == nil:
		return !fs.bits.Any()
	default:
		return fs.bits.Equal(other.bits)
	}
}

// HasAdditional reports whether current contains a member that previous
// does not — the edge used to detect an inside-button re-press while the
// door is held open.
func HasAdditional(previous, current FloorSet) bool {
	if current.bits == nil {
		return false
	}
	if previous.bits == nil {
		return current.bits.Any()
	}
	diff := current.bits.Clone()
	diff.InPlaceDifference(previous.bits)
	return diff.Any()
}

// Consistent reports whether every member of fs lies within bounds. A
// bitset sized to bounds.Width() can never set a bit outside the range,
// so this mainly guards against a FloorSet constructed against the wrong
// bounds being reused after a bounds change.
func (fs FloorSet) Consistent(bounds FloorBounds) bool {
	if fs.bits == nil {
		return true
	}
	return fs.bits.Len() <= bounds.Width()
}

// Clone returns an independent copy, used when publishing an immutable
// snapshot onto the outbound state-change queue.
func (fs FloorSet) Clone() FloorSet {
	if fs.bits == nil {
		return FloorSet{}
	}
	return FloorSet{bits: fs.bits.Clone()}
}

// Floors returns the sorted list of member floors, used by tests.
func (fs FloorSet) Floors(bounds FloorBounds) []int {
	if fs.bits == nil {
		return nil
	}
	var out []int
	n := bounds.Width()
	for i, ok := fs.bits.NextSet(0); ok && i < n; i, ok = fs.bits.NextSet(i + 1) {
		out = append(out, bounds.Min+int(i))
	}
	return out
}
