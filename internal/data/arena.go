package data

// wordSize matches the original firmware's word-aligned allocation unit.
const wordSize = 4

func toWords(n int) int {
	if n%wordSize == 0 {
		return n
	}
	return n + (wordSize - n%wordSize)
}

// sizeOfTag approximates each variant's encoded storage footprint, the
// Go analogue of the original's gSizeOfContents table keyed by tag.
var sizeOfTag = map[Tag]int{
	TagCellular:     32,
	TagHumidity:     8,
	TagPressure:     8,
	TagTemperature:  8,
	TagLight:        12,
	TagAcceleration: 16,
	TagPosition:     24,
	TagMagnetic:     8,
	TagBLE:          40,
	TagWakeReason:   8,
	TagEnergySource: 8,
	TagStatistics:   80,
	TagLog:          16,
}

func sizeOf(tag Tag, contentsExtra int) int {
	return toWords(sizeOfTag[tag] + contentsExtra)
}

// block is one physical allocation in the arena, tracked by offset and
// size rather than a raw pointer; Go's GC owns the actual Record value,
// the block only accounts for the byte budget and chain order.
type block struct {
	offset   int
	size     int
	id       uint64
	freeable bool
}

// arena is the bounded byte-region allocator described in spec.md §4.2:
// a word-aligned region tracked via firstFull/nextEmpty and a physical
// successor chain that tolerates wrap-around gaps.
type arena struct {
	capacity int
	used     int
	// chain holds live blocks in physical/insertion order: chain[0] is
	// first_full, the offset just past chain[len-1] (mod wrap) is
	// next_empty.
	chain []*block

	// writeOffset mirrors next_empty; empty (no chain) is the sentinel
	// state, both pointers conceptually null.
	writeOffset int
}

func newArena(capacity int) *arena {
	return &arena{capacity: capacity}
}

func (a *arena) bytesUsed() int { return a.used }

// canAlloc reports whether size bytes could be allocated right now,
// without allocating (alloc_check).
func (a *arena) canAlloc(size int) bool {
	size = toWords(size)
	if size > a.capacity {
		return false
	}
	if len(a.chain) == 0 {
		return true
	}
	head := a.chain[0].offset
	tail := a.writeOffset
	if tail > head {
		if size <= a.capacity-tail {
			return true
		}
		return size <= head
	}
	if tail < head {
		return size <= head-tail
	}
	// tail == head with a non-empty chain means the arena is entirely
	// full (next_empty has wrapped all the way back to first_full).
	return false
}

// allocate reserves size bytes for id, returning the block's offset, or
// false if no space fits any of the three cases in spec.md §4.2.
func (a *arena) allocate(id uint64, size int) (int, bool) {
	size = toWords(size)
	if size > a.capacity {
		return 0, false
	}

	// Case 1: empty arena.
	if len(a.chain) == 0 {
		b := &block{offset: 0, size: size, id: id}
		a.chain = append(a.chain, b)
		a.writeOffset = size % a.capacity
		if size == a.capacity {
			a.writeOffset = 0
		}
		a.used += size
		return b.offset, true
	}

	head := a.chain[0].offset
	tail := a.writeOffset

	// tail == head with a non-empty chain means next_empty has wrapped
	// all the way back to first_full: the arena is entirely full, not
	// entirely empty. Must not fall into the tail-region branch below.
	if tail > head {
		// Case 2: next_empty ahead of first_full. Prefer the tail
		// region; fall back to wrapping to base if there is room
		// before first_full.
		if size <= a.capacity-tail {
			b := &block{offset: tail, size: size, id: id}
			a.chain = append(a.chain, b)
			a.writeOffset = tail + size
			if a.writeOffset == a.capacity {
				a.writeOffset = 0
			}
			a.used += size
			return b.offset, true
		}
		if size <= head {
			b := &block{offset: 0, size: size, id: id}
			a.chain = append(a.chain, b)
			a.writeOffset = size
			a.used += size
			return b.offset, true
		}
		return 0, false
	}

	if tail == head {
		return 0, false
	}

	// Case 3: next_empty behind first_full; only the gap between them
	// is available.
	if size <= head-tail {
		b := &block{offset: tail, size: size, id: id}
		a.chain = append(a.chain, b)
		a.writeOffset = tail + size
		a.used += size
		return b.offset, true
	}
	return 0, false
}

// free flags the block for id as reclaimable and triggers a
// reclaim sweep from the head. Returns the ids actually reclaimed, in
// head-to-tail order.
func (a *arena) free(id uint64) []uint64 {
	for _, b := range a.chain {
		if b.id == id {
			b.freeable = true
			break
		}
	}
	return a.reclaim()
}

// reclaim walks forward from first_full consuming consecutive freeable
// blocks; it stops at the first non-freeable block or the write head.
func (a *arena) reclaim() []uint64 {
	var reclaimed []uint64
	for len(a.chain) > 0 && a.chain[0].freeable {
		b := a.chain[0]
		a.chain = a.chain[1:]
		a.used -= b.size
		reclaimed = append(reclaimed, b.id)
	}
	if len(a.chain) == 0 {
		a.writeOffset = 0
	}
	return reclaimed
}
