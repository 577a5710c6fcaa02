package data

import (
	"sync"
	"time"
)

// sortGuardStride bounds how often Sort checks the wall clock against
// its deadline, so the check itself doesn't dominate the guard budget
// on a large queue.
const sortGuardStride = 64

// Handle identifies a record in the queue.
type Handle uint64

// NoHandle is returned when an operation has nothing to report.
const NoHandle Handle = 0

// ActionRef is a weak, read-only view of the action a record was
// allocated for, returned to callers that must clear the other side of
// the back-reference (the action registry) themselves; Free returns
// these rather than reaching into the action package directly.
type ActionRef struct {
	Handle int
	Valid  bool
}

// Queue is the typed data queue: a bounded arena for storage plus a
// logical ordering re-established by Sort, independent of the arena's
// physical (insertion-order) chain used for reclamation.
type Queue struct {
	mu sync.Mutex

	arena     *arena
	records   map[uint64]*Record
	actionOf  map[uint64]ActionRef
	order     []uint64 // logical order: insertion order until Sort() re-establishes it
	cursor    int
	nextID    uint64
	sortGuard time.Duration
	now       func() time.Time

	// sortProgress is the resumable insertion-sort cursor: elements
	// before it are already in sorted order relative to each other. A
	// Sort call that hits the wall-clock guard leaves this set so the
	// next call resumes instead of restarting from scratch.
	sortProgress int
}

// New creates a queue backed by an arena of the given byte capacity.
func New(capacityBytes int, sortGuard time.Duration) *Queue {
	return &Queue{
		arena:     newArena(capacityBytes),
		records:   make(map[uint64]*Record),
		actionOf:  make(map[uint64]ActionRef),
		sortGuard: sortGuard,
		now:       time.Now,
	}
}

// Init resets the queue to empty.
func (q *Queue) Init() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.arena = newArena(q.arena.capacity)
	q.records = make(map[uint64]*Record)
	q.actionOf = make(map[uint64]ActionRef)
	q.order = nil
	q.cursor = 0
	q.nextID = 0
	q.sortProgress = 0
}

func contentsExtra(tag Tag, contents interface{}) int {
	switch tag {
	case TagBLE:
		if b, ok := contents.(BLE); ok {
			return len(b.Dev)
		}
	case TagLog:
		if l, ok := contents.(LogRecord); ok {
			return len(l.Entries) * 3 * 4
		}
	}
	return 0
}

// AllocCheck reports whether an Alloc for tag would succeed right now,
// without allocating.
func (q *Queue) AllocCheck(tag Tag, contents interface{}) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.arena.canAlloc(sizeOf(tag, contentsExtra(tag, contents)))
}

// Alloc allocates a record, copies contents, appends it to the tail of
// the queue, and wires the weak reference to actionHandle. Returns
// (NoHandle, false) when there is no room.
func (q *Queue) Alloc(actionHandle int, hasAction bool, tag Tag, flags Flags, contents interface{}, timestampUTC int64, energyCostNWH uint64) (Handle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	size := sizeOf(tag, contentsExtra(tag, contents))
	q.nextID++
	id := q.nextID

	if _, ok := q.arena.allocate(id, size); !ok {
		q.nextID--
		return NoHandle, false
	}

	rec := &Record{
		ID:            id,
		TimestampUTC:  timestampUTC,
		Tag:           tag,
		Flags:         flags,
		ActionHandle:  actionHandle,
		HasAction:     hasAction,
		EnergyCostNWH: energyCostNWH,
		Contents:      contents,
	}
	q.records[id] = rec
	q.order = append(q.order, id)
	if hasAction {
		q.actionOf[id] = ActionRef{Handle: actionHandle, Valid: true}
	}

	return Handle(id), true
}

// Free marks a record reclaimable and, if it is (or becomes, after
// reclaiming) the oldest live record in the arena, reclaims it and any
// subsequent contiguous freeable records, unlinking each from the
// logical queue. Returns the action references that must be cleared by
// the caller.
func (q *Queue) Free(h Handle) []ActionRef {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := uint64(h)
	rec, ok := q.records[id]
	if !ok {
		return nil
	}
	rec.Flags |= FlagCanBeFreed

	reclaimedIDs := q.arena.free(id)
	if len(reclaimedIDs) == 0 {
		return nil
	}

	refs := make([]ActionRef, 0, len(reclaimedIDs))
	reclaimedSet := make(map[uint64]bool, len(reclaimedIDs))
	for _, rid := range reclaimedIDs {
		reclaimedSet[rid] = true
		if ref, ok := q.actionOf[rid]; ok {
			refs = append(refs, ref)
			delete(q.actionOf, rid)
		}
		delete(q.records, rid)
	}

	filtered := q.order[:0:0]
	for _, oid := range q.order {
		if !reclaimedSet[oid] {
			filtered = append(filtered, oid)
		}
	}
	q.order = filtered
	if q.cursor > len(q.order) {
		q.cursor = len(q.order)
	}
	// Reclamation can remove entries ahead of the resume cursor, which
	// would desynchronise a partially-completed insertion sort; simplest
	// correct response is to restart the sort pass from scratch.
	q.sortProgress = 0

	return refs
}

// Sort reorders the logical queue by (flags>>1) descending, then
// timestamp descending, resets the iteration cursor to the head, and
// returns the head handle. Uses an insertion sort (stable, and unlike
// stdlib sort.SliceStable it can be preempted mid-pass) bounded by the
// configured sort guard: if the guard elapses before the pass finishes,
// Sort returns the partial order immediately and the next call resumes
// from where it left off instead of restarting (spec.md §5).
func (q *Queue) Sort() (Handle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	deadline := q.now().Add(q.sortGuard)
	records := q.order

	less := func(i, j int) bool {
		ri, rj := q.records[records[i]], q.records[records[j]]
		if ri.Flags.sortKey() != rj.Flags.sortKey() {
			return ri.Flags.sortKey() > rj.Flags.sortKey()
		}
		return ri.TimestampUTC > rj.TimestampUTC
	}

	i := q.sortProgress
	if i == 0 {
		i = 1
	}
	// checked counts iterations done in this call, not the absolute
	// index: a resume point that happens to land on a stride boundary
	// must not immediately re-trip the guard before making any progress.
	checked := 0
	for ; i < len(records); i++ {
		checked++
		if checked%sortGuardStride == 0 && q.now().After(deadline) {
			break
		}
		for j := i; j > 0 && less(j, j-1); j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}

	q.order = records
	if i >= len(records) {
		q.sortProgress = 0
	} else {
		q.sortProgress = i
	}
	q.cursor = 0
	return q.first()
}

// First resets the iteration cursor and returns the head handle.
func (q *Queue) First() (Handle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.cursor = 0
	return q.first()
}

func (q *Queue) first() (Handle, bool) {
	if len(q.order) == 0 {
		return NoHandle, false
	}
	return Handle(q.order[0]), true
}

// Next returns the record at the cursor and advances it.
func (q *Queue) Next() (Handle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cursor >= len(q.order) {
		return NoHandle, false
	}
	h := Handle(q.order[q.cursor])
	q.cursor++
	return h, true
}

// Snapshot returns a copy of the current logical order, for callers
// (the codec) that need their own independent cursor over it.
func (q *Queue) Snapshot() []Handle {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Handle, len(q.order))
	for i, id := range q.order {
		out[i] = Handle(id)
	}
	return out
}

// Get returns a copy of the record at h.
func (q *Queue) Get(h Handle) (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, ok := q.records[uint64(h)]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Count returns the number of live records.
func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.records)
}

// CountOf returns the number of live records of a given tag.
func (q *Queue) CountOf(tag Tag) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, rec := range q.records {
		if rec.Tag == tag {
			n++
		}
	}
	return n
}

// BytesUsed returns arena bytes currently occupied by live records.
func (q *Queue) BytesUsed() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.arena.bytesUsed()
}

// BytesQueued is an alias for BytesUsed kept for parity with spec.md's
// bytes_queued() accessor (queued bytes and live arena bytes coincide
// in this design, since nothing is queued outside the arena).
func (q *Queue) BytesQueued() int {
	return q.BytesUsed()
}
