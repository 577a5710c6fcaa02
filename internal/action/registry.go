package action

import (
	"sort"
	"sync"
	"time"

	"github.com/u-blox/infinite-iot-sub000/internal/logging"
)

// Registry is the fixed-capacity action slot array plus the ranker's
// per-type desirability/variability-damper tables and rank cursor.
//
// Guarded by a single registry mutex (§5): callers that also touch the
// data queue must acquire the registry lock before the data lock.
type Registry struct {
	mu sync.Mutex

	slots []Action

	desirability     map[Type]int
	variabilityDamp  map[Type]uint64

	rankedTypes []Type
	cursor      int

	log *logging.Logger
	now func() time.Time
}

// New creates a registry with the given slot capacity.
func New(capacity int, log *logging.Logger) *Registry {
	r := &Registry{
		slots:           make([]Action, capacity),
		desirability:    make(map[Type]int, int(numTypes)),
		variabilityDamp: make(map[Type]uint64, int(numTypes)),
		log:             log,
		now:             time.Now,
	}
	r.resetTables()
	return r
}

func (r *Registry) resetTables() {
	for _, t := range AllTypes() {
		r.desirability[t] = 0
		r.variabilityDamp[t] = 1
	}
}

// Init clears all slots and resets desirability/damper tables to
// defaults. Idempotent.
func (r *Registry) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		r.slots[i] = Action{}
	}
	r.resetTables()
	r.rankedTypes = nil
	r.cursor = 0
}

// Add returns a handle to a fresh slot in state Requested, reusing
// null/aborted slots first, then completed slots. Returns (NoHandle,
// false) when no slot is reusable.
func (r *Registry) Add(t Type) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reuse := -1
	for i, a := range r.slots {
		if a.State == StateNull || a.State == StateAborted {
			reuse = i
			break
		}
	}
	if reuse == -1 {
		for i, a := range r.slots {
			if a.State == StateCompleted {
				reuse = i
				break
			}
		}
	}
	if reuse == -1 {
		return NoHandle, false
	}

	r.slots[reuse] = Action{Type: t, State: StateRequested}
	return Handle(reuse), true
}

// Get returns a copy of the action at handle.
func (r *Registry) Get(h Handle) (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validHandle(h) {
		return Action{}, false
	}
	return r.slots[h], true
}

func (r *Registry) validHandle(h Handle) bool {
	return h >= 0 && int(h) < len(r.slots)
}

// SetInProgress transitions a requested slot to in-progress.
func (r *Registry) SetInProgress(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validHandle(h) {
		return false
	}
	r.slots[h].State = StateInProgress
	return true
}

// SetEnergyCost records the energy spent on an action prior to
// completing it.
func (r *Registry) SetEnergyCost(h Handle, nwh uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validHandle(h) {
		return false
	}
	r.slots[h].EnergyCostNWH = nwh
	return true
}

// SetDataRef wires the weak back-reference to a data record.
func (r *Registry) SetDataRef(h Handle, ref DataRef) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validHandle(h) {
		return false
	}
	r.slots[h].DataRef = ref
	return true
}

// ClearDataRef clears the back-reference, called when the referenced
// data record is freed.
func (r *Registry) ClearDataRef(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validHandle(h) {
		return false
	}
	r.slots[h].DataRef = DataRef{}
	return true
}

// Complete sets state=completed and records the current time as
// TimeCompletedUTC. EnergyCostNWH must already be set by the caller.
func (r *Registry) Complete(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validHandle(h) {
		return false
	}
	r.slots[h].State = StateCompleted
	r.slots[h].TimeCompletedUTC = r.now().UTC().Unix()
	return true
}

// Abort sets state=aborted.
func (r *Registry) Abort(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validHandle(h) {
		return false
	}
	r.slots[h].State = StateAborted
	return true
}

// Remove sets state=null. Does not free attached data.
func (r *Registry) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validHandle(h) {
		return false
	}
	r.slots[h] = Action{}
	return true
}

// SetDesirability updates the desirability of a type; rejects unknown types.
func (r *Registry) SetDesirability(t Type, value int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !validType(t) {
		return false
	}
	r.desirability[t] = value
	return true
}

// SetVariabilityDamper updates the damper of a type; rejects zero or
// unknown types.
func (r *Registry) SetVariabilityDamper(t Type, value uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !validType(t) || value == 0 {
		return false
	}
	r.variabilityDamp[t] = value
	return true
}

type rankEntry struct {
	t            Type
	energyCost   uint64
	completedAt  int64
	variability  uint64
}

// Rank builds the ranked type list and positions the cursor at its
// head, returning the head type (or TypeNull, false when empty).
// Rank performs an implicit Next: the type it returns has already been
// consumed from the cursor, mirroring the original firmware's
// actionRankTypes() returning actionNextType().
//
// variability supplies, per type, the peak |difference| computed by the
// caller over actions with an attached data record; Rank divides it by
// the type's variability damper. Types absent from the map are treated
// as having zero variability.
func (r *Registry) Rank(variability map[Type]uint64) (Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]rankEntry, 0, len(r.slots))
	for _, a := range r.slots {
		if a.State == StateNull || a.State == StateAborted {
			continue
		}
		v := uint64(0)
		if variability != nil {
			v = variability[a.Type]
			if d := r.variabilityDamp[a.Type]; d > 1 {
				v /= d
			}
		}
		entries = append(entries, rankEntry{
			t:           a.Type,
			energyCost:  a.EnergyCostNWH,
			completedAt: a.TimeCompletedUTC,
			variability: v,
		})
	}

	// Pass 1: variability, most variable first.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].variability > entries[j].variability
	})

	// Pass 2: desirability, highest first; drop zero-desirability types.
	filtered := entries[:0:0]
	for _, e := range entries {
		if r.desirability[e.t] != 0 {
			filtered = append(filtered, e)
		}
	}
	entries = filtered
	sort.SliceStable(entries, func(i, j int) bool {
		return r.desirability[entries[i].t] > r.desirability[entries[j].t]
	})

	// Pass 3: energy cost, lowest first.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].energyCost < entries[j].energyCost
	})

	// Pass 4 (dominant): age, oldest completion time first.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].completedAt < entries[j].completedAt
	})

	seen := make(map[Type]bool, len(entries))
	ranked := make([]Type, 0, len(entries))
	for _, e := range entries {
		if seen[e.t] {
			continue
		}
		seen[e.t] = true
		ranked = append(ranked, e.t)
	}

	r.rankedTypes = ranked
	r.cursor = 0

	return r.next()
}

// LiveActions returns a copy of every non-null, non-aborted slot in
// slot order, for callers that need to walk live actions directly (the
// processor's variability pass) rather than through the ranker.
func (r *Registry) LiveActions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := make([]Action, 0, len(r.slots))
	for _, a := range r.slots {
		if a.State == StateNull || a.State == StateAborted {
			continue
		}
		live = append(live, a)
	}
	return live
}

// Next returns the current cursor value and advances it; returns
// (TypeNull, false) past the end of the ranked list.
func (r *Registry) Next() (Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.next()
}

func (r *Registry) next() (Type, bool) {
	if r.cursor >= len(r.rankedTypes) {
		return TypeNull, false
	}
	t := r.rankedTypes[r.cursor]
	r.cursor++
	return t, true
}
