package data

import (
	"testing"
	"time"
)

func TestAllocAndGet(t *testing.T) {
	q := New(4096, 50*time.Millisecond)

	h, ok := q.Alloc(1, true, TagHumidity, 0, Humidity{Percent: 42}, 1000, 5)
	if !ok {
		t.Fatalf("expected alloc to succeed")
	}

	rec, ok := q.Get(h)
	if !ok {
		t.Fatalf("expected record to be retrievable")
	}
	if rec.Contents.(Humidity).Percent != 42 {
		t.Fatalf("unexpected contents: %+v", rec.Contents)
	}
	if q.Count() != 1 {
		t.Fatalf("expected count 1, got %d", q.Count())
	}
}

func TestAllocFailsWhenArenaFull(t *testing.T) {
	q := New(4, 50*time.Millisecond)

	if _, ok := q.Alloc(0, false, TagHumidity, 0, Humidity{Percent: 1}, 0, 0); ok {
		t.Fatalf("expected alloc to fail: humidity record needs 8 bytes, arena holds 4")
	}
}

func TestFreeReclaimsOnlyFromHead(t *testing.T) {
	q := New(4096, 50*time.Millisecond)

	h1, _ := q.Alloc(0, false, TagHumidity, 0, Humidity{Percent: 1}, 0, 0)
	h2, _ := q.Alloc(0, false, TagHumidity, 0, Humidity{Percent: 2}, 0, 0)

	// Freeing h2 (not the physical head) must not reclaim it yet.
	refs := q.Free(h2)
	if len(refs) != 0 {
		t.Fatalf("expected no reclaim while head is still live, got %v", refs)
	}
	if q.Count() != 2 {
		t.Fatalf("expected both records still present, count=%d", q.Count())
	}

	// Freeing h1 (the head) must now reclaim both in order.
	q.Free(h1)
	if q.Count() != 0 {
		t.Fatalf("expected both records reclaimed, count=%d", q.Count())
	}
}

func TestSortOrdersBySortKeyThenTimestamp(t *testing.T) {
	q := New(4096, 50*time.Millisecond)

	q.Alloc(0, false, TagHumidity, 0, Humidity{Percent: 1}, 100, 0)
	hUrgent, _ := q.Alloc(0, false, TagHumidity, FlagSendNow, Humidity{Percent: 2}, 50, 0)

	head, ok := q.Sort()
	if !ok {
		t.Fatalf("expected a sorted head")
	}
	if head != hUrgent {
		t.Fatalf("expected send-now record to sort first, got handle %d", head)
	}
}

func TestSortResumesAcrossGuardTimeouts(t *testing.T) {
	const n = 100
	q := New(1<<20, 0) // sortGuard=0: the very first guard check is already overdue

	for i := 0; i < n; i++ {
		// Ascending insertion order is the worst case for the
		// descending-timestamp sort: every new element must shift to
		// the front, forcing real work on every pass.
		q.Alloc(0, false, TagHumidity, 0, Humidity{Percent: uint(i)}, int64(i+1), 0)
	}

	var calls int64
	q.now = func() time.Time {
		calls++
		return time.Unix(calls, 0)
	}

	if _, ok := q.Sort(); !ok {
		t.Fatalf("expected a head even from a partial sort")
	}
	if q.sortProgress == 0 {
		t.Fatalf("expected Sort to stop partway through and record a resume point")
	}
	progressAfterFirstCall := q.sortProgress

	if _, ok := q.Sort(); !ok {
		t.Fatalf("expected a head after the resuming call")
	}
	if q.sortProgress != 0 {
		t.Fatalf("expected the resuming call to finish the pass, got sortProgress=%d", q.sortProgress)
	}

	for i := 1; i < len(q.order); i++ {
		prev, cur := q.records[q.order[i-1]], q.records[q.order[i]]
		if prev.TimestampUTC < cur.TimestampUTC {
			t.Fatalf("expected descending timestamp order after resume completed, at index %d: %d before %d",
				i, prev.TimestampUTC, cur.TimestampUTC)
		}
	}
	if progressAfterFirstCall >= len(q.order) {
		t.Fatalf("expected the first call to have stopped short of the end, got progress=%d len=%d",
			progressAfterFirstCall, len(q.order))
	}
}

func TestActionRefClearedOnFree(t *testing.T) {
	q := New(4096, 50*time.Millisecond)

	h, _ := q.Alloc(7, true, TagHumidity, 0, Humidity{Percent: 1}, 0, 0)
	refs := q.Free(h)
	if len(refs) != 1 || !refs[0].Valid || refs[0].Handle != 7 {
		t.Fatalf("expected one valid action ref for handle 7, got %+v", refs)
	}
}
