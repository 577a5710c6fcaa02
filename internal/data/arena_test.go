package data

import "testing"

func TestArenaAllocateEmptyCase(t *testing.T) {
	a := newArena(16)
	off, ok := a.allocate(1, 8)
	if !ok || off != 0 {
		t.Fatalf("expected first alloc at offset 0, got off=%d ok=%v", off, ok)
	}
	if a.bytesUsed() != 8 {
		t.Fatalf("expected 8 bytes used, got %d", a.bytesUsed())
	}
}

func TestArenaAllocateAheadOfHead(t *testing.T) {
	a := newArena(16)
	a.allocate(1, 8)
	off, ok := a.allocate(2, 8)
	if !ok || off != 8 {
		t.Fatalf("expected second alloc at offset 8, got off=%d ok=%v", off, ok)
	}
}

func TestArenaAllocateAtBaseAfterFullReclaim(t *testing.T) {
	a := newArena(16)
	a.allocate(1, 8) // offset 0..8, head=0, tail=8
	a.free(1)        // reclaim head, chain empty, tail resets to 0
	off, ok := a.allocate(2, 16)
	if !ok || off != 0 {
		t.Fatalf("expected reclaimed arena to allocate at 0, got off=%d ok=%v", off, ok)
	}
}

func TestArenaAllocateFailsWhenOversized(t *testing.T) {
	a := newArena(8)
	if _, ok := a.allocate(1, 16); ok {
		t.Fatalf("expected oversized allocation to fail")
	}
}

func TestArenaReclaimStopsAtFirstLiveBlock(t *testing.T) {
	a := newArena(32)
	a.allocate(1, 8)
	a.allocate(2, 8)
	a.allocate(3, 8)

	// Free the middle block only: reclaim must not touch it since the
	// head (block 1) is still live.
	reclaimed := a.free(2)
	if len(reclaimed) != 0 {
		t.Fatalf("expected no reclaim while head is live, got %v", reclaimed)
	}

	reclaimed = a.free(1)
	if len(reclaimed) != 2 {
		t.Fatalf("expected head and the now-contiguous freed block reclaimed, got %v", reclaimed)
	}
	if reclaimed[0] != 1 || reclaimed[1] != 2 {
		t.Fatalf("expected reclaim order [1,2], got %v", reclaimed)
	}
}

func TestArenaAllocateRejectsWhenFullyWrappedAndTied(t *testing.T) {
	a := newArena(100)
	a.allocate(1, 40) // offset 0..40, head=0, tail=40
	a.allocate(2, 60) // offset 40..100, tail wraps to 0; head==tail==0, fully occupied

	if _, ok := a.allocate(3, 10); ok {
		t.Fatalf("expected allocation to fail: arena is fully occupied with head==tail==0")
	}
	if a.canAlloc(10) {
		t.Fatalf("expected canAlloc to report no room when head==tail==0 and the chain is non-empty")
	}
}

func TestToWords(t *testing.T) {
	cases := map[int]int{0: 0, 1: 4, 4: 4, 5: 8, 8: 8}
	for in, want := range cases {
		if got := toWords(in); got != want {
			t.Fatalf("toWords(%d) = %d, want %d", in, got, want)
		}
	}
}
