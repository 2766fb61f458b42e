package internal

import "testing"

func TestSlotAppendSegmentRangeInvariant(t *testing.T) {
	s := newSlot(0, 10)
	s.markNew(1, "t")
	s.markAssembling(2, 5)

	// segNo=2 * segSize=5 = start 10, which is already out of the
	// 10-byte slot: segment number k writes to byte range
	// [k*segment_size, k*segment_size+len), which must lie inside
	// [0, slot_size).
	if _, err := s.appendSegment(2, []byte{1}); err == nil {
		t.Fatal("expected range invariant violation, got nil error")
	}
}

func TestSlotAppendSegmentDuplicateDoesNotDoubleCountOrRefire(t *testing.T) {
	s := newSlot(0, 10)
	s.markNew(1, "t")
	s.markAssembling(2, 5)

	first, err := s.appendSegment(0, []byte{1, 2, 3, 4, 5})
	if err != nil || !first.firstSegment || first.state != StateAssembling {
		t.Fatalf("unexpected first append result: %+v err=%v", first, err)
	}

	dup, err := s.appendSegment(0, []byte{9, 9, 9, 9, 9})
	if err != nil {
		t.Fatalf("duplicate append errored: %v", err)
	}
	if !dup.duplicate {
		t.Fatal("expected duplicate to be flagged")
	}
	if s.storedSegments != 1 {
		t.Fatalf("duplicate must not bump stored_segments, got %d", s.storedSegments)
	}

	second, err := s.appendSegment(1, []byte{6, 7, 8, 9, 10})
	if err != nil || second.state != StateReady {
		t.Fatalf("expected Ready after second distinct segment, got %+v err=%v", second, err)
	}
}

func TestSlotGetFrameOnlyWhenReadyOrLockedReady(t *testing.T) {
	s := newSlot(0, 10)
	s.markNew(1, "t")
	s.markAssembling(1, 10)

	if _, ok := s.getFrame(); ok {
		t.Fatal("New/Assembling slot must not yield a frame")
	}

	if _, err := s.appendSegment(0, []byte("helloworld")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if s.state != StateReady {
		t.Fatalf("expected Ready, got %s", s.state)
	}
	if _, ok := s.getFrame(); !ok {
		t.Fatal("Ready slot must yield a frame")
	}

	s.markLocked()
	if _, ok := s.getFrame(); !ok {
		t.Fatal("Locked slot stashed from Ready must still yield a frame")
	}

	s.markUnlocked()
	if s.state != StateReady {
		t.Fatalf("unlock must restore stashed state, got %s", s.state)
	}
}
