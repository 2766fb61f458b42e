package internal

import (
	"testing"
	"time"
)

func TestEventQueueMaskFiltering(t *testing.T) {
	q := NewEventQueue()
	q.Emit(Event{Type: EventFreeSlot, FrameNo: 1})
	q.Emit(Event{Type: EventReady, FrameNo: 2})

	ev := q.Wait(EventReady, 50*time.Millisecond)
	if ev.Type != EventReady || ev.FrameNo != 2 {
		t.Fatalf("expected to skip the FreeSlot event and receive Ready{2}, got %+v", ev)
	}

	ev = q.Wait(EventFreeSlot, 50*time.Millisecond)
	if ev.Type != EventFreeSlot || ev.FrameNo != 1 {
		t.Fatalf("expected the previously-skipped FreeSlot{1} to still be pending, got %+v", ev)
	}
}

func TestEventQueueWaitTimesOutWithoutMatchingEvent(t *testing.T) {
	q := NewEventQueue()
	q.Emit(Event{Type: EventFreeSlot})

	start := time.Now()
	ev := q.Wait(EventReady, 20*time.Millisecond)
	elapsed := time.Since(start)

	if ev.Type != EventError {
		t.Fatalf("expected Error sentinel, got %+v", ev)
	}
	if elapsed < 20*time.Millisecond {
		t.Fatalf("Wait returned before its timeout elapsed: %v", elapsed)
	}
	if q.Pending() != 1 {
		t.Fatalf("the non-matching FreeSlot event must remain queued, Pending()=%d", q.Pending())
	}
}

func TestEventQueueReleaseWakesAllWaiters(t *testing.T) {
	q := NewEventQueue()

	results := make(chan Event, 3)
	for i := 0; i < 3; i++ {
		go func() { results <- q.Wait(AllEvents, Infinite) }()
	}

	time.Sleep(10 * time.Millisecond)
	q.Release()

	for i := 0; i < 3; i++ {
		select {
		case ev := <-results:
			if ev.Type != EventError {
				t.Fatalf("waiter %d: expected Error sentinel on release, got %+v", i, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("waiter %d: Release did not wake it within 1s", i)
		}
	}
}

func TestEventQueueReleaseIsSticky(t *testing.T) {
	q := NewEventQueue()
	q.Release()

	ev := q.Wait(AllEvents, Infinite)
	if ev.Type != EventError {
		t.Fatalf("Wait after Release must return immediately with the Error sentinel, got %+v", ev)
	}
}

func TestEventQueueEmitOrderPreservedWithinMask(t *testing.T) {
	q := NewEventQueue()
	q.Emit(Event{Type: EventReady, FrameNo: 1})
	q.Emit(Event{Type: EventReady, FrameNo: 2})

	first := q.Wait(EventReady, 50*time.Millisecond)
	second := q.Wait(EventReady, 50*time.Millisecond)

	if first.FrameNo != 1 || second.FrameNo != 2 {
		t.Fatalf("expected FIFO order 1,2 got %d,%d", first.FrameNo, second.FrameNo)
	}
}
