package framebuffer

import (
	"testing"
	"time"
)

// TestBufferEndToEndSingleFrame drives one frame through the public
// Buffer interface exactly as cmd/demo does: book, reveal geometry,
// append every segment, wait for Ready, lock, read, unlock, free.
func TestBufferEndToEndSingleFrame(t *testing.T) {
	buf, err := New(NewConfig(2, 4096))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer buf.Release()

	for i := 0; i < 2; i++ {
		if ev := buf.WaitForEvents(EventFreeSlot, 50*time.Millisecond); ev.Type != EventFreeSlot {
			t.Fatalf("expected init FreeSlot event %d, got %v", i, ev.Type)
		}
	}

	const frameNo = 42
	if res := buf.BookSlot(frameNo); res != CallResultNew {
		t.Fatalf("BookSlot = %v, want New", res)
	}
	buf.MarkSlotAssembling(frameNo, 2, 1000)

	buf.AppendSegment(frameNo, 0, make([]byte, 1000))
	if ev := buf.WaitForEvents(EventFirstSegment, 50*time.Millisecond); ev.Type != EventFirstSegment {
		t.Fatalf("expected FirstSegment, got %v", ev.Type)
	}

	buf.AppendSegment(frameNo, 1, make([]byte, 1000))
	ev := buf.WaitForEvents(EventReady, 50*time.Millisecond)
	if ev.Type != EventReady || ev.FrameNo != frameNo {
		t.Fatalf("expected Ready{%d}, got %+v", frameNo, ev)
	}

	buf.LockSlot(frameNo)
	frame, ok := buf.GetEncodedImage(frameNo)
	if !ok {
		t.Fatal("expected a readable frame once Ready and Locked")
	}
	if len(frame.Data) != 2000 {
		t.Fatalf("assembled frame size = %d, want 2000", len(frame.Data))
	}

	buf.UnlockSlot(frameNo)
	if res := buf.MarkSlotFree(frameNo); res != CallResultOk {
		t.Fatalf("MarkSlotFree = %v, want Ok", res)
	}

	stats := buf.Stats()
	if stats.FreeSlots != 2 {
		t.Fatalf("Stats().FreeSlots = %d, want 2 after freeing the only booked frame", stats.FreeSlots)
	}
}

// TestBufferReleaseUnblocksConsumers verifies that Release wakes a
// consumer goroutine blocked in WaitForEvents, the shutdown path
// cmd/demo relies on.
func TestBufferReleaseUnblocksConsumers(t *testing.T) {
	buf, err := New(NewConfig(1, 16))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	done := make(chan Event, 1)
	go func() { done <- buf.WaitForEvents(EventReady, Infinite) }()

	time.Sleep(10 * time.Millisecond)
	buf.Release()

	select {
	case ev := <-done:
		if ev.Type != EventError {
			t.Fatalf("expected Error shutdown sentinel, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Release did not unblock the waiting consumer within 1s")
	}
}

// TestBufferRejectsBadConfig verifies New surfaces a zero-size config as
// an error rather than constructing an unusable Buffer.
func TestBufferRejectsBadConfig(t *testing.T) {
	if _, err := New(NewConfig(0, 16)); err == nil {
		t.Fatal("expected an error for a zero buffer size")
	}
}
