// Package framebuffer implements a receiver-side frame reassembly buffer
// for NDN real-time video transport.
//
// # Philosophy
//
// Video frames arrive over NDN segmented into independently addressable,
// name-routed packets. The buffer is the rendezvous between a network
// fetch layer — which discovers segments and hands them in as they
// arrive, possibly out of order, possibly late, possibly lost — and a
// decode/playout layer, which needs fully assembled, ordered frames. It
// allocates and recycles per-frame scratch storage, tracks assembly
// progress, exposes an event stream describing assembly milestones, and
// gates access so a consumer can hold a completed frame without having
// its storage recycled underneath it.
//
// The buffer does not decode, does not reorder frames for playout, does
// not decide what to fetch, and does not enforce a jitter/timing policy.
// It has no persistence. It does guard against a segment number being
// delivered twice: a re-delivered segment overwrites its bytes in place
// but never double-counts assembly progress or re-fires an event.
//
// # Architecture
//
// A fixed pool of fixed-size slots, a frame-id -> slot mapping, a
// per-slot assembly state machine (Free -> New -> Assembling -> Ready ->
// Locked -> back to Free), and an event queue consumers block on:
//
//	network fetch layer -> Buffer (slots) -> consumer (decode/playout)
//	  BookSlot/AppendSegment      assembly state          WaitForEvents
//	  NotifySegmentTimeout                                Lock/GetEncodedImage/Unlock
//
// # Basic Usage
//
// Network fetch layer (producer side):
//
//	buf, err := framebuffer.New(framebuffer.Config{BufferSize: 8, SlotSize: 1 << 20})
//	if err != nil {
//	    log.Fatalf("buffer init failed: %v", err)
//	}
//	defer buf.Release()
//
//	buf.BookSlot(frameNo)
//	buf.MarkSlotAssembling(frameNo, nSegments, segmentSize)
//	buf.AppendSegment(frameNo, segNo, segmentBytes)
//
// Consumer side (decode/playout):
//
//	for {
//	    ev := buf.WaitForEvents(framebuffer.EventReady|framebuffer.EventError, 5*time.Second)
//	    if ev.Type == framebuffer.EventError {
//	        break // timeout or Release()
//	    }
//	    buf.LockSlot(ev.FrameNo)
//	    frame, ok := buf.GetEncodedImage(ev.FrameNo)
//	    if ok {
//	        render(frame)
//	    }
//	    buf.UnlockSlot(ev.FrameNo)
//	    buf.MarkSlotFree(ev.FrameNo)
//	}
package framebuffer
