package internal

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SlotPool owns every slot for the buffer's lifetime, the free/in-use split,
// and the frame-id -> slot mapping. One mutex guards all of it; the event
// queue has its own lock, entered only after the pool lock that triggered
// an emission has already been released, so an emitted event can never be
// observed by a waiter while the pool itself is still locked.
type SlotPool struct {
	mu sync.Mutex

	slots   []*slot
	free    []*slot // stack: most recently freed slot allocated first
	byFrame map[uint32]*slot

	events  *EventQueue
	codec   Codec
	log     *slog.Logger
	metrics *Metrics

	released bool
}

// NewPool allocates bufferSize slots of slotSize bytes and pushes each onto
// the free stack, emitting one FreeSlot event per slot in insertion order.
// Both arguments must be non-zero.
func NewPool(bufferSize, slotSize int, log *slog.Logger, codec Codec, metrics *Metrics) (*SlotPool, error) {
	if bufferSize <= 0 || slotSize <= 0 {
		return nil, fmt.Errorf("framebuffer: bad_args: buffer_size=%d slot_size=%d must both be > 0", bufferSize, slotSize)
	}
	if codec == nil {
		codec = NopCodec{}
	}
	log = defaultLogger(log)

	p := &SlotPool{
		slots:   make([]*slot, bufferSize),
		byFrame: make(map[uint32]*slot, bufferSize),
		events:  NewEventQueue(),
		codec:   codec,
		log:     log,
		metrics: metrics,
	}

	for i := 0; i < bufferSize; i++ {
		s := newSlot(i, slotSize)
		p.slots[i] = s
		p.free = append(p.free, s)
		p.emit(Event{Type: EventFreeSlot, Slot: SlotHandle{pool: p, frameNo: 0}})
	}
	p.reportGaugesLocked()

	trace(log, "pool initialized", "buffer_size", bufferSize, "slot_size", slotSize)
	return p, nil
}

func (p *SlotPool) Events() *EventQueue { return p.events }

// WaitForEvents blocks until an event matching mask is available, the
// queue is released, or timeout elapses.
func (p *SlotPool) WaitForEvents(mask EventType, timeout time.Duration) Event {
	return p.events.Wait(mask, timeout)
}

// BookSlot reserves a slot for frameNo, or reports that it is already
// booked, or that the pool is full. Idempotent.
func (p *SlotPool) BookSlot(frameNo uint32) CallResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byFrame[frameNo]; ok {
		return CallResultBooked
	}
	if len(p.free) == 0 {
		return CallResultFull
	}

	s := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.byFrame[frameNo] = s
	s.markNew(frameNo, uuid.NewString())
	p.reportGaugesLocked()

	return CallResultNew
}

// MarkSlotAssembling records the geometry of frameNo's first revealed
// segment. Warns and no-ops if frameNo is unknown.
func (p *SlotPool) MarkSlotAssembling(frameNo uint32, segmentsNum, segmentSize int) CallResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.byFrame[frameNo]
	if !ok {
		p.log.Warn("mark_slot_assembling: frame not booked", "frame_no", frameNo)
		return CallResultNotFound
	}
	s.markAssembling(segmentsNum, segmentSize)
	p.reportGaugesLocked()
	return CallResultOk
}

// AppendSegment writes one segment into frameNo's slot, emitting
// FirstSegment / Ready events on the relevant single-shot transitions.
func (p *SlotPool) AppendSegment(frameNo uint32, segNo int, data []byte) CallResult {
	p.mu.Lock()

	s, ok := p.byFrame[frameNo]
	if !ok {
		p.mu.Unlock()
		p.log.Warn("append_segment: trying to append segment to non-booked slot", "frame_no", frameNo)
		return CallResultNotFound
	}

	if s.state != StateAssembling {
		p.mu.Unlock()
		p.log.Warn("append_segment: slot is not in a writeable state", "frame_no", frameNo, "state", s.state)
		if s.state == StateLocked {
			return CallResultLocked
		}
		return CallResultError
	}

	res, err := s.appendSegment(segNo, data)
	traceID := s.traceID
	if err != nil {
		p.mu.Unlock()
		p.log.Error("append_segment: range invariant violated", "frame_no", frameNo, "segment_no", segNo, "err", err)
		p.metrics.incAppendErrors()
		return CallResultError
	}
	if res.duplicate {
		p.metrics.incDuplicateSegs()
	}
	p.mu.Unlock()

	switch res.state {
	case StateAssembling:
		if res.firstSegment {
			p.emit(Event{Type: EventFirstSegment, FrameNo: frameNo, SegmentNo: uint32(segNo), TraceID: traceID, Slot: SlotHandle{pool: p, frameNo: frameNo}})
		}
		return CallResultAssembling
	case StateReady:
		p.emit(Event{Type: EventReady, FrameNo: frameNo, SegmentNo: uint32(segNo), TraceID: traceID, Slot: SlotHandle{pool: p, frameNo: frameNo}})
		return CallResultAssembling
	default:
		return CallResultError
	}
}

// NotifySegmentTimeout emits a Timeout event without mutating slot state;
// the fetch layer decides whether to retry or abandon.
func (p *SlotPool) NotifySegmentTimeout(frameNo uint32, segNo int) {
	p.mu.Lock()
	s, ok := p.byFrame[frameNo]
	traceID := ""
	if ok {
		traceID = s.traceID
	}
	p.mu.Unlock()

	if !ok {
		p.log.Warn("notify_segment_timeout: frame not found", "frame_no", frameNo)
		return
	}
	p.emit(Event{Type: EventTimeout, FrameNo: frameNo, SegmentNo: uint32(segNo), TraceID: traceID, Slot: SlotHandle{pool: p, frameNo: frameNo}})
}

// LockSlot stashes the current state and transitions to Locked, protecting
// the payload from recycling while a consumer reads it.
func (p *SlotPool) LockSlot(frameNo uint32) CallResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.byFrame[frameNo]
	if !ok {
		p.log.Warn("lock_slot: frame not found", "frame_no", frameNo)
		return CallResultNotFound
	}
	s.markLocked()
	p.reportGaugesLocked()
	return CallResultOk
}

// UnlockSlot restores the state stashed at LockSlot time.
func (p *SlotPool) UnlockSlot(frameNo uint32) CallResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.byFrame[frameNo]
	if !ok {
		p.log.Warn("unlock_slot: frame not found", "frame_no", frameNo)
		return CallResultNotFound
	}
	s.markUnlocked()
	p.reportGaugesLocked()
	return CallResultOk
}

// MarkSlotFree returns frameNo's slot to the free pool, unless it is
// currently Locked (a no-op with a warning).
func (p *SlotPool) MarkSlotFree(frameNo uint32) CallResult {
	p.mu.Lock()

	s, ok := p.byFrame[frameNo]
	if !ok {
		p.mu.Unlock()
		p.log.Warn("mark_slot_free: frame not found", "frame_no", frameNo)
		return CallResultNotFound
	}
	if s.state == StateLocked {
		p.mu.Unlock()
		p.log.Warn("mark_slot_free: can't free slot - it is locked", "frame_no", frameNo)
		return CallResultLocked
	}

	traceID := s.traceID
	delete(p.byFrame, frameNo)
	s.reset()
	p.free = append(p.free, s)
	p.reportGaugesLocked()
	p.mu.Unlock()

	p.emit(Event{Type: EventFreeSlot, FrameNo: frameNo, TraceID: traceID, Slot: SlotHandle{pool: p, frameNo: 0}})
	return CallResultOk
}

// GetState returns Free for an unknown frame.
func (p *SlotPool) GetState(frameNo uint32) State {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.byFrame[frameNo]
	if !ok {
		return StateFree
	}
	return s.state
}

// GetEncodedImage decodes and returns frameNo's assembled frame if the slot
// is readable (Ready, or Locked-with-Ready stash).
func (p *SlotPool) GetEncodedImage(frameNo uint32) (Frame, bool) {
	p.mu.Lock()
	s, ok := p.byFrame[frameNo]
	if !ok {
		p.mu.Unlock()
		return Frame{}, false
	}
	data, readable := s.getFrame()
	if !readable {
		p.mu.Unlock()
		return Frame{}, false
	}
	// Copy out before releasing the lock: the codec call itself may be
	// slow (decode) and must not happen while holding the pool mutex.
	snapshot := make([]byte, len(data))
	copy(snapshot, data)
	p.mu.Unlock()

	frame, err := p.codec.Unpack(snapshot)
	if err != nil {
		p.log.Error("get_encoded_image: decode failed", "frame_no", frameNo, "err", err)
		return Frame{}, false
	}
	frame.Seq = frameNo
	return frame, true
}

// Flush returns every non-Locked mapped slot to the free pool, emitting one
// FreeSlot event per slot freed. Locked slots survive flush. Victims are
// collected into a slice before any slot is mutated, since ranging over
// p.byFrame while deleting from it within the same loop is unsafe.
func (p *SlotPool) Flush() int {
	p.mu.Lock()

	var victims []uint32
	for frameNo, s := range p.byFrame {
		if s.state != StateLocked {
			victims = append(victims, frameNo)
		}
	}
	traceIDs := make([]string, 0, len(victims))
	for _, frameNo := range victims {
		s := p.byFrame[frameNo]
		traceIDs = append(traceIDs, s.traceID)
		delete(p.byFrame, frameNo)
		s.reset()
		p.free = append(p.free, s)
	}
	p.reportGaugesLocked()
	p.mu.Unlock()

	for _, traceID := range traceIDs {
		p.emit(Event{Type: EventFreeSlot, TraceID: traceID, Slot: SlotHandle{pool: p, frameNo: 0}})
	}
	return len(victims)
}

// Release wakes every blocked WaitForEvents call with the shutdown
// sentinel. One-shot: re-construct the Buffer to resume.
func (p *SlotPool) Release() {
	p.mu.Lock()
	p.released = true
	p.mu.Unlock()
	p.events.Release()
}

func (p *SlotPool) emit(ev Event) {
	p.events.Emit(ev)
	if p.metrics != nil {
		p.metrics.observeEvent(ev.Type)
	}
}

// reportGaugesLocked refreshes the pool-size gauges; caller must hold mu.
func (p *SlotPool) reportGaugesLocked() {
	if p.metrics == nil {
		return
	}
	var assembling, locked int
	for _, s := range p.byFrame {
		switch s.state {
		case StateAssembling, StateNew:
			assembling++
		case StateLocked:
			locked++
		}
	}
	p.metrics.FreeSlots.Set(float64(len(p.free)))
	p.metrics.AssemblingSlots.Set(float64(assembling))
	p.metrics.LockedSlots.Set(float64(locked))
}

// SlotHandle is a read-only, dangle-proof capability derived from an Event.
// It is not a raw pointer into pool memory: it is a (pool, frameNo) pair,
// and every accessor re-enters the pool's lock and re-resolves the slot by
// frame number at call time. If the frame has since been freed and its
// slot recycled to a different frame, the handle simply reports the
// current occupant's state honestly, the same way GetEncodedImage looks up
// by frame number rather than by slot identity.
type SlotHandle struct {
	pool    *SlotPool
	frameNo uint32
}

// Frame returns the handle's frame, if currently readable.
func (h SlotHandle) Frame() (Frame, bool) {
	if h.pool == nil {
		return Frame{}, false
	}
	return h.pool.GetEncodedImage(h.frameNo)
}

// State returns the handle's current state (Free if the frame is no longer
// mapped). Handles carried by FreeSlot events refer to frame number 0, so
// their State is Free unless frame 0 is currently mapped, in which case it
// is frame 0's state.
func (h SlotHandle) State() State {
	if h.pool == nil {
		return StateFree
	}
	return h.pool.GetState(h.frameNo)
}
