package framebuffer

import (
	"time"

	"github.com/e7canasta/ndnrtc-framebuffer/internal"
)

// Frame is re-exported from internal to avoid import cycles; see
// internal/frame.go for the full documentation.
type Frame = internal.Frame

// Codec unpacks assembled segment bytes into a decoded Frame. See
// internal/frame.go for the full contract.
type Codec = internal.Codec

// State is a slot's position in the assembly lifecycle.
type State = internal.State

const (
	StateFree       = internal.StateFree
	StateNew        = internal.StateNew
	StateAssembling = internal.StateAssembling
	StateReady      = internal.StateReady
	StateLocked     = internal.StateLocked
)

// CallResult is the result code returned by buffer operations.
type CallResult = internal.CallResult

const (
	CallResultOk         = internal.CallResultOk
	CallResultNew        = internal.CallResultNew
	CallResultBooked     = internal.CallResultBooked
	CallResultFull       = internal.CallResultFull
	CallResultNotFound   = internal.CallResultNotFound
	CallResultAssembling = internal.CallResultAssembling
	CallResultLocked     = internal.CallResultLocked
	CallResultError      = internal.CallResultError
)

// EventType is a bitmask of assembly milestones a consumer can wait on.
type EventType = internal.EventType

const (
	EventReady        = internal.EventReady
	EventFirstSegment = internal.EventFirstSegment
	EventFreeSlot     = internal.EventFreeSlot
	EventTimeout      = internal.EventTimeout
	EventError        = internal.EventError
	AllEvents         = internal.AllEvents
)

// Event describes one assembly milestone, delivered through WaitForEvents.
type Event = internal.Event

// SlotHandle is a read-only, dangle-proof capability carried by an Event;
// see internal/pool.go for the validity contract.
type SlotHandle = internal.SlotHandle

// Stats is a point-in-time snapshot of pool occupancy and segment counters.
type Stats = internal.Stats

// Infinite, passed as the timeout to WaitForEvents, blocks until a
// matching event is emitted or the buffer is released.
const Infinite = internal.Infinite

// Buffer is the public contract of the frame reassembly buffer. It is an
// interface, not a concrete type, so callers depend on behavior rather
// than implementation, and so a future revision can swap implementations
// without breaking callers.
//
// All methods are safe for concurrent use. Only WaitForEvents may block;
// every other method is wait-free aside from a brief internal critical
// section.
type Buffer interface {
	// BookSlot reserves a slot for frameNo. Idempotent: booking an
	// already-booked frame returns CallResultBooked without side effects.
	// Returns CallResultFull if no slot is free.
	BookSlot(frameNo uint32) CallResult

	// MarkSlotAssembling records the geometry revealed by the first
	// segment of frameNo to arrive. frameNo must already be booked.
	MarkSlotAssembling(frameNo uint32, segmentsNum, segmentSize int) CallResult

	// AppendSegment writes one segment's bytes into frameNo's slot.
	// Returns CallResultAssembling on every successful write (whether or
	// not the frame just became Ready — consumers learn of Ready and
	// FirstSegment milestones from the event stream, by design).
	AppendSegment(frameNo uint32, segNo int, data []byte) CallResult

	// NotifySegmentTimeout emits an EventTimeout for frameNo/segNo. It
	// does not mutate slot state; the fetch layer decides whether to
	// retry or abandon the segment. If frameNo is not mapped to a slot,
	// it logs a warning and emits nothing.
	NotifySegmentTimeout(frameNo uint32, segNo int)

	// LockSlot protects frameNo's payload from recycling while a
	// consumer reads it. Safe to call from Ready, Assembling, or New.
	LockSlot(frameNo uint32) CallResult

	// UnlockSlot restores the state frameNo's slot had before LockSlot.
	UnlockSlot(frameNo uint32) CallResult

	// MarkSlotFree returns frameNo's slot to the free pool. A no-op,
	// logged and absorbed, if the slot is Locked.
	MarkSlotFree(frameNo uint32) CallResult

	// GetState returns frameNo's current state, or StateFree if frameNo
	// is not currently mapped to a slot.
	GetState(frameNo uint32) State

	// GetEncodedImage decodes and returns frameNo's assembled frame, if
	// the slot is Ready (or Locked with a Ready state stashed).
	GetEncodedImage(frameNo uint32) (Frame, bool)

	// WaitForEvents blocks until an event matching mask is available,
	// timeout elapses, or Release is called, in which case it returns
	// the Error-typed sentinel (FrameNo == 0 && SegmentNo == 0 denotes
	// shutdown by convention). Pass Infinite to block indefinitely.
	WaitForEvents(mask EventType, timeout time.Duration) Event

	// Flush returns every non-Locked mapped slot to the free pool and
	// reports how many were freed. Locked slots survive flush.
	Flush() int

	// Release wakes every blocked WaitForEvents call with the shutdown
	// sentinel. One-shot: construct a new Buffer to resume.
	Release()

	// Stats returns a snapshot of current slot occupancy and segment
	// counters, for callers that want a plain struct rather than scraping
	// Prometheus.
	Stats() Stats
}

// New constructs a Buffer with cfg.BufferSize slots of cfg.SlotSize bytes
// each. Returns an error if BufferSize or SlotSize is zero.
func New(cfg Config) (Buffer, error) {
	cfg = cfg.withDefaults()
	pool, err := internal.NewPool(cfg.BufferSize, cfg.SlotSize, cfg.Logger, cfg.Codec, cfg.metrics())
	if err != nil {
		return nil, err
	}
	return pool, nil
}
