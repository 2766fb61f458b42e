// Package internal implements the frame reassembly buffer: slots, the slot
// pool, and the event queue. Clients use the root package's Buffer
// interface; this package is not part of the public API.
package internal

// State is a Slot's position in the assembly lifecycle.
type State int

const (
	StateFree State = iota
	StateNew
	StateAssembling
	StateReady
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "Free"
	case StateNew:
		return "New"
	case StateAssembling:
		return "Assembling"
	case StateReady:
		return "Ready"
	case StateLocked:
		return "Locked"
	default:
		return "Unknown"
	}
}

// CallResult is the result code returned by buffer operations. Steady-state
// misuse is reported through CallResult, never a panic.
type CallResult int

const (
	CallResultOk CallResult = iota
	CallResultNew
	CallResultBooked
	CallResultFull
	CallResultNotFound
	CallResultAssembling
	CallResultLocked
	CallResultError
)

func (r CallResult) String() string {
	switch r {
	case CallResultOk:
		return "Ok"
	case CallResultNew:
		return "New"
	case CallResultBooked:
		return "Booked"
	case CallResultFull:
		return "Full"
	case CallResultNotFound:
		return "NotFound"
	case CallResultAssembling:
		return "Assembling"
	case CallResultLocked:
		return "Locked"
	case CallResultError:
		return "Error"
	default:
		return "Unknown"
	}
}

// EventType is a bitmask so consumers can wait on an OR of event kinds.
type EventType int

const (
	EventReady EventType = 1 << iota
	EventFirstSegment
	EventFreeSlot
	EventTimeout
	EventError
)

// AllEvents is a mask matching every event type.
const AllEvents = EventReady | EventFirstSegment | EventFreeSlot | EventTimeout | EventError

func (t EventType) String() string {
	switch t {
	case EventReady:
		return "Ready"
	case EventFirstSegment:
		return "FirstSegment"
	case EventFreeSlot:
		return "FreeSlot"
	case EventTimeout:
		return "Timeout"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event describes one assembly milestone. Slot is a read-only handle valid
// for as long as the frame it refers to is not recycled; see SlotHandle.
type Event struct {
	Type      EventType
	FrameNo   uint32
	SegmentNo uint32
	TraceID   string
	Slot      SlotHandle
}

// shutdownEvent is the sentinel delivered to every waiter on Release(), and
// to a waiter whose timeout elapses. Both cases carry EventType Error with
// a zero FrameNo/SegmentNo; callers that need to tell a deliberate shutdown
// apart from a plain timeout should track Release separately.
func shutdownEvent() Event {
	return Event{Type: EventError}
}
