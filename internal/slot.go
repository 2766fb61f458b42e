package internal

import "fmt"

// slot is a fixed-size byte region plus the per-frame assembly state
// machine. All fields are mutated only by the owning SlotPool, always
// under the pool's lock — a slot carries no lock of its own; its state
// transitions are always performed under the pool mutex.
type slot struct {
	data  []byte
	index int

	state        State
	stashedState State

	booked      bool
	frameNumber uint32
	traceID     string

	segmentSize    int
	segmentsNum    int
	storedSegments int
	assembledSize  int
	seenSegments   []bool
}

func newSlot(index, size int) *slot {
	return &slot{data: make([]byte, size), index: index, state: StateFree}
}

// reset clears per-frame bookkeeping and returns the slot to Free. Called
// only on a non-Locked slot.
func (s *slot) reset() {
	s.state = StateFree
	s.booked = false
	s.frameNumber = 0
	s.traceID = ""
	s.segmentSize = 0
	s.segmentsNum = 0
	s.storedSegments = 0
	s.assembledSize = 0
	s.seenSegments = nil
}

func (s *slot) markNew(frameNo uint32, traceID string) {
	s.reset()
	s.state = StateNew
	s.booked = true
	s.frameNumber = frameNo
	s.traceID = traceID
}

func (s *slot) markAssembling(segmentsNum, segmentSize int) {
	s.state = StateAssembling
	s.segmentsNum = segmentsNum
	s.segmentSize = segmentSize
	s.seenSegments = make([]bool, segmentsNum)
}

func (s *slot) markLocked() {
	s.stashedState = s.state
	s.state = StateLocked
}

func (s *slot) markUnlocked() {
	s.state = s.stashedState
}

// appendResult reports what appendSegment did, so the pool can decide which
// events to emit without re-deriving state transitions itself.
type appendResult struct {
	state        State
	firstSegment bool
	duplicate    bool
}

// appendSegment writes one segment's bytes into the slot's backing array.
// The caller (SlotPool.AppendSegment) must already have verified
// state == StateAssembling; appendSegment itself only enforces the
// byte-range invariant and segment dedup.
func (s *slot) appendSegment(segNo int, data []byte) (appendResult, error) {
	start := segNo * s.segmentSize
	end := start + len(data)
	if segNo < 0 || start < 0 || end > len(s.data) {
		return appendResult{}, fmt.Errorf("segment %d [%d:%d) overflows slot of size %d", segNo, start, end, len(s.data))
	}

	copy(s.data[start:end], data)

	if segNo < len(s.seenSegments) && s.seenSegments[segNo] {
		// Idempotent overwrite: bytes are rewritten but counters, and
		// therefore the single-shot events derived from them, do not
		// move.
		return appendResult{state: s.state, duplicate: true}, nil
	}
	if segNo < len(s.seenSegments) {
		s.seenSegments[segNo] = true
	}

	s.storedSegments++
	s.assembledSize += len(data)

	if s.storedSegments == s.segmentsNum {
		s.state = StateReady
	} else {
		s.state = StateAssembling
	}

	return appendResult{state: s.state, firstSegment: s.storedSegments == 1}, nil
}

// getFrame returns the assembled bytes if the slot is currently readable
// (Ready, or Locked with a Ready stashedState).
func (s *slot) getFrame() ([]byte, bool) {
	if s.state == StateReady || (s.state == StateLocked && s.stashedState == StateReady) {
		return s.data[:s.assembledSize], true
	}
	return nil, false
}
