package internal

// Stats is a point-in-time snapshot of pool occupancy and segment-level
// counters, for callers that want a plain struct instead of scraping
// Prometheus.
type Stats struct {
	FreeSlots       int
	AssemblingSlots int
	LockedSlots     int
	StoredFrames    int
	DuplicateSegs   uint64
	AppendErrors    uint64
}

// DuplicateRate returns the fraction of appended segments that were
// duplicates, in [0.0, 1.0]. Returns 0.0 if no segments have been appended
// yet, the same zero-total guard a subscriber-level bus drop rate needs.
func (s Stats) DuplicateRate(totalAppends uint64) float64 {
	if totalAppends == 0 {
		return 0.0
	}
	return float64(s.DuplicateSegs) / float64(totalAppends)
}

// Stats returns a snapshot of the pool's current occupancy and
// segment-level counters.
func (p *SlotPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Stats{FreeSlots: len(p.free), StoredFrames: len(p.byFrame)}
	for _, s := range p.byFrame {
		switch s.state {
		case StateAssembling, StateNew:
			st.AssemblingSlots++
		case StateLocked:
			st.LockedSlots++
		}
	}
	st.DuplicateSegs, st.AppendErrors = p.metrics.snapshot()
	return st
}
