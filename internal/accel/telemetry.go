// telemetry.go - Rolling window of per-call timing records.
//
// The window is the only shared mutable state in the shim; calls may run
// from many goroutines, so appends are mutex guarded.

package accel

import (
	"sort"
	"sync"
	"time"
)

// DefaultTelemetryWindow is how many call records are retained.
const DefaultTelemetryWindow = 1000

// Record is one timed call.
type Record struct {
	Op          Op
	Elapsed     time.Duration
	Accelerated bool
}

// Telemetry is a bounded ring of call records.
type Telemetry struct {
	mu      sync.Mutex
	records []Record
	next    int
	full    bool
}

// NewTelemetry builds a window of the given capacity; zero or negative
// uses the default.
func NewTelemetry(capacity int) *Telemetry {
	if capacity <= 0 {
		capacity = DefaultTelemetryWindow
	}
	return &Telemetry{records: make([]Record, capacity)}
}

// Add appends one record, evicting the oldest when full.
func (t *Telemetry) Add(op Op, elapsed time.Duration, accelerated bool) {
	t.mu.Lock()
	t.records[t.next] = Record{Op: op, Elapsed: elapsed, Accelerated: accelerated}
	t.next++
	if t.next == len(t.records) {
		t.next = 0
		t.full = true
	}
	t.mu.Unlock()
}

// Len reports how many records are currently retained.
func (t *Telemetry) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.full {
		return len(t.records)
	}
	return t.next
}

// Snapshot copies the retained records, oldest first.
func (t *Telemetry) Snapshot() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		out := make([]Record, t.next)
		copy(out, t.records[:t.next])
		return out
	}
	out := make([]Record, 0, len(t.records))
	out = append(out, t.records[t.next:]...)
	out = append(out, t.records[:t.next]...)
	return out
}

// OpStats aggregates the window for one operation kind.
type OpStats struct {
	Op               Op
	Count            int
	AcceleratedCount int
	AvgReference     time.Duration
	AvgAccelerated   time.Duration

	// Speedup is AvgReference / AvgAccelerated; zero when either side
	// has no samples.
	Speedup float64
}

// Report aggregates the current window per operation kind, sorted by
// operation name.
func (t *Telemetry) Report() []OpStats {
	type agg struct {
		refN, accN     int
		refSum, accSum time.Duration
	}
	byOp := make(map[Op]*agg)
	for _, r := range t.Snapshot() {
		a := byOp[r.Op]
		if a == nil {
			a = &agg{}
			byOp[r.Op] = a
		}
		if r.Accelerated {
			a.accN++
			a.accSum += r.Elapsed
		} else {
			a.refN++
			a.refSum += r.Elapsed
		}
	}

	out := make([]OpStats, 0, len(byOp))
	for op, a := range byOp {
		st := OpStats{Op: op, Count: a.refN + a.accN, AcceleratedCount: a.accN}
		if a.refN > 0 {
			st.AvgReference = a.refSum / time.Duration(a.refN)
		}
		if a.accN > 0 {
			st.AvgAccelerated = a.accSum / time.Duration(a.accN)
		}
		if st.AvgReference > 0 && st.AvgAccelerated > 0 {
			st.Speedup = float64(st.AvgReference) / float64(st.AvgAccelerated)
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Op < out[j].Op })
	return out
}
