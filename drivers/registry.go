package drivers

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Registry is the process-wide, boot-populated list of driver Info by
// type code (spec.md §4.1). Register is expected to run once per driver
// package during boot, before any SensorTask starts (spec.md §9);
// subsequent lookups only read.
//
// The reference firmware's registry silently ignores overflow past a
// fixed-capacity array and never treats a missing driver as fatal
// ("the set of drivers is compiled in; overflow is a configuration bug
// detectable at boot, not a runtime error" -- spec.md §4.1). A Go map has
// no fixed capacity, so the only failure mode left is a duplicate
// type_code, which Register also treats as a silent no-op rather than a
// boot panic, preserving that contract.
type Registry struct {
	mu    sync.RWMutex
	byTyp map[byte]Info
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTyp: map[byte]Info{}}
}

// Register adds info to the registry, keyed by info.TypeCode. A duplicate
// type_code is ignored (see type doc).
func (r *Registry) Register(info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byTyp[info.TypeCode]; exists {
		return
	}
	r.byTyp[info.TypeCode] = info
}

// Find looks up a driver by type_code. The zero Info and false are
// returned when not found -- never fatal (spec.md §4.1).
func (r *Registry) Find(typeCode byte) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byTyp[typeCode]
	return info, ok
}

// TypeCodes lists every registered type code, sorted, for diagnostics and
// deterministic test iteration.
func (r *Registry) TypeCodes() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]byte, 0, len(r.byTyp))
	for t := range r.byTyp {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
