// Package catalog manages the WBS reference catalog: the code → description
// index loaded from the master data store, its availability states, and the
// mapping operation the report pipeline uses to enrich codes. Mapping never
// fails; an absent or empty catalog puts the pipeline into degraded mode
// with blank descriptions and a structured reason.
package catalog

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/nlconnect/wbsreports/internal/logging"
	"github.com/nlconnect/wbsreports/internal/report"
)

// State is the catalog lifecycle state.
type State string

const (
	StateNotLoaded   State = "not-loaded"
	StateChecking    State = "checking"
	StateAvailable   State = "available"
	StateUnavailable State = "unavailable"
)

// Reason explains an unavailable catalog.
type Reason string

const (
	// ReasonSourceMissing: the master workbook that would populate the
	// catalog does not exist.
	ReasonSourceMissing Reason = Reason(report.ReasonSourceMissing)
	// ReasonNotImported: the master workbook exists but has not been
	// imported into the store.
	ReasonNotImported Reason = Reason(report.ReasonNotImported)
)

// Entry is one catalog record.
type Entry struct {
	Code string
	Name string
}

// Index is an immutable code → description snapshot. An empty index is a
// legitimate, detectable state, not an error.
type Index map[string]string

// Store loads and replaces catalog entries in the backing table.
type Store interface {
	Snapshot(ctx context.Context) ([]Entry, error)
	Replace(ctx context.Context, entries []Entry) (int64, error)
}

// Session owns the catalog for one processing session. The availability
// check runs at most once and is memoized; reads of the index are lock-free,
// and Reload swaps in a fresh index atomically so in-flight mapping sees
// either the fully-old or fully-new snapshot, never a partial one.
type Session struct {
	store      Store
	masterPath string

	mu      sync.Mutex
	checked bool
	state   State
	reason  Reason

	idx atomic.Pointer[Index]
}

// NewSession creates a session over the given store. masterPath points at
// the master workbook on disk; it is consulted only to distinguish a
// missing source from a source that was never imported.
func NewSession(store Store, masterPath string) *Session {
	return &Session{store: store, masterPath: masterPath, state: StateNotLoaded}
}

// Status returns the memoized availability, performing the check on first
// call.
func (s *Session) Status(ctx context.Context) (State, Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.checked {
		s.check(ctx)
	}
	return s.state, s.reason
}

// check loads the snapshot and settles the session state. Callers hold s.mu.
func (s *Session) check(ctx context.Context) {
	s.state = StateChecking

	idx := s.loadIndex(ctx)
	s.idx.Store(&idx)
	s.checked = true

	if len(idx) > 0 {
		s.state = StateAvailable
		s.reason = ""
		return
	}

	s.state = StateUnavailable
	s.reason = s.emptyReason()
}

func (s *Session) loadIndex(ctx context.Context) Index {
	if s.store == nil {
		return Index{}
	}
	entries, err := s.store.Snapshot(ctx)
	if err != nil {
		slog.Warn("catalog snapshot failed, continuing without descriptions", "error", err)
		return Index{}
	}
	idx := make(Index, len(entries))
	for _, e := range entries {
		idx[e.Code] = e.Name
	}
	return idx
}

// emptyReason distinguishes the two degraded cases when the index is empty.
func (s *Session) emptyReason() Reason {
	if s.masterPath == "" {
		return ReasonSourceMissing
	}
	if _, err := os.Stat(s.masterPath); err != nil {
		return ReasonSourceMissing
	}
	return ReasonNotImported
}

// Reload rebuilds the index from the store and swaps it in atomically.
// In-flight Map calls keep reading the index they started with; new calls
// see the fresh one. Reload is the only writer.
func (s *Session) Reload(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = false
	s.check(ctx)
	return s.state, nil
}

// Map attaches descriptions to the given codes. It never fails: when the
// catalog is unavailable every description is blank and the outcome carries
// the reason; when a code is simply absent it counts as unmapped.
func (s *Session) Map(ctx context.Context, codes []string) report.MapOutcome {
	state, reason := s.Status(ctx)

	outcome := report.MapOutcome{
		Descriptions: make(map[string]string, len(codes)),
		Total:        len(codes),
	}

	if state != StateAvailable {
		outcome.Status = report.CatalogUnavailable
		outcome.Reason = string(reason)
		outcome.Unmapped = len(codes)
		logging.FromContext(ctx).Warn("catalog unavailable, descriptions left blank",
			"reason", string(reason), "total_codes", len(codes))
		return outcome
	}

	idx := *s.idx.Load()
	for _, code := range codes {
		if name, ok := idx[code]; ok {
			outcome.Descriptions[code] = name
			outcome.Mapped++
		} else {
			outcome.Unmapped++
		}
	}
	outcome.Status = report.CatalogAvailable

	logging.FromContext(ctx).Info("catalog mapping completed",
		"mapped", outcome.Mapped, "unmapped", outcome.Unmapped, "total", outcome.Total)
	return outcome
}
