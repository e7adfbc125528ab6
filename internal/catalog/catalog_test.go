package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nlconnect/wbsreports/internal/report"
)

// fakeStore serves snapshots from memory and counts calls so memoization can
// be asserted.
type fakeStore struct {
	entries   []Entry
	err       error
	snapshots int
}

func (f *fakeStore) Snapshot(context.Context) ([]Entry, error) {
	f.snapshots++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func (f *fakeStore) Replace(_ context.Context, entries []Entry) (int64, error) {
	f.entries = entries
	return int64(len(entries)), nil
}

func masterFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "WBS_NAMES.XLSX")
	if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSession_StatusAvailable(t *testing.T) {
	store := &fakeStore{entries: []Entry{{Code: "NL-C-001", Name: "Capital Projects"}}}
	s := NewSession(store, masterFile(t))

	state, reason := s.Status(context.Background())
	if state != StateAvailable || reason != "" {
		t.Errorf("Status = (%s, %s), want (available, empty reason)", state, reason)
	}
}

func TestSession_StatusMemoized(t *testing.T) {
	store := &fakeStore{entries: []Entry{{Code: "NL-C-001", Name: "Capital Projects"}}}
	s := NewSession(store, masterFile(t))

	ctx := context.Background()
	s.Status(ctx)
	s.Status(ctx)
	s.Map(ctx, []string{"NL-C-001"})

	if store.snapshots != 1 {
		t.Errorf("store queried %d times, want 1", store.snapshots)
	}
}

func TestSession_EmptyStoreWithMasterPresent(t *testing.T) {
	s := NewSession(&fakeStore{}, masterFile(t))

	state, reason := s.Status(context.Background())
	if state != StateUnavailable || reason != ReasonNotImported {
		t.Errorf("Status = (%s, %s), want (unavailable, not-imported)", state, reason)
	}
}

func TestSession_EmptyStoreWithMasterAbsent(t *testing.T) {
	s := NewSession(&fakeStore{}, filepath.Join(t.TempDir(), "missing.xlsx"))

	state, reason := s.Status(context.Background())
	if state != StateUnavailable || reason != ReasonSourceMissing {
		t.Errorf("Status = (%s, %s), want (unavailable, source-missing)", state, reason)
	}
}

func TestSession_NilStore(t *testing.T) {
	s := NewSession(nil, "")

	state, reason := s.Status(context.Background())
	if state != StateUnavailable || reason != ReasonSourceMissing {
		t.Errorf("Status = (%s, %s), want (unavailable, source-missing)", state, reason)
	}
}

func TestSession_SnapshotErrorDegrades(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	s := NewSession(store, masterFile(t))

	state, _ := s.Status(context.Background())
	if state != StateUnavailable {
		t.Errorf("state = %s, want unavailable on store error", state)
	}

	out := s.Map(context.Background(), []string{"NL-C-001"})
	if out.Status != report.CatalogUnavailable || out.Unmapped != 1 {
		t.Errorf("Map outcome = %+v, want unavailable with 1 unmapped", out)
	}
}

func TestSession_Map(t *testing.T) {
	store := &fakeStore{entries: []Entry{
		{Code: "NL-C-001", Name: "Capital Projects"},
		{Code: "NL-C-001-01", Name: "Site Works"},
	}}
	s := NewSession(store, masterFile(t))

	out := s.Map(context.Background(), []string{"NL-C-001", "NL-C-001-01", "NL-C-999"})

	if out.Status != report.CatalogAvailable {
		t.Errorf("Status = %q", out.Status)
	}
	if out.Mapped != 2 || out.Unmapped != 1 || out.Total != 3 {
		t.Errorf("Mapped/Unmapped/Total = %d/%d/%d, want 2/1/3", out.Mapped, out.Unmapped, out.Total)
	}
	if got := out.Descriptions["NL-C-001"]; got != "Capital Projects" {
		t.Errorf("description = %q", got)
	}
	if _, present := out.Descriptions["NL-C-999"]; present {
		t.Errorf("unmapped code has a description entry")
	}
}

func TestSession_MapUnavailable(t *testing.T) {
	s := NewSession(&fakeStore{}, filepath.Join(t.TempDir(), "missing.xlsx"))

	out := s.Map(context.Background(), []string{"NL-C-001", "NL-C-002"})

	if out.Status != report.CatalogUnavailable {
		t.Errorf("Status = %q", out.Status)
	}
	if out.Reason != report.ReasonSourceMissing {
		t.Errorf("Reason = %q", out.Reason)
	}
	if out.Mapped != 0 || out.Unmapped != 2 {
		t.Errorf("Mapped/Unmapped = %d/%d, want 0/2", out.Mapped, out.Unmapped)
	}
	if len(out.Descriptions) != 0 {
		t.Errorf("Descriptions = %v, want none", out.Descriptions)
	}
}

func TestSession_MapEmptyCodeSet(t *testing.T) {
	store := &fakeStore{entries: []Entry{{Code: "NL-C-001", Name: "Capital Projects"}}}
	s := NewSession(store, masterFile(t))

	out := s.Map(context.Background(), nil)
	if out.Status != report.CatalogAvailable || out.Total != 0 {
		t.Errorf("outcome = %+v, want available with zero totals", out)
	}
}

func TestSession_Reload(t *testing.T) {
	store := &fakeStore{}
	s := NewSession(store, masterFile(t))

	ctx := context.Background()
	if state, _ := s.Status(ctx); state != StateUnavailable {
		t.Fatalf("initial state = %s, want unavailable", state)
	}

	// Simulate an import landing, then reload.
	if _, err := store.Replace(ctx, []Entry{{Code: "NL-C-002", Name: "Solar"}}); err != nil {
		t.Fatal(err)
	}
	state, err := s.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if state != StateAvailable {
		t.Errorf("state after reload = %s, want available", state)
	}

	out := s.Map(ctx, []string{"NL-C-002"})
	if out.Mapped != 1 {
		t.Errorf("Mapped = %d after reload, want 1", out.Mapped)
	}
	if store.snapshots != 2 {
		t.Errorf("store queried %d times, want 2 (initial check + reload)", store.snapshots)
	}
}
