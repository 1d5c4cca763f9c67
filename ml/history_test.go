package ml

import (
	"os"
	"path/filepath"
	"testing"
)

func testObservations(n int, attendance float64) []Observation {
	obs := make([]Observation, n)
	for i := range obs {
		o := Observation{Day: i % 7, Hour: 8 + i%14, Attendance: attendance}
		o.Derive()
		o.Label = LevelFromAttendance(attendance)
		obs[i] = o
	}
	return obs
}

func TestHistoryStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	store := NewHistoryStore(path)

	if _, err := store.Append(testObservations(5, 70)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 5 {
		t.Fatalf("got %d rows, want 5", len(loaded))
	}
	if loaded[0].Label != High {
		t.Errorf("label lost in round trip: %v", loaded[0].Label)
	}
	if loaded[2].Hour != 10 {
		t.Errorf("hour lost in round trip: %d", loaded[2].Hour)
	}
}

func TestHistoryStoreMissingFileIsEmpty(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "absent.csv"))

	obs, err := store.Load()
	if err != nil {
		t.Fatalf("Load of missing file failed: %v", err)
	}
	if len(obs) != 0 {
		t.Errorf("missing file produced %d rows", len(obs))
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d, want 0", store.Count())
	}
}

func TestHistoryStoreTrimsOldestFirst(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "history.csv"))
	store.cap = 10

	// Old rows carry low attendance, the new batch high; after trimming
	// only high rows should survive.
	if _, err := store.Append(testObservations(8, 10)); err != nil {
		t.Fatalf("first Append failed: %v", err)
	}
	merged, err := store.Append(testObservations(10, 90))
	if err != nil {
		t.Fatalf("second Append failed: %v", err)
	}

	if len(merged) != 10 {
		t.Fatalf("got %d rows after trim, want 10", len(merged))
	}
	for i, o := range merged {
		if o.Label != High {
			t.Errorf("row %d survived the trim but is old (label %v)", i, o.Label)
		}
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 10 {
		t.Errorf("persisted %d rows, want 10", len(loaded))
	}
}

func TestHistoryStoreRederivesLegacyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	// A file written before the engineered columns existed.
	legacy := "day,hour,type,attendance\n6,10,0,5\n2,14,1,80\n"
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	obs, err := NewHistoryStore(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("got %d rows, want 2", len(obs))
	}
	if obs[0].IsWeekend != 1 || obs[0].TimeBin != 0 {
		t.Errorf("legacy row 0 not re-derived: weekend=%d bin=%d", obs[0].IsWeekend, obs[0].TimeBin)
	}
	if obs[1].IsWeekend != 0 || obs[1].TimeBin != 1 {
		t.Errorf("legacy row 1 not re-derived: weekend=%d bin=%d", obs[1].IsWeekend, obs[1].TimeBin)
	}
	if obs[1].Label != High {
		t.Errorf("legacy row 1 label = %v, want High", obs[1].Label)
	}
}
