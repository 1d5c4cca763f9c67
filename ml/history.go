package ml

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// HistoryCap bounds the training corpus. When a batch would exceed it, the
// oldest rows are evicted first: a FIFO window, not a sample.
const HistoryCap = 10000

var historyColumns = []string{"day", "hour", "type", "attendance", "is_weekend", "time_bin", "label"}

// HistoryStore is the cumulative training corpus, persisted as a flat CSV
// table. It is append-and-trim only: individual rows are never edited or
// deleted, a bad observation can only age out of the window.
type HistoryStore struct {
	path string
	cap  int
}

func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path, cap: HistoryCap}
}

// Load reads the persisted corpus. A missing file is an empty corpus, not an
// error. Rows written before the engineered columns existed get them
// re-derived on load.
func (s *HistoryStore) Load() ([]Observation, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}

	obs := make([]Observation, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		o := ObservationFromRow(row)
		obs = append(obs, o)
	}
	return obs, nil
}

// Count returns the number of persisted rows without materializing them.
func (s *HistoryStore) Count() int {
	obs, err := s.Load()
	if err != nil {
		return 0
	}
	return len(obs)
}

// Append merges new observations into the corpus, trims to the cap keeping
// the most recent rows, and persists the result. Returns the corpus after
// the merge.
func (s *HistoryStore) Append(newObs []Observation) ([]Observation, error) {
	existing, err := s.Load()
	if err != nil {
		return nil, err
	}

	merged := append(existing, newObs...)
	if len(merged) > s.cap {
		merged = merged[len(merged)-s.cap:]
	}

	if err := s.save(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// save writes the full corpus to a temp file and renames it into place so a
// concurrent reader never observes a partially written table.
func (s *HistoryStore) save(obs []Observation) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "history-*.csv")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(historyColumns); err != nil {
		tmp.Close()
		return fmt.Errorf("write history header: %w", err)
	}
	for _, o := range obs {
		record := []string{
			strconv.Itoa(o.Day),
			strconv.Itoa(o.Hour),
			strconv.Itoa(o.SubjectType),
			strconv.FormatFloat(o.Attendance, 'f', -1, 64),
			strconv.Itoa(o.IsWeekend),
			strconv.Itoa(o.TimeBin),
			strconv.Itoa(int(o.Label)),
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write history row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp history: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
