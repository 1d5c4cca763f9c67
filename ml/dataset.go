package ml

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dataset is an uploaded tabular file held as header-keyed rows.
type Dataset struct {
	Columns []string
	Rows    []map[string]string
}

// MissingColumnsError reports a structural validation failure on ingestion.
// The corpus is left untouched when this is returned.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// ReadCSV parses a CSV stream into a Dataset. The first record is the
// header; short rows are tolerated (missing cells read as empty).
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	ds := &Dataset{Columns: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(ds.Rows)+2, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// HasColumn reports whether the dataset header contains col.
func (d *Dataset) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// RequireColumns returns a MissingColumnsError naming every required column
// absent from the header, or nil when all are present.
func (d *Dataset) RequireColumns(required ...string) error {
	var missing []string
	for _, col := range required {
		if !d.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// ObservationFromRow normalizes one dataset row. An explicit label column
// wins over the attendance-derived label when it parses as 0..2.
func ObservationFromRow(row map[string]string) Observation {
	o := NewObservation(row["day"], row["hour"], row["type"], row["attendance"])
	if raw, ok := row["label"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n >= 0 && n <= 2 {
			o.Label = OccupancyLevel(n)
		}
	}
	return o
}
