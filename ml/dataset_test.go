package ml

import (
	"errors"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	input := "day,hour,type,attendance\nMonday,09:00,lab,80\nTuesday,14:00,theory,25\n"

	ds, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(ds.Columns) != 4 {
		t.Errorf("got %d columns, want 4", len(ds.Columns))
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(ds.Rows))
	}
	if ds.Rows[0]["day"] != "Monday" || ds.Rows[1]["attendance"] != "25" {
		t.Errorf("row values wrong: %v", ds.Rows)
	}
}

func TestReadCSVShortRows(t *testing.T) {
	input := "day,hour,type,attendance\nMonday,09:00\n"

	ds, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if got := ds.Rows[0]["attendance"]; got != "" {
		t.Errorf("missing cell = %q, want empty", got)
	}
}

func TestReadCSVEmptyStream(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadCSV failed on empty input: %v", err)
	}
	if len(ds.Rows) != 0 {
		t.Errorf("empty stream produced %d rows", len(ds.Rows))
	}
}

func TestRequireColumns(t *testing.T) {
	ds := &Dataset{Columns: []string{"day", "hour"}}

	if err := ds.RequireColumns("day", "hour"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := ds.RequireColumns("day", "hour", "type", "attendance")
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Columns) != 2 {
		t.Errorf("missing = %v, want [type attendance]", missing.Columns)
	}
	if !strings.Contains(err.Error(), "type") || !strings.Contains(err.Error(), "attendance") {
		t.Errorf("error message does not name missing columns: %q", err.Error())
	}
}

func TestObservationFromRowLabelOverride(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]string
		want OccupancyLevel
	}{
		{
			"explicit label wins",
			map[string]string{"day": "Monday", "hour": "10:00", "type": "theory", "attendance": "90", "label": "0"},
			Low,
		},
		{
			"invalid label falls back to attendance",
			map[string]string{"day": "Monday", "hour": "10:00", "type": "theory", "attendance": "90", "label": "7"},
			High,
		},
		{
			"no label derives from attendance",
			map[string]string{"day": "Monday", "hour": "10:00", "type": "theory", "attendance": "45"},
			Medium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObservationFromRow(tt.row).Label; got != tt.want {
				t.Errorf("Label = %v, want %v", got, tt.want)
			}
		})
	}
}
