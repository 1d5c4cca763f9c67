package ml

import (
	"reflect"
	"testing"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"monday name", "Monday", 0, true},
		{"case insensitive", "friday", 4, true},
		{"sunday", "Sunday", 6, true},
		{"numeric in range", "3", 3, true},
		{"numeric out of range", "9", 0, false},
		{"garbage defaults", "Funday", 0, false},
		{"empty defaults", "", 0, false},
		{"whitespace trimmed", "  Tuesday ", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDay(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseDay(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseHour(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"slot form", "14:30", 14, true},
		{"morning slot", "08:00", 8, true},
		{"bare integer", "10", 10, true},
		{"bare float truncates", "10.7", 10, true},
		{"negative defaults", "-2", 8, false},
		{"above 23 defaults", "25", 8, false},
		{"garbage defaults", "noon", 8, false},
		{"empty defaults", "", 8, false},
		{"NaN defaults", "NaN", 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseHour(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseHour(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseSubjectType(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"lab", 1},
		{"LAB", 1},
		{"practical", 1},
		{"1", 1},
		{"theory", 0},
		{"lecture", 0},
		{"", 0},
		{"0", 0},
	}

	for _, tt := range tests {
		if got := parseSubjectType(tt.input); got != tt.want {
			t.Errorf("parseSubjectType(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseAttendance(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain value", "72.5", 72.5, true},
		{"integer", "40", 40, true},
		{"zero", "0", 0, true},
		{"garbage defaults", "many", 50, false},
		{"empty defaults", "", 50, false},
		{"NaN defaults", "NaN", 50, false},
		{"Inf defaults", "+Inf", 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAttendance(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseAttendance(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNewObservationDerivedFeatures(t *testing.T) {
	tests := []struct {
		name        string
		day, hour   string
		wantWeekend int
		wantBin     int
	}{
		{"weekday morning", "Monday", "08:00", 0, 0},
		{"weekday afternoon", "Wednesday", "14:00", 0, 1},
		{"weekday evening", "Thursday", "18:00", 0, 2},
		{"saturday is weekend", "Saturday", "10:00", 1, 0},
		{"sunday is weekend", "Sunday", "16:59", 1, 1},
		{"noon is afternoon", "Tuesday", "12:00", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewObservation(tt.day, tt.hour, "theory", "50")
			if o.IsWeekend != tt.wantWeekend {
				t.Errorf("IsWeekend = %d, want %d", o.IsWeekend, tt.wantWeekend)
			}
			if o.TimeBin != tt.wantBin {
				t.Errorf("TimeBin = %d, want %d", o.TimeBin, tt.wantBin)
			}
		})
	}
}

func TestNewObservationTracksDefaults(t *testing.T) {
	o := NewObservation("nonsense", "late", "lab", "lots")
	want := []string{"day", "hour", "attendance"}
	if !reflect.DeepEqual(o.Defaulted, want) {
		t.Errorf("Defaulted = %v, want %v", o.Defaulted, want)
	}

	clean := NewObservation("Monday", "09:00", "lab", "75")
	if len(clean.Defaulted) != 0 {
		t.Errorf("clean observation reported defaults: %v", clean.Defaulted)
	}
}

func TestFeaturesVectorOrder(t *testing.T) {
	o := NewObservation("Tuesday", "15:00", "lab", "42")
	got := o.Features()
	want := []float64{1, 15, 1, 42, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Features() = %v, want %v", got, want)
	}
	if len(got) != len(FeatureNames) {
		t.Errorf("feature vector length %d does not match FeatureNames %d", len(got), len(FeatureNames))
	}
}
