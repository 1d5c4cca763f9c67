package ml

import (
	"math"
	"strconv"
	"strings"
)

// Defaults applied when a raw field cannot be parsed. Batch ingestion of
// dirty CSV data must degrade row by row instead of aborting, so the
// pipeline never returns an error for a malformed scalar.
const (
	defaultDay        = 0
	defaultHour       = 8
	defaultAttendance = 50.0
)

// FeatureNames lists the six model inputs in column order.
var FeatureNames = []string{"day", "hour", "type", "attendance", "is_weekend", "time_bin"}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Observation is one normalized (features, label) row, used both as a
// training record and as a prediction query.
type Observation struct {
	Day         int
	Hour        int
	SubjectType int
	Attendance  float64
	IsWeekend   int
	TimeBin     int
	Label       OccupancyLevel

	// Defaulted names the raw fields that fell back to their default
	// value during parsing. Informational only; the model input is the
	// plain value either way.
	Defaulted []string
}

// NewObservation runs raw schedule fields through the feature pipeline.
// Malformed input never fails: each field falls back to its documented
// default and is recorded in Defaulted.
func NewObservation(day, hour, subjectType, attendance string) Observation {
	o := Observation{}

	var ok bool
	if o.Day, ok = parseDay(day); !ok {
		o.Defaulted = append(o.Defaulted, "day")
	}
	if o.Hour, ok = parseHour(hour); !ok {
		o.Defaulted = append(o.Defaulted, "hour")
	}
	o.SubjectType = parseSubjectType(subjectType)
	if o.Attendance, ok = parseAttendance(attendance); !ok {
		o.Defaulted = append(o.Defaulted, "attendance")
	}

	o.Derive()
	o.Label = LevelFromAttendance(o.Attendance)
	return o
}

// Derive recomputes the engineered features from day and hour. It is also
// used to backfill legacy history rows stored before these columns existed.
func (o *Observation) Derive() {
	if o.Day >= 5 {
		o.IsWeekend = 1
	} else {
		o.IsWeekend = 0
	}

	switch {
	case o.Hour < 12:
		o.TimeBin = 0 // morning
	case o.Hour < 17:
		o.TimeBin = 1 // afternoon
	default:
		o.TimeBin = 2 // evening
	}
}

// Features returns the numeric vector in FeatureNames order.
func (o Observation) Features() []float64 {
	return []float64{
		float64(o.Day),
		float64(o.Hour),
		float64(o.SubjectType),
		o.Attendance,
		float64(o.IsWeekend),
		float64(o.TimeBin),
	}
}

// DayName returns the weekday name for the observation's day ordinal.
func (o Observation) DayName() string {
	if o.Day >= 0 && o.Day < len(dayNames) {
		return dayNames[o.Day]
	}
	return dayNames[0]
}

// parseDay accepts a weekday name (case-insensitive) or a numeric value in
// 0..6 with Monday=0. Anything else defaults to Monday.
func parseDay(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n <= 6 {
			return n, true
		}
		return defaultDay, false
	}
	for i, name := range dayNames {
		if strings.EqualFold(s, name) {
			return i, true
		}
	}
	return defaultDay, false
}

// parseHour accepts "HH:MM" slots or bare numeric values and keeps the hour
// component. Out-of-range or unparsable input defaults to 8.
func parseHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return defaultHour, false
	}
	h := int(f)
	if h < 0 || h > 23 {
		return defaultHour, false
	}
	return h, true
}

// parseSubjectType maps practical session labels to 1 and everything else
// to 0. There is no failure mode: unknown labels are theory by definition.
func parseSubjectType(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lab", "practical", "1":
		return 1
	default:
		return 0
	}
}

func parseAttendance(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultAttendance, false
	}
	return f, true
}
